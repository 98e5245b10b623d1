package badgeValidator

import (
	"academy/validators"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type AwardBadgeRequest struct {
	StudentID        uint   `json:"studentId" validate:"required"`
	CourseID         uint   `json:"courseId" validate:"required"`
	EnrollmentID     uint   `json:"enrollmentId" validate:"required"`
	BadgeType        string `json:"badgeType" validate:"omitempty,max=50"`
	BadgeName        string `json:"badgeName" validate:"required"`
	BadgeDescription string `json:"badgeDescription"`
}

func (r *AwardBadgeRequest) Normalize() {
	r.BadgeType = strings.TrimSpace(r.BadgeType)
	r.BadgeName = strings.TrimSpace(r.BadgeName)
	r.BadgeDescription = strings.TrimSpace(r.BadgeDescription)
}

// AwardBadge validates a manual badge award.
func AwardBadge() fiber.Handler { return validators.Body[AwardBadgeRequest]() }
