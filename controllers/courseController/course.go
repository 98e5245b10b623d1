package courseController

import (
	"academy/errs"
	"academy/middleware"
	"academy/models"
	"academy/utils"
	"academy/validators"
	"academy/validators/courseValidator"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CourseController struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewCourseController(db *gorm.DB, log *zap.Logger) *CourseController {
	return &CourseController{DB: db, Log: log}
}

// Create is admin only. The slug is derived from the name when not given.
func (ctrl *CourseController) Create(c *fiber.Ctx) error {
	req := validators.Validated[courseValidator.CreateCourseRequest](c)

	course := models.Course{
		Name:                req.Name,
		Description:         req.Description,
		CourseNumber:        req.CourseNumber,
		Slug:                req.Slug,
		Price:               *req.Price,
		Duration:            req.Duration,
		ExamPaperURL:        req.ExamPaperURL,
		CertificateTemplate: req.CertificateTemplate,
		IsActive:            true,
	}
	if course.Slug == "" {
		course.Slug = utils.Slugify(course.Name)
	} else {
		course.Slug = utils.Slugify(course.Slug)
	}
	if course.Slug == "" {
		return middleware.ValidationErrorResponse(c, map[string]string{"slug": "slug could not be derived from name!"})
	}
	if req.Curriculum != nil {
		course.SetCurriculum(*req.Curriculum)
	}
	if req.Exam != nil {
		course.SetExam(*req.Exam)
	}

	db := ctrl.DB.WithContext(c.UserContext())
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&course).Error; err != nil {
			return err
		}
		// is_active has a database default, so false must be written separately
		if req.IsActive != nil && !*req.IsActive {
			course.IsActive = false
			return tx.Model(&course).Update("is_active", false).Error
		}
		return nil
	})
	if err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, writeError(err, "Failed to create course"))
	}
	ctrl.Log.Info("course created", zap.Uint("courseId", course.ID), zap.String("slug", course.Slug))
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully.", course)
}

// List returns active courses without exam answers.
func (ctrl *CourseController) List(c *fiber.Ctx) error {
	courses := []models.Course{}
	err := ctrl.DB.WithContext(c.UserContext()).Where("is_active = ?", true).Order("name ASC").Find(&courses).Error
	if err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, errs.Wrap(errs.Internal, err, "Failed to fetch courses"))
	}
	for i := range courses {
		courses[i] = courses[i].Public()
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully.", courses)
}

func (ctrl *CourseController) Get(c *fiber.Ctx) error {
	course, err := ctrl.find(c, "id = ?", validators.ID(c))
	if err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully.", course.Public())
}

func (ctrl *CourseController) GetBySlug(c *fiber.Ctx) error {
	slug, _ := c.Locals("slug").(string)
	course, err := ctrl.find(c, "slug = ?", slug)
	if err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully.", course.Public())
}

// Update is admin only.
func (ctrl *CourseController) Update(c *fiber.Ctx) error {
	req := validators.Validated[courseValidator.UpdateCourseRequest](c)
	course, err := ctrl.find(c, "id = ?", validators.ID(c))
	if err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, err)
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.CourseNumber != nil {
		updates["course_number"] = *req.CourseNumber
	}
	if req.Slug != nil {
		slug := utils.Slugify(*req.Slug)
		if slug == "" {
			return middleware.ValidationErrorResponse(c, map[string]string{"slug": "slug is invalid!"})
		}
		updates["slug"] = slug
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Duration != nil {
		updates["duration"] = *req.Duration
	}
	if req.Curriculum != nil {
		updates["curriculum"] = datatypes.NewJSONType(*req.Curriculum)
	}
	if req.Exam != nil {
		updates["exam"] = datatypes.NewJSONType(*req.Exam)
	}
	if req.ExamPaperURL != nil {
		updates["exam_paper_url"] = *req.ExamPaperURL
	}
	if req.CertificateTemplate != nil {
		updates["certificate_template"] = *req.CertificateTemplate
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := ctrl.DB.WithContext(c.UserContext()).Model(course).Updates(updates).Error; err != nil {
			return middleware.ErrorFromService(c, ctrl.Log, writeError(err, "Failed to update course"))
		}
	}
	course, err = ctrl.find(c, "id = ?", course.ID)
	if err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully.", course)
}

func (ctrl *CourseController) find(c *fiber.Ctx, query string, arg interface{}) (*models.Course, error) {
	var course models.Course
	err := ctrl.DB.WithContext(c.UserContext()).Where(query, arg).First(&course).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.E(errs.NotFound, "Course not found")
	}
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "Failed to fetch course")
	}
	return &course, nil
}

func writeError(err error, msg string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errs.E(errs.Conflict, "A course with this course number or slug already exists")
	}
	return errs.Wrap(errs.Internal, err, msg)
}
