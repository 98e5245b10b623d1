// Package report builds the admin dashboard numbers and spreadsheet exports.
package report

import (
	"academy/errs"
	"academy/models"
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/jinzhu/now"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Stats struct {
	Students              int64 `json:"students"`
	Courses               int64 `json:"courses"`
	Enrollments           int64 `json:"enrollments"`
	PendingPayments       int64 `json:"pendingPayments"`
	PassedEnrollments     int64 `json:"passedEnrollments"`
	Certificates          int64 `json:"certificates"`
	CertificatesThisMonth int64 `json:"certificatesThisMonth"`
	CertificatesToday     int64 `json:"certificatesToday"`
	EnrollmentsThisWeek   int64 `json:"enrollmentsThisWeek"`
	ActiveMemberships     int64 `json:"activeMemberships"`
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
	now func() time.Time
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// Stats counts the dashboard totals. Period boundaries are computed in UTC.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	t := now.With(s.now().UTC())
	db := s.db.WithContext(ctx)
	var st Stats

	counts := []struct {
		dst *int64
		q   *gorm.DB
	}{
		{&st.Students, db.Model(&models.User{}).Where("is_admin = ?", false)},
		{&st.Courses, db.Model(&models.Course{}).Where("is_active = ?", true)},
		{&st.Enrollments, db.Model(&models.Enrollment{})},
		{&st.PendingPayments, db.Model(&models.Enrollment{}).Where("stage = ?", models.StagePending)},
		{&st.PassedEnrollments, db.Model(&models.Enrollment{}).Where("stage IN ?", []models.Stage{models.StagePassed, models.StageCertified})},
		{&st.Certificates, db.Model(&models.Certificate{})},
		{&st.CertificatesThisMonth, db.Model(&models.Certificate{}).Where("issued_at >= ?", t.BeginningOfMonth())},
		{&st.CertificatesToday, db.Model(&models.Certificate{}).Where("issued_at >= ?", t.BeginningOfDay())},
		{&st.EnrollmentsThisWeek, db.Model(&models.Enrollment{}).Where("enrolled_at >= ?", t.BeginningOfWeek())},
		{&st.ActiveMemberships, db.Model(&models.Membership{}).
			Where("status = ?", models.MembershipActive).
			Where("expires_at IS NULL OR expires_at > ?", t.Time).
			Where("current_period_end IS NULL OR current_period_end > ?", t.Time)},
	}
	for _, c := range counts {
		if err := c.q.Count(c.dst).Error; err != nil {
			return nil, errs.Wrap(errs.Internal, err, "Failed to compute dashboard stats")
		}
	}
	return &st, nil
}

type enrollmentRow struct {
	ID              uint
	FirstName       string
	LastName        string
	StudentEmail    string
	CourseName      string
	Stage           models.Stage
	PaymentStatus   string
	Progress        int
	ExamAttempts    int
	ExamScore       *float64
	DiscountApplied float64
	EnrolledAt      time.Time
	CompletedAt     *time.Time
	CertificateNo   *string
}

var enrollmentHeaders = []string{
	"ID", "Student", "Email", "Course", "Status", "Payment", "Progress (%)",
	"Exam Attempts", "Exam Score", "Discount", "Enrolled", "Completed", "Certificate No.",
}

// ExportEnrollments writes every enrollment into an xlsx workbook and returns
// it with a suggested file name.
func (s *Service) ExportEnrollments(ctx context.Context) (*bytes.Buffer, string, error) {
	var rows []enrollmentRow
	err := s.db.WithContext(ctx).Table("enrollments").
		Select(`enrollments.id, users.first_name, users.last_name,
			users.email AS student_email, courses.name AS course_name, enrollments.stage,
			enrollments.payment_status, enrollments.progress, enrollments.exam_attempts,
			enrollments.exam_score, enrollments.discount_applied, enrollments.enrolled_at,
			enrollments.completed_at, certificates.certificate_number AS certificate_no`).
		Joins("JOIN users ON users.id = enrollments.student_id").
		Joins("JOIN courses ON courses.id = enrollments.course_id").
		Joins("LEFT JOIN certificates ON certificates.enrollment_id = enrollments.id").
		Order("enrollments.enrolled_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, "", errs.Wrap(errs.Internal, err, "Failed to fetch enrollments")
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Enrollments"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, "", errs.Wrap(errs.Internal, err, "Failed to build export")
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#1B2A4A"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	for i, h := range enrollmentHeaders {
		f.SetCellValue(sheet, cell(i, 1), h)
	}
	f.SetCellStyle(sheet, cell(0, 1), cell(len(enrollmentHeaders)-1, 1), headerStyle)
	f.SetColWidth(sheet, "A", "A", 8)
	f.SetColWidth(sheet, "B", "D", 28)
	f.SetColWidth(sheet, "E", "M", 16)

	for r, row := range rows {
		e := models.Enrollment{Stage: row.Stage, ExamScore: row.ExamScore}
		values := []interface{}{
			row.ID, models.User{FirstName: row.FirstName, LastName: row.LastName}.FullName(), row.StudentEmail, row.CourseName, e.Status(),
			row.PaymentStatus, row.Progress, row.ExamAttempts, "", row.DiscountApplied,
			row.EnrolledAt.UTC().Format("2006-01-02"), "", "",
		}
		if row.ExamScore != nil {
			values[8] = *row.ExamScore
		}
		if row.CompletedAt != nil {
			values[11] = row.CompletedAt.UTC().Format("2006-01-02")
		}
		if row.CertificateNo != nil {
			values[12] = *row.CertificateNo
		}
		for c, v := range values {
			f.SetCellValue(sheet, cell(c, r+2), v)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.log.Error("write enrollments workbook", zap.Error(err))
		return nil, "", errs.Wrap(errs.Internal, err, "Failed to build export")
	}
	filename := fmt.Sprintf("enrollments_%s.xlsx", s.now().UTC().Format("20060102"))
	return buf, filename, nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col+1, row)
	return name
}
