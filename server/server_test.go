package server

import (
	"academy/config"
	"academy/database"
	"academy/services/notify"
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var serverNow = time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC)

type memSender struct {
	mu       sync.Mutex
	subjects []string
}

func (m *memSender) Send(_, _, subject, _ string) error {
	m.mu.Lock()
	m.subjects = append(m.subjects, subject)
	m.mu.Unlock()
	return nil
}

type env struct {
	t      *testing.T
	srv    *Server
	db     *gorm.DB
	sender *memSender
}

func newEnv(t *testing.T) *env {
	t.Helper()
	cfg := config.FromEnv()
	cfg.JWTKey = "test-secret"
	cfg.SaltRound = 4
	cfg.AdminEmail = "admin@academy.test"
	cfg.UploadDir = t.TempDir()
	cfg.TeachableBaseURL = "http://127.0.0.1:1"
	cfg.School = config.SchoolSeed{
		Name:           "Lone Star Security Academy",
		LicenseNumber:  "C12345",
		InstructorName: "Robert Hale",
	}
	config.AppConfig = cfg

	sender := &memSender{}
	db := database.OpenTest(t)
	srv, err := New(context.Background(), cfg, db, zap.NewNop(), Options{
		Mailer: notify.NewWithSender(sender, "Academy", cfg.PublicURL, zap.NewNop()),
		Now:    func() time.Time { return serverNow },
	})
	require.NoError(t, err)
	return &env{t: t, srv: srv, db: db, sender: sender}
}

type reply struct {
	Status  int
	Body    map[string]interface{}
	Header  http.Header
	RawBody []byte
}

func (r reply) data() map[string]interface{} {
	d, _ := r.Body["data"].(map[string]interface{})
	return d
}

func (r reply) list() []interface{} {
	l, _ := r.Body["data"].([]interface{})
	return l
}

func (e *env) do(method, path, token string, body interface{}) reply {
	e.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := sonic.Marshal(body)
		require.NoError(e.t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return e.send(req, token)
}

func (e *env) send(req *http.Request, token string) reply {
	e.t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.srv.App.Test(req, -1)
	require.NoError(e.t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(e.t, err)

	out := reply{Status: resp.StatusCode, Header: resp.Header, RawBody: raw}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(e.t, sonic.Unmarshal(raw, &out.Body), string(raw))
	}
	return out
}

// signup creates a user with a password and logs in, returning the id and token.
func (e *env) signup(first, email string) (uint, string) {
	e.t.Helper()
	r := e.do(http.MethodPost, "/api/users", "", map[string]interface{}{
		"firstName": first, "lastName": "Tester", "email": email,
		"ssn": "123-45-6789", "password": "password123",
	})
	require.Equal(e.t, http.StatusCreated, r.Status, string(r.RawBody))
	id := uint(r.data()["id"].(float64))

	r = e.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": "password123"})
	require.Equal(e.t, http.StatusOK, r.Status, string(r.RawBody))
	return id, r.data()["token"].(string)
}

func examBody(price float64) map[string]interface{} {
	return map[string]interface{}{
		"name": "Level II Security Officer", "description": "Non-commissioned officer course",
		"courseNumber": "L2", "price": price,
		"exam": map[string]interface{}{
			"passingScore": 70,
			"questions": []map[string]interface{}{
				{"question": "Q1", "options": []string{"a", "b"}, "correctAnswer": 0},
				{"question": "Q2", "options": []string{"a", "b", "c"}, "correctAnswer": 2},
			},
		},
	}
}

func TestHealth(t *testing.T) {
	e := newEnv(t)
	r := e.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, r.Status)
	assert.Equal(t, true, r.Body["status"])
	assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
}

func TestSignupLoginAndAdmin(t *testing.T) {
	e := newEnv(t)

	r := e.do(http.MethodPost, "/api/users", "", map[string]interface{}{"firstName": "A", "email": "bad", "ssn": "12"})
	require.Equal(t, http.StatusBadRequest, r.Status)
	assert.Equal(t, false, r.Body["status"])
	details := r.Body["details"].(map[string]interface{})
	assert.Contains(t, details, "lastName")
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "ssn")

	adminID, adminToken := e.signup("Ada", "admin@academy.test")
	_, studentToken := e.signup("Sam", "sam@academy.test")

	r = e.do(http.MethodPost, "/api/users", "", map[string]interface{}{
		"firstName": "Sam", "lastName": "Again", "email": "SAM@academy.test", "ssn": "9999",
	})
	assert.Equal(t, http.StatusBadRequest, r.Status)
	assert.Contains(t, r.Body["error"], "already exists")

	r = e.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "sam@academy.test", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, r.Status)

	r = e.do(http.MethodGet, "/api/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, r.Status)
	r = e.do(http.MethodGet, "/api/users", studentToken, nil)
	assert.Equal(t, http.StatusForbidden, r.Status)
	r = e.do(http.MethodGet, "/api/users", adminToken, nil)
	require.Equal(t, http.StatusOK, r.Status)
	assert.Len(t, r.list(), 2)

	r = e.do(http.MethodGet, "/api/users/email/sam@academy.test", adminToken, nil)
	require.Equal(t, http.StatusOK, r.Status)
	assert.Equal(t, "Sam", r.data()["firstName"])
	assert.NotContains(t, r.data(), "ssn")
	assert.NotContains(t, r.data(), "password")

	r = e.do(http.MethodGet, fmt.Sprintf("/api/users/%d", adminID), studentToken, nil)
	assert.Equal(t, http.StatusForbidden, r.Status)
}

func TestCourseRoutes(t *testing.T) {
	e := newEnv(t)
	_, adminToken := e.signup("Ada", "admin@academy.test")
	_, studentToken := e.signup("Sam", "sam@academy.test")

	r := e.do(http.MethodPost, "/api/courses", studentToken, examBody(99))
	assert.Equal(t, http.StatusForbidden, r.Status)

	bad := examBody(99)
	bad["exam"].(map[string]interface{})["questions"] = []map[string]interface{}{{"question": "Q", "options": []string{"a", "b"}, "correctAnswer": 5}}
	r = e.do(http.MethodPost, "/api/courses", adminToken, bad)
	require.Equal(t, http.StatusBadRequest, r.Status)
	assert.Contains(t, r.Body["details"], "exam.questions[0]")

	r = e.do(http.MethodPost, "/api/courses", adminToken, examBody(99))
	require.Equal(t, http.StatusCreated, r.Status, string(r.RawBody))
	assert.Equal(t, "level-ii-security-officer", r.data()["slug"])

	r = e.do(http.MethodPost, "/api/courses", adminToken, examBody(99))
	assert.Equal(t, http.StatusBadRequest, r.Status)
	assert.Contains(t, r.Body["error"], "already exists")

	r = e.do(http.MethodGet, "/api/courses/slug/level-ii-security-officer", "", nil)
	require.Equal(t, http.StatusOK, r.Status)
	questions := r.data()["exam"].(map[string]interface{})["questions"].([]interface{})
	for _, q := range questions {
		assert.EqualValues(t, -1, q.(map[string]interface{})["correctAnswer"])
	}

	r = e.do(http.MethodGet, "/api/courses", "", nil)
	require.Equal(t, http.StatusOK, r.Status)
	assert.Len(t, r.list(), 1)

	r = e.do(http.MethodGet, "/api/courses/999", "", nil)
	assert.Equal(t, http.StatusNotFound, r.Status)
	r = e.do(http.MethodGet, "/api/courses/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, r.Status)
}

func TestEnrollExamAndCertificateFlow(t *testing.T) {
	e := newEnv(t)
	_, adminToken := e.signup("Ada", "admin@academy.test")
	studentID, studentToken := e.signup("Sam", "sam@academy.test")
	_, otherToken := e.signup("Oli", "oli@academy.test")

	r := e.do(http.MethodPost, "/api/courses", adminToken, examBody(99))
	require.Equal(t, http.StatusCreated, r.Status)
	courseID := r.data()["id"].(float64)

	// paid course without payment or membership
	r = e.do(http.MethodPost, "/api/enrollments", studentToken, map[string]interface{}{"studentId": studentID, "courseId": courseID})
	require.Equal(t, http.StatusForbidden, r.Status)
	assert.Contains(t, r.Body["error"], "upgrade your membership plan")

	// a payment id alone is not proof of payment
	r = e.do(http.MethodPost, "/api/enrollments", studentToken, map[string]interface{}{"studentId": studentID, "courseId": courseID, "paymentId": "pi_forged"})
	require.Equal(t, http.StatusForbidden, r.Status)

	// acting for someone else
	r = e.do(http.MethodPost, "/api/enrollments", otherToken, map[string]interface{}{"studentId": studentID, "courseId": courseID, "paymentId": "pi_1", "paymentStatus": "paid"})
	require.Equal(t, http.StatusForbidden, r.Status)

	r = e.do(http.MethodPost, "/api/enrollments", studentToken, map[string]interface{}{"studentId": studentID, "courseId": courseID, "paymentId": "pi_1", "paymentStatus": "paid"})
	require.Equal(t, http.StatusCreated, r.Status, string(r.RawBody))
	enrollment := r.data()
	enrollmentID := enrollment["id"].(float64)
	assert.Equal(t, "active", enrollment["status"])
	assert.Equal(t, "paid", enrollment["paymentStatus"])

	r = e.do(http.MethodPost, "/api/enrollments", studentToken, map[string]interface{}{"studentId": studentID, "courseId": courseID, "paymentId": "pi_1", "paymentStatus": "paid"})
	require.Equal(t, http.StatusOK, r.Status)
	assert.Equal(t, enrollmentID, r.data()["id"])

	// certificate before passing
	r = e.do(http.MethodPost, fmt.Sprintf("/api/certificates/generate/%.0f", enrollmentID), studentToken, nil)
	require.Equal(t, http.StatusBadRequest, r.Status)

	// answer count mismatch
	r = e.do(http.MethodPost, fmt.Sprintf("/api/enrollments/%.0f/exam", enrollmentID), studentToken, map[string]interface{}{"answers": []int{0}})
	require.Equal(t, http.StatusBadRequest, r.Status)

	r = e.do(http.MethodPost, fmt.Sprintf("/api/enrollments/%.0f/exam", enrollmentID), studentToken, map[string]interface{}{"answers": []int{1, 0}})
	require.Equal(t, http.StatusOK, r.Status)
	assert.Equal(t, false, r.data()["passed"])
	assert.EqualValues(t, 0, r.data()["score"])

	r = e.do(http.MethodPost, "/api/enrollments/exam/submit", studentToken, map[string]interface{}{
		"answers": []int{0, 2}, "studentId": studentID, "courseId": courseID,
	})
	require.Equal(t, http.StatusOK, r.Status, string(r.RawBody))
	assert.Equal(t, true, r.data()["passed"])
	assert.EqualValues(t, 100, r.data()["score"])
	assert.Equal(t, "completed", r.data()["enrollment"].(map[string]interface{})["status"])

	r = e.do(http.MethodPost, fmt.Sprintf("/api/certificates/generate/%.0f", enrollmentID), otherToken, nil)
	require.Equal(t, http.StatusForbidden, r.Status)

	r = e.do(http.MethodPost, fmt.Sprintf("/api/certificates/generate/%.0f", enrollmentID), studentToken, nil)
	require.Equal(t, http.StatusCreated, r.Status, string(r.RawBody))
	cert := r.data()["certificate"].(map[string]interface{})
	certID := cert["id"].(float64)
	assert.Equal(t, "Sam Tester", cert["studentName"])
	assert.Equal(t, "6789", cert["ssnLastFour"])
	assert.Equal(t, fmt.Sprintf("/api/certificates/download/%.0f", certID), r.data()["downloadUrl"])

	r = e.do(http.MethodPost, fmt.Sprintf("/api/certificates/generate/%.0f", enrollmentID), studentToken, nil)
	require.Equal(t, http.StatusOK, r.Status)
	assert.Equal(t, certID, r.data()["certificate"].(map[string]interface{})["id"])

	r = e.do(http.MethodGet, fmt.Sprintf("/api/certificates/download/%.0f", certID), studentToken, nil)
	require.Equal(t, http.StatusOK, r.Status)
	assert.Equal(t, "application/pdf", r.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(r.RawBody, []byte("%PDF")))

	r = e.do(http.MethodGet, fmt.Sprintf("/api/certificates/download/%.0f", certID), otherToken, nil)
	assert.Equal(t, http.StatusForbidden, r.Status)

	r = e.do(http.MethodGet, fmt.Sprintf("/api/badges/student/%d", studentID), studentToken, nil)
	require.Equal(t, http.StatusOK, r.Status)
	require.Len(t, r.list(), 1)

	r = e.do(http.MethodGet, fmt.Sprintf("/api/enrollments/student/%d", studentID), otherToken, nil)
	assert.Equal(t, http.StatusForbidden, r.Status)

	r = e.do(http.MethodGet, "/api/admin/stats", adminToken, nil)
	require.Equal(t, http.StatusOK, r.Status)
	assert.EqualValues(t, 1, r.data()["certificates"])
	assert.EqualValues(t, 1, r.data()["passedEnrollments"])

	r = e.do(http.MethodGet, "/api/admin/enrollments/export", adminToken, nil)
	require.Equal(t, http.StatusOK, r.Status)
	assert.Regexp(t, `attachment; filename="enrollments_\d{8}\.xlsx"`, r.Header.Get("Content-Disposition"))

	e.sender.mu.Lock()
	defer e.sender.mu.Unlock()
	assert.Contains(t, e.sender.subjects, "Enrollment Confirmed: Level II Security Officer")
	assert.Contains(t, e.sender.subjects, "Your certificate for Level II Security Officer")
}

func TestMembershipDiscountAndIncludedCourse(t *testing.T) {
	e := newEnv(t)
	_, adminToken := e.signup("Ada", "admin@academy.test")
	studentID, studentToken := e.signup("Sam", "sam@academy.test")

	r := e.do(http.MethodPost, "/api/courses", adminToken, examBody(200))
	require.Equal(t, http.StatusCreated, r.Status)
	included := r.data()["id"].(float64)

	other := examBody(50)
	other["name"], other["courseNumber"] = "Firearms Renewal", "FR"
	r = e.do(http.MethodPost, "/api/courses", adminToken, other)
	require.Equal(t, http.StatusCreated, r.Status)
	discounted := r.data()["id"].(float64)

	r = e.do(http.MethodPost, "/api/memberships/plans", adminToken, map[string]interface{}{
		"name": "Premium", "type": "recurring", "billingInterval": "monthly",
		"price": 49.99, "discountPercent": 25, "courseIds": []float64{included},
	})
	require.Equal(t, http.StatusCreated, r.Status, string(r.RawBody))
	planID := r.data()["id"].(float64)

	r = e.do(http.MethodGet, fmt.Sprintf("/api/memberships/student/%d", studentID), studentToken, nil)
	require.Equal(t, http.StatusOK, r.Status)
	assert.Nil(t, r.Body["data"])

	r = e.do(http.MethodPost, "/api/memberships/assign", adminToken, map[string]interface{}{"studentId": studentID, "membershipPlanId": planID})
	require.Equal(t, http.StatusCreated, r.Status, string(r.RawBody))
	membershipID := r.data()["id"].(float64)

	r = e.do(http.MethodPost, "/api/enrollments", studentToken, map[string]interface{}{"studentId": studentID, "courseId": included})
	require.Equal(t, http.StatusCreated, r.Status, string(r.RawBody))
	assert.EqualValues(t, 200, r.data()["discountApplied"])
	assert.Equal(t, "paid", r.data()["paymentStatus"])

	r = e.do(http.MethodPost, "/api/enrollments", studentToken, map[string]interface{}{"studentId": studentID, "courseId": discounted})
	require.Equal(t, http.StatusForbidden, r.Status)

	r = e.do(http.MethodPost, "/api/enrollments", studentToken, map[string]interface{}{"studentId": studentID, "courseId": discounted, "paymentId": "pi_2", "paymentStatus": "paid"})
	require.Equal(t, http.StatusCreated, r.Status)
	assert.EqualValues(t, 12.5, r.data()["discountApplied"])

	r = e.do(http.MethodPost, fmt.Sprintf("/api/memberships/remove/%.0f", membershipID), adminToken, nil)
	require.Equal(t, http.StatusOK, r.Status)
	assert.Equal(t, "canceled", r.data()["status"])

	r = e.do(http.MethodGet, fmt.Sprintf("/api/enrollments/student/%d", studentID), studentToken, nil)
	require.Equal(t, http.StatusOK, r.Status)
	assert.Len(t, r.list(), 2)

	r = e.do(http.MethodGet, "/api/memberships/all", adminToken, nil)
	require.Equal(t, http.StatusOK, r.Status)
	require.Len(t, r.list(), 1)
	assert.Equal(t, "sam@academy.test", r.list()[0].(map[string]interface{})["studentEmail"])
}

func TestSchoolUpload(t *testing.T) {
	e := newEnv(t)
	_, adminToken := e.signup("Ada", "admin@academy.test")

	r := e.do(http.MethodGet, "/api/school", adminToken, nil)
	require.Equal(t, http.StatusOK, r.Status)
	assert.Equal(t, "Lone Star Security Academy", r.data()["school"].(map[string]interface{})["name"])

	r = e.do(http.MethodPut, "/api/school", adminToken, map[string]interface{}{"name": "", "website": "not a url"})
	assert.Equal(t, http.StatusBadRequest, r.Status)

	r = e.do(http.MethodPut, "/api/school", adminToken, map[string]interface{}{"phone": "555-0100"})
	require.Equal(t, http.StatusOK, r.Status)
	assert.Equal(t, "555-0100", r.data()["phone"])

	upload := func(path string, content []byte) reply {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("file", "sig.png")
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
		require.NoError(t, mw.Close())
		req := httptest.NewRequest(http.MethodPost, path, &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		return e.send(req, adminToken)
	}

	r = upload("/api/school/signature", []byte("plain text, not an image"))
	require.Equal(t, http.StatusBadRequest, r.Status)
	assert.Contains(t, r.Body["error"], "PNG and JPEG")

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00\x90wS\xde")
	r = upload("/api/school/signature", png)
	require.Equal(t, http.StatusOK, r.Status, string(r.RawBody))
	sig := r.data()["instructorSignature"].(string)
	assert.Regexp(t, `^/uploads/school/signature-\d{14}\.png$`, sig)

	r = e.do(http.MethodGet, sig, "", nil)
	assert.Equal(t, http.StatusOK, r.Status)
}

func TestExamByUnknownIDFallsBackToStudentAndCourse(t *testing.T) {
	e := newEnv(t)
	_, adminToken := e.signup("Ada", "admin@academy.test")
	studentID, studentToken := e.signup("Sam", "sam@academy.test")

	r := e.do(http.MethodPost, "/api/courses", adminToken, examBody(0))
	require.Equal(t, http.StatusCreated, r.Status)
	courseID := r.data()["id"].(float64)

	r = e.do(http.MethodPost, "/api/enrollments/9999/exam", studentToken, map[string]interface{}{"answers": []int{0, 2}})
	assert.Equal(t, http.StatusNotFound, r.Status)

	r = e.do(http.MethodPost, "/api/enrollments/9999/exam", studentToken, map[string]interface{}{
		"answers": []int{0, 2}, "studentId": studentID, "courseId": courseID,
	})
	require.Equal(t, http.StatusOK, r.Status, string(r.RawBody))
	assert.Equal(t, true, r.data()["passed"])
	assert.Equal(t, "paid", r.data()["enrollment"].(map[string]interface{})["paymentStatus"])
}

func TestDemotedAdminTokenLosesAccess(t *testing.T) {
	e := newEnv(t)
	adminID, adminToken := e.signup("Ada", "admin@academy.test")
	studentID, _ := e.signup("Sam", "sam@academy.test")

	r := e.do(http.MethodGet, fmt.Sprintf("/api/users/%d", studentID), adminToken, nil)
	require.Equal(t, http.StatusOK, r.Status)

	require.NoError(t, e.db.Table("users").Where("id = ?", adminID).Update("is_admin", false).Error)

	// the token still claims admin
	r = e.do(http.MethodGet, fmt.Sprintf("/api/users/%d", studentID), adminToken, nil)
	assert.Equal(t, http.StatusForbidden, r.Status)
	r = e.do(http.MethodGet, fmt.Sprintf("/api/enrollments/student/%d", studentID), adminToken, nil)
	assert.Equal(t, http.StatusForbidden, r.Status)
	r = e.do(http.MethodGet, "/api/users", adminToken, nil)
	assert.Equal(t, http.StatusForbidden, r.Status)

	r = e.do(http.MethodGet, fmt.Sprintf("/api/users/%d", adminID), adminToken, nil)
	assert.Equal(t, http.StatusOK, r.Status)
}
