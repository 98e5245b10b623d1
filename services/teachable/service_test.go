package teachable

import (
	"academy/database"
	"academy/errs"
	"academy/models"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type school struct{ key string }

func (s school) Current() (models.School, bool) {
	return models.School{Name: "Academy", TeachableAPIKey: s.key}, true
}

type fakeTeachable struct {
	mu    sync.Mutex
	paths []string
	keys  []string
}

func (f *fakeTeachable) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.paths = append(f.paths, r.Method+" "+r.URL.Path)
		f.keys = append(f.keys, r.Header.Get("apiKey"))
		f.mu.Unlock()

		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/users":
			assert.Equal(t, "jane@example.com", body["email"])
			_, _ = w.Write([]byte(`{"id": 501, "name": "Jane Doe", "email": "jane@example.com"}`))
		case "/enrollments":
			assert.EqualValues(t, 501, body["user_id"])
			assert.EqualValues(t, 77, body["course_id"])
			_, _ = w.Write([]byte(`{"id": 9001, "user_id": 501, "course_id": 77}`))
		case "/courses":
			assert.Equal(t, "Level II", body["name"])
			_, _ = w.Write([]byte(`{"id": 77, "name": "Level II"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error": "not found"}`))
		}
	})
}

func TestSyncCourseThenEnroll(t *testing.T) {
	fake := &fakeTeachable{}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	db := database.OpenTest(t)
	svc := NewService(db, school{key: "secret"}, srv.URL, zap.NewNop())

	course := models.Course{Name: "Level II", Description: "Security officer training", CourseNumber: "L2", Slug: "l2", Price: 99, IsActive: true}
	require.NoError(t, db.Create(&course).Error)
	student := models.User{FirstName: "Jane", LastName: "Doe", Email: "jane@example.com"}
	require.NoError(t, db.Create(&student).Error)
	e := models.Enrollment{StudentID: student.ID, CourseID: course.ID, Stage: models.StageAwaitingExam, PaymentStatus: models.PaymentPaid, EnrolledAt: time.Now().UTC()}
	require.NoError(t, db.Create(&e).Error)

	synced, remote, err := svc.SyncCourse(context.Background(), course.ID)
	require.NoError(t, err)
	assert.Equal(t, ID(77), remote.ID)
	require.NotNil(t, synced.TeachableCourseID)
	assert.Equal(t, "77", *synced.TeachableCourseID)

	require.NoError(t, svc.EnrollStudent(context.Background(), student, *synced))

	var storedUser models.User
	require.NoError(t, db.First(&storedUser, student.ID).Error)
	assert.Equal(t, "501", storedUser.TeachableUserID)

	var storedEnrollment models.Enrollment
	require.NoError(t, db.First(&storedEnrollment, e.ID).Error)
	assert.Equal(t, "9001", storedEnrollment.TeachableEnrollmentID)

	assert.Equal(t, []string{"POST /courses", "POST /users", "POST /enrollments"}, fake.paths)
	for _, k := range fake.keys {
		assert.Equal(t, "secret", k)
	}
}

func TestEnrollStudentSkipsUnlinkedCourse(t *testing.T) {
	fake := &fakeTeachable{}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	svc := NewService(database.OpenTest(t), school{key: "secret"}, srv.URL, zap.NewNop())
	require.NoError(t, svc.EnrollStudent(context.Background(), models.User{ID: 1}, models.Course{ID: 2}))
	assert.Empty(t, fake.paths)
}

func TestSyncCourseWithoutKey(t *testing.T) {
	db := database.OpenTest(t)
	svc := NewService(db, school{}, "http://127.0.0.1:1", zap.NewNop())
	course := models.Course{Name: "C", Description: "d", CourseNumber: "c", Slug: "c", IsActive: true}
	require.NoError(t, db.Create(&course).Error)

	_, _, err := svc.SyncCourse(context.Background(), course.ID)
	assert.True(t, errs.Is(err, errs.Validation))

	_, _, err = svc.SyncCourse(context.Background(), 999)
	assert.True(t, errs.Is(err, errs.NotFound))
}

func TestClientAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error": "email taken"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "k").CreateUser(context.Background(), "a", "b@example.com", "p")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
}
