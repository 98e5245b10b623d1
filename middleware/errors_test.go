package middleware

import (
	"academy/errs"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func render(t *testing.T, err error) (int, map[string]interface{}) {
	t.Helper()
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error { return ErrorFromService(c, zap.NewNop(), err) })

	resp, rerr := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, rerr)
	defer resp.Body.Close()
	raw, rerr := io.ReadAll(resp.Body)
	require.NoError(t, rerr)

	var body map[string]interface{}
	require.NoError(t, sonic.Unmarshal(raw, &body))
	return resp.StatusCode, body
}

func TestErrorFromService_Internal(t *testing.T) {
	status, body := render(t, errs.Wrap(errs.Internal, errors.New("disk I/O error"), "Failed to create enrollment"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, false, body["status"])
	assert.Equal(t, "Failed to create enrollment", body["error"])
	assert.Equal(t, map[string]interface{}{"cause": "disk I/O error"}, body["details"])

	status, body = render(t, errors.New("connection refused"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Internal server error", body["error"])
	assert.Equal(t, map[string]interface{}{"cause": "connection refused"}, body["details"])
}

func TestErrorFromService_Kinds(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{errs.E(errs.Validation, "bad"), http.StatusBadRequest},
		{errs.E(errs.Conflict, "dup"), http.StatusBadRequest},
		{errs.E(errs.NotFound, "missing"), http.StatusNotFound},
		{errs.E(errs.AccessDenied, "no"), http.StatusForbidden},
		{errs.Wrap(errs.AccessUndetermined, errors.New("db down"), "try later"), http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		status, body := render(t, tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
		assert.NotContains(t, body, "details", "only internal failures expose a cause")
	}
}
