package middleware

import (
	"academy/errs"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// StatusFor maps a service error kind to its HTTP status.
func StatusFor(kind errs.Kind) int {
	switch kind {
	case errs.Validation, errs.Conflict:
		return fiber.StatusBadRequest
	case errs.NotFound:
		return fiber.StatusNotFound
	case errs.AccessDenied:
		return fiber.StatusForbidden
	case errs.AccessUndetermined:
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

// ErrorFromService renders a service error. Internal failures keep their
// triggering message under details.cause.
func ErrorFromService(c *fiber.Ctx, log *zap.Logger, err error) error {
	kind := errs.KindOf(err)
	body := fiber.Map{"status": false}

	cause := err
	var e *errs.Error
	if errors.As(err, &e) {
		body["error"] = e.Message
		if e.Details != nil {
			body["details"] = e.Details
		}
		cause = e.Err
	} else {
		body["error"] = "Internal server error"
	}
	if kind == errs.Internal && cause != nil && body["details"] == nil {
		body["details"] = fiber.Map{"cause": cause.Error()}
	}

	if kind == errs.Internal || kind == errs.AccessUndetermined {
		log.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Any("requestId", c.Locals(RequestIDKey)),
			zap.Error(err))
	}
	return c.Status(StatusFor(kind)).JSON(body)
}

// ErrorHandler is the fiber fallback for errors returned by handlers.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"status": false, "error": fe.Message})
		}
		return ErrorFromService(c, log, err)
	}
}
