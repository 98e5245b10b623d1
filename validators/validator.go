// Package validators holds the request validation middlewares. Each one parses
// its input, checks it, and stores the result in c.Locals for the controller.
package validators

import (
	"academy/middleware"
	"errors"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Locals keys set by the validators.
const (
	BodyKey = "validatedBody"
	IDKey   = "validatedId"
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("ssn", func(fl validator.FieldLevel) bool {
		digits := 0
		for _, r := range fl.Field().String() {
			if unicode.IsDigit(r) {
				digits++
			}
		}
		return digits >= 4
	})
	return v
}

// Struct validates v and returns field errors keyed by JSON name.
func Struct(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return map[string]string{"body": err.Error()}
	}
	out := make(map[string]string, len(ve))
	for _, fe := range ve {
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required!"
	case "email":
		return "Invalid email format!"
	case "ssn":
		return "SSN must contain at least 4 digits!"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	case "gte", "min":
		return fe.Field() + " must be at least " + fe.Param() + "!"
	case "lte", "max":
		return fe.Field() + " must be at most " + fe.Param() + "!"
	case "url":
		return fe.Field() + " must be a valid URL!"
	}
	return fe.Field() + " is invalid!"
}

// Normalizer is implemented by requests that clean their fields before
// validation.
type Normalizer interface {
	Normalize()
}

// Body parses the request body into a fresh T, validates it and stores a
// pointer to it under BodyKey. checks run after the struct tags pass.
func Body[T any](checks ...func(*T) map[string]string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(T)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if n, ok := any(reqData).(Normalizer); ok {
			n.Normalize()
		}
		if errs := Struct(reqData); len(errs) > 0 {
			return middleware.ValidationErrorResponse(c, errs)
		}
		for _, check := range checks {
			if errs := check(reqData); len(errs) > 0 {
				return middleware.ValidationErrorResponse(c, errs)
			}
		}
		c.Locals(BodyKey, reqData)
		return c.Next()
	}
}

// Param checks that the named route param is a positive id and stores it
// under IDKey.
func Param(name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseUint(strings.TrimSpace(c.Params(name)), 10, 64)
		if err != nil || id == 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid "+name+"!", nil)
		}
		c.Locals(IDKey, uint(id))
		return c.Next()
	}
}

// ID returns the id stored by Param.
func ID(c *fiber.Ctx) uint {
	id, _ := c.Locals(IDKey).(uint)
	return id
}

// Validated returns the body stored by Body.
func Validated[T any](c *fiber.Ctx) *T {
	v, _ := c.Locals(BodyKey).(*T)
	return v
}

// Var validates a single value against tag and returns the first failure tag.
func Var(v interface{}, tag string) string {
	err := validate.Var(v, tag)
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return ve[0].Tag()
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
