package middleware

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// AdminOnly rejects callers whose user row is not flagged admin. It runs
// after Authenticate, which loads the flag.
func AdminOnly(c *fiber.Ctx) error {
	if _, ok := CurrentUser(c); !ok {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized: User ID not found", nil)
	}
	if admin, _ := c.Locals("isAdmin").(bool); !admin {
		return JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to access this resource!", nil)
	}
	return c.Next()
}

// SelfOrAdmin lets a student reach only routes whose param names their own id.
func SelfOrAdmin(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseUint(c.Params(param), 10, 64)
		if err != nil || id == 0 {
			return JsonResponse(c, fiber.StatusBadRequest, false, "Invalid "+param+"!", nil)
		}
		if !CanActFor(c, uint(id)) {
			return JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to access this resource!", nil)
		}
		return c.Next()
	}
}

// CanActFor reports whether the caller is studentID or an admin, as loaded
// by Authenticate.
func CanActFor(c *fiber.Ctx, studentID uint) bool {
	if admin, _ := c.Locals("isAdmin").(bool); admin {
		return true
	}
	userID, ok := CurrentUser(c)
	return ok && userID == studentID
}
