package authController

import (
	"academy/errs"
	"academy/middleware"
	"academy/models"
	"academy/validators"
	"academy/validators/authValidator"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthController struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewAuthController(db *gorm.DB, log *zap.Logger) *AuthController {
	return &AuthController{DB: db, Log: log}
}

const invalidLogin = "Invalid email or password!"

// Login exchanges email and password for a JWT.
func (ctrl *AuthController) Login(c *fiber.Ctx) error {
	req := validators.Validated[authValidator.LoginRequest](c)

	var user models.User
	err := ctrl.DB.WithContext(c.UserContext()).Where("email = ?", req.Email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, invalidLogin, nil)
	}
	if err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, errs.Wrap(errs.Internal, err, "Failed to process your request!"))
	}
	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, invalidLogin, nil)
	}

	token, err := middleware.GenerateJWT(user.ID, user.FullName(), user.Email, user.IsAdmin)
	if err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, errs.Wrap(errs.Internal, err, "Failed to generate token!"))
	}
	ctrl.Log.Info("user logged in", zap.Uint("userId", user.ID))
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful.", fiber.Map{
		"token": token,
		"user":  user,
	})
}
