package userController

import (
	"academy/errs"
	"academy/middleware"
	"academy/models"
	"academy/validators"
	"academy/validators/userValidator"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserController struct {
	DB         *gorm.DB
	Log        *zap.Logger
	AdminEmail string
	SaltRound  int
}

func NewUserController(db *gorm.DB, log *zap.Logger, adminEmail string, saltRound int) *UserController {
	if saltRound < bcrypt.MinCost {
		saltRound = bcrypt.DefaultCost
	}
	return &UserController{DB: db, Log: log, AdminEmail: strings.ToLower(strings.TrimSpace(adminEmail)), SaltRound: saltRound}
}

// Create registers a student. The configured admin email is made admin.
func (ctrl *UserController) Create(c *fiber.Ctx) error {
	req := validators.Validated[userValidator.CreateUserRequest](c)

	user := models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		SSN:       req.SSN,
		Phone:     req.Phone,
		Address:   req.Address,
		IsAdmin:   ctrl.AdminEmail != "" && req.Email == ctrl.AdminEmail,
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), ctrl.SaltRound)
		if err != nil {
			return middleware.ErrorFromService(c, ctrl.Log, errs.Wrap(errs.Internal, err, "Failed to process your request!"))
		}
		user.Password = string(hash)
	}

	if err := ctrl.DB.WithContext(c.UserContext()).Create(&user).Error; err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, writeError(err, "Failed to create user"))
	}
	ctrl.Log.Info("user created", zap.Uint("userId", user.ID), zap.Bool("isAdmin", user.IsAdmin))
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User created successfully.", user)
}

// List is admin only.
func (ctrl *UserController) List(c *fiber.Ctx) error {
	users := []models.User{}
	if err := ctrl.DB.WithContext(c.UserContext()).Order("created_at DESC").Find(&users).Error; err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, errs.Wrap(errs.Internal, err, "Failed to fetch users"))
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Users fetched successfully.", users)
}

func (ctrl *UserController) Get(c *fiber.Ctx) error {
	user, err := ctrl.find(c, "id = ?", validators.ID(c))
	if err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User fetched successfully.", user)
}

// GetByEmail is admin only.
func (ctrl *UserController) GetByEmail(c *fiber.Ctx) error {
	email, _ := c.Locals("email").(string)
	user, err := ctrl.find(c, "email = ?", email)
	if err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User fetched successfully.", user)
}

func (ctrl *UserController) Update(c *fiber.Ctx) error {
	req := validators.Validated[userValidator.UpdateUserRequest](c)
	user, err := ctrl.find(c, "id = ?", validators.ID(c))
	if err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, err)
	}

	updates := map[string]interface{}{}
	set := func(col string, v *string) {
		if v != nil {
			updates[col] = *v
		}
	}
	set("first_name", req.FirstName)
	set("last_name", req.LastName)
	set("email", req.Email)
	set("ssn", req.SSN)
	set("phone", req.Phone)
	set("address", req.Address)
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), ctrl.SaltRound)
		if err != nil {
			return middleware.ErrorFromService(c, ctrl.Log, errs.Wrap(errs.Internal, err, "Failed to process your request!"))
		}
		updates["password"] = string(hash)
	}
	if len(updates) == 0 {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Nothing to update.", user)
	}

	if err := ctrl.DB.WithContext(c.UserContext()).Model(user).Updates(updates).Error; err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, writeError(err, "Failed to update user"))
	}
	user, err = ctrl.find(c, "id = ?", user.ID)
	if err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User updated successfully.", user)
}

func (ctrl *UserController) find(c *fiber.Ctx, query string, arg interface{}) (*models.User, error) {
	var user models.User
	err := ctrl.DB.WithContext(c.UserContext()).Where(query, arg).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.E(errs.NotFound, "User not found")
	}
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "Failed to fetch user")
	}
	return &user, nil
}

func writeError(err error, msg string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errs.E(errs.Conflict, "A user with this email already exists")
	}
	return errs.Wrap(errs.Internal, err, msg)
}
