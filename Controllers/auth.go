package Controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"CoHub/Models"
	"CoHub/logger"
	"CoHub/middleware"
)

const searchLimit = 10

var errUserIDTaken = Models.Invalid("userId", "userId is already taken")

type AuthController struct {
	DB   *gorm.DB
	Auth *middleware.Authenticator
	Log  *zap.Logger
}

func NewAuthController(db *gorm.DB, auth *middleware.Authenticator, log *zap.Logger) *AuthController {
	return &AuthController{DB: db, Auth: auth, Log: logger.OrNop(log)}
}

type signupRequest struct {
	UserID   string `json:"userId" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"omitempty,email"`
}

type loginRequest struct {
	UserID   string `json:"userId" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthController) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.Log, err)
	}
	req.UserID = strings.TrimSpace(req.UserID)

	db := h.DB.WithContext(c.UserContext())
	var taken int64
	if err := db.Model(&Models.User{}).Where("user_id = ?", req.UserID).Count(&taken).Error; err != nil {
		return respondError(c, h.Log, Models.StoreFailure("sign up", err))
	}
	if taken > 0 {
		return respondError(c, h.Log, errUserIDTaken)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return respondError(c, h.Log, Models.StoreFailure("sign up", err))
	}
	user := Models.User{
		UserID:   req.UserID,
		Password: hash,
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.TrimSpace(req.Email),
	}
	if err := db.Create(&user).Error; err != nil {
		if Models.IsDuplicateKey(err) {
			return respondError(c, h.Log, errUserIDTaken)
		}
		return respondError(c, h.Log, Models.StoreFailure("sign up", err))
	}
	if err := h.Auth.SetCookie(c, user); err != nil {
		return respondError(c, h.Log, Models.StoreFailure("sign up", err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Signed up",
		"user":    user,
	})
}

func (h *AuthController) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.Log, err)
	}

	var user Models.User
	err := h.DB.WithContext(c.UserContext()).Where("user_id = ?", strings.TrimSpace(req.UserID)).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return respondError(c, h.Log, Models.StoreFailure("log in", err))
	}
	if err != nil || bcrypt.CompareHashAndPassword(user.Password, []byte(req.Password)) != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid userId or password",
		})
	}

	if err := h.Auth.SetCookie(c, user); err != nil {
		return respondError(c, h.Log, Models.StoreFailure("log in", err))
	}
	return c.JSON(fiber.Map{
		"message": "Logged in",
		"user":    user,
	})
}

func (h *AuthController) Logout(c *fiber.Ctx) error {
	h.Auth.ClearCookie(c)
	return c.JSON(fiber.Map{"message": "Logged out"})
}

func (h *AuthController) Me(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	return c.JSON(fiber.Map{"user": user})
}

// Search finds users by login handle, name or e-mail, for the invite dialog.
func (h *AuthController) Search(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		return respondError(c, h.Log, Models.Invalid("query", "query is required"))
	}

	pattern := "%" + strings.ToLower(query) + "%"
	var users []Models.User
	err := h.DB.WithContext(c.UserContext()).
		Where("LOWER(user_id) LIKE ? OR LOWER(name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern, pattern).
		Order("user_id").
		Limit(searchLimit).
		Find(&users).Error
	if err != nil {
		return respondError(c, h.Log, Models.StoreFailure("search users", err))
	}
	return c.JSON(fiber.Map{"users": users})
}
