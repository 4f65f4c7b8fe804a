package middleware

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"

	"CoHub/Models"
)

const CookieName = "jwt"

// Authenticator issues and verifies the session token kept in the jwt cookie.
type Authenticator struct {
	DB     *gorm.DB
	Secret []byte
	TTL    time.Duration
	Secure bool
}

func NewAuthenticator(db *gorm.DB, secret string, ttl time.Duration) *Authenticator {
	return &Authenticator{DB: db, Secret: []byte(secret), TTL: ttl}
}

// IssueToken signs a token whose issuer is the user's id.
func (a *Authenticator) IssueToken(user Models.User) (string, time.Time, error) {
	expires := time.Now().Add(a.TTL)
	claims := jwt.RegisteredClaims{
		Issuer:    strconv.FormatUint(uint64(user.ID), 10),
		Subject:   user.UserID,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.Secret)
	return token, expires, err
}

// SetCookie logs user in on the response.
func (a *Authenticator) SetCookie(c *fiber.Ctx, user Models.User) error {
	token, expires, err := a.IssueToken(user)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    token,
		Expires:  expires,
		HTTPOnly: true,
		Secure:   a.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return nil
}

func (a *Authenticator) ClearCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   a.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Verify rejects requests without a valid token and stores the caller in
// c.Locals("user") as a Models.User.
func (a *Authenticator) Verify() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Cookies(CookieName)
		if raw == "" {
			if header := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(header, "Bearer ") {
				raw = strings.TrimPrefix(header, "Bearer ")
			}
		}
		if raw == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Login required",
			})
		}

		token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return a.Secret, nil
		})
		if err != nil || !token.Valid {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		claims, ok := token.Claims.(*jwt.RegisteredClaims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token claims",
			})
		}

		var user Models.User
		if err := a.DB.WithContext(c.UserContext()).Where("id = ?", claims.Issuer).First(&user).Error; err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "User not found",
			})
		}

		c.Locals("user", user)
		return c.Next()
	}
}

// CurrentUser returns the user stored by Verify.
func CurrentUser(c *fiber.Ctx) (Models.User, bool) {
	user, ok := c.Locals("user").(Models.User)
	return user, ok
}
