package Controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"CoHub/Models"
	"CoHub/middleware"
)

func signupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	db, err := Models.OpenMemory(t.Name())
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	auth := NewAuthController(db, middleware.NewAuthenticator(db, "secret", time.Hour), nil)
	app := fiber.New()
	app.Post("/signup", auth.Signup)
	return app, db
}

func postSignup(t *testing.T, app *fiber.App, handle string) (int, map[string]interface{}) {
	t.Helper()
	raw, err := json.Marshal(map[string]string{"userId": handle, "password": "password1", "name": "Ana"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/signup", bytes.NewReader(raw))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestSignupRejectsTakenUserID(t *testing.T) {
	app, _ := signupApp(t)

	status, _ := postSignup(t, app, "ana")
	assert.Equal(t, http.StatusCreated, status)

	status, body := postSignup(t, app, "ana")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "userId", body["field"])
}

func TestSignupLosingARaceIsAValidationError(t *testing.T) {
	app, db := signupApp(t)

	// Another signup for the same handle commits after the availability check.
	raced := false
	err := db.Callback().Create().Before("gorm:begin_transaction").Register("concurrent_signup", func(tx *gorm.DB) {
		user, ok := tx.Statement.Dest.(*Models.User)
		if !ok || raced {
			return
		}
		raced = true
		_, err := tx.Statement.ConnPool.ExecContext(tx.Statement.Context,
			"INSERT INTO users (user_id, password, name, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
			user.UserID, []byte("x"), "Other", time.Now(), time.Now())
		require.NoError(t, err)
	})
	require.NoError(t, err)

	status, body := postSignup(t, app, "ana")
	assert.True(t, raced)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "userId", body["field"])
	assert.Equal(t, "userId is already taken", body["error"])
}
