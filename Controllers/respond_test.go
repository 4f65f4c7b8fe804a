package Controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"CoHub/Models"
)

func TestRespondError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", Models.Invalid("title", "title is required"), http.StatusBadRequest, "title is required"},
		{"duplicate member", Models.ErrDuplicateMember, http.StatusBadRequest, "user is already a project member"},
		{"not found", Models.NotFound("task"), http.StatusNotFound, "Task not found"},
		{"forbidden", Models.ErrForbidden, http.StatusForbidden, "You are not a member of this project"},
		{"store", Models.StoreFailure("fetch tasks", errors.New("disk I/O error")), http.StatusInternalServerError, "Failed to fetch tasks"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "Failed to process request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				return respondError(c, zap.NewNop(), tt.err)
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.message, body["error"])
			assert.NotContains(t, body["error"], "disk")
		})
	}
}

func TestValidateStructUsesJSONNames(t *testing.T) {
	err := validateStruct(&signupRequest{UserID: "ab", Password: "password1", Name: "A"})
	var invalid *Models.ValidationError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "userId", invalid.Field)
	assert.Contains(t, invalid.Message, "userId must be at least 3 characters")

	err = validateStruct(&signupRequest{UserID: "abc", Password: "password1", Name: "A", Email: "nope"})
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "email", invalid.Field)

	assert.NoError(t, validateStruct(&loginRequest{UserID: "abc", Password: "x"}))
}
