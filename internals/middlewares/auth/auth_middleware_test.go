package auth

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursemarket_backend/internals/constants"
	helper "coursemarket_backend/internals/helpers"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func newAuthApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: helper.FromFiberError})
	app.Use(AuthMiddleware(testSecret))
	app.Get("/me", func(c *fiber.Ctx) error {
		id, err := helper.GetUserIDFromToken(c)
		if err != nil {
			return err
		}
		return c.SendString(id.String() + "|" + helper.GetRole(c))
	})
	app.Post("/instructor", OnlyRoles(constants.RoleErrorInstructor("quiz"), constants.InstructorAndAbove...), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func TestAuthMiddleware(t *testing.T) {
	userID := uuid.New()
	valid := signToken(t, testSecret, jwt.MapClaims{
		"id":   userID.String(),
		"role": "Student",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	tests := []struct {
		name   string
		header string
		cookie string
		want   int
		body   string
	}{
		{name: "bearer header", header: "Bearer " + valid, want: fiber.StatusOK, body: userID.String() + "|student"},
		{name: "lowercase scheme and quotes", header: "bearer  \"" + valid + "\"", want: fiber.StatusOK},
		{name: "cookie fallback", cookie: valid, want: fiber.StatusOK},
		{name: "no token", want: fiber.StatusUnauthorized},
		{name: "bad scheme", header: "Basic abc", want: fiber.StatusUnauthorized},
		{name: "wrong secret", header: "Bearer " + signToken(t, "other", jwt.MapClaims{
			"id": userID.String(), "exp": time.Now().Add(time.Hour).Unix(),
		}), want: fiber.StatusUnauthorized},
		{name: "expired", header: "Bearer " + signToken(t, testSecret, jwt.MapClaims{
			"id": userID.String(), "exp": time.Now().Add(-time.Hour).Unix(),
		}), want: fiber.StatusUnauthorized},
		{name: "missing id", header: "Bearer " + signToken(t, testSecret, jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		}), want: fiber.StatusUnauthorized},
	}

	app := newAuthApp()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "access_token", Value: tt.cookie})
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
			if tt.body != "" {
				b, _ := io.ReadAll(resp.Body)
				assert.Equal(t, tt.body, string(b))
			}
		})
	}
}

func TestOnlyRoles(t *testing.T) {
	app := newAuthApp()
	do := func(role string) int {
		tok := signToken(t, testSecret, jwt.MapClaims{
			"id": uuid.NewString(), "role": role, "exp": time.Now().Add(time.Hour).Unix(),
		})
		req := httptest.NewRequest(http.MethodPost, "/instructor", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusNoContent, do(constants.RoleInstructor))
	assert.Equal(t, fiber.StatusNoContent, do(constants.RoleAdmin))
	assert.Equal(t, fiber.StatusForbidden, do(constants.RoleStudent))
	assert.Equal(t, fiber.StatusUnauthorized, do(""))
}

func TestExpiryFormats(t *testing.T) {
	now := time.Unix(1_700_000_000, 0).UTC()
	skew := 30 * time.Second

	assert.NoError(t, checkExpiry(jwt.MapClaims{"exp": float64(now.Unix() - 10)}, now, skew), "within skew")
	assert.NoError(t, checkExpiry(jwt.MapClaims{"exp": " 1700000100 "}, now, skew))
	assert.ErrorIs(t, checkExpiry(jwt.MapClaims{"exp": int64(now.Unix() - 60)}, now, skew), errTokenExpired)
	assert.ErrorIs(t, checkExpiry(jwt.MapClaims{}, now, skew), errNoExpiry)
	assert.Error(t, checkExpiry(jwt.MapClaims{"exp": "soon"}, now, skew))
	assert.Error(t, checkExpiry(jwt.MapClaims{"exp": true}, now, skew))
}

func TestReadIdentity(t *testing.T) {
	id := uuid.New()
	who, err := readIdentity(jwt.MapClaims{"id": " " + id.String() + " ", "role": " Instructor "})
	require.NoError(t, err)
	assert.Equal(t, id, who.UserID)
	assert.Equal(t, constants.RoleInstructor, who.Role)

	_, err = readIdentity(jwt.MapClaims{"id": uuid.Nil.String()})
	assert.ErrorIs(t, err, errMissingUserID)
	_, err = readIdentity(jwt.MapClaims{"id": 42})
	assert.ErrorIs(t, err, errMissingUserID)
}
