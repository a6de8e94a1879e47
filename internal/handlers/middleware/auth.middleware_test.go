package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"soundsocial/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newAuthTestApp(t *testing.T) (*fiber.App, *uuid.UUID) {
	t.Helper()

	middleware := New(config.Config{JWTSecret: testSecret})

	var seenUserID uuid.UUID
	app := fiber.New()
	app.Get("/protected", middleware.RequireAuth(), func(c *fiber.Ctx) error {
		seenUserID = GetUserID(c)
		return c.SendStatus(fiber.StatusOK)
	})

	return app, &seenUserID
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestRequireAuth_ValidToken(t *testing.T) {
	app, seenUserID := newAuthTestApp(t)

	userID := uuid.New()
	token := signToken(t, testSecret, jwt.MapClaims{
		"userId": userID.String(),
		"exp":    time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, userID, *seenUserID)
}

func TestRequireAuth_RejectsMissingHeader(t *testing.T) {
	app, _ := newAuthTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/protected", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireAuth_RejectsMalformedHeader(t *testing.T) {
	app, _ := newAuthTestApp(t)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Token abc")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireAuth_RejectsWrongSecret(t *testing.T) {
	app, _ := newAuthTestApp(t)

	token := signToken(t, "other-secret", jwt.MapClaims{
		"userId": uuid.New().String(),
		"exp":    time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireAuth_RejectsExpiredToken(t *testing.T) {
	app, _ := newAuthTestApp(t)

	token := signToken(t, testSecret, jwt.MapClaims{
		"userId": uuid.New().String(),
		"exp":    time.Now().Add(-time.Hour).Unix(),
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireAuth_RejectsTokenWithoutPrincipal(t *testing.T) {
	app, _ := newAuthTestApp(t)

	token := signToken(t, testSecret, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestGetUserID_UnauthenticatedReturnsNil(t *testing.T) {
	app := fiber.New()

	var got uuid.UUID
	app.Get("/open", func(c *fiber.Ctx) error {
		got = GetUserID(c)
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/open", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, uuid.Nil, got)
}
