package middleware

import (
	"soundsocial/internal/logger"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// UserIDKey is the Fiber locals key holding the authenticated principal id.
const UserIDKey = "userID"

// RequireAuth validates the bearer token and extracts the opaque principal
// identifier. Token issuance lives in the identity system; this middleware
// only verifies and reads.
func (m *Middleware) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		log := logger.New("middleware").Function("RequireAuth")

		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization header required",
			})
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization header format",
			})
		}

		token, err := jwt.Parse(tokenParts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(m.Config.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			log.Info("token validation failed", "error", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token claims",
			})
		}

		rawUserID, _ := claims["userId"].(string)
		userID, err := uuid.Parse(rawUserID)
		if err != nil {
			log.Info("token carries no valid principal id", "error", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token claims",
			})
		}

		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}

// GetUserID extracts the authenticated principal id from the Fiber
// context; returns uuid.Nil when the request was not authenticated.
func GetUserID(c *fiber.Ctx) uuid.UUID {
	if userID, ok := c.Locals(UserIDKey).(uuid.UUID); ok {
		return userID
	}
	return uuid.Nil
}
