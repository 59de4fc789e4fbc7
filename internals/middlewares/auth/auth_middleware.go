package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"

	helper "coursemarket_backend/internals/helpers"
	"coursemarket_backend/internals/logger"
)

// Toleransi jam server vs issuer
const expirySkew = 30 * time.Second

// AuthMiddleware verifikasi JWT (HS256) dari header Bearer atau cookie access_token.
// Token diterbitkan service auth terpisah; di sini hanya dibaca id & role.
func AuthMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		log := logger.Log.WithFields(logrus.Fields{
			"method": c.Method(),
			"path":   c.Path(),
		})

		// 1) token dari header / cookie
		tokenString, err := bearerToken(c)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - "+err.Error())
		}

		// 2) signature (HS256 saja)
		if secret == "" {
			log.Error("🔥 JWT secret is empty")
			return fiber.NewError(fiber.StatusInternalServerError, "Missing JWT Secret")
		}
		claims := jwt.MapClaims{}
		parser := jwt.Parser{
			SkipClaimsValidation: true,
			ValidMethods:         []string{jwt.SigningMethodHS256.Alg()},
		}
		if _, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}); err != nil {
			log.WithError(err).Warn("token parse failed")
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Token parse error")
		}

		// 3) exp, dengan toleransi skew
		if err := checkExpiry(claims, time.Now().UTC(), expirySkew); err != nil {
			log.WithError(err).Info("token rejected")
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Token expired")
		}

		// 4) identitas ke Locals
		who, err := readIdentity(claims)
		if err != nil {
			log.WithError(err).Warn("token without valid user id")
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Invalid or missing user ID")
		}
		c.Locals(helper.LocalUserID, who.UserID.String())
		if who.Role != "" {
			c.Locals(helper.LocalRole, who.Role)
		}

		return c.Next()
	}
}
