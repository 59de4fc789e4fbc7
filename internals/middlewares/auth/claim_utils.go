package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

var (
	errNoToken       = errors.New("no token provided")
	errBadScheme     = errors.New("authorization must use the Bearer scheme")
	errNoExpiry      = errors.New("token has no exp")
	errTokenExpired  = errors.New("token expired")
	errMissingUserID = errors.New("token has no valid user id")
)

// identity = bagian token yang dipakai fitur quiz.
type identity struct {
	UserID uuid.UUID
	Role   string // lowercase, boleh kosong
}

// bearerToken: header Authorization dulu, lalu cookie access_token.
// Scheme case-insensitive, spasi ganda & kutip di sekitar token ditoleransi.
func bearerToken(c *fiber.Ctx) (string, error) {
	raw := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if raw == "" {
		if ck := strings.TrimSpace(c.Cookies("access_token")); ck != "" {
			return strings.Trim(ck, "\"'"), nil
		}
		return "", errNoToken
	}

	scheme, rest, ok := strings.Cut(raw, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", errBadScheme
	}
	tok := strings.Trim(strings.TrimSpace(rest), "\"'")
	if tok == "" {
		return "", errNoToken
	}
	return tok, nil
}

// expiresAt menerima exp numerik (standar) maupun string angka (issuer lama).
func expiresAt(claims jwt.MapClaims) (time.Time, error) {
	switch v := claims["exp"].(type) {
	case nil:
		return time.Time{}, errNoExpiry
	case float64:
		return time.Unix(int64(v), 0).UTC(), nil
	case int64:
		return time.Unix(v, 0).UTC(), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("exp %q: %w", v, err)
		}
		return time.Unix(n, 0).UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("exp has type %T", v)
	}
}

func checkExpiry(claims jwt.MapClaims, now time.Time, skew time.Duration) error {
	exp, err := expiresAt(claims)
	if err != nil {
		return err
	}
	if now.After(exp.Add(skew)) {
		return fmt.Errorf("%w at %s", errTokenExpired, exp.Format(time.RFC3339))
	}
	return nil
}

func readIdentity(claims jwt.MapClaims) (identity, error) {
	s, _ := claims["id"].(string)
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil || id == uuid.Nil {
		return identity{}, errMissingUserID
	}
	role, _ := claims["role"].(string)
	return identity{
		UserID: id,
		Role:   strings.ToLower(strings.TrimSpace(role)),
	}, nil
}
