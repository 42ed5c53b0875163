package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prediag/inference-service/internal/config"
)

// GenerateServiceToken creates a signed JWT used by peer services (the
// business-logic service) to call protected diagnostic endpoints.
func GenerateServiceToken(cfg *config.Config, subject string, ttl time.Duration) (string, error) {
	if cfg.JWT.Secret == "" {
		return "", errors.New("JWT secret not configured")
	}
	claims := jwt.MapClaims{
		"sub": subject,
		"iss": "prediag-inference-service",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(ttl).Unix(),
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(cfg.JWT.Secret))
}
