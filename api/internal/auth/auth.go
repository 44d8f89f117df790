package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var ErrUnauthorized = errors.New("missing or invalid bearer token")

// VerifyBearer validates an Authorization header value and returns the token
// subject. Signature and expiry are checked here, not delegated to any
// gateway in front of the service.
func VerifyBearer(secret, header string) (string, error) {
	raw := strings.TrimSpace(header)
	if raw == "" {
		return "", ErrUnauthorized
	}
	if !strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return "", ErrUnauthorized
	}
	raw = strings.TrimSpace(raw[len("bearer "):])

	tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return "", ErrUnauthorized
	}

	sub, err := tok.Claims.GetSubject()
	if err != nil || strings.TrimSpace(sub) == "" {
		return "", ErrUnauthorized
	}
	return sub, nil
}
