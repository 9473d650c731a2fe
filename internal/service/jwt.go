package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is how long an issued party token stays valid.
const DefaultTokenTTL = 24 * time.Hour

var (
	ErrJWTNotConfigured = errors.New("jwt secret is not set")
	ErrInvalidToken     = errors.New("invalid token")
)

var jwtSecret []byte

// InitJWT sets the HMAC secret used to sign and verify party tokens.
func InitJWT(secret string) error {
	if secret == "" {
		return ErrJWTNotConfigured
	}
	jwtSecret = []byte(secret)
	return nil
}

// GenerateJWT issues a token whose "party" claim names the caller.
func GenerateJWT(party string, ttl time.Duration) (string, error) {
	if len(jwtSecret) == 0 {
		return "", ErrJWTNotConfigured
	}
	if party == "" {
		return "", errors.New("empty party")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"party": party,
		"exp":   now.Add(ttl).Unix(),
		"iat":   now.Unix(),
		"nbf":   now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ParseJWT validates tokenString and returns the party it was issued to.
func ParseJWT(tokenString string) (string, error) {
	if len(jwtSecret) == 0 {
		return "", ErrJWTNotConfigured
	}
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecret, nil
	}, jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}

	party, ok := claims["party"].(string)
	if !ok || party == "" {
		return "", errors.New("party not found")
	}

	return party, nil
}
