// Package auth is the identity boundary: it mints and verifies the two token
// families the platform uses. External tokens identify a user and a role;
// internal tokens carry no subject beyond "trusted internal caller" and are
// minted per outbound service call with a TTL of minutes.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"ticketly/internal/models"
	"ticketly/internal/svcerr"
)

type ExternalClaims struct {
	UserID string          `json:"user_id"`
	Role   models.AuthRole `json:"role"`
	jwt.RegisteredClaims
}

type InternalClaims struct {
	Service string `json:"service"`
	jwt.RegisteredClaims
}

func EncodeExternalJWT(secret []byte, userID string, role models.AuthRole, ttl time.Duration) (string, error) {
	claims := ExternalClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func DecodeExternalJWT(secret []byte, raw string) (*ExternalClaims, error) {
	var claims ExternalClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, svcerr.Forbiddenf("invalid user token")
	}
	return &claims, nil
}

func EncodeInternalJWT(secret []byte, service string, ttl time.Duration) (string, error) {
	claims := InternalClaims{
		Service: service,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func DecodeInternalJWT(secret []byte, raw string) (*InternalClaims, error) {
	var claims InternalClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, svcerr.Forbiddenf("invalid internal token")
	}
	return &claims, nil
}
