package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/timesheet/internal/common"
)

// Claims carries the server-side session id. Everything else about the
// session lives in the session manager, so revocation needs no token list.
type Claims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
}

// GenerateToken signs an HS256 token for sessionID valid until expiresAt.
func GenerateToken(sessionID string, secretKey []byte, issuedAt, expiresAt time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		SessionID: sessionID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetSessionIDFromToken validates the signature and expiry of tokenString.
// Any failure is reported as common.ErrSessionInvalid.
func GetSessionIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("%w: token expired", common.ErrSessionInvalid)
		}
		return "", fmt.Errorf("%w: %w", common.ErrSessionInvalid, err)
	}

	if !token.Valid || claims.SessionID == "" {
		return "", common.ErrSessionInvalid
	}

	return claims.SessionID, nil
}
