// SPDX-License-Identifier: GPL-3.0-only

package middlewares

import (
	"aventrada-server/commons"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenIssuer   = "https://aventrada.com"
	tokenAudience = "https://api.aventrada.com"
)

var ErrInvalidToken = errors.New("invalid session token")

// SessionClaims identifies a session row: sid is the row id, jti its token.
type SessionClaims struct {
	SessionID uint `json:"sid"`
	UserID    uint `json:"uid"`
	jwt.RegisteredClaims
}

func jwtSecret() []byte {
	return []byte(commons.GetEnv("JWT_SECRET", "default_very_secret_key"))
}

func SignSessionToken(sessionID, userID uint, tokenID string, expiresAt time.Time) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		SessionID: sessionID,
		UserID:    userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   fmt.Sprint(userID),
			Audience:  jwt.ClaimStrings{tokenAudience},
			ID:        tokenID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	return token.SignedString(jwtSecret())
}

func ParseSessionToken(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecret(), nil
	}, jwt.WithAudience(tokenAudience), jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.ID == "" || claims.SessionID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
