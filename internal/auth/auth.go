// internal/auth/auth.go
// Session-token verification. Tokens are issued elsewhere; the hub only
// checks the signature and extracts the identity claims.
package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Claims holds the session-token claims the hub cares about.
type Claims struct {
	Identity    string `json:"identity"`
	DisplayName string `json:"display_name"`
	jwt.RegisteredClaims
}

// Verifier validates a session token and returns its claims.
type Verifier interface {
	Verify(token string) (*Claims, error)
}

// JWTVerifier validates HS256-signed session tokens.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

func (v *JWTVerifier) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.Identity == "" {
		return nil, fmt.Errorf("token missing identity claim")
	}
	if claims.DisplayName == "" {
		claims.DisplayName = claims.Identity
	}
	return claims, nil
}
