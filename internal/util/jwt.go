package util

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ClientClaims names the browser storage scope carried in the client cookie.
type ClientClaims struct {
	ClientID string `json:"cid"`
	jwt.RegisteredClaims
}

// GenerateClientToken signs a scope token for clientID.
func GenerateClientToken(secret, issuer, clientID string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = 365 * 24 * time.Hour
	}
	now := time.Now()
	claims := &ClientClaims{
		ClientID: clientID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseClientToken verifies a scope token and returns its claims.
func ParseClientToken(secret, issuer, tokenStr string) (*ClientClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &ClientClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*ClientClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.ClientID == "" {
		return nil, errors.New("client token without client id")
	}
	return claims, nil
}
