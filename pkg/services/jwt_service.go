package services

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Claims is the JWT payload the external identity provider issues. The
// gateway only verifies tokens; issuance lives with the provider.
type Claims struct {
	UserID   uuid.UUID `json:"user_id"`
	Email    string    `json:"email"`
	Username string    `json:"username"`
	jwt.RegisteredClaims
}

// ValidateToken validates an HS256 bearer token against secret and returns
// the claims if valid.
func ValidateToken(tokenString, secret string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})

	if err != nil {
		log.Warnf("JWT validation failed: %v", err)
		return nil, err
	}

	if !token.Valid {
		log.Warn("Invalid JWT token.")
		return nil, jwt.ErrInvalidKey
	}

	return claims, nil
}
