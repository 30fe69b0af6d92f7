package authn

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/lista-de-compras/shopping-list-services/models"
)

var ErrInvalidJWT = errors.New("invalid jwt token")
var ErrInvalidClaims = errors.New("invalid claims")

// Claims carries the authenticated user identity. Subject is the user id.
type Claims struct {
	jwt.StandardClaims
	Name  string `json:"name"`
	Email string `json:"email"`
}

// IssueToken signs an HS256 token identifying the given user.
func IssueToken(user *models.User, secret string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		StandardClaims: jwt.StandardClaims{
			Subject:   user.ID.String(),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
		Name:  user.Name,
		Email: user.Email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseClaims verifies the token signature and expiry and returns its claims.
// Every request must pass through here before any item logic runs.
func ParseClaims(token, secret string) (Claims, error) {
	claims := Claims{}
	t, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return Claims{}, ErrInvalidJWT
	}
	if t == nil || !t.Valid {
		return Claims{}, ErrInvalidClaims
	}
	return claims, nil
}
