package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/servease/marketplace/models"
)

// TokenTTL matches the 7-day expiry the clients expect.
const TokenTTL = 7 * 24 * time.Hour

// IssueToken signs an access token carrying the caller's id, email and role.
func IssueToken(secret string, user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"id":    user.ID,
		"email": user.Email,
		"role":  string(user.Role),
		"exp":   time.Now().Add(TokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
