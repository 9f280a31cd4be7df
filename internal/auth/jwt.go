// Package auth implements the signed session token: HS256 JWTs carrying the
// internal user ID, the Telegram user ID and the role. Tokens are stateless;
// the server holds only the signing secret.
package auth

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tgcatalog/backend/internal/common"
)

// Claims includes the registered claims plus the custom fields every
// authenticated request needs to resolve its user.
type Claims struct {
	jwt.RegisteredClaims
	TelegramUserID int64  `json:"telegram_user_id"`
	Role           string `json:"role"`
}

// GenerateToken issues a signed token for the given user, expiring after
// validityDuration. The returned time is the absolute expiry embedded in
// the token.
func GenerateToken(userID int64, telegramUserID int64, role string, secretKey []byte, validityDuration time.Duration) (string, time.Time, error) {
	expiresAt := time.Now().Add(validityDuration)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		TelegramUserID: telegramUserID,
		Role:           role,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// ParseToken decodes and validates a token string. Signature and expiry
// failures map to common.ErrInvalidToken; structurally valid tokens with
// missing claims are the caller's concern.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, common.ErrInvalidToken
		}
		return secretKey, nil
	})
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// UserID extracts the internal user ID from the subject claim. The zero
// return with false signals a malformed payload.
func (c *Claims) UserID() (int64, bool) {
	if c.Subject == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
