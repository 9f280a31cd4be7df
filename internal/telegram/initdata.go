// Package telegram implements the Telegram-facing pieces of the backend:
// verification of signed WebApp init data and a minimal Bot API client used
// for notifications.
package telegram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tgcatalog/backend/internal/apperrors"
)

// initDataMaxAge is the freshness window for a launch payload. A payload
// older than this is treated as a possible replay and rejected.
const initDataMaxAge = 86400 * time.Second

// Principal is the authenticated identity extracted from verified init
// data, prior to being mapped to a stored user.
type Principal struct {
	TelegramUserID int64
	Username       string
	FirstName      string
	LastName       string
	LanguageCode   string
	AuthDate       time.Time
}

type initDataUser struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	LanguageCode string `json:"language_code"`
}

// InitDataVerifier validates signed WebApp launch payloads against the
// secret derived from the bot token. Verification is a pure function of the
// payload, the token and the clock; no I/O happens here.
type InitDataVerifier struct {
	botToken string
	now      func() time.Time
}

func NewInitDataVerifier(botToken string) *InitDataVerifier {
	return &InitDataVerifier{botToken: botToken, now: time.Now}
}

// Verify checks the payload signature and freshness and extracts the
// embedded user. All failures are apperrors.AuthenticationError.
//
// The check string is the sorted "key=value" lines of every field except
// hash, joined with newlines; the signing key is
// HMAC-SHA256(key="WebAppData", msg=botToken). Signature comparison is
// constant time.
func (v *InitDataVerifier) Verify(initData string) (*Principal, error) {

	vals, err := url.ParseQuery(initData)
	if err != nil {
		return nil, apperrors.NewAuthenticationError("Invalid init data format: " + err.Error())
	}

	// Repeated keys are not meaningful here: Values.Get returns the first
	// value, which is the one that participated in signing.
	receivedHash := vals.Get("hash")
	if receivedHash == "" {
		return nil, apperrors.NewAuthenticationError("Missing hash in init data")
	}
	vals.Del("hash")

	keys := make([]string, 0, len(vals))
	for k := range vals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+"="+vals.Get(k))
	}
	dataCheckString := strings.Join(lines, "\n")

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(v.botToken))
	secretKey := secret.Sum(nil)

	mac := hmac.New(sha256.New, secretKey)
	mac.Write([]byte(dataCheckString))
	calculatedHash := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(calculatedHash), []byte(receivedHash)) {
		return nil, apperrors.NewAuthenticationError("Invalid signature")
	}

	// Freshness: a missing auth_date counts as zero and is therefore stale.
	var authDate int64
	if raw := vals.Get("auth_date"); raw != "" {
		authDate, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, apperrors.NewAuthenticationError("Invalid init data format: " + err.Error())
		}
	}
	if v.now().Unix()-authDate > int64(initDataMaxAge/time.Second) {
		return nil, apperrors.NewAuthenticationError("Init data expired")
	}

	userRaw := vals.Get("user")
	if userRaw == "" {
		return nil, apperrors.NewAuthenticationError("Invalid init data format: missing user field")
	}

	var user initDataUser
	if err := json.Unmarshal([]byte(userRaw), &user); err != nil {
		return nil, apperrors.NewAuthenticationError("Invalid init data format: " + err.Error())
	}

	if user.LanguageCode == "" {
		user.LanguageCode = "ru"
	}

	return &Principal{
		TelegramUserID: user.ID,
		Username:       user.Username,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		LanguageCode:   user.LanguageCode,
		AuthDate:       time.Unix(authDate, 0),
	}, nil
}
