package telegram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// secretNamespace keys the first HMAC pass. The order is load-bearing: the
// derived secret is HMAC-SHA256(key=secretNamespace, message=botToken), and
// swapping key and message breaks verification for every real payload.
const secretNamespace = "WebAppData"

var (
	ErrHashMissing      = errors.New("hash field missing")
	ErrInvalidSignature = errors.New("signature mismatch")
	ErrAuthDateMissing  = errors.New("auth_date missing or malformed")
	ErrExpired          = errors.New("payload expired")
	ErrUserMissing      = errors.New("user field missing or malformed")
)

// Identity is the user descriptor attested by Telegram. It is trusted only
// after the enclosing payload's signature has been verified.
type Identity struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
	PhotoURL  string `json:"photo_url,omitempty"`
}

// InitData is the verified contents of a Mini-App initData payload.
type InitData struct {
	User       Identity
	AuthDate   time.Time
	StartParam string
}

// Verify authenticates a urlencoded initData payload against the bot token
// and checks its freshness. It is pure apart from the injected clock: any
// failed step invalidates the whole attempt.
func Verify(initData, botToken string, maxAge time.Duration, now func() time.Time) (*InitData, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, fmt.Errorf("parse initData: %w", err)
	}

	hash := values.Get("hash")
	if hash == "" {
		return nil, ErrHashMissing
	}
	values.Del("hash")

	if !hmac.Equal([]byte(computeSignature(values, botToken)), []byte(hash)) {
		return nil, ErrInvalidSignature
	}

	authDate, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
	if err != nil {
		return nil, ErrAuthDateMissing
	}
	if now().Unix()-authDate > int64(maxAge.Seconds()) {
		return nil, ErrExpired
	}

	rawUser := values.Get("user")
	if rawUser == "" {
		return nil, ErrUserMissing
	}
	var user Identity
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil || user.ID == 0 {
		return nil, ErrUserMissing
	}

	return &InitData{
		User:       user,
		AuthDate:   time.Unix(authDate, 0),
		StartParam: values.Get("start_param"),
	}, nil
}

// computeSignature builds the canonical key-sorted string and signs it with
// the namespaced secret derived from the bot token.
func computeSignature(values url.Values, botToken string) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+values.Get(k))
	}
	canonical := strings.Join(pairs, "\n")

	secret := hmacSHA256([]byte(secretNamespace), []byte(botToken))
	return hex.EncodeToString(hmacSHA256(secret, []byte(canonical)))
}

func hmacSHA256(key, message []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(message)
	return mac.Sum(nil)
}
