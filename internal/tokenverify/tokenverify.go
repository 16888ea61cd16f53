package tokenverify

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken   = errors.New("invalid_token")
	ErrTokenExpired   = errors.New("token_expired")
	ErrSubjectMissing = errors.New("subject_missing")
)

// Result is the identity extracted from a provider-issued access token.
type Result struct {
	UserID     string
	Email      string
	TelegramID int64
	Claims     map[string]any
}

// Verifier validates HS256 access tokens minted by the identity provider
// against the shared provider JWT secret.
type Verifier struct {
	secret   []byte
	audience string
}

func New(secret, audience string) *Verifier {
	return &Verifier{secret: []byte(secret), audience: audience}
}

// Verify parses and validates an access token, returning the subject, the
// pseudo-address email and the telegram id mirrored in user_metadata.
func (v *Verifier) Verify(token string, nowFn func() time.Time) (*Result, error) {
	if nowFn == nil {
		nowFn = time.Now
	}
	claims := jwt.MapClaims{}
	parser := jwt.NewParser(
		jwt.WithAudience(v.audience),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(30*time.Second),
		jwt.WithTimeFunc(nowFn),
	)
	tok, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil || tok == nil || !tok.Valid {
		if err != nil && errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, ErrSubjectMissing
	}
	email, _ := claims["email"].(string)

	var telegramID int64
	if meta, ok := claims["user_metadata"].(map[string]any); ok {
		if id, ok := meta["telegram_id"].(float64); ok {
			telegramID = int64(id)
		}
	}

	filtered := map[string]any{}
	for k, val := range claims {
		if k == "sub" || k == "email" {
			continue
		}
		filtered[k] = val
	}
	return &Result{UserID: sub, Email: email, TelegramID: telegramID, Claims: filtered}, nil
}
