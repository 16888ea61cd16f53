package tokenverify

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func mintToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func TestVerifyValidToken(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	token := mintToken(t, jwt.MapClaims{
		"sub":   "8d7f2c9a-1111-4222-8333-444455556666",
		"aud":   "authenticated",
		"email": "tg_555@telegram.local",
		"exp":   now.Add(time.Hour).Unix(),
		"iat":   now.Unix(),
		"user_metadata": map[string]any{
			"telegram_id": float64(555),
			"first_name":  "Ada",
		},
	})

	v := New(testSecret, "authenticated")
	result, err := v.Verify(token, func() time.Time { return now })
	require.NoError(t, err)
	assert.Equal(t, "8d7f2c9a-1111-4222-8333-444455556666", result.UserID)
	assert.Equal(t, "tg_555@telegram.local", result.Email)
	assert.Equal(t, int64(555), result.TelegramID)
	assert.NotContains(t, result.Claims, "sub")
	assert.NotContains(t, result.Claims, "email")
}

func TestVerifyExpiredToken(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	token := mintToken(t, jwt.MapClaims{
		"sub": "user-1",
		"aud": "authenticated",
		"exp": now.Add(-2 * time.Hour).Unix(),
	})

	v := New(testSecret, "authenticated")
	_, err := v.Verify(token, func() time.Time { return now })
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyWrongAudience(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	token := mintToken(t, jwt.MapClaims{
		"sub": "user-1",
		"aud": "service_role",
		"exp": now.Add(time.Hour).Unix(),
	})

	v := New(testSecret, "authenticated")
	_, err := v.Verify(token, func() time.Time { return now })
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyWrongSecret(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	token := mintToken(t, jwt.MapClaims{
		"sub": "user-1",
		"aud": "authenticated",
		"exp": now.Add(time.Hour).Unix(),
	})

	v := New("another-secret-that-is-long-enough-for-hs256", "authenticated")
	_, err := v.Verify(token, func() time.Time { return now })
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifySubjectMissing(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	token := mintToken(t, jwt.MapClaims{
		"aud": "authenticated",
		"exp": now.Add(time.Hour).Unix(),
	})

	v := New(testSecret, "authenticated")
	_, err := v.Verify(token, func() time.Time { return now })
	assert.ErrorIs(t, err, ErrSubjectMissing)
}
