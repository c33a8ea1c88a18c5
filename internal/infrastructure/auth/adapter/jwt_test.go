package adapter

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelromerodev/chat-project-sci/internal/infrastructure/auth/port"
)

var testSecret = []byte("test-secret")

func TestJWTVerifier(t *testing.T) {
	v := NewJWTVerifier(testSecret)

	t.Run("valid token", func(t *testing.T) {
		token, err := IssueToken(testSecret, 42, "alice")
		require.NoError(t, err)

		id, err := v.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, int64(42), id.UserID)
		assert.Equal(t, "alice", id.Username)
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := v.Verify("")
		assert.ErrorIs(t, err, port.ErrUnauthorized)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := v.Verify("not.a.jwt")
		assert.ErrorIs(t, err, port.ErrUnauthorized)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := IssueToken([]byte("other-secret"), 42, "alice")
		require.NoError(t, err)

		_, err = v.Verify(token)
		assert.ErrorIs(t, err, port.ErrUnauthorized)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := IssueToken(testSecret, 42, "alice", func(c *Claims) {
			c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
		})
		require.NoError(t, err)

		_, err = v.Verify(token)
		assert.ErrorIs(t, err, port.ErrUnauthorized)
	})

	t.Run("missing user id claim", func(t *testing.T) {
		token, err := IssueToken(testSecret, 0, "nobody")
		require.NoError(t, err)

		_, err = v.Verify(token)
		assert.ErrorIs(t, err, port.ErrUnauthorized)
	})

	t.Run("unsigned token rejected", func(t *testing.T) {
		tok := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 42, Username: "alice"})
		signed, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = v.Verify(signed)
		assert.ErrorIs(t, err, port.ErrUnauthorized)
	})
}
