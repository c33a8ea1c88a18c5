package adapter

import (
	"errors"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"

	"github.com/angelromerodev/chat-project-sci/internal/infrastructure/auth/port"
)

// Claims carries the registered claims plus the identity fields the
// issuer embeds for this service.
type Claims struct {
	jwt.RegisteredClaims
	UserID   int64  `json:"uid"`
	Username string `json:"username"`
}

// JWTVerifier validates HS256 bearer tokens signed with a shared secret.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret []byte) *JWTVerifier {
	return &JWTVerifier{secret: secret}
}

// NewJWTVerifierFromEnv reads the shared secret from AUTH_SECRET.
func NewJWTVerifierFromEnv() (*JWTVerifier, error) {
	secret := os.Getenv("AUTH_SECRET")
	if secret == "" {
		return nil, errors.New("auth: AUTH_SECRET environment variable is not set")
	}
	return NewJWTVerifier([]byte(secret)), nil
}

var _ port.Verifier = (*JWTVerifier)(nil)

func (v *JWTVerifier) Verify(tokenString string) (port.Identity, error) {
	if tokenString == "" {
		return port.Identity{}, port.ErrUnauthorized
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return port.Identity{}, port.ErrUnauthorized
	}
	if claims.UserID <= 0 {
		return port.Identity{}, port.ErrUnauthorized
	}

	return port.Identity{UserID: claims.UserID, Username: claims.Username}, nil
}

// IssueToken signs a token for the given identity. Token issuance belongs
// to the identity service; this helper exists for local development and
// tests.
func IssueToken(secret []byte, userID int64, username string, opts ...func(*Claims)) (string, error) {
	claims := Claims{UserID: userID, Username: username}
	for _, opt := range opts {
		opt(&claims)
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}
