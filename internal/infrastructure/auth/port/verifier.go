package port

import "errors"

// Identity is the resolved result of a successful credential check.
type Identity struct {
	UserID   int64
	Username string
}

// ErrUnauthorized covers every bad-credential outcome: missing, malformed
// or expired tokens. Callers must not learn which.
var ErrUnauthorized = errors.New("auth: unauthorized")

// Verifier resolves a bearer credential to an identity. Credential
// issuance and validation internals live outside this service; the
// messaging core only consumes the resolved identity at handshake time.
type Verifier interface {
	Verify(token string) (Identity, error)
}
