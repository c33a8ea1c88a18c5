package messaging

import "errors"

// Domain-level errors for direct-messaging behaviors.
var (
	ErrEmptyBody         = errors.New("messaging: message body is empty")
	ErrRecipientNotFound = errors.New("messaging: recipient does not resolve to an active user")
	ErrBlocked           = errors.New("messaging: recipient has blocked the sender")
	ErrBadMessageID      = errors.New("messaging: message id must be a positive integer")
	ErrMessageNotFound   = errors.New("messaging: no message with that id")
	ErrNotFound          = errors.New("messaging: not found")
)
