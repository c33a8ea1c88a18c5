package messaging

// User is reference data owned by the durable store; the messaging core
// only ever reads it.
type User struct {
	ID       int64  `db:"id"`
	Username string `db:"username"`
	Email    string `db:"email"`
	Active   bool   `db:"active"`
}
