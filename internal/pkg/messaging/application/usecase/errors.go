package usecase

import "fmt"

// ErrPersistence indicates an infrastructure/store failure inside a use
// case. Controllers surface it as a generic failure; the underlying cause
// is logged, never sent to the client.
var ErrPersistence = fmt.Errorf("messaging use case persistence error")
