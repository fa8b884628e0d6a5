package apperr

import (
  "errors"
)

// Sentinel errors for the failure modes the HTTP layer has to distinguish.
// Producers wrap these with fmt.Errorf("...: %w", ...) and handlers map them to
// a status with errors.Is. A chat that exists but belongs to someone else is
// reported as ErrNotFound on purpose, so callers cannot probe for other users'
// chats.
var (
  ErrUnauthenticated = errors.New("unauthenticated")
  ErrNotFound        = errors.New("not found")
  ErrValidation      = errors.New("invalid input")
  ErrProvider        = errors.New("model provider error")
  ErrPersistence     = errors.New("persistence error")
)
