package types

import "errors"

// Errors
var (
	ErrInvalidPrefix   = errors.New("invalid prefix: must be 1-64 hex characters")
	ErrDigestFailed    = errors.New("digest computation failed")
	ErrExhausted       = errors.New("search space exhausted without a match")
	ErrIncompleteDraft = errors.New("transaction draft is incomplete")
)
