package db

import "errors"

// Domain-level database error sentinels.
var (
	ErrLogNotFound  = errors.New("invitation log not found")
	ErrInvalidLogID = errors.New("invalid invitation log id")
)
