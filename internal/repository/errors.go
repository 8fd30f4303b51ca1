package repository

import "errors"

// ErrNotFound is returned by Get* methods when no row matches. Callers test
// with errors.Is; the wrapped message names the entity.
var ErrNotFound = errors.New("not found")
