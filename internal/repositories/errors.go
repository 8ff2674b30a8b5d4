package repositories

import "errors"

// ErrNotFound is returned when a lookup or mutation targets a row that does
// not exist. Implementations wrap it with the entity and id for context.
var ErrNotFound = errors.New("record not found")
