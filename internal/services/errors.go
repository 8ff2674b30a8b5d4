package services

import "errors"

// Error taxonomy for catalog operations. Handlers match these with errors.Is
// to pick a status code; anything else is an internal error.
var (
	// ErrValidation marks input that fails its field constraints. No gateway
	// call has been made when this is returned.
	ErrValidation = errors.New("validation failed")

	// ErrCategoryNotFound marks a write referencing a category that does not
	// exist. Distinct from ErrValidation so clients can tell a field-format
	// problem from a referential-integrity one.
	ErrCategoryNotFound = errors.New("category does not exist")

	// ErrProductNotFound marks an edit or delete targeting a missing product.
	ErrProductNotFound = errors.New("product not found")

	// ErrStorageUnavailable marks a failed signed-upload issuance. Clients
	// should show a generic retry message, not a field-level hint.
	ErrStorageUnavailable = errors.New("storage gateway unavailable")
)
