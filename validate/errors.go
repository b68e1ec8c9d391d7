package validate

import "errors"

// Sentinel errors for response validation.
var (
	// ErrSchemaNotFound is returned when a schema exists on neither
	// the version-scoped nor the unscoped path. It is a
	// configuration error, fatal at setup and never retried.
	ErrSchemaNotFound = errors.New("validate: schema not found")

	// ErrValidation is returned when a hard check fails; the full
	// violation list is carried in the error message.
	ErrValidation = errors.New("validate: response failed hard checks")
)
