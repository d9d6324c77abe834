package types

import "errors"

// Error kinds returned by Inventory operations. Operations wrap these with
// context; match them with errors.Is.
var (
	ErrNotFound             = errors.New("not found")
	ErrReferentialIntegrity = errors.New("referential integrity violation")
	ErrInvalidInput         = errors.New("invalid input")
	ErrStorageFailure       = errors.New("storage failure")
)

// Lifecycle errors.
var (
	ErrDetached        = errors.New("inventory is detached")
	ErrAlreadyAttached = errors.New("inventory is already attached")
)

// Kind names reported by KindOf.
const (
	KindNotFound             = "not_found"
	KindReferentialIntegrity = "referential_integrity"
	KindInvalidInput         = "invalid_input"
	KindStorageFailure       = "storage_failure"
	KindUnknown              = "unknown"
)

// KindOf returns the kind name of err, or KindUnknown when err carries none
// of the Inventory error kinds. A detached inventory counts as a storage
// failure.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrReferentialIntegrity):
		return KindReferentialIntegrity
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrStorageFailure), errors.Is(err, ErrDetached):
		return KindStorageFailure
	default:
		return KindUnknown
	}
}

// IsUserError reports whether err was caused by the caller's input rather
// than by the storage engine.
func IsUserError(err error) bool {
	switch KindOf(err) {
	case KindNotFound, KindReferentialIntegrity, KindInvalidInput:
		return true
	default:
		return false
	}
}
