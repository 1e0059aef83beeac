package errors

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Custom error taxonomy for the URL alias service. Handlers map these onto
// HTTP statuses; services never return raw gorm errors to callers.

// ErrInvalidInput is the base class for caller mistakes (4xx territory).
var ErrInvalidInput = errors.New("invalid input")

// ErrInvalidURL is returned when the original URL is missing, malformed,
// relative, or too long.
var ErrInvalidURL = fmt.Errorf("%w: invalid URL format", ErrInvalidInput)

// ErrInvalidKey is returned when a custom short key violates the alphabet
// or length constraints.
var ErrInvalidKey = fmt.Errorf("%w: invalid short key format", ErrInvalidInput)

// ErrDuplicateKey is returned when a short key is already taken, either
// caught by the pre-check or by losing the race at insert time.
var ErrDuplicateKey = errors.New("short key already exists")

// ErrKeyGenerationExhausted is returned when the generator cannot find a
// free key within its attempt budget. A server-side failure, not the
// caller's fault.
var ErrKeyGenerationExhausted = errors.New("failed to generate unique short key")

// ErrNotFound is returned when no record carries the requested short key.
var ErrNotFound = errors.New("short URL not found")

// ErrGone is returned by redirect resolution when the key exists but the
// record is inactive or expired. Deliberately distinct from ErrNotFound.
var ErrGone = errors.New("short URL is inactive or expired")

// ErrAlreadyDeactivated is returned when deactivating a record that is
// already inactive. A second deactivation attempt is a caller error.
var ErrAlreadyDeactivated = errors.New("short URL already deactivated")

// ErrStoreUnavailable wraps transient storage failures. Safe to retry at
// the caller's discretion.
var ErrStoreUnavailable = errors.New("store unavailable")

// ErrClickRecordingFailed is reported by the click workers when a click row
// cannot be persisted. It never propagates to the redirect caller.
type ErrClickRecordingFailed struct {
	ShortURLID uint
	Reason     string
}

func (e ErrClickRecordingFailed) Error() string {
	return fmt.Sprintf("failed to record click for short URL %d: %s", e.ShortURLID, e.Reason)
}

// IsDuplicateKey reports whether err indicates a unique-constraint
// violation on the short key. It understands both the translated gorm
// sentinel and the raw driver messages (sqlite and postgres phrase them
// differently).
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDuplicateKey) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

// Store wraps a storage failure so callers can match it with
// errors.Is(err, ErrStoreUnavailable) while keeping the cause in the
// message.
func Store(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
}
