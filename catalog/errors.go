package catalog

import (
	"errors"
	"fmt"
)

// ErrUnknownKind is returned by codec operations given a Kind outside the
// closed enumeration (including the internal kindForeignKey discriminator,
// which never appears in wire or SQL form).
var ErrUnknownKind = errors.New("catalog: unknown column kind")

// LengthExceededError is returned when a Charfield value exceeds 255 bytes
// after trimming trailing spaces.
type LengthExceededError struct {
	Column string
	Length int
}

// Error returns the error string.
func (e *LengthExceededError) Error() string {
	return fmt.Sprintf("catalog: column %q exceeds 255 bytes (got %d) for Charfield", e.Column, e.Length)
}

// IsLengthExceeded reports whether err is a *LengthExceededError.
func IsLengthExceeded(err error) bool {
	var e *LengthExceededError
	return errors.As(err, &e)
}

// DecodeError is returned when decoding a wire-format blob fails because
// its length does not match the expected column set.
type DecodeError struct {
	Expected int
	Got      int
	Reason   string
}

// Error returns the error string.
func (e *DecodeError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("catalog: decode error: %s", e.Reason)
	}
	return fmt.Sprintf("catalog: decode error: expected %d bytes, got %d", e.Expected, e.Got)
}

// IsDecodeError reports whether err is a *DecodeError.
func IsDecodeError(err error) bool {
	var e *DecodeError
	return errors.As(err, &e)
}
