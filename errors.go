package hxbind

import (
	"errors"

	"github.com/pthm/hxbind/lib/proppath"
)

// Sentinel errors for component operations.
var (
	ErrArgument           = errors.New("hxbind: invalid argument")
	ErrNotFound           = errors.New("hxbind: not found")
	ErrUnsupportedElement = errors.New("hxbind: unsupported element")
	ErrInvalidPath        = proppath.ErrInvalidPath
	ErrInvalidFormat      = errors.New("hxbind: invalid snapshot format")
	ErrSignatureInvalid   = errors.New("hxbind: snapshot signature verification failed")
	ErrDecryptFailed      = errors.New("hxbind: snapshot decryption failed")
)

// IsArgument checks if err is an invalid argument error.
func IsArgument(err error) bool {
	return errors.Is(err, ErrArgument)
}

// IsNotFound checks if err is a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnsupportedElement checks if err reports a bind target that is not a
// supported form control.
func IsUnsupportedElement(err error) bool {
	return errors.Is(err, ErrUnsupportedElement)
}

// IsInvalidPath checks if err reports an unwritable property path.
func IsInvalidPath(err error) bool {
	return errors.Is(err, ErrInvalidPath)
}

// IsDecryptionError checks if err is a snapshot decryption or signature error.
func IsDecryptionError(err error) bool {
	return errors.Is(err, ErrDecryptFailed) || errors.Is(err, ErrSignatureInvalid)
}
