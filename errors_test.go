package hxbind

import (
	"errors"
	"fmt"
	"testing"

	"github.com/pthm/hxbind/lib/encoding"
	"github.com/pthm/hxbind/lib/proppath"
)

func TestSentinelErrors(t *testing.T) {
	errs := []error{
		ErrArgument,
		ErrNotFound,
		ErrUnsupportedElement,
		ErrInvalidPath,
		ErrInvalidFormat,
		ErrSignatureInvalid,
		ErrDecryptFailed,
	}

	for i, err1 := range errs {
		for j, err2 := range errs {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("Sentinel errors should be distinct: %v and %v", err1, err2)
			}
		}
	}
}

func TestIsHelpers(t *testing.T) {
	pathErr := &proppath.InvalidPathError{Path: "a.b", Segment: "a", Reason: "string is not an object or array"}

	tests := []struct {
		name   string
		check  func(error) bool
		err    error
		expect bool
	}{
		{"argument", IsArgument, fmt.Errorf("%w: missing id", ErrArgument), true},
		{"argument nil", IsArgument, nil, false},
		{"not found", IsNotFound, fmt.Errorf("wrapped: %w", ErrNotFound), true},
		{"not found other", IsNotFound, ErrArgument, false},
		{"unsupported", IsUnsupportedElement, fmt.Errorf("%w: <p>", ErrUnsupportedElement), true},
		{"invalid path", IsInvalidPath, pathErr, true},
		{"invalid path wrapped", IsInvalidPath, fmt.Errorf("placeholder: %w", pathErr), true},
		{"decrypt", IsDecryptionError, ErrDecryptFailed, true},
		{"signature", IsDecryptionError, fmt.Errorf("wrapped: %w", ErrSignatureInvalid), true},
		{"format is not decryption", IsDecryptionError, ErrInvalidFormat, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.check(tt.err); got != tt.expect {
				t.Errorf("check(%v) = %v, want %v", tt.err, got, tt.expect)
			}
		})
	}
}

func TestWrapEncodingError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		expect error
	}{
		{"nil", nil, nil},
		{"invalid format", fmt.Errorf("%w: bad base64", encoding.ErrInvalidFormat), ErrInvalidFormat},
		{"signature", encoding.ErrSignatureInvalid, ErrSignatureInvalid},
		{"decrypt", encoding.ErrDecryptFailed, ErrDecryptFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wrapEncodingError(tt.err); got != tt.expect {
				t.Errorf("wrapEncodingError() = %v, want %v", got, tt.expect)
			}
		})
	}

	other := errors.New("other")
	if got := wrapEncodingError(other); got != other {
		t.Errorf("wrapEncodingError(other) = %v, want other", got)
	}
}
