package hxevent

import (
	"errors"
	"fmt"

	"github.com/pthm/hxevent/lib/encoding"
)

// Sentinel errors for page and callback operations.
var (
	ErrNotFound         = errors.New("hxevent: resource not found")
	ErrPageExpired      = errors.New("hxevent: page expired")
	ErrDecryptFailed    = errors.New("hxevent: parameter decryption failed")
	ErrSignatureInvalid = errors.New("hxevent: signature verification failed")
	ErrInvalidFormat    = errors.New("hxevent: invalid parameter format")
	ErrInvalidEvent     = errors.New("hxevent: invalid event name")
	ErrInvalidMarkupID  = errors.New("hxevent: invalid markup id")
	ErrAlreadyBound     = errors.New("hxevent: behavior already bound")

	// ErrUnsupportedOperation is returned by behaviors that never handle an
	// event themselves, such as EventDelegatingBehavior.
	ErrUnsupportedOperation = fmt.Errorf("hxevent: %w", errors.ErrUnsupported)
)

// IsNotFound checks if err is a not-found or expired-page error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrPageExpired)
}

// IsDecryptionError checks if err is a decryption, signature or format error.
func IsDecryptionError(err error) bool {
	return errors.Is(err, ErrDecryptFailed) ||
		errors.Is(err, ErrSignatureInvalid) ||
		errors.Is(err, ErrInvalidFormat)
}

// IsUnsupported checks if err reports an unsupported operation.
func IsUnsupported(err error) bool {
	return errors.Is(err, errors.ErrUnsupported)
}

// wrapEncodingError maps lib/encoding errors onto hxevent sentinels.
func wrapEncodingError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, encoding.ErrSignatureInvalid):
		return fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	case errors.Is(err, encoding.ErrDecryptFailed):
		return fmt.Errorf("%w: %v", ErrDecryptFailed, err)
	default:
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
}
