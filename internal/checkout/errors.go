package checkout

import (
	"errors"
	"fmt"
)

// ErrBusy rejects a checkout submitted while another run for the same cart
// is still in flight. Submissions are never queued.
var ErrBusy = errors.New("a checkout for this cart is already in progress")

// ValidationError marks bad or missing shopper input. User-correctable,
// safe to show inline.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is shopper-correctable input failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
