package booking

import (
	"errors"
	"fmt"

	"github.com/servease/marketplace/models"
)

// Stable error kinds surfaced by the lifecycle engine. Controllers map these
// to HTTP status codes; nothing below this package inspects store errors.
var (
	ErrNotFound           = errors.New("booking not found")
	ErrForbidden          = errors.New("not allowed to act on this booking")
	ErrServiceUnavailable = errors.New("this service is currently unavailable")
	ErrProviderMismatch   = errors.New("provider does not match the service provider")
	ErrAlreadyCancelled   = errors.New("booking is already cancelled")
	ErrTerminalState      = errors.New("completed bookings cannot be cancelled")
	ErrCancellationWindow = errors.New("cancellations require at least 24 hours notice")
	ErrValidation         = errors.New("invalid booking request")
)

// TransitionError reports a status change the lifecycle table does not allow,
// carrying the attempted from/to pair.
type TransitionError struct {
	From models.BookingStatus
	To   models.BookingStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot change booking status from %q to %q", e.From, e.To)
}
