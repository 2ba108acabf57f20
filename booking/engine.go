// Package booking implements the booking lifecycle: transactional creation,
// the status state machine, and the 24-hour customer cancellation policy.
package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/servease/marketplace/models"
)

// CancellationNoticeHours is the minimum lead time for a customer-initiated
// cancellation.
const CancellationNoticeHours = 24

// Action is a provider-initiated lifecycle action.
type Action string

const (
	ActionConfirm  Action = "confirm"
	ActionComplete Action = "complete"
	ActionCancel   Action = "cancel"
)

func (a Action) target() (models.BookingStatus, bool) {
	switch a {
	case ActionConfirm:
		return models.StatusConfirmed, true
	case ActionComplete:
		return models.StatusCompleted, true
	case ActionCancel:
		return models.StatusCancelled, true
	}
	return "", false
}

// Engine owns every write to booking status. All multi-step writes run inside
// a single store transaction; concurrent transitions on the same booking race
// at the store and the loser fails the transition-table check.
type Engine struct {
	store Store
	now   func() time.Time
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// CreateInput carries a customer's booking request.
type CreateInput struct {
	ServiceID       string
	ProviderID      string
	BookingDate     time.Time
	SpecialRequests *string
	Address         string
	TotalAmount     float64
}

func (in CreateInput) validate(now time.Time) error {
	switch {
	case in.ServiceID == "":
		return fmt.Errorf("%w: serviceId is required", ErrValidation)
	case in.ProviderID == "":
		return fmt.Errorf("%w: providerId is required", ErrValidation)
	case strings.TrimSpace(in.Address) == "":
		return fmt.Errorf("%w: address is required", ErrValidation)
	case in.TotalAmount <= 0:
		return fmt.Errorf("%w: totalAmount must be positive", ErrValidation)
	case !in.BookingDate.After(now):
		return fmt.Errorf("%w: bookingDate must be in the future", ErrValidation)
	}
	return nil
}

// Create books a service for a customer. The service must exist, be active,
// and belong to the supplied provider; all checks and the insert share one
// transaction so a failed precondition never leaves a partial booking.
func (e *Engine) Create(ctx context.Context, customerID string, in CreateInput) (*models.Booking, error) {
	if err := in.validate(e.now()); err != nil {
		return nil, err
	}

	b := &models.Booking{
		ID:              uuid.NewString(),
		UserID:          customerID,
		ServiceID:       in.ServiceID,
		ProviderID:      in.ProviderID,
		BookingDate:     in.BookingDate,
		SpecialRequests: in.SpecialRequests,
		Address:         strings.TrimSpace(in.Address),
		Status:          models.StatusPending,
		PaymentStatus:   models.PaymentPending,
		TotalAmount:     in.TotalAmount,
	}

	err := e.store.InTransaction(ctx, func(s Store) error {
		svc, err := s.ServiceByID(ctx, in.ServiceID)
		if err != nil {
			return err
		}
		if !svc.IsActive {
			return ErrServiceUnavailable
		}
		if svc.ProviderID != in.ProviderID {
			return ErrProviderMismatch
		}
		return s.CreateBooking(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ProviderAction applies a confirm/complete/cancel action on behalf of the
// provider owning the booking. The caller is identified by user id; a
// provider acting on a booking it does not own gets ErrNotFound.
func (e *Engine) ProviderAction(ctx context.Context, userID, bookingID string, action Action) (*models.Booking, error) {
	target, ok := action.target()
	if !ok {
		return nil, fmt.Errorf("%w: invalid action %q, allowed actions are confirm, complete, cancel", ErrValidation, action)
	}

	prov, err := e.store.ProviderByUserID(ctx, userID)
	if err != nil {
		if err == ErrNotFound {
			return nil, ErrForbidden
		}
		return nil, err
	}

	var b *models.Booking
	err = e.store.InTransaction(ctx, func(s Store) error {
		b, err = s.BookingForProvider(ctx, bookingID, prov.ID)
		if err != nil {
			return err
		}
		if !models.CanTransition(b.Status, target) {
			return &TransitionError{From: b.Status, To: target}
		}
		if err := s.UpdateBookingStatus(ctx, b.ID, target); err != nil {
			return err
		}
		b.Status = target
		return nil
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// CustomerCancel cancels a booking on behalf of its owning customer, subject
// to the notice window. When the booking was already paid, the payment is
// flagged refund_pending in the same transaction as the status change.
func (e *Engine) CustomerCancel(ctx context.Context, userID, bookingID string) (*models.Booking, error) {
	var b *models.Booking
	err := e.store.InTransaction(ctx, func(s Store) error {
		var err error
		b, err = s.BookingByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.UserID != userID {
			return ErrForbidden
		}
		switch b.Status {
		case models.StatusCancelled:
			return ErrAlreadyCancelled
		case models.StatusCompleted:
			return ErrTerminalState
		}
		if b.HoursUntil(e.now()) < CancellationNoticeHours {
			return ErrCancellationWindow
		}

		if err := s.UpdateBookingStatus(ctx, b.ID, models.StatusCancelled); err != nil {
			return err
		}
		b.Status = models.StatusCancelled

		if b.PaymentStatus == models.PaymentPaid {
			if err := s.UpdatePaymentStatus(ctx, b.ID, models.PaymentRefundPending); err != nil {
				return err
			}
			b.PaymentStatus = models.PaymentRefundPending
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}
