package booking

import (
	"context"

	"github.com/servease/marketplace/models"
)

// Store is the persistence boundary of the lifecycle engine. Implementations
// return ErrNotFound for absent rows and must make InTransaction atomic: the
// callback either applies wholesale or not at all.
type Store interface {
	// InTransaction runs fn inside one unit of work. The Store handed to fn
	// operates on the transaction; any error discards every write.
	InTransaction(ctx context.Context, fn func(Store) error) error

	ServiceByID(ctx context.Context, id string) (*models.Service, error)
	ProviderByUserID(ctx context.Context, userID string) (*models.Provider, error)

	BookingByID(ctx context.Context, id string) (*models.Booking, error)
	// BookingForProvider looks a booking up scoped to one provider, so a
	// provider probing another provider's booking sees ErrNotFound rather
	// than learning it exists.
	BookingForProvider(ctx context.Context, id, providerID string) (*models.Booking, error)

	CreateBooking(ctx context.Context, b *models.Booking) error
	UpdateBookingStatus(ctx context.Context, id string, status models.BookingStatus) error
	UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus) error
}
