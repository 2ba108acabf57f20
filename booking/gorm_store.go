package booking

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/servease/marketplace/models"
)

// GormStore is the production Store backed by the relational database.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) InTransaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func (s *GormStore) ServiceByID(ctx context.Context, id string) (*models.Service, error) {
	var svc models.Service
	if err := s.db.WithContext(ctx).First(&svc, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &svc, nil
}

func (s *GormStore) ProviderByUserID(ctx context.Context, userID string) (*models.Provider, error) {
	var p models.Provider
	if err := s.db.WithContext(ctx).First(&p, "user_id = ?", userID).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// BookingByID locks the row for the remainder of the transaction so the
// read-validate-write sequence cannot lose an update to a concurrent call.
func (s *GormStore) BookingByID(ctx context.Context, id string) (*models.Booking, error) {
	var b models.Booking
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&b, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (s *GormStore) BookingForProvider(ctx context.Context, id, providerID string) (*models.Booking, error) {
	var b models.Booking
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&b, "id = ? AND provider_id = ?", id, providerID).Error
	if err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (s *GormStore) CreateBooking(ctx context.Context, b *models.Booking) error {
	return s.db.WithContext(ctx).Create(b).Error
}

func (s *GormStore) UpdateBookingStatus(ctx context.Context, id string, status models.BookingStatus) error {
	res := s.db.WithContext(ctx).Model(&models.Booking{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus) error {
	res := s.db.WithContext(ctx).Model(&models.Booking{}).Where("id = ?", id).Update("payment_status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
