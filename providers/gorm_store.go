package providers

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/servease/marketplace/models"
)

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

func (s *GormStore) ProviderExists(ctx context.Context, id string) (string, bool, error) {
	var p models.Provider
	if err := s.db.WithContext(ctx).Select("user_id", "is_approved").First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, ErrNotFound
		}
		return "", false, err
	}
	return p.UserID, p.IsApproved, nil
}

func (s *GormStore) SetApproved(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Model(&models.Provider{}).Where("id = ?", id).Update("is_approved", true).Error
}

func (s *GormStore) DeleteProvider(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Delete(&models.Provider{}, "id = ?", id).Error
}

func (s *GormStore) DeleteUser(ctx context.Context, userID string) error {
	return s.db.WithContext(ctx).Delete(&models.User{}, "id = ?", userID).Error
}
