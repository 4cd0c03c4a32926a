package repository

import (
	"agrihub/internal/models"
	"context"

	"gorm.io/gorm"
)

type FarmerProfileRepository interface {
	Create(ctx context.Context, profile *models.FarmerProfile) error
	GetByUserID(ctx context.Context, userID uint) (*models.FarmerProfile, error)
	Update(ctx context.Context, profile *models.FarmerProfile) error
	WithTx(tx *gorm.DB) FarmerProfileRepository
}

type farmerProfileRepository struct {
	db *gorm.DB
}

func NewFarmerProfileRepository(db *gorm.DB) FarmerProfileRepository {
	return &farmerProfileRepository{db: db}
}

func (r *farmerProfileRepository) WithTx(tx *gorm.DB) FarmerProfileRepository {
	return &farmerProfileRepository{db: tx}
}

func (r *farmerProfileRepository) Create(ctx context.Context, profile *models.FarmerProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *farmerProfileRepository) GetByUserID(ctx context.Context, userID uint) (*models.FarmerProfile, error) {
	var profile models.FarmerProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *farmerProfileRepository) Update(ctx context.Context, profile *models.FarmerProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}
