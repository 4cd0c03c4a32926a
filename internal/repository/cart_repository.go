package repository

import (
	"agrihub/internal/models"
	"context"

	"gorm.io/gorm"
)

type CartRepository interface {
	Create(ctx context.Context, cart *models.Cart) error
	GetForUser(ctx context.Context, id, userID uint) (*models.Cart, error)
	GetByUserAndProduct(ctx context.Context, userID, productID uint) (*models.Cart, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Cart, error)
	Update(ctx context.Context, cart *models.Cart) error
	DeleteForUser(ctx context.Context, id, userID uint) (int64, error)
	DeleteByUser(ctx context.Context, userID uint) error
	WithTx(tx *gorm.DB) CartRepository
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) WithTx(tx *gorm.DB) CartRepository {
	return &cartRepository{db: tx}
}

func (r *cartRepository) Create(ctx context.Context, cart *models.Cart) error {
	return r.db.WithContext(ctx).Omit("Product").Create(cart).Error
}

func (r *cartRepository) GetForUser(ctx context.Context, id, userID uint) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepository) GetByUserAndProduct(ctx context.Context, userID, productID uint) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Order("id").
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepository) ListByUser(ctx context.Context, userID uint) ([]models.Cart, error) {
	var carts []models.Cart
	err := r.db.WithContext(ctx).Preload("Product").Where("user_id = ?", userID).Order("id").Find(&carts).Error
	return carts, err
}

func (r *cartRepository) Update(ctx context.Context, cart *models.Cart) error {
	return r.db.WithContext(ctx).Omit("Product").Save(cart).Error
}

func (r *cartRepository) DeleteForUser(ctx context.Context, id, userID uint) (int64, error) {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Cart{})
	return result.RowsAffected, result.Error
}

func (r *cartRepository) DeleteByUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Cart{}).Error
}
