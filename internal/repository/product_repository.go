package repository

import (
	"agrihub/internal/models"
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ProductFilter narrows product listings. Zero values mean "no condition".
type ProductFilter struct {
	CategoryID *uint
	ActiveOnly bool
	Featured   bool
	ExcludeID  uint
	Query      string
	Limit      int
}

// likeEscaper makes user input match literally inside a LIKE ... ESCAPE '!' pattern.
// Backslash is avoided as the escape since MySQL and Postgres quote it differently.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	Filter(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	ExistsByBatchID(ctx context.Context, batchID string, excludeID uint) (bool, error)
	ExistsBySlug(ctx context.Context, slug string, excludeID uint) (bool, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uint) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Omit("Category").Create(product).Error
}

func (r *productRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Preload("Category").First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Preload("Category").Where("slug = ?", slug).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) Filter(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{}).Preload("Category")

	if filter.CategoryID != nil {
		query = query.Where("products.category_id = ?", *filter.CategoryID)
	}
	if filter.ActiveOnly {
		query = query.Where("products.is_active = ?", true)
	}
	if filter.Featured {
		query = query.Where("products.is_featured = ?", true)
	}
	if filter.ExcludeID != 0 {
		query = query.Where("products.id <> ?", filter.ExcludeID)
	}
	if filter.Query != "" {
		like := "%" + likeEscaper.Replace(filter.Query) + "%"
		query = query.Joins("JOIN categories ON categories.id = products.category_id").
			Where("LOWER(products.title) LIKE LOWER(?) ESCAPE '!' OR LOWER(categories.title) LIKE LOWER(?) ESCAPE '!' OR LOWER(products.short_description) LIKE LOWER(?) ESCAPE '!'", like, like, like)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var products []models.Product
	err := query.Order("products.created_at DESC, products.id DESC").Find(&products).Error
	return products, err
}

func (r *productRepository) ExistsByBatchID(ctx context.Context, batchID string, excludeID uint) (bool, error) {
	return r.exists(ctx, "sku = ?", batchID, excludeID)
}

func (r *productRepository) ExistsBySlug(ctx context.Context, slug string, excludeID uint) (bool, error) {
	return r.exists(ctx, "slug = ?", slug, excludeID)
}

func (r *productRepository) exists(ctx context.Context, cond string, value string, excludeID uint) (bool, error) {
	var product models.Product
	query := r.db.WithContext(ctx).Select("id").Where(cond, value)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *productRepository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Omit("Category").Save(product).Error
}

func (r *productRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Product{}, id).Error
}
