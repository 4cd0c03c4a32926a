package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"agrihub/internal/models"
	"agrihub/internal/repository"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// RelatedProductsLimit caps the "related" list on a product page.
const RelatedProductsLimit = 4

type HomeListing struct {
	Products   []models.Product  `json:"products"`
	Categories []models.Category `json:"categories"`
}

type ProductDetail struct {
	Product         *models.Product  `json:"product"`
	RelatedProducts []models.Product `json:"related_products"`
}

type CategoryListing struct {
	Category *models.Category `json:"category"`
	Products []models.Product `json:"products"`
}

type CategoryInput struct {
	Title       string `json:"title" validate:"required,max=50"`
	Description string `json:"description"`
	Image       string `json:"category_image"`
	IsActive    bool   `json:"is_active"`
	IsFeatured  bool   `json:"is_featured"`
}

type CatalogService interface {
	ListFeatured(ctx context.Context) (*HomeListing, error)
	GetBySlug(ctx context.Context, slug string) (*ProductDetail, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	ProductsByCategory(ctx context.Context, slug string) (*CategoryListing, error)
	Search(ctx context.Context, query string) ([]models.Product, error)
	CreateCategory(ctx context.Context, input CategoryInput) (*models.Category, error)
}

type catalogService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
}

func NewCatalogService(categoryRepo repository.CategoryRepository, productRepo repository.ProductRepository) CatalogService {
	return &catalogService{categoryRepo: categoryRepo, productRepo: productRepo}
}

func (s *catalogService) ListFeatured(ctx context.Context) (*HomeListing, error) {
	products, err := s.productRepo.Filter(ctx, repository.ProductFilter{ActiveOnly: true, Featured: true})
	if err != nil {
		return nil, fmt.Errorf("failed to load featured products: %w", err)
	}
	categories, err := s.categoryRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	return &HomeListing{Products: products, Categories: categories}, nil
}

func (s *catalogService) GetBySlug(ctx context.Context, slug string) (*ProductDetail, error) {
	product, err := s.productRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err, "product")
	}

	related, err := s.productRepo.Filter(ctx, repository.ProductFilter{
		CategoryID: &product.CategoryID,
		ActiveOnly: true,
		ExcludeID:  product.ID,
		Limit:      RelatedProductsLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load related products: %w", err)
	}

	return &ProductDetail{Product: product, RelatedProducts: related}, nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.categoryRepo.ListActive(ctx)
}

func (s *catalogService) ProductsByCategory(ctx context.Context, slug string) (*CategoryListing, error) {
	category, err := s.categoryRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err, "category")
	}

	products, err := s.productRepo.Filter(ctx, repository.ProductFilter{CategoryID: &category.ID, ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to load category products: %w", err)
	}
	return &CategoryListing{Category: category, Products: products}, nil
}

// Search matches active products by title, crop type title or origin. An empty query lists every active product.
func (s *catalogService) Search(ctx context.Context, query string) ([]models.Product, error) {
	return s.productRepo.Filter(ctx, repository.ProductFilter{ActiveOnly: true, Query: strings.TrimSpace(query)})
}

// CreateCategory stores a crop type whose slug is derived from its title.
func (s *catalogService) CreateCategory(ctx context.Context, input CategoryInput) (*models.Category, error) {
	input.Title = strings.TrimSpace(input.Title)
	verr := validateStruct(input)

	categorySlug := slug.Make(input.Title)
	if input.Title != "" && categorySlug == "" {
		verr.Add("title", "Enter a title containing letters or numbers.")
	}
	if categorySlug != "" {
		_, err := s.categoryRepo.GetBySlug(ctx, categorySlug)
		switch {
		case err == nil:
			verr.Add("title", "A crop type with this slug already exists.")
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, fmt.Errorf("failed to check category slug: %w", err)
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	category := &models.Category{
		Title:         input.Title,
		Slug:          categorySlug,
		Description:   input.Description,
		CategoryImage: input.Image,
		IsActive:      input.IsActive,
		IsFeatured:    input.IsFeatured,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}
