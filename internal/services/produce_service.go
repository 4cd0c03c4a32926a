package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"agrihub/internal/logger"
	"agrihub/internal/models"
	"agrihub/internal/repository"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const harvestDateLayout = "2006-01-02"

// maxPrice is the first value that no longer fits a decimal(8,2) column.
var maxPrice = decimal.NewFromInt(1000000)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// ImageStore keeps uploaded images and hands back references to them.
type ImageStore interface {
	Save(prefix, filename string, r io.Reader) (string, error)
	Delete(ref string) error
}

// ImageUpload is an uploaded file that has not been stored yet.
type ImageUpload struct {
	Filename string
	Reader   io.Reader
}

type ProduceInput struct {
	Title          string      `form:"title" json:"title" validate:"required,max=150"`
	Slug           string      `form:"slug" json:"slug" validate:"required,max=160"`
	BatchID        string      `form:"batch_id" json:"batch_id" validate:"required,max=255"`
	Origin         string      `form:"origin" json:"origin"`
	ProduceDetails string      `form:"produce_details" json:"produce_details"`
	PricePerUnit   json.Number `form:"price_per_unit" json:"price_per_unit" validate:"required"`
	UnitType       string      `form:"unit_type" json:"unit_type"`
	HarvestDate    string      `form:"harvest_date" json:"harvest_date"`
	CategoryID     uint        `form:"category" json:"category" validate:"required"`
	IsActive       bool        `form:"-" json:"is_active"`
	IsFeatured     bool        `form:"-" json:"is_featured"`
}

// ProducePolicy decides who may write produce listings.
// With Enforced unset any authenticated user may.
type ProducePolicy struct {
	Enforced bool
}

type ProduceService interface {
	Create(ctx context.Context, actor Actor, input ProduceInput, image *ImageUpload) (*models.Product, error)
	Update(ctx context.Context, actor Actor, id uint, input ProduceInput, image *ImageUpload) (*models.Product, error)
	Delete(ctx context.Context, actor Actor, id uint) (*models.Product, error)
}

type produceService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	images       ImageStore
	policy       ProducePolicy
}

func NewProduceService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	images ImageStore,
	policy ProducePolicy,
) ProduceService {
	return &produceService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		images:       images,
		policy:       policy,
	}
}

func (s *produceService) Create(ctx context.Context, actor Actor, input ProduceInput, image *ImageUpload) (*models.Product, error) {
	if err := s.authorize(actor, nil); err != nil {
		return nil, err
	}

	product := &models.Product{}
	if err := s.apply(ctx, product, input, image); err != nil {
		return nil, err
	}
	farmerID := actor.UserID
	product.FarmerID = &farmerID

	if err := s.storeImage(product, image); err != nil {
		return nil, err
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		s.discardImage(product.ProductImage)
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

// Update replaces every editable field. A new image replaces the stored one; without one the old image stays.
func (s *produceService) Update(ctx context.Context, actor Actor, id uint, input ProduceInput, image *ImageUpload) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "product")
	}
	if err := s.authorize(actor, product); err != nil {
		return nil, err
	}

	if err := s.apply(ctx, product, input, image); err != nil {
		return nil, err
	}

	previousImage := product.ProductImage
	if err := s.storeImage(product, image); err != nil {
		return nil, err
	}
	if err := s.productRepo.Update(ctx, product); err != nil {
		if product.ProductImage != previousImage {
			s.discardImage(product.ProductImage)
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	if product.ProductImage != previousImage {
		s.discardImage(previousImage)
	}
	return product, nil
}

func (s *produceService) Delete(ctx context.Context, actor Actor, id uint) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "product")
	}
	if err := s.authorize(actor, product); err != nil {
		return nil, err
	}

	if err := s.productRepo.Delete(ctx, product.ID); err != nil {
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}
	s.discardImage(product.ProductImage)
	return product, nil
}

// authorize applies the ownership policy. product is nil for creation.
// Products without a farmer stay editable by any farmer.
func (s *produceService) authorize(actor Actor, product *models.Product) error {
	if !s.policy.Enforced {
		return nil
	}
	if !actor.HasRole(models.RoleFarmerSeller) {
		return fmt.Errorf("only farmers can manage produce: %w", ErrForbidden)
	}
	if product != nil && product.FarmerID != nil && *product.FarmerID != actor.UserID {
		return fmt.Errorf("product %d belongs to another farmer: %w", product.ID, ErrForbidden)
	}
	return nil
}

// apply validates input and copies it onto product. product is left untouched on failure.
func (s *produceService) apply(ctx context.Context, product *models.Product, input ProduceInput, image *ImageUpload) error {
	input.Title = strings.TrimSpace(input.Title)
	input.Slug = strings.TrimSpace(input.Slug)
	input.BatchID = strings.TrimSpace(input.BatchID)
	input.UnitType = strings.ToUpper(strings.TrimSpace(input.UnitType))
	input.HarvestDate = strings.TrimSpace(input.HarvestDate)

	verr := validateStruct(input)

	productSlug := input.Slug
	if productSlug != "" && !slug.IsSlug(productSlug) {
		verr.Add("slug", "Enter a valid slug consisting of lowercase letters, numbers or hyphens.")
	}

	var price decimal.Decimal
	if input.PricePerUnit != "" {
		parsed, err := decimal.NewFromString(strings.TrimSpace(input.PricePerUnit.String()))
		switch {
		case err != nil:
			verr.Add("price_per_unit", "Enter a number.")
		case parsed.IsNegative():
			verr.Add("price_per_unit", "Ensure this value is greater than or equal to 0.")
		case !parsed.Equal(parsed.Round(2)):
			verr.Add("price_per_unit", "Ensure that there are no more than 2 decimal places.")
		case parsed.GreaterThanOrEqual(maxPrice):
			verr.Add("price_per_unit", "Ensure that there are no more than 8 digits in total.")
		default:
			price = parsed
		}
	}

	unit := models.UnitKilogram
	if input.UnitType != "" {
		unit = models.UnitType(input.UnitType)
		if !unit.Valid() {
			verr.Add("unit_type", fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", input.UnitType))
		}
	}

	var harvest *time.Time
	if input.HarvestDate != "" {
		parsed, err := time.Parse(harvestDateLayout, input.HarvestDate)
		if err != nil {
			verr.Add("harvest_date", "Enter a valid date.")
		} else {
			harvest = &parsed
		}
	}

	var category *models.Category
	if input.CategoryID != 0 {
		c, err := s.categoryRepo.GetByID(ctx, input.CategoryID)
		if err != nil {
			if lookup := notFound(err, "category"); !isNotFound(lookup) {
				return lookup
			}
			verr.Add("category", "Select a valid choice. That choice is not one of the available choices.")
		} else {
			category = c
		}
	}

	if input.BatchID != "" {
		taken, err := s.productRepo.ExistsByBatchID(ctx, input.BatchID, product.ID)
		if err != nil {
			return fmt.Errorf("failed to check batch id: %w", err)
		}
		if taken {
			verr.Add("batch_id", "Product with this Batch ID already exists.")
		}
	}
	if productSlug != "" {
		taken, err := s.productRepo.ExistsBySlug(ctx, productSlug, product.ID)
		if err != nil {
			return fmt.Errorf("failed to check slug: %w", err)
		}
		if taken {
			verr.Add("slug", "Product with this Slug already exists.")
		}
	}

	if image != nil {
		ext := strings.ToLower(filepath.Ext(image.Filename))
		if !imageExtensions[ext] {
			verr.Add("product_image", "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
		}
	}

	if err := verr.OrNil(); err != nil {
		return err
	}

	product.Title = input.Title
	product.Slug = productSlug
	product.BatchID = input.BatchID
	product.Origin = input.Origin
	product.ProduceDetails = input.ProduceDetails
	product.PricePerUnit = price
	product.UnitType = unit
	product.HarvestDate = harvest
	product.CategoryID = category.ID
	product.Category = *category
	product.IsActive = input.IsActive
	product.IsFeatured = input.IsFeatured
	return nil
}

func (s *produceService) storeImage(product *models.Product, image *ImageUpload) error {
	if image == nil {
		return nil
	}
	ref, err := s.images.Save("product", image.Filename, image.Reader)
	if err != nil {
		return fmt.Errorf("failed to store product image: %w", err)
	}
	product.ProductImage = ref
	return nil
}

func (s *produceService) discardImage(ref string) {
	if ref == "" {
		return
	}
	if err := s.images.Delete(ref); err != nil {
		logger.Warn("Failed to delete product image", zap.String("image", ref), zap.Error(err))
	}
}
