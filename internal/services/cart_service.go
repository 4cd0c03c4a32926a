package services

import (
	"context"
	"errors"
	"fmt"

	"agrihub/internal/models"
	"agrihub/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ShippingCharge is the flat delivery surcharge added to every basket.
var ShippingCharge = decimal.NewFromInt(10)

// CartSummary keeps the subtotal, the shipping charge and the grand total apart.
type CartSummary struct {
	Items    []models.Cart   `json:"cart_products"`
	Amount   decimal.Decimal `json:"amount"`
	Shipping decimal.Decimal `json:"shipping_amount"`
	Total    decimal.Decimal `json:"total_amount"`
}

// SummarizeCart totals the given rows. Each row's Product must be loaded.
func SummarizeCart(items []models.Cart) *CartSummary {
	amount := decimal.Zero
	for i := range items {
		amount = amount.Add(items[i].TotalPrice())
	}
	if items == nil {
		items = []models.Cart{}
	}
	return &CartSummary{
		Items:    items,
		Amount:   amount,
		Shipping: ShippingCharge,
		Total:    amount.Add(ShippingCharge),
	}
}

// CartView is the basket page context: the summary plus the addresses an order can ship to.
type CartView struct {
	*CartSummary
	Addresses []models.Address `json:"addresses"`
}

type CartService interface {
	AddToCart(ctx context.Context, userID, productID uint) (*models.Cart, error)
	IncrementItem(ctx context.Context, userID, cartID uint) (*models.Cart, error)
	DecrementItem(ctx context.Context, userID, cartID uint) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID, cartID uint) error
	ComputeTotal(ctx context.Context, userID uint) (*CartSummary, error)
	ViewCart(ctx context.Context, userID uint) (*CartView, error)
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	addressRepo repository.AddressRepository
}

func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	addressRepo repository.AddressRepository,
) CartService {
	return &cartService{cartRepo: cartRepo, productRepo: productRepo, addressRepo: addressRepo}
}

func (s *cartService) AddToCart(ctx context.Context, userID, productID uint) (*models.Cart, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, notFound(err, "product")
	}

	item, err := s.cartRepo.GetByUserAndProduct(ctx, userID, product.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		item = &models.Cart{UserID: userID, ProductID: product.ID, Quantity: 1}
		if err := s.cartRepo.Create(ctx, item); err != nil {
			return nil, fmt.Errorf("failed to create cart item: %w", err)
		}
		item.Product = *product
		return item, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart item: %w", err)
	}

	item.Quantity++
	if err := s.cartRepo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}
	item.Product = *product
	return item, nil
}

func (s *cartService) IncrementItem(ctx context.Context, userID, cartID uint) (*models.Cart, error) {
	item, err := s.cartRepo.GetForUser(ctx, cartID, userID)
	if err != nil {
		return nil, notFound(err, "cart item")
	}

	item.Quantity++
	if err := s.cartRepo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}
	return item, nil
}

// DecrementItem lowers the quantity by one but never below 1; removing a line is RemoveItem's job.
func (s *cartService) DecrementItem(ctx context.Context, userID, cartID uint) (*models.Cart, error) {
	item, err := s.cartRepo.GetForUser(ctx, cartID, userID)
	if err != nil {
		return nil, notFound(err, "cart item")
	}

	if item.Quantity > 1 {
		item.Quantity--
		if err := s.cartRepo.Update(ctx, item); err != nil {
			return nil, fmt.Errorf("failed to update cart item: %w", err)
		}
	}
	return item, nil
}

// RemoveItem deletes the line if it exists. Unknown ids are ignored.
func (s *cartService) RemoveItem(ctx context.Context, userID, cartID uint) error {
	if _, err := s.cartRepo.DeleteForUser(ctx, cartID, userID); err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return nil
}

func (s *cartService) ComputeTotal(ctx context.Context, userID uint) (*CartSummary, error) {
	items, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return SummarizeCart(items), nil
}

func (s *cartService) ViewCart(ctx context.Context, userID uint) (*CartView, error) {
	summary, err := s.ComputeTotal(ctx, userID)
	if err != nil {
		return nil, err
	}

	addresses, err := s.addressRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load addresses: %w", err)
	}
	if addresses == nil {
		addresses = []models.Address{}
	}
	return &CartView{CartSummary: summary, Addresses: addresses}, nil
}
