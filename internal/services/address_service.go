package services

import (
	"context"
	"fmt"
	"strings"

	"agrihub/internal/models"
	"agrihub/internal/repository"
)

type AddressInput struct {
	Locality string `form:"locality" json:"locality" validate:"required,max=150"`
	City     string `form:"city" json:"city" validate:"required,max=150"`
	State    string `form:"state" json:"state" validate:"required,max=150"`
}

type AddressService interface {
	Add(ctx context.Context, userID uint, input AddressInput) (*models.Address, error)
	Remove(ctx context.Context, userID, addressID uint) error
	List(ctx context.Context, userID uint) ([]models.Address, error)
}

type addressService struct {
	addressRepo repository.AddressRepository
}

func NewAddressService(addressRepo repository.AddressRepository) AddressService {
	return &addressService{addressRepo: addressRepo}
}

func (s *addressService) Add(ctx context.Context, userID uint, input AddressInput) (*models.Address, error) {
	input.Locality = strings.TrimSpace(input.Locality)
	input.City = strings.TrimSpace(input.City)
	input.State = strings.TrimSpace(input.State)

	if err := validateStruct(input).OrNil(); err != nil {
		return nil, err
	}

	address := &models.Address{
		UserID:   userID,
		Locality: input.Locality,
		City:     input.City,
		State:    input.State,
	}
	if err := s.addressRepo.Create(ctx, address); err != nil {
		return nil, fmt.Errorf("failed to save address: %w", err)
	}
	return address, nil
}

// Remove deletes the address if the user owns it. Anything else is a no-op.
func (s *addressService) Remove(ctx context.Context, userID, addressID uint) error {
	if _, err := s.addressRepo.DeleteForUser(ctx, addressID, userID); err != nil {
		return fmt.Errorf("failed to remove address: %w", err)
	}
	return nil
}

func (s *addressService) List(ctx context.Context, userID uint) ([]models.Address, error) {
	addresses, err := s.addressRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load addresses: %w", err)
	}
	if addresses == nil {
		addresses = []models.Address{}
	}
	return addresses, nil
}
