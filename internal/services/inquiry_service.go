package services

import (
	"context"
	"fmt"
	"strings"

	"agrihub/internal/models"
	"agrihub/internal/repository"
)

type InquiryInput struct {
	Name    string `form:"name" json:"name" validate:"required,max=100"`
	Email   string `form:"email" json:"email" validate:"required,email,max=254"`
	Subject string `form:"subject" json:"subject" validate:"required,max=200"`
	Message string `form:"message" json:"message" validate:"required"`
}

type InquiryService interface {
	Submit(ctx context.Context, input InquiryInput) (*models.Inquiry, error)
}

type inquiryService struct {
	inquiryRepo repository.InquiryRepository
	notifier    NotificationService
}

func NewInquiryService(inquiryRepo repository.InquiryRepository, notifier NotificationService) InquiryService {
	return &inquiryService{inquiryRepo: inquiryRepo, notifier: notifier}
}

func (s *inquiryService) Submit(ctx context.Context, input InquiryInput) (*models.Inquiry, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.Subject = strings.TrimSpace(input.Subject)
	input.Message = strings.TrimSpace(input.Message)

	if err := validateStruct(input).OrNil(); err != nil {
		return nil, err
	}

	inquiry := &models.Inquiry{
		Name:    input.Name,
		Email:   input.Email,
		Subject: input.Subject,
		Message: input.Message,
	}
	if err := s.inquiryRepo.Create(ctx, inquiry); err != nil {
		return nil, fmt.Errorf("failed to save inquiry: %w", err)
	}

	s.notifier.InquiryReceived(ctx, inquiry)
	return inquiry, nil
}
