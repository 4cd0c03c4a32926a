package services

import (
	"context"
	"strings"
	"testing"

	"agrihub/internal/models"
	"agrihub/internal/repository"
)

func TestSubmitInquiryValidation(t *testing.T) {
	valid := InquiryInput{Name: "Wanjiru", Email: "wanjiru@example.com", Subject: "Bulk order", Message: "Do you deliver?"}

	tests := []struct {
		name  string
		edit  func(*InquiryInput)
		field string
	}{
		{"missing name", func(in *InquiryInput) { in.Name = "" }, "name"},
		{"blank email", func(in *InquiryInput) { in.Email = "  " }, "email"},
		{"malformed email", func(in *InquiryInput) { in.Email = "not-an-email" }, "email"},
		{"missing subject", func(in *InquiryInput) { in.Subject = "" }, "subject"},
		{"missing message", func(in *InquiryInput) { in.Message = "" }, "message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newTestDB(t)
			sender := &recordingSender{}
			svc := NewInquiryService(repository.NewInquiryRepository(db), NewNotificationService(sender, "254700000000"))

			input := valid
			tt.edit(&input)

			_, err := svc.Submit(context.Background(), input)
			fieldError(t, err, tt.field)

			if n := countRows(t, db, &models.Inquiry{}, ""); n != 0 {
				t.Errorf("inquiries stored = %d, want 0", n)
			}
			if sender.count() != 0 {
				t.Error("notification sent for an invalid inquiry")
			}
		})
	}
}

func TestSubmitInquiryPersistsAndNotifies(t *testing.T) {
	db := newTestDB(t)
	sender := &recordingSender{}
	svc := NewInquiryService(repository.NewInquiryRepository(db), NewNotificationService(sender, "254700000000"))

	inquiry, err := svc.Submit(context.Background(), InquiryInput{
		Name:    " Otieno ",
		Email:   "otieno@example.com",
		Subject: "Avocado prices",
		Message: "What is the price per crate?",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if inquiry.ID == 0 || inquiry.CreatedAt.IsZero() {
		t.Errorf("inquiry not persisted with a timestamp: %+v", inquiry)
	}
	if inquiry.Name != "Otieno" {
		t.Errorf("name = %q, want trimmed value", inquiry.Name)
	}
	if n := countRows(t, db, &models.Inquiry{}, ""); n != 1 {
		t.Errorf("inquiries stored = %d, want 1", n)
	}
	if sender.count() != 1 || !strings.Contains(sender.messages[0], "Avocado prices") {
		t.Errorf("unexpected notifications: %v", sender.messages)
	}
}
