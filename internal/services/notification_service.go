package services

import (
	"context"
	"fmt"
	"strings"

	"agrihub/internal/logger"
	"agrihub/internal/models"

	"go.uber.org/zap"
)

// MessageSender delivers a text message to a phone number. *whatsapp.Client satisfies it.
type MessageSender interface {
	SendTextMessage(ctx context.Context, phone, message string) error
}

// NotificationService tells the marketplace operator about new activity.
// Delivery is best effort: failures are logged and never returned.
type NotificationService interface {
	InquiryReceived(ctx context.Context, inquiry *models.Inquiry)
	OrdersPlaced(ctx context.Context, username string, orders []models.Order)
}

type whatsappNotifier struct {
	sender        MessageSender
	operatorPhone string
}

// NewNotificationService returns a WhatsApp notifier, or a no-op one when sender or phone is missing.
func NewNotificationService(sender MessageSender, operatorPhone string) NotificationService {
	if sender == nil || operatorPhone == "" {
		return noopNotifier{}
	}
	return &whatsappNotifier{sender: sender, operatorPhone: operatorPhone}
}

func (n *whatsappNotifier) InquiryReceived(ctx context.Context, inquiry *models.Inquiry) {
	message := fmt.Sprintf("📩 New inquiry from %s <%s>\nSubject: %s\n\n%s",
		inquiry.Name, inquiry.Email, inquiry.Subject, inquiry.Message)
	n.send(ctx, "inquiry", message)
}

func (n *whatsappNotifier) OrdersPlaced(ctx context.Context, username string, orders []models.Order) {
	if len(orders) == 0 {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🛒 %s placed %d order(s):", username, len(orders))
	for _, order := range orders {
		fmt.Fprintf(&b, "\n- #%d %s x%d @ %s", order.ID, order.Product.Title, order.Quantity, order.UnitPrice.StringFixed(2))
	}
	n.send(ctx, "orders", b.String())
}

func (n *whatsappNotifier) send(ctx context.Context, kind, message string) {
	if err := n.sender.SendTextMessage(ctx, n.operatorPhone, message); err != nil {
		logger.Warn("Failed to send operator notification",
			zap.String("kind", kind),
			zap.Error(err),
		)
	}
}

type noopNotifier struct{}

func (noopNotifier) InquiryReceived(context.Context, *models.Inquiry)       {}
func (noopNotifier) OrdersPlaced(context.Context, string, []models.Order) {}
