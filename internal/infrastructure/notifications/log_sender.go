package notifications

import (
	"context"
	"log"

	"pagamentos_xpto/internal/usecase/interfaces"
)

// LogNotificationSender writes notifications to the application log. It
// stands in for a real email/SMS integration; the workflow only requires
// delivery to be attempted and non-fatal.

type LogNotificationSender struct{}

var _ interfaces.INotificationSender = (*LogNotificationSender)(nil)

func NewLogNotificationSender() *LogNotificationSender {
	return &LogNotificationSender{}
}

func (s *LogNotificationSender) Send(_ context.Context, paymentID, recipient, status, channel string) error {
	log.Printf("[notification][sender] payment_id=%s recipient=%s status=%s channel=%s", paymentID, recipient, status, channel)
	return nil
}
