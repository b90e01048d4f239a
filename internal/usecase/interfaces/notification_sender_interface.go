package interfaces

import "context"

// INotificationSender notifies the payer about payment progress. Delivery is
// fire-and-retry: the workflow retries transient failures but never fails the
// payment because a notification could not be sent.

type INotificationSender interface {
	Send(ctx context.Context, paymentID, recipient, status, channel string) error
}
