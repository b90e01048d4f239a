package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"pagamentos_xpto/internal/domain/entities"
	"pagamentos_xpto/internal/usecase/interfaces"
)

// Activity names as recorded in the workflow journal.
const (
	activityLogEvent      = "log_payment_event"
	activityValidate      = "validate_payment"
	activityProcess       = "process_payment_with_provider"
	activityUpdateStatus  = "update_payment_status"
	activityNotify        = "send_payment_notification"
	activityCheckExternal = "check_external_payment_status"
)

// Activities holds the side-effecting steps the workflow drives. Each method
// is invoked through the engine, which applies the retry policy and journals
// the outcome.

type Activities struct {
	repo     interfaces.IPaymentRepository
	gateway  interfaces.IPaymentGateway
	notifier interfaces.INotificationSender
}

func NewActivities(repo interfaces.IPaymentRepository, gateway interfaces.IPaymentGateway, notifier interfaces.INotificationSender) *Activities {
	return &Activities{repo: repo, gateway: gateway, notifier: notifier}
}

// ValidationOutcome reports workflow-level validation. Invalid input is a
// normal outcome, not an activity error, so it is never retried.

type ValidationOutcome struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// Validate re-checks the fields that gate processing. The entity already
// validated at construction; this catches corruption introduced afterwards.
func (a *Activities) Validate(_ context.Context, cpf string, amount float64) (ValidationOutcome, error) {
	var errs []string
	if !entities.IsValidCPF(cpf) {
		errs = append(errs, "invalid cpf")
	}
	if amount <= 0 {
		errs = append(errs, "amount must be greater than zero")
	}
	return ValidationOutcome{Valid: len(errs) == 0, Errors: errs}, nil
}

// ProcessingResult is the provider handle captured when checkout creation
// succeeds.

type ProcessingResult struct {
	Success      bool   `json:"success"`
	ExternalID   string `json:"external_id,omitempty"`
	CheckoutURL  string `json:"checkout_url,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// Process creates the checkout at the external provider. Gateway errors are
// returned (and therefore retried); an unsupported method is a non-retriable
// failure outcome.
func (a *Activities) Process(ctx context.Context, paymentID, method string, amount float64, description string) (ProcessingResult, error) {
	m := entities.PaymentMethod(method)
	switch m {
	case entities.PaymentMethodPix, entities.PaymentMethodCreditCard:
	default:
		return ProcessingResult{Success: false, ErrorMessage: fmt.Sprintf("unsupported payment method %q", method)}, nil
	}

	res, err := a.gateway.CreateCheckout(ctx, interfaces.CheckoutRequest{
		PaymentID:   paymentID,
		Title:       fmt.Sprintf("Payment %s", paymentID),
		Description: description,
		Amount:      amount,
		Method:      m,
	})
	if err != nil {
		return ProcessingResult{}, err
	}
	return ProcessingResult{Success: true, ExternalID: res.ExternalID, CheckoutURL: res.CheckoutURL}, nil
}

// UpdateStatus persists the externally visible payment status. The write
// carries a receipt-time sequence so repeated or stale applications are
// no-ops at the repository.
func (a *Activities) UpdateStatus(ctx context.Context, paymentID string, status entities.PaymentStatus) error {
	seq := time.Now().UnixNano()
	p, err := a.repo.UpdateStatus(ctx, paymentID, status, seq)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("payment %s not found", paymentID)
	}
	log.Printf("[workflow][activity] status persisted payment_id=%s status=%s seq=%d", paymentID, status, seq)
	return nil
}

// Notify sends a payer notification. Errors bubble up so the engine retries,
// but the workflow treats final failure as non-fatal.
func (a *Activities) Notify(ctx context.Context, paymentID, recipient, status string) error {
	return a.notifier.Send(ctx, paymentID, recipient, status, "email")
}

// LogEvent emits an audit record for a workflow transition.
func (a *Activities) LogEvent(_ context.Context, paymentID, event string, details any) error {
	b, _ := json.Marshal(details)
	log.Printf("[workflow][audit] payment_id=%s event=%s details=%s", paymentID, event, b)
	return nil
}

// StatusCheck is the normalized result of polling the provider.

type StatusCheck struct {
	Status    string          `json:"status"`
	RawStatus string          `json:"raw_status"`
	Details   json.RawMessage `json:"details,omitempty"`
}

// CheckExternalStatus polls the provider for the checkout's current status
// and normalizes it to the workflow vocabulary: paid, failed or pending.
func (a *Activities) CheckExternalStatus(ctx context.Context, externalID string) (StatusCheck, error) {
	raw, err := a.gateway.GetStatus(ctx, externalID)
	if err != nil {
		return StatusCheck{}, err
	}
	return StatusCheck{Status: normalizeProviderStatus(raw), RawStatus: raw}, nil
}

// normalizeProviderStatus folds provider-specific status strings into the
// workflow vocabulary. Unknown values are treated as pending, never as
// errors.
func normalizeProviderStatus(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "approved", "paid":
		return string(StatusPaid)
	case "rejected", "cancelled", "failed":
		return string(StatusFailed)
	default:
		return string(StatusPending)
	}
}
