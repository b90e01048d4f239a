package usecase

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"pagamentos_xpto/internal/domain/entities"
	"pagamentos_xpto/internal/usecase/interfaces"
	"pagamentos_xpto/internal/workflow"
)

// ReconcileOutcomeKind classifies the result of processing one provider
// notification. Malformed or unresolvable notifications are outcomes, not
// errors: the webhook receiver acknowledges them to stop redelivery storms.

type ReconcileOutcomeKind string

const (
	ReconcileApplied             ReconcileOutcomeKind = "applied"
	ReconcilePaymentNotFound     ReconcileOutcomeKind = "payment_not_found"
	ReconcileInvalidNotification ReconcileOutcomeKind = "invalid_notification"
)

// ReconcileOutcome reports what one notification did.

type ReconcileOutcome struct {
	Kind              ReconcileOutcomeKind
	PaymentID         string
	Status            entities.PaymentStatus
	WorkflowSignalled bool
	Persisted         bool
	Reason            string
}

// IReconcileUseCase converts inbound provider notifications (webhook payload
// or poll result) into the canonical payment status.

type IReconcileUseCase interface {
	Reconcile(ctx context.Context, providerPaymentID, providerStatus string, rawPayload json.RawMessage) ReconcileOutcome
}

// ReconcileUseCase routes a notification to the live workflow when one
// exists, and always persists the mapped status with a receipt sequence so a
// crashed or finished workflow never leaves the payment stuck at PENDING.

type ReconcileUseCase struct {
	repo    interfaces.IPaymentRepository
	gateway interfaces.IPaymentGateway
	engine  interfaces.IWorkflowEngine
}

var _ IReconcileUseCase = (*ReconcileUseCase)(nil)

func NewReconcileUseCase(repo interfaces.IPaymentRepository, gateway interfaces.IPaymentGateway, engine interfaces.IWorkflowEngine) *ReconcileUseCase {
	return &ReconcileUseCase{repo: repo, gateway: gateway, engine: engine}
}

func (u *ReconcileUseCase) Reconcile(ctx context.Context, providerPaymentID, providerStatus string, rawPayload json.RawMessage) ReconcileOutcome {
	providerPaymentID = strings.TrimSpace(providerPaymentID)
	log.Printf("[reconcile][usecase] start provider_payment_id=%q provider_status=%q payload_len=%d", providerPaymentID, providerStatus, len(rawPayload))

	if providerPaymentID == "" {
		log.Printf("[reconcile][usecase] rejected: empty provider payment id")
		return ReconcileOutcome{Kind: ReconcileInvalidNotification, Reason: "empty provider payment id"}
	}
	if len(rawPayload) == 0 || !json.Valid(rawPayload) {
		log.Printf("[reconcile][usecase] rejected: missing or malformed payload provider_payment_id=%s", providerPaymentID)
		return ReconcileOutcome{Kind: ReconcileInvalidNotification, Reason: "missing or malformed payload"}
	}

	// The gateway is invoked with the internal payment id as external
	// reference, so the provider's reference resolves directly to our id.
	p, err := u.repo.FindByID(ctx, providerPaymentID)
	if err != nil {
		log.Printf("[reconcile][usecase] lookup failed provider_payment_id=%s err=%v", providerPaymentID, err)
		return ReconcileOutcome{Kind: ReconcileInvalidNotification, Reason: "payment lookup failed"}
	}
	if p == nil {
		log.Printf("[reconcile][usecase] payment not found provider_payment_id=%s", providerPaymentID)
		return ReconcileOutcome{Kind: ReconcilePaymentNotFound, PaymentID: providerPaymentID}
	}

	status := u.resolveStatus(ctx, providerPaymentID, providerStatus, rawPayload)
	mapped := MapProviderStatus(status)
	seq := time.Now().UnixNano()

	outcome := ReconcileOutcome{Kind: ReconcileApplied, PaymentID: p.ID, Status: mapped}

	// Preferred path: keep the wait loop authoritative by signalling the
	// live workflow for this payment.
	if u.engine != nil {
		for _, workflowID := range u.engine.ListByPrefix(workflow.WorkflowIDPrefix(p.ID)) {
			sig := workflow.ConfirmSignal{Status: workflowStatusFor(mapped), Data: rawPayload}
			if err := u.engine.Signal(ctx, workflowID, workflow.SignalConfirm, sig); err != nil {
				// Finished between listing and signalling; the direct write
				// below still applies the status.
				log.Printf("[reconcile][usecase] signal dropped workflow_id=%s err=%v", workflowID, err)
				continue
			}
			log.Printf("[reconcile][usecase] workflow signalled workflow_id=%s status=%s", workflowID, mapped)
			outcome.WorkflowSignalled = true
		}
	}

	// Always persist directly as well; the sequence makes the dual write
	// idempotent and keeps notifications ordered by receipt time.
	if _, err := u.repo.UpdateStatus(ctx, p.ID, mapped, seq); err != nil {
		log.Printf("[reconcile][usecase] status persistence failed payment_id=%s status=%s err=%v", p.ID, mapped, err)
		outcome.Reason = "status persistence failed"
		return outcome
	}
	outcome.Persisted = true
	log.Printf("[reconcile][usecase] applied payment_id=%s status=%s seq=%d signalled=%t", p.ID, mapped, seq, outcome.WorkflowSignalled)
	return outcome
}

// resolveStatus prefers the status carried by the notification, then a
// gateway lookup, then the notification's own action/type field. A gateway
// failure never fails the reconciliation.
func (u *ReconcileUseCase) resolveStatus(ctx context.Context, providerPaymentID, providerStatus string, rawPayload json.RawMessage) string {
	if strings.TrimSpace(providerStatus) != "" {
		return providerStatus
	}

	if u.gateway != nil {
		if status, err := u.gateway.GetStatus(ctx, providerPaymentID); err == nil && strings.TrimSpace(status) != "" {
			return status
		} else if err != nil {
			log.Printf("[reconcile][usecase] gateway status lookup failed provider_payment_id=%s err=%v", providerPaymentID, err)
		}
	}

	// Fall back to the action field, e.g. "payment.approved".
	var envelope struct {
		Action string `json:"action"`
		Type   string `json:"type"`
	}
	if err := json.Unmarshal(rawPayload, &envelope); err == nil {
		if i := strings.LastIndex(envelope.Action, "."); i >= 0 && i < len(envelope.Action)-1 {
			return envelope.Action[i+1:]
		}
	}
	return ""
}

// MapProviderStatus folds a provider status string into the canonical
// payment enum. Unknown values default to PENDING, never to an error.
func MapProviderStatus(providerStatus string) entities.PaymentStatus {
	switch strings.ToLower(strings.TrimSpace(providerStatus)) {
	case "approved":
		return entities.PaymentStatusPaid
	case "rejected", "cancelled", "failed":
		return entities.PaymentStatusFail
	default:
		return entities.PaymentStatusPending
	}
}

// workflowStatusFor converts the canonical enum into the confirm signal
// vocabulary understood by the wait loop.
func workflowStatusFor(s entities.PaymentStatus) string {
	switch s {
	case entities.PaymentStatusPaid:
		return string(workflow.StatusPaid)
	case entities.PaymentStatusFail:
		return string(workflow.StatusFailed)
	default:
		return string(workflow.StatusPending)
	}
}
