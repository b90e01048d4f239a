package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"pagamentos_xpto/internal/domain/entities"
	"pagamentos_xpto/internal/usecase/interfaces"
	"pagamentos_xpto/internal/workflow"
)

var (
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrInvalidPaymentID = errors.New("invalid payment id")
	ErrWorkflowNotFound = errors.New("workflow not found")
	ErrNoWorkflowNeeded = errors.New("payment method does not require external processing")
)

// CreatePaymentInput is the caller-facing shape for creating a payment.

type CreatePaymentInput struct {
	CPF           string
	Description   string
	Amount        float64
	PaymentMethod entities.PaymentMethod
}

// CreatePaymentOutput returns the persisted payment plus the workflow started
// for it (empty for methods that need no external processing).

type CreatePaymentOutput struct {
	Payment    *entities.Payment
	WorkflowID string
}

// UpdatePaymentInput is a partial update. A status-only update bypasses field
// validation; anything else re-validates the merged entity.

type UpdatePaymentInput struct {
	CPF           *string
	Description   *string
	Amount        *float64
	PaymentMethod *entities.PaymentMethod
	Status        *entities.PaymentStatus
}

// IPaymentUseCase is the payment lifecycle surface exposed to controllers.

type IPaymentUseCase interface {
	Create(ctx context.Context, input CreatePaymentInput) (CreatePaymentOutput, error)
	GetByID(ctx context.Context, id string) (*entities.Payment, error)
	List(ctx context.Context, filters interfaces.PaymentFilters) ([]entities.Payment, error)
	Update(ctx context.Context, id string, input UpdatePaymentInput) (*entities.Payment, error)
	StartProcessing(ctx context.Context, p *entities.Payment) (string, error)
	WorkflowStatus(ctx context.Context, workflowID string) (string, error)
	WorkflowProgress(ctx context.Context, workflowID string) (any, error)
	CancelWorkflow(ctx context.Context, workflowID, reason string) error
}

type PaymentUseCase struct {
	repo   interfaces.IPaymentRepository
	engine interfaces.IWorkflowEngine
}

var _ IPaymentUseCase = (*PaymentUseCase)(nil)

func NewPaymentUseCase(repo interfaces.IPaymentRepository, engine interfaces.IWorkflowEngine) *PaymentUseCase {
	return &PaymentUseCase{repo: repo, engine: engine}
}

// Create builds and persists a new payment. Methods that require external
// processing also get a workflow started, keyed payment-{id}-{timestamp} so a
// retried creation never collides with a previous attempt.
func (u *PaymentUseCase) Create(ctx context.Context, input CreatePaymentInput) (CreatePaymentOutput, error) {
	log.Printf("[payment][usecase] create start method=%s amount=%.2f", input.PaymentMethod, input.Amount)

	p, err := entities.NewPayment(input.CPF, input.Description, input.Amount, input.PaymentMethod, "")
	if err != nil {
		log.Printf("[payment][usecase] validation failed err=%v", err)
		return CreatePaymentOutput{}, err
	}

	saved, err := u.repo.Save(ctx, p)
	if err != nil {
		log.Printf("[payment][usecase] save failed payment_id=%s err=%v", p.ID, err)
		return CreatePaymentOutput{}, err
	}
	log.Printf("[payment][usecase] created payment_id=%s status=%s", saved.ID, saved.Status)

	if !saved.RequiresExternalProcessing() {
		return CreatePaymentOutput{Payment: saved}, nil
	}

	workflowID, err := u.StartProcessing(ctx, saved)
	if err != nil {
		log.Printf("[payment][usecase] workflow start failed payment_id=%s err=%v", saved.ID, err)
		return CreatePaymentOutput{Payment: saved}, err
	}
	return CreatePaymentOutput{Payment: saved, WorkflowID: workflowID}, nil
}

// StartProcessing launches the processing workflow for an already persisted
// payment.
func (u *PaymentUseCase) StartProcessing(ctx context.Context, p *entities.Payment) (string, error) {
	if p == nil || strings.TrimSpace(p.ID) == "" {
		return "", ErrInvalidPaymentID
	}
	if !p.RequiresExternalProcessing() {
		return "", ErrNoWorkflowNeeded
	}
	if u.engine == nil {
		return "", errors.New("workflow engine not configured")
	}

	workflowID := fmt.Sprintf("%s%d", workflow.WorkflowIDPrefix(p.ID), time.Now().UnixMilli())
	input := workflow.Input{
		PaymentID:     p.ID,
		CPF:           p.CPF,
		Description:   p.Description,
		Amount:        p.Amount,
		PaymentMethod: string(p.PaymentMethod),
	}
	if err := u.engine.Start(ctx, workflowID, workflow.TypePaymentProcessing, input); err != nil {
		return "", err
	}
	log.Printf("[payment][usecase] workflow started payment_id=%s workflow_id=%s", p.ID, workflowID)
	return workflowID, nil
}

func (u *PaymentUseCase) GetByID(ctx context.Context, id string) (*entities.Payment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrInvalidPaymentID
	}
	p, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPaymentNotFound
	}
	return p, nil
}

func (u *PaymentUseCase) List(ctx context.Context, filters interfaces.PaymentFilters) ([]entities.Payment, error) {
	return u.repo.FindAll(ctx, filters)
}

// Update applies a partial update. The entity restores itself on a failed
// validation, so a bad field combination never half-applies.
func (u *PaymentUseCase) Update(ctx context.Context, id string, input UpdatePaymentInput) (*entities.Payment, error) {
	p, err := u.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fieldUpdate := input.CPF != nil || input.Description != nil || input.Amount != nil || input.PaymentMethod != nil
	if fieldUpdate {
		if err := p.Update(entities.PaymentUpdate{
			CPF:           input.CPF,
			Description:   input.Description,
			Amount:        input.Amount,
			PaymentMethod: input.PaymentMethod,
		}); err != nil {
			log.Printf("[payment][usecase] update rejected payment_id=%s err=%v", id, err)
			return nil, err
		}
	}
	if input.Status != nil {
		p.UpdateStatus(*input.Status)
		p.StatusSeq = time.Now().UnixNano()
	}

	saved, err := u.repo.Save(ctx, p)
	if err != nil {
		log.Printf("[payment][usecase] update save failed payment_id=%s err=%v", id, err)
		return nil, err
	}
	log.Printf("[payment][usecase] updated payment_id=%s status=%s", saved.ID, saved.Status)
	return saved, nil
}

// WorkflowStatus answers the payment_status query of a live workflow.
func (u *PaymentUseCase) WorkflowStatus(ctx context.Context, workflowID string) (string, error) {
	out, err := u.engine.Query(ctx, workflowID, workflow.QueryStatus)
	if err != nil {
		return "", ErrWorkflowNotFound
	}
	s, _ := out.(string)
	return s, nil
}

// WorkflowProgress answers the workflow_progress query of a live workflow.
func (u *PaymentUseCase) WorkflowProgress(ctx context.Context, workflowID string) (any, error) {
	out, err := u.engine.Query(ctx, workflowID, workflow.QueryProgress)
	if err != nil {
		return nil, ErrWorkflowNotFound
	}
	return out, nil
}

// CancelWorkflow delivers a cancel signal; cancellation is cooperative and
// only takes effect while the workflow is waiting for confirmation.
func (u *PaymentUseCase) CancelWorkflow(ctx context.Context, workflowID, reason string) error {
	if reason == "" {
		reason = "cancelled by user request"
	}
	if err := u.engine.Signal(ctx, workflowID, workflow.SignalCancel, workflow.CancelSignal{Reason: reason}); err != nil {
		return ErrWorkflowNotFound
	}
	log.Printf("[payment][usecase] cancel requested workflow_id=%s reason=%q", workflowID, reason)
	return nil
}
