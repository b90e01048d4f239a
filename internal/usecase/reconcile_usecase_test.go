package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"pagamentos_xpto/internal/domain/entities"
	mock_interfaces "pagamentos_xpto/internal/usecase/interfaces/mocks"
	"pagamentos_xpto/internal/workflow"

	"go.uber.org/mock/gomock"
)

func TestMapProviderStatus(t *testing.T) {
	cases := []struct {
		raw  string
		want entities.PaymentStatus
	}{
		{"approved", entities.PaymentStatusPaid},
		{" Approved ", entities.PaymentStatusPaid},
		{"rejected", entities.PaymentStatusFail},
		{"cancelled", entities.PaymentStatusFail},
		{"failed", entities.PaymentStatusFail},
		{"in_process", entities.PaymentStatusPending},
		{"pending", entities.PaymentStatusPending},
		{"", entities.PaymentStatusPending},
		{"something-new", entities.PaymentStatusPending},
	}
	for _, tc := range cases {
		if got := MapProviderStatus(tc.raw); got != tc.want {
			t.Fatalf("MapProviderStatus(%q) = %s, want %s", tc.raw, got, tc.want)
		}
	}
}

func TestReconcileUseCase_InvalidNotifications(t *testing.T) {
	t.Run("empty provider payment id", func(t *testing.T) {
		uc := NewReconcileUseCase(nil, nil, nil)
		out := uc.Reconcile(context.Background(), "  ", "approved", json.RawMessage(`{}`))
		if out.Kind != ReconcileInvalidNotification {
			t.Fatalf("expected invalid notification, got %+v", out)
		}
	})

	t.Run("malformed payload", func(t *testing.T) {
		uc := NewReconcileUseCase(nil, nil, nil)
		out := uc.Reconcile(context.Background(), "pay-1", "approved", json.RawMessage(`{`))
		if out.Kind != ReconcileInvalidNotification {
			t.Fatalf("expected invalid notification, got %+v", out)
		}
	})

	t.Run("missing payload", func(t *testing.T) {
		uc := NewReconcileUseCase(nil, nil, nil)
		out := uc.Reconcile(context.Background(), "pay-1", "approved", nil)
		if out.Kind != ReconcileInvalidNotification {
			t.Fatalf("expected invalid notification, got %+v", out)
		}
	})
}

func TestReconcileUseCase_PaymentNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo := mock_interfaces.NewMockIPaymentRepository(ctrl)
	uc := NewReconcileUseCase(repo, nil, nil)

	repo.EXPECT().FindByID(gomock.Any(), "pay-1").Return(nil, nil)

	out := uc.Reconcile(context.Background(), "pay-1", "approved", json.RawMessage(`{}`))
	if out.Kind != ReconcilePaymentNotFound {
		t.Fatalf("expected payment not found, got %+v", out)
	}
}

func TestReconcileUseCase_Applied(t *testing.T) {
	payment := &entities.Payment{ID: "pay-1", Status: entities.PaymentStatusPending}

	t.Run("signals the live workflow and persists", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIPaymentRepository(ctrl)
		eng := mock_interfaces.NewMockIWorkflowEngine(ctrl)
		uc := NewReconcileUseCase(repo, nil, eng)

		repo.EXPECT().FindByID(gomock.Any(), "pay-1").Return(payment, nil)
		eng.EXPECT().ListByPrefix(workflow.WorkflowIDPrefix("pay-1")).Return([]string{"payment-pay-1-99"})
		eng.EXPECT().Signal(gomock.Any(), "payment-pay-1-99", workflow.SignalConfirm, gomock.Any()).DoAndReturn(
			func(_ context.Context, _, _ string, payload any) error {
				sig, ok := payload.(workflow.ConfirmSignal)
				if !ok || sig.Status != string(workflow.StatusPaid) {
					t.Fatalf("unexpected signal payload: %#v", payload)
				}
				return nil
			})
		repo.EXPECT().UpdateStatus(gomock.Any(), "pay-1", entities.PaymentStatusPaid, gomock.Any()).Return(payment, nil)

		out := uc.Reconcile(context.Background(), "pay-1", "approved", json.RawMessage(`{"action":"payment.updated"}`))
		if out.Kind != ReconcileApplied || !out.WorkflowSignalled || !out.Persisted {
			t.Fatalf("unexpected outcome: %+v", out)
		}
		if out.Status != entities.PaymentStatusPaid {
			t.Fatalf("expected PAID, got %s", out.Status)
		}
	})

	t.Run("persists even when no workflow is live", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIPaymentRepository(ctrl)
		eng := mock_interfaces.NewMockIWorkflowEngine(ctrl)
		uc := NewReconcileUseCase(repo, nil, eng)

		repo.EXPECT().FindByID(gomock.Any(), "pay-1").Return(payment, nil)
		eng.EXPECT().ListByPrefix(workflow.WorkflowIDPrefix("pay-1")).Return(nil)
		repo.EXPECT().UpdateStatus(gomock.Any(), "pay-1", entities.PaymentStatusFail, gomock.Any()).Return(payment, nil)

		out := uc.Reconcile(context.Background(), "pay-1", "rejected", json.RawMessage(`{}`))
		if out.Kind != ReconcileApplied || out.WorkflowSignalled || !out.Persisted {
			t.Fatalf("unexpected outcome: %+v", out)
		}
	})

	t.Run("workflow finished between listing and signalling", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIPaymentRepository(ctrl)
		eng := mock_interfaces.NewMockIWorkflowEngine(ctrl)
		uc := NewReconcileUseCase(repo, nil, eng)

		repo.EXPECT().FindByID(gomock.Any(), "pay-1").Return(payment, nil)
		eng.EXPECT().ListByPrefix(workflow.WorkflowIDPrefix("pay-1")).Return([]string{"payment-pay-1-99"})
		eng.EXPECT().Signal(gomock.Any(), "payment-pay-1-99", workflow.SignalConfirm, gomock.Any()).Return(errors.New("workflow not found"))
		repo.EXPECT().UpdateStatus(gomock.Any(), "pay-1", entities.PaymentStatusPaid, gomock.Any()).Return(payment, nil)

		out := uc.Reconcile(context.Background(), "pay-1", "approved", json.RawMessage(`{}`))
		if out.Kind != ReconcileApplied || out.WorkflowSignalled || !out.Persisted {
			t.Fatalf("unexpected outcome: %+v", out)
		}
	})

	t.Run("unknown provider status persists PENDING", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIPaymentRepository(ctrl)
		eng := mock_interfaces.NewMockIWorkflowEngine(ctrl)
		uc := NewReconcileUseCase(repo, nil, eng)

		repo.EXPECT().FindByID(gomock.Any(), "pay-1").Return(payment, nil)
		eng.EXPECT().ListByPrefix(workflow.WorkflowIDPrefix("pay-1")).Return(nil)
		repo.EXPECT().UpdateStatus(gomock.Any(), "pay-1", entities.PaymentStatusPending, gomock.Any()).Return(payment, nil)

		out := uc.Reconcile(context.Background(), "pay-1", "in_mediation", json.RawMessage(`{}`))
		if out.Kind != ReconcileApplied || out.Status != entities.PaymentStatusPending {
			t.Fatalf("unexpected outcome: %+v", out)
		}
	})
}

func TestReconcileUseCase_StatusResolution(t *testing.T) {
	payment := &entities.Payment{ID: "pay-1", Status: entities.PaymentStatusPending}

	t.Run("falls back to a gateway lookup", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIPaymentRepository(ctrl)
		gateway := mock_interfaces.NewMockIPaymentGateway(ctrl)
		uc := NewReconcileUseCase(repo, gateway, nil)

		repo.EXPECT().FindByID(gomock.Any(), "pay-1").Return(payment, nil)
		gateway.EXPECT().GetStatus(gomock.Any(), "pay-1").Return("approved", nil)
		repo.EXPECT().UpdateStatus(gomock.Any(), "pay-1", entities.PaymentStatusPaid, gomock.Any()).Return(payment, nil)

		out := uc.Reconcile(context.Background(), "pay-1", "", json.RawMessage(`{"type":"payment"}`))
		if out.Status != entities.PaymentStatusPaid {
			t.Fatalf("expected PAID from gateway lookup, got %+v", out)
		}
	})

	t.Run("falls back to the action suffix when the gateway fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIPaymentRepository(ctrl)
		gateway := mock_interfaces.NewMockIPaymentGateway(ctrl)
		uc := NewReconcileUseCase(repo, gateway, nil)

		repo.EXPECT().FindByID(gomock.Any(), "pay-1").Return(payment, nil)
		gateway.EXPECT().GetStatus(gomock.Any(), "pay-1").Return("", errors.New("provider down"))
		repo.EXPECT().UpdateStatus(gomock.Any(), "pay-1", entities.PaymentStatusPaid, gomock.Any()).Return(payment, nil)

		out := uc.Reconcile(context.Background(), "pay-1", "", json.RawMessage(`{"action":"payment.approved"}`))
		if out.Status != entities.PaymentStatusPaid {
			t.Fatalf("expected PAID from action suffix, got %+v", out)
		}
	})
}

func TestReconcileUseCase_PersistenceFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo := mock_interfaces.NewMockIPaymentRepository(ctrl)
	eng := mock_interfaces.NewMockIWorkflowEngine(ctrl)
	uc := NewReconcileUseCase(repo, nil, eng)

	payment := &entities.Payment{ID: "pay-1"}
	repo.EXPECT().FindByID(gomock.Any(), "pay-1").Return(payment, nil)
	eng.EXPECT().ListByPrefix(workflow.WorkflowIDPrefix("pay-1")).Return(nil)
	repo.EXPECT().UpdateStatus(gomock.Any(), "pay-1", entities.PaymentStatusPaid, gomock.Any()).Return(nil, errors.New("db down"))

	out := uc.Reconcile(context.Background(), "pay-1", "approved", json.RawMessage(`{}`))
	if out.Kind != ReconcileApplied || out.Persisted {
		t.Fatalf("expected applied-but-unpersisted outcome, got %+v", out)
	}
	if out.Reason == "" {
		t.Fatalf("expected a failure reason")
	}
}
