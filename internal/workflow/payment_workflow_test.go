package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"pagamentos_xpto/internal/domain/entities"
	"pagamentos_xpto/internal/usecase/interfaces"
	mock_interfaces "pagamentos_xpto/internal/usecase/interfaces/mocks"
	"pagamentos_xpto/internal/workflow/engine"

	"go.uber.org/mock/gomock"
)

const testCPF = "52998224725"

var errProviderDown = errors.New("provider down")

func mockCheckout() interfaces.CheckoutResult {
	return interfaces.CheckoutResult{ExternalID: "ext-1", CheckoutURL: "https://mp.test/checkout/ext-1"}
}

func mockCheckoutZero() interfaces.CheckoutResult {
	return interfaces.CheckoutResult{}
}

func testRetryPolicy() engine.RetryPolicy {
	return engine.RetryPolicy{
		InitialInterval:    time.Millisecond,
		BackoffCoefficient: 2,
		MaximumInterval:    5 * time.Millisecond,
		MaximumAttempts:    3,
		ActivityTimeout:    time.Second,
	}
}

func testConfig() Config {
	return Config{
		ConfirmationTimeout: 150 * time.Millisecond,
		PollInterval:        40 * time.Millisecond,
	}
}

type workflowFixture struct {
	engine   *engine.Engine
	repo     *mock_interfaces.MockIPaymentRepository
	gateway  *mock_interfaces.MockIPaymentGateway
	notifier *mock_interfaces.MockINotificationSender
}

func newWorkflowFixture(t *testing.T, cfg Config) workflowFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	repo := mock_interfaces.NewMockIPaymentRepository(ctrl)
	gateway := mock_interfaces.NewMockIPaymentGateway(ctrl)
	notifier := mock_interfaces.NewMockINotificationSender(ctrl)

	e := engine.New(engine.NewMemoryHistoryStore(), engine.WithRetryPolicy(testRetryPolicy()))
	NewPaymentWorkflow(NewActivities(repo, gateway, notifier), cfg).Register(e)

	return workflowFixture{engine: e, repo: repo, gateway: gateway, notifier: notifier}
}

func runToCompletion(t *testing.T, e *engine.Engine, workflowID string, input Input) Result {
	t.Helper()
	if err := e.Start(context.Background(), workflowID, TypePaymentProcessing, input); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	out, err := e.WaitForCompletion(ctx, workflowID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var res Result
	if err := json.Unmarshal(out, &res); err != nil {
		t.Fatalf("bad result payload %s: %v", out, err)
	}
	return res
}

func validInput() Input {
	return Input{
		PaymentID:     "pay-1",
		CPF:           testCPF,
		Description:   "order 42",
		Amount:        120.5,
		PaymentMethod: string(entities.PaymentMethodCreditCard),
	}
}

func TestPaymentWorkflow_ConfirmedPaidViaSignal(t *testing.T) {
	f := newWorkflowFixture(t, testConfig())
	p := &entities.Payment{ID: "pay-1"}

	f.gateway.EXPECT().CreateCheckout(gomock.Any(), gomock.Any()).
		Return(mockCheckout(), nil)
	f.repo.EXPECT().UpdateStatus(gomock.Any(), "pay-1", entities.PaymentStatusPending, gomock.Any()).Return(p, nil)
	f.repo.EXPECT().UpdateStatus(gomock.Any(), "pay-1", entities.PaymentStatusPaid, gomock.Any()).Return(p, nil)
	f.notifier.EXPECT().Send(gomock.Any(), "pay-1", testCPF, gomock.Any(), "email").Return(nil).AnyTimes()

	if err := f.engine.Start(context.Background(), "payment-pay-1-1", TypePaymentProcessing, validInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.engine.Signal(context.Background(), "payment-pay-1-1", SignalConfirm, ConfirmSignal{Status: string(StatusPaid)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	out, err := f.engine.WaitForCompletion(ctx, "payment-pay-1-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var res Result
	if err := json.Unmarshal(out, &res); err != nil {
		t.Fatalf("bad result payload: %v", err)
	}
	if res.Status != "completed" {
		t.Fatalf("expected completed, got %+v", res)
	}
	if res.CheckoutURL == "" {
		t.Fatalf("expected checkout url in result")
	}
}

func TestPaymentWorkflow_ConfirmedPaidViaPoll(t *testing.T) {
	f := newWorkflowFixture(t, testConfig())
	p := &entities.Payment{ID: "pay-1"}

	f.gateway.EXPECT().CreateCheckout(gomock.Any(), gomock.Any()).Return(mockCheckout(), nil)
	f.gateway.EXPECT().GetStatus(gomock.Any(), "ext-1").Return("approved", nil).AnyTimes()
	f.repo.EXPECT().UpdateStatus(gomock.Any(), "pay-1", entities.PaymentStatusPending, gomock.Any()).Return(p, nil)
	f.repo.EXPECT().UpdateStatus(gomock.Any(), "pay-1", entities.PaymentStatusPaid, gomock.Any()).Return(p, nil)
	f.notifier.EXPECT().Send(gomock.Any(), "pay-1", testCPF, gomock.Any(), "email").Return(nil).AnyTimes()

	res := runToCompletion(t, f.engine, "payment-pay-1-1", validInput())
	if res.Status != "completed" {
		t.Fatalf("expected completed, got %+v", res)
	}
}

func TestPaymentWorkflow_RejectedViaPoll(t *testing.T) {
	f := newWorkflowFixture(t, testConfig())
	p := &entities.Payment{ID: "pay-1"}

	f.gateway.EXPECT().CreateCheckout(gomock.Any(), gomock.Any()).Return(mockCheckout(), nil)
	f.gateway.EXPECT().GetStatus(gomock.Any(), "ext-1").Return("rejected", nil).AnyTimes()
	f.repo.EXPECT().UpdateStatus(gomock.Any(), "pay-1", entities.PaymentStatusPending, gomock.Any()).Return(p, nil)
	f.repo.EXPECT().UpdateStatus(gomock.Any(), "pay-1", entities.PaymentStatusFail, gomock.Any()).Return(p, nil)
	f.notifier.EXPECT().Send(gomock.Any(), "pay-1", testCPF, gomock.Any(), "email").Return(nil).AnyTimes()

	res := runToCompletion(t, f.engine, "payment-pay-1-1", validInput())
	if res.Status != "failed" {
		t.Fatalf("expected failed, got %+v", res)
	}
}

func TestPaymentWorkflow_ExpiresWithoutConfirmation(t *testing.T) {
	f := newWorkflowFixture(t, testConfig())
	p := &entities.Payment{ID: "pay-1"}

	f.gateway.EXPECT().CreateCheckout(gomock.Any(), gomock.Any()).Return(mockCheckout(), nil)
	// The provider keeps reporting a non-decisive status until the window
	// closes.
	f.gateway.EXPECT().GetStatus(gomock.Any(), "ext-1").Return("in_process", nil).AnyTimes()
	f.repo.EXPECT().UpdateStatus(gomock.Any(), "pay-1", entities.PaymentStatusPending, gomock.Any()).Return(p, nil)
	f.repo.EXPECT().UpdateStatus(gomock.Any(), "pay-1", entities.PaymentStatusFail, gomock.Any()).Return(p, nil)
	f.notifier.EXPECT().Send(gomock.Any(), "pay-1", testCPF, gomock.Any(), "email").Return(nil).AnyTimes()

	res := runToCompletion(t, f.engine, "payment-pay-1-1", validInput())
	if res.Status != "failed" {
		t.Fatalf("expected failed, got %+v", res)
	}
	if res.FailureReason == "" {
		t.Fatalf("expected an expiry failure reason")
	}
}

func TestPaymentWorkflow_Cancelled(t *testing.T) {
	f := newWorkflowFixture(t, Config{ConfirmationTimeout: 2 * time.Second, PollInterval: time.Second})
	p := &entities.Payment{ID: "pay-1"}

	f.gateway.EXPECT().CreateCheckout(gomock.Any(), gomock.Any()).Return(mockCheckout(), nil)
	// Cancellation leaves the persisted status at PENDING; no terminal write.
	f.repo.EXPECT().UpdateStatus(gomock.Any(), "pay-1", entities.PaymentStatusPending, gomock.Any()).Return(p, nil)
	f.notifier.EXPECT().Send(gomock.Any(), "pay-1", testCPF, gomock.Any(), "email").Return(nil).AnyTimes()

	if err := f.engine.Start(context.Background(), "payment-pay-1-1", TypePaymentProcessing, validInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.engine.Signal(context.Background(), "payment-pay-1-1", SignalCancel, CancelSignal{Reason: "user asked"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	out, err := f.engine.WaitForCompletion(ctx, "payment-pay-1-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var res Result
	if err := json.Unmarshal(out, &res); err != nil {
		t.Fatalf("bad result payload: %v", err)
	}
	if res.Status != "cancelled" {
		t.Fatalf("expected cancelled, got %+v", res)
	}
}

func TestPaymentWorkflow_ValidationFailed(t *testing.T) {
	f := newWorkflowFixture(t, testConfig())
	p := &entities.Payment{ID: "pay-1"}

	// No gateway or notifier expectations: processing is never reached.
	f.repo.EXPECT().UpdateStatus(gomock.Any(), "pay-1", entities.PaymentStatusFail, gomock.Any()).Return(p, nil)

	input := validInput()
	input.CPF = "11111111111"
	res := runToCompletion(t, f.engine, "payment-pay-1-1", input)
	if res.Status != "failed" {
		t.Fatalf("expected failed, got %+v", res)
	}
	if res.FailureReason == "" {
		t.Fatalf("expected a validation failure reason")
	}
}

func TestPaymentWorkflow_ProcessingFailed(t *testing.T) {
	f := newWorkflowFixture(t, testConfig())
	p := &entities.Payment{ID: "pay-1"}

	f.gateway.EXPECT().CreateCheckout(gomock.Any(), gomock.Any()).
		Return(mockCheckoutZero(), errProviderDown).Times(3)
	f.repo.EXPECT().UpdateStatus(gomock.Any(), "pay-1", entities.PaymentStatusFail, gomock.Any()).Return(p, nil)

	res := runToCompletion(t, f.engine, "payment-pay-1-1", validInput())
	if res.Status != "failed" {
		t.Fatalf("expected failed, got %+v", res)
	}
}

func TestPaymentWorkflow_UnsupportedMethodFailsWithoutRetry(t *testing.T) {
	f := newWorkflowFixture(t, testConfig())
	p := &entities.Payment{ID: "pay-1"}

	// The gateway is never called for an unknown method.
	f.repo.EXPECT().UpdateStatus(gomock.Any(), "pay-1", entities.PaymentStatusFail, gomock.Any()).Return(p, nil)

	input := validInput()
	input.PaymentMethod = "BOLETO"
	res := runToCompletion(t, f.engine, "payment-pay-1-1", input)
	if res.Status != "failed" {
		t.Fatalf("expected failed, got %+v", res)
	}
}
