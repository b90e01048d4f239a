package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"pagamentos_xpto/internal/domain/entities"
	"pagamentos_xpto/internal/workflow/engine"
)

// PaymentWorkflow orchestrates one payment attempt from validation to a
// terminal outcome:
//
//	started -> validating -> processing -> pending -> {paid, failed,
//	cancelled, expired}
//
// with validation_failed / processing_failed short-circuits and a catch-all
// error state. Terminal states are projected onto the persisted payment
// status (paid -> PAID, failures and expiry -> FAIL, cancelled is
// workflow-only).

type PaymentWorkflow struct {
	activities *Activities
	cfg        Config
}

func NewPaymentWorkflow(activities *Activities, cfg Config) *PaymentWorkflow {
	if cfg.ConfirmationTimeout <= 0 {
		cfg.ConfirmationTimeout = DefaultConfig().ConfirmationTimeout
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultConfig().PollInterval
	}
	return &PaymentWorkflow{activities: activities, cfg: cfg}
}

// Register binds the workflow function to its type name on the engine.
func (w *PaymentWorkflow) Register(e *engine.Engine) {
	e.Register(TypePaymentProcessing, w.Run)
}

// Run is the workflow function. Decision logic is deterministic: elapsed time
// is tracked by summing bounded waits, never read from the wall clock, and
// every side effect goes through an activity.
func (w *PaymentWorkflow) Run(wf *engine.Context) (res any, err error) {
	var input Input
	if err := wf.Input(&input); err != nil {
		return nil, err
	}
	a := w.activities

	var (
		status           = StatusStarted
		step             = "validation"
		cancelled        bool
		confirmed        bool
		confirmationData json.RawMessage
		externalID       string
		checkoutURL      string
	)

	// Signal and query handlers run under the run lock at suspension points;
	// the main flow writes the same state through wf.Update.
	wf.OnSignal(SignalCancel, func(p json.RawMessage) {
		var sig CancelSignal
		_ = json.Unmarshal(p, &sig)
		log.Printf("[workflow][payment] cancellation requested payment_id=%s reason=%q", input.PaymentID, sig.Reason)
		cancelled = true
		status = StatusCancelled
	})
	wf.OnSignal(SignalConfirm, func(p json.RawMessage) {
		var sig ConfirmSignal
		_ = json.Unmarshal(p, &sig)
		log.Printf("[workflow][payment] confirmation received payment_id=%s status=%s", input.PaymentID, sig.Status)
		confirmationData = sig.Data
		switch Status(sig.Status) {
		case StatusPaid, StatusFailed:
			confirmed = true
			status = Status(sig.Status)
		}
	})
	wf.OnQuery(QueryStatus, func() any { return string(status) })
	wf.OnQuery(QueryProgress, func() any {
		return Progress{
			Status:      string(status),
			Step:        step,
			PaymentID:   input.PaymentID,
			ExternalID:  externalID,
			CheckoutURL: checkoutURL,
		}
	})

	setState := func(st Status, sp string) {
		wf.Update(func() {
			status = st
			step = sp
		})
	}
	logEvent := func(event string, details any) {
		_ = wf.Execute(activityLogEvent, nil, func(ctx context.Context) (any, error) {
			return nil, a.LogEvent(ctx, input.PaymentID, event, details)
		})
	}
	persistStatus := func(ps entities.PaymentStatus) {
		if err := wf.Execute(activityUpdateStatus, nil, func(ctx context.Context) (any, error) {
			return nil, a.UpdateStatus(ctx, input.PaymentID, ps)
		}); err != nil {
			log.Printf("[workflow][payment] status persistence failed payment_id=%s status=%s err=%v", input.PaymentID, ps, err)
		}
	}
	// persistTerminal projects a terminal workflow status onto the payment row.
	// Workflow-only outcomes (cancelled) project to nothing and skip the write.
	persistTerminal := func(st Status) {
		if ps, ok := paymentStatusFor(st); ok {
			persistStatus(ps)
		}
	}
	notify := func(st string) {
		if err := wf.Execute(activityNotify, nil, func(ctx context.Context) (any, error) {
			return nil, a.Notify(ctx, input.PaymentID, input.CPF, st)
		}); err != nil {
			log.Printf("[workflow][payment] notification failed payment_id=%s status=%s err=%v", input.PaymentID, st, err)
		}
	}

	// Unexpected failures always resolve to a persisted FAIL so the payment
	// never stays PENDING without an owner.
	defer func() {
		if r := recover(); r != nil {
			reason := fmt.Sprintf("unexpected workflow error: %v", r)
			setState(StatusError, step)
			logEvent("workflow_error", map[string]string{"error": reason})
			persistTerminal(StatusError)
			res = Result{PaymentID: input.PaymentID, Status: "failed", FailureReason: reason}
			err = nil
		}
	}()

	logEvent("workflow_started", input)

	// Step 1: validation.
	setState(StatusValidating, "validation")
	var validation ValidationOutcome
	if execErr := wf.Execute(activityValidate, &validation, func(ctx context.Context) (any, error) {
		return a.Validate(ctx, input.CPF, input.Amount)
	}); execErr != nil {
		setState(StatusError, "validation")
		logEvent("workflow_error", map[string]string{"error": execErr.Error()})
		persistTerminal(StatusError)
		return Result{PaymentID: input.PaymentID, Status: "failed", FailureReason: execErr.Error()}, nil
	}
	if !validation.Valid {
		setState(StatusValidationFailed, "validation")
		logEvent("validation_failed", validation)
		persistTerminal(StatusValidationFailed)
		return Result{
			PaymentID:     input.PaymentID,
			Status:        "failed",
			FailureReason: strings.Join(validation.Errors, ", "),
		}, nil
	}
	logEvent("validation_passed", validation)

	// Step 2: processing with the external provider.
	setState(StatusProcessing, "processing")
	var processing ProcessingResult
	if execErr := wf.Execute(activityProcess, &processing, func(ctx context.Context) (any, error) {
		return a.Process(ctx, input.PaymentID, input.PaymentMethod, input.Amount, input.Description)
	}); execErr != nil {
		processing = ProcessingResult{Success: false, ErrorMessage: execErr.Error()}
	}
	if !processing.Success {
		setState(StatusProcessingFailed, "processing")
		logEvent("processing_failed", processing)
		persistTerminal(StatusProcessingFailed)
		return Result{
			PaymentID:     input.PaymentID,
			Status:        "failed",
			FailureReason: processing.ErrorMessage,
		}, nil
	}

	wf.Update(func() {
		externalID = processing.ExternalID
		checkoutURL = processing.CheckoutURL
	})
	logEvent("processing_completed", processing)
	// This write stamps its own receipt seq, so a webhook landing between
	// checkout creation and here can transiently be overwritten with PENDING.
	// Its confirm signal is still queued and the terminal write below
	// re-applies the decisive status.
	persistStatus(entities.PaymentStatusPending)

	// Step 3: wait for confirmation, polling between signals.
	setState(StatusPending, "awaiting_confirmation")
	notify(string(entities.PaymentStatusPending))

	var elapsed time.Duration
loop:
	for {
		var isCancelled, isConfirmed bool
		wf.Update(func() {
			isCancelled = cancelled
			isConfirmed = confirmed
		})
		if isCancelled || isConfirmed || elapsed >= w.cfg.ConfirmationTimeout {
			break
		}

		waitFor := w.cfg.PollInterval
		if remaining := w.cfg.ConfirmationTimeout - elapsed; remaining < waitFor {
			waitFor = remaining
		}
		if wf.Await(waitFor, func() bool { return confirmed || cancelled }) {
			continue
		}

		// Bounded wait elapsed with no signal: ask the provider directly.
		var check StatusCheck
		if execErr := wf.Execute(activityCheckExternal, &check, func(ctx context.Context) (any, error) {
			return a.CheckExternalStatus(ctx, externalID)
		}); execErr != nil {
			// A failed poll is not decisive; keep waiting out the budget.
			log.Printf("[workflow][payment] status poll failed payment_id=%s err=%v", input.PaymentID, execErr)
			elapsed += waitFor
			continue
		}

		switch Status(check.Status) {
		case StatusPaid:
			wf.Update(func() {
				confirmed = true
				status = StatusPaid
				confirmationData, _ = json.Marshal(check)
			})
			break loop
		case StatusFailed:
			setState(StatusFailed, "awaiting_confirmation")
			logEvent("payment_failed", check)
			persistTerminal(StatusFailed)
			return Result{
				PaymentID:     input.PaymentID,
				Status:        "failed",
				FailureReason: "payment failed at external provider",
			}, nil
		default:
			elapsed += waitFor
		}
	}

	var (
		isCancelled, isConfirmed bool
		finalStatus              Status
		data                     json.RawMessage
	)
	wf.Update(func() {
		isCancelled = cancelled
		isConfirmed = confirmed
		finalStatus = status
		data = confirmationData
	})

	if isCancelled {
		// Cancellation is a workflow-only outcome; the payment row keeps its
		// last persisted status.
		setState(StatusCancelled, "cancelled")
		notify("CANCELLED")
		logEvent("payment_cancelled", nil)
		return Result{PaymentID: input.PaymentID, Status: "cancelled", Message: "payment cancelled"}, nil
	}

	if isConfirmed && finalStatus == StatusPaid {
		// Step 4: finalization.
		setState(StatusPaid, "finalizing")
		persistTerminal(StatusPaid)
		notify(string(entities.PaymentStatusPaid))
		logEvent("payment_completed", data)
		return Result{
			PaymentID:   input.PaymentID,
			Status:      "completed",
			Message:     "payment completed successfully",
			CheckoutURL: checkoutURL,
		}, nil
	}

	if isConfirmed && finalStatus == StatusFailed {
		setState(StatusFailed, "finalizing")
		persistTerminal(StatusFailed)
		notify(string(entities.PaymentStatusFail))
		logEvent("payment_failed", data)
		return Result{
			PaymentID:     input.PaymentID,
			Status:        "failed",
			FailureReason: "payment confirmed as failed by provider",
		}, nil
	}

	// Confirmation window exhausted with no decisive outcome.
	setState(StatusExpired, "expired")
	persistTerminal(StatusExpired)
	notify("EXPIRED")
	logEvent("payment_expired", map[string]string{"elapsed": elapsed.String()})
	return Result{
		PaymentID:     input.PaymentID,
		Status:        "failed",
		FailureReason: "payment expired - no confirmation received within timeout period",
	}, nil
}
