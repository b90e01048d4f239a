package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"
)

type signalEnvelope struct {
	name    string
	payload json.RawMessage
}

// run is the engine-side state of one workflow execution. Signal and query
// handlers, pending signals and workflow state snapshots are all guarded by
// mu; the workflow goroutine takes the same lock through Context.Update, so
// decision logic and external readers never race.
type run struct {
	id    string
	input json.RawMessage

	mu             sync.Mutex
	pending        []signalEnvelope
	signalHandlers map[string]func(json.RawMessage)
	queryHandlers  map[string]func() any

	replay    []HistoryEvent
	cursor    int
	replaying bool

	nextSeq int64
	done    bool

	notifyCh chan struct{}
	doneCh   chan struct{}
}

func newRun(id string, input json.RawMessage) *run {
	return &run{
		id:             id,
		input:          input,
		signalHandlers: make(map[string]func(json.RawMessage)),
		queryHandlers:  make(map[string]func() any),
		nextSeq:        1,
		notifyCh:       make(chan struct{}, 1),
		doneCh:         make(chan struct{}),
	}
}

func (r *run) notify() {
	select {
	case r.notifyCh <- struct{}{}:
	default:
	}
}

// deliverLocked invokes the handler for one signal. Unhandled signal names
// are dropped.
func (r *run) deliverLocked(env signalEnvelope) {
	if h, ok := r.signalHandlers[env.name]; ok {
		h(env.payload)
	} else {
		log.Printf("[workflow][engine] dropping unhandled signal workflow_id=%s signal=%s", r.id, env.name)
	}
}

// drainLiveSignalsLocked delivers every pending live signal. Only valid once
// replay has finished; during replay signals are delivered from the journal at
// their recorded positions.
func (r *run) drainLiveSignalsLocked() {
	for _, env := range r.pending {
		r.deliverLocked(env)
	}
	r.pending = nil
}

// nextReplayEventLocked delivers journaled signals sitting at the replay
// cursor, then returns the next non-signal event, or nil when the journal is
// exhausted (replay is over).
func (r *run) nextReplayEventLocked() *HistoryEvent {
	for r.cursor < len(r.replay) && r.replay[r.cursor].Type == EventSignalReceived {
		ev := r.replay[r.cursor]
		r.cursor++
		r.deliverLocked(signalEnvelope{name: ev.Name, payload: ev.Payload})
	}
	if r.cursor >= len(r.replay) {
		r.replaying = false
		return nil
	}
	return &r.replay[r.cursor]
}

// consumeReplayEventLocked advances the cursor past the event returned by
// nextReplayEventLocked.
func (r *run) consumeReplayEventLocked() {
	r.cursor++
	if r.cursor >= len(r.replay) {
		r.replaying = false
	}
}

// Context is the API surface available to workflow code. All methods must be
// called from the workflow goroutine.

type Context struct {
	engine *Engine
	run    *run
}

// WorkflowID returns the id of this run.
func (c *Context) WorkflowID() string { return c.run.id }

// Input unmarshals the workflow input into out.
func (c *Context) Input(out any) error {
	return json.Unmarshal(c.run.input, out)
}

// OnSignal registers the handler for a named signal. Handlers run at
// suspension points under the run lock; they should only update workflow
// state, never block or perform I/O.
func (c *Context) OnSignal(name string, h func(payload json.RawMessage)) {
	c.run.mu.Lock()
	defer c.run.mu.Unlock()
	c.run.signalHandlers[name] = h
}

// OnQuery registers a read-only query handler.
func (c *Context) OnQuery(name string, h func() any) {
	c.run.mu.Lock()
	defer c.run.mu.Unlock()
	c.run.queryHandlers[name] = h
}

// Update runs fn under the run lock. Workflow code must route every write to
// state that signal or query handlers can see through here.
func (c *Context) Update(fn func()) {
	c.run.mu.Lock()
	defer c.run.mu.Unlock()
	fn()
}

// ActivityError marks an activity that exhausted its retry attempts.

type ActivityError struct {
	Activity string
	Err      error
}

func (e *ActivityError) Error() string {
	return fmt.Sprintf("activity %s failed: %v", e.Activity, e.Err)
}

func (e *ActivityError) Unwrap() error { return e.Err }

// Execute runs (or replays) one activity. Live execution applies the engine's
// retry policy and journals the outcome; replay returns the journaled outcome
// without re-executing fn. The activity result is unmarshalled into out when
// out is non-nil.
func (c *Context) Execute(name string, out any, fn func(ctx context.Context) (any, error)) error {
	r := c.run

	r.mu.Lock()
	if r.replaying {
		if ev := r.nextReplayEventLocked(); ev != nil {
			if ev.Type == EventActivityCompleted && ev.Name == name {
				r.consumeReplayEventLocked()
				recorded := *ev
				r.mu.Unlock()
				if recorded.Failed {
					return &ActivityError{Activity: name, Err: fmt.Errorf("%s", recorded.Error)}
				}
				if out != nil && len(recorded.Payload) > 0 {
					return json.Unmarshal(recorded.Payload, out)
				}
				return nil
			}
			// Journal does not match the code path; abandon replay and run
			// live from here on.
			log.Printf("[workflow][engine] replay mismatch workflow_id=%s expected=%s got=%s/%s", r.id, name, ev.Type, ev.Name)
			r.replaying = false
		}
	}
	r.mu.Unlock()

	result, err := c.engine.runActivity(r.id, name, fn)

	ev := HistoryEvent{Type: EventActivityCompleted, Name: name}
	if err != nil {
		ev.Failed = true
		ev.Error = err.Error()
		c.engine.append(context.Background(), r, ev)
		return &ActivityError{Activity: name, Err: err}
	}
	if result != nil {
		ev.Payload, _ = json.Marshal(result)
	}
	c.engine.append(context.Background(), r, ev)

	if out != nil && len(ev.Payload) > 0 {
		return json.Unmarshal(ev.Payload, out)
	}
	return nil
}

// Await suspends until pred becomes true or timeout elapses, delivering
// pending signals at each wake-up. It reports whether pred was satisfied.
// Replayed awaits resolve from the journal without waiting.
func (c *Context) Await(timeout time.Duration, pred func() bool) bool {
	r := c.run

	r.mu.Lock()
	if r.replaying {
		if ev := r.nextReplayEventLocked(); ev != nil {
			if ev.Type == EventAwaitCompleted {
				r.consumeReplayEventLocked()
				recorded := *ev
				r.mu.Unlock()
				var outcome bool
				_ = json.Unmarshal(recorded.Payload, &outcome)
				return outcome
			}
			log.Printf("[workflow][engine] replay mismatch workflow_id=%s expected=await got=%s/%s", r.id, ev.Type, ev.Name)
			r.replaying = false
		}
	}
	r.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	outcome := false
	for {
		r.mu.Lock()
		r.drainLiveSignalsLocked()
		satisfied := pred()
		r.mu.Unlock()
		if satisfied {
			outcome = true
			break
		}

		expired := false
		select {
		case <-r.notifyCh:
		case <-timer.C:
			expired = true
		}
		if expired {
			r.mu.Lock()
			r.drainLiveSignalsLocked()
			outcome = pred()
			r.mu.Unlock()
			break
		}
	}

	payload, _ := json.Marshal(outcome)
	c.engine.append(context.Background(), r, HistoryEvent{Type: EventAwaitCompleted, Payload: payload})
	return outcome
}

// runActivity executes fn with the engine retry policy: bounded attempts,
// capped exponential backoff, per-attempt timeout.
func (e *Engine) runActivity(workflowID, name string, fn func(ctx context.Context) (any, error)) (any, error) {
	policy := e.policy
	backoff := policy.InitialInterval

	var lastErr error
	for attempt := 1; attempt <= policy.MaximumAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), policy.ActivityTimeout)
		result, err := fn(ctx)
		cancel()
		if err == nil {
			return result, nil
		}
		lastErr = err
		log.Printf("[workflow][engine] activity attempt failed workflow_id=%s activity=%s attempt=%d err=%v", workflowID, name, attempt, err)

		if attempt < policy.MaximumAttempts {
			time.Sleep(backoff)
			backoff = time.Duration(float64(backoff) * policy.BackoffCoefficient)
			if backoff > policy.MaximumInterval {
				backoff = policy.MaximumInterval
			}
		}
	}
	return nil, lastErr
}
