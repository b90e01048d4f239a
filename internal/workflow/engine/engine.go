// Package engine is a small durable workflow runtime: each workflow runs as a
// single goroutine whose observable actions (activities, bounded waits,
// signals) are journaled to a HistoryStore. After a restart, Resume replays
// the journal so completed activities are not re-executed and the run picks up
// exactly where it stopped. Signals are delivered only at suspension points,
// so workflow decision logic behaves as a single deterministic thread.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	ErrWorkflowNotFound      = errors.New("workflow not found")
	ErrWorkflowAlreadyExists = errors.New("workflow already exists")
	ErrUnknownWorkflowType   = errors.New("unknown workflow type")
	ErrUnknownQuery          = errors.New("unknown query")
)

// RetryPolicy bounds each activity attempt and the backoff between attempts.

type RetryPolicy struct {
	InitialInterval    time.Duration
	BackoffCoefficient float64
	MaximumInterval    time.Duration
	MaximumAttempts    int
	ActivityTimeout    time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		InitialInterval:    time.Second,
		BackoffCoefficient: 2,
		MaximumInterval:    30 * time.Second,
		MaximumAttempts:    3,
		ActivityTimeout:    5 * time.Minute,
	}
}

// WorkflowFunc is the decision logic of one workflow type. It must be
// deterministic: no wall-clock reads, no randomness, side effects only through
// Context.Execute.

type WorkflowFunc func(wf *Context) (any, error)

// Result is the terminal outcome of a run.

type Result struct {
	Output json.RawMessage
	Err    error
}

// Engine owns the live runs and their journals.

type Engine struct {
	mu        sync.RWMutex
	runs      map[string]*run
	results   map[string]Result
	workflows map[string]WorkflowFunc
	history   HistoryStore
	policy    RetryPolicy
	wg        sync.WaitGroup
}

type Option func(*Engine)

func WithRetryPolicy(p RetryPolicy) Option {
	return func(e *Engine) { e.policy = p }
}

func New(history HistoryStore, opts ...Option) *Engine {
	e := &Engine{
		runs:      make(map[string]*run),
		results:   make(map[string]Result),
		workflows: make(map[string]WorkflowFunc),
		history:   history,
		policy:    DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Register binds a workflow type name to its function. Must be called before
// Start or Resume dispatches that type.
func (e *Engine) Register(workflowType string, fn WorkflowFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.workflows[workflowType] = fn
}

// Start journals the input and launches a new run. Workflow ids must be
// unique per attempt; starting a duplicate id is an error.
func (e *Engine) Start(ctx context.Context, workflowID, workflowType string, input any) error {
	e.mu.Lock()
	fn, ok := e.workflows[workflowType]
	if !ok {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownWorkflowType, workflowType)
	}
	if _, exists := e.runs[workflowID]; exists {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrWorkflowAlreadyExists, workflowID)
	}
	if _, done := e.results[workflowID]; done {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrWorkflowAlreadyExists, workflowID)
	}

	in, err := json.Marshal(input)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	r := newRun(workflowID, in)
	e.runs[workflowID] = r
	e.mu.Unlock()

	started, _ := json.Marshal(startedPayload{WorkflowType: workflowType, Input: in})
	e.append(ctx, r, HistoryEvent{Type: EventWorkflowStarted, Name: workflowType, Payload: started})

	e.wg.Add(1)
	go e.execute(r, fn)
	log.Printf("[workflow][engine] started workflow_id=%s type=%s", workflowID, workflowType)
	return nil
}

// Resume reloads every journaled, uncompleted workflow and replays it before
// the engine accepts new traffic. Call once at startup, after Register.
func (e *Engine) Resume(ctx context.Context) error {
	ids, err := e.history.ListWorkflowIDs(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		events, err := e.history.Load(ctx, id)
		if err != nil {
			return err
		}
		if len(events) == 0 || events[0].Type != EventWorkflowStarted {
			log.Printf("[workflow][engine] skipping malformed journal workflow_id=%s", id)
			continue
		}
		if events[len(events)-1].Type == EventWorkflowCompleted {
			continue
		}

		var started startedPayload
		if err := json.Unmarshal(events[0].Payload, &started); err != nil {
			log.Printf("[workflow][engine] bad started event workflow_id=%s err=%v", id, err)
			continue
		}

		e.mu.Lock()
		fn, ok := e.workflows[started.WorkflowType]
		if !ok {
			e.mu.Unlock()
			log.Printf("[workflow][engine] no function registered workflow_id=%s type=%s", id, started.WorkflowType)
			continue
		}
		if _, exists := e.runs[id]; exists {
			e.mu.Unlock()
			continue
		}
		r := newRun(id, started.Input)
		r.replay = events[1:]
		r.replaying = len(r.replay) > 0
		r.nextSeq = events[len(events)-1].Seq + 1
		e.runs[id] = r
		e.mu.Unlock()

		e.wg.Add(1)
		go e.execute(r, fn)
		log.Printf("[workflow][engine] resumed workflow_id=%s type=%s journal_len=%d", id, started.WorkflowType, len(events))
	}
	return nil
}

func (e *Engine) execute(r *run, fn WorkflowFunc) {
	defer e.wg.Done()

	wf := &Context{engine: e, run: r}
	var out any
	err := func() (err error) {
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("workflow panic: %v", p)
			}
		}()
		out, err = fn(wf)
		return err
	}()

	var payload json.RawMessage
	if err == nil && out != nil {
		payload, _ = json.Marshal(out)
	}
	ev := HistoryEvent{Type: EventWorkflowCompleted, Payload: payload}
	if err != nil {
		ev.Failed = true
		ev.Error = err.Error()
	}
	e.append(context.Background(), r, ev)

	r.mu.Lock()
	r.done = true
	r.mu.Unlock()
	close(r.doneCh)

	e.mu.Lock()
	delete(e.runs, r.id)
	e.results[r.id] = Result{Output: payload, Err: err}
	e.mu.Unlock()

	if err != nil {
		log.Printf("[workflow][engine] finished workflow_id=%s err=%v", r.id, err)
	} else {
		log.Printf("[workflow][engine] finished workflow_id=%s", r.id)
	}
}

// Signal delivers a named payload into a live run. Signals for finished or
// unknown workflows are dropped with ErrWorkflowNotFound; the caller decides
// whether that matters.
func (e *Engine) Signal(ctx context.Context, workflowID, name string, payload any) error {
	e.mu.RLock()
	r := e.runs[workflowID]
	e.mu.RUnlock()
	if r == nil {
		return ErrWorkflowNotFound
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	r.mu.Lock()
	if r.done {
		r.mu.Unlock()
		return ErrWorkflowNotFound
	}
	seq := r.nextSeq
	r.nextSeq++
	r.pending = append(r.pending, signalEnvelope{name: name, payload: b})
	r.mu.Unlock()

	if err := e.history.Append(ctx, r.id, HistoryEvent{
		Seq: seq, Type: EventSignalReceived, Name: name, Payload: b, RecordedAt: time.Now().UTC(),
	}); err != nil {
		log.Printf("[workflow][engine] journal append failed workflow_id=%s event=signal err=%v", r.id, err)
	}
	r.notify()
	return nil
}

// Query runs a registered read-only query handler against the run's current
// state. Queries never block on workflow progress and never mutate.
func (e *Engine) Query(ctx context.Context, workflowID, name string) (any, error) {
	e.mu.RLock()
	r := e.runs[workflowID]
	e.mu.RUnlock()
	if r == nil {
		return nil, ErrWorkflowNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.queryHandlers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownQuery, name)
	}
	return h(), nil
}

// ListByPrefix returns the ids of live runs whose workflow id starts with
// prefix, sorted.
func (e *Engine) ListByPrefix(prefix string) []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var ids []string
	for id := range e.runs {
		if strings.HasPrefix(id, prefix) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// WaitForCompletion blocks until the run finishes or ctx is cancelled and
// returns the journaled result.
func (e *Engine) WaitForCompletion(ctx context.Context, workflowID string) (json.RawMessage, error) {
	e.mu.RLock()
	r := e.runs[workflowID]
	res, done := e.results[workflowID]
	e.mu.RUnlock()

	if r == nil {
		if done {
			return res.Output, res.Err
		}
		return nil, ErrWorkflowNotFound
	}

	select {
	case <-r.doneCh:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	e.mu.RLock()
	res = e.results[workflowID]
	e.mu.RUnlock()
	return res.Output, res.Err
}

// append journals an event produced by the workflow goroutine itself.
func (e *Engine) append(ctx context.Context, r *run, ev HistoryEvent) {
	r.mu.Lock()
	ev.Seq = r.nextSeq
	r.nextSeq++
	r.mu.Unlock()
	ev.RecordedAt = time.Now().UTC()
	if err := e.history.Append(ctx, r.id, ev); err != nil {
		log.Printf("[workflow][engine] journal append failed workflow_id=%s event=%s err=%v", r.id, ev.Type, err)
	}
}
