package interfaces

import "context"

// IWorkflowEngine is the durable-execution substrate contract: at-least-once
// activity execution with the configured retry policy, exactly-once-effective
// signal delivery per occurrence, replay-consistent timers.
//
// Signal returns an error for finished or unknown workflow ids; late signals
// are the caller's to drop.

type IWorkflowEngine interface {
	Start(ctx context.Context, workflowID, workflowType string, input any) error
	Signal(ctx context.Context, workflowID, name string, payload any) error
	Query(ctx context.Context, workflowID, name string) (any, error)
	ListByPrefix(prefix string) []string
}
