package domain

import "context"

// Notifier reports the outcome of a cycle to people watching the run.
type Notifier interface {
	Notify(ctx context.Context, result *CycleResult, cycleErr error) error
}
