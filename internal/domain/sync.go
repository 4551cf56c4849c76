package domain

import (
	"context"
	"time"
)

// CycleResult describes what one synchronization cycle did.
type CycleResult struct {
	Checkpoint Checkpoint
	Listed     []string
	Deleted    int
	Files      []string
	Uploaded   int
	Failed     []string
	PruneErr   error
	StartedAt  time.Time
	Duration   time.Duration
}

// Executor runs one cycle.
type Executor interface {
	Execute(ctx context.Context) (*CycleResult, error)
}
