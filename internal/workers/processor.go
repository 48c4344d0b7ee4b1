package workers

import (
	"context"

	"github.com/medtrack/medtrack/internal/queue"
)

// JobProcessor handles a single job of a registered type.
type JobProcessor func(ctx context.Context, job *queue.Job) error

type processorEntry struct {
	proc JobProcessor
}
