package port

import "context"

// MessageBus hands a committed job id to the async executor. The transport
// owns delivery semantics; the orchestrator only needs the enqueue side.
type MessageBus interface {
	EnqueueProcess(ctx context.Context, jobID string) error
}
