package eventstream

import "context"

// Publisher publishes invocation events to an event stream backend.
type Publisher interface {
	PublishRecord(ctx context.Context, event *RecordedEvent) error
	Close() error
}
