package queue

import (
	"context"
	"fmt"
	"strings"
)

// Publisher publishes lifecycle events to a queue.
type Publisher interface {
	Publish(ctx context.Context, queue string, event LifecycleEvent) error
	Close() error
}

const (
	// CaseEventsQueue carries case lifecycle events.
	CaseEventsQueue = "case.lifecycle"
	// NoticeEventsQueue carries notice lifecycle events.
	NoticeEventsQueue = "notice.lifecycle"
)

var lifecycleQueues = []string{CaseEventsQueue, NoticeEventsQueue}

// EventQueue returns the queue an event type is routed to.
func EventQueue(eventType EventType) string {
	if strings.HasPrefix(eventType.String(), "case.") {
		return CaseEventsQueue
	}
	return NoticeEventsQueue
}

// DLQName returns the dead-letter queue name, e.g. dlq.case.lifecycle.
func DLQName(queue string) string {
	return fmt.Sprintf("dlq.%s", queue)
}

// QueueNames returns all lifecycle queues (2 total).
func QueueNames() []string {
	queues := make([]string, len(lifecycleQueues))
	copy(queues, lifecycleQueues)
	return queues
}

// DLQNames returns all dead-letter queues (2 total).
func DLQNames() []string {
	queues := make([]string, 0, len(lifecycleQueues))
	for _, queue := range lifecycleQueues {
		queues = append(queues, DLQName(queue))
	}
	return queues
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, LifecycleEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
