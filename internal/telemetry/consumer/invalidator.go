// Package consumer reads authorization change events from Kafka and drops cached permission
// decisions for the organizations they touch.
package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"budget-control-plane/internal/telemetry/domain"
)

// Invalidator drops cached decisions of one organization (e.g. *cache.Redis).
type Invalidator interface {
	Invalidate(ctx context.Context, orgID string) error
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Worker consumes the authorization events topic and invalidates the decision cache.
type Worker struct {
	reader messageReader
	inv    Invalidator
}

// NewWorker returns a Worker reading topic as consumer group groupID.
func NewWorker(brokers []string, topic, groupID string, inv Invalidator) *Worker {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		MaxWait:        time.Second,
		CommitInterval: time.Second,
	})
	return &Worker{reader: reader, inv: inv}
}

// Run consumes until ctx is cancelled. Read and invalidation failures are logged and skipped.
func (w *Worker) Run(ctx context.Context) error {
	for {
		msg, err := w.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Printf("consumer: kafka read error: %v", err)
			continue
		}
		if _, err := Handle(ctx, w.inv, msg.Value); err != nil {
			log.Printf("consumer: offset %d: %v", msg.Offset, err)
		}
	}
}

// Close closes the Kafka reader.
func (w *Worker) Close() error {
	return w.reader.Close()
}

// Handle decodes one event payload and invalidates its organization when the event changes what
// a member may do. It reports whether an invalidation happened.
func Handle(ctx context.Context, inv Invalidator, payload []byte) (bool, error) {
	var event domain.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return false, fmt.Errorf("decode event: %w", err)
	}
	if event.OrgID == "" || !changesDecisions(event.EventType) {
		return false, nil
	}
	if err := inv.Invalidate(ctx, event.OrgID); err != nil {
		return false, fmt.Errorf("invalidate org %s: %w", event.OrgID, err)
	}
	return true, nil
}

func changesDecisions(eventType string) bool {
	switch eventType {
	case domain.EventTypeRoleUpdated,
		domain.EventTypeRoleDeleted,
		domain.EventTypeMemberAdded,
		domain.EventTypeMemberRoleChanged,
		domain.EventTypeMemberRemoved:
		return true
	}
	return false
}
