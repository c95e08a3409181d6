package telemetry

import (
	"context"
	"errors"

	"budget-control-plane/internal/telemetry/domain"
)

// EventEmitter emits telemetry events (e.g. to OTel Logs or Kafka). Best-effort; callers log and ignore errors.
type EventEmitter interface {
	Emit(ctx context.Context, event *domain.Event) error
}

// Fanout returns an emitter that sends each event to every non-nil emitter and joins their errors.
func Fanout(emitters ...EventEmitter) EventEmitter {
	var out fanout
	for _, e := range emitters {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

type fanout []EventEmitter

func (f fanout) Emit(ctx context.Context, event *domain.Event) error {
	var errs []error
	for _, e := range f {
		if err := e.Emit(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
