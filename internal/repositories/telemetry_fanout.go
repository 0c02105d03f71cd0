package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/SAP-F-2025/learning-engine/internal/models"
)

// NamedSink labels a sink for error reporting.
type NamedSink struct {
	Name string
	Sink TelemetrySink
}

// FanOutSink forwards each batch to every sink. One sink failing does not
// stop the others; the failures are joined.
type FanOutSink struct {
	sinks []NamedSink
}

func NewFanOutSink(sinks ...NamedSink) *FanOutSink {
	return &FanOutSink{sinks: sinks}
}

func (f *FanOutSink) Len() int { return len(f.sinks) }

func (f *FanOutSink) Forward(ctx context.Context, batch *models.GradedBatch) error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.Sink.Forward(ctx, batch); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
		}
	}
	return errors.Join(errs...)
}
