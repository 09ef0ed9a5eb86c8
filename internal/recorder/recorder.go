// Package recorder keeps a history of scan reports.
package recorder

import (
	"context"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-scanner/internal/types"
)

// Hit is one pattern firing for a symbol in a recorded cycle.
type Hit struct {
	CycleID     string            `json:"cycle_id"`
	Frequency   types.Frequency   `json:"frequency"`
	GeneratedAt time.Time         `json:"generated_at"`
	Pattern     types.PatternName `json:"pattern"`
}

// Recorder persists scan reports.
type Recorder interface {
	// Save stores a report. Saving a cycle id twice fails.
	Save(ctx context.Context, report types.Report) error
	// Latest returns the most recently generated report, if any.
	Latest(ctx context.Context) (optional.Option[types.Report], error)
	// SymbolHistory returns the hits recorded for symbol, newest first. A limit of zero
	// or less returns every hit.
	SymbolHistory(ctx context.Context, symbol string, limit int) ([]Hit, error)
	Close() error
}

// NoopRecorder discards every report. It is used when no recorder path is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) Save(_ context.Context, _ types.Report) error { return nil }

func (n *NoopRecorder) Latest(_ context.Context) (optional.Option[types.Report], error) {
	return optional.None[types.Report](), nil
}

func (n *NoopRecorder) SymbolHistory(_ context.Context, _ string, _ int) ([]Hit, error) {
	return []Hit{}, nil
}

func (n *NoopRecorder) Close() error { return nil }
