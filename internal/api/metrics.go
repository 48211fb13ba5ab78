package api

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/Garsondee/Turn-Tactics/internal/api"

// metrics uses the global OTel meter, a no-op unless a provider is installed.
type metrics struct {
	turns   metric.Int64Counter
	battles metric.Int64Counter
}

func newMetrics() (*metrics, error) {
	m := otel.Meter(instrumentationName)
	var (
		out metrics
		err error
	)
	out.turns, err = m.Int64Counter(
		"tactics.turns",
		metric.WithDescription("Total battle turns run"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating turns counter: %w", err)
	}
	out.battles, err = m.Int64Counter(
		"tactics.battles",
		metric.WithDescription("Battles created and finished"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating battles counter: %w", err)
	}
	return &out, nil
}

func (m *metrics) turnsRun(ctx context.Context, n int, mode string) {
	if n <= 0 {
		return
	}
	m.turns.Add(ctx, int64(n), metric.WithAttributes(attribute.String("mode", mode)))
}

func (m *metrics) battleCreated(ctx context.Context, scenario string) {
	m.battles.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event", "created"),
		attribute.String("scenario", scenario),
	))
}

func (m *metrics) battleFinished(ctx context.Context, scenario, outcome string) {
	m.battles.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event", "finished"),
		attribute.String("scenario", scenario),
		attribute.String("outcome", outcome),
	))
}
