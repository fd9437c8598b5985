package storage

import (
	"context"
	"time"

	"careercast/internal/domain/prediction"
	"careercast/internal/domain/user"
	"careercast/internal/metrics"
)

// Instrumented decorates a Gateway with Prometheus metrics per logical
// operation. Semantics are untouched; errors pass through unchanged.
type Instrumented struct {
	next Gateway
}

// NewInstrumented wraps a gateway with metrics recording.
func NewInstrumented(next Gateway) *Instrumented {
	return &Instrumented{next: next}
}

func (g *Instrumented) record(op string, start time.Time, err error) {
	metrics.RecordStorageOp(g.next.Engine(), op, time.Since(start), err)
}

func (g *Instrumented) CreateUser(ctx context.Context, username, email, passwordHash string) (*user.User, error) {
	start := time.Now()
	u, err := g.next.CreateUser(ctx, username, email, passwordHash)
	g.record("create_user", start, err)
	return u, err
}

func (g *Instrumented) FindUserByIdentifier(ctx context.Context, identifier string) (*user.User, error) {
	start := time.Now()
	u, err := g.next.FindUserByIdentifier(ctx, identifier)
	g.record("find_user", start, err)
	return u, err
}

func (g *Instrumented) SavePrediction(ctx context.Context, rec *prediction.Record) error {
	start := time.Now()
	err := g.next.SavePrediction(ctx, rec)
	g.record("save_prediction", start, err)
	return err
}

func (g *Instrumented) ListPredictionsByUser(ctx context.Context, userID string, limit int) ([]*prediction.Record, error) {
	start := time.Now()
	records, err := g.next.ListPredictionsByUser(ctx, userID, limit)
	g.record("list_by_user", start, err)
	return records, err
}

func (g *Instrumented) ListAllPredictionsWithUser(ctx context.Context, limit int) ([]*prediction.RecordWithUser, error) {
	start := time.Now()
	records, err := g.next.ListAllPredictionsWithUser(ctx, limit)
	g.record("list_all", start, err)
	return records, err
}

func (g *Instrumented) Engine() string {
	return g.next.Engine()
}

func (g *Instrumented) Health(ctx context.Context) error {
	return g.next.Health(ctx)
}

func (g *Instrumented) Close(ctx context.Context) error {
	return g.next.Close(ctx)
}
