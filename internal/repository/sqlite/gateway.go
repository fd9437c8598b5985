package sqlite

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// EngineName identifies the relational fallback engine in logs and metrics.
const EngineName = "sqlite"

// Gateway implements storage.Gateway over a single-file SQLite database.
// It is the fallback engine used when the document store is unreachable or
// unconfigured.
type Gateway struct {
	db *sqlx.DB
}

// NewGateway creates the relational gateway and ensures the schema exists.
func NewGateway(ctx context.Context, db *sqlx.DB) (*Gateway, error) {
	g := &Gateway{db: db}
	if err := g.migrate(ctx); err != nil {
		return nil, err
	}
	return g, nil
}

// Engine names the active engine.
func (g *Gateway) Engine() string {
	return EngineName
}

// Health checks database connectivity.
func (g *Gateway) Health(ctx context.Context) error {
	return g.db.PingContext(ctx)
}

// Close closes the database.
func (g *Gateway) Close(ctx context.Context) error {
	return g.db.Close()
}
