package sqlite

import (
	"context"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"careercast/internal/adapters/config"
	"careercast/pkg/errors"
)

// Client wraps sqlx.DB for the single-file relational fallback engine
type Client struct {
	db *sqlx.DB
}

// NewClient opens (and creates, if needed) the SQLite database file.
// WAL mode and a busy timeout keep concurrent request handlers from tripping
// over the single writer.
func NewClient(cfg config.SQLiteConfig) (*Client, error) {
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "failed to create sqlite directory")
		}
	}

	dsn := "file:" + cfg.Path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(30000)&_pragma=foreign_keys(0)"
	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open sqlite database")
	}

	// database/sql pooling over a single sqlite file: one writer at a time
	db.SetMaxOpenConns(1)

	return &Client{db: db}, nil
}

// DB returns the underlying sqlx.DB instance
func (c *Client) DB() *sqlx.DB {
	return c.db
}

// Health checks database connectivity
func (c *Client) Health(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close closes the database
func (c *Client) Close() error {
	return c.db.Close()
}
