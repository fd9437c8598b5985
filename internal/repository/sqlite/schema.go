package sqlite

import (
	"context"

	"careercast/pkg/errors"
)

// predictions.user_id carries no foreign key: deleting a user neither blocks
// nor cascades. The autoincrement id doubles as the insertion-order key for
// newest-first listings.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	username      TEXT NOT NULL UNIQUE,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS predictions (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id        INTEGER NULL,
	input_json     TEXT NOT NULL,
	predicted_role TEXT,
	confidence     REAL,
	created_at     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_predictions_user_id ON predictions(user_id);
`

func (g *Gateway) migrate(ctx context.Context) error {
	if _, err := g.db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "failed to initialize sqlite schema")
	}
	return nil
}
