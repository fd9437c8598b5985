package storage

import (
	"context"

	"careercast/internal/domain/prediction"
	"careercast/internal/domain/user"
)

// Gateway is the single logical persistence interface the rest of the service
// depends on. Exactly one engine implements it for the lifetime of a process:
// the document store when reachable, otherwise the single-file relational
// fallback. Both engines present identical ordering (newest first by insertion
// key) and identical null handling for anonymous predictions.
type Gateway interface {
	// CreateUser inserts a new account. Username and email are globally
	// unique; violations return errors.ErrDuplicateKey.
	CreateUser(ctx context.Context, username, email, passwordHash string) (*user.User, error)

	// FindUserByIdentifier looks an account up by username or email. At most
	// one match is possible given the uniqueness invariant; a miss returns
	// errors.ErrNotFound.
	FindUserByIdentifier(ctx context.Context, identifier string) (*user.User, error)

	// SavePrediction inserts a prediction record, assigning its ID and a
	// server-side timestamp. Engine failures are returned, not raised:
	// callers on the inference path log and continue, since losing a history
	// row is an accepted degradation.
	SavePrediction(ctx context.Context, rec *prediction.Record) error

	// ListPredictionsByUser returns one user's records, newest first,
	// bounded to limit.
	ListPredictionsByUser(ctx context.Context, userID string, limit int) ([]*prediction.Record, error)

	// ListAllPredictionsWithUser returns records across all users, newest
	// first, each enriched with the owning user's username and email when
	// the weak reference still resolves. A non-positive limit returns every
	// record; the export path depends on this.
	ListAllPredictionsWithUser(ctx context.Context, limit int) ([]*prediction.RecordWithUser, error)

	// Engine names the active engine ("mongodb" or "sqlite").
	Engine() string

	// Health checks engine connectivity.
	Health(ctx context.Context) error

	// Close releases the engine's resources.
	Close(ctx context.Context) error
}
