package history

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"careercast/internal/domain/prediction"
	"careercast/internal/storage"
	"careercast/pkg/errors"
	"careercast/pkg/logger"
)

const (
	// DefaultUserLimit bounds per-user history listings
	DefaultUserLimit = 200
	// MaxUserLimit is the hard cap for per-user history listings
	MaxUserLimit = 500
	// DefaultAuditLimit bounds the cross-user audit listing
	DefaultAuditLimit = 1000
)

// Service provides the history and audit views over the persistence gateway.
type Service struct {
	store storage.Gateway
	log   *logger.Logger
}

// NewService creates a new history service
func NewService(store storage.Gateway) *Service {
	return &Service{
		store: store,
		log:   logger.Get().With("service", "history"),
	}
}

// ForUser returns one user's prediction history, newest first.
func (s *Service) ForUser(ctx context.Context, userID string, limit int) ([]*prediction.Record, error) {
	if userID == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "user id required")
	}
	if limit <= 0 {
		limit = DefaultUserLimit
	}
	if limit > MaxUserLimit {
		limit = MaxUserLimit
	}

	records, err := s.store.ListPredictionsByUser(ctx, userID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list predictions")
	}
	return records, nil
}

// All returns the cross-user audit view, newest first, each record enriched
// with the owning user's identity when resolvable.
func (s *Service) All(ctx context.Context, limit int) ([]*prediction.RecordWithUser, error) {
	if limit <= 0 || limit > DefaultAuditLimit {
		limit = DefaultAuditLimit
	}

	records, err := s.store.ListAllPredictionsWithUser(ctx, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list all predictions")
	}
	return records, nil
}

// ExportCSV streams the full audit view as a flat CSV dump, newest first.
// The export carries every record; only the interactive listings are bounded.
// Unresolved user references export as empty cells, not dropped rows.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) error {
	records, err := s.store.ListAllPredictionsWithUser(ctx, 0)
	if err != nil {
		return errors.Wrap(err, "failed to export predictions")
	}

	writer := csv.NewWriter(w)
	header := []string{"id", "user_id", "username", "email", "predicted_role", "confidence", "created_at", "input_json"}
	if err := writer.Write(header); err != nil {
		return errors.Wrap(err, "failed to write csv header")
	}

	for _, rec := range records {
		if err := writer.Write(csvRow(rec)); err != nil {
			return errors.Wrap(err, "failed to write csv row")
		}
	}

	writer.Flush()
	return writer.Error()
}

func csvRow(rec *prediction.RecordWithUser) []string {
	inputJSON, err := json.Marshal(rec.Input)
	if err != nil {
		inputJSON = []byte("{}")
	}

	confidence := ""
	if rec.Confidence != nil {
		confidence = strconv.FormatFloat(*rec.Confidence, 'f', -1, 64)
	}

	return []string{
		rec.ID,
		deref(rec.UserID),
		deref(rec.Username),
		deref(rec.Email),
		rec.PredictedRole,
		confidence,
		rec.CreatedAt.UTC().Format(time.RFC3339),
		string(inputJSON),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
