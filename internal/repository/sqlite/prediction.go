package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"time"

	"careercast/internal/domain/prediction"
	"careercast/pkg/errors"
)

type predictionRow struct {
	ID            int64           `db:"id"`
	UserID        sql.NullInt64   `db:"user_id"`
	InputJSON     string          `db:"input_json"`
	PredictedRole sql.NullString  `db:"predicted_role"`
	Confidence    sql.NullFloat64 `db:"confidence"`
	CreatedAt     string          `db:"created_at"`
}

func (r predictionRow) toDomain() *prediction.Record {
	rec := &prediction.Record{
		ID:            strconv.FormatInt(r.ID, 10),
		PredictedRole: r.PredictedRole.String,
		Input:         parseInput(r.InputJSON),
		CreatedAt:     parseCreatedAt(r.CreatedAt),
	}
	if r.UserID.Valid {
		uid := strconv.FormatInt(r.UserID.Int64, 10)
		rec.UserID = &uid
	}
	if r.Confidence.Valid {
		c := r.Confidence.Float64
		rec.Confidence = &c
	}
	return rec
}

// SavePrediction inserts a record with a server-assigned timestamp, writing
// the generated id and timestamp back into rec.
func (g *Gateway) SavePrediction(ctx context.Context, rec *prediction.Record) error {
	inputJSON, err := json.Marshal(rec.Input)
	if err != nil {
		return errors.Wrap(err, "failed to marshal prediction input")
	}

	createdAt := time.Now().UTC()

	var userID any
	if rec.UserID != nil {
		if id, err := strconv.ParseInt(*rec.UserID, 10, 64); err == nil {
			userID = id
		}
	}

	query := `
		INSERT INTO predictions (user_id, input_json, predicted_role, confidence, created_at)
		VALUES (?, ?, ?, ?, ?)`

	res, err := g.db.ExecContext(ctx, query,
		userID, string(inputJSON), rec.PredictedRole, rec.Confidence, createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return errors.Wrap(errors.ErrStorageUnavailable, err.Error())
	}

	id, err := res.LastInsertId()
	if err != nil {
		return errors.Wrap(errors.ErrStorageUnavailable, err.Error())
	}

	rec.ID = strconv.FormatInt(id, 10)
	rec.CreatedAt = createdAt
	return nil
}

// ListPredictionsByUser returns one user's records, newest first. The
// autoincrement id orders by insertion, immune to wall-clock skew.
func (g *Gateway) ListPredictionsByUser(ctx context.Context, userID string, limit int) ([]*prediction.Record, error) {
	uid, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		// Identifier from a different engine's run; nothing can match
		return []*prediction.Record{}, nil
	}

	var rows []predictionRow

	query := `
		SELECT id, user_id, input_json, predicted_role, confidence, created_at
		FROM predictions
		WHERE user_id = ?
		ORDER BY id DESC
		LIMIT ?`

	if err := g.db.SelectContext(ctx, &rows, query, uid, limit); err != nil {
		return nil, errors.Wrap(errors.ErrStorageUnavailable, err.Error())
	}

	records := make([]*prediction.Record, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.toDomain())
	}
	return records, nil
}

type predictionWithUserRow struct {
	predictionRow
	Username sql.NullString `db:"username"`
	Email    sql.NullString `db:"email"`
}

// ListAllPredictionsWithUser returns records across all users, newest first,
// LEFT JOINed with the owning user. Dangling user references keep the record
// with null username/email. A non-positive limit returns every record.
func (g *Gateway) ListAllPredictionsWithUser(ctx context.Context, limit int) ([]*prediction.RecordWithUser, error) {
	var rows []predictionWithUserRow

	query := `
		SELECT p.id, p.user_id, p.input_json, p.predicted_role, p.confidence, p.created_at,
		       u.username, u.email
		FROM predictions p
		LEFT JOIN users u ON u.id = p.user_id
		ORDER BY p.id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	if err := g.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(errors.ErrStorageUnavailable, err.Error())
	}

	records := make([]*prediction.RecordWithUser, 0, len(rows))
	for _, r := range rows {
		rec := &prediction.RecordWithUser{Record: *r.predictionRow.toDomain()}
		if r.Username.Valid {
			name := r.Username.String
			rec.Username = &name
		}
		if r.Email.Valid {
			email := r.Email.String
			rec.Email = &email
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseInput(raw string) map[string]any {
	var input map[string]any
	if err := json.Unmarshal([]byte(raw), &input); err != nil {
		return map[string]any{"raw": raw}
	}
	return input
}

func parseCreatedAt(raw string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
