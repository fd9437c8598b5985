package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careercast/internal/domain/prediction"
	"careercast/pkg/errors"
)

func newTestGateway(t *testing.T) *Gateway {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(30000)"
	db, err := sqlx.Connect("sqlite", dsn)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	g, err := NewGateway(context.Background(), db)
	require.NoError(t, err)
	return g
}

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }

func TestCreateUser(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	u, err := g.CreateUser(ctx, "alice", "alice@example.com", "hash1")
	require.NoError(t, err)
	assert.Equal(t, "1", u.ID)
	assert.Equal(t, "alice", u.Username)
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	_, err := g.CreateUser(ctx, "alice", "alice@example.com", "hash1")
	require.NoError(t, err)

	_, err = g.CreateUser(ctx, "alice", "other@example.com", "hash2")
	assert.ErrorIs(t, err, errors.ErrDuplicateKey)

	_, err = g.CreateUser(ctx, "other", "alice@example.com", "hash3")
	assert.ErrorIs(t, err, errors.ErrDuplicateKey)
}

func TestFindUserByIdentifier(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	created, err := g.CreateUser(ctx, "alice", "alice@example.com", "hash1")
	require.NoError(t, err)

	byUsername, err := g.FindUserByIdentifier(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byUsername.ID)
	assert.Equal(t, "hash1", byUsername.PasswordHash)

	byEmail, err := g.FindUserByIdentifier(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	_, err = g.FindUserByIdentifier(ctx, "ghost")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestSavePrediction_RoundTrip(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	u, err := g.CreateUser(ctx, "alice", "alice@example.com", "hash1")
	require.NoError(t, err)

	rec := &prediction.Record{
		UserID:        &u.ID,
		Input:         map[string]any{"age": float64(30), "city": "Berlin"},
		PredictedRole: "Data Scientist",
		Confidence:    f64Ptr(0.91),
	}
	require.NoError(t, g.SavePrediction(ctx, rec))
	assert.NotEmpty(t, rec.ID)
	assert.False(t, rec.CreatedAt.IsZero())

	records, err := g.ListPredictionsByUser(ctx, u.ID, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)

	got := records[0]
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, "Data Scientist", got.PredictedRole)
	require.NotNil(t, got.Confidence)
	assert.InDelta(t, 0.91, *got.Confidence, 1e-9)
	assert.Equal(t, map[string]any{"age": float64(30), "city": "Berlin"}, got.Input)
}

func TestSavePrediction_Anonymous(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	rec := &prediction.Record{
		Input:         map[string]any{"age": float64(25)},
		PredictedRole: "Model not available (dev).",
	}
	require.NoError(t, g.SavePrediction(ctx, rec))

	all, err := g.ListAllPredictionsWithUser(ctx, 10)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Nil(t, all[0].UserID)
	assert.Nil(t, all[0].Username)
	assert.Nil(t, all[0].Confidence)
}

func TestListPredictionsByUser_NewestFirst(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	u, err := g.CreateUser(ctx, "alice", "alice@example.com", "hash1")
	require.NoError(t, err)

	for _, role := range []string{"first", "second", "third"} {
		require.NoError(t, g.SavePrediction(ctx, &prediction.Record{
			UserID:        &u.ID,
			Input:         map[string]any{},
			PredictedRole: role,
		}))
	}

	records, err := g.ListPredictionsByUser(ctx, u.ID, 10)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "third", records[0].PredictedRole)
	assert.Equal(t, "second", records[1].PredictedRole)
	assert.Equal(t, "first", records[2].PredictedRole)
}

func TestListPredictionsByUser_Limit(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	u, err := g.CreateUser(ctx, "alice", "alice@example.com", "hash1")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, g.SavePrediction(ctx, &prediction.Record{
			UserID:        &u.ID,
			Input:         map[string]any{},
			PredictedRole: "role",
		}))
	}

	records, err := g.ListPredictionsByUser(ctx, u.ID, 2)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestListPredictionsByUser_UnparsableID(t *testing.T) {
	g := newTestGateway(t)

	// Cross-engine IDs that are not rowids resolve to an empty history, not
	// an error.
	records, err := g.ListPredictionsByUser(context.Background(), "66f1a2b3c4d5e6f7a8b9c0d1", 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestListAllPredictionsWithUser_UnboundedWhenLimitNonPositive(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	const total = 1001
	for i := 0; i < total; i++ {
		require.NoError(t, g.SavePrediction(ctx, &prediction.Record{
			Input:         map[string]any{},
			PredictedRole: "role",
		}))
	}

	bounded, err := g.ListAllPredictionsWithUser(ctx, 1000)
	require.NoError(t, err)
	assert.Len(t, bounded, 1000)

	all, err := g.ListAllPredictionsWithUser(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, total)
}

func TestListAllPredictionsWithUser(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	u, err := g.CreateUser(ctx, "alice", "alice@example.com", "hash1")
	require.NoError(t, err)

	require.NoError(t, g.SavePrediction(ctx, &prediction.Record{
		UserID:        &u.ID,
		Input:         map[string]any{},
		PredictedRole: "owned",
	}))
	require.NoError(t, g.SavePrediction(ctx, &prediction.Record{
		UserID:        strPtr("9999"), // dangling reference
		Input:         map[string]any{},
		PredictedRole: "orphaned",
	}))

	all, err := g.ListAllPredictionsWithUser(ctx, 10)
	require.NoError(t, err)
	require.Len(t, all, 2)

	// Newest first
	assert.Equal(t, "orphaned", all[0].PredictedRole)
	assert.Nil(t, all[0].Username)
	assert.Nil(t, all[0].Email)

	assert.Equal(t, "owned", all[1].PredictedRole)
	require.NotNil(t, all[1].Username)
	assert.Equal(t, "alice", *all[1].Username)
	require.NotNil(t, all[1].Email)
	assert.Equal(t, "alice@example.com", *all[1].Email)
}
