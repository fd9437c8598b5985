package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"careercast/internal/domain/prediction"
	"careercast/pkg/errors"
)

type predictionDoc struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty"`
	UserID        *primitive.ObjectID `bson:"user_id"`
	Input         map[string]any      `bson:"input_json"`
	PredictedRole string              `bson:"predicted_role"`
	Confidence    *float64            `bson:"confidence"`
	CreatedAt     time.Time           `bson:"created_at"`
}

func (d predictionDoc) toDomain() *prediction.Record {
	rec := &prediction.Record{
		ID:            d.ID.Hex(),
		Input:         d.Input,
		PredictedRole: d.PredictedRole,
		Confidence:    d.Confidence,
		CreatedAt:     d.CreatedAt,
	}
	if d.UserID != nil {
		uid := d.UserID.Hex()
		rec.UserID = &uid
	}
	return rec
}

// SavePrediction inserts a record with a server-assigned timestamp, writing
// the generated id and timestamp back into rec.
func (g *Gateway) SavePrediction(ctx context.Context, rec *prediction.Record) error {
	doc := predictionDoc{
		Input:         rec.Input,
		PredictedRole: rec.PredictedRole,
		Confidence:    rec.Confidence,
		CreatedAt:     time.Now().UTC(),
	}
	if rec.UserID != nil {
		if oid, err := primitive.ObjectIDFromHex(*rec.UserID); err == nil {
			doc.UserID = &oid
		}
	}

	res, err := g.predictions.InsertOne(ctx, doc)
	if err != nil {
		return errors.Wrap(errors.ErrStorageUnavailable, err.Error())
	}

	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		rec.ID = id.Hex()
	}
	rec.CreatedAt = doc.CreatedAt
	return nil
}

// ListPredictionsByUser returns one user's records, newest first. ObjectIDs
// are monotonic per insertion, so sorting on _id gives insertion order without
// trusting wall clocks.
func (g *Gateway) ListPredictionsByUser(ctx context.Context, userID string, limit int) ([]*prediction.Record, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		// Identifier from a different engine's run; nothing can match
		return []*prediction.Record{}, nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := g.predictions.Find(ctx, bson.M{"user_id": oid}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrStorageUnavailable, err.Error())
	}
	defer cursor.Close(ctx)

	var docs []predictionDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(errors.ErrStorageUnavailable, err.Error())
	}

	records := make([]*prediction.Record, 0, len(docs))
	for _, d := range docs {
		records = append(records, d.toDomain())
	}
	return records, nil
}

type predictionWithUserDoc struct {
	predictionDoc `bson:",inline"`
	User          []userDoc `bson:"user"`
}

// ListAllPredictionsWithUser returns records across all users, newest first,
// each enriched via $lookup. Dangling user references keep the record with
// null username/email. A non-positive limit returns every record.
func (g *Gateway) ListAllPredictionsWithUser(ctx context.Context, limit int) ([]*prediction.RecordWithUser, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$sort", Value: bson.D{{Key: "_id", Value: -1}}}},
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: int64(limit)}})
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "localField", Value: "user_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "user"},
		}}},
	)

	cursor, err := g.predictions.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.Wrap(errors.ErrStorageUnavailable, err.Error())
	}
	defer cursor.Close(ctx)

	var docs []predictionWithUserDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(errors.ErrStorageUnavailable, err.Error())
	}

	records := make([]*prediction.RecordWithUser, 0, len(docs))
	for _, d := range docs {
		rec := &prediction.RecordWithUser{Record: *d.predictionDoc.toDomain()}
		if len(d.User) > 0 {
			username := d.User[0].Username
			email := d.User[0].Email
			rec.Username = &username
			rec.Email = &email
		}
		records = append(records, rec)
	}
	return records, nil
}
