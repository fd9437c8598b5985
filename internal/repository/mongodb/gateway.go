package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"careercast/internal/adapters/mongodb"
	"careercast/pkg/errors"
)

// EngineName identifies the document engine in logs and metrics.
const EngineName = "mongodb"

// Gateway implements storage.Gateway over MongoDB collections.
type Gateway struct {
	client      *mongodb.Client
	users       *mongo.Collection
	predictions *mongo.Collection
}

// NewGateway creates the document gateway and ensures the unique indexes that
// back the username/email invariant.
func NewGateway(ctx context.Context, client *mongodb.Client) (*Gateway, error) {
	db := client.Database()
	g := &Gateway{
		client:      client,
		users:       db.Collection("users"),
		predictions: db.Collection("predictions"),
	}
	if err := g.ensureIndexes(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to ensure mongo indexes")
	}
	return g, nil
}

func (g *Gateway) ensureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	_, err := g.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
	})
	if err != nil {
		return err
	}

	_, err = g.predictions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}},
	})
	return err
}

// Engine names the active engine.
func (g *Gateway) Engine() string {
	return EngineName
}

// Health checks connectivity.
func (g *Gateway) Health(ctx context.Context) error {
	return g.client.Health(ctx)
}

// Close disconnects from the cluster.
func (g *Gateway) Close(ctx context.Context) error {
	return g.client.Close(ctx)
}
