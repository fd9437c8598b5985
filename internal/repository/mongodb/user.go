package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"careercast/internal/domain/user"
	"careercast/pkg/errors"
)

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
}

func (d userDoc) toDomain() *user.User {
	return &user.User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
	}
}

// CreateUser inserts a new account. The unique indexes on username and email
// turn duplicates into ErrDuplicateKey.
func (g *Gateway) CreateUser(ctx context.Context, username, email, passwordHash string) (*user.User, error) {
	doc := userDoc{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	}

	res, err := g.users.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, errors.Wrap(errors.ErrDuplicateKey, err.Error())
		}
		return nil, errors.Wrap(errors.ErrStorageUnavailable, err.Error())
	}

	id, _ := res.InsertedID.(primitive.ObjectID)
	return &user.User{
		ID:           id.Hex(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	}, nil
}

// FindUserByIdentifier looks up an account by username or email.
func (g *Gateway) FindUserByIdentifier(ctx context.Context, identifier string) (*user.User, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"username": identifier},
		bson.M{"email": identifier},
	}}

	var doc userDoc
	err := g.users.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, errors.Wrap(errors.ErrNotFound, "user not found")
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrStorageUnavailable, err.Error())
	}

	return doc.toDomain(), nil
}
