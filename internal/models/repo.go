package models

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var Validate = validator.New()

const (
	UsersCollection     = "users"
	PackagesCollection  = "packages"
	BookingsCollection  = "bookings"
	ReviewsCollection   = "reviews"
	TransportCollection = "transport_options"
)

type MongodbRepo struct {
	db *mongo.Database
}

func MongodbNewRepo(db *mongo.Database) *MongodbRepo {
	return &MongodbRepo{db: db}
}

// EnsureIndexes creates the indexes the invariants rely on: the unique email
// and the unique booking reference (collision retries depend on it).
func (m *MongodbRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	_, err := m.db.Collection(UsersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"email": 1},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = m.db.Collection(BookingsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"booking_ref": 1},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = m.db.Collection(PackagesCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.M{"category": 1}},
		{Keys: bson.M{"is_approved": 1}},
		{Keys: bson.D{{Key: "rating.average", Value: -1}}},
	})
	if err != nil {
		return err
	}

	_, err = m.db.Collection(ReviewsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.M{"package_id": 1},
	})
	return err
}
