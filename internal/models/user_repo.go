package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNoDocument = errors.New("document not found")

type UserRepo interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByResetToken(ctx context.Context, token string) (*User, error)
	UpdateUser(ctx context.Context, id primitive.ObjectID, fields bson.M) error
	ListUsers(ctx context.Context, role string, offset, limit int) ([]*User, int, error)
	CountUsers(ctx context.Context) (int64, error)
}

func (m *MongodbRepo) users() *mongo.Collection {
	return m.db.Collection(UsersCollection)
}

func (m *MongodbRepo) CreateUser(ctx context.Context, user *User) error {
	_, err := m.users().InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("email already registered: %w", err)
	}
	return err
}

func (m *MongodbRepo) GetUserByID(ctx context.Context, id primitive.ObjectID) (*User, error) {
	var user User
	err := m.users().FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoDocument
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (m *MongodbRepo) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := m.users().FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoDocument
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (m *MongodbRepo) GetUserByResetToken(ctx context.Context, token string) (*User, error) {
	var user User
	err := m.users().FindOne(ctx, bson.M{"reset_token": token}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoDocument
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (m *MongodbRepo) UpdateUser(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updated_at"] = time.Now()
	res, err := m.users().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNoDocument
	}
	return nil
}

func (m *MongodbRepo) ListUsers(ctx context.Context, role string, offset, limit int) ([]*User, int, error) {
	filter := bson.M{}
	if role != "" {
		filter["role"] = role
	}

	total, err := m.users().CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSkip(int64(offset)).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := m.users().Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var users []*User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, 0, err
	}

	return users, int(total), nil
}

func (m *MongodbRepo) CountUsers(ctx context.Context) (int64, error) {
	return m.users().CountDocuments(ctx, bson.M{})
}
