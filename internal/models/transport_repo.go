package models

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TransportFilter struct {
	Type        string
	Origin      string
	Destination string
}

type TransportRepo interface {
	CreateTransportOption(ctx context.Context, opt *TransportOption) error
	GetTransportOptionByID(ctx context.Context, id primitive.ObjectID) (*TransportOption, error)
	ListTransportOptions(ctx context.Context, filter TransportFilter, offset, limit int) ([]*TransportOption, int, error)
	UpdateTransportOption(ctx context.Context, id primitive.ObjectID, fields bson.M) error
}

func (m *MongodbRepo) transport() *mongo.Collection {
	return m.db.Collection(TransportCollection)
}

func (m *MongodbRepo) CreateTransportOption(ctx context.Context, opt *TransportOption) error {
	res, err := m.transport().InsertOne(ctx, opt)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		opt.ID = oid
	}
	return nil
}

func (m *MongodbRepo) GetTransportOptionByID(ctx context.Context, id primitive.ObjectID) (*TransportOption, error) {
	var opt TransportOption
	err := m.transport().FindOne(ctx, bson.M{"_id": id}).Decode(&opt)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoDocument
	}
	if err != nil {
		return nil, err
	}
	return &opt, nil
}

func (m *MongodbRepo) ListTransportOptions(ctx context.Context, filter TransportFilter, offset, limit int) ([]*TransportOption, int, error) {
	query := bson.M{"is_active": true}
	if filter.Type != "" {
		query["type"] = filter.Type
	}
	if filter.Origin != "" {
		query["routes.origin"] = bson.M{"$regex": filter.Origin, "$options": "i"}
	}
	if filter.Destination != "" {
		query["routes.destination"] = bson.M{"$regex": filter.Destination, "$options": "i"}
	}

	total, err := m.transport().CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSkip(int64(offset)).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := m.transport().Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var results []*TransportOption
	if err := cursor.All(ctx, &results); err != nil {
		return nil, 0, err
	}
	return results, int(total), nil
}

func (m *MongodbRepo) UpdateTransportOption(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updated_at"] = time.Now()
	res, err := m.transport().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNoDocument
	}
	return nil
}
