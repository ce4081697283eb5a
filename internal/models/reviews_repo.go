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

type ReviewRepo interface {
	CreateReview(ctx context.Context, review *Review) error
	GetReviewByID(ctx context.Context, id primitive.ObjectID) (*Review, error)
	ListReviewsByPackage(ctx context.Context, packageID primitive.ObjectID, approvedOnly bool, offset, limit int) ([]*Review, int, error)
	SetReviewModeration(ctx context.Context, id primitive.ObjectID, approved bool) error
	SetHelpfulVote(ctx context.Context, id primitive.ObjectID, vote HelpfulVote) error
	AddReport(ctx context.Context, id primitive.ObjectID, report ReviewReport) (bool, error)
	ApprovedRatingStats(ctx context.Context, packageID primitive.ObjectID) (float64, int, error)
	CountReviews(ctx context.Context) (int64, error)
}

func (m *MongodbRepo) reviews() *mongo.Collection {
	return m.db.Collection(ReviewsCollection)
}

func (m *MongodbRepo) CreateReview(ctx context.Context, review *Review) error {
	res, err := m.reviews().InsertOne(ctx, review)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		review.ID = oid
	}
	return nil
}

func (m *MongodbRepo) GetReviewByID(ctx context.Context, id primitive.ObjectID) (*Review, error) {
	var review Review
	err := m.reviews().FindOne(ctx, bson.M{"_id": id}).Decode(&review)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoDocument
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (m *MongodbRepo) ListReviewsByPackage(ctx context.Context, packageID primitive.ObjectID, approvedOnly bool, offset, limit int) ([]*Review, int, error) {
	filter := bson.M{"package_id": packageID}
	if approvedOnly {
		filter["is_approved"] = true
	}

	total, err := m.reviews().CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSkip(int64(offset)).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := m.reviews().Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var reviews []*Review
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, 0, err
	}
	return reviews, int(total), nil
}

func (m *MongodbRepo) SetReviewModeration(ctx context.Context, id primitive.ObjectID, approved bool) error {
	res, err := m.reviews().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"is_approved": approved,
		"updated_at":  time.Now(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNoDocument
	}
	return nil
}

// SetHelpfulVote records one vote per user with last-write-wins semantics:
// an existing vote by the same user is overwritten in place, otherwise the
// vote is appended.
func (m *MongodbRepo) SetHelpfulVote(ctx context.Context, id primitive.ObjectID, vote HelpfulVote) error {
	res, err := m.reviews().UpdateOne(ctx,
		bson.M{"_id": id, "votes.user_id": vote.UserID},
		bson.M{"$set": bson.M{"votes.$": vote, "updated_at": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}

	res, err = m.reviews().UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$push": bson.M{"votes": vote}, "$set": bson.M{"updated_at": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNoDocument
	}
	return nil
}

// AddReport appends a report unless the user has already reported this
// review (first write wins). Returns whether the report was recorded.
func (m *MongodbRepo) AddReport(ctx context.Context, id primitive.ObjectID, report ReviewReport) (bool, error) {
	res, err := m.reviews().UpdateOne(ctx,
		bson.M{"_id": id, "reports.user_id": bson.M{"$ne": report.UserID}},
		bson.M{"$push": bson.M{"reports": report}, "$set": bson.M{"updated_at": time.Now()}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// ApprovedRatingStats computes the package rating aggregate from approved
// reviews.
func (m *MongodbRepo) ApprovedRatingStats(ctx context.Context, packageID primitive.ObjectID) (float64, int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"package_id": packageID, "is_approved": true}}},
		{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"average": bson.M{"$avg": "$rating"},
			"count":   bson.M{"$sum": 1},
		}}},
	}

	cursor, err := m.reviews().Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Average float64 `bson:"average"`
		Count   int     `bson:"count"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, 0, err
	}
	if len(results) == 0 {
		return 0, 0, nil
	}
	return results[0].Average, results[0].Count, nil
}

func (m *MongodbRepo) CountReviews(ctx context.Context) (int64, error) {
	return m.reviews().CountDocuments(ctx, bson.M{})
}
