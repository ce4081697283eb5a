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

// PackageFilter holds the catalog listing filters. Zero values mean "not set".
type PackageFilter struct {
	Category    string
	Destination string
	MinPrice    float64
	MaxPrice    float64
	MaxDuration int
	Search      string
	SortBy      string
	SortDesc    bool
	// PendingOnly flips the listing to the admin approval queue.
	PendingOnly bool
}

type PackageRepo interface {
	CreatePackage(ctx context.Context, pkg *Package) error
	GetPackageByID(ctx context.Context, id primitive.ObjectID) (*Package, error)
	ListPackages(ctx context.Context, filter PackageFilter, offset, limit int) ([]*Package, int, error)
	UpdatePackage(ctx context.Context, id primitive.ObjectID, fields bson.M) error
	DeletePackage(ctx context.Context, id primitive.ObjectID) error
	SetPackageApproval(ctx context.Context, id primitive.ObjectID, approved bool, adminID primitive.ObjectID) error
	ListCategories(ctx context.Context) ([]string, error)
	ListDestinations(ctx context.Context) ([]string, error)
	ListFeatured(ctx context.Context, limit int) ([]*Package, error)
	ReserveSlots(ctx context.Context, id primitive.ObjectID, n int) (bool, error)
	ReleaseSlots(ctx context.Context, id primitive.ObjectID, n int) error
	UpdatePackageRating(ctx context.Context, id primitive.ObjectID, average float64, count int) error
	CountPackages(ctx context.Context) (int64, error)
}

func (m *MongodbRepo) pkgs() *mongo.Collection {
	return m.db.Collection(PackagesCollection)
}

func (m *MongodbRepo) CreatePackage(ctx context.Context, pkg *Package) error {
	res, err := m.pkgs().InsertOne(ctx, pkg)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		pkg.ID = oid
	}
	return nil
}

func (m *MongodbRepo) GetPackageByID(ctx context.Context, id primitive.ObjectID) (*Package, error) {
	var pkg Package
	err := m.pkgs().FindOne(ctx, bson.M{"_id": id}).Decode(&pkg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoDocument
	}
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}

func buildPackageQuery(filter PackageFilter) bson.M {
	query := bson.M{}
	if filter.PendingOnly {
		query["is_approved"] = false
	} else {
		query["is_approved"] = true
		query["availability.is_active"] = true
	}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Destination != "" {
		query["$or"] = []bson.M{
			{"destination.country": bson.M{"$regex": filter.Destination, "$options": "i"}},
			{"destination.city": bson.M{"$regex": filter.Destination, "$options": "i"}},
		}
	}
	price := bson.M{}
	if filter.MinPrice > 0 {
		price["$gte"] = filter.MinPrice
	}
	if filter.MaxPrice > 0 {
		price["$lte"] = filter.MaxPrice
	}
	if len(price) > 0 {
		query["pricing.base_price"] = price
	}
	if filter.MaxDuration > 0 {
		query["duration_days"] = bson.M{"$lte": filter.MaxDuration}
	}
	if filter.Search != "" {
		regex := bson.M{"$regex": filter.Search, "$options": "i"}
		search := []bson.M{
			{"name": regex},
			{"description": regex},
			{"destination.country": regex},
			{"destination.city": regex},
			{"tags": regex},
		}
		if existing, ok := query["$or"]; ok {
			query["$and"] = []bson.M{{"$or": existing}, {"$or": search}}
			delete(query, "$or")
		} else {
			query["$or"] = search
		}
	}
	return query
}

func (m *MongodbRepo) ListPackages(ctx context.Context, filter PackageFilter, offset, limit int) ([]*Package, int, error) {
	query := buildPackageQuery(filter)

	total, err := m.pkgs().CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	sortField := "created_at"
	switch filter.SortBy {
	case "price":
		sortField = "pricing.base_price"
	case "rating":
		sortField = "rating.average"
	case "duration":
		sortField = "duration_days"
	case "name":
		sortField = "name"
	}
	order := 1
	if filter.SortDesc {
		order = -1
	}

	opts := options.Find().
		SetSkip(int64(offset)).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: sortField, Value: order}})

	cursor, err := m.pkgs().Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var packages []*Package
	if err := cursor.All(ctx, &packages); err != nil {
		return nil, 0, err
	}

	return packages, int(total), nil
}

func (m *MongodbRepo) UpdatePackage(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updated_at"] = time.Now()
	res, err := m.pkgs().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNoDocument
	}
	return nil
}

func (m *MongodbRepo) DeletePackage(ctx context.Context, id primitive.ObjectID) error {
	res, err := m.pkgs().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNoDocument
	}
	return nil
}

func (m *MongodbRepo) SetPackageApproval(ctx context.Context, id primitive.ObjectID, approved bool, adminID primitive.ObjectID) error {
	now := time.Now()
	res, err := m.pkgs().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"is_approved": approved,
		"approved_by": adminID,
		"approved_at": now,
		"updated_at":  now,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNoDocument
	}
	return nil
}

func (m *MongodbRepo) ListCategories(ctx context.Context) ([]string, error) {
	return m.distinctStrings(ctx, m.pkgs(), "category", bson.M{"is_approved": true})
}

func (m *MongodbRepo) ListDestinations(ctx context.Context) ([]string, error) {
	return m.distinctStrings(ctx, m.pkgs(), "destination.city", bson.M{"is_approved": true})
}

func (m *MongodbRepo) distinctStrings(ctx context.Context, coll *mongo.Collection, field string, filter bson.M) ([]string, error) {
	raw, err := coll.Distinct(ctx, field, filter)
	if err != nil {
		return nil, err
	}
	values := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			values = append(values, s)
		}
	}
	return values, nil
}

func (m *MongodbRepo) ListFeatured(ctx context.Context, limit int) ([]*Package, error) {
	opts := options.Find().
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "rating.average", Value: -1}})

	cursor, err := m.pkgs().Find(ctx, bson.M{"is_approved": true, "availability.is_active": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var packages []*Package
	if err := cursor.All(ctx, &packages); err != nil {
		return nil, err
	}
	return packages, nil
}

// ReserveSlots atomically claims n slots if enough remain. A single guarded
// update closes the two-write race between availability check and booking
// insert: the filter proves booked+n still fits under the total at write time.
func (m *MongodbRepo) ReserveSlots(ctx context.Context, id primitive.ObjectID, n int) (bool, error) {
	res, err := m.pkgs().UpdateOne(ctx,
		bson.M{
			"_id":                    id,
			"is_approved":            true,
			"availability.is_active": true,
			"$expr": bson.M{
				"$lte": bson.A{
					bson.M{"$add": bson.A{"$availability.booked_slots", n}},
					"$availability.total_slots",
				},
			},
		},
		bson.M{
			"$inc": bson.M{"availability.booked_slots": n},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// ReleaseSlots returns n slots to the pool, clamped so booked never goes
// negative if a release is replayed.
func (m *MongodbRepo) ReleaseSlots(ctx context.Context, id primitive.ObjectID, n int) error {
	_, err := m.pkgs().UpdateOne(ctx,
		bson.M{
			"_id":   id,
			"$expr": bson.M{"$gte": bson.A{"$availability.booked_slots", n}},
		},
		bson.M{
			"$inc": bson.M{"availability.booked_slots": -n},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	return err
}

func (m *MongodbRepo) UpdatePackageRating(ctx context.Context, id primitive.ObjectID, average float64, count int) error {
	_, err := m.pkgs().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"rating.average": average,
		"rating.count":   count,
		"updated_at":     time.Now(),
	}})
	return err
}

func (m *MongodbRepo) CountPackages(ctx context.Context) (int64, error) {
	return m.pkgs().CountDocuments(ctx, bson.M{})
}
