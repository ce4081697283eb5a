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

// ErrDuplicateRef signals a booking reference collision; the caller retries
// with a fresh reference.
var ErrDuplicateRef = errors.New("duplicate booking reference")

type BookingRepo interface {
	CreateBooking(ctx context.Context, booking *Booking) error
	GetBookingByID(ctx context.Context, id primitive.ObjectID) (*Booking, error)
	ListBookingsByCustomer(ctx context.Context, customerID primitive.ObjectID, offset, limit int) ([]*Booking, int, error)
	ListPendingApprovalBookings(ctx context.Context, offset, limit int) ([]*Booking, int, error)
	UpdateBooking(ctx context.Context, id primitive.ObjectID, fields bson.M) error
	SetPaymentOrder(ctx context.Context, id primitive.ObjectID, orderID string) (bool, error)
	ConfirmPayment(ctx context.Context, id primitive.ObjectID, paymentID string, paidAt time.Time) (bool, error)
	CountBookings(ctx context.Context) (int64, error)
	TotalRevenue(ctx context.Context) (float64, error)
}

func (m *MongodbRepo) bookings() *mongo.Collection {
	return m.db.Collection(BookingsCollection)
}

func (m *MongodbRepo) CreateBooking(ctx context.Context, booking *Booking) error {
	res, err := m.bookings().InsertOne(ctx, booking)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateRef
	}
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid
	}
	return nil
}

func (m *MongodbRepo) GetBookingByID(ctx context.Context, id primitive.ObjectID) (*Booking, error) {
	var booking Booking
	err := m.bookings().FindOne(ctx, bson.M{"_id": id}).Decode(&booking)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoDocument
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (m *MongodbRepo) listBookings(ctx context.Context, filter bson.M, offset, limit int) ([]*Booking, int, error) {
	total, err := m.bookings().CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSkip(int64(offset)).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := m.bookings().Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var bookings []*Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, 0, err
	}
	return bookings, int(total), nil
}

func (m *MongodbRepo) ListBookingsByCustomer(ctx context.Context, customerID primitive.ObjectID, offset, limit int) ([]*Booking, int, error) {
	return m.listBookings(ctx, bson.M{"customer_id": customerID}, offset, limit)
}

func (m *MongodbRepo) ListPendingApprovalBookings(ctx context.Context, offset, limit int) ([]*Booking, int, error) {
	return m.listBookings(ctx, bson.M{"approval.status": ApprovalPending}, offset, limit)
}

func (m *MongodbRepo) UpdateBooking(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updated_at"] = time.Now()
	res, err := m.bookings().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNoDocument
	}
	return nil
}

// SetPaymentOrder attaches a gateway order to a booking that has not been
// paid yet. Returns false when the booking is missing or already past
// pending.
func (m *MongodbRepo) SetPaymentOrder(ctx context.Context, id primitive.ObjectID, orderID string) (bool, error) {
	res, err := m.bookings().UpdateOne(ctx,
		bson.M{"_id": id, "payment.status": PaymentStatusPending},
		bson.M{"$set": bson.M{"payment.order_id": orderID, "updated_at": time.Now()}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

// ConfirmPayment flips a pending payment to completed and the booking to
// confirmed in a single conditional update, so concurrent verifications of
// the same booking cannot both succeed.
func (m *MongodbRepo) ConfirmPayment(ctx context.Context, id primitive.ObjectID, paymentID string, paidAt time.Time) (bool, error) {
	res, err := m.bookings().UpdateOne(ctx,
		bson.M{"_id": id, "payment.status": PaymentStatusPending},
		bson.M{"$set": bson.M{
			"payment.status":     PaymentStatusCompleted,
			"payment.payment_id": paymentID,
			"payment.paid_at":    paidAt,
			"status":             BookingStatusConfirmed,
			"updated_at":         time.Now(),
		}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

func (m *MongodbRepo) CountBookings(ctx context.Context) (int64, error) {
	return m.bookings().CountDocuments(ctx, bson.M{})
}

// TotalRevenue sums the pricing snapshot totals of paid bookings.
func (m *MongodbRepo) TotalRevenue(ctx context.Context) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"payment.status": PaymentStatusCompleted}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$pricing.total_amount"},
		}}},
	}

	cursor, err := m.bookings().Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}
