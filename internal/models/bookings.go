package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Booking status is driven by payment, cancellation and completion only.
// Admin approval lives on the orthogonal Approval sub-record.
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
	BookingStatusCompleted = "completed"
)

const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

const PaymentMethodRazorpay = "razorpay"

type TravelerCounts struct {
	Adults   int `bson:"adults" json:"adults" validate:"gte=1"`
	Children int `bson:"children" json:"children" validate:"gte=0"`
	Infants  int `bson:"infants" json:"infants" validate:"gte=0"`
}

func (t TravelerCounts) Total() int {
	return t.Adults + t.Children + t.Infants
}

type TravelDetails struct {
	StartDate       time.Time      `bson:"start_date" json:"start_date" validate:"required"`
	EndDate         time.Time      `bson:"end_date" json:"end_date" validate:"required"`
	Travelers       TravelerCounts `bson:"travelers" json:"travelers"`
	SpecialRequests string         `bson:"special_requests,omitempty" json:"special_requests,omitempty"`
}

// BookingPricing is the pricing snapshot computed at creation and never
// recomputed afterwards, even if the package price changes.
type BookingPricing struct {
	BasePrice   float64 `bson:"base_price" json:"base_price"`
	Discount    float64 `bson:"discount" json:"discount"`
	Taxes       float64 `bson:"taxes" json:"taxes"`
	TotalAmount float64 `bson:"total_amount" json:"total_amount"`
	Currency    string  `bson:"currency" json:"currency"`
}

type PaymentInfo struct {
	Method     string     `bson:"method" json:"method"`
	Status     string     `bson:"status" json:"status"`
	OrderID    string     `bson:"order_id,omitempty" json:"order_id,omitempty"`
	PaymentID  string     `bson:"payment_id,omitempty" json:"payment_id,omitempty"`
	PaidAt     *time.Time `bson:"paid_at,omitempty" json:"paid_at,omitempty"`
	RefundID   string     `bson:"refund_id,omitempty" json:"refund_id,omitempty"`
	RefundedAt *time.Time `bson:"refunded_at,omitempty" json:"refunded_at,omitempty"`
}

type ApprovalInfo struct {
	Status     string              `bson:"status" json:"status"`
	ActionedBy *primitive.ObjectID `bson:"actioned_by,omitempty" json:"actioned_by,omitempty"`
	ActionedAt *time.Time          `bson:"actioned_at,omitempty" json:"actioned_at,omitempty"`
	Reason     string              `bson:"reason,omitempty" json:"reason,omitempty"`
}

type CancellationInfo struct {
	CancelledBy primitive.ObjectID `bson:"cancelled_by" json:"cancelled_by"`
	CancelledAt time.Time          `bson:"cancelled_at" json:"cancelled_at"`
	Reason      string             `bson:"reason,omitempty" json:"reason,omitempty"`
}

type Booking struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Ref          string              `bson:"booking_ref" json:"booking_ref"`
	CustomerID   primitive.ObjectID  `bson:"customer_id" json:"customer_id"`
	AgentID      *primitive.ObjectID `bson:"agent_id,omitempty" json:"agent_id,omitempty"`
	PackageID    primitive.ObjectID  `bson:"package_id" json:"package_id"`
	Travel       TravelDetails       `bson:"travel" json:"travel"`
	Pricing      BookingPricing      `bson:"pricing" json:"pricing"`
	Payment      PaymentInfo         `bson:"payment" json:"payment"`
	Status       string              `bson:"status" json:"status"`
	Approval     ApprovalInfo        `bson:"approval" json:"approval"`
	Cancellation *CancellationInfo   `bson:"cancellation,omitempty" json:"cancellation,omitempty"`
	CreatedAt    time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time           `bson:"updated_at" json:"updated_at"`
}

// IsTerminal reports whether the booking can no longer change status.
func (b *Booking) IsTerminal() bool {
	return b.Status == BookingStatusCancelled || b.Status == BookingStatusCompleted
}
