package services

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/packhorizon/server/internal/helpers"
	"github.com/packhorizon/server/internal/metrics"
	"github.com/packhorizon/server/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaxRate is the flat tax applied to every booking's base price.
const TaxRate = 0.18

// booking ref collisions resolve against the unique index; a handful of
// retries is plenty for a 4-digit suffix at realistic volumes.
const maxRefRetries = 3

type CreateBookingInput struct {
	PackageID string               `json:"package_id" validate:"required"`
	Travel    models.TravelDetails `json:"travel"`
}

type BookingService struct {
	bookingRepo models.BookingRepo
	packageRepo models.PackageRepo
	gateway     PaymentGateway
	gwSecret    string
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

func NewBookingService(bookingRepo models.BookingRepo, packageRepo models.PackageRepo, gateway PaymentGateway, gwSecret string, m *metrics.Metrics, logger *slog.Logger) *BookingService {
	if logger == nil {
		logger = slog.Default()
	}
	return &BookingService{
		bookingRepo: bookingRepo,
		packageRepo: packageRepo,
		gateway:     gateway,
		gwSecret:    gwSecret,
		metrics:     m,
		logger:      logger,
	}
}

// ComputeQuote builds the pricing snapshot for a booking:
// base = per-traveler price (seasonal rate resolved at travel start) ×
// total travelers, taxes = 18% of base, no discount engine.
func ComputeQuote(pkg *models.Package, travel models.TravelDetails) models.BookingPricing {
	travelers := travel.Travelers.Total()
	base := pkg.PriceOn(travel.StartDate) * float64(travelers)
	taxes := base * TaxRate
	return models.BookingPricing{
		BasePrice:   base,
		Discount:    0,
		Taxes:       taxes,
		TotalAmount: base - 0 + taxes,
		Currency:    pkg.Pricing.Currency,
	}
}

func (bs *BookingService) CreateBooking(ctx context.Context, customer *models.User, in CreateBookingInput) (*models.Booking, error) {
	if err := models.Validate.Struct(in); err != nil {
		return nil, helpers.ErrBadRequest("invalid booking data: " + err.Error())
	}
	if err := models.Validate.Struct(in.Travel.Travelers); err != nil {
		return nil, helpers.ErrBadRequest("at least one adult traveler is required")
	}
	if !in.Travel.EndDate.After(in.Travel.StartDate) {
		return nil, helpers.ErrBadRequest("travel end date must be after start date")
	}

	packageID, err := primitive.ObjectIDFromHex(in.PackageID)
	if err != nil {
		return nil, helpers.ErrBadRequest("invalid package id")
	}

	pkg, err := bs.packageRepo.GetPackageByID(ctx, packageID)
	if err != nil {
		if errors.Is(err, models.ErrNoDocument) {
			return nil, helpers.ErrNotFound("package not found")
		}
		return nil, err
	}

	if !pkg.IsBookable() {
		return nil, helpers.ErrBadRequest("package is not available for booking")
	}

	travelers := in.Travel.Travelers.Total()
	reserved, err := bs.packageRepo.ReserveSlots(ctx, packageID, travelers)
	if err != nil {
		return nil, err
	}
	if !reserved {
		return nil, helpers.ErrBadRequest("package is not available for booking")
	}

	now := time.Now()
	booking := &models.Booking{
		ID:         primitive.NewObjectID(),
		CustomerID: customer.ID,
		PackageID:  packageID,
		Travel:     in.Travel,
		Pricing:    ComputeQuote(pkg, in.Travel),
		Payment: models.PaymentInfo{
			Method: models.PaymentMethodRazorpay,
			Status: models.PaymentStatusPending,
		},
		Status:    models.BookingStatusPending,
		Approval:  models.ApprovalInfo{Status: models.ApprovalPending},
		CreatedAt: now,
		UpdatedAt: now,
	}

	for attempt := 0; attempt < maxRefRetries; attempt++ {
		booking.Ref = helpers.NewBookingRef(now)
		err = bs.bookingRepo.CreateBooking(ctx, booking)
		if err == nil {
			bs.metrics.BookingCreated()
			return booking, nil
		}
		if !errors.Is(err, models.ErrDuplicateRef) {
			break
		}
	}

	// Creation failed after the slots were claimed; hand them back. A failed
	// release leaks inventory, so it must at least be visible.
	if relErr := bs.packageRepo.ReleaseSlots(ctx, packageID, travelers); relErr != nil {
		bs.logger.Error("failed to release reserved slots after booking creation failure",
			"package_id", packageID.Hex(), "travelers", travelers, "error", relErr)
	}
	return nil, helpers.ErrInternal("failed to create booking")
}

func (bs *BookingService) GetBooking(ctx context.Context, id primitive.ObjectID, actor *models.User) (*models.Booking, error) {
	booking, err := bs.bookingRepo.GetBookingByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNoDocument) {
			return nil, helpers.ErrNotFound("booking not found")
		}
		return nil, err
	}

	if !actor.HasRole(models.RoleAgent, models.RoleAdmin) && booking.CustomerID != actor.ID {
		return nil, helpers.ErrForbidden("you do not have access to this booking")
	}

	return booking, nil
}

func (bs *BookingService) ListMyBookings(ctx context.Context, customerID primitive.ObjectID, offset, limit int) ([]*models.Booking, int, error) {
	if offset < 0 || limit <= 0 {
		return nil, 0, helpers.ErrBadRequest("invalid offset or limit")
	}
	return bs.bookingRepo.ListBookingsByCustomer(ctx, customerID, offset, limit)
}

func (bs *BookingService) ListPendingApproval(ctx context.Context, offset, limit int) ([]*models.Booking, int, error) {
	if offset < 0 || limit <= 0 {
		return nil, 0, helpers.ErrBadRequest("invalid offset or limit")
	}
	return bs.bookingRepo.ListPendingApprovalBookings(ctx, offset, limit)
}

// PaymentOrder is returned to the client to complete the payment.
type PaymentOrder struct {
	OrderID     string  `json:"order_id"`
	AmountMinor int64   `json:"amount"`
	Currency    string  `json:"currency"`
	BookingRef  string  `json:"booking_ref"`
	Total       float64 `json:"total_amount"`
}

func (bs *BookingService) CreatePaymentOrder(ctx context.Context, id primitive.ObjectID, actor *models.User) (*PaymentOrder, error) {
	booking, err := bs.GetBooking(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	if booking.Payment.Status == models.PaymentStatusCompleted {
		return nil, helpers.ErrBadRequest("booking is already paid")
	}
	if booking.Status == models.BookingStatusCancelled {
		return nil, helpers.ErrBadRequest("booking is cancelled")
	}

	amountMinor := int64(math.Round(booking.Pricing.TotalAmount * 100))
	orderID, err := bs.gateway.CreateOrder(ctx, amountMinor, booking.Pricing.Currency, booking.Ref)
	if err != nil {
		// No partial state mutation on gateway failure.
		return nil, helpers.ErrInternal("payment gateway order creation failed")
	}

	ok, err := bs.bookingRepo.SetPaymentOrder(ctx, id, orderID)
	if err != nil {
		return nil, err
	}
	if !ok {
		// The booking left pending between the read above and this write.
		return nil, helpers.ErrBadRequest("booking is already paid")
	}

	return &PaymentOrder{
		OrderID:     orderID,
		AmountMinor: amountMinor,
		Currency:    booking.Pricing.Currency,
		BookingRef:  booking.Ref,
		Total:       booking.Pricing.TotalAmount,
	}, nil
}

// VerifyPayment recomputes the gateway signature server-side; client-supplied
// status claims are never trusted. On match the payment is marked completed
// and the booking confirmed.
func (bs *BookingService) VerifyPayment(ctx context.Context, id primitive.ObjectID, actor *models.User, orderID, paymentID, signature string) (*models.Booking, error) {
	booking, err := bs.GetBooking(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	if booking.Payment.Status == models.PaymentStatusCompleted {
		return nil, helpers.ErrBadRequest("payment already verified")
	}
	if booking.Payment.OrderID == "" || booking.Payment.OrderID != orderID {
		bs.metrics.PaymentFailed()
		return nil, helpers.ErrBadRequest("unknown payment order")
	}

	if !VerifyPaymentSignature(orderID, paymentID, signature, bs.gwSecret) {
		bs.metrics.PaymentFailed()
		return nil, helpers.ErrBadRequest("invalid payment signature")
	}

	// The transition is conditional on the payment still being pending, so
	// two concurrent verifications cannot both complete it.
	now := time.Now()
	ok, err := bs.bookingRepo.ConfirmPayment(ctx, id, paymentID, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, helpers.ErrBadRequest("payment already verified")
	}

	bs.metrics.PaymentVerified()
	booking.Payment.Status = models.PaymentStatusCompleted
	booking.Payment.PaymentID = paymentID
	booking.Payment.PaidAt = &now
	booking.Status = models.BookingStatusConfirmed
	return booking, nil
}

// SetApproval records the admin decision on the approval axis; it does not
// touch the payment-driven status.
func (bs *BookingService) SetApproval(ctx context.Context, id primitive.ObjectID, admin *models.User, approve bool, reason string) (*models.Booking, error) {
	booking, err := bs.bookingRepo.GetBookingByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNoDocument) {
			return nil, helpers.ErrNotFound("booking not found")
		}
		return nil, err
	}

	target := models.ApprovalApproved
	if !approve {
		target = models.ApprovalRejected
	}
	if booking.Approval.Status == target {
		return nil, helpers.ErrBadRequest("booking is already " + target)
	}

	now := time.Now()
	err = bs.bookingRepo.UpdateBooking(ctx, id, bson.M{
		"approval.status":      target,
		"approval.actioned_by": admin.ID,
		"approval.actioned_at": now,
		"approval.reason":      reason,
	})
	if err != nil {
		return nil, err
	}

	booking.Approval = models.ApprovalInfo{Status: target, ActionedBy: &admin.ID, ActionedAt: &now, Reason: reason}
	return booking, nil
}

// CancelBooking moves any non-terminal booking to cancelled and releases the
// reserved slots. Customers may only cancel their own bookings.
func (bs *BookingService) CancelBooking(ctx context.Context, id primitive.ObjectID, actor *models.User, reason string) (*models.Booking, error) {
	booking, err := bs.bookingRepo.GetBookingByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNoDocument) {
			return nil, helpers.ErrNotFound("booking not found")
		}
		return nil, err
	}

	if !actor.IsAdmin() && booking.CustomerID != actor.ID {
		return nil, helpers.ErrForbidden("you can only cancel your own bookings")
	}
	if booking.Status == models.BookingStatusCancelled {
		return nil, helpers.ErrBadRequest("booking is already cancelled")
	}
	if booking.Status == models.BookingStatusCompleted {
		return nil, helpers.ErrBadRequest("completed bookings cannot be cancelled")
	}

	now := time.Now()
	cancellation := &models.CancellationInfo{
		CancelledBy: actor.ID,
		CancelledAt: now,
		Reason:      reason,
	}
	err = bs.bookingRepo.UpdateBooking(ctx, id, bson.M{
		"status":       models.BookingStatusCancelled,
		"cancellation": cancellation,
	})
	if err != nil {
		return nil, err
	}

	if relErr := bs.packageRepo.ReleaseSlots(ctx, booking.PackageID, booking.Travel.Travelers.Total()); relErr != nil {
		bs.logger.Error("failed to release slots for cancelled booking",
			"booking_ref", booking.Ref, "package_id", booking.PackageID.Hex(), "error", relErr)
	}

	booking.Status = models.BookingStatusCancelled
	booking.Cancellation = cancellation
	return booking, nil
}

// CompleteBooking is the terminal transition that unlocks reviews.
func (bs *BookingService) CompleteBooking(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	booking, err := bs.bookingRepo.GetBookingByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNoDocument) {
			return nil, helpers.ErrNotFound("booking not found")
		}
		return nil, err
	}

	if booking.IsTerminal() {
		return nil, helpers.ErrBadRequest("booking is already " + booking.Status)
	}

	if err := bs.bookingRepo.UpdateBooking(ctx, id, bson.M{"status": models.BookingStatusCompleted}); err != nil {
		return nil, err
	}

	booking.Status = models.BookingStatusCompleted
	return booking, nil
}
