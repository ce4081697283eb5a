package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/packhorizon/server/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repo fakes backing the service tests. Updates only apply the
// bson field paths the services actually use.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeUserRepo struct {
	users map[primitive.ObjectID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[primitive.ObjectID]*models.User{}}
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, user *models.User) error {
	for _, u := range f.users {
		if u.Email == user.Email {
			return fmt.Errorf("email already registered")
		}
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, models.ErrNoDocument
}

func (f *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, models.ErrNoDocument
}

func (f *fakeUserRepo) GetUserByResetToken(ctx context.Context, token string) (*models.User, error) {
	for _, u := range f.users {
		if u.ResetToken == token && token != "" {
			cp := *u
			return &cp, nil
		}
	}
	return nil, models.ErrNoDocument
}

func (f *fakeUserRepo) UpdateUser(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	u, ok := f.users[id]
	if !ok {
		return models.ErrNoDocument
	}
	for k, v := range fields {
		switch k {
		case "password":
			u.Password = v.(string)
		case "is_active":
			u.IsActive = v.(bool)
		case "role":
			u.Role = v.(string)
		case "reset_token":
			u.ResetToken = v.(string)
		case "reset_token_expiry":
			if t, ok := v.(time.Time); ok {
				u.ResetTokenExpiry = &t
			} else {
				u.ResetTokenExpiry = nil
			}
		case "last_login_at":
			t := v.(time.Time)
			u.LastLoginAt = &t
		case "first_name":
			u.FirstName = v.(string)
		case "last_name":
			u.LastName = v.(string)
		case "phone":
			u.Phone = v.(string)
		case "avatar_url":
			u.AvatarURL = v.(string)
		}
	}
	return nil
}

func (f *fakeUserRepo) ListUsers(ctx context.Context, role string, offset, limit int) ([]*models.User, int, error) {
	var out []*models.User
	for _, u := range f.users {
		if role == "" || u.Role == role {
			out = append(out, u)
		}
	}
	return out, len(out), nil
}

func (f *fakeUserRepo) CountUsers(ctx context.Context) (int64, error) {
	return int64(len(f.users)), nil
}

type fakePackageRepo struct {
	packages map[primitive.ObjectID]*models.Package
	// releaseErr makes ReleaseSlots fail.
	releaseErr error
}

func newFakePackageRepo() *fakePackageRepo {
	return &fakePackageRepo{packages: map[primitive.ObjectID]*models.Package{}}
}

func (f *fakePackageRepo) CreatePackage(ctx context.Context, pkg *models.Package) error {
	cp := *pkg
	f.packages[pkg.ID] = &cp
	return nil
}

func (f *fakePackageRepo) GetPackageByID(ctx context.Context, id primitive.ObjectID) (*models.Package, error) {
	if p, ok := f.packages[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, models.ErrNoDocument
}

func (f *fakePackageRepo) ListPackages(ctx context.Context, filter models.PackageFilter, offset, limit int) ([]*models.Package, int, error) {
	var out []*models.Package
	for _, p := range f.packages {
		if filter.PendingOnly != !p.IsApproved {
			continue
		}
		out = append(out, p)
	}
	return out, len(out), nil
}

func (f *fakePackageRepo) UpdatePackage(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	p, ok := f.packages[id]
	if !ok {
		return models.ErrNoDocument
	}
	if v, ok := fields["name"]; ok {
		p.Name = v.(string)
	}
	if v, ok := fields["description"]; ok {
		p.Description = v.(string)
	}
	if v, ok := fields["availability.total_slots"]; ok {
		p.Availability.TotalSlots = v.(int)
	}
	if v, ok := fields["availability.is_active"]; ok {
		p.Availability.IsActive = v.(bool)
	}
	return nil
}

func (f *fakePackageRepo) DeletePackage(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := f.packages[id]; !ok {
		return models.ErrNoDocument
	}
	delete(f.packages, id)
	return nil
}

func (f *fakePackageRepo) SetPackageApproval(ctx context.Context, id primitive.ObjectID, approved bool, adminID primitive.ObjectID) error {
	p, ok := f.packages[id]
	if !ok {
		return models.ErrNoDocument
	}
	p.IsApproved = approved
	p.ApprovedBy = &adminID
	return nil
}

func (f *fakePackageRepo) ListCategories(ctx context.Context) ([]string, error) {
	return nil, nil
}

func (f *fakePackageRepo) ListDestinations(ctx context.Context) ([]string, error) {
	return nil, nil
}

func (f *fakePackageRepo) ListFeatured(ctx context.Context, limit int) ([]*models.Package, error) {
	return nil, nil
}

func (f *fakePackageRepo) ReserveSlots(ctx context.Context, id primitive.ObjectID, n int) (bool, error) {
	p, ok := f.packages[id]
	if !ok {
		return false, nil
	}
	if !p.IsApproved || !p.Availability.IsActive {
		return false, nil
	}
	if p.Availability.BookedSlots+n > p.Availability.TotalSlots {
		return false, nil
	}
	p.Availability.BookedSlots += n
	return true, nil
}

func (f *fakePackageRepo) ReleaseSlots(ctx context.Context, id primitive.ObjectID, n int) error {
	if f.releaseErr != nil {
		return f.releaseErr
	}
	p, ok := f.packages[id]
	if !ok {
		return models.ErrNoDocument
	}
	if p.Availability.BookedSlots >= n {
		p.Availability.BookedSlots -= n
	}
	return nil
}

func (f *fakePackageRepo) UpdatePackageRating(ctx context.Context, id primitive.ObjectID, average float64, count int) error {
	p, ok := f.packages[id]
	if !ok {
		return models.ErrNoDocument
	}
	p.Rating = models.RatingAggregate{Average: average, Count: count}
	return nil
}

func (f *fakePackageRepo) CountPackages(ctx context.Context) (int64, error) {
	return int64(len(f.packages)), nil
}

type fakeBookingRepo struct {
	bookings map[primitive.ObjectID]*models.Booking
	refs     map[string]bool
	// forceDuplicateRef makes the next N creates collide.
	forceDuplicateRef int
	// afterGet runs after a read returns its copy, letting tests interleave
	// a concurrent write between read and update.
	afterGet func()
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{
		bookings: map[primitive.ObjectID]*models.Booking{},
		refs:     map[string]bool{},
	}
}

func (f *fakeBookingRepo) CreateBooking(ctx context.Context, booking *models.Booking) error {
	if f.forceDuplicateRef > 0 {
		f.forceDuplicateRef--
		return models.ErrDuplicateRef
	}
	if f.refs[booking.Ref] {
		return models.ErrDuplicateRef
	}
	f.refs[booking.Ref] = true
	cp := *booking
	f.bookings[booking.ID] = &cp
	return nil
}

func (f *fakeBookingRepo) GetBookingByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	if b, ok := f.bookings[id]; ok {
		cp := *b
		if f.afterGet != nil {
			f.afterGet()
		}
		return &cp, nil
	}
	return nil, models.ErrNoDocument
}

func (f *fakeBookingRepo) ListBookingsByCustomer(ctx context.Context, customerID primitive.ObjectID, offset, limit int) ([]*models.Booking, int, error) {
	var out []*models.Booking
	for _, b := range f.bookings {
		if b.CustomerID == customerID {
			out = append(out, b)
		}
	}
	return out, len(out), nil
}

func (f *fakeBookingRepo) ListPendingApprovalBookings(ctx context.Context, offset, limit int) ([]*models.Booking, int, error) {
	var out []*models.Booking
	for _, b := range f.bookings {
		if b.Approval.Status == models.ApprovalPending {
			out = append(out, b)
		}
	}
	return out, len(out), nil
}

func (f *fakeBookingRepo) UpdateBooking(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	b, ok := f.bookings[id]
	if !ok {
		return models.ErrNoDocument
	}
	for k, v := range fields {
		switch k {
		case "status":
			b.Status = v.(string)
		case "payment.status":
			b.Payment.Status = v.(string)
		case "payment.order_id":
			b.Payment.OrderID = v.(string)
		case "payment.payment_id":
			b.Payment.PaymentID = v.(string)
		case "approval.status":
			b.Approval.Status = v.(string)
		case "approval.reason":
			b.Approval.Reason = v.(string)
		case "cancellation":
			b.Cancellation = v.(*models.CancellationInfo)
		}
	}
	return nil
}

func (f *fakeBookingRepo) SetPaymentOrder(ctx context.Context, id primitive.ObjectID, orderID string) (bool, error) {
	b, ok := f.bookings[id]
	if !ok || b.Payment.Status != models.PaymentStatusPending {
		return false, nil
	}
	b.Payment.OrderID = orderID
	return true, nil
}

func (f *fakeBookingRepo) ConfirmPayment(ctx context.Context, id primitive.ObjectID, paymentID string, paidAt time.Time) (bool, error) {
	b, ok := f.bookings[id]
	if !ok || b.Payment.Status != models.PaymentStatusPending {
		return false, nil
	}
	t := paidAt
	b.Payment.Status = models.PaymentStatusCompleted
	b.Payment.PaymentID = paymentID
	b.Payment.PaidAt = &t
	b.Status = models.BookingStatusConfirmed
	return true, nil
}

func (f *fakeBookingRepo) CountBookings(ctx context.Context) (int64, error) {
	return int64(len(f.bookings)), nil
}

func (f *fakeBookingRepo) TotalRevenue(ctx context.Context) (float64, error) {
	var total float64
	for _, b := range f.bookings {
		if b.Payment.Status == models.PaymentStatusCompleted {
			total += b.Pricing.TotalAmount
		}
	}
	return total, nil
}

type fakeReviewRepo struct {
	reviews map[primitive.ObjectID]*models.Review
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{reviews: map[primitive.ObjectID]*models.Review{}}
}

func (f *fakeReviewRepo) CreateReview(ctx context.Context, review *models.Review) error {
	cp := *review
	f.reviews[review.ID] = &cp
	return nil
}

func (f *fakeReviewRepo) GetReviewByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	if r, ok := f.reviews[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, models.ErrNoDocument
}

func (f *fakeReviewRepo) ListReviewsByPackage(ctx context.Context, packageID primitive.ObjectID, approvedOnly bool, offset, limit int) ([]*models.Review, int, error) {
	var out []*models.Review
	for _, r := range f.reviews {
		if r.PackageID != packageID {
			continue
		}
		if approvedOnly && !r.IsApproved {
			continue
		}
		out = append(out, r)
	}
	return out, len(out), nil
}

func (f *fakeReviewRepo) SetReviewModeration(ctx context.Context, id primitive.ObjectID, approved bool) error {
	r, ok := f.reviews[id]
	if !ok {
		return models.ErrNoDocument
	}
	r.IsApproved = approved
	return nil
}

func (f *fakeReviewRepo) SetHelpfulVote(ctx context.Context, id primitive.ObjectID, vote models.HelpfulVote) error {
	r, ok := f.reviews[id]
	if !ok {
		return models.ErrNoDocument
	}
	for i, v := range r.Votes {
		if v.UserID == vote.UserID {
			r.Votes[i] = vote
			return nil
		}
	}
	r.Votes = append(r.Votes, vote)
	return nil
}

func (f *fakeReviewRepo) AddReport(ctx context.Context, id primitive.ObjectID, report models.ReviewReport) (bool, error) {
	r, ok := f.reviews[id]
	if !ok {
		return false, models.ErrNoDocument
	}
	for _, existing := range r.Reports {
		if existing.UserID == report.UserID {
			return false, nil
		}
	}
	r.Reports = append(r.Reports, report)
	return true, nil
}

func (f *fakeReviewRepo) ApprovedRatingStats(ctx context.Context, packageID primitive.ObjectID) (float64, int, error) {
	sum, count := 0, 0
	for _, r := range f.reviews {
		if r.PackageID == packageID && r.IsApproved {
			sum += r.Rating
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(count), count, nil
}

func (f *fakeReviewRepo) CountReviews(ctx context.Context) (int64, error) {
	return int64(len(f.reviews)), nil
}

type fakeTransportRepo struct {
	options map[primitive.ObjectID]*models.TransportOption
}

func newFakeTransportRepo() *fakeTransportRepo {
	return &fakeTransportRepo{options: map[primitive.ObjectID]*models.TransportOption{}}
}

func (f *fakeTransportRepo) CreateTransportOption(ctx context.Context, opt *models.TransportOption) error {
	cp := *opt
	f.options[opt.ID] = &cp
	return nil
}

func (f *fakeTransportRepo) GetTransportOptionByID(ctx context.Context, id primitive.ObjectID) (*models.TransportOption, error) {
	if o, ok := f.options[id]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, models.ErrNoDocument
}

func (f *fakeTransportRepo) ListTransportOptions(ctx context.Context, filter models.TransportFilter, offset, limit int) ([]*models.TransportOption, int, error) {
	var out []*models.TransportOption
	for _, o := range f.options {
		if !o.IsActive {
			continue
		}
		out = append(out, o)
	}
	return out, len(out), nil
}

func (f *fakeTransportRepo) UpdateTransportOption(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	o, ok := f.options[id]
	if !ok {
		return models.ErrNoDocument
	}
	for k, v := range fields {
		switch k {
		case "name":
			o.Name = v.(string)
		case "operator":
			o.Operator = v.(string)
		case "schedules":
			o.Schedules = v.([]models.TransportSchedule)
		case "is_active":
			o.IsActive = v.(bool)
		}
	}
	return nil
}

// fakeGateway returns canned order ids and records the last request.
type fakeGateway struct {
	orderID     string
	lastAmount  int64
	lastReceipt string
	fail        bool
}

func (g *fakeGateway) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (string, error) {
	if g.fail {
		return "", fmt.Errorf("gateway down")
	}
	g.lastAmount = amountMinor
	g.lastReceipt = receipt
	if g.orderID == "" {
		return "order_test123", nil
	}
	return g.orderID, nil
}
