package services

import (
	"context"
	"errors"
	"time"

	"github.com/packhorizon/server/internal/helpers"
	"github.com/packhorizon/server/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CreateReviewInput struct {
	BookingID  string                 `json:"booking_id" validate:"required"`
	Rating     int                    `json:"rating" validate:"required,min=1,max=5"`
	Title      string                 `json:"title"`
	Comment    string                 `json:"comment"`
	Categories models.CategoryRatings `json:"categories"`
	Images     []string               `json:"images"`
}

type ReviewService struct {
	reviewRepo  models.ReviewRepo
	bookingRepo models.BookingRepo
	packageRepo models.PackageRepo
}

func NewReviewService(reviewRepo models.ReviewRepo, bookingRepo models.BookingRepo, packageRepo models.PackageRepo) *ReviewService {
	return &ReviewService{
		reviewRepo:  reviewRepo,
		bookingRepo: bookingRepo,
		packageRepo: packageRepo,
	}
}

// CreateReview accepts feedback only from the booking's customer and only
// once the booking is completed.
func (rs *ReviewService) CreateReview(ctx context.Context, customer *models.User, in CreateReviewInput) (*models.Review, error) {
	if err := models.Validate.Struct(in); err != nil {
		return nil, helpers.ErrBadRequest("invalid review data: " + err.Error())
	}

	bookingID, err := primitive.ObjectIDFromHex(in.BookingID)
	if err != nil {
		return nil, helpers.ErrBadRequest("invalid booking id")
	}

	booking, err := rs.bookingRepo.GetBookingByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, models.ErrNoDocument) {
			return nil, helpers.ErrNotFound("booking not found")
		}
		return nil, err
	}

	if booking.CustomerID != customer.ID {
		return nil, helpers.ErrForbidden("you can only review your own bookings")
	}
	if booking.Status != models.BookingStatusCompleted {
		return nil, helpers.ErrBadRequest("reviews can only be added to completed bookings")
	}

	now := time.Now()
	review := &models.Review{
		ID:         primitive.NewObjectID(),
		UserID:     customer.ID,
		PackageID:  booking.PackageID,
		BookingID:  &bookingID,
		Rating:     in.Rating,
		Title:      in.Title,
		Comment:    in.Comment,
		Categories: in.Categories,
		Images:     in.Images,
		// Tied to a real completed booking, so verified from the start.
		IsVerified: true,
		IsApproved: false,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := rs.reviewRepo.CreateReview(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

func (rs *ReviewService) ListPackageReviews(ctx context.Context, packageID primitive.ObjectID, offset, limit int) ([]*models.Review, int, error) {
	if offset < 0 || limit <= 0 {
		return nil, 0, helpers.ErrBadRequest("invalid offset or limit")
	}
	return rs.reviewRepo.ListReviewsByPackage(ctx, packageID, true, offset, limit)
}

// Moderate approves or rejects a review; approval refreshes the package's
// rating aggregate from approved reviews.
func (rs *ReviewService) Moderate(ctx context.Context, id primitive.ObjectID, approve bool) (*models.Review, error) {
	review, err := rs.reviewRepo.GetReviewByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNoDocument) {
			return nil, helpers.ErrNotFound("review not found")
		}
		return nil, err
	}

	if review.IsApproved == approve {
		if approve {
			return nil, helpers.ErrBadRequest("review is already approved")
		}
		return nil, helpers.ErrBadRequest("review is already rejected")
	}

	if err := rs.reviewRepo.SetReviewModeration(ctx, id, approve); err != nil {
		return nil, err
	}

	average, count, err := rs.reviewRepo.ApprovedRatingStats(ctx, review.PackageID)
	if err == nil {
		_ = rs.packageRepo.UpdatePackageRating(ctx, review.PackageID, average, count)
	}

	review.IsApproved = approve
	return review, nil
}

// VoteHelpful records one helpful vote per user; re-voting overwrites the
// prior value.
func (rs *ReviewService) VoteHelpful(ctx context.Context, id primitive.ObjectID, userID primitive.ObjectID, helpful bool) error {
	vote := models.HelpfulVote{
		UserID:  userID,
		Helpful: helpful,
		VotedAt: time.Now(),
	}
	err := rs.reviewRepo.SetHelpfulVote(ctx, id, vote)
	if errors.Is(err, models.ErrNoDocument) {
		return helpers.ErrNotFound("review not found")
	}
	return err
}

// Report records one report per user; repeated reports from the same user
// are ignored (first write wins).
func (rs *ReviewService) Report(ctx context.Context, id primitive.ObjectID, userID primitive.ObjectID, reason string) error {
	if _, err := rs.reviewRepo.GetReviewByID(ctx, id); err != nil {
		if errors.Is(err, models.ErrNoDocument) {
			return helpers.ErrNotFound("review not found")
		}
		return err
	}

	report := models.ReviewReport{
		UserID:     userID,
		Reason:     reason,
		ReportedAt: time.Now(),
	}
	_, err := rs.reviewRepo.AddReport(ctx, id, report)
	return err
}
