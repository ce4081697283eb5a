package services

import (
	"context"
	"errors"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/packhorizon/server/internal/helpers"
	"github.com/packhorizon/server/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PackageService struct {
	packageRepo models.PackageRepo
	cld         *cloudinary.Cloudinary
}

func NewPackageService(packageRepo models.PackageRepo, cld *cloudinary.Cloudinary) *PackageService {
	return &PackageService{
		packageRepo: packageRepo,
		cld:         cld,
	}
}

func (ps *PackageService) ListPackages(ctx context.Context, filter models.PackageFilter, offset, limit int) ([]*models.Package, int, error) {
	if offset < 0 || limit <= 0 {
		return nil, 0, helpers.ErrBadRequest("invalid offset or limit")
	}
	return ps.packageRepo.ListPackages(ctx, filter, offset, limit)
}

// GetPackage has no approval filter: the detail view stays reachable by id
// even while pending.
func (ps *PackageService) GetPackage(ctx context.Context, id primitive.ObjectID) (*models.Package, error) {
	pkg, err := ps.packageRepo.GetPackageByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNoDocument) {
			return nil, helpers.ErrNotFound("package not found")
		}
		return nil, err
	}
	return pkg, nil
}

func (ps *PackageService) CreatePackage(ctx context.Context, pkg *models.Package, creator *models.User) (*models.Package, error) {
	if err := models.Validate.Struct(pkg); err != nil {
		return nil, helpers.ErrBadRequest("invalid package data: " + err.Error())
	}
	if pkg.Availability.TotalSlots <= 0 {
		return nil, helpers.ErrBadRequest("total_slots must be greater than zero")
	}

	now := time.Now()
	pkg.ID = primitive.NewObjectID()
	pkg.Slug = helpers.GenerateSlug(pkg.Name, pkg.Destination.City)
	pkg.CreatedBy = creator.ID
	pkg.CreatedAt = now
	pkg.UpdatedAt = now
	pkg.Availability.BookedSlots = 0
	pkg.Availability.IsActive = true
	pkg.Rating = models.RatingAggregate{}
	if pkg.Pricing.Currency == "" {
		pkg.Pricing.Currency = "INR"
	}

	// Admin-created packages skip the approval queue.
	if creator.IsAdmin() {
		pkg.IsApproved = true
		pkg.ApprovedBy = &creator.ID
		pkg.ApprovedAt = &now
	} else {
		pkg.IsApproved = false
		pkg.ApprovedBy = nil
		pkg.ApprovedAt = nil
	}

	if len(pkg.Images) > 0 && ps.cld != nil {
		urls, publicIDs, err := helpers.UploadImages(ctx, ps.cld, pkg.Images, helpers.PackageFolder)
		if err != nil {
			return nil, helpers.ErrInternal("failed to upload package images")
		}
		pkg.Images = urls

		if err := ps.packageRepo.CreatePackage(ctx, pkg); err != nil {
			helpers.DeleteImages(ctx, ps.cld, publicIDs)
			return nil, err
		}
		return pkg, nil
	}

	if err := ps.packageRepo.CreatePackage(ctx, pkg); err != nil {
		return nil, err
	}
	return pkg, nil
}

// UpdatePackageInput is the explicit update surface. Approval state, slot
// accounting, ratings and ownership are not part of it, so no request body
// can reach those fields.
type UpdatePackageInput struct {
	Name           *string                `json:"name"`
	Description    *string                `json:"description"`
	Destination    *models.Destination    `json:"destination"`
	DurationDays   *int                   `json:"duration_days" validate:"omitempty,gt=0"`
	DurationNights *int                   `json:"duration_nights" validate:"omitempty,gte=0"`
	Pricing        *models.PackagePricing `json:"pricing"`
	Inclusions     []string               `json:"inclusions"`
	Exclusions     []string               `json:"exclusions"`
	Itinerary      []models.ItineraryDay  `json:"itinerary"`
	Images         []string               `json:"images"`
	Category       *string                `json:"category"`
	Tags           []string               `json:"tags"`
	TotalSlots     *int                   `json:"total_slots" validate:"omitempty,gt=0"`
	IsActive       *bool                  `json:"is_active"`
}

// UpdatePackage lets an agent touch only packages they created; admins may
// update any. The $set document is built field by field from the input, never
// from the request body.
func (ps *PackageService) UpdatePackage(ctx context.Context, id primitive.ObjectID, in UpdatePackageInput, actor *models.User) (*models.Package, error) {
	if err := models.Validate.Struct(in); err != nil {
		return nil, helpers.ErrBadRequest("invalid package data: " + err.Error())
	}

	pkg, err := ps.GetPackage(ctx, id)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin() && pkg.CreatedBy != actor.ID {
		return nil, helpers.ErrForbidden("you can only update packages you created")
	}

	fields := bson.M{}
	if in.Name != nil {
		city := pkg.Destination.City
		if in.Destination != nil {
			city = in.Destination.City
		}
		fields["name"] = *in.Name
		fields["slug"] = helpers.GenerateSlug(*in.Name, city)
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Destination != nil {
		fields["destination"] = *in.Destination
	}
	if in.DurationDays != nil {
		fields["duration_days"] = *in.DurationDays
	}
	if in.DurationNights != nil {
		fields["duration_nights"] = *in.DurationNights
	}
	if in.Pricing != nil {
		fields["pricing"] = *in.Pricing
	}
	if in.Inclusions != nil {
		fields["inclusions"] = in.Inclusions
	}
	if in.Exclusions != nil {
		fields["exclusions"] = in.Exclusions
	}
	if in.Itinerary != nil {
		fields["itinerary"] = in.Itinerary
	}
	if in.Category != nil {
		fields["category"] = *in.Category
	}
	if in.Tags != nil {
		fields["tags"] = in.Tags
	}
	if in.TotalSlots != nil {
		// Capacity can grow or shrink, but never below what is already sold.
		if *in.TotalSlots < pkg.Availability.BookedSlots {
			return nil, helpers.ErrBadRequest("total_slots cannot drop below booked slots")
		}
		fields["availability.total_slots"] = *in.TotalSlots
	}
	if in.IsActive != nil {
		fields["availability.is_active"] = *in.IsActive
	}

	var uploaded []string
	if len(in.Images) > 0 {
		images := in.Images
		if ps.cld != nil {
			urls, publicIDs, err := helpers.UploadImages(ctx, ps.cld, in.Images, helpers.PackageFolder)
			if err != nil {
				return nil, helpers.ErrInternal("failed to upload package images")
			}
			images = urls
			uploaded = publicIDs
		}
		fields["images"] = images
	}

	if len(fields) == 0 {
		return nil, helpers.ErrBadRequest("no fields to update")
	}

	if err := ps.packageRepo.UpdatePackage(ctx, id, fields); err != nil {
		if len(uploaded) > 0 && ps.cld != nil {
			helpers.DeleteImages(ctx, ps.cld, uploaded)
		}
		return nil, err
	}
	return ps.GetPackage(ctx, id)
}

func (ps *PackageService) DeletePackage(ctx context.Context, id primitive.ObjectID) error {
	err := ps.packageRepo.DeletePackage(ctx, id)
	if errors.Is(err, models.ErrNoDocument) {
		return helpers.ErrNotFound("package not found")
	}
	return err
}

// SetApproval approves or rejects a package. Re-applying the current state
// fails with a bad request and causes no state change.
func (ps *PackageService) SetApproval(ctx context.Context, id primitive.ObjectID, approve bool, admin *models.User) (*models.Package, error) {
	pkg, err := ps.GetPackage(ctx, id)
	if err != nil {
		return nil, err
	}

	if pkg.IsApproved == approve {
		if approve {
			return nil, helpers.ErrBadRequest("package is already approved")
		}
		return nil, helpers.ErrBadRequest("package is already rejected")
	}

	if err := ps.packageRepo.SetPackageApproval(ctx, id, approve, admin.ID); err != nil {
		return nil, err
	}
	return ps.GetPackage(ctx, id)
}

func (ps *PackageService) ListPendingApproval(ctx context.Context, offset, limit int) ([]*models.Package, int, error) {
	if offset < 0 || limit <= 0 {
		return nil, 0, helpers.ErrBadRequest("invalid offset or limit")
	}
	return ps.packageRepo.ListPackages(ctx, models.PackageFilter{PendingOnly: true}, offset, limit)
}

func (ps *PackageService) ListCategories(ctx context.Context) ([]string, error) {
	return ps.packageRepo.ListCategories(ctx)
}

func (ps *PackageService) ListDestinations(ctx context.Context) ([]string, error) {
	return ps.packageRepo.ListDestinations(ctx)
}

func (ps *PackageService) ListFeatured(ctx context.Context, limit int) ([]*models.Package, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	return ps.packageRepo.ListFeatured(ctx, limit)
}
