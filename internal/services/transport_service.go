package services

import (
	"context"
	"errors"
	"time"

	"github.com/packhorizon/server/internal/helpers"
	"github.com/packhorizon/server/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TransportService struct {
	transportRepo models.TransportRepo
}

func NewTransportService(transportRepo models.TransportRepo) *TransportService {
	return &TransportService{transportRepo: transportRepo}
}

func (ts *TransportService) ListTransportOptions(ctx context.Context, filter models.TransportFilter, offset, limit int) ([]*models.TransportOption, int, error) {
	if offset < 0 || limit <= 0 {
		return nil, 0, helpers.ErrBadRequest("invalid offset or limit")
	}
	return ts.transportRepo.ListTransportOptions(ctx, filter, offset, limit)
}

func (ts *TransportService) GetTransportOption(ctx context.Context, id primitive.ObjectID) (*models.TransportOption, error) {
	opt, err := ts.transportRepo.GetTransportOptionByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNoDocument) {
			return nil, helpers.ErrNotFound("transport option not found")
		}
		return nil, err
	}
	return opt, nil
}

func (ts *TransportService) CreateTransportOption(ctx context.Context, opt *models.TransportOption, creator *models.User) (*models.TransportOption, error) {
	if err := models.Validate.Struct(opt); err != nil {
		return nil, helpers.ErrBadRequest("invalid transport option: " + err.Error())
	}

	if err := validateSchedules(opt.Schedules); err != nil {
		return nil, err
	}

	now := time.Now()
	opt.ID = primitive.NewObjectID()
	opt.CreatedBy = creator.ID
	opt.IsActive = true
	opt.CreatedAt = now
	opt.UpdatedAt = now
	if opt.Currency == "" {
		opt.Currency = "INR"
	}

	if err := ts.transportRepo.CreateTransportOption(ctx, opt); err != nil {
		return nil, err
	}
	return opt, nil
}

func validateSchedules(schedules []models.TransportSchedule) error {
	for _, s := range schedules {
		if !s.ArrivalTime.After(s.DepartureTime) {
			return helpers.ErrBadRequest("schedule arrival must be after departure")
		}
		if s.AvailableSeats > s.TotalSeats {
			return helpers.ErrBadRequest("available seats cannot exceed total seats")
		}
	}
	return nil
}

// UpdateTransportInput is the explicit update surface; ownership and
// timestamps stay server-controlled.
type UpdateTransportInput struct {
	Name      *string                    `json:"name"`
	Type      *string                    `json:"type" validate:"omitempty,oneof=flight train bus car boat"`
	Operator  *string                    `json:"operator"`
	Routes    []models.TransportRoute    `json:"routes" validate:"omitempty,dive"`
	Schedules []models.TransportSchedule `json:"schedules"`
	BasePrice *float64                   `json:"base_price" validate:"omitempty,gt=0"`
	Currency  *string                    `json:"currency"`
	Classes   []models.ClassPricing      `json:"classes" validate:"omitempty,dive"`
	Images    []string                   `json:"images"`
	IsActive  *bool                      `json:"is_active"`
}

func (ts *TransportService) UpdateTransportOption(ctx context.Context, id primitive.ObjectID, in UpdateTransportInput, actor *models.User) (*models.TransportOption, error) {
	if err := models.Validate.Struct(in); err != nil {
		return nil, helpers.ErrBadRequest("invalid transport option: " + err.Error())
	}
	// Creation-time schedule invariants hold on update too.
	if err := validateSchedules(in.Schedules); err != nil {
		return nil, err
	}

	opt, err := ts.GetTransportOption(ctx, id)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin() && opt.CreatedBy != actor.ID {
		return nil, helpers.ErrForbidden("you can only update transport options you created")
	}

	fields := bson.M{}
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.Type != nil {
		fields["type"] = *in.Type
	}
	if in.Operator != nil {
		fields["operator"] = *in.Operator
	}
	if in.Routes != nil {
		fields["routes"] = in.Routes
	}
	if in.Schedules != nil {
		fields["schedules"] = in.Schedules
	}
	if in.BasePrice != nil {
		fields["base_price"] = *in.BasePrice
	}
	if in.Currency != nil {
		fields["currency"] = *in.Currency
	}
	if in.Classes != nil {
		fields["classes"] = in.Classes
	}
	if in.Images != nil {
		fields["images"] = in.Images
	}
	if in.IsActive != nil {
		fields["is_active"] = *in.IsActive
	}
	if len(fields) == 0 {
		return nil, helpers.ErrBadRequest("no fields to update")
	}

	if err := ts.transportRepo.UpdateTransportOption(ctx, id, fields); err != nil {
		return nil, err
	}
	return ts.GetTransportOption(ctx, id)
}

// Deactivate soft-deletes; transport options referenced elsewhere are never
// hard-deleted.
func (ts *TransportService) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	err := ts.transportRepo.UpdateTransportOption(ctx, id, bson.M{"is_active": false})
	if errors.Is(err, models.ErrNoDocument) {
		return helpers.ErrNotFound("transport option not found")
	}
	return err
}
