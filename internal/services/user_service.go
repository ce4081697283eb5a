package services

import (
	"context"

	"github.com/packhorizon/server/internal/helpers"
	"github.com/packhorizon/server/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UpdateProfileInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	AvatarURL string `json:"avatar_url"`
}

type UserService struct {
	userRepo models.UserRepo
}

func NewUserService(userRepo models.UserRepo) *UserService {
	return &UserService{userRepo: userRepo}
}

func (us *UserService) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := us.userRepo.GetUserByID(ctx, id)
	if err != nil {
		return nil, helpers.ErrNotFound("user not found")
	}
	return user, nil
}

func (us *UserService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, in UpdateProfileInput) (*models.User, error) {
	fields := bson.M{}
	if in.FirstName != "" {
		fields["first_name"] = in.FirstName
	}
	if in.LastName != "" {
		fields["last_name"] = in.LastName
	}
	if in.Phone != "" {
		fields["phone"] = in.Phone
	}
	if in.AvatarURL != "" {
		fields["avatar_url"] = in.AvatarURL
	}
	if len(fields) == 0 {
		return nil, helpers.ErrBadRequest("no fields to update")
	}

	if err := us.userRepo.UpdateUser(ctx, userID, fields); err != nil {
		return nil, err
	}
	return us.GetUser(ctx, userID)
}

func (us *UserService) ListUsers(ctx context.Context, role string, offset, limit int) ([]*models.User, int, error) {
	if role != "" && !models.ValidRole(role) {
		return nil, 0, helpers.ErrBadRequest("invalid role filter")
	}
	return us.userRepo.ListUsers(ctx, role, offset, limit)
}

// DeactivateUser soft-deletes an account; records are never hard-deleted.
func (us *UserService) DeactivateUser(ctx context.Context, id primitive.ObjectID) error {
	if err := us.userRepo.UpdateUser(ctx, id, bson.M{"is_active": false}); err != nil {
		return helpers.ErrNotFound("user not found")
	}
	return nil
}

// ChangeUserRole is the only path that mutates a role, and it is admin-gated
// at the route level.
func (us *UserService) ChangeUserRole(ctx context.Context, id primitive.ObjectID, role string) error {
	if !models.ValidRole(role) {
		return helpers.ErrBadRequest("invalid role")
	}
	if err := us.userRepo.UpdateUser(ctx, id, bson.M{"role": role}); err != nil {
		return helpers.ErrNotFound("user not found")
	}
	return nil
}
