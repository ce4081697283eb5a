package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/packhorizon/server/internal/helpers"
	"github.com/packhorizon/server/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const resetTokenTTL = 10 * time.Minute

type RegisterInput struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
}

type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type AuthService struct {
	userRepo models.UserRepo
	secret   []byte
	tokenTTL time.Duration
}

func NewAuthService(userRepo models.UserRepo, secret []byte, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		secret:   secret,
		tokenTTL: tokenTTL,
	}
}

func (as *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := models.Validate.Struct(in); err != nil {
		return nil, helpers.ErrBadRequest("invalid registration data: " + err.Error())
	}
	if !helpers.IsPasswordStrong(in.Password) {
		return nil, helpers.ErrBadRequest("password must be at least 8 characters with upper, lower and numeric characters")
	}

	role := in.Role
	if role == "" {
		role = models.RoleCustomer
	}
	// Self-registration never grants admin.
	if role != models.RoleCustomer && role != models.RoleAgent {
		return nil, helpers.ErrBadRequest("invalid role")
	}

	if _, err := as.userRepo.GetUserByEmail(ctx, in.Email); err == nil {
		return nil, helpers.ErrConflict("email already registered")
	} else if !errors.Is(err, models.ErrNoDocument) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, helpers.ErrInternal("failed to hash password")
	}

	now := time.Now()
	user := &models.User{
		ID:        primitive.NewObjectID(),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Password:  string(hash),
		Role:      role,
		Phone:     in.Phone,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := as.userRepo.CreateUser(ctx, user); err != nil {
		// The unique index is the authority; a concurrent register can still
		// lose the earlier existence check.
		return nil, helpers.ErrConflict("email already registered")
	}

	token, err := helpers.GenerateToken(user.ID.Hex(), as.secret, as.tokenTTL)
	if err != nil {
		return nil, helpers.ErrInternal("failed to issue token")
	}

	return &AuthResult{Token: token, User: user}, nil
}

func (as *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if err := models.Validate.Var(email, "required,email"); err != nil {
		return nil, helpers.ErrBadRequest("invalid email format")
	}

	user, err := as.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNoDocument) {
			return nil, helpers.ErrUnauthorized("invalid email or password")
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, helpers.ErrUnauthorized("account is deactivated")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, helpers.ErrUnauthorized("invalid email or password")
	}

	now := time.Now()
	_ = as.userRepo.UpdateUser(ctx, user.ID, bson.M{"last_login_at": now})
	user.LastLoginAt = &now

	token, err := helpers.GenerateToken(user.ID.Hex(), as.secret, as.tokenTTL)
	if err != nil {
		return nil, helpers.ErrInternal("failed to issue token")
	}

	return &AuthResult{Token: token, User: user}, nil
}

// ResolveToken is the middleware contract: parses the bearer token and
// re-checks the user against the store so role changes and deactivation
// take effect immediately.
func (as *AuthService) ResolveToken(ctx context.Context, token string) (*models.User, error) {
	userID, err := helpers.ParseToken(token, as.secret)
	if err != nil {
		return nil, helpers.ErrUnauthorized("invalid or expired token")
	}

	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, helpers.ErrUnauthorized("invalid token subject")
	}

	user, err := as.userRepo.GetUserByID(ctx, oid)
	if err != nil {
		return nil, helpers.ErrUnauthorized("account not found")
	}
	if !user.IsActive {
		return nil, helpers.ErrUnauthorized("account is deactivated")
	}

	return user, nil
}

func (as *AuthService) ChangePassword(ctx context.Context, user *models.User, current, newPassword string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)); err != nil {
		return helpers.ErrBadRequest("current password is incorrect")
	}
	if !helpers.IsPasswordStrong(newPassword) {
		return helpers.ErrBadRequest("new password is not strong enough")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return helpers.ErrInternal("failed to hash password")
	}

	return as.userRepo.UpdateUser(ctx, user.ID, bson.M{"password": string(hash)})
}

// RequestPasswordReset issues an opaque token with a short expiry. The token
// is returned so the caller can hand it to the notification stub; unknown
// emails succeed silently to avoid account enumeration.
func (as *AuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	user, err := as.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNoDocument) {
			return "", nil
		}
		return "", err
	}

	token := uuid.New().String()
	expiry := time.Now().Add(resetTokenTTL)
	err = as.userRepo.UpdateUser(ctx, user.ID, bson.M{
		"reset_token":        token,
		"reset_token_expiry": expiry,
	})
	if err != nil {
		return "", err
	}

	return token, nil
}

func (as *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return helpers.ErrBadRequest("reset token is required")
	}

	user, err := as.userRepo.GetUserByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, models.ErrNoDocument) {
			return helpers.ErrBadRequest("invalid or expired reset token")
		}
		return err
	}

	if user.ResetTokenExpiry == nil || time.Now().After(*user.ResetTokenExpiry) {
		return helpers.ErrBadRequest("invalid or expired reset token")
	}

	if !helpers.IsPasswordStrong(newPassword) {
		return helpers.ErrBadRequest("new password is not strong enough")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return helpers.ErrInternal("failed to hash password")
	}

	return as.userRepo.UpdateUser(ctx, user.ID, bson.M{
		"password":           string(hash),
		"reset_token":        "",
		"reset_token_expiry": nil,
	})
}
