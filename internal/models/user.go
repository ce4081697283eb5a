package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleCustomer = "customer"
	RoleAgent    = "agent"
	RoleAdmin    = "admin"
)

type User struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName        string             `bson:"first_name" json:"first_name" validate:"required"`
	LastName         string             `bson:"last_name" json:"last_name"`
	Email            string             `bson:"email" json:"email" validate:"required,email"`
	Password         string             `bson:"password" json:"-"`
	Role             string             `bson:"role" json:"role"`
	Phone            string             `bson:"phone" json:"phone"`
	AvatarURL        string             `bson:"avatar_url" json:"avatar_url,omitempty"`
	IsActive         bool               `bson:"is_active" json:"is_active"`
	EmailVerified    bool               `bson:"email_verified" json:"email_verified"`
	ResetToken       string             `bson:"reset_token,omitempty" json:"-"`
	ResetTokenExpiry *time.Time         `bson:"reset_token_expiry,omitempty" json:"-"`
	LastLoginAt      *time.Time         `bson:"last_login_at,omitempty" json:"last_login_at,omitempty"`
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsAgent() bool {
	return u.Role == RoleAgent
}

// HasRole reports whether the user's role is in the allowed set.
func (u *User) HasRole(roles ...string) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

func ValidRole(role string) bool {
	return role == RoleCustomer || role == RoleAgent || role == RoleAdmin
}
