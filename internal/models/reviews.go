package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CategoryRatings struct {
	Service     int `bson:"service,omitempty" json:"service,omitempty" validate:"omitempty,min=1,max=5"`
	Value       int `bson:"value,omitempty" json:"value,omitempty" validate:"omitempty,min=1,max=5"`
	Cleanliness int `bson:"cleanliness,omitempty" json:"cleanliness,omitempty" validate:"omitempty,min=1,max=5"`
	Location    int `bson:"location,omitempty" json:"location,omitempty" validate:"omitempty,min=1,max=5"`
	Food        int `bson:"food,omitempty" json:"food,omitempty" validate:"omitempty,min=1,max=5"`
}

type HelpfulVote struct {
	UserID  primitive.ObjectID `bson:"user_id" json:"user_id"`
	Helpful bool               `bson:"helpful" json:"helpful"`
	VotedAt time.Time          `bson:"voted_at" json:"voted_at"`
}

type ReviewReport struct {
	UserID     primitive.ObjectID `bson:"user_id" json:"user_id"`
	Reason     string             `bson:"reason,omitempty" json:"reason,omitempty"`
	ReportedAt time.Time          `bson:"reported_at" json:"reported_at"`
}

type Review struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID  `bson:"user_id" json:"user_id"`
	PackageID  primitive.ObjectID  `bson:"package_id" json:"package_id"`
	BookingID  *primitive.ObjectID `bson:"booking_id,omitempty" json:"booking_id,omitempty"`
	Rating     int                 `bson:"rating" json:"rating" validate:"required,min=1,max=5"`
	Title      string              `bson:"title" json:"title"`
	Comment    string              `bson:"comment" json:"comment"`
	Categories CategoryRatings     `bson:"categories,omitempty" json:"categories,omitempty"`
	Images     []string            `bson:"images,omitempty" json:"images,omitempty"`
	IsVerified bool                `bson:"is_verified" json:"is_verified"`
	IsApproved bool                `bson:"is_approved" json:"is_approved"`
	Votes      []HelpfulVote       `bson:"votes,omitempty" json:"votes,omitempty"`
	Reports    []ReviewReport      `bson:"reports,omitempty" json:"reports,omitempty"`
	CreatedAt  time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time           `bson:"updated_at" json:"updated_at"`
}

// CategoryAverage is the mean of the category sub-ratings that are set,
// falling back to the overall rating when none are.
func (r *Review) CategoryAverage() float64 {
	sum, n := 0, 0
	for _, v := range []int{r.Categories.Service, r.Categories.Value, r.Categories.Cleanliness, r.Categories.Location, r.Categories.Food} {
		if v > 0 {
			sum += v
			n++
		}
	}
	if n == 0 {
		return float64(r.Rating)
	}
	return float64(sum) / float64(n)
}

// HelpfulCount counts positive helpful votes.
func (r *Review) HelpfulCount() int {
	n := 0
	for _, v := range r.Votes {
		if v.Helpful {
			n++
		}
	}
	return n
}
