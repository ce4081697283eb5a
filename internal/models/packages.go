package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Destination struct {
	Country   string  `bson:"country" json:"country" validate:"required"`
	City      string  `bson:"city" json:"city" validate:"required"`
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
}

// SeasonalRate scales the base price inside its date range. Entries are
// scanned in stored order; the first range containing the date wins.
type SeasonalRate struct {
	Name       string    `bson:"name" json:"name"`
	Multiplier float64   `bson:"multiplier" json:"multiplier" validate:"gt=0"`
	StartDate  time.Time `bson:"start_date" json:"start_date"`
	EndDate    time.Time `bson:"end_date" json:"end_date"`
}

type PackagePricing struct {
	BasePrice       float64        `bson:"base_price" json:"base_price" validate:"gt=0"`
	DiscountedPrice float64        `bson:"discounted_price,omitempty" json:"discounted_price,omitempty"`
	Currency        string         `bson:"currency" json:"currency"`
	Seasonal        []SeasonalRate `bson:"seasonal,omitempty" json:"seasonal,omitempty"`
}

type ItineraryDay struct {
	Day         int      `bson:"day" json:"day"`
	Title       string   `bson:"title" json:"title"`
	Description string   `bson:"description" json:"description"`
	Activities  []string `bson:"activities,omitempty" json:"activities,omitempty"`
}

type Availability struct {
	TotalSlots  int  `bson:"total_slots" json:"total_slots" validate:"gte=0"`
	BookedSlots int  `bson:"booked_slots" json:"booked_slots"`
	IsActive    bool `bson:"is_active" json:"is_active"`
}

type RatingAggregate struct {
	Average float64 `bson:"average" json:"average"`
	Count   int     `bson:"count" json:"count"`
}

type Package struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name           string              `bson:"name" json:"name" validate:"required"`
	Slug           string              `bson:"slug" json:"slug"`
	Description    string              `bson:"description" json:"description" validate:"required"`
	Destination    Destination         `bson:"destination" json:"destination"`
	DurationDays   int                 `bson:"duration_days" json:"duration_days" validate:"gt=0"`
	DurationNights int                 `bson:"duration_nights" json:"duration_nights"`
	Pricing        PackagePricing      `bson:"pricing" json:"pricing"`
	Inclusions     []string            `bson:"inclusions,omitempty" json:"inclusions,omitempty"`
	Exclusions     []string            `bson:"exclusions,omitempty" json:"exclusions,omitempty"`
	Itinerary      []ItineraryDay      `bson:"itinerary,omitempty" json:"itinerary,omitempty"`
	Images         []string            `bson:"images,omitempty" json:"images,omitempty"`
	Category       string              `bson:"category" json:"category"`
	Tags           []string            `bson:"tags,omitempty" json:"tags,omitempty"`
	Availability   Availability        `bson:"availability" json:"availability"`
	Rating         RatingAggregate     `bson:"rating" json:"rating"`
	IsApproved     bool                `bson:"is_approved" json:"is_approved"`
	ApprovedBy     *primitive.ObjectID `bson:"approved_by,omitempty" json:"approved_by,omitempty"`
	ApprovedAt     *time.Time          `bson:"approved_at,omitempty" json:"approved_at,omitempty"`
	CreatedBy      primitive.ObjectID  `bson:"created_by" json:"created_by"`
	CreatedAt      time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time           `bson:"updated_at" json:"updated_at"`
}

// IsBookable reports whether the package can accept a new booking. The slot
// check here is advisory only; the reservation update re-checks atomically.
func (p *Package) IsBookable() bool {
	return p.IsApproved && p.Availability.IsActive && p.Availability.BookedSlots < p.Availability.TotalSlots
}

// PriceOn resolves the per-traveler price for a travel date, applying the
// first seasonal rate whose [start, end] range contains the date.
func (p *Package) PriceOn(date time.Time) float64 {
	for _, s := range p.Pricing.Seasonal {
		if !date.Before(s.StartDate) && !date.After(s.EndDate) {
			return p.Pricing.BasePrice * s.Multiplier
		}
	}
	return p.Pricing.BasePrice
}
