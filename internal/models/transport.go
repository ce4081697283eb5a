package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	TransportFlight = "flight"
	TransportTrain  = "train"
	TransportBus    = "bus"
	TransportCar    = "car"
	TransportBoat   = "boat"
)

type TransportRoute struct {
	Origin          string `bson:"origin" json:"origin" validate:"required"`
	Destination     string `bson:"destination" json:"destination" validate:"required"`
	DurationMinutes int    `bson:"duration_minutes" json:"duration_minutes"`
}

type TransportSchedule struct {
	DepartureTime  time.Time `bson:"departure_time" json:"departure_time"`
	ArrivalTime    time.Time `bson:"arrival_time" json:"arrival_time"`
	TotalSeats     int       `bson:"total_seats" json:"total_seats"`
	AvailableSeats int       `bson:"available_seats" json:"available_seats"`
	Price          float64   `bson:"price" json:"price"`
}

type ClassPricing struct {
	Class      string  `bson:"class" json:"class"`
	Multiplier float64 `bson:"multiplier" json:"multiplier" validate:"gt=0"`
}

// TransportOption is a standalone catalog entry; bookings reference
// packages only, transport is browsed alongside them.
type TransportOption struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name      string              `bson:"name" json:"name" validate:"required"`
	Type      string              `bson:"type" json:"type" validate:"required,oneof=flight train bus car boat"`
	Operator  string              `bson:"operator" json:"operator"`
	Routes    []TransportRoute    `bson:"routes,omitempty" json:"routes,omitempty"`
	Schedules []TransportSchedule `bson:"schedules,omitempty" json:"schedules,omitempty"`
	BasePrice float64             `bson:"base_price" json:"base_price" validate:"gt=0"`
	Currency  string              `bson:"currency" json:"currency"`
	Classes   []ClassPricing      `bson:"classes,omitempty" json:"classes,omitempty"`
	Images    []string            `bson:"images,omitempty" json:"images,omitempty"`
	IsActive  bool                `bson:"is_active" json:"is_active"`
	CreatedBy primitive.ObjectID  `bson:"created_by" json:"created_by"`
	CreatedAt time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time           `bson:"updated_at" json:"updated_at"`
}

// PriceForClass applies the class multiplier to the base price. Unknown
// classes fall back to the base price.
func (t *TransportOption) PriceForClass(class string) float64 {
	for _, c := range t.Classes {
		if c.Class == class {
			return t.BasePrice * c.Multiplier
		}
	}
	return t.BasePrice
}
