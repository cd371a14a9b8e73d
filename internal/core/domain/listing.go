package domain

import "time"

// ListingStatus represents the lifecycle state of a car listing.
type ListingStatus string

const (
	ListingActive   ListingStatus = "active"
	ListingSold     ListingStatus = "sold"
	ListingArchived ListingStatus = "archived"
)

// listingTransitions defines the allowed listing state machine transitions.
var listingTransitions = map[ListingStatus][]ListingStatus{
	ListingActive:   {ListingSold, ListingArchived},
	ListingArchived: {ListingActive},
}

// CanTransitionTo reports whether a listing may move from s to next.
func (s ListingStatus) CanTransitionTo(next ListingStatus) bool {
	for _, allowed := range listingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Fuel types accepted on a listing.
const (
	FuelGasoline = "gasoline"
	FuelDiesel   = "diesel"
	FuelElectric = "electric"
	FuelHybrid   = "hybrid"
	FuelLPG      = "lpg"
)

// Listing is a vehicle advertised by a dealer.
type Listing struct {
	ID           string        `json:"id" bson:"_id,omitempty"`
	DealerID     string        `json:"dealer_id" bson:"dealer_id"`
	Title        string        `json:"title" bson:"title"`
	Make         string        `json:"make" bson:"make"`
	Model        string        `json:"model" bson:"model"`
	Year         int           `json:"year" bson:"year"`
	Price        float64       `json:"price" bson:"price"`
	Currency     string        `json:"currency" bson:"currency"`
	MileageKm    int           `json:"mileage_km" bson:"mileage_km"`
	Fuel         string        `json:"fuel" bson:"fuel"`
	Transmission string        `json:"transmission" bson:"transmission"`
	Description  string        `json:"description" bson:"description"`
	Images       []string      `json:"images" bson:"images"`
	Status       ListingStatus `json:"status" bson:"status"`
	CreatedAt    time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" bson:"updated_at"`
}
