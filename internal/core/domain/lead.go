package domain

import "time"

// Lead is a contact request left by a visitor on a listing.
type Lead struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	ListingID string    `json:"listing_id" bson:"listing_id"`
	DealerID  string    `json:"dealer_id" bson:"dealer_id"`
	Name      string    `json:"name" bson:"name"`
	Email     string    `json:"email" bson:"email"`
	Phone     string    `json:"phone,omitempty" bson:"phone,omitempty"`
	Message   string    `json:"message" bson:"message"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
