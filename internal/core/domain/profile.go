package domain

import "time"

// ProfileStatus is the approval state of an account. It gates features such
// as listing creation, never route access.
type ProfileStatus string

const (
	ProfilePending   ProfileStatus = "pending"
	ProfileApproved  ProfileStatus = "approved"
	ProfileSuspended ProfileStatus = "suspended"
)

var profileTransitions = map[ProfileStatus][]ProfileStatus{
	ProfilePending:   {ProfileApproved, ProfileSuspended},
	ProfileApproved:  {ProfileSuspended},
	ProfileSuspended: {ProfileApproved},
}

// CanTransitionTo reports whether an admin may move a profile from s to next.
func (s ProfileStatus) CanTransitionTo(next ProfileStatus) bool {
	for _, allowed := range profileTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Profile is the public face of an account; for dealers it is the stand page.
type Profile struct {
	ID          string        `json:"id" bson:"_id"`
	Email       string        `json:"email" bson:"email"`
	DisplayName string        `json:"display_name" bson:"display_name"`
	Role        Role          `json:"role" bson:"role"`
	DealerName  string        `json:"dealer_name,omitempty" bson:"dealer_name,omitempty"`
	Phone       string        `json:"phone,omitempty" bson:"phone,omitempty"`
	City        string        `json:"city,omitempty" bson:"city,omitempty"`
	Status      ProfileStatus `json:"status" bson:"status"`
	CreatedAt   time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" bson:"updated_at"`
}

// CanCreateListings reports whether the profile may publish new listings.
func (p *Profile) CanCreateListings() bool {
	return p != nil && p.Role == RoleDealer && p.Status == ProfileApproved
}
