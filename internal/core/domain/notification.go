package domain

import "time"

// NotificationKind classifies outbound messages.
type NotificationKind string

const (
	NotifyLeadReceived  NotificationKind = "lead_received"
	NotifyPasswordReset NotificationKind = "password_reset"
	NotifyDealerStatus  NotificationKind = "dealer_status"
)

// Notification is an outbound e-mail handed to the delivery outbox.
type Notification struct {
	Kind      NotificationKind `json:"kind" bson:"kind"`
	Recipient string           `json:"recipient" bson:"recipient"`
	Subject   string           `json:"subject" bson:"subject"`
	Body      string           `json:"body" bson:"body"`
	CreatedAt time.Time        `json:"created_at" bson:"created_at"`
}
