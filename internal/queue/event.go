// Package queue defines message payloads exchanged over the message broker.
package queue

// SubscriptionPurchasedEvent is published after a subscription purchase or
// renewal commits.  It carries enough information for downstream consumers
// to log, notify, or trigger billing without querying the primary database.
type SubscriptionPurchasedEvent struct {
	SubscriptionID uint64  `json:"subscription_id"`
	UserID         uint64  `json:"user_id"`
	UserEmail      string  `json:"user_email"`
	PlanID         uint64  `json:"plan_id"`
	PlanName       string  `json:"plan_name"`
	Price          float64 `json:"price"`
	Renewal        bool    `json:"renewal"`
	StartsAt       string  `json:"starts_at"`
	EndsAt         string  `json:"ends_at"`
}
