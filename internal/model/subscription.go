package model

import "time"

// SubscriptionType is a purchasable plan (name and price).  Rows are seeded
// at startup alongside the roles.
type SubscriptionType struct {
	ID    uint64  `json:"id"`    // subscription_types.id
	Name  string  `json:"name"`  // subscription_types.name
	Price float64 `json:"price"` // subscription_types.price
}

// Subscription is a user's plan purchase.  A user holds at most one row at a
// time by query discipline: purchasing after expiry updates the existing row
// in place rather than inserting a second one.  The row is active while
// EndDate lies in the future.
//
// Fields:
//
//	ID                 – primary key identifier.
//	StartDate          – when the current period began.
//	EndDate            – when the current period ends; active while > now.
//	UserID             – owning user.
//	SubscriptionTypeID – purchased plan.
type Subscription struct {
	ID                 uint64    `json:"id"`                   // subscriptions.id
	StartDate          time.Time `json:"start_date"`           // subscriptions.start_date
	EndDate            time.Time `json:"end_date"`             // subscriptions.end_date
	UserID             uint64    `json:"user_id"`              // subscriptions.user_id
	SubscriptionTypeID uint64    `json:"subscription_type_id"` // subscriptions.subscription_type_id
}

// Version is one released client version.  The newest row by release date is
// what /version reports.
type Version struct {
	ID          uint64    `json:"id"`           // versions.id
	Version     string    `json:"version"`      // versions.version
	ReleaseDate time.Time `json:"release_date"` // versions.release_date
}
