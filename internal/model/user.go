package model

import "time"

// Role names form a closed set.  Handlers and middleware compare against
// these constants instead of scattering string literals around; the values
// match the seeded rows in the `roles` table.
const (
	RoleCommon       = "common"       // regular customer account
	RoleProfessional = "professional" // account allowed to publish services
)

// Role represents a row in the `roles` table.  It maps a small integer ID to
// a role name.  The table is seeded at startup and is never empty afterwards.
//
// Fields:
//
//	ID   – numeric identifier of the role.
//	Name – unique role name (common, professional).
type Role struct {
	ID   uint8  `json:"id"`   // roles.id
	Name string `json:"name"` // roles.name
}

// User represents an application user record as stored in the `users` table.
// Each field corresponds to a column in the database.  Password is a pointer
// because accounts created through a social provider carry no password at
// all; the same goes for the provider identifier columns, which are unique
// when present.  Latitude/Longitude are optional and feed the geographic
// service filter.
//
// Fields:
//
//	ID                – primary key identifier of the user.
//	FirstName         – given name.
//	LastName          – family name.
//	Email             – unique email address; also the JWT subject.
//	Password          – bcrypt hash, nil for social-only accounts.
//	ReceivePromotions – marketing opt-in flag.
//	AppleID           – Apple provider identifier (nullable, unique).
//	FacebookID        – Facebook provider identifier (nullable, unique).
//	GoogleID          – Google provider identifier (nullable, unique).
//	IsActive          – whether the account is active; false means suspended.
//	BirthDate         – optional date of birth.
//	RoleID            – foreign key into the roles table.
//	Latitude          – optional geolocation latitude.
//	Longitude         – optional geolocation longitude.
type User struct {
	ID                uint64     `json:"id"`                 // users.id
	FirstName         string     `json:"first_name"`         // users.first_name
	LastName          string     `json:"last_name"`          // users.last_name
	Email             string     `json:"email"`              // users.email
	Password          *string    `json:"-"`                  // users.password (never serialized)
	ReceivePromotions bool       `json:"receive_promotions"` // users.receive_promotions
	AppleID           *string    `json:"-"`                  // users.apple_id
	FacebookID        *string    `json:"-"`                  // users.facebook_id
	GoogleID          *string    `json:"-"`                  // users.google_id
	IsActive          bool       `json:"is_active"`          // users.is_active
	BirthDate         *time.Time `json:"birth_date"`         // users.birth_date
	RoleID            uint8      `json:"role_id"`            // users.role_id
	RoleName          string     `json:"role"`               // joined from roles.name
	Latitude          *float64   `json:"latitude"`           // users.latitude
	Longitude         *float64   `json:"longitude"`          // users.longitude
}

// ProfileImage models the single avatar a user may have.  Re-uploading
// replaces the existing row instead of accumulating history.
type ProfileImage struct {
	ID     uint64 `json:"id"`      // profile_images.id
	URL    string `json:"url"`     // profile_images.url
	UserID uint64 `json:"user_id"` // profile_images.user_id
}

// RevokedToken records an access or refresh token surrendered at logout.
// Only the SHA-256 hash of the token string is stored.  Verification does
// not consult this table; the rows exist as an audit trail.
type RevokedToken struct {
	ID        uint64    // revoked_tokens.id
	TokenHash string    // revoked_tokens.token_hash
	RevokedAt time.Time // revoked_tokens.revoked_at
}
