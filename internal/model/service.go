package model

// Category groups subcategories for browsing.  Rows are managed out of band
// (admin tooling); the API only reads them.
//
// Fields:
//
//	ID   – primary key identifier.
//	Name – unique category name.
type Category struct {
	ID   uint64 `json:"id"`   // categories.id
	Name string `json:"name"` // categories.name
}

// SubCategory is the second browsing level.  Every professional service hangs
// off exactly one subcategory.
//
// Fields:
//
//	ID         – primary key identifier.
//	Name       – subcategory name.
//	CategoryID – owning category.
type SubCategory struct {
	ID         uint64 `json:"id"`          // subcategories.id
	Name       string `json:"name"`        // subcategories.name
	CategoryID uint64 `json:"category_id"` // subcategories.category_id
}

// ProfessionalService is a listing published by a professional user.  The
// average rating is denormalized onto the row and recomputed whenever a new
// rating is committed.  Latitude/Longitude power the distance filter; the
// free-text Location is what clients display.
//
// Fields:
//
//	ID            – primary key identifier.
//	Name          – listing title.
//	Description   – listing body text.
//	Location      – human readable location string.
//	Latitude      – listing latitude used by the distance filter.
//	Longitude     – listing longitude used by the distance filter.
//	AverageRating – mean of all committed ratings, 0 when unrated.
//	Featured      – paid placement flag, gated by an active subscription.
//	ProfessionalID – owning user (role professional).
//	SubCategoryID – subcategory the service is listed under.
type ProfessionalService struct {
	ID             uint64  `json:"id"`              // professional_services.id
	Name           string  `json:"name"`            // professional_services.name
	Description    string  `json:"description"`     // professional_services.description
	Location       string  `json:"location"`        // professional_services.location
	Latitude       float64 `json:"latitude"`        // professional_services.latitude
	Longitude      float64 `json:"longitude"`       // professional_services.longitude
	AverageRating  float64 `json:"average_rating"`  // professional_services.average_rating
	Featured       bool    `json:"featured"`        // professional_services.featured
	ProfessionalID uint64  `json:"professional_id"` // professional_services.professional_id
	SubCategoryID  uint64  `json:"subcategory_id"`  // professional_services.subcategory_id

	Images   []ServiceImage `json:"images,omitempty"`   // joined service_images rows
	Schedule []WorkSchedule `json:"schedule,omitempty"` // joined work_schedules rows
}

// ServiceImage is one uploaded image of a service.  A service holds at most
// ten of them.
type ServiceImage struct {
	ID        uint64 `json:"id"`         // service_images.id
	URL       string `json:"url"`        // service_images.url
	ServiceID uint64 `json:"service_id"` // service_images.service_id
}

// WorkSchedule is one weekly opening interval of a service.  Schedule rows
// are created in the same transaction as the service itself; a service is
// never visible with half its schedule.
//
// Fields:
//
//	ID        – primary key identifier.
//	ServiceID – owning service.
//	Weekday   – 0 (Sunday) through 6 (Saturday).
//	OpensAt   – opening time, "HH:MM".
//	ClosesAt  – closing time, "HH:MM".
type WorkSchedule struct {
	ID        uint64 `json:"id"`         // work_schedules.id
	ServiceID uint64 `json:"service_id"` // work_schedules.service_id
	Weekday   uint8  `json:"weekday"`    // work_schedules.weekday
	OpensAt   string `json:"opens_at"`   // work_schedules.opens_at
	ClosesAt  string `json:"closes_at"`  // work_schedules.closes_at
}

// Comment is a free-text review left on a service.  The rating carried on a
// comment is display-only; the aggregate on the service row is driven by the
// ratings table.
type Comment struct {
	ID                    uint64  `json:"id"`                      // comments.id
	Text                  string  `json:"text"`                    // comments.text
	Rating                float64 `json:"rating"`                  // comments.rating
	UserID                uint64  `json:"user_id"`                 // comments.user_id
	ProfessionalServiceID uint64  `json:"professional_service_id"` // comments.professional_service_id
}

// Rating is a numeric score a user gives a service.  A user may rate a given
// service only once; this is enforced by query discipline, not a constraint.
type Rating struct {
	ID                    uint64 `json:"id"`                      // ratings.id
	Rating                uint8  `json:"rating"`                  // ratings.rating, 1..5
	UserID                uint64 `json:"user_id"`                 // ratings.user_id
	ProfessionalServiceID uint64 `json:"professional_service_id"` // ratings.professional_service_id
}
