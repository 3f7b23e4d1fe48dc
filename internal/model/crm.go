package model

import "time"

// DefaultDealStage is applied when create_deal omits the stage.
const DefaultDealStage = "new"

// Contact is a CRM contact. Optional fields are pointers so a missing value
// serializes as JSON null rather than an empty string.
type Contact struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email"`
	Phone     *string   `json:"phone"`
	Company   *string   `json:"company"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
}

// Deal is a sales deal attached to a contact. ContactID is declared as a
// foreign key in the schema but existence is only checked in strict mode
// (see crm.Service).
type Deal struct {
	ID        int64     `json:"id"`
	ContactID int64     `json:"contact_id"`
	Title     string    `json:"title"`
	Value     float64   `json:"value"`
	Stage     string    `json:"stage"`
	CreatedAt time.Time `json:"created_at"`
}
