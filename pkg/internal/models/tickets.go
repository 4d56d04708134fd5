package models

// Ticket is a reference into an external ticket system, to be voted
// upon by the members of a space. At most one ticket is active per
// space at a time; the operation layer clears all active flags before
// setting a new one.
type Ticket struct {
	BaseModel

	URL   string `json:"url"`
	Title string `json:"title"`

	Active   *bool `json:"active"`
	Closed   bool  `json:"closed"`
	Archived bool  `json:"archived"`

	SpaceID uint  `json:"space_id"`
	Space   Space `json:"space"`
}

// IsActive treats the unset flag as inactive.
func (v Ticket) IsActive() bool {
	return v.Active != nil && *v.Active
}
