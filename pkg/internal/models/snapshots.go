package models

import "gorm.io/datatypes"

// Snapshot is an archival copy of the tally-with-averages document,
// taken when a space or a ticket is closed.
type Snapshot struct {
	BaseModel

	Document datatypes.JSONMap `json:"document"`

	SpaceID uint  `json:"space_id"`
	Space   Space `json:"space"`
}
