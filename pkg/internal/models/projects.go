package models

// Project groups voting spaces within the organization.
type Project struct {
	BaseModel

	Name   string  `json:"name"`
	Spaces []Space `json:"spaces"`
}
