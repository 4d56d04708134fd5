package models

// Space is a meeting location for one moderator in one project.
// Each space has a permanent slug. Results of voting sessions are
// captured as snapshot documents when the space is closed.
type Space struct {
	BaseModel

	Slug      string `json:"slug" gorm:"uniqueIndex"`
	IsOpen    bool   `json:"is_open"`
	Moderator string `json:"moderator"`

	ProjectID uint    `json:"project_id"`
	Project   Project `json:"project"`

	Members []SpaceMember `json:"members"`
	Tickets []Ticket      `json:"tickets"`
}

// SpaceMember records one participant who has joined a space.
// Identity is the username asserted by the upstream gateway.
type SpaceMember struct {
	BaseModel

	Username string `json:"username" gorm:"index:idx_space_member,unique"`
	SpaceID  uint   `json:"space_id" gorm:"index:idx_space_member,unique"`
}
