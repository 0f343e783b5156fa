package models

import "time"

// Organization is the tenant scope containing all other entities.
// It is the root row of a snapshot.
type Organization struct {
	ID          string     `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description" db:"description"`
	Visibility  Visibility `json:"visibility" db:"visibility"`
	Comments    []string   `json:"comments" db:"comments"`
	When        time.Time  `json:"when" db:"when"`
}

// Comment is an annotation on an org, role, team, process, or change.
// Owning entities reference comments by id; comments are fetched on
// demand rather than cached in the snapshot.
type Comment struct {
	ID    string    `json:"id" db:"id"`
	OrgID string    `json:"orgid" db:"orgid"`
	Who   string    `json:"who" db:"who"`
	What  string    `json:"what" db:"what"`
	When  time.Time `json:"when" db:"when"`
}
