package models

import "time"

// Change is a proposed modification to roles or processes, tracked
// through a status workflow from triage to done or declined.
type Change struct {
	ID          string     `json:"id" db:"id"`
	OrgID       string     `json:"orgid" db:"orgid"`
	Who         string     `json:"who" db:"who"` // author profile id
	What        string     `json:"what" db:"what"`
	Description string     `json:"description" db:"description"`
	Status      Status     `json:"status" db:"status"`
	Lead        string     `json:"lead" db:"lead"` // profile id, empty if none
	Proposal    string     `json:"proposal" db:"proposal"`
	Review      string     `json:"review" db:"review"`
	Visibility  Visibility `json:"visibility" db:"visibility"`
	Roles       []string   `json:"roles" db:"roles"`         // affected role ids
	Processes   []string   `json:"processes" db:"processes"` // affected process ids
	Comments    []string   `json:"comments" db:"comments"`
	When        time.Time  `json:"when" db:"when"`
}
