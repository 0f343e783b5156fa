package models

import "time"

// Role is a named scope of responsibility that profiles can hold.
type Role struct {
	ID          string    `json:"id" db:"id"`
	OrgID       string    `json:"orgid" db:"orgid"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Team        string    `json:"team" db:"team"` // team id, empty if none
	Short       []string  `json:"short" db:"short"`
	Comments    []string  `json:"comments" db:"comments"`
	When        time.Time `json:"when" db:"when"`
}

// Team groups related roles.
type Team struct {
	ID          string    `json:"id" db:"id"`
	OrgID       string    `json:"orgid" db:"orgid"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Comments    []string  `json:"comments" db:"comments"`
	When        time.Time `json:"when" db:"when"`
}
