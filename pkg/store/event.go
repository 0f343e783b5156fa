package store

import "org-sync-backend/pkg/models"

// EventKind is the row-level operation a change event reports.
type EventKind string

const (
	EventInsert EventKind = "insert"
	EventUpdate EventKind = "update"
	EventDelete EventKind = "delete"
)

// Event is one row-level change on a watched table, as a tagged union
// over the finite set of tables. Insert and update events carry the
// full row after the write; delete events carry only the primary key.
// The sync engine dispatches on the concrete type, so a new table kind
// is a compile-time change, not a missing string case.
type Event interface {
	// EventOrg is the organization the event belongs to.
	EventOrg() string
}

// OrganizationUpdated reports an update to the organization row itself.
// Organizations are never inserted or deleted through the feed.
type OrganizationUpdated struct {
	Row models.Organization
}

func (e OrganizationUpdated) EventOrg() string { return e.Row.ID }

// ProfileChanged reports a change to the profiles table.
type ProfileChanged struct {
	Org  string
	Kind EventKind
	Row  models.Profile // zero value for deletes
	ID   string
}

func (e ProfileChanged) EventOrg() string { return e.Org }

// RoleChanged reports a change to the roles table.
type RoleChanged struct {
	Org  string
	Kind EventKind
	Row  models.Role
	ID   string
}

func (e RoleChanged) EventOrg() string { return e.Org }

// TeamChanged reports a change to the teams table.
type TeamChanged struct {
	Org  string
	Kind EventKind
	Row  models.Team
	ID   string
}

func (e TeamChanged) EventOrg() string { return e.Org }

// AssignmentChanged reports a change to the assignments table. The
// composite key is carried explicitly since deletes have no row.
type AssignmentChanged struct {
	Org       string
	Kind      EventKind
	Row       models.Assignment
	RoleID    string
	ProfileID string
}

func (e AssignmentChanged) EventOrg() string { return e.Org }

// ProcessChanged reports a change to the processes table.
type ProcessChanged struct {
	Org  string
	Kind EventKind
	Row  models.Process
	ID   string
}

func (e ProcessChanged) EventOrg() string { return e.Org }

// StepChanged reports a change to the steps table.
type StepChanged struct {
	Org  string
	Kind EventKind
	Row  models.Step
	ID   string
}

func (e StepChanged) EventOrg() string { return e.Org }

// ChangeChanged reports a change to the changes (suggestions) table.
type ChangeChanged struct {
	Org  string
	Kind EventKind
	Row  models.Change
	ID   string
}

func (e ChangeChanged) EventOrg() string { return e.Org }
