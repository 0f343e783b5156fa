package models

// Visibility controls who can see an entity within an organization.
type Visibility string

const (
	VisibilityPublic Visibility = "public"
	VisibilityOrg    Visibility = "org"
	VisibilityAdmin  Visibility = "admin"
)

// State is the lifecycle of a process.
type State string

const (
	StateDraft    State = "draft"
	StateActive   State = "active"
	StateArchived State = "archived"
)

// Status tracks a change suggestion through its workflow.
type Status string

const (
	StatusTriage   Status = "triage"
	StatusBacklog  Status = "backlog"
	StatusActive   Status = "active"
	StatusDone     Status = "done"
	StatusBlocked  Status = "blocked"
	StatusDeclined Status = "declined"
)

// Completion marks whether a step has been done for the current occurrence.
type Completion string

const (
	CompletionNo      Completion = "no"
	CompletionPending Completion = "pending"
	CompletionDone    Completion = "done"
)
