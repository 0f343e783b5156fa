package store

import (
	"context"
	"errors"

	"org-sync-backend/pkg/models"
	"org-sync-backend/pkg/snapshot"
)

// ErrNotFound is returned when a keyed read or write targets a row that
// does not exist.
var ErrNotFound = errors.New("not found")

// Subscription is one organization's change feed. Events arrive in
// delivery order, which is not guaranteed to match commit order across
// tables, and delivery itself is not guaranteed: a disconnect or a
// dropped notification is silent. Consumers recover by refetching, not
// by waiting.
type Subscription interface {
	// Events yields change events until the subscription is closed.
	// The channel is closed on Close.
	Events() <-chan Event
	// Close stops delivery. Safe to call more than once.
	Close()
}

// Store is the narrow interface to the remote relational store. The
// store is the source of truth; everything here either reads it, writes
// it, or watches it. Writes are full-row (the caller sends the complete
// row after its edit), so an UPDATE and an INSERT are interchangeable
// upserts from the cache's point of view.
type Store interface {
	// Fetch reads every table for one organization in a coordinated
	// batch and builds a fresh snapshot. This is the refresh source.
	Fetch(ctx context.Context, orgID string) (*snapshot.Snapshot, error)

	// Subscribe opens the organization's change feed.
	Subscribe(orgID string) (Subscription, error)

	// Organization
	UpdateOrganization(ctx context.Context, org models.Organization) error

	// Profiles
	InsertProfile(ctx context.Context, p *models.Profile) error
	UpdateProfile(ctx context.Context, p models.Profile) error
	DeleteProfile(ctx context.Context, id string) error

	// Roles
	InsertRole(ctx context.Context, r *models.Role) error
	UpdateRole(ctx context.Context, r models.Role) error
	DeleteRole(ctx context.Context, id string) error

	// Teams
	InsertTeam(ctx context.Context, t *models.Team) error
	UpdateTeam(ctx context.Context, t models.Team) error
	DeleteTeam(ctx context.Context, id string) error

	// Assignments
	InsertAssignment(ctx context.Context, a models.Assignment) error
	DeleteAssignment(ctx context.Context, orgID, profileID, roleID string) error

	// Processes
	InsertProcess(ctx context.Context, p *models.Process) error
	UpdateProcess(ctx context.Context, p models.Process) error
	DeleteProcess(ctx context.Context, id string) error

	// Steps
	InsertStep(ctx context.Context, s *models.Step) error
	UpdateStep(ctx context.Context, s models.Step) error
	DeleteStep(ctx context.Context, id string) error
	// UpdateSteps writes several step rows atomically where the backend
	// supports multi-row transactions (both parents of a move).
	UpdateSteps(ctx context.Context, steps ...models.Step) error
	// UnlinkAndDeleteStep writes the parent's new child list and deletes
	// the step row, atomically where supported. Implementations without
	// transactions must unlink before deleting, so a failure strands an
	// orphan row rather than a dangling reference.
	UnlinkAndDeleteStep(ctx context.Context, parent models.Step, stepID string) error

	// Changes
	InsertChange(ctx context.Context, c *models.Change) error
	UpdateChange(ctx context.Context, c models.Change) error
	DeleteChange(ctx context.Context, id string) error

	// Comments (fetched on demand; not part of the snapshot or the feed)
	InsertComment(ctx context.Context, c *models.Comment) error
	UpdateComment(ctx context.Context, c models.Comment) error
	DeleteComment(ctx context.Context, id string) error
	GetComments(ctx context.Context, orgID string, ids []string) ([]models.Comment, error)

	HealthCheck() error
	Close() error
}
