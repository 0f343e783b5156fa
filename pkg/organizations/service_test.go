package organizations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"org-sync-backend/pkg/models"
)

func TestAddPersonByEmailIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.AddPersonByEmail(ctx, f.org, "ada@acme.test", "")
	require.NoError(t, err)
	assert.Equal(t, "ada", first.Name, "name defaults to the mailbox")
	f.current(t)

	again, err := f.svc.AddPersonByEmail(ctx, f.org, "ada@acme.test", "Ada L")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	snap := f.current(t)
	assert.Len(t, snap.Profiles, 1)
}

func TestAssignAndUnassign(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	profile, err := f.svc.AddPersonByEmail(ctx, f.org, "ada@acme.test", "Ada")
	require.NoError(t, err)
	role, err := f.svc.CreateRole(ctx, f.org, "Treasurer")
	require.NoError(t, err)
	f.current(t)

	require.NoError(t, f.svc.AssignPerson(ctx, f.org, profile.ID, role.ID))
	require.NoError(t, f.svc.AssignPerson(ctx, f.org, profile.ID, role.ID)) // set semantics

	snap := f.current(t)
	assert.Len(t, snap.Assignments, 1)
	assert.True(t, snap.Assigned(role.ID, profile.ID))

	require.NoError(t, f.svc.UnassignPerson(ctx, f.org, profile.ID, role.ID))
	snap = f.current(t)
	assert.False(t, snap.Assigned(role.ID, profile.ID))
}

func TestAssignRejectsUnknownRows(t *testing.T) {
	f := newFixture(t)
	err := f.svc.AssignPerson(context.Background(), f.org, "missing", "also-missing")
	assert.Error(t, err)
}

func TestRemoveProfileDropsAssignments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	profile, err := f.svc.AddPersonByEmail(ctx, f.org, "ada@acme.test", "Ada")
	require.NoError(t, err)
	role, err := f.svc.CreateRole(ctx, f.org, "Treasurer")
	require.NoError(t, err)
	f.current(t)
	require.NoError(t, f.svc.AssignPerson(ctx, f.org, profile.ID, role.ID))
	f.current(t)

	require.NoError(t, f.svc.RemoveProfile(ctx, f.org, profile.ID))

	snap := f.current(t)
	assert.Nil(t, snap.Profile(profile.ID))
	assert.Empty(t, snap.Assignments)
}

func TestDeleteTeamDetachesRoles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	team, err := f.svc.CreateTeam(ctx, f.org, "Finance")
	require.NoError(t, err)
	role, err := f.svc.CreateRole(ctx, f.org, "Treasurer")
	require.NoError(t, err)
	f.current(t)
	require.NoError(t, f.svc.UpdateRoleTeam(ctx, f.org, role.ID, team.ID))
	f.current(t)

	require.NoError(t, f.svc.DeleteTeam(ctx, f.org, team.ID))

	snap := f.current(t)
	assert.Nil(t, snap.Team(team.ID))
	assert.Empty(t, snap.Role(role.ID).Team)
}

func TestCommentLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	role, err := f.svc.CreateRole(ctx, f.org, "Treasurer")
	require.NoError(t, err)
	f.current(t)

	comment, err := f.svc.AddComment(ctx, f.org, OwnerRole, role.ID, "p1", "needs a deputy")
	require.NoError(t, err)

	snap := f.current(t)
	require.Equal(t, []string{comment.ID}, snap.Role(role.ID).Comments)

	// bodies live outside the snapshot
	rows, err := f.svc.Comments(ctx, f.org, snap.Role(role.ID).Comments)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "needs a deputy", rows[0].What)

	require.NoError(t, f.svc.DeleteComment(ctx, f.org, OwnerRole, role.ID, comment.ID))
	snap = f.current(t)
	assert.Empty(t, snap.Role(role.ID).Comments)
	rows, err = f.svc.Comments(ctx, f.org, []string{comment.ID})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestUpdateChangePatchesOnlyGivenFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	change, err := f.svc.CreateChange(ctx, f.org, "p1", "flatten the hierarchy")
	require.NoError(t, err)
	f.current(t)

	status := models.StatusActive
	lead := "p2"
	require.NoError(t, f.svc.UpdateChange(ctx, f.org, change.ID, ChangeEdit{
		Status: &status,
		Lead:   &lead,
	}))

	snap := f.current(t)
	got := snap.Change(change.ID)
	require.NotNil(t, got)
	assert.Equal(t, models.StatusActive, got.Status)
	assert.Equal(t, "p2", got.Lead)
	assert.Equal(t, "flatten the hierarchy", got.What, "untouched fields survive")
}

func TestDeleteProcessRemovesSteps(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.process(t, "Payroll")
	root := f.current(t).Process(p.ID).RootStep
	f.stepUnder(t, root, 0)

	require.NoError(t, f.svc.DeleteProcess(ctx, f.org, p.ID))

	snap := f.current(t)
	assert.Nil(t, snap.Process(p.ID))
	assert.Empty(t, snap.StepsOfProcess(p.ID))
}
