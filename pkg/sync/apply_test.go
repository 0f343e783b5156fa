package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"org-sync-backend/pkg/models"
	"org-sync-backend/pkg/snapshot"
	"org-sync-backend/pkg/store"
)

func emptySnapshot() *snapshot.Snapshot {
	return snapshot.New(models.Organization{ID: "acme", Name: "Acme"},
		nil, nil, nil, nil, nil, nil, nil)
}

func TestApplyInsertUpdateDelete(t *testing.T) {
	snap := emptySnapshot()

	snap = Apply(snap, store.RoleChanged{
		Org: "acme", Kind: store.EventInsert, ID: "r1",
		Row: models.Role{ID: "r1", OrgID: "acme", Title: "Clerk"},
	})
	require.NotNil(t, snap.Role("r1"))

	snap = Apply(snap, store.RoleChanged{
		Org: "acme", Kind: store.EventUpdate, ID: "r1",
		Row: models.Role{ID: "r1", OrgID: "acme", Title: "Senior Clerk"},
	})
	assert.Equal(t, "Senior Clerk", snap.Role("r1").Title)
	assert.Len(t, snap.Roles, 1)

	snap = Apply(snap, store.RoleChanged{Org: "acme", Kind: store.EventDelete, ID: "r1"})
	assert.Nil(t, snap.Role("r1"))
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	before := emptySnapshot()
	after := Apply(before, store.TeamChanged{
		Org: "acme", Kind: store.EventInsert, ID: "t1",
		Row: models.Team{ID: "t1", OrgID: "acme", Name: "Ops"},
	})

	assert.Empty(t, before.Teams)
	assert.Len(t, after.Teams, 1)
}

func TestApplyAssignmentPair(t *testing.T) {
	snap := emptySnapshot()
	a := models.Assignment{OrgID: "acme", ProfileID: "p1", RoleID: "r1"}

	snap = Apply(snap, store.AssignmentChanged{
		Org: "acme", Kind: store.EventInsert, Row: a, RoleID: "r1", ProfileID: "p1",
	})
	assert.True(t, snap.Assigned("r1", "p1"))

	// duplicate insert keeps set semantics
	snap = Apply(snap, store.AssignmentChanged{
		Org: "acme", Kind: store.EventInsert, Row: a, RoleID: "r1", ProfileID: "p1",
	})
	assert.Len(t, snap.Assignments, 1)

	snap = Apply(snap, store.AssignmentChanged{
		Org: "acme", Kind: store.EventDelete, RoleID: "r1", ProfileID: "p1",
	})
	assert.False(t, snap.Assigned("r1", "p1"))
}

func TestApplyOrganizationUpdate(t *testing.T) {
	snap := emptySnapshot()
	snap = Apply(snap, store.OrganizationUpdated{
		Row: models.Organization{ID: "acme", Name: "Acme Reborn"},
	})
	assert.Equal(t, "Acme Reborn", snap.Organization.Name)
}
