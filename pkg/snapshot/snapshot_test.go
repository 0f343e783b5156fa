package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"org-sync-backend/pkg/models"
)

func testSnapshot() *Snapshot {
	return New(
		models.Organization{ID: "acme", Name: "Acme"},
		[]models.Profile{
			{ID: "p1", OrgID: "acme", Name: "Ada", Email: "ada@acme.test", Admin: true},
			{ID: "p2", OrgID: "acme", Name: "Grace", Email: "grace@acme.test"},
		},
		[]models.Role{
			{ID: "r1", OrgID: "acme", Title: "Chair"},
			{ID: "r2", OrgID: "acme", Title: "Treasurer", Team: "t1"},
		},
		[]models.Assignment{
			{OrgID: "acme", ProfileID: "p1", RoleID: "r1"},
		},
		[]models.Team{
			{ID: "t1", OrgID: "acme", Name: "Finance"},
		},
		[]models.Process{
			{ID: "proc1", OrgID: "acme", Title: "Budgeting", Accountable: "r2", RootStep: "s0"},
			{ID: "proc2", OrgID: "acme", Title: "Onboarding", RootStep: "s3"},
		},
		[]models.Step{
			{ID: "s0", OrgID: "acme", ProcessID: "proc1", Children: []string{"s1", "s2"}},
			{ID: "s1", OrgID: "acme", ProcessID: "proc1", Responsible: []string{"r1"}},
			{ID: "s2", OrgID: "acme", ProcessID: "proc1"},
			{ID: "s3", OrgID: "acme", ProcessID: "proc2"},
		},
		[]models.Change{
			{ID: "c1", OrgID: "acme", Who: "p1", What: "Rename treasurer", Lead: "p2"},
		},
	)
}

func TestUpsertReplacesById(t *testing.T) {
	snap := testSnapshot()

	next := snap.WithRole(models.Role{ID: "r1", OrgID: "acme", Title: "Chairperson"})

	require.Len(t, next.Roles, 2)
	assert.Equal(t, "Chairperson", next.Role("r1").Title)
	// the previous snapshot is untouched
	assert.Equal(t, "Chair", snap.Role("r1").Title)
}

func TestUpsertAppendsWhenAbsent(t *testing.T) {
	snap := testSnapshot()

	next := snap.WithRole(models.Role{ID: "r3", OrgID: "acme", Title: "Secretary"})

	assert.Len(t, next.Roles, 3)
	assert.Len(t, snap.Roles, 2)
}

func TestUpsertIdempotence(t *testing.T) {
	snap := testSnapshot()
	role := models.Role{ID: "r1", OrgID: "acme", Title: "Chairperson"}

	once := snap.WithRole(role)
	twice := once.WithRole(role)

	assert.Equal(t, once.Roles, twice.Roles)
}

func TestWithoutRemovesAndIgnoresAbsent(t *testing.T) {
	snap := testSnapshot()

	next := snap.WithoutTeam("t1")
	assert.Nil(t, next.Team("t1"))
	assert.NotNil(t, snap.Team("t1"))

	// removing an id that is not there is a no-op, not an error
	same := next.WithoutTeam("t1")
	assert.Empty(t, same.Teams)
}

func TestAssignmentSetSemantics(t *testing.T) {
	snap := testSnapshot()
	a := models.Assignment{OrgID: "acme", ProfileID: "p2", RoleID: "r2"}

	next := snap.WithAssignment(a).WithAssignment(a)

	count := 0
	for _, got := range next.Assignments {
		if got.RoleID == "r2" && got.ProfileID == "p2" {
			count++
		}
	}
	assert.Equal(t, 1, count)

	// removing a pair that does not exist is a no-op
	assert.Len(t, next.WithoutAssignment("r9", "p9").Assignments, len(next.Assignments))

	removed := next.WithoutAssignment("r2", "p2")
	assert.False(t, removed.Assigned("r2", "p2"))
	assert.True(t, next.Assigned("r2", "p2"))
}

func TestRolesOfProfileAndProfilesOfRole(t *testing.T) {
	snap := testSnapshot()

	roles := snap.RolesOfProfile("p1")
	require.Len(t, roles, 1)
	assert.Equal(t, "r1", roles[0].ID)

	profiles := snap.ProfilesOfRole("r1")
	require.Len(t, profiles, 1)
	assert.Equal(t, "p1", profiles[0].ID)

	assert.Empty(t, snap.RolesOfProfile("p2"))
}

func TestProcessesOfRole(t *testing.T) {
	snap := testSnapshot()

	// r2 is accountable for proc1; r1 is responsible on a step of proc1
	accountable := snap.ProcessesOfRole("r2")
	require.Len(t, accountable, 1)
	assert.Equal(t, "proc1", accountable[0].ID)

	viaStep := snap.ProcessesOfRole("r1")
	require.Len(t, viaStep, 1)
	assert.Equal(t, "proc1", viaStep[0].ID)

	assert.Empty(t, snap.ProcessesOfRole("r9"))
}

func TestStepsOfProcessAndParentOf(t *testing.T) {
	snap := testSnapshot()

	steps := snap.StepsOfProcess("proc1")
	assert.Len(t, steps, 3)

	parent := snap.ParentOf("s1")
	require.NotNil(t, parent)
	assert.Equal(t, "s0", parent.ID)

	// process roots have no parent
	assert.Nil(t, snap.ParentOf("s0"))
}

func TestDerivedLookups(t *testing.T) {
	snap := testSnapshot()

	assert.Equal(t, "p1", snap.ProfileWithEmail("ada@acme.test").ID)
	assert.Nil(t, snap.ProfileWithEmail("nobody@acme.test"))

	admins := snap.AdminProfiles()
	require.Len(t, admins, 1)
	assert.Equal(t, "p1", admins[0].ID)

	roles := snap.TeamRoles("t1")
	require.Len(t, roles, 1)
	assert.Equal(t, "r2", roles[0].ID)

	led := snap.ChangesLedBy("p2")
	require.Len(t, led, 1)
	assert.Equal(t, "c1", led[0].ID)
}

func TestSpliceChildrenSameParentMove(t *testing.T) {
	// Moving C from index 2 to index 0 in [A,B,C,D,E] yields [C,A,B,D,E].
	children := []string{"A", "B", "C", "D", "E"}

	moved := SpliceChildren(children, "C", 0)

	assert.Equal(t, []string{"C", "A", "B", "D", "E"}, moved)
	// index is relative to the list without the moving element
	assert.Equal(t, []string{"A", "B", "D", "E", "C"}, SpliceChildren(children, "C", 4))
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, children, "input not mutated")
}

func TestSpliceChildrenClampsIndex(t *testing.T) {
	children := []string{"A", "B"}

	assert.Equal(t, []string{"X", "A", "B"}, SpliceChildren(children, "X", -3))
	assert.Equal(t, []string{"A", "B", "X"}, SpliceChildren(children, "X", 99))
	assert.Equal(t, []string{"A", "B", "X"}, SpliceChildren(children, "X", 2), "index == length appends")
}

func TestIsDescendant(t *testing.T) {
	snap := testSnapshot()

	assert.True(t, snap.IsDescendant("s0", "s0"), "a step is its own descendant for move purposes")
	assert.True(t, snap.IsDescendant("s0", "s1"))
	assert.False(t, snap.IsDescendant("s1", "s0"))
	assert.False(t, snap.IsDescendant("s1", "s2"))
}
