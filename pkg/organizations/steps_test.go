package organizations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"org-sync-backend/pkg/models"
	"org-sync-backend/pkg/snapshot"
	"org-sync-backend/pkg/store"
	"org-sync-backend/pkg/sync"
)

type fixture struct {
	svc   *Service
	store *store.MemoryStore
	org   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := store.NewMemoryStore()
	st.PutOrganization(models.Organization{
		ID: "acme", Name: "Acme", Visibility: models.VisibilityOrg,
	})
	engine := sync.NewEngine(st)
	t.Cleanup(engine.Close)
	svc := NewService(st, engine)
	_, err := svc.Load(context.Background(), "acme")
	require.NoError(t, err)
	return &fixture{svc: svc, store: st, org: "acme"}
}

// current re-fetches the authoritative state so assertions never race
// the change feed.
func (f *fixture) current(t *testing.T) *snapshot.Snapshot {
	t.Helper()
	snap, err := f.svc.Engine().Refresh(context.Background(), f.org)
	require.NoError(t, err)
	return snap
}

func (f *fixture) process(t *testing.T, title string) *models.Process {
	t.Helper()
	p, err := f.svc.CreateProcess(context.Background(), f.org, title)
	require.NoError(t, err)
	return p
}

func (f *fixture) stepUnder(t *testing.T, parentID string, at int) string {
	t.Helper()
	st, err := f.svc.CreateStepUnder(context.Background(), f.org, parentID, at)
	require.NoError(t, err)
	f.current(t)
	return st.ID
}

func TestCreateProcessBuildsRootStep(t *testing.T) {
	f := newFixture(t)
	p := f.process(t, "Payroll")

	snap := f.current(t)
	got := snap.Process(p.ID)
	require.NotNil(t, got)
	require.NotEmpty(t, got.RootStep)

	root := snap.Step(got.RootStep)
	require.NotNil(t, root)
	assert.Equal(t, p.ID, root.ProcessID)
	assert.Empty(t, root.Children)
}

func TestCreateStepUnderSplicesAtIndex(t *testing.T) {
	f := newFixture(t)
	p := f.process(t, "Payroll")
	root := f.current(t).Process(p.ID).RootStep

	a := f.stepUnder(t, root, 0)
	b := f.stepUnder(t, root, 1)
	c := f.stepUnder(t, root, 1) // squeezes between a and b

	snap := f.current(t)
	assert.Equal(t, []string{a, c, b}, snap.Step(root).Children)
}

func TestMoveWithinParentUsesFilteredIndex(t *testing.T) {
	f := newFixture(t)
	p := f.process(t, "Payroll")
	root := f.current(t).Process(p.ID).RootStep

	var ids []string
	for i := 0; i < 5; i++ {
		ids = append(ids, f.stepUnder(t, root, i))
	}
	// [A,B,C,D,E]: moving C to the front
	c := ids[2]
	require.NoError(t, f.svc.MoveStep(context.Background(), f.org, c, root, 0))

	snap := f.current(t)
	assert.Equal(t, []string{c, ids[0], ids[1], ids[3], ids[4]}, snap.Step(root).Children)
}

func TestMoveAcrossParents(t *testing.T) {
	f := newFixture(t)
	p := f.process(t, "Payroll")
	s0 := f.current(t).Process(p.ID).RootStep
	s1 := f.stepUnder(t, s0, 0)
	s2 := f.stepUnder(t, s0, 1)

	require.NoError(t, f.svc.MoveStep(context.Background(), f.org, s2, s1, 0))

	snap := f.current(t)
	assert.Equal(t, []string{s1}, snap.Step(s0).Children)
	assert.Equal(t, []string{s2}, snap.Step(s1).Children)
}

func TestMoveUnderDescendantIsRejected(t *testing.T) {
	f := newFixture(t)
	p := f.process(t, "Payroll")
	s0 := f.current(t).Process(p.ID).RootStep
	s1 := f.stepUnder(t, s0, 0)
	s2 := f.stepUnder(t, s1, 0)

	err := f.svc.MoveStep(context.Background(), f.org, s1, s2, 0)
	assert.ErrorIs(t, err, ErrCycle)

	err = f.svc.MoveStep(context.Background(), f.org, s1, s1, 0)
	assert.ErrorIs(t, err, ErrCycle)

	// the tree is untouched
	snap := f.current(t)
	assert.Equal(t, []string{s1}, snap.Step(s0).Children)
	assert.Equal(t, []string{s2}, snap.Step(s1).Children)
}

func TestInsertStepUnderRelinksExistingStep(t *testing.T) {
	f := newFixture(t)
	p := f.process(t, "Payroll")
	root := f.current(t).Process(p.ID).RootStep
	s1 := f.stepUnder(t, root, 0)

	// Orphan a step row, then splice it back in elsewhere.
	orphan := models.Step{OrgID: f.org, ProcessID: p.ID, What: "stray"}
	require.NoError(t, f.store.InsertStep(context.Background(), &orphan))
	f.current(t)

	require.NoError(t, f.svc.InsertStepUnder(context.Background(), f.org, s1, orphan.ID, 0))

	snap := f.current(t)
	assert.Equal(t, []string{orphan.ID}, snap.Step(s1).Children)

	err := f.svc.InsertStepUnder(context.Background(), f.org, s1, "missing", 0)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteStepUnlinksBeforeDelete(t *testing.T) {
	f := newFixture(t)
	p := f.process(t, "Payroll")
	s0 := f.current(t).Process(p.ID).RootStep
	s1 := f.stepUnder(t, s0, 0)
	s2 := f.stepUnder(t, s0, 1)

	require.NoError(t, f.svc.DeleteStep(context.Background(), f.org, s1))

	snap := f.current(t)
	assert.Nil(t, snap.Step(s1))
	assert.Equal(t, []string{s2}, snap.Step(s0).Children)
}

func TestRootStepCannotBeMovedOrDeleted(t *testing.T) {
	f := newFixture(t)
	p := f.process(t, "Payroll")
	snap := f.current(t)
	root := snap.Process(p.ID).RootStep
	other := f.process(t, "Hiring")
	otherRoot := f.current(t).Process(other.ID).RootStep

	assert.ErrorIs(t, f.svc.DeleteStep(context.Background(), f.org, root), ErrRootStep)
	assert.ErrorIs(t, f.svc.MoveStep(context.Background(), f.org, root, otherRoot, 0), ErrRootStep)
}

// Tree integrity: after a pile of structural edits, every step except
// the roots sits in exactly one child list.
func TestTreeIntegrityUnderStructuralEdits(t *testing.T) {
	f := newFixture(t)
	p := f.process(t, "Payroll")
	root := f.current(t).Process(p.ID).RootStep

	a := f.stepUnder(t, root, 0)
	b := f.stepUnder(t, root, 1)
	c := f.stepUnder(t, a, 0)
	d := f.stepUnder(t, c, 0)

	ctx := context.Background()
	require.NoError(t, f.svc.MoveStep(ctx, f.org, c, b, 0))
	f.current(t)
	require.NoError(t, f.svc.MoveStep(ctx, f.org, d, root, 2))
	f.current(t)
	require.NoError(t, f.svc.DeleteStep(ctx, f.org, a))

	snap := f.current(t)
	seen := map[string]int{}
	for _, st := range snap.StepsOfProcess(p.ID) {
		for _, child := range st.Children {
			seen[child]++
		}
	}
	for _, st := range snap.StepsOfProcess(p.ID) {
		if st.ID == root {
			assert.Zero(t, seen[st.ID], "root must not be anyone's child")
			continue
		}
		assert.Equal(t, 1, seen[st.ID], "step %s must have exactly one parent", st.ID)
	}
	assert.Nil(t, snap.Step(a))
}

func TestStepRCIEdits(t *testing.T) {
	f := newFixture(t)
	p := f.process(t, "Payroll")
	root := f.current(t).Process(p.ID).RootStep
	s1 := f.stepUnder(t, root, 0)

	role, err := f.svc.CreateRole(context.Background(), f.org, "Treasurer")
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, f.svc.AddStepRCI(ctx, f.org, s1, RCIResponsible, role.ID))
	f.current(t)
	require.NoError(t, f.svc.AddStepRCI(ctx, f.org, s1, RCIResponsible, role.ID)) // idempotent
	f.current(t)
	require.NoError(t, f.svc.AddStepRCI(ctx, f.org, s1, RCIConsulted, role.ID))

	snap := f.current(t)
	assert.Equal(t, []string{role.ID}, snap.Step(s1).Responsible)
	assert.Equal(t, []string{role.ID}, snap.Step(s1).Consulted)

	require.NoError(t, f.svc.RemoveStepRCI(ctx, f.org, s1, RCIResponsible, role.ID))
	snap = f.current(t)
	assert.Empty(t, snap.Step(s1).Responsible)
}

func TestDeleteRoleScrubsStepLists(t *testing.T) {
	f := newFixture(t)
	p := f.process(t, "Payroll")
	root := f.current(t).Process(p.ID).RootStep
	s1 := f.stepUnder(t, root, 0)

	role, err := f.svc.CreateRole(context.Background(), f.org, "Treasurer")
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, f.svc.AddStepRCI(ctx, f.org, s1, RCIResponsible, role.ID))
	require.NoError(t, f.svc.AddStepRCI(ctx, f.org, s1, RCIInformed, role.ID))
	f.current(t)

	require.NoError(t, f.svc.DeleteRole(ctx, f.org, role.ID))

	snap := f.current(t)
	assert.Nil(t, snap.Role(role.ID))
	assert.Empty(t, snap.Step(s1).Responsible)
	assert.Empty(t, snap.Step(s1).Informed)
}
