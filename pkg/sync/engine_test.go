package sync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"org-sync-backend/pkg/models"
	"org-sync-backend/pkg/store"
)

func newEngineFixture(t *testing.T) (*Engine, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	st.PutOrganization(models.Organization{
		ID:         "acme",
		Name:       "Acme",
		Visibility: models.VisibilityOrg,
	})
	e := NewEngine(st)
	t.Cleanup(e.Close)
	return e, st
}

func TestSubscribeIsIdempotent(t *testing.T) {
	e, _ := newEngineFixture(t)

	require.NoError(t, e.Subscribe("acme"))
	require.NoError(t, e.Subscribe("acme"))
	assert.True(t, e.Subscribed("acme"))
}

func TestEventsBeforeFirstRefreshAreDropped(t *testing.T) {
	e, st := newEngineFixture(t)
	require.NoError(t, e.Subscribe("acme"))

	require.NoError(t, st.InsertRole(context.Background(), &models.Role{OrgID: "acme", Title: "Clerk"}))
	time.Sleep(20 * time.Millisecond)
	assert.Nil(t, e.Snapshot("acme"))

	snap, err := e.Refresh(context.Background(), "acme")
	require.NoError(t, err)
	assert.Len(t, snap.Roles, 1)
}

func TestEventsApplyAfterRefresh(t *testing.T) {
	e, st := newEngineFixture(t)
	require.NoError(t, e.Subscribe("acme"))
	_, err := e.Refresh(context.Background(), "acme")
	require.NoError(t, err)

	role := models.Role{OrgID: "acme", Title: "Treasurer"}
	require.NoError(t, st.InsertRole(context.Background(), &role))

	require.Eventually(t, func() bool {
		snap := e.Snapshot("acme")
		return snap != nil && snap.Role(role.ID) != nil
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, st.DeleteRole(context.Background(), role.ID))
	require.Eventually(t, func() bool {
		return e.Snapshot("acme").Role(role.ID) == nil
	}, time.Second, 5*time.Millisecond)
}

func TestUnsubscribeKeepsSnapshotReadable(t *testing.T) {
	e, st := newEngineFixture(t)
	require.NoError(t, e.Subscribe("acme"))
	_, err := e.Refresh(context.Background(), "acme")
	require.NoError(t, err)

	e.Unsubscribe("acme")
	assert.False(t, e.Subscribed("acme"))

	require.NoError(t, st.InsertTeam(context.Background(), &models.Team{OrgID: "acme", Name: "Ops"}))
	time.Sleep(20 * time.Millisecond)

	snap := e.Snapshot("acme")
	require.NotNil(t, snap)
	assert.Empty(t, snap.Teams, "detached snapshot must stop updating")
}

func TestRefreshRecoversMissedEvents(t *testing.T) {
	e, st := newEngineFixture(t)
	require.NoError(t, e.Subscribe("acme"))
	_, err := e.Refresh(context.Background(), "acme")
	require.NoError(t, err)

	// simulate a dropped notification
	st.SilenceFeed("acme", true)
	profile := models.Profile{OrgID: "acme", Name: "Ada"}
	require.NoError(t, st.InsertProfile(context.Background(), &profile))
	st.SilenceFeed("acme", false)

	time.Sleep(20 * time.Millisecond)
	assert.Nil(t, e.Snapshot("acme").Profile(profile.ID))

	snap, err := e.Refresh(context.Background(), "acme")
	require.NoError(t, err)
	assert.NotNil(t, snap.Profile(profile.ID))
}

func TestForgetDropsSnapshot(t *testing.T) {
	e, _ := newEngineFixture(t)
	require.NoError(t, e.Subscribe("acme"))
	_, err := e.Refresh(context.Background(), "acme")
	require.NoError(t, err)

	e.Forget("acme")
	assert.Nil(t, e.Snapshot("acme"))
	assert.False(t, e.Subscribed("acme"))
}

func TestListenCoalescesNudges(t *testing.T) {
	e, st := newEngineFixture(t)
	require.NoError(t, e.Subscribe("acme"))
	_, err := e.Refresh(context.Background(), "acme")
	require.NoError(t, err)

	ch := e.Listen("acme")
	defer e.Ignore(ch)

	for i := 0; i < 3; i++ {
		require.NoError(t, st.InsertTeam(context.Background(), &models.Team{OrgID: "acme", Name: "T"}))
	}

	select {
	case org := <-ch:
		assert.Equal(t, "acme", org)
	case <-time.After(time.Second):
		t.Fatal("expected a change nudge")
	}
}
