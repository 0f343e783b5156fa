package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeInsertCarriesRow(t *testing.T) {
	payload := []byte(`{
		"table": "roles",
		"kind": "insert",
		"orgid": "org-1",
		"id": "r1",
		"row": {"id": "r1", "orgid": "org-1", "title": "Treasurer", "short": ["tr"]}
	}`)

	ev, err := decodeNotification(payload)
	require.NoError(t, err)

	role, ok := ev.(RoleChanged)
	require.True(t, ok)
	assert.Equal(t, EventInsert, role.Kind)
	assert.Equal(t, "org-1", role.EventOrg())
	assert.Equal(t, "Treasurer", role.Row.Title)
	assert.Equal(t, []string{"tr"}, role.Row.Short)
}

func TestDecodeDeleteNeedsNoRow(t *testing.T) {
	payload := []byte(`{"table": "steps", "kind": "delete", "orgid": "org-1", "id": "s9"}`)

	ev, err := decodeNotification(payload)
	require.NoError(t, err)

	step, ok := ev.(StepChanged)
	require.True(t, ok)
	assert.Equal(t, EventDelete, step.Kind)
	assert.Equal(t, "s9", step.ID)
}

func TestDecodeAssignmentUsesPairKey(t *testing.T) {
	payload := []byte(`{"table": "assignments", "kind": "delete", "orgid": "org-1", "roleid": "r1", "profileid": "p1"}`)

	ev, err := decodeNotification(payload)
	require.NoError(t, err)

	a, ok := ev.(AssignmentChanged)
	require.True(t, ok)
	assert.Equal(t, "r1", a.RoleID)
	assert.Equal(t, "p1", a.ProfileID)
}

func TestDecodeTruncatedRowIsSkipped(t *testing.T) {
	// the trigger omits the row when it would exceed the payload cap
	payload := []byte(`{"table": "processes", "kind": "update", "orgid": "org-1", "id": "pr1"}`)

	ev, err := decodeNotification(payload)
	require.NoError(t, err)
	assert.Nil(t, ev)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := decodeNotification([]byte(`{not json`))
	assert.Error(t, err)

	_, err = decodeNotification([]byte(`{"table": "roles", "kind": "upsert", "orgid": "o"}`))
	assert.Error(t, err)
}
