package sync

import (
	"org-sync-backend/pkg/snapshot"
	"org-sync-backend/pkg/store"
)

// Apply folds one change event into a snapshot and returns the
// result. The input snapshot is never mutated. Unknown events leave
// the snapshot as is.
func Apply(snap *snapshot.Snapshot, ev store.Event) *snapshot.Snapshot {
	switch e := ev.(type) {
	case store.OrganizationUpdated:
		return snap.WithOrganization(e.Row)
	case store.ProfileChanged:
		if e.Kind == store.EventDelete {
			return snap.WithoutProfile(e.ID)
		}
		return snap.WithProfile(e.Row)
	case store.RoleChanged:
		if e.Kind == store.EventDelete {
			return snap.WithoutRole(e.ID)
		}
		return snap.WithRole(e.Row)
	case store.TeamChanged:
		if e.Kind == store.EventDelete {
			return snap.WithoutTeam(e.ID)
		}
		return snap.WithTeam(e.Row)
	case store.AssignmentChanged:
		if e.Kind == store.EventDelete {
			return snap.WithoutAssignment(e.RoleID, e.ProfileID)
		}
		return snap.WithAssignment(e.Row)
	case store.ProcessChanged:
		if e.Kind == store.EventDelete {
			return snap.WithoutProcess(e.ID)
		}
		return snap.WithProcess(e.Row)
	case store.StepChanged:
		if e.Kind == store.EventDelete {
			return snap.WithoutStep(e.ID)
		}
		return snap.WithStep(e.Row)
	case store.ChangeChanged:
		if e.Kind == store.EventDelete {
			return snap.WithoutChange(e.ID)
		}
		return snap.WithChange(e.Row)
	default:
		return snap
	}
}
