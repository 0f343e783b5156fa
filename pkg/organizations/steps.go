package organizations

import (
	"context"
	"errors"
	"fmt"

	"org-sync-backend/pkg/models"
	"org-sync-backend/pkg/snapshot"
	"org-sync-backend/pkg/store"
)

// ErrCycle rejects a move that would put a step under itself or one
// of its own descendants.
var ErrCycle = errors.New("step cannot be moved under its own subtree")

// ErrRootStep rejects structural edits on a process's root step.
var ErrRootStep = errors.New("root step cannot be moved or deleted")

// CreateStepUnder makes a new step and splices it into the parent's
// child list at the given index. The row is written first; if the
// splice then fails the new step is an unreferenced orphan, never a
// dangling child id.
func (s *Service) CreateStepUnder(ctx context.Context, orgID, parentID string, atIndex int) (*models.Step, error) {
	snap, err := s.snap(ctx, orgID)
	if err != nil {
		return nil, err
	}
	parent := snap.Step(parentID)
	if parent == nil {
		return nil, fmt.Errorf("step %s: %w", parentID, store.ErrNotFound)
	}
	step := models.Step{OrgID: orgID, ProcessID: parent.ProcessID}
	if err := s.store.InsertStep(ctx, &step); err != nil {
		return nil, err
	}
	if err := s.spliceInto(ctx, *parent, step.ID, atIndex); err != nil {
		return nil, err
	}
	return &step, nil
}

// InsertStepUnder splices an already-existing step id into a parent,
// used when duplicating structure.
func (s *Service) InsertStepUnder(ctx context.Context, orgID, parentID, stepID string, atIndex int) error {
	snap, err := s.snap(ctx, orgID)
	if err != nil {
		return err
	}
	parent := snap.Step(parentID)
	if parent == nil {
		return fmt.Errorf("step %s: %w", parentID, store.ErrNotFound)
	}
	if snap.Step(stepID) == nil {
		return fmt.Errorf("step %s: %w", stepID, store.ErrNotFound)
	}
	return s.spliceInto(ctx, *parent, stepID, atIndex)
}

func (s *Service) spliceInto(ctx context.Context, parent models.Step, stepID string, atIndex int) error {
	parent.Children = snapshot.SpliceChildren(parent.Children, stepID, atIndex)
	return s.store.UpdateStep(ctx, parent)
}

// MoveStep relocates a step under a (possibly different) parent at
// the given index. Same-parent moves compute the index against the
// child list with the moving step already removed. Cross-parent moves
// write both parents in one transaction.
func (s *Service) MoveStep(ctx context.Context, orgID, stepID, toParentID string, atIndex int) error {
	snap, err := s.snap(ctx, orgID)
	if err != nil {
		return err
	}
	step := snap.Step(stepID)
	if step == nil {
		return fmt.Errorf("step %s: %w", stepID, store.ErrNotFound)
	}
	target := snap.Step(toParentID)
	if target == nil {
		return fmt.Errorf("step %s: %w", toParentID, store.ErrNotFound)
	}
	if snap.IsDescendant(stepID, toParentID) {
		return ErrCycle
	}

	from := snap.ParentOf(stepID)
	if from == nil {
		return ErrRootStep
	}

	if from.ID == toParentID {
		parent := *from
		parent.Children = snapshot.SpliceChildren(parent.Children, stepID, atIndex)
		return s.store.UpdateStep(ctx, parent)
	}

	oldParent := *from
	oldParent.Children = snapshot.RemoveChild(oldParent.Children, stepID)
	newParent := *target
	newParent.Children = snapshot.SpliceChildren(newParent.Children, stepID, atIndex)
	return s.store.UpdateSteps(ctx, oldParent, newParent)
}

// DeleteStep unlinks the step from its parent and deletes the row.
// Unlink comes first: a failure in between leaves an orphan row, not
// a child id pointing at nothing. The step's own subtree is orphaned
// with it.
func (s *Service) DeleteStep(ctx context.Context, orgID, stepID string) error {
	snap, err := s.snap(ctx, orgID)
	if err != nil {
		return err
	}
	if snap.Step(stepID) == nil {
		return fmt.Errorf("step %s: %w", stepID, store.ErrNotFound)
	}
	parent := snap.ParentOf(stepID)
	if parent == nil {
		return ErrRootStep
	}
	unlinked := *parent
	unlinked.Children = snapshot.RemoveChild(unlinked.Children, stepID)
	return s.store.UnlinkAndDeleteStep(ctx, unlinked, stepID)
}

// Field edits

func (s *Service) UpdateStepText(ctx context.Context, orgID, stepID, what string) error {
	return s.updateStep(ctx, orgID, stepID, func(st *models.Step) { st.What = what })
}

func (s *Service) UpdateStepVisibility(ctx context.Context, orgID, stepID string, v models.Visibility) error {
	return s.updateStep(ctx, orgID, stepID, func(st *models.Step) { st.Visibility = v })
}

func (s *Service) UpdateStepCompletion(ctx context.Context, orgID, stepID string, done models.Completion) error {
	return s.updateStep(ctx, orgID, stepID, func(st *models.Step) { st.Done = done })
}

// RCIKind selects one of a step's role lists.
type RCIKind string

const (
	RCIResponsible RCIKind = "responsible"
	RCIConsulted   RCIKind = "consulted"
	RCIInformed    RCIKind = "informed"
)

func (s *Service) AddStepRCI(ctx context.Context, orgID, stepID string, kind RCIKind, roleID string) error {
	return s.updateStep(ctx, orgID, stepID, func(st *models.Step) {
		list := rciList(st, kind)
		for _, id := range *list {
			if id == roleID {
				return
			}
		}
		*list = append(append([]string(nil), *list...), roleID)
	})
}

func (s *Service) RemoveStepRCI(ctx context.Context, orgID, stepID string, kind RCIKind, roleID string) error {
	return s.updateStep(ctx, orgID, stepID, func(st *models.Step) {
		list := rciList(st, kind)
		out := make([]string, 0, len(*list))
		for _, id := range *list {
			if id != roleID {
				out = append(out, id)
			}
		}
		*list = out
	})
}

func rciList(st *models.Step, kind RCIKind) *[]string {
	switch kind {
	case RCIConsulted:
		return &st.Consulted
	case RCIInformed:
		return &st.Informed
	default:
		return &st.Responsible
	}
}

func (s *Service) updateStep(ctx context.Context, orgID, stepID string, edit func(*models.Step)) error {
	snap, err := s.snap(ctx, orgID)
	if err != nil {
		return err
	}
	st := snap.Step(stepID)
	if st == nil {
		return fmt.Errorf("step %s: %w", stepID, store.ErrNotFound)
	}
	row := *st
	edit(&row)
	return s.store.UpdateStep(ctx, row)
}
