package snapshot

import "org-sync-backend/pkg/models"

// Step tree helpers. The tree itself lives in the Children lists of the
// step rows; these functions only read the snapshot and compute child
// lists for the command layer to write back. All indices are clamped to
// [0, len]; an index equal to len means append.

// ParentOf finds the step whose child list contains id, or nil for the
// process root (and for unknown ids).
func (s *Snapshot) ParentOf(stepID string) *models.Step {
	for i := range s.Steps {
		for _, child := range s.Steps[i].Children {
			if child == stepID {
				return &s.Steps[i]
			}
		}
	}
	return nil
}

// ChildrenOf returns the ordered child list of a step, or nil when the
// step does not exist.
func (s *Snapshot) ChildrenOf(stepID string) []string {
	if step := s.Step(stepID); step != nil {
		return step.Children
	}
	return nil
}

// IsDescendant reports whether candidate is stepID itself or appears
// anywhere beneath it. Used to reject moves that would make a step its
// own ancestor.
func (s *Snapshot) IsDescendant(stepID, candidate string) bool {
	if stepID == candidate {
		return true
	}
	step := s.Step(stepID)
	if step == nil {
		return false
	}
	for _, child := range step.Children {
		if s.IsDescendant(child, candidate) {
			return true
		}
	}
	return false
}

// ClampIndex bounds an index to [0, length].
func ClampIndex(index, length int) int {
	if index < 0 {
		return 0
	}
	if index > length {
		return length
	}
	return index
}

// SpliceChildren returns a copy of children with id inserted at the
// clamped index. If id is already present it is removed first and the
// index is applied to the filtered list, so moving a node within its
// own parent is relative to the list without the moving element.
func SpliceChildren(children []string, id string, index int) []string {
	filtered := RemoveChild(children, id)
	index = ClampIndex(index, len(filtered))
	out := make([]string, 0, len(filtered)+1)
	out = append(out, filtered[:index]...)
	out = append(out, id)
	out = append(out, filtered[index:]...)
	return out
}

// RemoveChild returns a copy of children without id. Removing an absent
// id yields an equal copy.
func RemoveChild(children []string, id string) []string {
	out := make([]string, 0, len(children))
	for _, child := range children {
		if child != id {
			out = append(out, child)
		}
	}
	return out
}
