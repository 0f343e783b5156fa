package organizations

import (
	"context"
	"fmt"

	"org-sync-backend/pkg/models"
	"org-sync-backend/pkg/store"
)

// CommentOwner names the entity a comment hangs off.
type CommentOwner string

const (
	OwnerOrganization CommentOwner = "organization"
	OwnerRole         CommentOwner = "role"
	OwnerTeam         CommentOwner = "team"
	OwnerProcess      CommentOwner = "process"
	OwnerChange       CommentOwner = "change"
)

// AddComment inserts the comment row, then appends its id to the
// owner's comment list. Comment bodies are not part of the snapshot;
// only the id lists travel with it.
func (s *Service) AddComment(ctx context.Context, orgID string, owner CommentOwner, ownerID, who, what string) (*models.Comment, error) {
	comment := models.Comment{OrgID: orgID, Who: who, What: what}
	if err := s.store.InsertComment(ctx, &comment); err != nil {
		return nil, err
	}
	if err := s.editOwnerComments(ctx, orgID, owner, ownerID, func(ids []string) []string {
		return append(append([]string(nil), ids...), comment.ID)
	}); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (s *Service) UpdateComment(ctx context.Context, orgID, commentID, what string) error {
	return s.store.UpdateComment(ctx, models.Comment{ID: commentID, OrgID: orgID, What: what})
}

// DeleteComment unlinks the id from its owner before deleting the
// row, the same order the step tree uses.
func (s *Service) DeleteComment(ctx context.Context, orgID string, owner CommentOwner, ownerID, commentID string) error {
	if err := s.editOwnerComments(ctx, orgID, owner, ownerID, func(ids []string) []string {
		out := make([]string, 0, len(ids))
		for _, id := range ids {
			if id != commentID {
				out = append(out, id)
			}
		}
		return out
	}); err != nil {
		return err
	}
	return s.store.DeleteComment(ctx, commentID)
}

// Comments resolves comment ids to rows, on demand.
func (s *Service) Comments(ctx context.Context, orgID string, ids []string) ([]models.Comment, error) {
	return s.store.GetComments(ctx, orgID, ids)
}

func (s *Service) editOwnerComments(ctx context.Context, orgID string, owner CommentOwner, ownerID string, edit func([]string) []string) error {
	snap, err := s.snap(ctx, orgID)
	if err != nil {
		return err
	}
	switch owner {
	case OwnerOrganization:
		org := snap.Organization
		org.Comments = edit(org.Comments)
		return s.store.UpdateOrganization(ctx, org)
	case OwnerRole:
		r := snap.Role(ownerID)
		if r == nil {
			return fmt.Errorf("role %s: %w", ownerID, store.ErrNotFound)
		}
		row := *r
		row.Comments = edit(row.Comments)
		return s.store.UpdateRole(ctx, row)
	case OwnerTeam:
		t := snap.Team(ownerID)
		if t == nil {
			return fmt.Errorf("team %s: %w", ownerID, store.ErrNotFound)
		}
		row := *t
		row.Comments = edit(row.Comments)
		return s.store.UpdateTeam(ctx, row)
	case OwnerProcess:
		p := snap.Process(ownerID)
		if p == nil {
			return fmt.Errorf("process %s: %w", ownerID, store.ErrNotFound)
		}
		row := *p
		row.Comments = edit(row.Comments)
		return s.store.UpdateProcess(ctx, row)
	case OwnerChange:
		c := snap.Change(ownerID)
		if c == nil {
			return fmt.Errorf("change %s: %w", ownerID, store.ErrNotFound)
		}
		row := *c
		row.Comments = edit(row.Comments)
		return s.store.UpdateChange(ctx, row)
	default:
		return fmt.Errorf("unknown comment owner %q", owner)
	}
}
