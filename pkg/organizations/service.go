package organizations

import (
	"context"
	"fmt"
	"strings"

	"org-sync-backend/pkg/models"
	"org-sync-backend/pkg/snapshot"
	"org-sync-backend/pkg/store"
	"org-sync-backend/pkg/sync"
)

// Service carries the mutation commands of the application. Every
// command is a typed write against the store; the cache catches up
// through the change feed, except where a command needs its result
// immediately and refreshes on the spot.
type Service struct {
	store  store.Store
	engine *sync.Engine
}

func NewService(st store.Store, engine *sync.Engine) *Service {
	return &Service{store: st, engine: engine}
}

func (s *Service) Engine() *sync.Engine { return s.engine }

// Load makes sure the org is subscribed and has a cached snapshot,
// fetching one if needed. This is the read-path entry point.
func (s *Service) Load(ctx context.Context, orgID string) (*snapshot.Snapshot, error) {
	if err := s.engine.Subscribe(orgID); err != nil {
		return nil, err
	}
	if snap := s.engine.Snapshot(orgID); snap != nil {
		return snap, nil
	}
	return s.engine.Refresh(ctx, orgID)
}

// snap returns the current snapshot, refreshing when the cache is
// cold. Mutation commands use it to read the rows they rewrite.
func (s *Service) snap(ctx context.Context, orgID string) (*snapshot.Snapshot, error) {
	if snap := s.engine.Snapshot(orgID); snap != nil {
		return snap, nil
	}
	return s.engine.Refresh(ctx, orgID)
}

// Organization

func (s *Service) UpdateOrgName(ctx context.Context, orgID, name string) error {
	return s.updateOrg(ctx, orgID, func(org *models.Organization) { org.Name = name })
}

func (s *Service) UpdateOrgDescription(ctx context.Context, orgID, description string) error {
	return s.updateOrg(ctx, orgID, func(org *models.Organization) { org.Description = description })
}

func (s *Service) UpdateOrgVisibility(ctx context.Context, orgID string, v models.Visibility) error {
	return s.updateOrg(ctx, orgID, func(org *models.Organization) { org.Visibility = v })
}

func (s *Service) updateOrg(ctx context.Context, orgID string, edit func(*models.Organization)) error {
	snap, err := s.snap(ctx, orgID)
	if err != nil {
		return err
	}
	org := snap.Organization
	edit(&org)
	return s.store.UpdateOrganization(ctx, org)
}

// Profiles

// AddPersonByEmail creates a membership profile for an email address.
// The profile stays unclaimed (no person id) until that person signs
// up and links it.
func (s *Service) AddPersonByEmail(ctx context.Context, orgID, email, name string) (*models.Profile, error) {
	snap, err := s.snap(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if existing := snap.ProfileWithEmail(email); existing != nil {
		return existing, nil
	}
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	profile := models.Profile{OrgID: orgID, Email: email, Name: name}
	if err := s.store.InsertProfile(ctx, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *Service) RemoveProfile(ctx context.Context, orgID, profileID string) error {
	snap, err := s.snap(ctx, orgID)
	if err != nil {
		return err
	}
	// drop the membership's role assignments first
	for _, a := range snap.Assignments {
		if a.ProfileID == profileID {
			if err := s.store.DeleteAssignment(ctx, orgID, a.ProfileID, a.RoleID); err != nil {
				return err
			}
		}
	}
	return s.store.DeleteProfile(ctx, profileID)
}

func (s *Service) UpdateProfileName(ctx context.Context, orgID, profileID, name string) error {
	return s.updateProfile(ctx, orgID, profileID, func(p *models.Profile) { p.Name = name })
}

func (s *Service) UpdateProfileBio(ctx context.Context, orgID, profileID, bio string) error {
	return s.updateProfile(ctx, orgID, profileID, func(p *models.Profile) { p.Bio = bio })
}

func (s *Service) UpdateProfileAdmin(ctx context.Context, orgID, profileID string, admin bool) error {
	return s.updateProfile(ctx, orgID, profileID, func(p *models.Profile) { p.Admin = admin })
}

func (s *Service) UpdateProfileSupervisor(ctx context.Context, orgID, profileID, supervisorID string) error {
	return s.updateProfile(ctx, orgID, profileID, func(p *models.Profile) { p.Supervisor = supervisorID })
}

func (s *Service) updateProfile(ctx context.Context, orgID, profileID string, edit func(*models.Profile)) error {
	snap, err := s.snap(ctx, orgID)
	if err != nil {
		return err
	}
	p := snap.Profile(profileID)
	if p == nil {
		return fmt.Errorf("profile %s: %w", profileID, store.ErrNotFound)
	}
	row := *p
	edit(&row)
	return s.store.UpdateProfile(ctx, row)
}

// Roles

// CreateRole refreshes after the insert because role creation flows
// straight into assignment in the UI.
func (s *Service) CreateRole(ctx context.Context, orgID, title string) (*models.Role, error) {
	role := models.Role{OrgID: orgID, Title: title}
	if err := s.store.InsertRole(ctx, &role); err != nil {
		return nil, err
	}
	if _, err := s.engine.Refresh(ctx, orgID); err != nil {
		return nil, err
	}
	return &role, nil
}

func (s *Service) UpdateRoleTitle(ctx context.Context, orgID, roleID, title string) error {
	return s.updateRole(ctx, orgID, roleID, func(r *models.Role) { r.Title = title })
}

func (s *Service) UpdateRoleDescription(ctx context.Context, orgID, roleID, description string) error {
	return s.updateRole(ctx, orgID, roleID, func(r *models.Role) { r.Description = description })
}

func (s *Service) UpdateRoleTeam(ctx context.Context, orgID, roleID, teamID string) error {
	return s.updateRole(ctx, orgID, roleID, func(r *models.Role) { r.Team = teamID })
}

func (s *Service) UpdateRoleShortName(ctx context.Context, orgID, roleID string, short []string) error {
	return s.updateRole(ctx, orgID, roleID, func(r *models.Role) { r.Short = short })
}

func (s *Service) updateRole(ctx context.Context, orgID, roleID string, edit func(*models.Role)) error {
	snap, err := s.snap(ctx, orgID)
	if err != nil {
		return err
	}
	r := snap.Role(roleID)
	if r == nil {
		return fmt.Errorf("role %s: %w", roleID, store.ErrNotFound)
	}
	row := *r
	edit(&row)
	return s.store.UpdateRole(ctx, row)
}

// DeleteRole scrubs the role out of every step's RCI lists and drops
// its assignments before deleting the row, so no step ever points at
// a role that is gone.
func (s *Service) DeleteRole(ctx context.Context, orgID, roleID string) error {
	snap, err := s.snap(ctx, orgID)
	if err != nil {
		return err
	}
	for _, st := range snap.Steps {
		scrubbed, changed := scrubRole(st, roleID)
		if !changed {
			continue
		}
		if err := s.store.UpdateStep(ctx, scrubbed); err != nil {
			return err
		}
	}
	for _, a := range snap.Assignments {
		if a.RoleID == roleID {
			if err := s.store.DeleteAssignment(ctx, orgID, a.ProfileID, a.RoleID); err != nil {
				return err
			}
		}
	}
	return s.store.DeleteRole(ctx, roleID)
}

func scrubRole(st models.Step, roleID string) (models.Step, bool) {
	changed := false
	filter := func(ids []string) []string {
		out := make([]string, 0, len(ids))
		for _, id := range ids {
			if id == roleID {
				changed = true
				continue
			}
			out = append(out, id)
		}
		return out
	}
	st.Responsible = filter(st.Responsible)
	st.Consulted = filter(st.Consulted)
	st.Informed = filter(st.Informed)
	return st, changed
}

// Teams

func (s *Service) CreateTeam(ctx context.Context, orgID, name string) (*models.Team, error) {
	team := models.Team{OrgID: orgID, Name: name}
	if err := s.store.InsertTeam(ctx, &team); err != nil {
		return nil, err
	}
	return &team, nil
}

func (s *Service) UpdateTeamName(ctx context.Context, orgID, teamID, name string) error {
	return s.updateTeam(ctx, orgID, teamID, func(t *models.Team) { t.Name = name })
}

func (s *Service) UpdateTeamDescription(ctx context.Context, orgID, teamID, description string) error {
	return s.updateTeam(ctx, orgID, teamID, func(t *models.Team) { t.Description = description })
}

func (s *Service) updateTeam(ctx context.Context, orgID, teamID string, edit func(*models.Team)) error {
	snap, err := s.snap(ctx, orgID)
	if err != nil {
		return err
	}
	t := snap.Team(teamID)
	if t == nil {
		return fmt.Errorf("team %s: %w", teamID, store.ErrNotFound)
	}
	row := *t
	edit(&row)
	return s.store.UpdateTeam(ctx, row)
}

// DeleteTeam detaches the team's roles before removing the row.
func (s *Service) DeleteTeam(ctx context.Context, orgID, teamID string) error {
	snap, err := s.snap(ctx, orgID)
	if err != nil {
		return err
	}
	for _, r := range snap.TeamRoles(teamID) {
		row := r
		row.Team = ""
		if err := s.store.UpdateRole(ctx, row); err != nil {
			return err
		}
	}
	return s.store.DeleteTeam(ctx, teamID)
}

// Assignments

func (s *Service) AssignPerson(ctx context.Context, orgID, profileID, roleID string) error {
	snap, err := s.snap(ctx, orgID)
	if err != nil {
		return err
	}
	if snap.Profile(profileID) == nil {
		return fmt.Errorf("profile %s: %w", profileID, store.ErrNotFound)
	}
	if snap.Role(roleID) == nil {
		return fmt.Errorf("role %s: %w", roleID, store.ErrNotFound)
	}
	return s.store.InsertAssignment(ctx, models.Assignment{
		OrgID: orgID, ProfileID: profileID, RoleID: roleID,
	})
}

func (s *Service) UnassignPerson(ctx context.Context, orgID, profileID, roleID string) error {
	return s.store.DeleteAssignment(ctx, orgID, profileID, roleID)
}

// Processes

// CreateProcess is three writes: the process row, its root step, and
// the back-pointer from process to root. A refresh follows so the
// caller sees the finished structure.
func (s *Service) CreateProcess(ctx context.Context, orgID, title string) (*models.Process, error) {
	process := models.Process{OrgID: orgID, Title: title}
	if err := s.store.InsertProcess(ctx, &process); err != nil {
		return nil, err
	}
	root := models.Step{OrgID: orgID, ProcessID: process.ID}
	if err := s.store.InsertStep(ctx, &root); err != nil {
		return nil, err
	}
	process.RootStep = root.ID
	if err := s.store.UpdateProcess(ctx, process); err != nil {
		return nil, err
	}
	if _, err := s.engine.Refresh(ctx, orgID); err != nil {
		return nil, err
	}
	return &process, nil
}

func (s *Service) UpdateProcessTitle(ctx context.Context, orgID, processID, title string) error {
	return s.updateProcess(ctx, orgID, processID, func(p *models.Process) { p.Title = title })
}

func (s *Service) UpdateProcessConcern(ctx context.Context, orgID, processID, concern string) error {
	return s.updateProcess(ctx, orgID, processID, func(p *models.Process) { p.Concern = concern })
}

func (s *Service) UpdateProcessState(ctx context.Context, orgID, processID string, state models.State) error {
	return s.updateProcess(ctx, orgID, processID, func(p *models.Process) { p.State = state })
}

func (s *Service) UpdateProcessAccountable(ctx context.Context, orgID, processID, roleID string) error {
	return s.updateProcess(ctx, orgID, processID, func(p *models.Process) { p.Accountable = roleID })
}

func (s *Service) UpdateProcessShortName(ctx context.Context, orgID, processID string, short []string) error {
	return s.updateProcess(ctx, orgID, processID, func(p *models.Process) { p.Short = short })
}

func (s *Service) updateProcess(ctx context.Context, orgID, processID string, edit func(*models.Process)) error {
	snap, err := s.snap(ctx, orgID)
	if err != nil {
		return err
	}
	p := snap.Process(processID)
	if p == nil {
		return fmt.Errorf("process %s: %w", processID, store.ErrNotFound)
	}
	row := *p
	edit(&row)
	return s.store.UpdateProcess(ctx, row)
}

// DeleteProcess removes the process and all of its steps.
func (s *Service) DeleteProcess(ctx context.Context, orgID, processID string) error {
	snap, err := s.snap(ctx, orgID)
	if err != nil {
		return err
	}
	if snap.Process(processID) == nil {
		return fmt.Errorf("process %s: %w", processID, store.ErrNotFound)
	}
	if err := s.store.DeleteProcess(ctx, processID); err != nil {
		return err
	}
	for _, st := range snap.StepsOfProcess(processID) {
		if err := s.store.DeleteStep(ctx, st.ID); err != nil {
			return err
		}
	}
	return nil
}

// Changes

func (s *Service) CreateChange(ctx context.Context, orgID, who, what string) (*models.Change, error) {
	change := models.Change{OrgID: orgID, Who: who, What: what, Visibility: models.VisibilityOrg}
	if err := s.store.InsertChange(ctx, &change); err != nil {
		return nil, err
	}
	return &change, nil
}

// ChangeEdit holds optional field updates for a change; nil fields
// are left alone.
type ChangeEdit struct {
	What        *string
	Description *string
	Proposal    *string
	Review      *string
	Status      *models.Status
	Lead        *string
	Visibility  *models.Visibility
	Roles       *[]string
	Processes   *[]string
}

func (s *Service) UpdateChange(ctx context.Context, orgID, changeID string, edit ChangeEdit) error {
	snap, err := s.snap(ctx, orgID)
	if err != nil {
		return err
	}
	c := snap.Change(changeID)
	if c == nil {
		return fmt.Errorf("change %s: %w", changeID, store.ErrNotFound)
	}
	row := *c
	if edit.What != nil {
		row.What = *edit.What
	}
	if edit.Description != nil {
		row.Description = *edit.Description
	}
	if edit.Proposal != nil {
		row.Proposal = *edit.Proposal
	}
	if edit.Review != nil {
		row.Review = *edit.Review
	}
	if edit.Status != nil {
		row.Status = *edit.Status
	}
	if edit.Lead != nil {
		row.Lead = *edit.Lead
	}
	if edit.Visibility != nil {
		row.Visibility = *edit.Visibility
	}
	if edit.Roles != nil {
		row.Roles = *edit.Roles
	}
	if edit.Processes != nil {
		row.Processes = *edit.Processes
	}
	return s.store.UpdateChange(ctx, row)
}

func (s *Service) DeleteChange(ctx context.Context, orgID, changeID string) error {
	return s.store.DeleteChange(ctx, changeID)
}
