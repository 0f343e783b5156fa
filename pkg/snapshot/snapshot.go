package snapshot

import "org-sync-backend/pkg/models"

// Snapshot is an immutable copy of one organization's full entity set.
// Transformations never mutate a Snapshot in place; they return a new
// one sharing unchanged slices, so a snapshot handed to a reader stays
// valid for as long as the reader holds it.
//
// The fields are exported for serialization and iteration but must be
// treated as read-only by every caller.
type Snapshot struct {
	Organization models.Organization `json:"organization"`
	Profiles     []models.Profile    `json:"profiles"`
	Roles        []models.Role       `json:"roles"`
	Assignments  []models.Assignment `json:"assignments"`
	Teams        []models.Team       `json:"teams"`
	Processes    []models.Process    `json:"processes"`
	Steps        []models.Step       `json:"steps"`
	Changes      []models.Change     `json:"changes"`
}

// New builds a snapshot from freshly fetched rows.
func New(
	org models.Organization,
	profiles []models.Profile,
	roles []models.Role,
	assignments []models.Assignment,
	teams []models.Team,
	processes []models.Process,
	steps []models.Step,
	changes []models.Change,
) *Snapshot {
	return &Snapshot{
		Organization: org,
		Profiles:     profiles,
		Roles:        roles,
		Assignments:  assignments,
		Teams:        teams,
		Processes:    processes,
		Steps:        steps,
		Changes:      changes,
	}
}

// OrgID returns the id of the organization this snapshot belongs to.
func (s *Snapshot) OrgID() string {
	return s.Organization.ID
}

// upsert replaces the first row matching match with row, or appends row
// if no match exists. Remote change feeds may deliver an INSERT or an
// UPDATE for what is logically the same upsert; callers must not care
// which.
func upsert[T any](rows []T, row T, match func(T) bool) []T {
	out := make([]T, len(rows))
	copy(out, rows)
	for i := range out {
		if match(out[i]) {
			out[i] = row
			return out
		}
	}
	return append(out, row)
}

// remove filters out every row matching match. Removing an absent row
// yields an identical (but fresh) slice, not an error.
func remove[T any](rows []T, match func(T) bool) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if !match(r) {
			out = append(out, r)
		}
	}
	return out
}

// WithOrganization replaces the organization row.
func (s *Snapshot) WithOrganization(org models.Organization) *Snapshot {
	next := *s
	next.Organization = org
	return &next
}

// WithProfile upserts a profile by id.
func (s *Snapshot) WithProfile(p models.Profile) *Snapshot {
	next := *s
	next.Profiles = upsert(s.Profiles, p, func(r models.Profile) bool { return r.ID == p.ID })
	return &next
}

// WithoutProfile removes a profile by id.
func (s *Snapshot) WithoutProfile(id string) *Snapshot {
	next := *s
	next.Profiles = remove(s.Profiles, func(r models.Profile) bool { return r.ID == id })
	return &next
}

// WithRole upserts a role by id.
func (s *Snapshot) WithRole(role models.Role) *Snapshot {
	next := *s
	next.Roles = upsert(s.Roles, role, func(r models.Role) bool { return r.ID == role.ID })
	return &next
}

// WithoutRole removes a role by id.
func (s *Snapshot) WithoutRole(id string) *Snapshot {
	next := *s
	next.Roles = remove(s.Roles, func(r models.Role) bool { return r.ID == id })
	return &next
}

// WithTeam upserts a team by id.
func (s *Snapshot) WithTeam(team models.Team) *Snapshot {
	next := *s
	next.Teams = upsert(s.Teams, team, func(r models.Team) bool { return r.ID == team.ID })
	return &next
}

// WithoutTeam removes a team by id.
func (s *Snapshot) WithoutTeam(id string) *Snapshot {
	next := *s
	next.Teams = remove(s.Teams, func(r models.Team) bool { return r.ID == id })
	return &next
}

// WithProcess upserts a process by id.
func (s *Snapshot) WithProcess(p models.Process) *Snapshot {
	next := *s
	next.Processes = upsert(s.Processes, p, func(r models.Process) bool { return r.ID == p.ID })
	return &next
}

// WithoutProcess removes a process by id.
func (s *Snapshot) WithoutProcess(id string) *Snapshot {
	next := *s
	next.Processes = remove(s.Processes, func(r models.Process) bool { return r.ID == id })
	return &next
}

// WithStep upserts a step by id.
func (s *Snapshot) WithStep(step models.Step) *Snapshot {
	next := *s
	next.Steps = upsert(s.Steps, step, func(r models.Step) bool { return r.ID == step.ID })
	return &next
}

// WithoutStep removes a step by id.
func (s *Snapshot) WithoutStep(id string) *Snapshot {
	next := *s
	next.Steps = remove(s.Steps, func(r models.Step) bool { return r.ID == id })
	return &next
}

// WithChange upserts a change suggestion by id.
func (s *Snapshot) WithChange(c models.Change) *Snapshot {
	next := *s
	next.Changes = upsert(s.Changes, c, func(r models.Change) bool { return r.ID == c.ID })
	return &next
}

// WithoutChange removes a change suggestion by id.
func (s *Snapshot) WithoutChange(id string) *Snapshot {
	next := *s
	next.Changes = remove(s.Changes, func(r models.Change) bool { return r.ID == id })
	return &next
}

// WithAssignment inserts the (role, profile) pair if absent. Inserting
// a duplicate is a no-op, not an error: assignments are a set.
func (s *Snapshot) WithAssignment(a models.Assignment) *Snapshot {
	if s.Assigned(a.RoleID, a.ProfileID) {
		return s
	}
	next := *s
	out := make([]models.Assignment, len(s.Assignments), len(s.Assignments)+1)
	copy(out, s.Assignments)
	next.Assignments = append(out, a)
	return &next
}

// WithoutAssignment removes the (role, profile) pair if present.
func (s *Snapshot) WithoutAssignment(roleID, profileID string) *Snapshot {
	next := *s
	next.Assignments = remove(s.Assignments, func(r models.Assignment) bool {
		return r.RoleID == roleID && r.ProfileID == profileID
	})
	return &next
}
