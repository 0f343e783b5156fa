package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"org-sync-backend/pkg/models"
	"org-sync-backend/pkg/snapshot"
)

// MemoryStore is an in-memory Store used by tests and local
// development. It implements the same contract as the Postgres store,
// including the feed's weak guarantees: events are fanned out with
// non-blocking sends to bounded channels, so a slow consumer drops
// events exactly like a real disconnected feed would.
type MemoryStore struct {
	mu sync.RWMutex

	orgs        map[string]models.Organization
	profiles    map[string]models.Profile
	roles       map[string]models.Role
	teams       map[string]models.Team
	processes   map[string]models.Process
	steps       map[string]models.Step
	changes     map[string]models.Change
	comments    map[string]models.Comment
	assignments []models.Assignment

	subMu sync.Mutex
	subs  map[string][]*memorySubscription
	muted map[string]bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orgs:      map[string]models.Organization{},
		profiles:  map[string]models.Profile{},
		roles:     map[string]models.Role{},
		teams:     map[string]models.Team{},
		processes: map[string]models.Process{},
		steps:     map[string]models.Step{},
		changes:   map[string]models.Change{},
		comments:  map[string]models.Comment{},
		subs:      map[string][]*memorySubscription{},
		muted:     map[string]bool{},
	}
}

// PutOrganization seeds or replaces an organization row. Organizations
// are created out of band (signup flow), so this sits outside the
// Store interface.
func (m *MemoryStore) PutOrganization(org models.Organization) {
	m.mu.Lock()
	if org.When.IsZero() {
		org.When = time.Now()
	}
	m.orgs[org.ID] = org
	m.mu.Unlock()
}

func (m *MemoryStore) Fetch(ctx context.Context, orgID string) (*snapshot.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	org, ok := m.orgs[orgID]
	if !ok {
		return nil, fmt.Errorf("fetch organization %s: %w", orgID, ErrNotFound)
	}

	var profiles []models.Profile
	for _, p := range m.profiles {
		if p.OrgID == orgID {
			profiles = append(profiles, p)
		}
	}
	var roles []models.Role
	for _, r := range m.roles {
		if r.OrgID == orgID {
			roles = append(roles, r)
		}
	}
	var assignments []models.Assignment
	for _, a := range m.assignments {
		if a.OrgID == orgID {
			assignments = append(assignments, a)
		}
	}
	var teams []models.Team
	for _, t := range m.teams {
		if t.OrgID == orgID {
			teams = append(teams, t)
		}
	}
	var processes []models.Process
	for _, p := range m.processes {
		if p.OrgID == orgID {
			processes = append(processes, p)
		}
	}
	var steps []models.Step
	for _, s := range m.steps {
		if s.OrgID == orgID {
			steps = append(steps, s)
		}
	}
	var changes []models.Change
	for _, c := range m.changes {
		if c.OrgID == orgID {
			changes = append(changes, c)
		}
	}

	return snapshot.New(org, profiles, roles, assignments, teams, processes, steps, changes), nil
}

// memorySubscription is a bounded event channel for one org.
type memorySubscription struct {
	store  *MemoryStore
	org    string
	events chan Event
	once   sync.Once
}

func (s *memorySubscription) Events() <-chan Event { return s.events }

func (s *memorySubscription) Close() {
	s.once.Do(func() {
		s.store.dropSubscription(s)
	})
}

func (m *MemoryStore) Subscribe(orgID string) (Subscription, error) {
	sub := &memorySubscription{store: m, org: orgID, events: make(chan Event, 64)}
	m.subMu.Lock()
	m.subs[orgID] = append(m.subs[orgID], sub)
	m.subMu.Unlock()
	return sub, nil
}

// dropSubscription removes and closes the channel under the lock so
// no publish can race the close.
func (m *MemoryStore) dropSubscription(sub *memorySubscription) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	subs := m.subs[sub.org]
	for i, s := range subs {
		if s == sub {
			m.subs[sub.org] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	close(sub.events)
}

// publish fans an event out to the org's subscribers. Sends never
// block; a full channel loses the event, which is the contract.
func (m *MemoryStore) publish(ev Event) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	if m.muted[ev.EventOrg()] {
		return
	}
	for _, sub := range m.subs[ev.EventOrg()] {
		select {
		case sub.events <- ev:
		default:
		}
	}
}

// SilenceFeed makes the store drop events for the org instead of
// delivering them, simulating missed notifications. Test hook.
func (m *MemoryStore) SilenceFeed(orgID string, silent bool) {
	m.subMu.Lock()
	m.muted[orgID] = silent
	m.subMu.Unlock()
}

// Organization

func (m *MemoryStore) UpdateOrganization(ctx context.Context, org models.Organization) error {
	m.mu.Lock()
	if _, ok := m.orgs[org.ID]; !ok {
		m.mu.Unlock()
		return fmt.Errorf("update organization %s: %w", org.ID, ErrNotFound)
	}
	m.orgs[org.ID] = org
	m.mu.Unlock()
	m.publish(OrganizationUpdated{Row: org})
	return nil
}

// Profiles

func (m *MemoryStore) InsertProfile(ctx context.Context, p *models.Profile) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	m.mu.Lock()
	m.profiles[p.ID] = *p
	m.mu.Unlock()
	m.publish(ProfileChanged{Org: p.OrgID, Kind: EventInsert, Row: *p, ID: p.ID})
	return nil
}

func (m *MemoryStore) UpdateProfile(ctx context.Context, p models.Profile) error {
	m.mu.Lock()
	if _, ok := m.profiles[p.ID]; !ok {
		m.mu.Unlock()
		return fmt.Errorf("update profile %s: %w", p.ID, ErrNotFound)
	}
	m.profiles[p.ID] = p
	m.mu.Unlock()
	m.publish(ProfileChanged{Org: p.OrgID, Kind: EventUpdate, Row: p, ID: p.ID})
	return nil
}

func (m *MemoryStore) DeleteProfile(ctx context.Context, id string) error {
	m.mu.Lock()
	p, ok := m.profiles[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("delete profile %s: %w", id, ErrNotFound)
	}
	delete(m.profiles, id)
	m.mu.Unlock()
	m.publish(ProfileChanged{Org: p.OrgID, Kind: EventDelete, ID: id})
	return nil
}

// Roles

func (m *MemoryStore) InsertRole(ctx context.Context, r *models.Role) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.When.IsZero() {
		r.When = time.Now()
	}
	m.mu.Lock()
	m.roles[r.ID] = *r
	m.mu.Unlock()
	m.publish(RoleChanged{Org: r.OrgID, Kind: EventInsert, Row: *r, ID: r.ID})
	return nil
}

func (m *MemoryStore) UpdateRole(ctx context.Context, r models.Role) error {
	m.mu.Lock()
	if _, ok := m.roles[r.ID]; !ok {
		m.mu.Unlock()
		return fmt.Errorf("update role %s: %w", r.ID, ErrNotFound)
	}
	m.roles[r.ID] = r
	m.mu.Unlock()
	m.publish(RoleChanged{Org: r.OrgID, Kind: EventUpdate, Row: r, ID: r.ID})
	return nil
}

func (m *MemoryStore) DeleteRole(ctx context.Context, id string) error {
	m.mu.Lock()
	r, ok := m.roles[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("delete role %s: %w", id, ErrNotFound)
	}
	delete(m.roles, id)
	m.mu.Unlock()
	m.publish(RoleChanged{Org: r.OrgID, Kind: EventDelete, ID: id})
	return nil
}

// Teams

func (m *MemoryStore) InsertTeam(ctx context.Context, t *models.Team) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.When.IsZero() {
		t.When = time.Now()
	}
	m.mu.Lock()
	m.teams[t.ID] = *t
	m.mu.Unlock()
	m.publish(TeamChanged{Org: t.OrgID, Kind: EventInsert, Row: *t, ID: t.ID})
	return nil
}

func (m *MemoryStore) UpdateTeam(ctx context.Context, t models.Team) error {
	m.mu.Lock()
	if _, ok := m.teams[t.ID]; !ok {
		m.mu.Unlock()
		return fmt.Errorf("update team %s: %w", t.ID, ErrNotFound)
	}
	m.teams[t.ID] = t
	m.mu.Unlock()
	m.publish(TeamChanged{Org: t.OrgID, Kind: EventUpdate, Row: t, ID: t.ID})
	return nil
}

func (m *MemoryStore) DeleteTeam(ctx context.Context, id string) error {
	m.mu.Lock()
	t, ok := m.teams[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("delete team %s: %w", id, ErrNotFound)
	}
	delete(m.teams, id)
	m.mu.Unlock()
	m.publish(TeamChanged{Org: t.OrgID, Kind: EventDelete, ID: id})
	return nil
}

// Assignments

func (m *MemoryStore) InsertAssignment(ctx context.Context, a models.Assignment) error {
	m.mu.Lock()
	for _, got := range m.assignments {
		if got.RoleID == a.RoleID && got.ProfileID == a.ProfileID {
			m.mu.Unlock()
			return nil // set semantics; duplicate insert is a no-op
		}
	}
	m.assignments = append(m.assignments, a)
	m.mu.Unlock()
	m.publish(AssignmentChanged{Org: a.OrgID, Kind: EventInsert, Row: a, RoleID: a.RoleID, ProfileID: a.ProfileID})
	return nil
}

func (m *MemoryStore) DeleteAssignment(ctx context.Context, orgID, profileID, roleID string) error {
	m.mu.Lock()
	kept := m.assignments[:0]
	found := false
	for _, a := range m.assignments {
		if a.OrgID == orgID && a.ProfileID == profileID && a.RoleID == roleID {
			found = true
			continue
		}
		kept = append(kept, a)
	}
	m.assignments = kept
	m.mu.Unlock()
	if found {
		m.publish(AssignmentChanged{Org: orgID, Kind: EventDelete, RoleID: roleID, ProfileID: profileID})
	}
	return nil
}

// Processes

func (m *MemoryStore) InsertProcess(ctx context.Context, p *models.Process) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.When.IsZero() {
		p.When = time.Now()
	}
	if p.State == "" {
		p.State = models.StateDraft
	}
	m.mu.Lock()
	m.processes[p.ID] = *p
	m.mu.Unlock()
	m.publish(ProcessChanged{Org: p.OrgID, Kind: EventInsert, Row: *p, ID: p.ID})
	return nil
}

func (m *MemoryStore) UpdateProcess(ctx context.Context, p models.Process) error {
	m.mu.Lock()
	if _, ok := m.processes[p.ID]; !ok {
		m.mu.Unlock()
		return fmt.Errorf("update process %s: %w", p.ID, ErrNotFound)
	}
	m.processes[p.ID] = p
	m.mu.Unlock()
	m.publish(ProcessChanged{Org: p.OrgID, Kind: EventUpdate, Row: p, ID: p.ID})
	return nil
}

func (m *MemoryStore) DeleteProcess(ctx context.Context, id string) error {
	m.mu.Lock()
	p, ok := m.processes[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("delete process %s: %w", id, ErrNotFound)
	}
	delete(m.processes, id)
	m.mu.Unlock()
	m.publish(ProcessChanged{Org: p.OrgID, Kind: EventDelete, ID: id})
	return nil
}

// Steps

func (m *MemoryStore) InsertStep(ctx context.Context, s *models.Step) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Visibility == "" {
		s.Visibility = models.VisibilityOrg
	}
	if s.Done == "" {
		s.Done = models.CompletionNo
	}
	m.mu.Lock()
	m.steps[s.ID] = *s
	m.mu.Unlock()
	m.publish(StepChanged{Org: s.OrgID, Kind: EventInsert, Row: *s, ID: s.ID})
	return nil
}

func (m *MemoryStore) UpdateStep(ctx context.Context, s models.Step) error {
	m.mu.Lock()
	if _, ok := m.steps[s.ID]; !ok {
		m.mu.Unlock()
		return fmt.Errorf("update step %s: %w", s.ID, ErrNotFound)
	}
	m.steps[s.ID] = s
	m.mu.Unlock()
	m.publish(StepChanged{Org: s.OrgID, Kind: EventUpdate, Row: s, ID: s.ID})
	return nil
}

func (m *MemoryStore) DeleteStep(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.steps[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("delete step %s: %w", id, ErrNotFound)
	}
	delete(m.steps, id)
	m.mu.Unlock()
	m.publish(StepChanged{Org: s.OrgID, Kind: EventDelete, ID: id})
	return nil
}

func (m *MemoryStore) UpdateSteps(ctx context.Context, steps ...models.Step) error {
	m.mu.Lock()
	for _, s := range steps {
		if _, ok := m.steps[s.ID]; !ok {
			m.mu.Unlock()
			return fmt.Errorf("update step %s: %w", s.ID, ErrNotFound)
		}
	}
	for _, s := range steps {
		m.steps[s.ID] = s
	}
	m.mu.Unlock()
	for _, s := range steps {
		m.publish(StepChanged{Org: s.OrgID, Kind: EventUpdate, Row: s, ID: s.ID})
	}
	return nil
}

func (m *MemoryStore) UnlinkAndDeleteStep(ctx context.Context, parent models.Step, stepID string) error {
	m.mu.Lock()
	if _, ok := m.steps[parent.ID]; !ok {
		m.mu.Unlock()
		return fmt.Errorf("update step %s: %w", parent.ID, ErrNotFound)
	}
	deleted, ok := m.steps[stepID]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("delete step %s: %w", stepID, ErrNotFound)
	}
	m.steps[parent.ID] = parent
	delete(m.steps, stepID)
	m.mu.Unlock()
	m.publish(StepChanged{Org: parent.OrgID, Kind: EventUpdate, Row: parent, ID: parent.ID})
	m.publish(StepChanged{Org: deleted.OrgID, Kind: EventDelete, ID: stepID})
	return nil
}

// Changes

func (m *MemoryStore) InsertChange(ctx context.Context, c *models.Change) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.When.IsZero() {
		c.When = time.Now()
	}
	if c.Status == "" {
		c.Status = models.StatusTriage
	}
	m.mu.Lock()
	m.changes[c.ID] = *c
	m.mu.Unlock()
	m.publish(ChangeChanged{Org: c.OrgID, Kind: EventInsert, Row: *c, ID: c.ID})
	return nil
}

func (m *MemoryStore) UpdateChange(ctx context.Context, c models.Change) error {
	m.mu.Lock()
	if _, ok := m.changes[c.ID]; !ok {
		m.mu.Unlock()
		return fmt.Errorf("update change %s: %w", c.ID, ErrNotFound)
	}
	m.changes[c.ID] = c
	m.mu.Unlock()
	m.publish(ChangeChanged{Org: c.OrgID, Kind: EventUpdate, Row: c, ID: c.ID})
	return nil
}

func (m *MemoryStore) DeleteChange(ctx context.Context, id string) error {
	m.mu.Lock()
	c, ok := m.changes[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("delete change %s: %w", id, ErrNotFound)
	}
	delete(m.changes, id)
	m.mu.Unlock()
	m.publish(ChangeChanged{Org: c.OrgID, Kind: EventDelete, ID: id})
	return nil
}

// Comments

func (m *MemoryStore) InsertComment(ctx context.Context, c *models.Comment) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.When.IsZero() {
		c.When = time.Now()
	}
	m.mu.Lock()
	m.comments[c.ID] = *c
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) UpdateComment(ctx context.Context, c models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.comments[c.ID]
	if !ok {
		return fmt.Errorf("update comment %s: %w", c.ID, ErrNotFound)
	}
	cur.What = c.What
	m.comments[c.ID] = cur
	return nil
}

func (m *MemoryStore) DeleteComment(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.comments[id]; !ok {
		return fmt.Errorf("delete comment %s: %w", id, ErrNotFound)
	}
	delete(m.comments, id)
	return nil
}

func (m *MemoryStore) GetComments(ctx context.Context, orgID string, ids []string) ([]models.Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Comment
	for _, id := range ids {
		if c, ok := m.comments[id]; ok && c.OrgID == orgID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *MemoryStore) HealthCheck() error { return nil }

func (m *MemoryStore) Close() error { return nil }
