package snapshot

import "org-sync-backend/pkg/models"

// Lookups. Each returns nil when the id resolves to nothing; a cache
// read never errors.

// Profile finds a profile by id.
func (s *Snapshot) Profile(id string) *models.Profile {
	for i := range s.Profiles {
		if s.Profiles[i].ID == id {
			return &s.Profiles[i]
		}
	}
	return nil
}

// Role finds a role by id.
func (s *Snapshot) Role(id string) *models.Role {
	for i := range s.Roles {
		if s.Roles[i].ID == id {
			return &s.Roles[i]
		}
	}
	return nil
}

// Team finds a team by id.
func (s *Snapshot) Team(id string) *models.Team {
	for i := range s.Teams {
		if s.Teams[i].ID == id {
			return &s.Teams[i]
		}
	}
	return nil
}

// Process finds a process by id.
func (s *Snapshot) Process(id string) *models.Process {
	for i := range s.Processes {
		if s.Processes[i].ID == id {
			return &s.Processes[i]
		}
	}
	return nil
}

// Step finds a step by id.
func (s *Snapshot) Step(id string) *models.Step {
	for i := range s.Steps {
		if s.Steps[i].ID == id {
			return &s.Steps[i]
		}
	}
	return nil
}

// Change finds a change suggestion by id.
func (s *Snapshot) Change(id string) *models.Change {
	for i := range s.Changes {
		if s.Changes[i].ID == id {
			return &s.Changes[i]
		}
	}
	return nil
}

// Assigned reports whether the (role, profile) pair exists.
func (s *Snapshot) Assigned(roleID, profileID string) bool {
	for _, a := range s.Assignments {
		if a.RoleID == roleID && a.ProfileID == profileID {
			return true
		}
	}
	return false
}

// ProfileWithEmail finds a profile by email.
func (s *Snapshot) ProfileWithEmail(email string) *models.Profile {
	for i := range s.Profiles {
		if s.Profiles[i].Email == email {
			return &s.Profiles[i]
		}
	}
	return nil
}

// ProfileOfPerson finds the profile linked to a registered person.
func (s *Snapshot) ProfileOfPerson(personID string) *models.Profile {
	if personID == "" {
		return nil
	}
	for i := range s.Profiles {
		if s.Profiles[i].PersonID == personID {
			return &s.Profiles[i]
		}
	}
	return nil
}

// AdminProfiles returns the profiles with the admin flag set.
func (s *Snapshot) AdminProfiles() []models.Profile {
	var admins []models.Profile
	for _, p := range s.Profiles {
		if p.Admin {
			admins = append(admins, p)
		}
	}
	return admins
}

// RoleWithShortName finds a role carrying the given short name.
func (s *Snapshot) RoleWithShortName(short string) *models.Role {
	for i := range s.Roles {
		for _, sh := range s.Roles[i].Short {
			if sh == short {
				return &s.Roles[i]
			}
		}
	}
	return nil
}

// ProcessWithShortName finds a process carrying the given short name.
func (s *Snapshot) ProcessWithShortName(short string) *models.Process {
	for i := range s.Processes {
		for _, sh := range s.Processes[i].Short {
			if sh == short {
				return &s.Processes[i]
			}
		}
	}
	return nil
}

// Concerns returns the distinct non-empty concern tags in use.
func (s *Snapshot) Concerns() []string {
	seen := map[string]bool{}
	var concerns []string
	for _, p := range s.Processes {
		if p.Concern != "" && !seen[p.Concern] {
			seen[p.Concern] = true
			concerns = append(concerns, p.Concern)
		}
	}
	return concerns
}

// RolesOfProfile returns the roles a profile is assigned to.
func (s *Snapshot) RolesOfProfile(profileID string) []models.Role {
	var roles []models.Role
	for _, a := range s.Assignments {
		if a.ProfileID != profileID {
			continue
		}
		if role := s.Role(a.RoleID); role != nil {
			roles = append(roles, *role)
		}
	}
	return roles
}

// ProfilesOfRole returns the profiles assigned to a role.
func (s *Snapshot) ProfilesOfRole(roleID string) []models.Profile {
	var profiles []models.Profile
	for _, a := range s.Assignments {
		if a.RoleID != roleID {
			continue
		}
		if p := s.Profile(a.ProfileID); p != nil {
			profiles = append(profiles, *p)
		}
	}
	return profiles
}

// ProcessesOfRole returns every process the role touches: processes
// where the role is accountable, plus processes containing a step that
// lists the role as responsible, consulted, or informed.
func (s *Snapshot) ProcessesOfRole(roleID string) []models.Process {
	ids := map[string]bool{}
	for _, step := range s.Steps {
		if listsRole(step, roleID) {
			ids[step.ProcessID] = true
		}
	}
	var processes []models.Process
	for _, p := range s.Processes {
		if p.Accountable == roleID || ids[p.ID] {
			processes = append(processes, p)
		}
	}
	return processes
}

func listsRole(step models.Step, roleID string) bool {
	for _, lists := range [][]string{step.Responsible, step.Consulted, step.Informed} {
		for _, id := range lists {
			if id == roleID {
				return true
			}
		}
	}
	return false
}

// StepsOfProcess returns every step belonging to a process, in table
// order. Tree order is obtained by walking Children from the root.
func (s *Snapshot) StepsOfProcess(processID string) []models.Step {
	var steps []models.Step
	for _, step := range s.Steps {
		if step.ProcessID == processID {
			steps = append(steps, step)
		}
	}
	return steps
}

// TeamRoles returns the roles belonging to a team.
func (s *Snapshot) TeamRoles(teamID string) []models.Role {
	var roles []models.Role
	for _, r := range s.Roles {
		if r.Team == teamID {
			roles = append(roles, r)
		}
	}
	return roles
}

// ChangesLedBy returns the change suggestions led by a profile.
func (s *Snapshot) ChangesLedBy(profileID string) []models.Change {
	var changes []models.Change
	for _, c := range s.Changes {
		if c.Lead == profileID {
			changes = append(changes, c)
		}
	}
	return changes
}
