package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"org-sync-backend/pkg/models"
	"org-sync-backend/pkg/snapshot"
)

// PostgresStore is the production Store backed by PostgreSQL. Change
// events ride on LISTEN/NOTIFY (see feed.go); notifications carry the
// full row as JSON so consumers can apply them without a round trip.
type PostgresStore struct {
	db  *sql.DB
	dsn string
}

// NewPostgresStore opens a connection pool and verifies it with a
// ping. Pool limits are tuned for a small service, not a serverless
// burst pattern.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	dsn = strings.TrimSpace(dsn)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return &PostgresStore{db: db, dsn: dsn}, nil
}

// nullIfEmpty maps "" to SQL NULL for nullable reference columns.
func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func textArray(ss []string) interface{} {
	if ss == nil {
		return pq.Array([]string{})
	}
	return pq.Array(ss)
}

// Fetch reads every table of one organization inside a single
// repeatable-read transaction so the snapshot is internally
// consistent.
func (s *PostgresStore) Fetch(ctx context.Context, orgID string) (*snapshot.Snapshot, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to begin fetch transaction: %w", err)
	}
	defer tx.Rollback()

	org, err := fetchOrganization(ctx, tx, orgID)
	if err != nil {
		return nil, err
	}
	profiles, err := fetchProfiles(ctx, tx, orgID)
	if err != nil {
		return nil, err
	}
	roles, err := fetchRoles(ctx, tx, orgID)
	if err != nil {
		return nil, err
	}
	assignments, err := fetchAssignments(ctx, tx, orgID)
	if err != nil {
		return nil, err
	}
	teams, err := fetchTeams(ctx, tx, orgID)
	if err != nil {
		return nil, err
	}
	processes, err := fetchProcesses(ctx, tx, orgID)
	if err != nil {
		return nil, err
	}
	steps, err := fetchSteps(ctx, tx, orgID)
	if err != nil {
		return nil, err
	}
	changes, err := fetchChanges(ctx, tx, orgID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit fetch transaction: %w", err)
	}
	return snapshot.New(org, profiles, roles, assignments, teams, processes, steps, changes), nil
}

func fetchOrganization(ctx context.Context, tx *sql.Tx, orgID string) (models.Organization, error) {
	query := `
		SELECT id, name, COALESCE(description,''), visibility, comments, "when"
		FROM organizations WHERE id = $1
	`
	var org models.Organization
	err := tx.QueryRowContext(ctx, query, orgID).Scan(
		&org.ID, &org.Name, &org.Description, &org.Visibility,
		pq.Array(&org.Comments), &org.When,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return org, fmt.Errorf("fetch organization %s: %w", orgID, ErrNotFound)
	}
	if err != nil {
		return org, fmt.Errorf("failed to fetch organization: %w", err)
	}
	return org, nil
}

func fetchProfiles(ctx context.Context, tx *sql.Tx, orgID string) ([]models.Profile, error) {
	query := `
		SELECT id, orgid, COALESCE(personid,''), name, COALESCE(bio,''),
		       COALESCE(email,''), admin, COALESCE(supervisor,'')
		FROM profiles WHERE orgid = $1
	`
	rows, err := tx.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profiles: %w", err)
	}
	defer rows.Close()

	var profiles []models.Profile
	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(&p.ID, &p.OrgID, &p.PersonID, &p.Name, &p.Bio, &p.Email, &p.Admin, &p.Supervisor); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func fetchRoles(ctx context.Context, tx *sql.Tx, orgID string) ([]models.Role, error) {
	query := `
		SELECT id, orgid, title, COALESCE(description,''), COALESCE(team,''),
		       short, comments, "when"
		FROM roles WHERE orgid = $1
	`
	rows, err := tx.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roles: %w", err)
	}
	defer rows.Close()

	var roles []models.Role
	for rows.Next() {
		var r models.Role
		if err := rows.Scan(&r.ID, &r.OrgID, &r.Title, &r.Description, &r.Team,
			pq.Array(&r.Short), pq.Array(&r.Comments), &r.When); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, r)
	}
	return roles, rows.Err()
}

func fetchAssignments(ctx context.Context, tx *sql.Tx, orgID string) ([]models.Assignment, error) {
	query := `SELECT orgid, profileid, roleid FROM assignments WHERE orgid = $1`
	rows, err := tx.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignments: %w", err)
	}
	defer rows.Close()

	var assignments []models.Assignment
	for rows.Next() {
		var a models.Assignment
		if err := rows.Scan(&a.OrgID, &a.ProfileID, &a.RoleID); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

func fetchTeams(ctx context.Context, tx *sql.Tx, orgID string) ([]models.Team, error) {
	query := `
		SELECT id, orgid, name, COALESCE(description,''), comments, "when"
		FROM teams WHERE orgid = $1
	`
	rows, err := tx.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch teams: %w", err)
	}
	defer rows.Close()

	var teams []models.Team
	for rows.Next() {
		var t models.Team
		if err := rows.Scan(&t.ID, &t.OrgID, &t.Name, &t.Description,
			pq.Array(&t.Comments), &t.When); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func fetchProcesses(ctx context.Context, tx *sql.Tx, orgID string) ([]models.Process, error) {
	query := `
		SELECT id, orgid, title, COALESCE(concern,''), state,
		       COALESCE(accountable,''), COALESCE(rootstep,''),
		       COALESCE(repeat,'null'::jsonb), short, comments, "when"
		FROM processes WHERE orgid = $1
	`
	rows, err := tx.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch processes: %w", err)
	}
	defer rows.Close()

	var processes []models.Process
	for rows.Next() {
		var p models.Process
		var repeat []byte
		if err := rows.Scan(&p.ID, &p.OrgID, &p.Title, &p.Concern, &p.State,
			&p.Accountable, &p.RootStep, &repeat,
			pq.Array(&p.Short), pq.Array(&p.Comments), &p.When); err != nil {
			return nil, fmt.Errorf("failed to scan process: %w", err)
		}
		if string(repeat) != "null" {
			p.Repeat = repeat
		}
		processes = append(processes, p)
	}
	return processes, rows.Err()
}

func fetchSteps(ctx context.Context, tx *sql.Tx, orgID string) ([]models.Step, error) {
	query := `
		SELECT id, orgid, processid, COALESCE(what,''), visibility, done,
		       responsible, consulted, informed, children
		FROM steps WHERE orgid = $1
	`
	rows, err := tx.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch steps: %w", err)
	}
	defer rows.Close()

	var steps []models.Step
	for rows.Next() {
		var st models.Step
		if err := rows.Scan(&st.ID, &st.OrgID, &st.ProcessID, &st.What, &st.Visibility, &st.Done,
			pq.Array(&st.Responsible), pq.Array(&st.Consulted),
			pq.Array(&st.Informed), pq.Array(&st.Children)); err != nil {
			return nil, fmt.Errorf("failed to scan step: %w", err)
		}
		steps = append(steps, st)
	}
	return steps, rows.Err()
}

func fetchChanges(ctx context.Context, tx *sql.Tx, orgID string) ([]models.Change, error) {
	query := `
		SELECT id, orgid, who, what, COALESCE(description,''), status,
		       COALESCE(lead,''), COALESCE(proposal,''), COALESCE(review,''),
		       visibility, roles, processes, comments, "when"
		FROM changes WHERE orgid = $1
	`
	rows, err := tx.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch changes: %w", err)
	}
	defer rows.Close()

	var changes []models.Change
	for rows.Next() {
		var c models.Change
		if err := rows.Scan(&c.ID, &c.OrgID, &c.Who, &c.What, &c.Description, &c.Status,
			&c.Lead, &c.Proposal, &c.Review, &c.Visibility,
			pq.Array(&c.Roles), pq.Array(&c.Processes), pq.Array(&c.Comments), &c.When); err != nil {
			return nil, fmt.Errorf("failed to scan change: %w", err)
		}
		changes = append(changes, c)
	}
	return changes, rows.Err()
}

// Organization

func (s *PostgresStore) UpdateOrganization(ctx context.Context, org models.Organization) error {
	query := `
		UPDATE organizations
		SET name = $2, description = $3, visibility = $4, comments = $5
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query, org.ID, org.Name,
		nullIfEmpty(org.Description), org.Visibility, textArray(org.Comments))
	if err != nil {
		return fmt.Errorf("failed to update organization: %w", err)
	}
	return checkAffected(res, "organization", org.ID)
}

func checkAffected(res sql.Result, table, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("update %s %s: %w", table, id, ErrNotFound)
	}
	return nil
}

// Profiles

func (s *PostgresStore) InsertProfile(ctx context.Context, p *models.Profile) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	query := `
		INSERT INTO profiles (id, orgid, personid, name, bio, email, admin, supervisor)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query, p.ID, p.OrgID, nullIfEmpty(p.PersonID),
		p.Name, nullIfEmpty(p.Bio), nullIfEmpty(p.Email), p.Admin, nullIfEmpty(p.Supervisor))
	if err != nil {
		return fmt.Errorf("failed to insert profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateProfile(ctx context.Context, p models.Profile) error {
	query := `
		UPDATE profiles
		SET personid = $2, name = $3, bio = $4, email = $5, admin = $6, supervisor = $7
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query, p.ID, nullIfEmpty(p.PersonID), p.Name,
		nullIfEmpty(p.Bio), nullIfEmpty(p.Email), p.Admin, nullIfEmpty(p.Supervisor))
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return checkAffected(res, "profile", p.ID)
}

func (s *PostgresStore) DeleteProfile(ctx context.Context, id string) error {
	return s.deleteRow(ctx, "profiles", "profile", id)
}

func (s *PostgresStore) deleteRow(ctx context.Context, table, label, id string) error {
	res, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", table), id)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", label, err)
	}
	return checkAffected(res, label, id)
}

// Roles

func (s *PostgresStore) InsertRole(ctx context.Context, r *models.Role) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	query := `
		INSERT INTO roles (id, orgid, title, description, team, short, comments)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING "when"
	`
	err := s.db.QueryRowContext(ctx, query, r.ID, r.OrgID, r.Title,
		nullIfEmpty(r.Description), nullIfEmpty(r.Team),
		textArray(r.Short), textArray(r.Comments)).Scan(&r.When)
	if err != nil {
		return fmt.Errorf("failed to insert role: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateRole(ctx context.Context, r models.Role) error {
	query := `
		UPDATE roles
		SET title = $2, description = $3, team = $4, short = $5, comments = $6
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query, r.ID, r.Title, nullIfEmpty(r.Description),
		nullIfEmpty(r.Team), textArray(r.Short), textArray(r.Comments))
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	return checkAffected(res, "role", r.ID)
}

func (s *PostgresStore) DeleteRole(ctx context.Context, id string) error {
	return s.deleteRow(ctx, "roles", "role", id)
}

// Teams

func (s *PostgresStore) InsertTeam(ctx context.Context, t *models.Team) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	query := `
		INSERT INTO teams (id, orgid, name, description, comments)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING "when"
	`
	err := s.db.QueryRowContext(ctx, query, t.ID, t.OrgID, t.Name,
		nullIfEmpty(t.Description), textArray(t.Comments)).Scan(&t.When)
	if err != nil {
		return fmt.Errorf("failed to insert team: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateTeam(ctx context.Context, t models.Team) error {
	query := `
		UPDATE teams SET name = $2, description = $3, comments = $4 WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query, t.ID, t.Name,
		nullIfEmpty(t.Description), textArray(t.Comments))
	if err != nil {
		return fmt.Errorf("failed to update team: %w", err)
	}
	return checkAffected(res, "team", t.ID)
}

func (s *PostgresStore) DeleteTeam(ctx context.Context, id string) error {
	return s.deleteRow(ctx, "teams", "team", id)
}

// Assignments

func (s *PostgresStore) InsertAssignment(ctx context.Context, a models.Assignment) error {
	query := `
		INSERT INTO assignments (orgid, profileid, roleid)
		VALUES ($1, $2, $3)
		ON CONFLICT (profileid, roleid) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query, a.OrgID, a.ProfileID, a.RoleID)
	if err != nil {
		return fmt.Errorf("failed to insert assignment: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteAssignment(ctx context.Context, orgID, profileID, roleID string) error {
	query := `
		DELETE FROM assignments
		WHERE orgid = $1 AND profileid = $2 AND roleid = $3
	`
	_, err := s.db.ExecContext(ctx, query, orgID, profileID, roleID)
	if err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}
	return nil
}

// Processes

func (s *PostgresStore) InsertProcess(ctx context.Context, p *models.Process) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.State == "" {
		p.State = models.StateDraft
	}
	query := `
		INSERT INTO processes (id, orgid, title, concern, state, accountable, rootstep, repeat, short, comments)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING "when"
	`
	var repeat interface{}
	if len(p.Repeat) > 0 {
		repeat = []byte(p.Repeat)
	}
	err := s.db.QueryRowContext(ctx, query, p.ID, p.OrgID, p.Title,
		nullIfEmpty(p.Concern), p.State, nullIfEmpty(p.Accountable),
		nullIfEmpty(p.RootStep), repeat, textArray(p.Short), textArray(p.Comments)).Scan(&p.When)
	if err != nil {
		return fmt.Errorf("failed to insert process: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateProcess(ctx context.Context, p models.Process) error {
	query := `
		UPDATE processes
		SET title = $2, concern = $3, state = $4, accountable = $5,
		    rootstep = $6, repeat = $7, short = $8, comments = $9
		WHERE id = $1
	`
	var repeat interface{}
	if len(p.Repeat) > 0 {
		repeat = []byte(p.Repeat)
	}
	res, err := s.db.ExecContext(ctx, query, p.ID, p.Title, nullIfEmpty(p.Concern),
		p.State, nullIfEmpty(p.Accountable), nullIfEmpty(p.RootStep), repeat,
		textArray(p.Short), textArray(p.Comments))
	if err != nil {
		return fmt.Errorf("failed to update process: %w", err)
	}
	return checkAffected(res, "process", p.ID)
}

func (s *PostgresStore) DeleteProcess(ctx context.Context, id string) error {
	return s.deleteRow(ctx, "processes", "process", id)
}

// Steps

func (s *PostgresStore) InsertStep(ctx context.Context, st *models.Step) error {
	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	if st.Visibility == "" {
		st.Visibility = models.VisibilityOrg
	}
	if st.Done == "" {
		st.Done = models.CompletionNo
	}
	query := `
		INSERT INTO steps (id, orgid, processid, what, visibility, done, responsible, consulted, informed, children)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query, st.ID, st.OrgID, st.ProcessID,
		nullIfEmpty(st.What), st.Visibility, st.Done,
		textArray(st.Responsible), textArray(st.Consulted),
		textArray(st.Informed), textArray(st.Children))
	if err != nil {
		return fmt.Errorf("failed to insert step: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateStep(ctx context.Context, st models.Step) error {
	res, err := s.db.ExecContext(ctx, stepUpdateQuery, st.ID,
		nullIfEmpty(st.What), st.Visibility, st.Done,
		textArray(st.Responsible), textArray(st.Consulted),
		textArray(st.Informed), textArray(st.Children))
	if err != nil {
		return fmt.Errorf("failed to update step: %w", err)
	}
	return checkAffected(res, "step", st.ID)
}

const stepUpdateQuery = `
	UPDATE steps
	SET what = $2, visibility = $3, done = $4,
	    responsible = $5, consulted = $6, informed = $7, children = $8
	WHERE id = $1
`

func (s *PostgresStore) DeleteStep(ctx context.Context, id string) error {
	return s.deleteRow(ctx, "steps", "step", id)
}

// UpdateSteps writes several step rows in one transaction so tree
// edits that touch two parents land atomically.
func (s *PostgresStore) UpdateSteps(ctx context.Context, steps ...models.Step) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin step transaction: %w", err)
	}
	defer tx.Rollback()

	for _, st := range steps {
		res, err := tx.ExecContext(ctx, stepUpdateQuery, st.ID,
			nullIfEmpty(st.What), st.Visibility, st.Done,
			textArray(st.Responsible), textArray(st.Consulted),
			textArray(st.Informed), textArray(st.Children))
		if err != nil {
			return fmt.Errorf("failed to update step: %w", err)
		}
		if err := checkAffected(res, "step", st.ID); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit step transaction: %w", err)
	}
	return nil
}

// UnlinkAndDeleteStep rewrites the parent's children and deletes the
// step in one transaction. The parent row is written first so no
// committed state ever references a missing child.
func (s *PostgresStore) UnlinkAndDeleteStep(ctx context.Context, parent models.Step, stepID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin step transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, stepUpdateQuery, parent.ID,
		nullIfEmpty(parent.What), parent.Visibility, parent.Done,
		textArray(parent.Responsible), textArray(parent.Consulted),
		textArray(parent.Informed), textArray(parent.Children))
	if err != nil {
		return fmt.Errorf("failed to update step: %w", err)
	}
	if err := checkAffected(res, "step", parent.ID); err != nil {
		return err
	}

	res, err = tx.ExecContext(ctx, "DELETE FROM steps WHERE id = $1", stepID)
	if err != nil {
		return fmt.Errorf("failed to delete step: %w", err)
	}
	if err := checkAffected(res, "step", stepID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit step transaction: %w", err)
	}
	return nil
}

// Changes

func (s *PostgresStore) InsertChange(ctx context.Context, c *models.Change) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = models.StatusTriage
	}
	query := `
		INSERT INTO changes (id, orgid, who, what, description, status, lead, proposal, review, visibility, roles, processes, comments)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING "when"
	`
	err := s.db.QueryRowContext(ctx, query, c.ID, c.OrgID, c.Who, c.What,
		nullIfEmpty(c.Description), c.Status, nullIfEmpty(c.Lead),
		nullIfEmpty(c.Proposal), nullIfEmpty(c.Review), c.Visibility,
		textArray(c.Roles), textArray(c.Processes), textArray(c.Comments)).Scan(&c.When)
	if err != nil {
		return fmt.Errorf("failed to insert change: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateChange(ctx context.Context, c models.Change) error {
	query := `
		UPDATE changes
		SET who = $2, what = $3, description = $4, status = $5, lead = $6,
		    proposal = $7, review = $8, visibility = $9, roles = $10,
		    processes = $11, comments = $12
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query, c.ID, c.Who, c.What,
		nullIfEmpty(c.Description), c.Status, nullIfEmpty(c.Lead),
		nullIfEmpty(c.Proposal), nullIfEmpty(c.Review), c.Visibility,
		textArray(c.Roles), textArray(c.Processes), textArray(c.Comments))
	if err != nil {
		return fmt.Errorf("failed to update change: %w", err)
	}
	return checkAffected(res, "change", c.ID)
}

func (s *PostgresStore) DeleteChange(ctx context.Context, id string) error {
	return s.deleteRow(ctx, "changes", "change", id)
}

// Comments

func (s *PostgresStore) InsertComment(ctx context.Context, c *models.Comment) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	query := `
		INSERT INTO comments (id, orgid, who, what)
		VALUES ($1, $2, $3, $4)
		RETURNING "when"
	`
	err := s.db.QueryRowContext(ctx, query, c.ID, c.OrgID, c.Who, c.What).Scan(&c.When)
	if err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateComment(ctx context.Context, c models.Comment) error {
	res, err := s.db.ExecContext(ctx, "UPDATE comments SET what = $2 WHERE id = $1", c.ID, c.What)
	if err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}
	return checkAffected(res, "comment", c.ID)
}

func (s *PostgresStore) DeleteComment(ctx context.Context, id string) error {
	return s.deleteRow(ctx, "comments", "comment", id)
}

func (s *PostgresStore) GetComments(ctx context.Context, orgID string, ids []string) ([]models.Comment, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `
		SELECT id, orgid, who, what, "when"
		FROM comments WHERE orgid = $1 AND id = ANY($2)
	`
	rows, err := s.db.QueryContext(ctx, query, orgID, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch comments: %w", err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.OrgID, &c.Who, &c.What, &c.When); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (s *PostgresStore) HealthCheck() error {
	return s.db.Ping()
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
