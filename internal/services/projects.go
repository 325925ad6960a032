package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/HerbHall/cinelens/internal/store"
	"github.com/HerbHall/cinelens/pkg/models"
)

// ProjectFilter narrows project list queries.
type ProjectFilter struct {
	Search   string // Substring of the project name.
	LensID   string // Only projects containing this lens.
	CameraID string // Only projects containing this camera.
}

// ProjectRepository provides access to user projects.
type ProjectRepository interface {
	// Get returns a single project by ID.
	Get(ctx context.Context, id string) (*models.Project, error)

	// List returns projects ordered by date (newest first) then name unless
	// opts selects another order.
	List(ctx context.Context, filter ProjectFilter, opts ListOptions) (*ListResult[models.Project], error)

	// Create inserts a new project. If project.ID is empty, a UUID is generated.
	Create(ctx context.Context, project *models.Project) error

	// Update replaces every mutable field of a project.
	Update(ctx context.Context, project *models.Project) error

	// Delete removes a project by ID.
	Delete(ctx context.Context, id string) error
}

// Compile-time interface guard.
var _ ProjectRepository = (*SQLiteProjectRepository)(nil)

// SQLiteProjectRepository implements ProjectRepository using SQLite. Lens
// and camera ids are stored as JSON arrays.
type SQLiteProjectRepository struct {
	db *sql.DB
}

// NewSQLiteProjectRepository creates a ProjectRepository and runs the
// projects migration.
func NewSQLiteProjectRepository(ctx context.Context, s Store) (*SQLiteProjectRepository, error) {
	if err := s.Migrate(ctx, "projects", projectMigrations); err != nil {
		return nil, fmt.Errorf("projects migrations: %w", err)
	}
	return &SQLiteProjectRepository{db: s.DB()}, nil
}

const projectColumns = `id, name, notes, date, lens_ids, camera_ids, created_at, updated_at`

func (r *SQLiteProjectRepository) Get(ctx context.Context, id string) (*models.Project, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+projectColumns+" FROM projects WHERE id = ?", id)
	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get project %q: %w", id, err)
	}
	return p, nil
}

func (r *SQLiteProjectRepository) List(ctx context.Context, filter ProjectFilter, opts ListOptions) (*ListResult[models.Project], error) {
	opts = normalizeListOptions(opts)

	orderBy := "date DESC, name ASC, id ASC"
	allowedSorts := map[string]string{
		"date":       "date",
		"name":       "name",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}
	if col, ok := allowedSorts[opts.SortBy]; ok {
		dir := "DESC"
		if opts.SortOrder == "asc" {
			dir = "ASC"
		}
		orderBy = fmt.Sprintf("%s %s, name ASC, id ASC", col, dir)
	}

	where := "1=1"
	var args []any
	if filter.Search != "" {
		where += " AND name LIKE ?"
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.LensID != "" {
		where += " AND EXISTS (SELECT 1 FROM json_each(projects.lens_ids) WHERE value = ?)"
		args = append(args, filter.LensID)
	}
	if filter.CameraID != "" {
		where += " AND EXISTS (SELECT 1 FROM json_each(projects.camera_ids) WHERE value = ?)"
		args = append(args, filter.CameraID)
	}

	var total int
	//nolint:gosec // where uses parameterized placeholders only
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM projects WHERE "+where, args...,
	).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count projects: %w", err)
	}

	queryArgs := make([]any, 0, len(args)+2)
	queryArgs = append(queryArgs, args...)
	queryArgs = append(queryArgs, opts.Limit, opts.Offset)

	//nolint:gosec // where and orderBy are built from validated values
	query := fmt.Sprintf(
		"SELECT %s FROM projects WHERE %s ORDER BY %s LIMIT ? OFFSET ?",
		projectColumns, where, orderBy,
	)
	rows, err := r.db.QueryContext(ctx, query, queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}

	return &ListResult[models.Project]{Items: projects, Total: total}, nil
}

func (r *SQLiteProjectRepository) Create(ctx context.Context, p *models.Project) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	if p.Date.IsZero() {
		p.Date = now
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO projects ("+projectColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		p.ID, p.Name, p.Notes, p.Date.UTC(), idsJSON(p.LensIDs), idsJSON(p.CameraIDs), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrAlreadyExists
		}
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

func (r *SQLiteProjectRepository) Update(ctx context.Context, p *models.Project) error {
	p.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		UPDATE projects SET
			name = ?, notes = ?, date = ?, lens_ids = ?, camera_ids = ?, updated_at = ?
		WHERE id = ?`,
		p.Name, p.Notes, p.Date.UTC(), idsJSON(p.LensIDs), idsJSON(p.CameraIDs), p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteProjectRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*models.Project, error) {
	var p models.Project
	var lensJSON, cameraJSON string
	if err := row.Scan(&p.ID, &p.Name, &p.Notes, &p.Date, &lensJSON, &cameraJSON, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(lensJSON), &p.LensIDs); err != nil {
		return nil, fmt.Errorf("decode lens ids of project %q: %w", p.ID, err)
	}
	if err := json.Unmarshal([]byte(cameraJSON), &p.CameraIDs); err != nil {
		return nil, fmt.Errorf("decode camera ids of project %q: %w", p.ID, err)
	}
	if p.LensIDs == nil {
		p.LensIDs = []string{}
	}
	if p.CameraIDs == nil {
		p.CameraIDs = []string{}
	}
	return &p, nil
}

func idsJSON(ids []string) string {
	if ids == nil {
		return "[]"
	}
	data, _ := json.Marshal(ids)
	return string(data)
}

var projectMigrations = []store.Migration{
	{
		Version:     1,
		Description: "create projects table",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE projects (
					id         TEXT PRIMARY KEY,
					name       TEXT NOT NULL,
					notes      TEXT NOT NULL DEFAULT '',
					date       DATETIME NOT NULL,
					lens_ids   TEXT NOT NULL DEFAULT '[]',
					camera_ids TEXT NOT NULL DEFAULT '[]',
					created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
				)`)
			if err != nil {
				return err
			}
			_, err = tx.Exec(`CREATE INDEX idx_projects_date ON projects (date DESC, name)`)
			return err
		},
	},
}
