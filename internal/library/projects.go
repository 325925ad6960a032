package library

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/HerbHall/cinelens/internal/services"
	"github.com/HerbHall/cinelens/pkg/models"
)

// ProjectInput holds the user-editable fields of a project.
type ProjectInput struct {
	Name  string     `json:"name" validate:"required,max=200"`
	Notes string     `json:"notes" validate:"max=4000"`
	Date  *time.Time `json:"date,omitempty"`
}

// ProjectPatch changes only the fields that are set.
type ProjectPatch struct {
	Name  *string    `json:"name,omitempty"`
	Notes *string    `json:"notes,omitempty"`
	Date  *time.Time `json:"date,omitempty"`
}

func (l *Library) validateInput(in *ProjectInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if err := l.validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidProject, err.Error())
	}
	return nil
}

// CreateProject validates in and stores a new project.
func (l *Library) CreateProject(ctx context.Context, in ProjectInput) (*models.Project, error) {
	if err := l.validateInput(&in); err != nil {
		return nil, err
	}

	p := &models.Project{
		Name:      in.Name,
		Notes:     in.Notes,
		LensIDs:   []string{},
		CameraIDs: []string{},
	}
	if in.Date != nil {
		p.Date = in.Date.UTC()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.projects.Create(ctx, p); err != nil {
		return nil, err
	}
	l.publishProject(ActionCreated, p)
	return p, nil
}

// Project returns a project by id.
func (l *Library) Project(ctx context.Context, id string) (*models.Project, error) {
	return l.projects.Get(ctx, id)
}

// Projects lists projects, newest date first unless opts says otherwise.
func (l *Library) Projects(ctx context.Context, filter services.ProjectFilter, opts services.ListOptions) (*services.ListResult[models.Project], error) {
	return l.projects.List(ctx, filter, opts)
}

// UpdateProject applies patch to a project.
func (l *Library) UpdateProject(ctx context.Context, id string, patch ProjectPatch) (*models.Project, error) {
	return l.mutateProject(ctx, id, ActionUpdated, func(p *models.Project) (bool, error) {
		in := ProjectInput{Name: p.Name, Notes: p.Notes}
		if patch.Name != nil {
			in.Name = *patch.Name
		}
		if patch.Notes != nil {
			in.Notes = *patch.Notes
		}
		if err := l.validateInput(&in); err != nil {
			return false, err
		}
		p.Name, p.Notes = in.Name, in.Notes
		if patch.Date != nil {
			p.Date = patch.Date.UTC()
		}
		return true, nil
	})
}

// DeleteProject removes a project.
func (l *Library) DeleteProject(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.projects.Delete(ctx, id); err != nil {
		return err
	}
	l.publish(Change{Kind: KindProject, Action: ActionDeleted, ID: id, At: l.opts.Now()})
	return nil
}

// AddLens adds a lens to a project. Adding a lens that is already present
// is a no-op.
func (l *Library) AddLens(ctx context.Context, projectID, lensID string) (*models.Project, error) {
	return l.mutateProject(ctx, projectID, ActionUpdated, func(p *models.Project) (bool, error) {
		if p.HasLens(lensID) {
			return false, nil
		}
		p.LensIDs = append(p.LensIDs, lensID)
		return true, nil
	})
}

// RemoveLens removes a lens from a project.
func (l *Library) RemoveLens(ctx context.Context, projectID, lensID string) (*models.Project, error) {
	return l.mutateProject(ctx, projectID, ActionUpdated, func(p *models.Project) (bool, error) {
		before := len(p.LensIDs)
		p.LensIDs = removeID(p.LensIDs, lensID)
		return len(p.LensIDs) != before, nil
	})
}

// AddCamera adds a camera to a project. Adding a camera that is already
// present is a no-op.
func (l *Library) AddCamera(ctx context.Context, projectID, cameraID string) (*models.Project, error) {
	return l.mutateProject(ctx, projectID, ActionUpdated, func(p *models.Project) (bool, error) {
		if p.HasCamera(cameraID) {
			return false, nil
		}
		p.CameraIDs = append(p.CameraIDs, cameraID)
		return true, nil
	})
}

// RemoveCamera removes a camera from a project.
func (l *Library) RemoveCamera(ctx context.Context, projectID, cameraID string) (*models.Project, error) {
	return l.mutateProject(ctx, projectID, ActionUpdated, func(p *models.Project) (bool, error) {
		before := len(p.CameraIDs)
		p.CameraIDs = removeID(p.CameraIDs, cameraID)
		return len(p.CameraIDs) != before, nil
	})
}

// mutateProject loads, edits and stores a project under the library lock.
// fn reports whether anything changed; unchanged projects are not written.
func (l *Library) mutateProject(ctx context.Context, id, action string, fn func(*models.Project) (bool, error)) (*models.Project, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, err := l.projects.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	changed, err := fn(p)
	if err != nil {
		return nil, err
	}
	if !changed {
		return p, nil
	}
	if err := l.projects.Update(ctx, p); err != nil {
		return nil, err
	}
	l.publishProject(action, p)
	return p, nil
}

func (l *Library) publishProject(action string, p *models.Project) {
	cp := *p
	cp.LensIDs = copyIDs(p.LensIDs)
	cp.CameraIDs = copyIDs(p.CameraIDs)
	l.publish(Change{Kind: KindProject, Action: action, ID: p.ID, Project: &cp, At: l.opts.Now()})
}

func removeID(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
