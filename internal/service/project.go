// Package service implements the project and journal use cases on top of the
// storage gateways.
package service

import (
	"context"
	"fmt"

	"github.com/labstack/gommon/log"
	"github.com/ldi/tasker/internal/apperr"
	"github.com/ldi/tasker/internal/ids"
	"github.com/ldi/tasker/internal/reconcile"
	"github.com/ldi/tasker/internal/validate"
	"github.com/ldi/tasker/pkg/models"
)

type ProjectService struct {
	store  ProjectStore
	newID  ids.Generator
	logger *log.Logger
}

type Option func(*options)

type options struct {
	gen    ids.Generator
	logger *log.Logger
}

// WithGenerator replaces the UUID generator, mostly for tests.
func WithGenerator(gen ids.Generator) Option {
	return func(o *options) { o.gen = gen }
}

func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) options {
	o := options{gen: ids.New}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.New("service")
		o.logger.SetLevel(log.OFF)
	}
	return o
}

func NewProjectService(store ProjectStore, opts ...Option) *ProjectService {
	o := buildOptions(opts)
	return &ProjectService{store: store, newID: o.gen, logger: o.logger}
}

func (s *ProjectService) CreateProject(ctx context.Context, req models.NewProjectRequest) (*models.Project, error) {
	if err := validate.NewProject(req); err != nil {
		s.logger.Debugf("rejected project creation: %v", err)
		return nil, err
	}

	p := &models.Project{
		ID:          s.newID(),
		Name:        *req.Name,
		Description: *req.Description,
		Tasks:       []*models.Task{},
		Backlog:     []*models.Task{},
	}
	if err := s.store.SaveProject(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save project: %w", err)
	}

	s.logger.Infof("created project %s", p.ID)
	return s.reload(ctx, p.ID)
}

func (s *ProjectService) GetAllProjects(ctx context.Context) ([]*models.Project, error) {
	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	if projects == nil {
		projects = []*models.Project{}
	}
	return projects, nil
}

func (s *ProjectService) GetProjectByID(ctx context.Context, id string) (*models.Project, error) {
	if err := validate.ID("Project", id); err != nil {
		return nil, err
	}
	return s.reload(ctx, id)
}

// UpdateProject reconciles the submitted state into the stored project and
// saves the result in one write. Nothing is written when validation,
// lookup or duplicate detection fails.
func (s *ProjectService) UpdateProject(ctx context.Context, req models.UpdateProjectRequest) (*models.Project, error) {
	if err := validate.UpdateProject(req); err != nil {
		s.logger.Debugf("rejected project update: %v", err)
		return nil, err
	}

	current, err := s.store.FindProject(ctx, *req.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	if current == nil {
		return nil, apperr.NotFound("Project not found with ID: %s", *req.ID)
	}

	next, err := reconcile.Project(current, req, s.newID)
	if err != nil {
		s.logger.Debugf("rejected project update %s: %v", current.ID, err)
		return nil, err
	}

	if err := s.store.SaveProject(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to save project: %w", err)
	}

	s.logger.Infof("updated project %s (%d active, %d backlog)", next.ID, len(next.Tasks), len(next.Backlog))
	return s.reload(ctx, next.ID)
}

func (s *ProjectService) DeleteProject(ctx context.Context, id string) error {
	if err := validate.ID("Project", id); err != nil {
		return err
	}

	exists, err := s.store.ExistsProject(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check project: %w", err)
	}
	if !exists {
		return apperr.NotFound("Project not found with ID: %s", id)
	}

	if err := s.store.DeleteProject(ctx, id); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	s.logger.Infof("deleted project %s", id)
	return nil
}

func (s *ProjectService) reload(ctx context.Context, id string) (*models.Project, error) {
	p, err := s.store.FindProject(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	if p == nil {
		return nil, apperr.NotFound("Project not found with ID: %s", id)
	}
	return p, nil
}
