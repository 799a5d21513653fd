package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/maheshrc27/coolify-admin/internal/coolify"
	"github.com/maheshrc27/coolify-admin/internal/models"
	"github.com/maheshrc27/coolify-admin/internal/repository"
	"github.com/maheshrc27/coolify-admin/internal/transfer"
)

// ProjectPlatform is the part of the Coolify client the project pages use.
type ProjectPlatform interface {
	Projects(ctx context.Context) ([]coolify.Project, error)
	ProjectResources(ctx context.Context, projectUUID string) ([]coolify.Resource, error)
	ResourceDetails(ctx context.Context, resourceUUID string) (json.RawMessage, coolify.Kind, error)
}

type ProjectService interface {
	List(ctx context.Context) ([]*models.Project, error)
	Create(ctx context.Context, req *transfer.ProjectRequest) (*models.Project, error)
	Sync(ctx context.Context) (*transfer.SyncResult, error)
	Resources(ctx context.Context, projectUUID string) ([]coolify.Resource, error)
	ResourceDetails(ctx context.Context, resourceUUID string) (json.RawMessage, coolify.Kind, error)
}

type projectService struct {
	p        repository.ProjectRepository
	platform ProjectPlatform
}

func NewProjectService(p repository.ProjectRepository, platform ProjectPlatform) ProjectService {
	return &projectService{
		p:        p,
		platform: platform,
	}
}

func (s *projectService) List(ctx context.Context) ([]*models.Project, error) {
	return s.p.List(ctx)
}

func (s *projectService) Create(ctx context.Context, req *transfer.ProjectRequest) (*models.Project, error) {
	name := strings.TrimSpace(req.Name)
	uuid := strings.TrimSpace(req.CoolifyUUID)
	if name == "" || uuid == "" {
		return nil, fmt.Errorf("%w: name and coolifyUuid are required", ErrValidation)
	}

	_, isExist, err := s.p.GetByUUID(ctx, uuid)
	if err != nil {
		return nil, err
	}
	if isExist {
		return nil, ErrDuplicateProject
	}

	return s.p.Create(ctx, &models.Project{
		Name:        name,
		CoolifyUUID: uuid,
		Description: blankToNil(req.Description),
	})
}

// Sync imports every Coolify project, matching rows by coolify uuid. A project
// that fails to save is logged and skipped.
func (s *projectService) Sync(ctx context.Context) (*transfer.SyncResult, error) {
	projects, err := s.platform.Projects(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeployment, err)
	}

	result := &transfer.SyncResult{}
	for _, p := range projects {
		p := p
		if p.UUID == "" {
			continue
		}

		var description *string
		if p.Description != "" {
			description = &p.Description
		}

		inserted, err := s.p.Upsert(ctx, &models.Project{Name: p.Name, CoolifyUUID: p.UUID, Description: description})
		if err != nil {
			slog.Info("project sync failed", "uuid", p.UUID, "error", err)
			continue
		}

		if inserted {
			result.Added++
		} else {
			result.Updated++
		}
	}

	slog.Info("projects synced", "added", result.Added, "updated", result.Updated)
	return result, nil
}

func (s *projectService) Resources(ctx context.Context, projectUUID string) ([]coolify.Resource, error) {
	resources, err := s.platform.ProjectResources(ctx, projectUUID)
	if err != nil {
		return nil, platformError(err)
	}
	return resources, nil
}

func (s *projectService) ResourceDetails(ctx context.Context, resourceUUID string) (json.RawMessage, coolify.Kind, error) {
	raw, kind, err := s.platform.ResourceDetails(ctx, resourceUUID)
	if err != nil {
		return nil, kind, platformError(err)
	}
	return raw, kind, nil
}
