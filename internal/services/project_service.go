package services

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/backlog-studio/engine/internal/models"
	"github.com/backlog-studio/engine/internal/repository"
	appErr "github.com/backlog-studio/engine/pkg/errors"
	"github.com/backlog-studio/engine/pkg/logger"
)

const (
	maxNameLen        = 200
	maxProjectDescLen = 2000
)

// Service interface and related DTOs
type ProjectService interface {
	Create(ctx context.Context, ownerID uuid.UUID, input *CreateProjectInput) (*models.Project, error)
	Get(ctx context.Context, projectID, callerID uuid.UUID) (*models.Project, error)
	List(ctx context.Context, ownerID uuid.UUID, page PageRequest) ([]models.Project, PageInfo, error)
	Update(ctx context.Context, projectID, callerID uuid.UUID, input *UpdateProjectInput) (*models.Project, error)
	Delete(ctx context.Context, projectID, callerID uuid.UUID) (int64, error)
}

type CreateProjectInput struct {
	Name        string
	Description string
}

type UpdateProjectInput struct {
	Name        string
	Description string
}

type projectService struct {
	projects repository.ProjectRepository
}

func NewProjectService(projects repository.ProjectRepository) ProjectService {
	return &projectService{projects: projects}
}

var _ ProjectService = (*projectService)(nil)

// authorizeProject loads the project and verifies the caller owns it. Every
// ownership-scoped operation in the package funnels through here.
func authorizeProject(ctx context.Context, projects repository.ProjectRepository, projectID, callerID uuid.UUID) (*models.Project, error) {
	var p models.Project
	if err := projects.GetByID(ctx, projectID, &p); err != nil {
		if appErr.IsCode(err, appErr.CodeNotFound) {
			return nil, appErr.New(appErr.CodeNotFound, "project not found")
		}
		return nil, err
	}
	if p.OwnerID != callerID {
		return nil, appErr.New(appErr.CodeForbidden, "caller does not own project")
	}
	return &p, nil
}

func validateProjectFields(name, description string) error {
	if name == "" {
		return appErr.New(appErr.CodeInvalid, "project name is required").WithMeta("field", "name")
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return appErr.New(appErr.CodeInvalid, fmt.Sprintf("project name exceeds %d characters", maxNameLen)).WithMeta("field", "name")
	}
	if utf8.RuneCountInString(description) > maxProjectDescLen {
		return appErr.New(appErr.CodeInvalid, fmt.Sprintf("project description exceeds %d characters", maxProjectDescLen)).WithMeta("field", "description")
	}
	return nil
}

func (s *projectService) Create(ctx context.Context, ownerID uuid.UUID, input *CreateProjectInput) (*models.Project, error) {
	logger.L().Info("create project", zap.String("owner_id", ownerID.String()), zap.String("name", input.Name))

	if err := validateProjectFields(input.Name, input.Description); err != nil {
		return nil, err
	}

	p := &models.Project{
		OwnerID:     ownerID,
		Name:        input.Name,
		Description: input.Description,
	}
	if err := s.projects.Create(ctx, p); err != nil {
		return nil, err
	}

	logger.L().Info("project created", zap.String("project_id", p.ID.String()), zap.String("owner_id", ownerID.String()))
	return p, nil
}

func (s *projectService) Get(ctx context.Context, projectID, callerID uuid.UUID) (*models.Project, error) {
	return authorizeProject(ctx, s.projects, projectID, callerID)
}

func (s *projectService) List(ctx context.Context, ownerID uuid.UUID, page PageRequest) ([]models.Project, PageInfo, error) {
	offset, limit := page.offsetLimit()
	items, total, err := s.projects.ListByOwner(ctx, ownerID, offset, limit)
	if err != nil {
		return nil, PageInfo{}, err
	}
	return items, newPageInfo(page, total), nil
}

func (s *projectService) Update(ctx context.Context, projectID, callerID uuid.UUID, input *UpdateProjectInput) (*models.Project, error) {
	logger.L().Info("update project", zap.String("project_id", projectID.String()), zap.String("caller_id", callerID.String()))

	p, err := authorizeProject(ctx, s.projects, projectID, callerID)
	if err != nil {
		return nil, err
	}
	if err := validateProjectFields(input.Name, input.Description); err != nil {
		return nil, err
	}

	observed := p.VersionStamp
	p.Rename(input.Name, input.Description)
	if err := s.projects.UpdateGuarded(ctx, p, observed); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes the project and, through the store's cascade, every work
// item in it. The returned count is taken before the delete, so a concurrent
// create can skew it; accepted as-is, the cascade itself stays correct.
func (s *projectService) Delete(ctx context.Context, projectID, callerID uuid.UUID) (int64, error) {
	logger.L().Info("delete project", zap.String("project_id", projectID.String()), zap.String("caller_id", callerID.String()))

	if _, err := authorizeProject(ctx, s.projects, projectID, callerID); err != nil {
		return 0, err
	}

	count, err := s.projects.CountWorkItems(ctx, projectID)
	if err != nil {
		return 0, err
	}
	if err := s.projects.Delete(ctx, projectID); err != nil {
		return 0, err
	}

	logger.L().Info("project deleted", zap.String("project_id", projectID.String()), zap.Int64("work_items", count))
	return count, nil
}
