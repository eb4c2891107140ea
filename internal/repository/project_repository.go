package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/backlog-studio/engine/internal/models"
	appErr "github.com/backlog-studio/engine/pkg/errors"
)

type ProjectRepository interface {
	BaseRepository[models.Project]
	ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]models.Project, int64, error)
	UpdateGuarded(ctx context.Context, p *models.Project, observedStamp uuid.UUID) error
	CountWorkItems(ctx context.Context, projectID uuid.UUID) (int64, error)
}

type projectRepository struct {
	BaseRepository[models.Project]
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{BaseRepository: NewBaseRepository[models.Project](db), db: db}
}

func (r *projectRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]models.Project, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Project{}).Where("owner_id = ?", ownerID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, appErr.Wrap(err, appErr.CodeInternal, "count projects by owner failed")
	}

	var out []models.Project
	if err := q.Order("created_at ASC").Offset(offset).Limit(limit).Find(&out).Error; err != nil {
		return nil, 0, appErr.Wrap(err, appErr.CodeInternal, "list projects by owner failed")
	}
	return out, total, nil
}

// UpdateGuarded writes p only if the row still carries the stamp observed at
// read time. Zero rows with the row still present means a concurrent writer
// won the race.
func (r *projectRepository) UpdateGuarded(ctx context.Context, p *models.Project, observedStamp uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&models.Project{}).
		Where("id = ? AND version_stamp = ?", p.ID, observedStamp).
		Updates(map[string]any{
			"name":          p.Name,
			"description":   p.Description,
			"version_stamp": p.VersionStamp,
			"updated_at":    p.UpdatedAt,
		})
	if res.Error != nil {
		return appErr.Wrap(res.Error, appErr.CodeInternal, "update project failed")
	}
	if res.RowsAffected == 0 {
		exists, err := r.Exists(ctx, p.ID)
		if err != nil {
			return err
		}
		if !exists {
			return appErr.New(appErr.CodeNotFound, "project not found")
		}
		return appErr.New(appErr.CodeConcurrency, "project was modified concurrently")
	}
	return nil
}

func (r *projectRepository) CountWorkItems(ctx context.Context, projectID uuid.UUID) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.WorkItem{}).Where("project_id = ?", projectID).Count(&n).Error; err != nil {
		return 0, appErr.Wrap(err, appErr.CodeInternal, "count project work items failed")
	}
	return n, nil
}
