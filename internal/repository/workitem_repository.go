package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/backlog-studio/engine/internal/models"
	appErr "github.com/backlog-studio/engine/pkg/errors"
)

type WorkItemRepository interface {
	BaseRepository[models.WorkItem]
	GetInProject(ctx context.Context, projectID, id uuid.UUID, dest *models.WorkItem) error
	ListByParent(ctx context.Context, projectID uuid.UUID, parentID *uuid.UUID, offset, limit int) ([]models.WorkItem, int64, error)
	ListChildren(ctx context.Context, parentID uuid.UUID) ([]models.WorkItem, error)
	ChildIDs(ctx context.Context, parentIDs []uuid.UUID) ([]uuid.UUID, error)
	ParentsWithChildren(ctx context.Context, candidateIDs []uuid.UUID) (map[uuid.UUID]bool, error)
	KindOf(ctx context.Context, projectID, id uuid.UUID) (models.Kind, error)
	EpicTitleExists(ctx context.Context, projectID uuid.UUID, titles []string) (string, bool, error)
	UpdateGuarded(ctx context.Context, w *models.WorkItem, observedStamp uuid.UUID) error
	CreateForest(ctx context.Context, levels ...[]*models.WorkItem) error
}

type workItemRepository struct {
	BaseRepository[models.WorkItem]
	db *gorm.DB
}

func NewWorkItemRepository(db *gorm.DB) WorkItemRepository {
	return &workItemRepository{BaseRepository: NewBaseRepository[models.WorkItem](db), db: db}
}

func (r *workItemRepository) GetInProject(ctx context.Context, projectID, id uuid.UUID, dest *models.WorkItem) error {
	err := r.db.WithContext(ctx).Where("id = ? AND project_id = ?", id, projectID).First(dest).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return appErr.New(appErr.CodeNotFound, "work item not found")
		}
		return appErr.Wrap(err, appErr.CodeInternal, "get work item failed")
	}
	return nil
}

// ListByParent returns one tree level: the items whose parent_id equals
// parentID (nil selects the root Epics), ordered by creation time.
func (r *workItemRepository) ListByParent(ctx context.Context, projectID uuid.UUID, parentID *uuid.UUID, offset, limit int) ([]models.WorkItem, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.WorkItem{}).Where("project_id = ?", projectID)
	if parentID == nil {
		q = q.Where("parent_id IS NULL")
	} else {
		q = q.Where("parent_id = ?", *parentID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, appErr.Wrap(err, appErr.CodeInternal, "count work items failed")
	}

	var out []models.WorkItem
	if err := q.Order("created_at ASC").Offset(offset).Limit(limit).Find(&out).Error; err != nil {
		return nil, 0, appErr.Wrap(err, appErr.CodeInternal, "list work items failed")
	}
	return out, total, nil
}

func (r *workItemRepository) ListChildren(ctx context.Context, parentID uuid.UUID) ([]models.WorkItem, error) {
	var out []models.WorkItem
	if err := r.db.WithContext(ctx).Where("parent_id = ?", parentID).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list children failed")
	}
	return out, nil
}

// ChildIDs returns the ids of all direct children of any of parentIDs; used
// for breadth-first descendant enumeration.
func (r *workItemRepository) ChildIDs(ctx context.Context, parentIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	var out []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&models.WorkItem{}).Where("parent_id IN ?", parentIDs).Pluck("id", &out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list child ids failed")
	}
	return out, nil
}

// ParentsWithChildren reports which of candidateIDs have at least one child.
// One grouped query serves a whole page of has-children flags.
func (r *workItemRepository) ParentsWithChildren(ctx context.Context, candidateIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	out := make(map[uuid.UUID]bool, len(candidateIDs))
	if len(candidateIDs) == 0 {
		return out, nil
	}
	var parents []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.WorkItem{}).
		Where("parent_id IN ?", candidateIDs).
		Distinct().
		Pluck("parent_id", &parents).Error
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "check children existence failed")
	}
	for _, id := range parents {
		out[id] = true
	}
	return out, nil
}

func (r *workItemRepository) KindOf(ctx context.Context, projectID, id uuid.UUID) (models.Kind, error) {
	var kinds []models.Kind
	err := r.db.WithContext(ctx).
		Model(&models.WorkItem{}).
		Where("id = ? AND project_id = ?", id, projectID).
		Limit(1).
		Pluck("kind", &kinds).Error
	if err != nil {
		return "", appErr.Wrap(err, appErr.CodeInternal, "get work item kind failed")
	}
	if len(kinds) == 0 {
		return "", appErr.New(appErr.CodeNotFound, "work item not found")
	}
	return kinds[0], nil
}

// EpicTitleExists reports whether any persisted Epic in the project already
// carries one of the given titles, returning the first duplicate found.
func (r *workItemRepository) EpicTitleExists(ctx context.Context, projectID uuid.UUID, titles []string) (string, bool, error) {
	if len(titles) == 0 {
		return "", false, nil
	}
	var dupes []string
	err := r.db.WithContext(ctx).
		Model(&models.WorkItem{}).
		Where("project_id = ? AND kind = ? AND title IN ?", projectID, models.KindEpic, titles).
		Limit(1).
		Pluck("title", &dupes).Error
	if err != nil {
		return "", false, appErr.Wrap(err, appErr.CodeInternal, "check epic titles failed")
	}
	if len(dupes) == 0 {
		return "", false, nil
	}
	return dupes[0], true, nil
}

// UpdateGuarded writes w only if the row still carries the stamp observed at
// read time; w must already carry the freshly rotated stamp.
func (r *workItemRepository) UpdateGuarded(ctx context.Context, w *models.WorkItem, observedStamp uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&models.WorkItem{}).
		Where("id = ? AND version_stamp = ?", w.ID, observedStamp).
		Updates(map[string]any{
			"title":            w.Title,
			"description":      w.Description,
			"parent_id":        w.ParentID,
			"status":           w.Status,
			"assigned_user_id": w.AssignedUserID,
			"version_stamp":    w.VersionStamp,
			"updated_at":       w.UpdatedAt,
		})
	if res.Error != nil {
		return appErr.Wrap(res.Error, appErr.CodeInternal, "update work item failed")
	}
	if res.RowsAffected == 0 {
		exists, err := r.Exists(ctx, w.ID)
		if err != nil {
			return err
		}
		if !exists {
			return appErr.New(appErr.CodeNotFound, "work item not found")
		}
		return appErr.New(appErr.CodeConcurrency, "work item was modified concurrently")
	}
	return nil
}

// CreateForest inserts a prepared draft forest in one transaction, one level
// at a time so parent rows exist before their children. Any failure rolls the
// whole batch back.
func (r *workItemRepository) CreateForest(ctx context.Context, levels ...[]*models.WorkItem) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, level := range levels {
			if len(level) == 0 {
				continue
			}
			if err := tx.Create(level).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "persist approved forest failed")
	}
	return nil
}
