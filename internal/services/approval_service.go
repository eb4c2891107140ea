package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/backlog-studio/engine/internal/models"
	"github.com/backlog-studio/engine/internal/repository"
	appErr "github.com/backlog-studio/engine/pkg/errors"
	"github.com/backlog-studio/engine/pkg/logger"
)

// Draft nodes mirror an externally generated Epic > Story > Task proposal.
// Nothing is stored server-side until Approve commits the whole forest.
type TaskDraft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type StoryDraft struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Tasks       []TaskDraft `json:"tasks"`
}

type EpicDraft struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Stories     []StoryDraft `json:"stories"`
}

// ApprovalResult reports what one committed approval created.
type ApprovalResult struct {
	Epics       int         `json:"epics"`
	Stories     int         `json:"stories"`
	Tasks       int         `json:"tasks"`
	Total       int         `json:"total"`
	WorkItemIDs []uuid.UUID `json:"work_item_ids"`
}

type ApprovalService interface {
	Approve(ctx context.Context, projectID, callerID uuid.UUID, epics []EpicDraft) (*ApprovalResult, error)
}

type approvalService struct {
	projects repository.ProjectRepository
	items    repository.WorkItemRepository
}

func NewApprovalService(projects repository.ProjectRepository, items repository.WorkItemRepository) ApprovalService {
	return &approvalService{projects: projects, items: items}
}

var _ ApprovalService = (*approvalService)(nil)

// Approve persists a draft forest in one atomic unit: every node commits or
// none do. Per-node hierarchy validation is skipped on purpose, the typed
// draft shape is already validator-correct; field rules and the duplicate
// Epic title check still run before any write.
func (s *approvalService) Approve(ctx context.Context, projectID, callerID uuid.UUID, epics []EpicDraft) (*ApprovalResult, error) {
	logger.L().Info("approve draft forest", zap.String("project_id", projectID.String()), zap.Int("epics", len(epics)))

	if _, err := authorizeProject(ctx, s.projects, projectID, callerID); err != nil {
		return nil, err
	}
	if len(epics) == 0 {
		return nil, appErr.New(appErr.CodeInvalid, "draft forest is empty")
	}
	if err := validateForest(epics); err != nil {
		return nil, err
	}

	titles := make([]string, len(epics))
	for i, e := range epics {
		titles[i] = e.Title
	}
	dupe, found, err := s.items.EpicTitleExists(ctx, projectID, titles)
	if err != nil {
		return nil, err
	}
	if found {
		return nil, appErr.New(appErr.CodeConflict, fmt.Sprintf("epic %q already exists in project", dupe)).WithMeta("title", dupe)
	}

	var (
		epicRows  []*models.WorkItem
		storyRows []*models.WorkItem
		taskRows  []*models.WorkItem
		ids       []uuid.UUID
	)
	newItem := func(kind models.Kind, parentID *uuid.UUID, title, description string) *models.WorkItem {
		w := &models.WorkItem{
			ID:          uuid.New(),
			ProjectID:   projectID,
			ParentID:    parentID,
			Kind:        kind,
			Title:       title,
			Description: description,
			Status:      models.StatusNew,
		}
		ids = append(ids, w.ID)
		return w
	}

	for _, e := range epics {
		epicRow := newItem(models.KindEpic, nil, e.Title, e.Description)
		epicRows = append(epicRows, epicRow)
		for _, st := range e.Stories {
			storyRow := newItem(models.KindStory, &epicRow.ID, st.Title, st.Description)
			storyRows = append(storyRows, storyRow)
			for _, tk := range st.Tasks {
				taskRows = append(taskRows, newItem(models.KindTask, &storyRow.ID, tk.Title, tk.Description))
			}
		}
	}

	if err := s.items.CreateForest(ctx, epicRows, storyRows, taskRows); err != nil {
		return nil, err
	}

	result := &ApprovalResult{
		Epics:       len(epicRows),
		Stories:     len(storyRows),
		Tasks:       len(taskRows),
		Total:       len(ids),
		WorkItemIDs: ids,
	}
	logger.L().Info("draft forest approved",
		zap.String("project_id", projectID.String()),
		zap.Int("epics", result.Epics),
		zap.Int("stories", result.Stories),
		zap.Int("tasks", result.Tasks),
	)
	return result, nil
}

func validateForest(epics []EpicDraft) error {
	node := func(path, title, description string) error {
		if err := validateItemFields(title, description); err != nil {
			var ae *appErr.AppError
			if e, ok := err.(*appErr.AppError); ok {
				ae = e
			} else {
				return err
			}
			return ae.WithMeta("node", path)
		}
		return nil
	}
	for i, e := range epics {
		if err := node(fmt.Sprintf("epics[%d]", i), e.Title, e.Description); err != nil {
			return err
		}
		for j, st := range e.Stories {
			if err := node(fmt.Sprintf("epics[%d].stories[%d]", i, j), st.Title, st.Description); err != nil {
				return err
			}
			for k, tk := range st.Tasks {
				if err := node(fmt.Sprintf("epics[%d].stories[%d].tasks[%d]", i, j, k), tk.Title, tk.Description); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
