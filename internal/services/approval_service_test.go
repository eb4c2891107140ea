package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/backlog-studio/engine/internal/models"
	"github.com/backlog-studio/engine/internal/repository"
	appErr "github.com/backlog-studio/engine/pkg/errors"
)

func approvalFixture(t *testing.T) (*gorm.DB, ProjectService, WorkItemService, ApprovalService, uuid.UUID, *models.Project) {
	t.Helper()
	db := newTestDB(t)
	projectRepo := repository.NewProjectRepository(db)
	itemRepo := repository.NewWorkItemRepository(db)
	projects := NewProjectService(projectRepo)
	items := NewWorkItemService(projectRepo, itemRepo, stubDirectory{})
	approvals := NewApprovalService(projectRepo, itemRepo)

	owner := uuid.New()
	p, err := projects.Create(context.Background(), owner, &CreateProjectInput{Name: "approved"})
	require.NoError(t, err)
	return db, projects, items, approvals, owner, p
}

func sampleForest() []EpicDraft {
	return []EpicDraft{
		{
			Title: "Checkout revamp",
			Stories: []StoryDraft{
				{Title: "One-page flow", Tasks: []TaskDraft{{Title: "Wireframes"}, {Title: "API contract"}}},
				{Title: "Saved cards", Tasks: []TaskDraft{{Title: "Vault integration"}}},
			},
		},
		{
			Title:   "Observability",
			Stories: []StoryDraft{{Title: "Tracing rollout"}},
		},
	}
}

func itemCount(t *testing.T, db *gorm.DB, projectID uuid.UUID) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.WorkItem{}).Where("project_id = ?", projectID).Count(&n).Error)
	return n
}

func TestApproveCommitsWholeForest(t *testing.T) {
	db, _, items, approvals, owner, p := approvalFixture(t)
	ctx := context.Background()

	result, err := approvals.Approve(ctx, p.ID, owner, sampleForest())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Epics)
	assert.Equal(t, 3, result.Stories)
	assert.Equal(t, 3, result.Tasks)
	assert.Equal(t, 8, result.Total)
	assert.Len(t, result.WorkItemIDs, 8)
	assert.Equal(t, int64(8), itemCount(t, db, p.ID))

	// the persisted tree matches the draft nesting and starts as New
	views, _, err := items.List(ctx, p.ID, owner, nil, PageRequest{})
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "Checkout revamp", views[0].Title)
	assert.Equal(t, models.KindEpic, views[0].Kind)
	assert.Equal(t, models.StatusNew, views[0].Status)
	assert.Nil(t, views[0].AssignedUserID)
	assert.True(t, views[0].HasChildren)

	stories, _, err := items.List(ctx, p.ID, owner, &views[0].ID, PageRequest{})
	require.NoError(t, err)
	require.Len(t, stories, 2)
	assert.Equal(t, models.KindStory, stories[0].Kind)

	tasks, _, err := items.List(ctx, p.ID, owner, &stories[0].ID, PageRequest{})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, models.KindTask, tasks[0].Kind)
}

func TestApproveRejectsDuplicateEpicTitle(t *testing.T) {
	db, _, items, approvals, owner, p := approvalFixture(t)
	ctx := context.Background()

	_, err := items.Create(ctx, p.ID, owner, &CreateWorkItemInput{Kind: models.KindEpic, Title: "Observability"})
	require.NoError(t, err)
	before := itemCount(t, db, p.ID)

	_, err = approvals.Approve(ctx, p.ID, owner, sampleForest())
	assert.True(t, appErr.IsCode(err, appErr.CodeConflict))
	assert.Equal(t, before, itemCount(t, db, p.ID), "conflict must commit nothing")

	// removing the duplicate lets the rest of the batch through
	forest := sampleForest()[:1]
	result, err := approvals.Approve(ctx, p.ID, owner, forest)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Epics)
	assert.Equal(t, before+6, itemCount(t, db, p.ID))
}

func TestApproveValidatesEveryNodeBeforeWriting(t *testing.T) {
	db, _, _, approvals, owner, p := approvalFixture(t)
	ctx := context.Background()

	forest := sampleForest()
	forest[1].Stories[0].Title = ""
	_, err := approvals.Approve(ctx, p.ID, owner, forest)
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))
	assert.Zero(t, itemCount(t, db, p.ID))

	_, err = approvals.Approve(ctx, p.ID, owner, nil)
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))
}

func TestApproveIsOwnershipScoped(t *testing.T) {
	_, _, _, approvals, _, p := approvalFixture(t)
	ctx := context.Background()

	_, err := approvals.Approve(ctx, p.ID, uuid.New(), sampleForest())
	assert.True(t, appErr.IsCode(err, appErr.CodeForbidden))

	_, err = approvals.Approve(ctx, uuid.New(), uuid.New(), sampleForest())
	assert.True(t, appErr.IsCode(err, appErr.CodeNotFound))
}
