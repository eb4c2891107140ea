package services

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backlog-studio/engine/internal/models"
	"github.com/backlog-studio/engine/internal/repository"
	appErr "github.com/backlog-studio/engine/pkg/errors"
)

func TestProjectCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	svc := NewProjectService(repository.NewProjectRepository(db))
	ctx := context.Background()
	owner := uuid.New()

	p, err := svc.Create(ctx, owner, &CreateProjectInput{Name: "Website relaunch", Description: "Q3 initiative"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Equal(t, owner, p.OwnerID)

	got, err := svc.Get(ctx, p.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, "Website relaunch", got.Name)
}

func TestProjectCreateValidatesFields(t *testing.T) {
	db := newTestDB(t)
	svc := NewProjectService(repository.NewProjectRepository(db))
	ctx := context.Background()

	_, err := svc.Create(ctx, uuid.New(), &CreateProjectInput{Name: ""})
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))

	_, err = svc.Create(ctx, uuid.New(), &CreateProjectInput{Name: strings.Repeat("x", 201)})
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))

	// limits count characters, not bytes
	_, err = svc.Create(ctx, uuid.New(), &CreateProjectInput{Name: strings.Repeat("ж", 200)})
	assert.NoError(t, err)

	_, err = svc.Create(ctx, uuid.New(), &CreateProjectInput{Name: strings.Repeat("ж", 201)})
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))
}

func TestProjectOwnershipScoping(t *testing.T) {
	db := newTestDB(t)
	svc := NewProjectService(repository.NewProjectRepository(db))
	ctx := context.Background()
	owner, stranger := uuid.New(), uuid.New()

	p, err := svc.Create(ctx, owner, &CreateProjectInput{Name: "private"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, p.ID, stranger)
	assert.True(t, appErr.IsCode(err, appErr.CodeForbidden))

	_, err = svc.Update(ctx, p.ID, stranger, &UpdateProjectInput{Name: "stolen"})
	assert.True(t, appErr.IsCode(err, appErr.CodeForbidden))

	_, err = svc.Delete(ctx, p.ID, stranger)
	assert.True(t, appErr.IsCode(err, appErr.CodeForbidden))

	_, err = svc.Get(ctx, uuid.New(), owner)
	assert.True(t, appErr.IsCode(err, appErr.CodeNotFound))
}

func TestProjectUpdateAdvancesStamp(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewProjectRepository(db)
	svc := NewProjectService(repo)
	ctx := context.Background()
	owner := uuid.New()

	p, err := svc.Create(ctx, owner, &CreateProjectInput{Name: "before"})
	require.NoError(t, err)
	before := p.VersionStamp

	updated, err := svc.Update(ctx, p.ID, owner, &UpdateProjectInput{Name: "after", Description: "changed"})
	require.NoError(t, err)
	assert.Equal(t, "after", updated.Name)
	assert.NotEqual(t, before, updated.VersionStamp)
}

func TestProjectUpdateConflictsOnStaleStamp(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewProjectRepository(db)
	svc := NewProjectService(repo)
	ctx := context.Background()
	owner := uuid.New()

	p, err := svc.Create(ctx, owner, &CreateProjectInput{Name: "contended"})
	require.NoError(t, err)
	stale := p.VersionStamp

	_, err = svc.Update(ctx, p.ID, owner, &UpdateProjectInput{Name: "writer one"})
	require.NoError(t, err)

	// a second writer still holding the original stamp loses the race
	loser := models.Project{ID: p.ID, Name: "writer two"}
	loser.Rename("writer two", "")
	err = repo.UpdateGuarded(ctx, &loser, stale)
	assert.True(t, appErr.IsCode(err, appErr.CodeConcurrency))

	got, err := svc.Get(ctx, p.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, "writer one", got.Name)
}

func TestProjectListPagination(t *testing.T) {
	db := newTestDB(t)
	svc := NewProjectService(repository.NewProjectRepository(db))
	ctx := context.Background()
	owner, other := uuid.New(), uuid.New()

	for i := 0; i < 5; i++ {
		_, err := svc.Create(ctx, owner, &CreateProjectInput{Name: string(rune('a' + i))})
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, other, &CreateProjectInput{Name: "not mine"})
	require.NoError(t, err)

	items, info, err := svc.List(ctx, owner, PageRequest{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, int64(5), info.TotalItems)
	assert.Equal(t, 3, info.TotalPages)
	assert.Equal(t, 1, info.CurrentPage)

	items, info, err = svc.List(ctx, owner, PageRequest{Page: 3, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 3, info.CurrentPage)
}

func TestProjectDeleteCascadesAndCounts(t *testing.T) {
	db := newTestDB(t)
	projectRepo := repository.NewProjectRepository(db)
	itemRepo := repository.NewWorkItemRepository(db)
	projects := NewProjectService(projectRepo)
	items := NewWorkItemService(projectRepo, itemRepo, stubDirectory{})
	ctx := context.Background()
	owner := uuid.New()

	p, err := projects.Create(ctx, owner, &CreateProjectInput{Name: "doomed"})
	require.NoError(t, err)

	epic, err := items.Create(ctx, p.ID, owner, &CreateWorkItemInput{Kind: models.KindEpic, Title: "E"})
	require.NoError(t, err)
	story, err := items.Create(ctx, p.ID, owner, &CreateWorkItemInput{Kind: models.KindStory, ParentID: &epic.ID, Title: "S"})
	require.NoError(t, err)
	_, err = items.Create(ctx, p.ID, owner, &CreateWorkItemInput{Kind: models.KindTask, ParentID: &story.ID, Title: "T"})
	require.NoError(t, err)

	count, err := projects.Delete(ctx, p.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	_, err = projects.Get(ctx, p.ID, owner)
	assert.True(t, appErr.IsCode(err, appErr.CodeNotFound))

	var remaining int64
	require.NoError(t, db.Model(&models.WorkItem{}).Where("project_id = ?", p.ID).Count(&remaining).Error)
	assert.Zero(t, remaining)
}
