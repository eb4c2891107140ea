package hierarchy

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backlog-studio/engine/internal/models"
)

// stubResolver resolves parents from a fixed id -> kind map.
type stubResolver map[uuid.UUID]models.Kind

func (s stubResolver) Resolve(_ context.Context, id uuid.UUID) (models.Kind, error) {
	k, ok := s[id]
	if !ok {
		return "", ErrParentNotFound
	}
	return k, nil
}

func TestEpicMustBeRoot(t *testing.T) {
	ctx := context.Background()
	epicID := uuid.New()
	resolver := stubResolver{epicID: models.KindEpic}

	require.NoError(t, Validate(ctx, models.KindEpic, nil, resolver))

	err := Validate(ctx, models.KindEpic, &epicID, resolver)
	var v *Violation
	require.ErrorAs(t, err, &v)
	assert.Equal(t, ReasonEpicHasParent, v.Reason)
}

func TestStoryRequiresEpicParent(t *testing.T) {
	ctx := context.Background()
	epicID, storyID := uuid.New(), uuid.New()
	resolver := stubResolver{epicID: models.KindEpic, storyID: models.KindStory}

	require.NoError(t, Validate(ctx, models.KindStory, &epicID, resolver))

	err := Validate(ctx, models.KindStory, nil, resolver)
	var v *Violation
	require.ErrorAs(t, err, &v)
	assert.Equal(t, ReasonStoryMissingEpicParent, v.Reason)

	err = Validate(ctx, models.KindStory, &storyID, resolver)
	require.ErrorAs(t, err, &v)
	assert.Equal(t, ReasonStoryParentWrongKind, v.Reason)
}

func TestTaskRequiresStoryParent(t *testing.T) {
	ctx := context.Background()
	epicID, storyID := uuid.New(), uuid.New()
	resolver := stubResolver{epicID: models.KindEpic, storyID: models.KindStory}

	require.NoError(t, Validate(ctx, models.KindTask, &storyID, resolver))

	err := Validate(ctx, models.KindTask, nil, resolver)
	var v *Violation
	require.ErrorAs(t, err, &v)
	assert.Equal(t, ReasonTaskMissingStoryParent, v.Reason)

	err = Validate(ctx, models.KindTask, &epicID, resolver)
	require.ErrorAs(t, err, &v)
	assert.Equal(t, ReasonTaskParentWrongKind, v.Reason)
}

func TestMissingParentPropagates(t *testing.T) {
	ctx := context.Background()
	ghost := uuid.New()
	err := Validate(ctx, models.KindStory, &ghost, stubResolver{})
	assert.ErrorIs(t, err, ErrParentNotFound)
}
