package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKindCaseInsensitive(t *testing.T) {
	for in, want := range map[string]Kind{
		"Epic":  KindEpic,
		"epic":  KindEpic,
		"EPIC":  KindEpic,
		"story": KindStory,
		" Task": KindTask,
	} {
		got, err := ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestParseKindRejectsUnknown(t *testing.T) {
	for _, in := range []string{"", "feature", "epics"} {
		_, err := ParseKind(in)
		assert.Error(t, err, in)
	}
}

func TestParseStatusCaseInsensitive(t *testing.T) {
	for in, want := range map[string]Status{
		"New":         StatusNew,
		"ready":       StatusReady,
		"inprogress":  StatusInProgress,
		"InProgress":  StatusInProgress,
		"in_progress": StatusInProgress,
		"DONE":        StatusDone,
	} {
		got, err := ParseStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestParseStatusRejectsUnknown(t *testing.T) {
	_, err := ParseStatus("archived")
	assert.Error(t, err)
}

func TestKindRelations(t *testing.T) {
	p, ok := KindTask.ParentKind()
	require.True(t, ok)
	assert.Equal(t, KindStory, p)

	p, ok = KindStory.ParentKind()
	require.True(t, ok)
	assert.Equal(t, KindEpic, p)

	_, ok = KindEpic.ParentKind()
	assert.False(t, ok)
}
