package redisstore

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/transcript-quizgen/constants"
	"github.com/joseph-ayodele/transcript-quizgen/internal/entity"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client)
}

func TestGetAbsentReturnsNilNil(t *testing.T) {
	s := newTestStore(t)
	item, err := s.Get(context.Background(), "nope")
	require.NoError(t, err)
	require.Nil(t, item)
}

func TestMergeSetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.MergeSet(ctx, "doc-1", entity.WorkItemPatch{
		Status:              entity.Status(constants.StatusProcessing),
		Title:               entity.String("Standup"),
		SourceVersionMarker: entity.String("v1"),
		Progress: &entity.Progress{
			Step:    constants.StepTranscript,
			Message: "exporting transcript",
			Percent: constants.PercentTranscript,
		},
	}))
	require.NoError(t, s.MergeSet(ctx, "doc-1", entity.WorkItemPatch{
		Status:        entity.Status(constants.StatusSucceeded),
		QuestionCount: entity.Int(5),
		FormURL:       entity.String("https://forms.example/form-1"),
	}))

	item, err := s.Get(ctx, "doc-1")
	require.NoError(t, err)
	require.Equal(t, constants.StatusSucceeded, item.Status)
	// Fields from the first patch survive the second merge.
	require.Equal(t, "Standup", item.Title)
	require.Equal(t, "v1", item.SourceVersionMarker)
	require.Equal(t, constants.StepTranscript, item.Progress.Step)
	require.Equal(t, constants.PercentTranscript, item.Progress.Percent)
	require.Equal(t, 5, item.QuestionCount)
	require.Equal(t, "https://forms.example/form-1", item.FormURL)
	require.False(t, item.CreatedAt.IsZero())
	require.False(t, item.UpdatedAt.IsZero())
}

func TestMergeSetClearSentinelDeletesHashField(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.MergeSet(ctx, "doc-1", entity.WorkItemPatch{
		Title:        entity.String("Standup"),
		ErrorMessage: entity.String("boom"),
	}))
	require.NoError(t, s.MergeSet(ctx, "doc-1", entity.WorkItemPatch{
		ErrorMessage: entity.String(entity.ClearField),
	}))

	item, err := s.Get(ctx, "doc-1")
	require.NoError(t, err)
	require.Empty(t, item.ErrorMessage)
	require.Equal(t, "Standup", item.Title)
}

func TestCreatedAtIsWrittenOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.MergeSet(ctx, "doc-1", entity.WorkItemPatch{Title: entity.String("a")}))
	first, err := s.Get(ctx, "doc-1")
	require.NoError(t, err)

	require.NoError(t, s.MergeSet(ctx, "doc-1", entity.WorkItemPatch{Title: entity.String("b")}))
	second, err := s.Get(ctx, "doc-1")
	require.NoError(t, err)

	require.Equal(t, first.CreatedAt, second.CreatedAt)
	require.False(t, second.UpdatedAt.Before(first.UpdatedAt))
}

func TestListReturnsAllItems(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"doc-1", "doc-2", "doc-3"} {
		require.NoError(t, s.MergeSet(ctx, id, entity.WorkItemPatch{
			Status: entity.Status(constants.StatusProcessing),
		}))
	}

	items, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	seen := map[string]bool{}
	for _, item := range items {
		seen[item.ID] = true
	}
	require.True(t, seen["doc-1"] && seen["doc-2"] && seen["doc-3"])
}
