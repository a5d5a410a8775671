package sqlstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/transcript-quizgen/constants"
	"github.com/joseph-ayodele/transcript-quizgen/internal/entity"
)

func openSQLite(t *testing.T) *Store {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "quizgen.db")
	s, err := Open(context.Background(), "sqlite", dsn, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenRejectsUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), "mongodb", "whatever", nil)
	require.Error(t, err)
}

func TestGetAbsentReturnsNilNil(t *testing.T) {
	s := openSQLite(t)
	item, err := s.Get(context.Background(), "nope")
	require.NoError(t, err)
	require.Nil(t, item)
}

func TestMergeSetRoundTrip(t *testing.T) {
	s := openSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.MergeSet(ctx, "doc-1", entity.WorkItemPatch{
		Status:              entity.Status(constants.StatusProcessing),
		Title:               entity.String("Standup"),
		SourceVersionMarker: entity.String("v1"),
		Progress: &entity.Progress{
			Step:    constants.StepMetadata,
			Message: "resolving metadata",
			Percent: constants.PercentMetadataDone,
		},
	}))
	require.NoError(t, s.MergeSet(ctx, "doc-1", entity.WorkItemPatch{
		Status:        entity.Status(constants.StatusSucceeded),
		QuestionCount: entity.Int(5),
		FormID:        entity.String("form-1"),
		FormURL:       entity.String("https://forms.example/form-1"),
		Summary:       entity.String("release notes"),
		Progress: &entity.Progress{
			Step:    constants.StepDone,
			Message: "done",
			Percent: constants.PercentDone,
		},
	}))

	item, err := s.Get(ctx, "doc-1")
	require.NoError(t, err)
	require.Equal(t, constants.StatusSucceeded, item.Status)
	require.Equal(t, "Standup", item.Title)
	require.Equal(t, "v1", item.SourceVersionMarker)
	require.Equal(t, 5, item.QuestionCount)
	require.Equal(t, "form-1", item.FormID)
	require.Equal(t, "https://forms.example/form-1", item.FormURL)
	require.Equal(t, "release notes", item.Summary)
	require.Equal(t, constants.StepDone, item.Progress.Step)
	require.Equal(t, constants.PercentDone, item.Progress.Percent)
	require.False(t, item.CreatedAt.IsZero())
	require.False(t, item.UpdatedAt.IsZero())
}

func TestMergeSetClearSentinel(t *testing.T) {
	s := openSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.MergeSet(ctx, "doc-1", entity.WorkItemPatch{
		Title:        entity.String("Standup"),
		FormID:       entity.String("form-1"),
		ErrorMessage: entity.String("boom"),
	}))
	require.NoError(t, s.MergeSet(ctx, "doc-1", entity.WorkItemPatch{
		FormID:       entity.String(entity.ClearField),
		ErrorMessage: entity.String(entity.ClearField),
	}))

	item, err := s.Get(ctx, "doc-1")
	require.NoError(t, err)
	require.Empty(t, item.FormID)
	require.Empty(t, item.ErrorMessage)
	require.Equal(t, "Standup", item.Title)
}

func TestListOrdersByUpdatedAt(t *testing.T) {
	s := openSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.MergeSet(ctx, "doc-1", entity.WorkItemPatch{Title: entity.String("a")}))
	require.NoError(t, s.MergeSet(ctx, "doc-2", entity.WorkItemPatch{Title: entity.String("b")}))
	require.NoError(t, s.MergeSet(ctx, "doc-1", entity.WorkItemPatch{Title: entity.String("a2")}))

	items, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "doc-1", items[0].ID)
}

func TestRebind(t *testing.T) {
	pg := &Store{postgres: true}
	require.Equal(t, "UPDATE t SET a = $1, b = $2 WHERE id = $3",
		pg.rebind("UPDATE t SET a = ?, b = ? WHERE id = ?"))

	lite := &Store{postgres: false}
	require.Equal(t, "SELECT * FROM t WHERE id = ?",
		lite.rebind("SELECT * FROM t WHERE id = ?"))
}
