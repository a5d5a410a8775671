package localdir

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/transcript-quizgen/internal/common"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestListAllFindsTranscriptFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "standup.txt", "Alice shipped the parser.")
	writeFile(t, root, "retro.md", "Bob closed three incidents.")
	writeFile(t, root, "archive/q2/planning.vtt", "WEBVTT")
	writeFile(t, root, "notes.pdf", "binary")
	writeFile(t, root, ".hidden.txt", "skip me")
	writeFile(t, root, ".git/config.txt", "skip me too")

	docs, err := New(root).ListAll(context.Background(), "")
	require.NoError(t, err)

	ids := map[string]bool{}
	for _, d := range docs {
		ids[d.ID] = true
	}
	require.Len(t, docs, 3)
	require.True(t, ids["standup.txt"])
	require.True(t, ids["retro.md"])
	require.True(t, ids["archive/q2/planning.vtt"])
}

func TestListAllScopedToSubdirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "standup.txt", "a")
	writeFile(t, root, "archive/old.txt", "b")

	docs, err := New(root).ListAll(context.Background(), "archive")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	// The id stays root-relative so scan and direct lookups agree.
	require.Equal(t, "archive/old.txt", docs[0].ID)
}

func TestGetMetadata(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "standup.txt", "notes")

	meta, err := New(root).GetMetadata(context.Background(), "standup.txt")
	require.NoError(t, err)
	require.Equal(t, "standup.txt", meta.ID)
	require.Equal(t, "standup", meta.Name)
	require.NotEmpty(t, meta.VersionMarker)

	parsed, err := time.Parse("2006-01-02T15:04:05.000Z07:00", meta.VersionMarker)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now(), parsed, time.Minute)
}

func TestMarkerChangesWithModTime(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "standup.txt", "notes")
	src := New(root)

	before, err := src.GetMetadata(context.Background(), "standup.txt")
	require.NoError(t, err)

	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(filepath.Join(root, "standup.txt"), future, future))

	after, err := src.GetMetadata(context.Background(), "standup.txt")
	require.NoError(t, err)
	require.NotEqual(t, before.VersionMarker, after.VersionMarker)
}

func TestExportText(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "standup.txt", "Alice shipped the parser.")

	text, err := New(root).ExportText(context.Background(), "standup.txt")
	require.NoError(t, err)
	require.Equal(t, "Alice shipped the parser.", text)
}

func TestMissingFileIsNotFound(t *testing.T) {
	src := New(t.TempDir())

	_, err := src.GetMetadata(context.Background(), "ghost.txt")
	require.ErrorIs(t, err, common.ErrNotFound)

	_, err = src.ExportText(context.Background(), "ghost.txt")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestPathEscapeRejected(t *testing.T) {
	src := New(t.TempDir())

	_, err := src.ExportText(context.Background(), "../../etc/passwd")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestWithExtensions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "standup.txt", "a")
	writeFile(t, root, "standup.log", "b")

	docs, err := New(root).WithExtensions([]string{".LOG"}).ListAll(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, "standup.log", docs[0].ID)
}
