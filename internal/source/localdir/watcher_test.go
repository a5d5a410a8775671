package localdir

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func collectEvents(t *testing.T, ch <-chan string, want int, timeout time.Duration) map[string]bool {
	t.Helper()
	got := map[string]bool{}
	deadline := time.After(timeout)
	for len(got) < want {
		select {
		case id, ok := <-ch:
			if !ok {
				t.Fatalf("event channel closed after %d of %d events", len(got), want)
			}
			got[id] = true
		case <-deadline:
			t.Fatalf("timed out after %d of %d events: %v", len(got), want, got)
		}
	}
	return got
}

func TestWatchInitialScanEmitsExistingFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "standup.txt", "a")
	writeFile(t, root, "archive/retro.md", "b")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, _, err := New(root).Watch(ctx, WatchConfig{InitialScan: true}, nil)
	require.NoError(t, err)

	got := collectEvents(t, events, 2, 5*time.Second)
	require.True(t, got["standup.txt"])
	require.True(t, got["archive/retro.md"])
}

func TestWatchEmitsOnCreate(t *testing.T) {
	root := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, _, err := New(root).Watch(ctx, WatchConfig{Debounce: 20 * time.Millisecond}, nil)
	require.NoError(t, err)

	// Let the watcher register the root before writing.
	time.Sleep(100 * time.Millisecond)
	writeFile(t, root, "planning.txt", "notes")

	got := collectEvents(t, events, 1, 5*time.Second)
	require.True(t, got["planning.txt"])
}

func TestWatchIgnoresNonTranscriptFiles(t *testing.T) {
	root := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, _, err := New(root).Watch(ctx, WatchConfig{}, nil)
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)
	writeFile(t, root, "dump.bin", "xx")

	select {
	case id := <-events:
		t.Fatalf("unexpected event for %s", id)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatchDebouncedBurstDeliversEveryFile(t *testing.T) {
	root := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A near-zero debounce keeps the flush timer firing while the event
	// loop is still absorbing writes, which is the hostile interleaving
	// for the pending-set bookkeeping.
	events, _, err := New(root).Watch(ctx, WatchConfig{Debounce: time.Microsecond}, nil)
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)

	const files = 40
	for round := 0; round < 3; round++ {
		for i := 0; i < files; i++ {
			writeFile(t, root, burstFileName(i), "take")
		}
	}

	got := collectEvents(t, events, files, 10*time.Second)
	for i := 0; i < files; i++ {
		require.True(t, got[burstFileName(i)], "missing event for %s", burstFileName(i))
	}
}

func burstFileName(i int) string {
	return "doc-" + string(rune('a'+i%26)) + string(rune('a'+i/26)) + ".txt"
}

func TestWatchClosesChannelsOnCancel(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))

	ctx, cancel := context.WithCancel(context.Background())
	events, errs, err := New(root).Watch(ctx, WatchConfig{}, nil)
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-events:
		require.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("event channel never closed")
	}
	select {
	case _, ok := <-errs:
		require.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("error channel never closed")
	}
}
