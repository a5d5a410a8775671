package async

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/transcript-quizgen/constants"
	"github.com/joseph-ayodele/transcript-quizgen/internal/core"
	"github.com/joseph-ayodele/transcript-quizgen/internal/entity"
	"github.com/joseph-ayodele/transcript-quizgen/internal/store/memstore"
	"github.com/joseph-ayodele/transcript-quizgen/internal/testsupport"
)

type queueHarness struct {
	source    *testsupport.FakeSource
	generator *testsupport.FakeGenerator
	publisher *testsupport.FakePublisher
	proc      *core.Processor
	queue     *ProcessorQueue
}

func newQueueHarness(t *testing.T, opts ...Option) *queueHarness {
	t.Helper()
	h := &queueHarness{
		source:    testsupport.NewFakeSource(),
		generator: testsupport.NewFakeGenerator(),
		publisher: testsupport.NewFakePublisher(),
	}
	h.proc = core.NewProcessor(nil, memstore.New(), h.source, h.generator, h.publisher, 3, "")
	h.queue = NewProcessorQueue(h.proc, nil, opts...)
	h.proc.AttachQueue(h.queue)
	t.Cleanup(func() { h.queue.Shutdown(context.Background()) })
	return h
}

func waitForStatus(t *testing.T, proc *core.Processor, id string, want constants.WorkStatus) *entity.WorkItem {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		item, err := proc.GetStatus(context.Background(), id)
		require.NoError(t, err)
		if item != nil && item.Status == want {
			return item
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("document %s never reached status %s", id, want)
	return nil
}

func TestEnqueueProcessesInBackground(t *testing.T) {
	h := newQueueHarness(t, WithWorkers(2), WithQueueSize(8))
	h.source.AddDoc("doc-1", "Standup", "v1", "Alice discussed the release.")

	item, err := h.proc.Enqueue(context.Background(), "doc-1", core.ProcessOptions{QuestionCount: 3})
	require.NoError(t, err)
	require.NotNil(t, item)
	// The immediate checkpoint is already durable when Enqueue returns.
	require.NotEqual(t, constants.StatusFailed, item.Status)

	final := waitForStatus(t, h.proc, "doc-1", constants.StatusSucceeded)
	require.Equal(t, constants.StepDone, final.Progress.Step)
	require.NotEmpty(t, final.FormURL)
}

func TestEnqueueFailurePersistsFailedRecord(t *testing.T) {
	h := newQueueHarness(t, WithWorkers(1)) // no documents registered

	_, err := h.proc.Enqueue(context.Background(), "ghost", core.ProcessOptions{})
	require.NoError(t, err)

	final := waitForStatus(t, h.proc, "ghost", constants.StatusFailed)
	require.NotEmpty(t, final.ErrorMessage)
	require.Equal(t, constants.StepError, final.Progress.Step)
}

func TestEnqueueDeduplicatesSucceeded(t *testing.T) {
	h := newQueueHarness(t, WithWorkers(1))
	h.source.AddDoc("doc-1", "Standup", "v1", "notes")

	_, err := h.proc.Enqueue(context.Background(), "doc-1", core.ProcessOptions{})
	require.NoError(t, err)
	waitForStatus(t, h.proc, "doc-1", constants.StatusSucceeded)
	genCalls := h.generator.Calls()

	// Re-enqueueing a succeeded document returns the stored record without
	// submitting another job.
	item, err := h.proc.Enqueue(context.Background(), "doc-1", core.ProcessOptions{})
	require.NoError(t, err)
	require.Equal(t, constants.StatusSucceeded, item.Status)

	time.Sleep(50 * time.Millisecond)
	require.Equal(t, genCalls, h.generator.Calls())
}

func TestShutdownDoesNotBlockOnFullQueue(t *testing.T) {
	h := newQueueHarness(t, WithWorkers(1), WithQueueSize(1))
	const docs = 24
	ids := make([]string, docs)
	for i := range ids {
		ids[i] = fmt.Sprintf("doc-%d", i)
		h.source.AddDoc(ids[i], "Meeting", "v1", "notes")
	}

	// Concurrent enqueues keep the one-slot queue saturated so the
	// backpressure send is live while Shutdown runs alongside them.
	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := h.proc.Enqueue(context.Background(), id, core.ProcessOptions{})
			require.NoError(t, err)
		}(id)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		time.Sleep(10 * time.Millisecond)
		h.queue.Shutdown(context.Background())
		wg.Wait()
	}()

	select {
	case <-done:
	case <-time.After(30 * time.Second):
		t.Fatal("shutdown blocked behind a full queue")
	}

	// Every job admitted before shutdown was drained; the rest were turned
	// away at the door and still hold their queued checkpoint.
	for _, id := range ids {
		item, err := h.proc.GetStatus(context.Background(), id)
		require.NoError(t, err)
		require.NotNil(t, item)
		switch item.Status {
		case constants.StatusSucceeded:
			require.NotEmpty(t, item.FormURL)
		case constants.StatusProcessing:
			require.Equal(t, constants.StepQueued, item.Progress.Step)
		default:
			t.Fatalf("doc %s in unexpected status %s", id, item.Status)
		}
	}
}

func TestShutdownDrainsQueuedJobs(t *testing.T) {
	h := newQueueHarness(t, WithWorkers(1), WithQueueSize(16))
	ids := []string{"doc-1", "doc-2", "doc-3", "doc-4"}
	for _, id := range ids {
		h.source.AddDoc(id, "Meeting "+id, "v1", "notes for "+id)
	}
	for _, id := range ids {
		_, err := h.proc.Enqueue(context.Background(), id, core.ProcessOptions{})
		require.NoError(t, err)
	}

	h.queue.Shutdown(context.Background())

	for _, id := range ids {
		item, err := h.proc.GetStatus(context.Background(), id)
		require.NoError(t, err)
		require.NotNil(t, item)
		require.Equal(t, constants.StatusSucceeded, item.Status)
	}
}
