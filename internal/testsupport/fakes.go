// Package testsupport provides in-memory collaborator doubles shared by
// tests across packages.
package testsupport

import (
	"context"
	"fmt"
	"sync"

	"github.com/joseph-ayodele/transcript-quizgen/internal/common"
	"github.com/joseph-ayodele/transcript-quizgen/internal/entity"
	"github.com/joseph-ayodele/transcript-quizgen/internal/publisher"
	"github.com/joseph-ayodele/transcript-quizgen/internal/quizgen"
	"github.com/joseph-ayodele/transcript-quizgen/internal/source"
)

// FakeSource is an in-memory ContentSource with per-document failure
// injection and call counting.
type FakeSource struct {
	mu        sync.Mutex
	docs      []source.Metadata
	texts     map[string]string
	exportErr map[string]error
	metaErr   map[string]error

	metaCalls   int
	exportCalls int
	listCalls   int
}

func NewFakeSource() *FakeSource {
	return &FakeSource{
		texts:     map[string]string{},
		exportErr: map[string]error{},
		metaErr:   map[string]error{},
	}
}

// AddDoc registers (or replaces) a document.
func (f *FakeSource) AddDoc(id, name, marker, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.docs {
		if f.docs[i].ID == id {
			f.docs[i].Name = name
			f.docs[i].VersionMarker = marker
			f.texts[id] = text
			return
		}
	}
	f.docs = append(f.docs, source.Metadata{ID: id, Name: name, VersionMarker: marker})
	f.texts[id] = text
}

// SetMarker simulates upstream content drift.
func (f *FakeSource) SetMarker(id, marker string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.docs {
		if f.docs[i].ID == id {
			f.docs[i].VersionMarker = marker
		}
	}
}

// FailExport makes ExportText fail for one document id.
func (f *FakeSource) FailExport(id string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exportErr[id] = err
}

func (f *FakeSource) MetaCalls() int   { f.mu.Lock(); defer f.mu.Unlock(); return f.metaCalls }
func (f *FakeSource) ExportCalls() int { f.mu.Lock(); defer f.mu.Unlock(); return f.exportCalls }
func (f *FakeSource) ListCalls() int   { f.mu.Lock(); defer f.mu.Unlock(); return f.listCalls }

func (f *FakeSource) GetMetadata(_ context.Context, id string) (source.Metadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.metaCalls++
	if err := f.metaErr[id]; err != nil {
		return source.Metadata{}, err
	}
	for _, m := range f.docs {
		if m.ID == id {
			return m, nil
		}
	}
	return source.Metadata{}, fmt.Errorf("%w: %s", common.ErrNotFound, id)
}

func (f *FakeSource) ExportText(_ context.Context, id string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exportCalls++
	if err := f.exportErr[id]; err != nil {
		return "", err
	}
	text, ok := f.texts[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", common.ErrNotFound, id)
	}
	return text, nil
}

func (f *FakeSource) ListAll(_ context.Context, _ string) ([]source.Metadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	out := make([]source.Metadata, len(f.docs))
	copy(out, f.docs)
	return out, nil
}

// FakeGenerator returns a fixed-shape quiz and counts invocations.
type FakeGenerator struct {
	mu    sync.Mutex
	calls int
	fail  error
	last  quizgen.GenerateRequest
}

func NewFakeGenerator() *FakeGenerator { return &FakeGenerator{} }

// Fail makes every Generate call return err; pass nil to recover.
func (g *FakeGenerator) Fail(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fail = err
}

func (g *FakeGenerator) Calls() int { g.mu.Lock(); defer g.mu.Unlock(); return g.calls }

// LastRequest returns the most recent Generate request.
func (g *FakeGenerator) LastRequest() quizgen.GenerateRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}

func (g *FakeGenerator) Generate(_ context.Context, req quizgen.GenerateRequest) (*entity.QuizPayload, []byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.last = req
	if g.fail != nil {
		return nil, nil, g.fail
	}
	quiz := &entity.QuizPayload{
		Title:   req.Title,
		Summary: "Summary of " + req.Title,
	}
	for i := 0; i < req.QuestionCount; i++ {
		quiz.Questions = append(quiz.Questions, entity.QuizQuestion{
			Question:     fmt.Sprintf("Question %d about %s?", i+1, req.Title),
			Options:      []string{"alpha", "bravo", "charlie", "delta"},
			CorrectIndex: i % 4,
			Rationale:    "stated in the transcript",
		})
	}
	return quiz, nil, nil
}

// FakePublisher hands out sequential form ids and counts invocations.
type FakePublisher struct {
	mu    sync.Mutex
	calls int
	fail  error
}

func NewFakePublisher() *FakePublisher { return &FakePublisher{} }

// Fail makes every Publish call return err; pass nil to recover.
func (p *FakePublisher) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fail = err
}

func (p *FakePublisher) Calls() int { p.mu.Lock(); defer p.mu.Unlock(); return p.calls }

func (p *FakePublisher) Publish(_ context.Context, _ *entity.QuizPayload) (publisher.PublishResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.fail != nil {
		return publisher.PublishResult{}, p.fail
	}
	id := fmt.Sprintf("form-%d", p.calls)
	return publisher.PublishResult{
		FormID:   id,
		ShareURL: "https://forms.example/" + id,
	}, nil
}
