// Package localdir serves transcript documents from a directory on disk.
// A document id is the file path relative to the configured root; the
// version marker is the file's modification time.
package localdir

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/transcript-quizgen/internal/common"
	"github.com/joseph-ayodele/transcript-quizgen/internal/source"
)

// Allowed extensions for discovery (lowercase, without '.').
var defaultExts = map[string]struct{}{
	"txt": {},
	"md":  {},
	"vtt": {},
	"srt": {},
}

type Source struct {
	root string
	exts map[string]struct{}
}

func New(root string) *Source {
	return &Source{root: root, exts: defaultExts}
}

// WithExtensions replaces the allowed extension set (lowercase, no dot).
func (s *Source) WithExtensions(exts []string) *Source {
	m := map[string]struct{}{}
	for _, e := range exts {
		e = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
		if e != "" {
			m[e] = struct{}{}
		}
	}
	if len(m) > 0 {
		s.exts = m
	}
	return s
}

// resolve maps an id onto the filesystem, rejecting escapes from the root.
func (s *Source) resolve(id string) (string, error) {
	path := filepath.Join(s.root, filepath.FromSlash(id))
	rel, err := filepath.Rel(s.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%w: %s", common.ErrNotFound, id)
	}
	return path, nil
}

func (s *Source) GetMetadata(_ context.Context, id string) (source.Metadata, error) {
	path, err := s.resolve(id)
	if err != nil {
		return source.Metadata{}, err
	}
	st, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return source.Metadata{}, fmt.Errorf("%w: %s", common.ErrNotFound, id)
		}
		return source.Metadata{}, fmt.Errorf("%w: stat %s: %v", common.ErrSourceUnavailable, id, err)
	}
	return s.metadataFor(id, st), nil
}

func (s *Source) ExportText(_ context.Context, id string) (string, error) {
	path, err := s.resolve(id)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", common.ErrNotFound, id)
		}
		return "", fmt.Errorf("%w: read %s: %v", common.ErrSourceUnavailable, id, err)
	}
	return string(data), nil
}

// ListAll walks the location under the root. locationID "" or "." means the
// root itself.
func (s *Source) ListAll(_ context.Context, locationID string) ([]source.Metadata, error) {
	base := s.root
	if locationID != "" && locationID != "." {
		var err error
		base, err = s.resolve(locationID)
		if err != nil {
			return nil, err
		}
	}
	var out []source.Metadata
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil // continue walking
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != base {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") || !s.allowed(path) {
			return nil
		}
		st, err := d.Info()
		if err != nil {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return nil
		}
		out = append(out, s.metadataFor(filepath.ToSlash(rel), st))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: walk %s: %v", common.ErrSourceUnavailable, base, err)
	}
	return out, nil
}

func (s *Source) allowed(path string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	_, ok := s.exts[ext]
	return ok
}

func (s *Source) metadataFor(id string, st fs.FileInfo) source.Metadata {
	name := strings.TrimSuffix(filepath.Base(id), filepath.Ext(id))
	return source.Metadata{
		ID:            id,
		Name:          name,
		VersionMarker: st.ModTime().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
}
