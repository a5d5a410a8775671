// Package gdrive reads transcript documents from a Google Drive folder.
// Google Docs are exported as plain text; regular text files are downloaded
// directly.
package gdrive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/joseph-ayodele/transcript-quizgen/internal/common"
	"github.com/joseph-ayodele/transcript-quizgen/internal/source"
)

const (
	mimeTypeGoogleDoc = "application/vnd.google-apps.document"
	mimeTypeFolder    = "application/vnd.google-apps.folder"
	exportMimeText    = "text/plain"

	// maxExportSize caps exported content at 5MB.
	maxExportSize = 5 * 1024 * 1024

	metadataFields = "id, name, mimeType, modifiedTime"
)

type Source struct {
	svc *drive.Service
	log *slog.Logger
}

// New builds a Drive-backed source from an OAuth token source.
func New(ctx context.Context, ts oauth2.TokenSource, logger *slog.Logger) (*Source, error) {
	if logger == nil {
		logger = slog.Default()
	}
	svc, err := drive.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, common.WrapError(err, "create drive service")
	}
	return &Source{svc: svc, log: logger}, nil
}

// NewWithCredentialsFile builds a Drive-backed source from a service-account
// credentials file.
func NewWithCredentialsFile(ctx context.Context, path string, logger *slog.Logger) (*Source, error) {
	if logger == nil {
		logger = slog.Default()
	}
	svc, err := drive.NewService(ctx,
		option.WithCredentialsFile(path),
		option.WithScopes(drive.DriveReadonlyScope))
	if err != nil {
		return nil, common.WrapError(err, "create drive service")
	}
	return &Source{svc: svc, log: logger}, nil
}

func (s *Source) GetMetadata(ctx context.Context, id string) (source.Metadata, error) {
	f, err := s.svc.Files.Get(id).Fields(metadataFields).Context(ctx).Do()
	if err != nil {
		return source.Metadata{}, wrapDriveError(err, id)
	}
	return toMetadata(f), nil
}

func (s *Source) ExportText(ctx context.Context, id string) (string, error) {
	f, err := s.svc.Files.Get(id).Fields("id, mimeType, size").Context(ctx).Do()
	if err != nil {
		return "", wrapDriveError(err, id)
	}

	var resp *http.Response
	if f.MimeType == mimeTypeGoogleDoc {
		resp, err = s.svc.Files.Export(id, exportMimeText).Context(ctx).Download()
	} else {
		resp, err = s.svc.Files.Get(id).Context(ctx).Download()
	}
	if err != nil {
		return "", wrapDriveError(err, id)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxExportSize))
	if err != nil {
		return "", fmt.Errorf("%w: read export of %s: %v", common.ErrSourceUnavailable, id, err)
	}
	s.log.Debug("gdrive.export.ok", "file_id", id, "bytes", len(data))
	return string(data), nil
}

func (s *Source) ListAll(ctx context.Context, folderID string) ([]source.Metadata, error) {
	query := fmt.Sprintf("'%s' in parents and trashed = false", folderID)
	var out []source.Metadata
	err := s.svc.Files.List().
		Q(query).
		Fields(googleapi.Field("nextPageToken, files(" + metadataFields + ")")).
		PageSize(1000).
		Context(ctx).
		Pages(ctx, func(page *drive.FileList) error {
			for _, f := range page.Files {
				if f.MimeType == mimeTypeFolder {
					continue
				}
				out = append(out, toMetadata(f))
			}
			return nil
		})
	if err != nil {
		return nil, wrapDriveError(err, folderID)
	}
	s.log.Debug("gdrive.list.ok", "folder_id", folderID, "count", len(out))
	return out, nil
}

func toMetadata(f *drive.File) source.Metadata {
	return source.Metadata{
		ID:            f.Id,
		Name:          strings.TrimSpace(f.Name),
		VersionMarker: f.ModifiedTime,
	}
}

// wrapDriveError converts a Drive API error into the pipeline taxonomy.
func wrapDriveError(err error, id string) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusNotFound {
		return fmt.Errorf("%w: %s", common.ErrNotFound, id)
	}
	return fmt.Errorf("%w: %s: %v", common.ErrSourceUnavailable, id, err)
}
