// Package source abstracts where transcript documents come from.
package source

import "context"

// Metadata describes a document without fetching its content. VersionMarker
// is an opaque freshness token (e.g. a modification timestamp); an empty
// marker means the backend cannot report freshness and drift checks must
// treat the document as changed.
type Metadata struct {
	ID            string
	Name          string
	VersionMarker string
}

// ContentSource is the behavior the processor and scanner depend on.
type ContentSource interface {
	// GetMetadata resolves a document id. Fails with common.ErrNotFound when
	// the id does not resolve.
	GetMetadata(ctx context.Context, id string) (Metadata, error)

	// ExportText returns the document's plain-text content. An empty string
	// is a valid result. Fails with common.ErrSourceUnavailable on transport
	// errors.
	ExportText(ctx context.Context, id string) (string, error)

	// ListAll enumerates the documents at a source location.
	ListAll(ctx context.Context, locationID string) ([]Metadata, error)
}
