package dto

import (
	"errors"
	"strings"

	"github.com/soundprediction/docgraph/pkg/types"
)

// Validation errors
var (
	ErrEmptyName      = errors.New("name cannot be empty")
	ErrEmptySources   = errors.New("sources cannot be empty")
	ErrNameTooLong    = errors.New("name exceeds maximum length (1024)")
	ErrContentTooLong = errors.New("content exceeds maximum length (10MB)")
	ErrTooManySources = errors.New("sources count exceeds maximum (100)")
)

// IngestTextRequest ingests raw text under a display name.
type IngestTextRequest struct {
	Name    string `json:"name" binding:"required"`
	Content string `json:"content"`
}

// Validate performs validation on IngestTextRequest.
func (r *IngestTextRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrEmptyName
	}
	if len(r.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if len(r.Content) > MaxContentLength {
		return ErrContentTooLong
	}
	return nil
}

// IngestSourcesRequest ingests a batch of file paths and URLs.
type IngestSourcesRequest struct {
	Sources []string `json:"sources" binding:"required"`
}

// Validate performs validation on IngestSourcesRequest.
func (r *IngestSourcesRequest) Validate() error {
	if len(r.Sources) == 0 {
		return ErrEmptySources
	}
	if len(r.Sources) > MaxSourcesCount {
		return ErrTooManySources
	}
	for _, src := range r.Sources {
		if strings.TrimSpace(src) == "" {
			return ErrEmptySources
		}
	}
	return nil
}

// IngestAcceptedResponse acknowledges an asynchronous batch ingest.
type IngestAcceptedResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	ProcessID string `json:"process_id"`
}

// IngestTextResponse reports a completed synchronous text ingest.
type IngestTextResponse struct {
	Success bool                   `json:"success"`
	Summary *types.DocumentSummary `json:"summary"`
}
