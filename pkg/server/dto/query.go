package dto

import (
	"errors"
	"strings"

	"github.com/soundprediction/docgraph/pkg/types"
)

// ErrEmptyQuestion rejects blank questions before they reach the engine.
var ErrEmptyQuestion = errors.New("question cannot be empty")

// QueryRequest asks a question against the graph. Mode is optional; empty
// or "auto" lets the engine pick between local and global.
type QueryRequest struct {
	Question string `json:"question" binding:"required"`
	Mode     string `json:"mode,omitempty"`
}

// Validate performs validation on QueryRequest.
func (r *QueryRequest) Validate() error {
	if strings.TrimSpace(r.Question) == "" {
		return ErrEmptyQuestion
	}
	switch types.QueryMode(r.Mode) {
	case "", types.AutoMode, types.LocalMode, types.GlobalMode:
		return nil
	}
	return errors.New("mode must be auto, local, or global")
}

// QueryResponse wraps the engine's answer.
type QueryResponse struct {
	Answer *types.Answer `json:"answer"`
}

// CommunitiesResponse lists detected communities.
type CommunitiesResponse struct {
	Communities []*types.CommunitySummary `json:"communities"`
	Total       int                       `json:"total"`
}

// DetectResponse reports a community detection run.
type DetectResponse struct {
	Communities int `json:"communities"`
}

// StatsResponse reports graph size counters.
type StatsResponse struct {
	Stats *types.Stats `json:"stats"`
}
