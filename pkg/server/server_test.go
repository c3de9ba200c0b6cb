package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/docgraph"
	"github.com/soundprediction/docgraph/pkg/config"
	"github.com/soundprediction/docgraph/pkg/server/dto"
	"github.com/soundprediction/docgraph/pkg/store/memory"
	"github.com/soundprediction/docgraph/pkg/types"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	client, err := docgraph.NewClient(memory.New(), nil)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Server.Host = "localhost"
	cfg.Server.Port = 0
	cfg.Server.Mode = "test"

	srv := New(cfg, client, nil)
	srv.Setup()
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/health", "/live", "/ready"} {
		w := doJSON(t, srv, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestIngestTextAndQuery(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/v1/ingest/text", dto.IngestTextRequest{
		Name:    "ai-primer",
		Content: "Artificial intelligence enables automated reasoning. It is studied widely.",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var ingested dto.IngestTextResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ingested))
	assert.True(t, ingested.Success)
	require.NotNil(t, ingested.Summary)
	assert.Positive(t, ingested.Summary.ConceptCount)

	w = doJSON(t, srv, http.MethodPost, "/api/v1/query", dto.QueryRequest{
		Question: "What is artificial intelligence?",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var queried dto.QueryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &queried))
	require.NotNil(t, queried.Answer)
	assert.Equal(t, types.LocalMode, queried.Answer.Mode)
	assert.Contains(t, queried.Answer.Text, "Artificial intelligence enables automated reasoning")
}

func TestIngestTextValidation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body interface{}
	}{
		{"missing name", map[string]string{"content": "text"}},
		{"blank name", dto.IngestTextRequest{Name: "   ", Content: "text"}},
		{"invalid json", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, srv, http.MethodPost, "/api/v1/ingest/text", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestQueryValidation(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/v1/query", dto.QueryRequest{Question: "q", Mode: "bogus"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, srv, http.MethodPost, "/api/v1/query", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCommunitiesEndpoints(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/v1/ingest/text", dto.IngestTextRequest{
		Name:    "doc",
		Content: "quantum physics quantum particles",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, srv, http.MethodPost, "/api/v1/communities/detect", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var detected dto.DetectResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detected))
	assert.Positive(t, detected.Communities)

	w = doJSON(t, srv, http.MethodGet, "/api/v1/communities", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var listed dto.CommunitiesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	assert.Equal(t, len(listed.Communities), listed.Total)
	assert.NotEmpty(t, listed.Communities)

	w = doJSON(t, srv, http.MethodGet, "/api/v1/communities?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatsAndClear(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/v1/ingest/text", dto.IngestTextRequest{
		Name:    "doc",
		Content: "alpha beta alpha gamma",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, srv, http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats dto.StatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.Stats.Documents)

	w = doJSON(t, srv, http.MethodDelete, "/api/v1/ingest/clear", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, srv, http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Zero(t, stats.Stats.Documents)
}

func TestIngestSourcesAccepted(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/v1/ingest/sources", dto.IngestSourcesRequest{
		Sources: []string{"/nonexistent/path.txt"},
	})
	require.Equal(t, http.StatusAccepted, w.Code)

	var accepted dto.IngestAcceptedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &accepted))
	assert.True(t, accepted.Success)
	assert.NotEmpty(t, accepted.ProcessID)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/query", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
