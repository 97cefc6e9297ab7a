package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uidpulse/internal/services"
	"uidpulse/internal/store"
)

func TestStatus_Healthy(t *testing.T) {
	handler := NewHealthHandler(&stubDataService{summary: &services.Summary{
		Stats:         &store.Stats{TotalRecords: 7},
		UploadedFiles: []string{"jan.csv", "feb.csv"},
	}}, &stubAssistantService{configured: true}, slog.Default())

	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var report StatusReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "ok", report.Status)
	assert.Equal(t, "ok", report.Store)
	assert.Equal(t, int64(7), report.Records)
	assert.Equal(t, 2, report.FilesLoaded)
	assert.True(t, report.Assistant)
}

func TestStatus_StoreUnreachable(t *testing.T) {
	handler := NewHealthHandler(
		&stubDataService{healthErr: fmt.Errorf("database locked")},
		&stubAssistantService{},
		slog.Default())

	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var report StatusReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "degraded", report.Status)
	assert.Equal(t, "unreachable", report.Store)
}
