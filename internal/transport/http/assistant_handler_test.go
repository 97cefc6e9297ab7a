package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "uidpulse/internal/errors"
)

type stubAssistantService struct {
	configured bool
	code       string
	err        error
}

func (s *stubAssistantService) Configured() bool {
	return s.configured
}

func (s *stubAssistantService) Ask(ctx context.Context, question string) (string, error) {
	return s.code, s.err
}

func newAssistantRouter(svc *stubAssistantService) http.Handler {
	return NewAssistantHandler(svc, slog.Default()).Routes()
}

func TestAsk_Success(t *testing.T) {
	router := newAssistantRouter(&stubAssistantService{configured: true, code: "result = 7"})

	req := httptest.NewRequest(http.MethodPost, "/ask",
		strings.NewReader(`{"question":"total enrolments by state"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp AskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "result = 7", resp.Code)
	assert.Equal(t, "total enrolments by state", resp.Question)
}

func TestAsk_NotConfigured(t *testing.T) {
	router := newAssistantRouter(&stubAssistantService{configured: false})

	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"question":"anything here"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "ASSISTANT_UNAVAILABLE")
}

func TestAsk_QuestionTooShort(t *testing.T) {
	router := newAssistantRouter(&stubAssistantService{configured: true})

	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"question":"hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_FAILED")
}

func TestAsk_NoDataset(t *testing.T) {
	router := newAssistantRouter(&stubAssistantService{
		configured: true,
		err:        apierrors.NewNotFoundError("dataset"),
	})

	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"question":"anything here"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "NO_DATASET")
}

func TestAsk_BackendFailure(t *testing.T) {
	router := newAssistantRouter(&stubAssistantService{configured: true, err: fmt.Errorf("model timeout")})

	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"question":"anything here"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "model timeout")
}
