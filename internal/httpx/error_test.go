package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/require"
)

func TestWriteErrorEnvelope(t *testing.T) {
	t.Parallel()

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-1")
	rec := httptest.NewRecorder()
	WriteError(ctx, rec, NewError("invalid_request", "slug\nis required", http.StatusBadRequest))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, "invalid_request", payload["error"])
	require.Equal(t, "slug is required", payload["message"])
	require.Equal(t, "req-1", payload["request_id"])
	require.EqualValues(t, http.StatusBadRequest, payload["status"])
	require.NotContains(t, payload, "trace_id")
}

func TestNewErrorDefaultsStatus(t *testing.T) {
	t.Parallel()

	err := NewError("boom", "", 0)
	require.Equal(t, http.StatusInternalServerError, err.Status)
	require.Equal(t, "boom", err.Error())
}
