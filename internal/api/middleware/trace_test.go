package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/reviewdesk/internal/api/shared"
	"github.com/phrazzld/reviewdesk/internal/platform/logger"
	"github.com/phrazzld/reviewdesk/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceMiddleware(t *testing.T) {
	t.Parallel()

	handler := testutils.NewTestSlogHandler()
	base := slog.New(handler)

	var traceID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = shared.GetTraceID(r.Context())
		logger.FromContext(r.Context()).Info("inside handler")
		w.WriteHeader(http.StatusAccepted)
	})

	rec := httptest.NewRecorder()
	NewTraceMiddleware(base)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Len(t, traceID, 32)
	assert.Equal(t, traceID, rec.Header().Get(TraceIDHeader))
	assert.Equal(t, http.StatusAccepted, rec.Code)

	inside := handler.EntriesWithMessage("inside handler")
	require.Len(t, inside, 1)
	assert.Equal(t, traceID, inside[0]["trace_id"])

	completed := handler.EntriesWithMessage("request completed")
	require.Len(t, completed, 1)
	assert.EqualValues(t, http.StatusAccepted, completed[0]["status"])
}
