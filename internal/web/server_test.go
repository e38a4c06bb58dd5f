package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lagoon-network/vae/internal/cache"
	"github.com/lagoon-network/vae/internal/datafetcher"
	"github.com/lagoon-network/vae/internal/engine"
)

func newTestServer(t *testing.T) *WebServer {
	t.Helper()

	c, err := cache.New(time.Minute)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	eng, err := engine.NewEngine(engine.Config{
		Fetcher: datafetcher.NewClient("http://127.0.0.1:1"),
		Cache:   c,
	})
	require.NoError(t, err)

	return NewWebServer("8080", eng)
}

func TestGetLatestAnalysisParamValidation(t *testing.T) {
	ws := newTestServer(t)

	tests := []struct {
		name       string
		target     string
		wantStatus int
	}{
		{"missing both params", "/api/analyses/latest", http.StatusBadRequest},
		{"missing subject", "/api/analyses/latest?kind=risk", http.StatusBadRequest},
		{"missing kind", "/api/analyses/latest?subject=0xabc", http.StatusBadRequest},
		// Params present reaches the snapshot store, which has no database here.
		{"store unavailable", "/api/analyses/latest?kind=risk&subject=0xabc", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)

			ws.router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestCompareRejectsOutOfBoundsSetSizes(t *testing.T) {
	ws := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"single vault", `{"addresses":["0xaaa"]}`},
		{"oversized set", `{"addresses":["0","1","2","3","4","5","6","7","8","9","10"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/compare", strings.NewReader(tt.body))

			ws.router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
