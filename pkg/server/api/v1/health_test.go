package v1

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func probeReadyz(handler http.Handler) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	return rec
}

func TestReadyzHandler(t *testing.T) {
	ready := &atomic.Bool{}
	handler := ReadyzHandler(ready)

	t.Run("not ready before startup finishes", func(t *testing.T) {
		rec := probeReadyz(handler)
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		require.Equal(t, "Not Ready", rec.Body.String())
	})

	t.Run("ready once the flag flips", func(t *testing.T) {
		ready.Store(true)

		rec := probeReadyz(handler)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "Ready", rec.Body.String())
	})

	t.Run("back to not ready during shutdown", func(t *testing.T) {
		ready.Store(false)

		rec := probeReadyz(handler)
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestReadyzHandler_StableAcrossRepeatedProbes(t *testing.T) {
	ready := &atomic.Bool{}
	ready.Store(true)
	handler := ReadyzHandler(ready)

	for n := 0; n < 10; n++ {
		rec := probeReadyz(handler)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "Ready", rec.Body.String())
	}
}
