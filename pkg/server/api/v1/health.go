package v1

import (
	"net/http"
	"sync/atomic"
)

// ReadyzHandler returns a readiness probe handler backed by the shared
// ready flag. The server flips the flag to true once storage and the job
// manager are up, and back to false when shutdown begins so load
// balancers stop routing to a draining instance.
func ReadyzHandler(ready *atomic.Bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !ready.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("Not Ready"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Ready"))
	})
}
