package driver

import "net/http"

// livenessMessage is the body of GET /.
const livenessMessage = "live-order API running"

// RootHTTPHandler answers the liveness probe on / and 404s anything else
// that reaches it.
type RootHTTPHandler struct{}

// NewRootHTTPHandler creates a new liveness handler.
func NewRootHTTPHandler() *RootHTTPHandler {
	return &RootHTTPHandler{}
}

// ServeHTTP handles GET /
func (h *RootHTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(livenessMessage))
}
