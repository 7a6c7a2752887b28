package driver

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	nethttpmiddleware "github.com/oapi-codegen/nethttp-middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alorle/live-order/logging"
)

// NewRouter registers every route of the service.
// /live-order requests are validated against doc before reaching the handler.
func NewRouter(liveOrder *LiveOrderHTTPHandler, health *HealthHTTPHandler, doc *openapi3.T, logger *slog.Logger) http.Handler {
	validate := nethttpmiddleware.OapiRequestValidatorWithOptions(doc, &nethttpmiddleware.Options{
		ErrorHandler: func(w http.ResponseWriter, message string, statusCode int) {
			writeError(w, statusCode, strings.TrimSpace(message))
		},
	})

	mux := http.NewServeMux()
	mux.Handle("/live-order", allowMethods(validate(liveOrder), http.MethodGet))
	mux.Handle("/health", health)
	mux.Handle("/openapi.json", NewDocumentationHTTPHandler(doc))
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", NewRootHTTPHandler())

	return logging.Middleware(logger)(CORS(mux))
}

// allowMethods answers 405 with a JSON error for any method not listed.
func allowMethods(next http.Handler, methods ...string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, m := range methods {
			if r.Method == m {
				next.ServeHTTP(w, r)
				return
			}
		}
		w.Header().Set("Allow", strings.Join(methods, ", "))
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
}
