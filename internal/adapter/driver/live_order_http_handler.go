package driver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/alorle/live-order/internal/application"
)

// upstreamUnavailable is the error reported when the ordering falls back to
// the roster.
const upstreamUnavailable = "Twitch API unavailable"

// LiveOrderHTTPHandler handles HTTP requests for the live ordering.
type LiveOrderHTTPHandler struct {
	service *application.LiveOrderService
	logger  *slog.Logger
}

// NewLiveOrderHTTPHandler creates a new HTTP handler for the live ordering.
func NewLiveOrderHTTPHandler(service *application.LiveOrderService, logger *slog.Logger) *LiveOrderHTTPHandler {
	return &LiveOrderHTTPHandler{service: service, logger: logger}
}

// liveOrderResponse represents the JSON body of GET /live-order.
type liveOrderResponse struct {
	Ordered   []string `json:"ordered"`
	Live      []string `json:"live"`
	CountLive int      `json:"countLive"`
	Timestamp int64    `json:"timestamp"`
	Error     string   `json:"error,omitempty"`
	Detail    string   `json:"detail,omitempty"`
}

func toLiveOrderResponse(order application.LiveOrder) liveOrderResponse {
	return liveOrderResponse{
		Ordered:   order.Ordered,
		Live:      order.Live,
		CountLive: len(order.Live),
		Timestamp: order.Timestamp.UnixMilli(),
	}
}

// ServeHTTP handles GET /live-order
func (h *LiveOrderHTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	order, err := h.service.Compute(r.Context())
	if err != nil {
		resp := toLiveOrderResponse(order)
		resp.Error = upstreamUnavailable
		resp.Detail = err.Error()

		var authErr *application.AuthError
		if errors.As(err, &authErr) {
			resp.Detail = authErr.Detail
		}

		h.logger.Error("serving fallback live order", "error", err)
		writeJSON(w, http.StatusBadGateway, resp)
		return
	}

	writeJSON(w, http.StatusOK, toLiveOrderResponse(order))
}
