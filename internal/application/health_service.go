package application

import (
	"context"
)

// HealthService checks whether the service can reach the platform.
type HealthService struct {
	tokens TokenProvider
}

// NewHealthService creates a new health check service.
func NewHealthService(tokens TokenProvider) *HealthService {
	return &HealthService{tokens: tokens}
}

// ComponentHealth represents the health status of a single component.
type ComponentHealth struct {
	Status string // "ok" or "error"
	Error  string // empty if status is "ok", otherwise contains error message
}

// HealthStatus represents the overall health status of the application.
type HealthStatus struct {
	Status     string          // "ok" if all components are healthy, "degraded" otherwise
	TwitchAuth ComponentHealth // credential exchange
}

// Check verifies that an app access token is available. A valid cached
// token counts as healthy without contacting the platform.
func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:     "ok",
		TwitchAuth: ComponentHealth{Status: "ok"},
	}

	if _, err := s.tokens.Token(ctx); err != nil {
		status.TwitchAuth = ComponentHealth{
			Status: "error",
			Error:  err.Error(),
		}
		status.Status = "degraded"
	}

	return status
}
