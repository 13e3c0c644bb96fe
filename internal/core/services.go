package core

import (
	"github.com/go-chi/chi/v5"
)

// Service is the interface that all emulated AWS services implement.
// New services are added by implementing this interface and registering the
// instance with the edge router's service list.
type Service interface {
	// Name returns the unique identifier for this service (e.g. "comprehend",
	// "events", "efs"). This is used for routing prefixes and configuration.
	Name() string

	// RegisterRoutes sets up HTTP routes for this service on the provided
	// router, typically a sub-router scoped to the service's path prefix.
	RegisterRoutes(router chi.Router)
}
