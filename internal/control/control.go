// Package control exposes the emulator's out-of-band endpoints: a full state
// reset for use between test runs, and a dump of all live backend state.
package control

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"github.com/asad/sandstack/internal/core"
	"github.com/asad/sandstack/internal/logging"
)

// API serves the control endpoints over one server's backend registry.
type API struct {
	registry *core.Registry
	logger   logging.Logger
}

// New creates the control API for a registry.
func New(registry *core.Registry, logger logging.Logger) *API {
	return &API{registry: registry, logger: logger}
}

// RegisterRoutes mounts the control endpoints:
//   - POST /reset — drop every backend of every service
//   - GET  /data  — dump all live resources keyed by service
func (a *API) RegisterRoutes(router chi.Router) {
	router.Post("/reset", a.handleReset)
	router.Get("/data", a.handleData)
}

func (a *API) handleReset(w http.ResponseWriter, r *http.Request) {
	a.registry.ResetAll()
	a.logger.Info("all backends reset")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}

func (a *API) handleData(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(a.registry.DumpAll()); err != nil {
		a.logger.Error("failed to encode state dump", logging.ErrorField(err))
	}
}
