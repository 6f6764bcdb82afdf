package controllers

import (
	"context"
	"net/http"

	"github.com/gorilla/csrf"
)

// EngineStatus reports whether the orchestrator has a credential.
type EngineStatus interface {
	Configured() bool
}

// DatabaseHealth is satisfied by *models.Database.
type DatabaseHealth interface {
	Health(ctx context.Context) error
}

// HealthController reports service health for monitoring.
type HealthController struct {
	engine EngineStatus
	db     DatabaseHealth
}

// NewHealthController creates a HealthController. db may be nil when history
// persistence is disabled.
func NewHealthController(engine EngineStatus, db DatabaseHealth) *HealthController {
	return &HealthController{engine: engine, db: db}
}

type healthResponse struct {
	Status   string `json:"status"`
	Engine   string `json:"engine"`
	Database string `json:"database"`
}

// HealthCheck answers 200 unless a configured database is unreachable.
// An engine without a credential is reported but still serves trending.
func (c *HealthController) HealthCheck(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Engine: "configured", Database: "disabled"}
	status := http.StatusOK

	if !c.engine.Configured() {
		resp.Engine = "unconfigured"
		resp.Status = "degraded"
	}

	if c.db != nil {
		if err := c.db.Health(r.Context()); err != nil {
			resp.Database = "unavailable"
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
		} else {
			resp.Database = "ok"
		}
	}

	writeJSON(w, status, resp)
}

// CSRFToken hands the per-session token to API clients.
func CSRFToken(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"token": csrf.Token(r)})
}
