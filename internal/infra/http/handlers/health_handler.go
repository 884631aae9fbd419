package handlers

import (
	"net/http"
	"time"
)

// Dependencies says which collaborators were configured at startup.
type Dependencies struct {
	IntakeQ bool
	Mail    string
	Stripe  bool
}

type HealthHandler struct {
	Deps      Dependencies
	Version   string
	StartTime time.Time
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Uptime       string            `json:"uptime"`
	Dependencies map[string]string `json:"dependencies"`
}

func NewHealthHandler(deps Dependencies, version string) *HealthHandler {
	return &HealthHandler{
		Deps:      deps,
		Version:   version,
		StartTime: time.Now(),
	}
}

func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	deps := map[string]string{
		"intakeq": configured(h.Deps.IntakeQ),
		"stripe":  configured(h.Deps.Stripe),
		"mail":    "not configured",
	}
	if h.Deps.Mail != "" {
		deps["mail"] = "configured (" + h.Deps.Mail + ")"
	}

	// Without the record system no submission can succeed.
	status := "healthy"
	if !h.Deps.IntakeQ {
		status = "degraded"
	}

	response := HealthResponse{
		Status:       status,
		Version:      h.Version,
		Uptime:       time.Since(h.StartTime).Round(time.Second).String(),
		Dependencies: deps,
	}

	code := http.StatusOK
	if status == "degraded" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, response)
}

func configured(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}
