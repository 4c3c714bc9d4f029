package app

import (
	"context"
	"fmt"
	"time"
)

type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Session    string            `json:"session"`
	Components map[string]string `json:"components"`
}

type HealthService struct {
	app *App
}

func NewHealthService(app *App) *HealthService {
	return &HealthService{app: app}
}

func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:     "up",
		Timestamp:  time.Now().UTC(),
		Session:    s.app.SessionID,
		Components: make(map[string]string),
	}

	if s.app.Parser == nil {
		status.Status = "degraded"
		status.Components["parser"] = "missing"
	} else {
		status.Components["parser"] = "ok"
	}

	if s.app.Provider == nil {
		status.Status = "degraded"
		status.Components["index"] = "missing"
	} else {
		stats := s.app.Provider.Stats()
		status.Components["index"] = fmt.Sprintf("ok (%d files, %d packages, %d classifiers)",
			stats.Files, stats.Packages, stats.Classifiers)
	}

	if s.app.history != nil {
		status.Components["history"] = "ok"
	} else if s.app.Config.DB.Enabled {
		status.Status = "degraded"
		status.Components["history"] = "missing but enabled in config"
	}

	return status
}
