package app

import (
	"context"
	"log/slog"
	"os"
	"time"

	"declmap/internal/core/errors"
	"declmap/internal/core/watcher"
	"declmap/internal/data/history"
	"declmap/internal/engine/index"
	"declmap/internal/shared/observability"
)

func (a *App) StartWatcher() error {
	w, err := watcher.NewWatcher(
		a.Config.Watch.Debounce,
		a.Config.Exclude.Dirs,
		a.Config.Exclude.Files,
		a.HandleChanges,
	)
	if err != nil {
		return err
	}
	w.SetExtensionFilter(a.loader.SupportedExtensions())
	a.activeWatcher = w
	return w.Watch(a.Config.ScanPaths)
}

// HandleChanges applies one debounced batch of file changes to the live
// state, then runs the consistency check over the full file set. Rebuild
// frequency is rate limited so editor churn cannot saturate the process.
func (a *App) HandleChanges(paths []string) {
	if err := a.limiter.Wait(context.Background()); err != nil {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	st := a.Provider.State()
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			// Deleted or renamed away: drop it from the known set. The
			// stale live entries are what the checker reconciles below.
			delete(a.files, path)
			continue
		}
		file, err := a.parsePath(path)
		if err != nil {
			slog.Warn("failed to re-parse changed file", "path", path, "error", err)
			continue
		}
		a.files[path] = file
		a.recorder.RecordFile(st, file)
		if _, err := a.synth.Run(st, file); err != nil {
			slog.Warn("synthesis pass failed", "path", path, "error", err)
		}
	}
	observability.RecordPassesTotal.WithLabelValues("watch").Inc()

	report, err := a.ensureConsistent()
	outcome := checkOutcome(report, err)

	stats := a.Provider.Stats()
	a.publishStats(stats)
	a.notify(Update{
		Stats:        stats,
		Trigger:      "watch",
		CheckOutcome: outcome,
		CheckReport:  reportString(report),
		Time:         time.Now(),
	})
}

// CheckConsistency rebuilds from the known file set and compares the result
// against the live state, applying the configured mode's policy.
func (a *App) CheckConsistency() (index.Report, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ensureConsistent()
}

// ensureConsistent runs the checker and records the outcome. Callers hold mu.
func (a *App) ensureConsistent() (index.Report, error) {
	start := time.Now()
	report, err := a.checker.EnsureConsistent(a.fileSet())
	observability.RebuildDuration.Observe(time.Since(start).Seconds())

	outcome := checkOutcome(report, err)
	observability.ConsistencyChecksTotal.WithLabelValues(outcome).Inc()
	changed, lost, added := report.Counts()
	observability.ConsistencyDiffsTotal.WithLabelValues("changed").Add(float64(changed))
	observability.ConsistencyDiffsTotal.WithLabelValues("lost").Add(float64(lost))
	observability.ConsistencyDiffsTotal.WithLabelValues("new").Add(float64(added))

	a.persistCheck(outcome, report)

	switch {
	case errors.IsCode(err, errors.CodeInconsistent):
		slog.Error("declaration index inconsistent", "changed", changed, "lost", lost, "new", added)
	case outcome == "healed":
		slog.Warn("declaration index drifted; state replaced by rebuild",
			"changed", changed, "lost", lost, "new", added)
	}

	return report, err
}

func (a *App) persistCheck(outcome string, report index.Report) {
	if a.history == nil {
		return
	}
	changed, lost, added := report.Counts()
	err := a.history.SaveCheck(history.Check{
		SessionID: a.SessionID,
		Timestamp: time.Now().UTC(),
		Mode:      a.checker.Mode().String(),
		Outcome:   outcome,
		Changed:   changed,
		Lost:      lost,
		New:       added,
		Report:    reportString(report),
	})
	if err != nil {
		slog.Warn("failed to persist consistency check", "error", err)
	}
}

func checkOutcome(report index.Report, err error) string {
	switch {
	case err != nil:
		return "inconsistent"
	case report.Empty():
		return "consistent"
	default:
		return "healed"
	}
}

func reportString(report index.Report) string {
	if report.Empty() {
		return ""
	}
	return report.String()
}
