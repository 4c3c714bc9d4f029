package app

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gobwas/glob"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"declmap/internal/data/history"
	"declmap/internal/decl"
	"declmap/internal/engine/index"
	"declmap/internal/shared/observability"
)

// ScanResult summarizes one full index pass.
type ScanResult struct {
	FilesScanned int
	Stats        index.Stats
	Synthesized  int
	Warnings     []string
	Duration     time.Duration
}

// ScanDirectories walks the given roots and returns every parseable source
// file, honoring the exclude globs.
func (a *App) ScanDirectories(paths []string, excludeDirs, excludeFiles []string) ([]string, error) {
	dirGlobs := make([]glob.Glob, 0, len(excludeDirs))
	for _, p := range excludeDirs {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude dir pattern %q: %w", p, err)
		}
		dirGlobs = append(dirGlobs, g)
	}

	fileGlobs := make([]glob.Glob, 0, len(excludeFiles))
	for _, p := range excludeFiles {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude file pattern %q: %w", p, err)
		}
		fileGlobs = append(fileGlobs, g)
	}

	var files []string
	for _, root := range paths {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			base := filepath.Base(path)
			if d.IsDir() {
				for _, g := range dirGlobs {
					if g.Match(base) {
						return filepath.SkipDir
					}
				}
				return nil
			}

			if !a.Parser.IsSupportedPath(path) {
				return nil
			}

			for _, g := range fileGlobs {
				if g.Match(base) {
					return nil
				}
			}

			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

// RunScan performs a full authoritative pass: walk, parse, record, run the
// synthesis pass, and replace the live state. Files that fail to parse are
// reported as warnings rather than aborting the scan.
func (a *App) RunScan(ctx context.Context, trigger string) (ScanResult, error) {
	ctx, span := observability.Tracer.Start(ctx, "app.RunScan",
		trace.WithAttributes(attribute.String("trigger", trigger)))
	defer span.End()

	if err := ctx.Err(); err != nil {
		return ScanResult{}, err
	}

	start := time.Now()
	paths, err := a.ScanDirectories(a.Config.ScanPaths, a.Config.Exclude.Dirs, a.Config.Exclude.Files)
	if err != nil {
		return ScanResult{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	var warnings []string
	parsed := make(map[string]*decl.File, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return ScanResult{}, err
		}
		file, err := a.parsePath(path)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("parse %s: %v", path, err))
			continue
		}
		parsed[path] = file
	}

	st := index.NewState()
	for _, path := range sortedKeys(parsed) {
		a.recorder.RecordFile(st, parsed[path])
	}

	synthesized := 0
	for _, path := range sortedKeys(parsed) {
		n, err := a.synth.Run(st, parsed[path])
		if err != nil {
			return ScanResult{}, err
		}
		synthesized += n
	}

	a.files = parsed
	a.Provider.Reset(st)

	stats := a.Provider.Stats()
	a.publishStats(stats)
	observability.RecordPassesTotal.WithLabelValues(trigger).Inc()
	duration := time.Since(start)
	observability.ScanDuration.WithLabelValues(trigger).Observe(duration.Seconds())

	result := ScanResult{
		FilesScanned: len(parsed),
		Stats:        stats,
		Synthesized:  synthesized,
		Warnings:     warnings,
		Duration:     duration,
	}

	a.persistScan(trigger, result)
	a.notify(Update{
		Stats:    stats,
		Trigger:  trigger,
		Warnings: warnings,
		Time:     time.Now(),
	})

	slog.Info("scan complete",
		"trigger", trigger,
		"files", result.FilesScanned,
		"packages", stats.Packages,
		"classifiers", stats.Classifiers,
		"callables", stats.Callables,
		"synthesized", synthesized,
		"duration", duration,
	)
	return result, nil
}

func (a *App) parsePath(path string) (*decl.File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return a.Parser.ParseFile(path, content)
}

func (a *App) publishStats(stats index.Stats) {
	observability.IndexFiles.Set(float64(stats.Files))
	observability.IndexPackages.Set(float64(stats.Packages))
	observability.IndexClassifiers.Set(float64(stats.Classifiers))
	observability.IndexCallables.Set(float64(stats.Callables))
}

func (a *App) persistScan(trigger string, result ScanResult) {
	if a.history == nil {
		return
	}
	err := a.history.SaveScan(history.Scan{
		SessionID:   a.SessionID,
		Timestamp:   time.Now().UTC(),
		Trigger:     trigger,
		Files:       result.FilesScanned,
		Packages:    result.Stats.Packages,
		Classifiers: result.Stats.Classifiers,
		Callables:   result.Stats.Callables,
		Symbols:     result.Stats.Symbols,
		Duration:    result.Duration,
	})
	if err != nil {
		slog.Warn("failed to persist scan", "error", err)
	}
}

func sortedKeys(m map[string]*decl.File) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
