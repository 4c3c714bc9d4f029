// Package app wires the declaration index together: parsing, recording,
// synthesis, consistency checking, persistence and the watch loop.
package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"declmap/internal/core/config"
	"declmap/internal/core/watcher"
	"declmap/internal/data/history"
	"declmap/internal/data/query"
	"declmap/internal/decl"
	"declmap/internal/engine/index"
	"declmap/internal/engine/parser"
	"declmap/internal/engine/synth"
	"declmap/internal/shared/util"
)

// Update is pushed to the registered handler after every index pass.
type Update struct {
	Stats        index.Stats
	Trigger      string
	CheckOutcome string
	CheckReport  string
	Warnings     []string
	Time         time.Time
}

// App is the session-scoped root object. It owns the live index state and
// is its single writer; all mutation happens under mu.
type App struct {
	Config    *config.Config
	Parser    *parser.Parser
	Provider  *index.Provider
	SessionID string

	loader   *parser.GrammarLoader
	recorder index.Recorder
	synth    *synth.Synthesizer
	checker  *index.Checker
	history  *history.Store
	limiter  *util.Limiter

	// files is the known-complete file set the checker rebuilds from.
	files map[string]*decl.File
	mu    sync.Mutex

	activeWatcher *watcher.Watcher
	updateMu      sync.RWMutex
	onUpdate      func(Update)
}

func New(cfg *config.Config) (*App, error) {
	overrides := make(map[string]parser.LanguageOverride, len(cfg.Languages))
	for name, lang := range cfg.Languages {
		overrides[name] = parser.LanguageOverride{
			Enabled:    lang.Enabled,
			Extensions: lang.Extensions,
		}
	}
	loader, err := parser.NewGrammarLoader(overrides)
	if err != nil {
		return nil, err
	}

	p := parser.NewParser(loader, cfg.Paths.ProjectRoot)
	if err := p.RegisterDefaultExtractors(); err != nil {
		return nil, err
	}

	mode, err := index.ParseMode(cfg.Index.Mode)
	if err != nil {
		return nil, err
	}

	provider := index.NewProvider(index.NewState())

	a := &App{
		Config:    cfg,
		Parser:    p,
		Provider:  provider,
		SessionID: uuid.New().String(),
		loader:    loader,
		synth:     synth.New(),
		checker:   index.NewChecker(provider, mode),
		limiter:   util.NewLimiter(cfg.Watch.RebuildsPerSecond, cfg.Watch.RebuildBurst),
		files:     make(map[string]*decl.File),
	}

	if cfg.DB.Enabled {
		store, err := history.Open(cfg.DB.Path, cfg.DB.BusyTimeout)
		if err != nil {
			return nil, err
		}
		a.history = store
	}

	return a, nil
}

// QueryService returns a DQL executor bound to the live index.
func (a *App) QueryService() *query.Service {
	return query.NewService(a.Provider)
}

// History returns the backing store, or nil when persistence is disabled.
func (a *App) History() *history.Store {
	return a.history
}

func (a *App) SetUpdateHandler(fn func(Update)) {
	a.updateMu.Lock()
	defer a.updateMu.Unlock()
	a.onUpdate = fn
}

// PublishCurrent pushes the present state to the update handler, serialized
// against writers. Readers outside an update callback must not touch the
// Provider directly while a watch pass may be recording.
func (a *App) PublishCurrent() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.notify(Update{
		Stats:   a.Provider.Stats(),
		Trigger: "snapshot",
		Time:    time.Now(),
	})
}

func (a *App) notify(u Update) {
	a.updateMu.RLock()
	fn := a.onUpdate
	a.updateMu.RUnlock()
	if fn != nil {
		fn(u)
	}
}

// fileSet snapshots the known file set for a rebuild.
func (a *App) fileSet() []*decl.File {
	files := make([]*decl.File, 0, len(a.files))
	for _, f := range a.files {
		files = append(files, f)
	}
	return files
}

func (a *App) Close(ctx context.Context) error {
	if a.activeWatcher != nil {
		if err := a.activeWatcher.Close(); err != nil {
			slog.Warn("failed to close watcher", "error", err)
		}
		a.activeWatcher = nil
	}
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			return err
		}
		a.history = nil
	}
	return ctx.Err()
}
