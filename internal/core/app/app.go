package app

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"cascade/internal/core/cache"
	"cascade/internal/core/config"
	"cascade/internal/core/errors"
	"cascade/internal/core/scanner"
	"cascade/internal/core/watcher"
	"cascade/internal/data/store"
	"cascade/internal/engine/parser"
	"cascade/internal/shared/util"
)

// App wires the indexer together: one shared symbol cache, the workspace
// scanner that fills it, the optional persisted store, and the optional
// filesystem watcher that keeps everything current.
type App struct {
	Config  *config.Config
	Parser  *parser.Parser
	Cache   *cache.Store
	Scanner *scanner.Scanner

	symbolStore   *store.SymbolStore
	activeWatcher *watcher.Watcher
}

func New(cfg *config.Config) (*App, error) {
	p := parser.NewParser(cfg.Scan.Extensions)

	var limiter *util.Limiter
	if cfg.Scan.FSOpsPerSec > 0 {
		limiter = util.NewLimiter(cfg.Scan.FSOpsPerSec, cfg.Scan.Concurrency)
	}

	a := &App{
		Config:  cfg,
		Parser:  p,
		Cache:   cache.New(),
		Scanner: scanner.New(p, limiter),
	}

	if cfg.DB.Enabled {
		symbolStore, err := store.Open(cfg.DB.Path, cfg.DB.Project)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeIOError, "open symbol store")
		}
		a.symbolStore = symbolStore
	}

	return a, nil
}

// InitialScan warms the cache from the persisted store, scans every
// configured workspace, and reconciles the store with what is on disk now.
func (a *App) InitialScan(ctx context.Context) error {
	start := time.Now()

	if a.symbolStore != nil {
		warmed, err := a.symbolStore.LoadAll()
		if err != nil {
			slog.Warn("failed to warm cache from symbol store", "error", err)
		}
		for _, table := range warmed {
			a.Cache.Set(table.Document, table)
		}
		if len(warmed) > 0 {
			slog.Info("warmed symbol cache", "documents", len(warmed))
		}
	}

	settings := scanner.SettingsFromConfig(a.Config)
	for _, workspace := range a.Config.Workspaces {
		tables, err := a.Scanner.ScanWorkspace(ctx, workspace, a.Cache, settings)
		if err != nil {
			return errors.AddContext(err, errors.CtxWorkspace, workspace)
		}
		if a.symbolStore != nil {
			for _, table := range tables {
				if err := a.symbolStore.UpsertTable(table); err != nil {
					slog.Warn("failed to persist symbol table", "document", table.Document, "error", err)
				}
			}
		}
	}

	if a.symbolStore != nil {
		if err := a.symbolStore.PruneToDocuments(a.Cache.Documents()); err != nil {
			slog.Warn("failed to prune persisted symbol rows after initial scan", "error", err)
		}
	}

	slog.Info("initial scan complete",
		"workspaces", len(a.Config.Workspaces),
		"documents", a.Cache.Len(),
		"duration", time.Since(start))
	return nil
}

// HandleChanges re-indexes the changed stylesheets reported by the watcher.
// Deleted files drop out of the cache and the store; everything else is
// re-extracted.
func (a *App) HandleChanges(paths []string) {
	slog.Info("detected changes", "count", len(paths))
	start := time.Now()

	extractor := scanner.NewExtractor(a.Parser, a.Cache)
	for _, path := range paths {
		if !a.Parser.IsSupportedPath(path) {
			continue
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			continue
		}
		document := scanner.CanonicalDocument(abs)

		info, err := os.Stat(abs)
		if os.IsNotExist(err) {
			a.Cache.Delete(document)
			if a.symbolStore != nil {
				if err := a.symbolStore.DeleteDocument(document); err != nil {
					slog.Warn("failed to drop persisted symbols", "document", document, "error", err)
				}
			}
			continue
		}
		if err != nil || info.IsDir() {
			continue
		}

		table, err := extractor.Extract(scanner.FileEntry{
			Filepath: abs,
			Dir:      filepath.Dir(abs),
			CTime:    info.ModTime(),
		})
		if err != nil {
			slog.Warn("failed to re-extract symbols", "path", abs, "error", err)
			continue
		}
		if a.symbolStore != nil {
			if err := a.symbolStore.UpsertTable(table); err != nil {
				slog.Warn("failed to persist symbol table", "document", table.Document, "error", err)
			}
		}
	}

	slog.Info("change batch handled", "count", len(paths), "duration", time.Since(start))
}

func (a *App) StartWatcher() error {
	w, err := watcher.NewWatcher(
		a.Config.Watch.Debounce,
		a.Config.Scan.Exclude,
		a.Parser.SupportedExtensions(),
		a.HandleChanges,
	)
	if err != nil {
		return err
	}
	a.activeWatcher = w
	return w.Watch(a.Config.Workspaces)
}

// Tables returns the current symbol tables, ordered by document.
func (a *App) Tables() []*parser.SymbolTable {
	return a.Cache.Tables()
}

func (a *App) Close(ctx context.Context) error {
	if a.activeWatcher != nil {
		if err := a.activeWatcher.Close(); err != nil {
			slog.Warn("failed to close watcher", "error", err)
		}
		a.activeWatcher = nil
	}
	if a.symbolStore != nil {
		if err := a.symbolStore.Close(); err != nil {
			return err
		}
		a.symbolStore = nil
	}
	return nil
}
