// # internal/scanner/scanner.go
package scanner

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"cascade/internal/core/cache"
	"cascade/internal/core/config"
	"cascade/internal/core/errors"
	"cascade/internal/engine/parser"
	"cascade/internal/shared/observability"
	"cascade/internal/shared/util"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Settings carries the per-scan knobs. Zero values fall back to the
// defaults applied in config.
type Settings struct {
	ExcludePatterns []string
	MaxDepth        int
	ResolveImports  bool
	ImportDepth     int
	StrictErrors    bool
	Concurrency     int
}

func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		ExcludePatterns: cfg.Scan.Exclude,
		MaxDepth:        cfg.Scan.MaxDepth,
		ResolveImports:  cfg.Imports.IsEnabled(),
		ImportDepth:     cfg.Imports.Depth,
		StrictErrors:    cfg.Scan.StrictErrors,
		Concurrency:     cfg.Scan.Concurrency,
	}
}

type Scanner struct {
	parser  *parser.Parser
	limiter *util.Limiter
}

// New builds a Scanner. limiter may be nil for unthrottled filesystem
// access.
func New(p *parser.Parser, limiter *util.Limiter) *Scanner {
	return &Scanner{parser: p, limiter: limiter}
}

// ScanWorkspace walks root, extracts symbols from every matching stylesheet,
// then follows imports breadth-first up to the configured depth. The result
// is the project tables followed by the import-resolved tables, without
// deduplication; consumers that need a map should key by Document.
func (s *Scanner) ScanWorkspace(ctx context.Context, root string, store *cache.Store, settings Settings) ([]*parser.SymbolTable, error) {
	ctx, span := observability.Tracer.Start(ctx, "scanner.ScanWorkspace",
		trace.WithAttributes(attribute.String("workspace", root)))
	defer span.End()

	started := time.Now()
	defer func() {
		observability.ScanDuration.Observe(time.Since(started).Seconds())
	}()

	log := slog.With("scan_id", uuid.NewString(), "workspace", root)

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "resolve workspace root")
	}

	classifier, err := NewClassifier(settings.ExcludePatterns, s.parser.SupportedExtensions())
	if err != nil {
		return nil, err
	}

	extractor := NewExtractor(s.parser, store)
	walker := NewWalker(classifier, settings.MaxDepth, settings.StrictErrors)

	project := make([]*parser.SymbolTable, 0, 64)
	err = walker.Walk(absRoot, func(entry FileEntry) error {
		document := CanonicalDocument(entry.Filepath)
		if cached, ok := extractor.Fresh(document, entry.CTime); ok {
			observability.CacheHitsTotal.Inc()
			project = append(project, cached)
			return nil
		}

		observability.CacheMissesTotal.Inc()
		table, extractErr := extractor.Extract(entry)
		if extractErr != nil {
			if settings.StrictErrors {
				return errors.AddContext(extractErr, errors.CtxWorkspace, root)
			}
			log.Warn("failed to extract symbols", "path", entry.Filepath, "error", extractErr)
			return nil
		}
		project = append(project, table)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !settings.ResolveImports || settings.ImportDepth <= 0 {
		log.Info("workspace scan complete", "documents", len(project))
		return project, nil
	}

	resolver := NewResolver(extractor, store, s.limiter, settings.ImportDepth, settings.Concurrency)
	imported := resolver.Resolve(ctx, project)
	log.Info("workspace scan complete", "documents", len(project), "imported", len(imported))
	return append(project, imported...), nil
}
