package scanner

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"cascade/internal/core/cache"
	"cascade/internal/engine/parser"
	"cascade/internal/shared/observability"
	"cascade/internal/shared/util"

	"golang.org/x/sync/errgroup"
)

// Resolver follows import references breadth-first: each wave collects the
// import targets of the previous wave's tables, probes the candidate
// physical paths concurrently, and feeds the resulting tables into the next
// wave. Waves are strictly sequential; the candidate set of wave n+1 is
// computed only after every probe of wave n has settled.
type Resolver struct {
	extractor *Extractor
	store     *cache.Store
	limiter   *util.Limiter
	depth     int
	fanout    int
}

func NewResolver(extractor *Extractor, store *cache.Store, limiter *util.Limiter, depth, fanout int) *Resolver {
	if fanout <= 0 {
		fanout = 8
	}
	return &Resolver{
		extractor: extractor,
		store:     store,
		limiter:   limiter,
		depth:     depth,
		fanout:    fanout,
	}
}

// Resolve returns the tables discovered beyond the known set, bounded by the
// configured wave depth. Reaching the bound is normal termination, not an
// error. For every target both the plain and the "_"-prefixed candidate are
// probed; when both exist on disk each yields a table and neither takes
// precedence.
func (r *Resolver) Resolve(ctx context.Context, known []*parser.SymbolTable) []*parser.SymbolTable {
	if r.depth <= 0 || len(known) == 0 {
		return nil
	}

	knownDocs := make(map[string]bool, len(known))
	for _, table := range known {
		knownDocs[table.Document] = true
	}

	collected := make([]*parser.SymbolTable, 0)
	frontier := known
	waves := 0
	for ; waves < r.depth && len(frontier) > 0; waves++ {
		candidates := collectCandidates(frontier, knownDocs)
		if len(candidates) == 0 {
			break
		}
		observability.ImportCandidatesTotal.Add(float64(len(candidates)))

		// Fan-out over the wave's candidates; the Wait below is the
		// per-wave barrier. Failed probes leave nil slots.
		results := make([]*parser.SymbolTable, len(candidates))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.fanout)
		for i, candidate := range candidates {
			g.Go(func() error {
				results[i] = r.resolveCandidate(gctx, candidate)
				return nil
			})
		}
		_ = g.Wait()

		next := make([]*parser.SymbolTable, 0, len(results))
		for _, table := range results {
			if table == nil {
				continue
			}
			knownDocs[table.Document] = true
			next = append(next, table)
		}
		collected = append(collected, next...)
		frontier = next
	}

	observability.ImportWaves.Observe(float64(waves))
	return collected
}

// collectCandidates gathers the physical paths to probe for one wave.
// Dynamic and plain-CSS imports are never followed; targets whose canonical
// document is already known are skipped, which is what terminates cycles.
func collectCandidates(frontier []*parser.SymbolTable, knownDocs map[string]bool) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, table := range frontier {
		for _, imp := range table.Imports {
			if imp.Dynamic || imp.CSS {
				continue
			}
			target := imp.Filepath
			if knownDocs[target] {
				continue
			}
			for _, candidate := range []string{target, PartialSibling(target)} {
				if !seen[candidate] {
					seen[candidate] = true
					out = append(out, candidate)
				}
			}
		}
	}
	return out
}

func (r *Resolver) resolveCandidate(ctx context.Context, candidate string) *parser.SymbolTable {
	if err := r.limiter.Wait(ctx, 1); err != nil {
		return nil
	}

	info, err := os.Stat(candidate)
	if err != nil || info.IsDir() {
		// Missing candidates are expected: usually only one of the
		// plain/partial pair exists.
		return nil
	}

	document := CanonicalDocument(candidate)
	if cached, ok := r.extractor.Fresh(document, info.ModTime()); ok {
		observability.CacheHitsTotal.Inc()
		return cached
	}

	observability.CacheMissesTotal.Inc()
	table, err := r.extractor.Extract(FileEntry{
		Filepath: candidate,
		Dir:      filepath.Dir(candidate),
		CTime:    info.ModTime(),
	})
	if err != nil {
		slog.Debug("dropping unreadable import target", "path", candidate, "error", err)
		return nil
	}
	return table
}
