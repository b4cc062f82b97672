package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

// Tracer is the process-wide tracer used at service entry points.
var Tracer = otel.Tracer("cascade")

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cascade_parsing_seconds",
		Help:    "Time spent extracting symbols from a stylesheet.",
		Buckets: prometheus.DefBuckets,
	}, []string{"syntax"})

	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cascade_scan_seconds",
		Help:    "Wall time for a full workspace scan including import resolution.",
		Buckets: prometheus.DefBuckets,
	})

	CacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cascade_cache_hits_total",
		Help: "Symbol tables served from the cache without re-parsing.",
	})

	CacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cascade_cache_misses_total",
		Help: "Symbol tables that had to be extracted from source.",
	})

	ImportWaves = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cascade_import_waves",
		Help:    "Breadth-first waves executed per import resolution pass.",
		Buckets: []float64{0, 1, 2, 3, 5, 8, 13},
	})

	ImportCandidatesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cascade_import_candidates_total",
		Help: "Candidate physical paths probed during import resolution.",
	})

	DocumentsIndexed = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cascade_documents_indexed",
		Help: "Number of documents currently held in the symbol cache.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cascade_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})
)
