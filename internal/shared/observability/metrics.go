package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "declmap_parsing_seconds",
		Help:    "Time spent parsing a source file into a declaration tree.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	IndexFiles = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "declmap_index_files_total",
		Help: "Number of files recorded in the declaration index.",
	})

	IndexPackages = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "declmap_index_packages_total",
		Help: "Number of packages with at least one recorded file.",
	})

	IndexClassifiers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "declmap_index_classifiers_total",
		Help: "Number of classifier identities recorded in the index.",
	})

	IndexCallables = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "declmap_index_callables_total",
		Help: "Number of callable identities recorded in the index.",
	})

	RecordPassesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "declmap_record_passes_total",
		Help: "Total number of recorder passes, by trigger (scan, generated, rebuild).",
	}, []string{"trigger"})

	RebuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "declmap_rebuild_seconds",
		Help:    "Time spent on a from-scratch index rebuild.",
		Buckets: prometheus.DefBuckets,
	})

	ConsistencyChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "declmap_consistency_checks_total",
		Help: "Total consistency checks, by outcome (clean, drift, healed, failed).",
	}, []string{"outcome"})

	ConsistencyDiffsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "declmap_consistency_diffs_total",
		Help: "Total per-key differences reported by the consistency checker, by kind.",
	}, []string{"kind"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "declmap_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	ScanDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "declmap_scan_seconds",
		Help:    "Time spent on high-level scan tasks.",
		Buckets: prometheus.DefBuckets,
	}, []string{"task"})
)
