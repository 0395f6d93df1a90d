package metrics

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"crisiswatch/internal/db"
	"crisiswatch/internal/models"
)

var (
	keywordTriggerDesc = prometheus.NewDesc(
		"crisiswatch_keyword_triggers_total",
		"Total production detections per keyword",
		[]string{"keyword", "severity"},
		nil,
	)

	detectionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crisiswatch_detections_total",
		Help: "Detection calls by outcome",
	}, []string{"outcome"})

	matchedPerDetection = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "crisiswatch_matched_keywords",
		Help:    "Distinct keywords matched per detection",
		Buckets: []float64{0, 1, 2, 3, 5, 8, 13},
	})
)

// TriggerCollector is a custom Prometheus collector that reads per-keyword
// trigger counts from the database on each scrape.
type TriggerCollector struct {
	db *db.DB
}

// Describe sends the metric descriptor to the channel.
func (c *TriggerCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- keywordTriggerDesc
}

// Collect queries the database for all trigger counts and emits them as
// counters.
func (c *TriggerCollector) Collect(ch chan<- prometheus.Metric) {
	stats, err := c.db.GetTriggerStats(context.Background(), 0)
	if err != nil {
		slog.Error("failed to collect keyword trigger metrics", "error", err)
		return
	}
	for _, s := range stats {
		ch <- prometheus.MustNewConstMetric(
			keywordTriggerDesc,
			prometheus.CounterValue,
			float64(s.TriggerCount),
			s.Text,
			s.SeverityLevel,
		)
	}
}

var initOnce sync.Once

// Init registers the collectors. Must be called once at startup.
func Init(database *db.DB) {
	initOnce.Do(func() {
		prometheus.MustRegister(&TriggerCollector{db: database})
		prometheus.MustRegister(detectionsTotal, matchedPerDetection)
	})
}

// RecordDetection observes one production detection outcome.
func RecordDetection(result models.DetectionResult) {
	outcome := "clean"
	if result.IsCrisis {
		outcome = "crisis"
	}
	detectionsTotal.WithLabelValues(outcome).Inc()
	matchedPerDetection.Observe(float64(len(result.DetectedKeywords)))
}
