package sql

import "context"

//go:generate mockgen -source=metrics.go -destination=mock_metrics.go -package=sql

const statsHistogram = "app_sql_stats"

// Metrics records the duration of every statement in the app_sql_stats histogram.
type Metrics interface {
	RecordHistogram(ctx context.Context, name string, value float64, labels ...string)
}

// HistogramRegistrar creates histograms. *metrics.Manager satisfies it.
type HistogramRegistrar interface {
	NewHistogram(name, desc string, labels []string, buckets ...float64) error
}

// RegisterStats creates app_sql_stats, in milliseconds, labelled by hostname, database
// and statement type.
func RegisterStats(r HistogramRegistrar) error {
	return r.NewHistogram(statsHistogram, "Response time of SQL queries in milliseconds.",
		[]string{"hostname", "database", "type"},
		.05, .075, .1, .125, .15, .2, .3, .5, .75, 1, 2, 3, 4, 5, 7.5, 10)
}
