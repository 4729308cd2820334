package sizeof

import (
	"time"

	"github.com/refscope/refscope/pkg/metrics"
	"go.opencensus.io/stats"
)

// M describes metrics for the sizeof package
type M struct {
	Usage struct {
		Scans          *stats.Int64Measure   `metric:"scans" description:"number of deep size scans"`
		AccountedBytes *stats.Int64Measure   `metric:"accountedBytes" unit:"sumbytes" description:"cumulated bytes accounted by scans"`
		Timing         *stats.Float64Measure `metric:"timing" unit:"milliseconds" description:"scan duration"`
	} `group:"telemetry" description:"usage stats for the sizeof package"`

	// more metrics here
}

// ScanDone records the outcome of one scan
func (m *M) ScanDone(start time.Time, accounted int64) {
	metrics.Inc(m.Usage.Scans)
	metrics.Int64(m.Usage.AccountedBytes, accounted)
	metrics.Since(start, m.Usage.Timing)
}
