package metrics

import (
	"time"

	"go.opencensus.io/stats"
)

// VolumeMetrics is a common set of metrics reporting about measured byte volumes
type VolumeMetrics struct {
	Bytes     *stats.Int64Measure `metric:"bytes" unit:"bytes" description:"measured bytes" extraviews:"sum" tags:"kind,operation"`
	Cumulated *stats.Int64Measure `metric:"cumulatedBytes" unit:"sumbytes" description:"cumulated measured bytes" tags:"kind,operation"`
}

func (v *VolumeMetrics) tags(operation string) map[string]string {
	return map[string]string{"kind": "volume", "operation": operation}
}

// Record measures some byte volume. Zero volumes are not recorded.
func (v *VolumeMetrics) Record(size int64, operation string) {
	if size == 0 {
		return
	}
	Int64(v.Bytes, size, v.tags(operation))
	Int64(v.Cumulated, size, v.tags(operation))
}

// UsageMetrics is a common set of metrics reporting about usage
type UsageMetrics struct {
	Count    *stats.Int64Measure   `metric:"usageCount" description:"number of calls" tags:"kind,method"`
	Failures *stats.Int64Measure   `metric:"usageFailures" description:"number of failed calls" tags:"kind,method"`
	Timing   *stats.Float64Measure `metric:"timing" unit:"milliseconds" description:"duration of a call" tags:"kind,method"`
}

func (u *UsageMetrics) tags(method string) map[string]string {
	return map[string]string{"kind": "usage", "method": method}
}

// Inc records the usage of some method, without timings or failure reporting
func (u *UsageMetrics) Inc(method string) {
	Inc(u.Count, u.tags(method))
}

// Used records usage of some instrumented entry point.
//
// Example:
//
//	var myUsageMetrics = &UsageMetrics{}
//
//	func (m *myType) MyInstrumentedFunc() {
//	  defer myUsageMetrics.Used(time.Now(), "MyInstrumentedFunc")
//	  ...
//	}
func (u *UsageMetrics) Used(start time.Time, method string) {
	Since(start, u.Timing, u.tags(method))
	Inc(u.Count, u.tags(method))
}

// UsedAll records usage of some instrumented entry point with failures, in one go.
//
// Example:
//
//	var myUsageMetrics = &UsageMetrics{}
//	var err error
//
//	func (m *myType) MyInstrumentedFunc() {
//	  defer func(start time.Time) {
//	    myUsageMetrics.UsedAll(start, "MyInstrumentedFunc")(err)
//	  }(time.Now())
//	  ...
//	}
func (u *UsageMetrics) UsedAll(start time.Time, method string) func(error) {
	return func(err error) {
		Since(start, u.Timing, u.tags(method))
		Inc(u.Count, u.tags(method))
		if err != nil {
			Inc(u.Failures, u.tags(method))
		}
	}
}

// Failed records a failure on some instrumented entry point
func (u *UsageMetrics) Failed(method string) {
	Inc(u.Failures, u.tags(method))
}
