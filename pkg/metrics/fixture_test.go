package metrics

import "go.opencensus.io/stats"

type exampleMetrics struct {
	Telemetry struct {
		UsageCounts   []VolumeMetrics       `group:"usage" description:""`    // ignored
		FailureCounts []*stats.Int64Measure `group:"failures" description:""` // ignored
		TestCount     *stats.Int64Measure   `metric:"testCount" description:"number of tests"`
	} `group:"telemetry" description:""`
	Volumetry struct {
		Sizes VolumeMetrics `group:"sizes" description:""`
	} `group:"volumetry" description:""`
	Usage UsageMetrics `group:"usage"`
}

func (e *exampleMetrics) IncTest() {
	Inc(e.Telemetry.TestCount, map[string]string{"kind": "test"})
}
