package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opencensus.io/stats"
)

func TestStructTags(t *testing.T) {
	s := newSettings()
	m := &exampleMetrics{}

	scanStruct("parent", s.addMetric, m)

	assert.Nil(t, m.Telemetry.UsageCounts)   // ignored slice
	assert.Nil(t, m.Telemetry.FailureCounts) // ignored slice

	assert.NotNil(t, m.Telemetry.TestCount)
	assert.NotNil(t, m.Volumetry.Sizes.Bytes)
	assert.NotNil(t, m.Volumetry.Sizes.Cumulated)
	assert.NotNil(t, m.Usage.Count)
	assert.NotNil(t, m.Usage.Failures)

	require.NotNil(t, m.Usage.Timing)
	assert.IsType(t, &stats.Float64Measure{}, m.Usage.Timing)
	assert.Len(t, s.allMetrics, 6)
	assert.Len(t, s.allViews, 7)
}
