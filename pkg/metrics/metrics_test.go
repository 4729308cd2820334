package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureRequires(t testing.TB, m *exampleMetrics) {
	require.NotNil(t, m.Telemetry.TestCount)
	require.NotNil(t, m.Volumetry.Sizes.Bytes)
	require.NotNil(t, m.Usage.Count)
}

func exerciseAPI(t testing.TB, m *exampleMetrics) {
	Inc(m.Telemetry.TestCount)
	Int64(m.Volumetry.Sizes.Bytes, 10)
	Inc(m.Usage.Count)
}

func TestMetrics(t *testing.T) {
	testMetrics := &exampleMetrics{}
	Init(
		WithExporter(testExporter(map[string]string{"testing": "testingvalue"})),
	)
	_ = EnsureMetrics("example", testMetrics)

	fixtureRequires(t, testMetrics)

	exerciseAPI(t, testMetrics)
}

func TestRegister(t *testing.T) {
	testMetrics := &exampleMetrics{}
	Init(
		WithExporter(testExporter(map[string]string{"registerTesting": "testingvalue"})),
	)

	// lazy registration
	x := EnsureMetrics("registerExample", testMetrics)
	fixtureRequires(t, testMetrics)
	exerciseAPI(t, testMetrics)

	// retry registration
	y := EnsureMetrics("registerExample", testMetrics)
	require.Equal(t, x, y)
}

func TestModules(t *testing.T) {
	s := newSettings(
		WithBasePath("root"),
		WithExporter(testExporter(map[string]string{"author": "fred", "run": "test"})),
	)
	testMetrics := &exampleMetrics{}
	_ = s.EnsureMetrics("moduleTesting", testMetrics)

	require.Len(t, s.modules, 1)
	assert.Len(t, s.allMetrics, 6)
	assert.Len(t, s.allViews, 7)

	fixtureRequires(t, testMetrics)
	mp = s

	// helper object level API
	t0 := time.Now()

	testMetrics.IncTest()

	testMetrics.Volumetry.Sizes.Record(100, "scan")
	testMetrics.Volumetry.Sizes.Record(0, "scan") // not recorded

	testMetrics.Usage.Inc("size")
	testMetrics.Usage.Used(t0, "size")
	testMetrics.Usage.Failed("snapshot")
	testMetrics.Usage.UsedAll(t0, "snapshot")(nil)
	testMetrics.Usage.UsedAll(t0, "snapshot")(fmt.Errorf("failure"))

	s.Flush()
}
