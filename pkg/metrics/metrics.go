// Package metrics instruments refscope with usage and volumetry metrics.
//
// Metrics definitions are declared as tagged structs and registered lazily
// with EnsureMetrics. Collection is a no-op until Init configures an
// exporter.
package metrics

import (
	"context"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/refscope/refscope/pkg/metrics/exporters/influxdb"

	"github.com/docker/go-units"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

const (
	// KB stands for kilo bytes (1024 bytes)
	KB = units.KiB

	// MB stands for mega bytes (1024 kilo bytes)
	MB = units.MiB

	// GB stands for giga bytes (1024 mega bytes)
	GB = units.GiB

	unitCount    = "count"
	unitSumBytes = "sumbytes"
)

var (
	// global settings for metrics: recording is safe before Init,
	// it just goes nowhere
	mp       = defaultSettings()
	initOnce sync.Once
)

type settings struct {
	basePath  string
	contexter func() context.Context
	exporter  view.Exporter

	allMetrics []stats.Measure
	allViews   []*view.View

	// a map of all registered modules
	modules   map[string]interface{}
	exclusive sync.Mutex

	d time.Duration
}

func defaultSettings() *settings {
	return &settings{
		modules:   make(map[string]interface{}),
		contexter: context.Background,
		// default reporting period is left to the default from opencensus exporter (10s)
	}
}

func defaultStore() influxdb.Store {
	sink, _ := influxdb.NewStore(
		influxdb.WithDatabase("refscope"),
		influxdb.WithNameAsTag("metrics"), // use metric name as an influxdb tag, with unique time series "metrics"
	)
	return sink
}

// DefaultExporter returns a metrics exporter for an influxdb backend, with db "refscope" and time series "metrics"
func DefaultExporter(opts ...influxdb.Option) view.Exporter {
	return flusher(influxdb.NewExporter(
		append([]influxdb.Option{
			influxdb.WithStore(defaultStore()),
			influxdb.WithTags(map[string]string{"service": "refscope"}),
		}, opts...)...,
	))
}

func newSettings(opts ...Option) *settings {
	s := defaultSettings()
	for _, apply := range opts {
		apply(s)
	}

	if s.exporter == nil {
		s.exporter = DefaultExporter()
	}

	s.RegisterExporter()
	return s
}

func (s *settings) EnsureMetrics(location string, m interface{}) interface{} {
	s.exclusive.Lock()
	defer s.exclusive.Unlock()
	location = path.Join(s.basePath, location)

	if existing, ok := s.modules[location]; ok {
		if !equalType(existing, m) {
			panic("trying to re-register existing metrics module with a different type")
		}
		return existing
	}
	scanStruct(location, s.addMetric, m)
	s.modules[location] = m
	return m
}

// Flush collects all remaining data for registered views and exports them
func (s *settings) Flush() {
	if s.exporter == nil {
		return
	}
	for _, v := range s.allViews {
		rows, err := view.RetrieveData(v.Name)
		if err != nil {
			continue // ignore errors when pushing metrics
		}
		data := &view.Data{
			View:  v,
			Start: time.Now(), // cannot figure out last snapshot time from the background worker
			End:   time.Now(),
			Rows:  rows,
		}
		s.exporter.ExportView(data)
	}
}

// RegisterExporter registers the currently set exporter to the opencensus library
func (s *settings) RegisterExporter() {
	if s.exporter != nil {
		view.RegisterExporter(s.exporter)
		if s.d >= time.Second {
			view.SetReportingPeriod(s.d)
		}
	}
}

// addMetric creates a metric with some views, according to the decoded struct tags.
//
// Every metric is created with a default view according to its unit type:
//   - counters (unit=unitCount or "") get a count view
//   - bytes get an object size distribution view
//   - timings get a duration distribution view
//   - sumbytes get a cumulated bytes size sum view
//
// Supported extra views can be defined in struct tags, e.g. views:"sum,lastvalue,count"
func (s *settings) addMetric(m interface{}, metric, group string, tags map[string]string) interface{} {
	name := path.Join(group, metric)
	description := tags["description"]
	unit := tags["unit"]

	if description == "" {
		description = describeFromTags(name, tags)
	}
	// define default view
	u, dist := unitAndDist(unit)

	var measure stats.Measure
	switch m.(type) {
	case *stats.Int64Measure:
		measure = stats.Int64(name, description, u)
	case *stats.Float64Measure:
		measure = stats.Float64(name, description, u)
	default:
		return nil
	}

	s.allMetrics = append(s.allMetrics, measure)

	// capturing tags in views
	groupingTag := tags["groupings"]
	groupings := strings.Split(groupingTag, ",")
	keys := make([]tag.Key, 0, len(groupings))
	for _, g := range groupings {
		if g != "" {
			keys = append(keys, tag.MustNewKey(g))
		}
	}

	viewOnMetric := &view.View{
		Name:        name,
		Description: describeViewFromDist(description, dist),
		Measure:     measure,
		Aggregation: dist,
		TagKeys:     keys,
	}
	s.allViews = append(s.allViews, viewOnMetric)
	_ = view.Register(viewOnMetric)

	extraViews := tags["views"]
	if extraViews != "" {
		// add extra views
		extras := strings.Split(extraViews, ",")
		for _, extra := range extras {
			extraView := &view.View{
				Measure: measure,
				TagKeys: keys,
			}
			switch extra {
			case unitCount:
				extraView.Aggregation = view.Count()
			case "sum":
				extraView.Aggregation = view.Sum()
			case "lastvalue":
				extraView.Aggregation = view.LastValue()
			}
			if extraView.Aggregation != nil {
				extraView.Name = describeViewFromDist(name, extraView.Aggregation)
				extraView.Description = describeViewFromDist(description, extraView.Aggregation)
				s.allViews = append(s.allViews, extraView)
				_ = view.Register(extraView)
			}
		}
	}
	return measure
}

func durationDistribution() *view.Aggregation {
	// buckets in milliseconds: scans and snapshots are usually fast
	return view.Distribution(
		1, 5, 10, 50,
		100, 300, 500, 700, 900,
		1000, 3000, 5000, 7000, 9000,
		10000, 30000,
	)
}

func bytesDistribution() *view.Aggregation {
	// buckets in bytes, scaled for in-memory objects
	return view.Distribution(
		16, 64, 256,
		1*KB, 4*KB, 16*KB, 64*KB, 256*KB,
		1*MB, 4*MB, 16*MB, 64*MB, 256*MB,
		1*GB,
	)
}

func unitAndDist(unit string) (string, *view.Aggregation) {
	switch unit {
	case "milliseconds":
		return stats.UnitMilliseconds, durationDistribution()
	case "bytes":
		return stats.UnitBytes, bytesDistribution()
	case unitSumBytes:
		return stats.UnitBytes, view.Sum()
	case unitCount:
		fallthrough
	default:
		return stats.UnitDimensionless, view.Count()
	}
}

func describeFromTags(name string, tags map[string]string) string {
	unit := tags["unit"]
	switch unit {
	case unitSumBytes:
		name += " cumulated bytes"
	case "", unitCount:
		name += " counter"
	default:
		name += " in " + unit
	}
	return name
}

func describeViewFromDist(desc string, in *view.Aggregation) string {
	if in == nil {
		return desc
	}
	switch in.Type {
	case view.AggTypeCount:
		return desc + " [count]"
	case view.AggTypeSum:
		return desc + " [cumulated]"
	case view.AggTypeDistribution:
		return desc + " [distribution]"
	case view.AggTypeLastValue:
		return desc + " [last]"
	case view.AggTypeNone:
		fallthrough
	default:
		return desc
	}
}

// FlushExporter is a view exporter that knows how to flush metrics.
//
// This basically means that we may export views concurrently with the default
// background exporter.
type FlushExporter interface {
	view.Exporter
	Flush(*view.Data)
}

// flusher makes a FlushExporter of view.Exporter
func flusher(e view.Exporter) FlushExporter {
	return &simpleFlusher{
		e: e,
	}
}

type simpleFlusher struct {
	e view.Exporter
	m sync.RWMutex
}

func (f *simpleFlusher) ExportView(viewData *view.Data) {
	f.m.RLock() // we don't want to lock out the view background worker, which may parallelize things however it sees fit
	f.e.ExportView(viewData)
	f.m.RUnlock()
}

func (f *simpleFlusher) Flush(viewData *view.Data) {
	f.m.Lock()
	f.e.ExportView(viewData)
	f.m.Unlock()
}
