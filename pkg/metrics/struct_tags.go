package metrics

import (
	"fmt"
	"path"
	"reflect"
)

type metricAdder func(interface{}, string, string, map[string]string) interface{}

func equalType(a, b interface{}) bool {
	return reflect.TypeOf(a) == reflect.TypeOf(b)
}

func scanStruct(parent string, adder metricAdder, m interface{}) {
	rv := reflect.ValueOf(m)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Type().Kind() != reflect.Struct {
		panic(fmt.Sprintf("scanStruct requires a pointer to a struct, got: %T", m))
	}
	scanTags(parent, adder, m)
}

func scanTags(parent string, adder metricAdder, m interface{}) {
	container := reflect.ValueOf(m)
	if !container.IsValid() || !isStruct(container) {
		return
	}

	receiver, derefd := pointerTo(container) // always a pointer
	pointedStruct := reflect.Indirect(receiver)
	structChanged := false

	for i := 0; i < derefd.NumField(); i++ {
		field := derefd.Field(i)
		pointedField := pointedStruct.Field(i)

		if !pointedField.CanInterface() {
			continue
		}
		var child interface{}
		if pointedField.Type().Kind() == reflect.Ptr {
			child = pointedField.Interface()
		} else {
			child = pointedField.Addr().Interface()
		}

		tags := fieldTags(field)
		metric := tags["metric"]
		group := tags["group"]

		if metric == "" {
			scanTags(path.Join(parent, group), adder, child)
			continue
		}

		if pointedField.Type().Kind() != reflect.Ptr || !pointedField.CanSet() {
			continue
		}

		allocated := adder(child, metric, path.Join(parent, group), tags)
		if allocated != nil {
			pointedField.Set(reflect.ValueOf(allocated))
			structChanged = true
		}
	}

	if !structChanged {
		return
	}

	if container.CanSet() {
		container.Set(receiver)
	} else if container.CanAddr() && container.Addr().CanSet() {
		container.Addr().Set(receiver)
	}
}

func pointerTo(container reflect.Value) (reflect.Value, reflect.Type) {
	deref := derefType(container)
	if container.Type().Kind() == reflect.Ptr && !container.IsNil() {
		return container, deref
	}
	return reflect.New(deref), deref
}

// fieldTags decodes field tags that decorate the struct.
// Supported tags are:
//   - metric: the metric name
//   - group: builds an additional path to the metric (e.g. root/path/mymetrics/{metric})
//   - unit: the measurement unit (count, bytes, sumbytes, milliseconds)
//   - description: adds this description to the metric and the associated views
//   - extraviews:[aggregator, ...]: builds additional views with alternate aggregators
//   - tags:[key, ...]: declares grouping tag keys captured by views
func fieldTags(field reflect.StructField) map[string]string {
	tags := make(map[string]string, 6)
	for src, dst := range map[string]string{
		"metric":      "metric",
		"unit":        "unit",
		"group":       "group",
		"description": "description",
		"extraviews":  "views",
		"tags":        "groupings",
	} {
		if v, ok := field.Tag.Lookup(src); ok {
			tags[dst] = v
		}
	}
	return tags
}

func isStruct(v reflect.Value) bool {
	return (v.Type().Kind() == reflect.Ptr && v.Type().Elem().Kind() == reflect.Struct) || v.Type().Kind() == reflect.Struct
}

func derefType(v reflect.Value) reflect.Type {
	if v.Type().Kind() == reflect.Ptr {
		return v.Type().Elem()
	}
	return v.Type()
}
