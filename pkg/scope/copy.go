package scope

import (
	"reflect"
)

// deepCopy clones a value before a copy-on-modify write.
//
// Pointers, slices, maps, structs and arrays are copied recursively;
// shared pointers within the value stay shared in the copy and cycles
// terminate. Channels and functions are reference values with no
// meaningful copy and are carried over as is. Unexported struct fields
// cannot be set through reflection and are left zero in the copy.
func deepCopy(v interface{}) interface{} {
	if v == nil {
		return nil
	}
	return copyValue(reflect.ValueOf(v), make(map[uintptr]reflect.Value)).Interface()
}

func copyValue(v reflect.Value, seen map[uintptr]reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() {
			return v
		}
		if c, ok := seen[v.Pointer()]; ok && c.Type() == v.Type() {
			return c
		}
		n := reflect.New(v.Type().Elem())
		seen[v.Pointer()] = n
		n.Elem().Set(copyValue(v.Elem(), seen))
		return n

	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		n := reflect.MakeSlice(v.Type(), v.Len(), v.Cap())
		for i := 0; i < v.Len(); i++ {
			n.Index(i).Set(copyValue(v.Index(i), seen))
		}
		return n

	case reflect.Map:
		if v.IsNil() {
			return v
		}
		n := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			n.SetMapIndex(copyValue(iter.Key(), seen), copyValue(iter.Value(), seen))
		}
		return n

	case reflect.Struct:
		n := reflect.New(v.Type()).Elem()
		for i := 0; i < v.NumField(); i++ {
			if n.Field(i).CanSet() {
				n.Field(i).Set(copyValue(v.Field(i), seen))
			}
		}
		return n

	case reflect.Array:
		n := reflect.New(v.Type()).Elem()
		for i := 0; i < v.Len(); i++ {
			n.Index(i).Set(copyValue(v.Index(i), seen))
		}
		return n

	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		n := reflect.New(v.Type()).Elem()
		n.Set(copyValue(v.Elem(), seen))
		return n

	default:
		return v
	}
}
