package cache

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"
)

const fingerprintTimeLayout = "20060102150405"

// Fingerprint renders a query object into a deterministic cache key:
// every exported field becomes "Name=Value", fields are sorted by name,
// parts joined with "|". Sorting makes the key independent of struct
// field order; including nil fields keeps distinct queries from
// colliding. Embedded structs are flattened.
func Fingerprint(query any) string {
	if query == nil {
		return "default"
	}

	v := reflect.ValueOf(query)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return "default"
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return fmt.Sprintf("%v", query)
	}

	parts := collectFields(v)
	sort.Strings(parts)
	return strings.Join(parts, "|")
}

func collectFields(v reflect.Value) []string {
	t := v.Type()
	parts := make([]string, 0, t.NumField())

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			parts = append(parts, collectFields(v.Field(i))...)
			continue
		}
		parts = append(parts, field.Name+"="+formatValue(v.Field(i)))
	}

	return parts
}

func formatValue(v reflect.Value) string {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return "null"
		}
		v = v.Elem()
	}

	if t, ok := v.Interface().(time.Time); ok {
		return t.Format(fingerprintTimeLayout)
	}

	return fmt.Sprintf("%v", v.Interface())
}
