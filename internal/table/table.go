// Package table turns ordered records into header/row grids that the
// console, the CLI and the PDF export all draw from.
package table

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// Placeholder is rendered for a value that is absent, such as a field
// reached through a nil embed.
const Placeholder = "-"

type accessorKind int

const (
	kindField accessorKind = iota + 1
	kindDerived
)

// Accessor says how one cell is read from a record: either a direct
// lookup by JSON field name (Field) or a computed value (Derived).
type Accessor[T any] struct {
	kind    accessorKind
	path    []string
	derived func(T) string
}

// Field reads the value at a JSON field path. A dotted path such as
// "company_data.name" walks into nested structs.
func Field[T any](path string) Accessor[T] {
	return Accessor[T]{kind: kindField, path: strings.Split(path, ".")}
}

// Derived computes the cell from the whole record.
func Derived[T any](fn func(T) string) Accessor[T] {
	return Accessor[T]{kind: kindDerived, derived: fn}
}

func (a Accessor[T]) value(rec T) string {
	switch a.kind {
	case kindField:
		return lookup(reflect.ValueOf(rec), a.path)
	case kindDerived:
		if a.derived == nil {
			return Placeholder
		}
		return a.derived(rec)
	default:
		return Placeholder
	}
}

type Column[T any] struct {
	Header   string
	Accessor Accessor[T]
}

// Table is the rendered grid. Rows[i] has one cell per header.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// Render evaluates every column against every record, in input order.
func Render[T any](records []T, columns []Column[T]) Table {
	t := Table{
		Headers: make([]string, len(columns)),
		Rows:    make([][]string, 0, len(records)),
	}
	for i, col := range columns {
		t.Headers[i] = col.Header
	}
	for _, rec := range records {
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = col.Accessor.value(rec)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func lookup(v reflect.Value, path []string) string {
	for _, name := range path {
		v = indirect(v)
		if !v.IsValid() || v.Kind() != reflect.Struct {
			return Placeholder
		}
		idx, ok := fieldIndex(v.Type(), name)
		if !ok {
			return Placeholder
		}
		v = v.FieldByIndex(idx)
	}
	v = indirect(v)
	if !v.IsValid() {
		return Placeholder
	}
	return format(v)
}

func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func format(v reflect.Value) string {
	if v.CanInterface() {
		if s, ok := v.Interface().(fmt.Stringer); ok {
			return s.String()
		}
	}
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Bool:
		if v.Bool() {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(v.Interface())
	}
}

var fieldCache sync.Map // map[fieldKey][]int

type fieldKey struct {
	t    reflect.Type
	name string
}

// fieldIndex resolves a JSON name to a field index, looking through
// embedded structs the way encoding/json does.
func fieldIndex(t reflect.Type, name string) ([]int, bool) {
	key := fieldKey{t, name}
	if idx, ok := fieldCache.Load(key); ok {
		return idx.([]int), idx.([]int) != nil
	}
	idx := findField(t, name)
	fieldCache.Store(key, idx)
	return idx, idx != nil
}

func findField(t reflect.Type, name string) []int {
	var embedded [][]int
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() && !f.Anonymous {
			continue
		}
		tag, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if tag == "-" {
			continue
		}
		if tag == name || (tag == "" && f.Name == name) {
			return []int{i}
		}
		if f.Anonymous && tag == "" {
			embedded = append(embedded, []int{i})
		}
	}
	for _, prefix := range embedded {
		ft := t.Field(prefix[0]).Type
		if ft.Kind() == reflect.Pointer {
			continue
		}
		if ft.Kind() != reflect.Struct {
			continue
		}
		if sub := findField(ft, name); sub != nil {
			return append(prefix, sub...)
		}
	}
	return nil
}
