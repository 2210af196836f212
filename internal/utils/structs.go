package utils

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// Column helpers for the squirrel builders in internal/store. Column names
// come from `db` struct tags; untagged and unexported fields are skipped.

const columnTag = "db"

type column struct {
	name  string
	value reflect.Value
}

func columnsOf(input any) []column {
	v := reflect.ValueOf(input)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		panic(fmt.Sprintf("utils: expected a struct or struct pointer, got %T", input))
	}

	t := v.Type()
	out := make([]column, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name := field.Tag.Get(columnTag)
		if name == "" || name == "-" {
			continue
		}
		out = append(out, column{name: name, value: v.Field(i)})
	}
	return out
}

// Columns returns the column names of input in field order, leaving out
// except.
func Columns(input any, except ...string) []string {
	var names []string
	for _, c := range columnsOf(input) {
		if !slices.Contains(except, c.name) {
			names = append(names, c.name)
		}
	}
	return names
}

// ColumnMap maps each column of input to its field value, for SetMap.
func ColumnMap(input any, except ...string) map[string]any {
	out := make(map[string]any)
	for _, c := range columnsOf(input) {
		if !slices.Contains(except, c.name) {
			out[c.name] = c.value.Interface()
		}
	}
	return out
}

// ExcludedAssignments renders "col = EXCLUDED.col" for every column, the SET
// list of an upsert.
func ExcludedAssignments(columns []string) string {
	parts := make([]string, len(columns))
	for i, name := range columns {
		parts[i] = name + " = EXCLUDED." + name
	}
	return strings.Join(parts, ", ")
}

// WrapErr prefixes err with msg and passes nil through.
func WrapErr(err error, msg string) error {
	if err == nil {
		return nil
	}
	if msg == "" {
		return err
	}
	return fmt.Errorf("%s: %w", msg, err)
}
