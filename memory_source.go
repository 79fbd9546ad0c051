package relayconn

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Matcher reports whether a record satisfies the filters.
type Matcher[T any] func(item T, filters Filters) bool

// MemorySource is a Source over an in-memory slice. The slice order is the
// source order unless WithLess sorts it.
type MemorySource[T any] struct {
	items   []T
	key     func(T) string
	matcher Matcher[T]
}

// NewMemorySource copies items into a new source.
func NewMemorySource[T any](items []T, key func(T) string) *MemorySource[T] {
	return &MemorySource[T]{
		items:   slices.Clone(items),
		key:     key,
		matcher: MatchFields[T],
	}
}

// WithLess stable-sorts the records with less.
func (s *MemorySource[T]) WithLess(less func(a, b T) bool) *MemorySource[T] {
	items := slices.Clone(s.items)
	slices.SortStableFunc(items, func(a, b T) int {
		switch {
		case less(a, b):
			return -1
		case less(b, a):
			return 1
		default:
			return 0
		}
	})

	return &MemorySource[T]{items: items, key: s.key, matcher: s.matcher}
}

// WithMatcher replaces the filter matcher.
func (s *MemorySource[T]) WithMatcher(matcher Matcher[T]) *MemorySource[T] {
	return &MemorySource[T]{items: s.items, key: s.key, matcher: matcher}
}

// Count implements Source.
func (s *MemorySource[T]) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	return len(s.items), nil
}

// Slice implements Source.
func (s *MemorySource[T]) Slice(ctx context.Context, start, end int) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w := NewWindow(start, end).Clip(len(s.items))
	if w.IsEmpty() {
		return []T{}, nil
	}

	return slices.Clone(s.items[w.Start : w.End+1]), nil
}

// Locate implements Source.
func (s *MemorySource[T]) Locate(ctx context.Context, key string) (int, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}

	idx := slices.IndexFunc(s.items, func(item T) bool {
		return s.key(item) == key
	})

	return idx, idx != -1, nil
}

// Filter implements Source.
func (s *MemorySource[T]) Filter(filters Filters) Source[T] {
	return &MemorySource[T]{
		items: lo.Filter(s.items, func(item T, _ int) bool {
			return s.matcher(item, filters)
		}),
		key:     s.key,
		matcher: s.matcher,
	}
}

// MatchFields is the default Matcher. Map records match by key, struct
// records by field name (case-insensitive) or json tag. Values are compared
// by their formatted representation so that 1 matches int64(1).
func MatchFields[T any](item T, filters Filters) bool {
	for name, want := range filters {
		got, ok := fieldValue(reflect.ValueOf(item), name)
		if !ok || fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}

	return true
}

func fieldValue(v reflect.Value, name string) (any, bool) {
	v, ok := indirect(v)
	if !ok {
		return nil, false
	}

	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, false
		}

		mv := v.MapIndex(reflect.ValueOf(name).Convert(v.Type().Key()))
		if !mv.IsValid() {
			return nil, false
		}

		return valueOf(mv)
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			f := v.Type().Field(i)
			if !f.IsExported() {
				continue
			}

			tag, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if strings.EqualFold(f.Name, name) || tag == name {
				return valueOf(v.Field(i))
			}
		}
	}

	return nil, false
}

// indirect follows pointers and interfaces. A nil one holds no value.
func indirect(v reflect.Value) (reflect.Value, bool) {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}

	return v, v.IsValid()
}

func valueOf(v reflect.Value) (any, bool) {
	v, ok := indirect(v)
	if !ok {
		return nil, false
	}

	return v.Interface(), true
}

var _ Source[any] = (*MemorySource[any])(nil)
