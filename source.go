package relayconn

import (
	"context"
	"fmt"
	"slices"
)

// Filters are equality filters keyed by GraphQL field name.
type Filters map[string]any

// Relations is a tree of requested relation names. A nil subtree marks a
// leaf relation.
type Relations map[string]Relations

// Paths flattens the tree into sorted dotted paths, parents before children.
func (r Relations) Paths() []string {
	var ret []string
	for name, sub := range r {
		ret = append(ret, name)
		for _, p := range sub.Paths() {
			ret = append(ret, name+"."+p)
		}
	}

	slices.Sort(ret)

	return ret
}

// Source is an ordered, countable, sliceable and filterable sequence of
// records. The order must be stable and total for the lifetime of one
// resolution.
type Source[T any] interface {
	// Count returns the number of records in the view.
	Count(ctx context.Context) (int, error)
	// Slice materializes the records at offsets [start, end], both inclusive.
	// An inverted window yields no records.
	Slice(ctx context.Context, start, end int) ([]T, error)
	// Locate returns the offset of the record with the given primary key, or
	// false when no such record is in the view.
	Locate(ctx context.Context, key string) (int, bool, error)
	// Filter returns a narrowed view. The receiver is left unchanged.
	Filter(filters Filters) Source[T]
}

// RelationSource is implemented by sources able to fetch related objects
// together with the sliced records.
type RelationSource[T any] interface {
	WithRelations(relations Relations) Source[T]
}

// SessionSource is implemented by sources backed by pooled connections. fn
// runs with a view pinned to one connection, released when fn returns.
type SessionSource[T any] interface {
	WithSession(ctx context.Context, fn func(Source[T]) error) error
}

// Table describes the node type served by a connection.
type Table[T any] struct {
	// Name is the type name embedded in cursors and global ids.
	Name string
	// PrimaryKey is the primary key column or field name.
	PrimaryKey string
	// Key reads the primary key of a record.
	Key func(T) string
}

func (t Table[T]) validate() error {
	if t.Name == "" {
		return fmt.Errorf("table name is empty")
	}

	if t.Key == nil {
		return fmt.Errorf("table '%s' has no key getter", t.Name)
	}

	return nil
}

// EdgeFor wraps a record into an edge.
func (t Table[T]) EdgeFor(node T) Edge[T] {
	return Edge[T]{
		Cursor: EncodeCursor(t.Name, t.Key(node)),
		Node:   node,
	}
}
