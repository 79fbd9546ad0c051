package relayconn

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("github.com/Alp4ka/relayconn")

// Edge pairs a record with its cursor.
type Edge[T any] struct {
	Cursor string `json:"cursor"`
	Node   T      `json:"node"`
}

// PageInfo summarizes the boundaries of a returned page. Cursors are nil when
// the page has no edges.
type PageInfo struct {
	HasNextPage     bool    `json:"hasNextPage"`
	HasPreviousPage bool    `json:"hasPreviousPage"`
	StartCursor     *string `json:"startCursor"`
	EndCursor       *string `json:"endCursor"`
}

// Connection is the result of resolving a connection field.
type Connection[T any] struct {
	Edges    []Edge[T] `json:"edges"`
	PageInfo PageInfo  `json:"pageInfo"`
}

// Nodes returns the records of the connection in order.
func (c *Connection[T]) Nodes() []T {
	if c == nil {
		return nil
	}

	return lo.Map(c.Edges, func(e Edge[T], _ int) T { return e.Node })
}

// Request carries everything one resolution needs besides the source.
type Request struct {
	Args      *Args
	Filters   Filters
	Relations Relations
}

// Resolver resolves connections of one table over one source. It holds no
// per-request state and is safe for concurrent use.
type Resolver[T any] struct {
	table  Table[T]
	source Source[T]
	opts   options
}

func NewResolver[T any](table Table[T], source Source[T], opts ...Option) (*Resolver[T], error) {
	if err := table.validate(); err != nil {
		return nil, fmt.Errorf("cannot create resolver: %w", err)
	}

	if source == nil {
		return nil, fmt.Errorf("cannot create resolver: source of table '%s' is nil", table.Name)
	}

	o := buildOptions(opts)
	if o.err != nil {
		return nil, fmt.Errorf("cannot create resolver: %w", o.err)
	}

	return &Resolver[T]{
		table:  table,
		source: source,
		opts:   o,
	}, nil
}

// Table returns the table the resolver serves.
func (r *Resolver[T]) Table() Table[T] {
	return r.table
}

// Resolve runs one connection resolution.
//
// Offsets come from one count query plus one locate per cursor, then the
// window is sliced. Over-fetching first+1 rows would save the count but
// cannot serve last without a reversed ordering; the count also keeps
// hasNextPage exact when first and last are combined.
func (r *Resolver[T]) Resolve(ctx context.Context, req Request) (*Connection[T], error) {
	return r.ResolveSource(ctx, r.source, req)
}

// ResolveSource runs one connection resolution over src instead of the
// resolver's own source. src must hold records of the same table, typically a
// narrowed view of it.
func (r *Resolver[T]) ResolveSource(ctx context.Context, src Source[T], req Request) (conn *Connection[T], err error) {
	ctx, span := tracer.Start(ctx, "relayconn.Resolve")
	defer span.End()

	span.SetAttributes(attribute.String("relayconn.table", r.table.Name))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	args, err := req.Args.normalized(r.opts.policy, r.opts.maxLimit)
	if err != nil {
		return nil, err
	}

	for _, cursor := range []string{args.after, args.before} {
		if err = r.checkCursor(cursor); err != nil {
			return nil, err
		}
	}

	if src == nil {
		return nil, fmt.Errorf("cannot resolve connection of '%s': source is nil", r.table.Name)
	}

	if len(req.Filters) > 0 {
		src = src.Filter(req.Filters)
	}

	run := func(src Source[T]) error {
		conn, err = r.resolve(ctx, src, args, req.Relations)
		return err
	}

	if session, ok := src.(SessionSource[T]); ok {
		err = session.WithSession(ctx, run)
	} else {
		err = run(src)
	}

	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("relayconn.edges", len(conn.Edges)))

	return conn, nil
}

func (r *Resolver[T]) resolve(ctx context.Context, src Source[T], args *Args, relations Relations) (*Connection[T], error) {
	offsets, err := connectionArgsToOffsets(ctx, src, args, r.opts)
	if err != nil {
		return nil, err
	}

	edgesLength := offsets.EdgesLength()

	r.opts.logger.WithFields(logrus.Fields{
		"table":        r.table.Name,
		"after":        offsets.After,
		"before":       offsets.Before,
		"window":       offsets.Window().String(),
		"edges_length": edgesLength,
	}).Debug("resolved connection offsets")

	var rows []T
	if window := offsets.Window(); !window.IsEmpty() {
		if rs, ok := src.(RelationSource[T]); ok && len(relations) > 0 {
			src = rs.WithRelations(relations)
		}

		rows, err = src.Slice(ctx, window.Start, window.End)
		if err != nil {
			return nil, fmt.Errorf("cannot slice source: %w", err)
		}
	}

	conn := &Connection[T]{
		Edges: lo.Map(rows, func(row T, _ int) Edge[T] { return r.table.EdgeFor(row) }),
	}

	if len(conn.Edges) > 0 {
		conn.PageInfo.StartCursor = lo.ToPtr(conn.Edges[0].Cursor)
		conn.PageInfo.EndCursor = lo.ToPtr(conn.Edges[len(conn.Edges)-1].Cursor)
	}

	if last, ok := args.Last(); ok {
		conn.PageInfo.HasPreviousPage = edgesLength > last
	}

	if first, ok := args.First(); ok {
		conn.PageInfo.HasNextPage = edgesLength > first
	}

	return conn, nil
}

// checkCursor rejects malformed cursors and cursors minted for another type.
func (r *Resolver[T]) checkCursor(cursor string) error {
	if cursor == "" {
		return nil
	}

	typeName, _, err := DecodeCursor(cursor)
	if err != nil {
		return err
	}

	if typeName != r.table.Name {
		return &DecodeError{
			Cursor: cursor,
			Reason: fmt.Sprintf("cursor belongs to type '%s', not '%s'", typeName, r.table.Name),
		}
	}

	return nil
}
