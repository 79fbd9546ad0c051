package relayconn

import (
	"context"
	"fmt"
)

// Offsets is the result of translating connection arguments against a
// source. [After, Before] is the eligible zone delimited by the cursors,
// [Start, End] the part of it that is returned after first/last truncation.
// All bounds are inclusive.
type Offsets struct {
	After  int
	Before int
	Start  int
	End    int
}

// EdgesLength is the number of eligible edges before first/last truncation.
func (o Offsets) EdgesLength() int {
	return max(o.Before-o.After+1, 0)
}

// Window returns the offsets to materialize.
func (o Offsets) Window() Window {
	return NewWindow(o.Start, o.End)
}

// CursorToOffset decodes a cursor and locates its record in the source.
func CursorToOffset[T any](ctx context.Context, src Source[T], cursor string) (int, bool, error) {
	key, err := CursorToKey(cursor)
	if err != nil {
		return 0, false, err
	}

	return src.Locate(ctx, key)
}

// ApplyCursorsToEdgeOffsets translates the after/before cursors into the
// inclusive offsets of the eligible zone. Empty cursors are absent.
//
// See https://relay.dev/graphql/connections.htm#ApplyCursorsToEdges()
func ApplyCursorsToEdgeOffsets[T any](
	ctx context.Context,
	src Source[T],
	after, before string,
	opts ...Option,
) (afterOffset int, beforeOffset int, err error) {
	return applyCursorsToEdgeOffsets(ctx, src, after, before, buildOptions(opts))
}

func applyCursorsToEdgeOffsets[T any](
	ctx context.Context,
	src Source[T],
	after, before string,
	o options,
) (int, int, error) {
	afterOffset := 0
	if after != "" {
		offset, found, err := CursorToOffset(ctx, src, after)
		if err != nil {
			return 0, 0, fmt.Errorf("cannot resolve after cursor: %w", err)
		}

		if found {
			afterOffset = offset + 1
		} else {
			o.logger.WithField("cursor", after).Warn("after cursor is not in the current view")

			switch o.stale {
			case StaleError:
				return 0, 0, fmt.Errorf("cannot resolve after cursor: %w", ErrStaleCursor)
			case StaleEmpty:
				return 0, -1, nil
			}
		}
	}

	if before == "" {
		count, err := src.Count(ctx)
		if err != nil {
			return 0, 0, fmt.Errorf("cannot count source: %w", err)
		}

		return afterOffset, max(count-1, 0), nil
	}

	offset, found, err := CursorToOffset(ctx, src, before)
	if err != nil {
		return 0, 0, fmt.Errorf("cannot resolve before cursor: %w", err)
	}

	if found {
		return afterOffset, max(offset, afterOffset, 0) - 1, nil
	}

	o.logger.WithField("cursor", before).Warn("before cursor is not in the current view")

	switch o.stale {
	case StaleError:
		return 0, 0, fmt.Errorf("cannot resolve before cursor: %w", ErrStaleCursor)
	case StaleEmpty:
		return afterOffset, afterOffset - 1, nil
	default:
		return afterOffset, 0, nil
	}
}

// EdgeOffsetsToReturn truncates the eligible zone with first, then last.
// Nil first/last are absent.
//
// See https://relay.dev/graphql/connections.htm#EdgesToReturn()
func EdgeOffsetsToReturn(afterOffset, beforeOffset int, first, last *int) (startOffset int, endOffset int, err error) {
	if err = AssertConnectionArgs(first, last); err != nil {
		return 0, 0, err
	}

	startOffset, endOffset = afterOffset, beforeOffset

	if first != nil && endOffset-startOffset+1 > *first {
		endOffset = startOffset + *first - 1
	}

	if last != nil && endOffset-startOffset+1 > *last {
		startOffset = max(endOffset-*last+1, startOffset, 0)
	}

	return startOffset, endOffset, nil
}

// ConnectionArgsToOffsets validates the arguments and computes every offset
// the resolver needs.
func ConnectionArgsToOffsets[T any](ctx context.Context, src Source[T], args *Args, opts ...Option) (Offsets, error) {
	o := buildOptions(opts)
	if o.err != nil {
		return Offsets{}, o.err
	}

	args, err := args.normalized(o.policy, o.maxLimit)
	if err != nil {
		return Offsets{}, err
	}

	return connectionArgsToOffsets(ctx, src, args, o)
}

func connectionArgsToOffsets[T any](ctx context.Context, src Source[T], args *Args, o options) (Offsets, error) {
	afterOffset, beforeOffset, err := applyCursorsToEdgeOffsets(ctx, src, args.after, args.before, o)
	if err != nil {
		return Offsets{}, err
	}

	startOffset, endOffset, err := EdgeOffsetsToReturn(afterOffset, beforeOffset, args.first, args.last)
	if err != nil {
		return Offsets{}, err
	}

	return Offsets{
		After:  afterOffset,
		Before: beforeOffset,
		Start:  startOffset,
		End:    endOffset,
	}, nil
}
