// Package relayconn implements Relay-style cursor connections over ordered,
// countable and sliceable data sources.
//
// Overview
//
// A connection field receives the standard Relay arguments (first, last,
// after, before) and answers with a window of edges plus page info. relayconn
// splits that work into small pieces:
//   - Cursor codec: opaque, reversible cursors built from a type name and a
//     primary key (base64("arrayconnection:" + globalID)).
//   - Offset resolution: a cursor is mapped to the zero-based rank of its record
//     in the current filtered and ordered view of a Source.
//   - Edge window: ApplyCursorsToEdgeOffsets and EdgeOffsetsToReturn compute the
//     inclusive [start, end] offsets to materialize.
//   - Resolver: orchestrates filters, offsets, slicing, edges and page info.
//
// Key concepts
//   - Source: the ordered data abstraction. MemorySource works over a slice,
//     GormSource over a gorm query.
//   - Orderings: multi-column ordering with explicit directions. GormSource
//     always ends its ordering with the primary key so the order is total.
//   - Table: the node type name and how to read a record's primary key.
//
// The GraphQL binding lives in the gql subpackage, the schema mapping in the
// schema subpackage.
package relayconn
