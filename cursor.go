package relayconn

import (
	"encoding/base64"
	"strings"
)

// CursorPrefix is prepended to the global id before the cursor is encoded.
const CursorPrefix = "arrayconnection:"

var _encoder = base64.StdEncoding

// NodeIDToCursor wraps a node id into an opaque cursor.
func NodeIDToCursor(nodeID string) string {
	return _encoder.EncodeToString([]byte(CursorPrefix + nodeID))
}

// CursorToNodeID unwraps a cursor produced by NodeIDToCursor.
func CursorToNodeID(cursor string) (string, error) {
	raw, err := _encoder.DecodeString(cursor)
	if err != nil {
		return "", &DecodeError{Cursor: cursor, Reason: "not base64 encoded"}
	}

	nodeID, ok := strings.CutPrefix(string(raw), CursorPrefix)
	if !ok {
		return "", &DecodeError{Cursor: cursor, Reason: "unexpected prefix"}
	}

	return nodeID, nil
}

// ToGlobalID builds the global id of a record: base64(typeName + ":" + key).
func ToGlobalID(typeName, key string) string {
	return _encoder.EncodeToString([]byte(typeName + ":" + key))
}

// FromGlobalID splits a global id into its type name and key. The key may
// itself contain ':'.
func FromGlobalID(globalID string) (typeName, key string, err error) {
	raw, err := _encoder.DecodeString(globalID)
	if err != nil {
		return "", "", &DecodeError{Cursor: globalID, Reason: "global id is not base64 encoded"}
	}

	typeName, key, ok := strings.Cut(string(raw), ":")
	if !ok || typeName == "" {
		return "", "", &DecodeError{Cursor: globalID, Reason: "global id must look like 'type:key'"}
	}

	return typeName, key, nil
}

// EncodeCursor builds the edge cursor of a record.
func EncodeCursor(typeName, key string) string {
	return NodeIDToCursor(ToGlobalID(typeName, key))
}

// DecodeCursor is the inverse of EncodeCursor.
func DecodeCursor(cursor string) (typeName, key string, err error) {
	nodeID, err := CursorToNodeID(cursor)
	if err != nil {
		return "", "", err
	}

	typeName, key, err = FromGlobalID(nodeID)
	if err != nil {
		return "", "", &DecodeError{Cursor: cursor, Reason: err.(*DecodeError).Reason}
	}

	return typeName, key, nil
}

// CursorToKey returns the primary key carried by a cursor.
func CursorToKey(cursor string) (string, error) {
	_, key, err := DecodeCursor(cursor)
	return key, err
}
