// Package schema describes record fields and maps them to GraphQL types and
// JSON Schema documents.
package schema

import "fmt"

// Kind is the closed set of field kinds.
type Kind int

const (
	KindString Kind = iota
	KindObject
	KindArray
	KindBoolean
	KindInteger
	KindNumber
)

var _kindNames = map[Kind]string{
	KindString:  "string",
	KindObject:  "object",
	KindArray:   "array",
	KindBoolean: "boolean",
	KindInteger: "integer",
	KindNumber:  "number",
}

// String returns the JSON Schema type name of the kind.
func (k Kind) String() string {
	if name, ok := _kindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps a JSON Schema type name to a kind. An empty name is a string.
func ParseKind(s string) (Kind, error) {
	if s == "" {
		return KindString, nil
	}

	for kind, name := range _kindNames {
		if name == s {
			return kind, nil
		}
	}

	return 0, fmt.Errorf("unknown kind '%s'", s)
}
