package gql

import (
	"github.com/Alp4ka/relayconn"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
)

// Fields is the tree of fields selected by a query. A nil subtree marks a
// leaf field.
type Fields map[string]Fields

// Get returns the selection under the dotted path, or nil.
func (f Fields) Get(path ...string) Fields {
	cur := f
	for _, name := range path {
		if cur == nil {
			return nil
		}
		cur = cur[name]
	}

	return cur
}

// RequestedFields returns the fields selected under the field being resolved.
// Inline fragments and fragment spreads are merged into their parent.
func RequestedFields(info graphql.ResolveInfo) Fields {
	ret := Fields{}
	for _, field := range info.FieldASTs {
		collectFields(ret, field.SelectionSet, info.Fragments)
	}

	return ret
}

func collectFields(dst Fields, set *ast.SelectionSet, fragments map[string]ast.Definition) {
	if set == nil {
		return
	}

	for _, selection := range set.Selections {
		switch s := selection.(type) {
		case *ast.Field:
			if s.Name == nil {
				continue
			}

			sub := dst[s.Name.Value]
			if s.SelectionSet != nil {
				if sub == nil {
					sub = Fields{}
				}
				collectFields(sub, s.SelectionSet, fragments)
			}
			if len(sub) == 0 {
				sub = nil
			}

			dst[s.Name.Value] = sub
		case *ast.InlineFragment:
			collectFields(dst, s.SelectionSet, fragments)
		case *ast.FragmentSpread:
			if s.Name == nil {
				continue
			}

			if def, ok := fragments[s.Name.Value].(*ast.FragmentDefinition); ok {
				collectFields(dst, def.SelectionSet, fragments)
			}
		}
	}
}

// RelationsFromFields keeps the fields that have a selection of their own,
// that is the related objects.
func RelationsFromFields(fields Fields) relayconn.Relations {
	var ret relayconn.Relations
	for name, sub := range fields {
		if len(sub) == 0 {
			continue
		}

		if ret == nil {
			ret = relayconn.Relations{}
		}
		ret[name] = RelationsFromFields(sub)
	}

	return ret
}
