package gql

import (
	"fmt"

	"github.com/Alp4ka/relayconn"
	"github.com/graphql-go/graphql"
)

// FiltersArg is the name of the argument carrying equality filters.
const FiltersArg = "filters"

// FieldConfig describes a connection field over records of type T.
type FieldConfig[T any] struct {
	// Name prefixes the generated types. Defaults to Table.Name.
	Name        string
	Description string
	Table       relayconn.Table[T]
	Source      relayconn.Source[T]
	NodeType    graphql.Output
	Options     []relayconn.Option
	// Connection reuses already built definitions, so that several fields may
	// return the same connection type.
	Connection *GraphQLConnectionDefinitions
	// FilterFields, when set, expose a "filters" argument of type
	// "<Name>FilterFields".
	FilterFields graphql.InputObjectConfigFieldMap
	// Args are extra arguments, merged with the connection arguments.
	Args graphql.FieldConfigArgument
	// Scope narrows the source per request, e.g. to the records of the parent
	// object.
	Scope func(p graphql.ResolveParams, src relayconn.Source[T]) (relayconn.Source[T], error)
}

// ConnectionField builds a field resolving relayconn connections.
func ConnectionField[T any](config FieldConfig[T]) (*graphql.Field, error) {
	resolver, err := relayconn.NewResolver(config.Table, config.Source, config.Options...)
	if err != nil {
		return nil, err
	}

	name := config.Name
	if name == "" {
		name = config.Table.Name
	}

	defs := config.Connection
	if defs == nil {
		if config.NodeType == nil {
			return nil, fmt.Errorf("cannot build connection field '%s': node type is nil", name)
		}

		defs = ConnectionDefinitions(ConnectionConfig{
			Name:     name,
			NodeType: config.NodeType,
		})
	}

	args := NewConnectionArgs(config.Args)
	if len(config.FilterFields) > 0 {
		args[FiltersArg] = &graphql.ArgumentConfig{
			Type: graphql.NewInputObject(graphql.InputObjectConfig{
				Name:   name + "FilterFields",
				Fields: config.FilterFields,
			}),
		}
	}

	return &graphql.Field{
		Type:        defs.ConnectionType,
		Args:        args,
		Description: config.Description,
		Resolve: func(p graphql.ResolveParams) (any, error) {
			connArgs, err := relayconn.ParseArgs(p.Args)
			if err != nil {
				return nil, err
			}

			src := config.Source
			if config.Scope != nil {
				if src, err = config.Scope(p, src); err != nil {
					return nil, err
				}
			}

			conn, err := resolver.ResolveSource(p.Context, src, relayconn.Request{
				Args:      connArgs,
				Filters:   filtersFromArgs(p.Args),
				Relations: RelationsFromFields(RequestedFields(p.Info).Get("edges", "node")),
			})
			if err != nil {
				return nil, err
			}

			return conn, nil
		},
	}, nil
}

func filtersFromArgs(args map[string]any) relayconn.Filters {
	raw, ok := args[FiltersArg].(map[string]any)
	if !ok {
		return nil
	}

	var ret relayconn.Filters
	for name, value := range raw {
		if value == nil {
			continue
		}

		if ret == nil {
			ret = relayconn.Filters{}
		}
		ret[name] = value
	}

	return ret
}
