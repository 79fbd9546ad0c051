package gql

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/Alp4ka/relayconn"
	"github.com/graphql-go/graphql"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

type nodeFetcher func(ctx context.Context, key string) (any, bool, error)

type nodeType struct {
	object *graphql.Object
	goType reflect.Type
	fetch  nodeFetcher
}

// NodeRegistry maps type names to node types and fetchers. It backs the
// Node interface and the node(id) root field.
type NodeRegistry struct {
	mu       sync.RWMutex
	byName   map[string]nodeType
	byGoType map[reflect.Type]*graphql.Object
	iface    *graphql.Interface
	logger   logrus.FieldLogger
}

// NewNodeRegistry returns an empty registry. A nil logger means the standard
// logrus logger.
func NewNodeRegistry(logger logrus.FieldLogger) *NodeRegistry {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	r := &NodeRegistry{
		byName:   map[string]nodeType{},
		byGoType: map[reflect.Type]*graphql.Object{},
		logger:   logger,
	}

	r.iface = graphql.NewInterface(graphql.InterfaceConfig{
		Name:        "Node",
		Description: "An object with a global id.",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.ID),
				Description: "The id of the object.",
			},
		},
		ResolveType: func(p graphql.ResolveTypeParams) *graphql.Object {
			return r.ResolveType(p.Value)
		},
	})

	return r
}

// Register adds the node type of table. fetch returns false when no record
// has the key. Only the first registration of a type name is kept.
func Register[T any](r *NodeRegistry, table relayconn.Table[T], object *graphql.Object, fetch func(ctx context.Context, key string) (T, bool, error)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[table.Name]; ok {
		r.logger.WithField("type", table.Name).Warn("node type is already registered")
		return false
	}

	goType := derefType(reflect.TypeFor[T]())

	r.byName[table.Name] = nodeType{
		object: object,
		goType: goType,
		fetch: func(ctx context.Context, key string) (any, bool, error) {
			return fetch(ctx, key)
		},
	}
	if _, ok := r.byGoType[goType]; !ok {
		r.byGoType[goType] = object
	}

	return true
}

// Interface returns the Node interface. Registered objects must list it.
func (r *NodeRegistry) Interface() *graphql.Interface {
	return r.iface
}

// Types returns the registered objects sorted by name, to be listed in
// graphql.SchemaConfig.Types.
func (r *NodeRegistry) Types() []graphql.Type {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := lo.Keys(r.byName)
	slices.Sort(names)

	return lo.Map(names, func(name string, _ int) graphql.Type {
		return r.byName[name].object
	})
}

// Field returns the "node(id: ID!): Node" root field.
func (r *NodeRegistry) Field() *graphql.Field {
	return &graphql.Field{
		Type:        r.iface,
		Description: "Fetches an object given its id.",
		Args: graphql.FieldConfigArgument{
			"id": &graphql.ArgumentConfig{
				Type:        graphql.NewNonNull(graphql.ID),
				Description: "The id of an object.",
			},
		},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			id, _ := p.Args["id"].(string)
			return r.ResolveNode(p.Context, id)
		},
	}
}

// ResolveNode fetches the record addressed by globalID. Unknown types and
// missing records resolve to nil.
func (r *NodeRegistry) ResolveNode(ctx context.Context, globalID string) (any, error) {
	typeName, key, err := relayconn.FromGlobalID(globalID)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	nt, ok := r.byName[typeName]
	r.mu.RUnlock()

	if !ok {
		r.logger.WithField("type", typeName).Debug("node type is not registered")
		return nil, nil
	}

	node, found, err := nt.fetch(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("cannot fetch node '%s': %w", typeName, err)
	}

	if !found {
		return nil, nil
	}

	return node, nil
}

// ResolveType returns the object registered for the Go type of value.
func (r *NodeRegistry) ResolveType(value any) *graphql.Object {
	if value == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.byGoType[derefType(reflect.TypeOf(value))]
}

// IDField returns the "id: ID!" field of table, resolving to the global id of
// T and *T sources.
func IDField[T any](table relayconn.Table[T]) *graphql.Field {
	return &graphql.Field{
		Type:        graphql.NewNonNull(graphql.ID),
		Description: "The id of the object.",
		Resolve: func(p graphql.ResolveParams) (any, error) {
			switch v := p.Source.(type) {
			case T:
				return relayconn.ToGlobalID(table.Name, table.Key(v)), nil
			case *T:
				if v != nil {
					return relayconn.ToGlobalID(table.Name, table.Key(*v)), nil
				}
			}

			return nil, fmt.Errorf("cannot resolve id of '%s': unexpected source %T", table.Name, p.Source)
		},
	}
}

func derefType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return t
}
