// Package gql binds relayconn connections to a graphql-go schema.
package gql

import (
	"github.com/graphql-go/graphql"
)

// ConnectionArgs are the Relay arguments of every connection field.
var ConnectionArgs = graphql.FieldConfigArgument{
	"before": &graphql.ArgumentConfig{
		Type: graphql.String,
	},
	"after": &graphql.ArgumentConfig{
		Type: graphql.String,
	},
	"first": &graphql.ArgumentConfig{
		Type: graphql.Int,
	},
	"last": &graphql.ArgumentConfig{
		Type: graphql.Int,
	},
}

// NewConnectionArgs returns configMap merged with ConnectionArgs. configMap is
// not modified.
func NewConnectionArgs(configMap graphql.FieldConfigArgument) graphql.FieldConfigArgument {
	ret := make(graphql.FieldConfigArgument, len(configMap)+len(ConnectionArgs))
	for fieldName, argConfig := range configMap {
		ret[fieldName] = argConfig
	}

	for fieldName, argConfig := range ConnectionArgs {
		ret[fieldName] = argConfig
	}

	return ret
}

// PageInfoType is the page info type shared by all connections. It resolves
// relayconn.PageInfo values.
var PageInfoType = graphql.NewObject(graphql.ObjectConfig{
	Name:        "PageInfo",
	Description: "Information about pagination in a connection.",
	Fields: graphql.Fields{
		"hasNextPage": &graphql.Field{
			Type:        graphql.NewNonNull(graphql.Boolean),
			Description: "When paginating forwards, are there more items?",
		},
		"hasPreviousPage": &graphql.Field{
			Type:        graphql.NewNonNull(graphql.Boolean),
			Description: "When paginating backwards, are there more items?",
		},
		"startCursor": &graphql.Field{
			Type:        graphql.String,
			Description: "When paginating backwards, the cursor to continue.",
		},
		"endCursor": &graphql.Field{
			Type:        graphql.String,
			Description: "When paginating forwards, the cursor to continue.",
		},
	},
})

type ConnectionConfig struct {
	Name             string
	NodeType         graphql.Output
	EdgeFields       graphql.Fields
	ConnectionFields graphql.Fields
}

type GraphQLConnectionDefinitions struct {
	EdgeType       *graphql.Object
	ConnectionType *graphql.Object
}

// ConnectionDefinitions returns the "<Name>Edge" and "<Name>Connection"
// types whose nodes are of config.NodeType. They resolve
// relayconn.Connection values.
func ConnectionDefinitions(config ConnectionConfig) *GraphQLConnectionDefinitions {
	edgeType := graphql.NewObject(graphql.ObjectConfig{
		Name:        config.Name + "Edge",
		Description: "An edge in a connection.",
		Fields: graphql.Fields{
			"node": &graphql.Field{
				Type:        config.NodeType,
				Description: "The item at the end of the edge.",
			},
			"cursor": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.String),
				Description: "A cursor for use in pagination.",
			},
		},
	})
	for fieldName, fieldConfig := range config.EdgeFields {
		edgeType.AddFieldConfig(fieldName, fieldConfig)
	}

	connectionType := graphql.NewObject(graphql.ObjectConfig{
		Name:        config.Name + "Connection",
		Description: "A connection to a list of items.",
		Fields: graphql.Fields{
			"pageInfo": &graphql.Field{
				Type:        graphql.NewNonNull(PageInfoType),
				Description: "Information to aid in pagination.",
			},
			"edges": &graphql.Field{
				Type:        graphql.NewList(edgeType),
				Description: "A list of edges.",
			},
		},
	})
	for fieldName, fieldConfig := range config.ConnectionFields {
		connectionType.AddFieldConfig(fieldName, fieldConfig)
	}

	return &GraphQLConnectionDefinitions{
		EdgeType:       edgeType,
		ConnectionType: connectionType,
	}
}
