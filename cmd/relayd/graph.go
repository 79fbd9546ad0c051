package main

import (
	"context"
	"fmt"

	"github.com/Alp4ka/relayconn"
	"github.com/Alp4ka/relayconn/gql"
	"github.com/Alp4ka/relayconn/schema"
	"github.com/graphql-go/graphql"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// buildSchema returns the schema serving the posts connection and the node
// field.
func buildSchema(db *gorm.DB, opts []relayconn.Option, logger logrus.FieldLogger) (graphql.Schema, error) {
	registry := gql.NewNodeRegistry(logger)

	fields, err := schema.ToGraphQLFields(postProperties)
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("cannot map post fields: %w", err)
	}
	fields["id"] = gql.IDField(postTable)

	postType := graphql.NewObject(graphql.ObjectConfig{
		Name:       postTable.Name,
		Interfaces: []*graphql.Interface{registry.Interface()},
		Fields:     fields,
	})

	src, err := relayconn.NewGormSource[Post](db, postTable.PrimaryKey)
	if err != nil {
		return graphql.Schema{}, err
	}
	src = src.WithPreloadable("author")

	withAuthor, _ := src.WithRelations(relayconn.Relations{"author": nil}).(*relayconn.GormSource[Post])
	gql.Register(registry, postTable, postType, func(ctx context.Context, key string) (Post, bool, error) {
		return withAuthor.Find(ctx, key)
	})

	posts, err := gql.ConnectionField(gql.FieldConfig[Post]{
		Description:  "Posts, newest first unless orderBy is supplied.",
		Table:        postTable,
		Source:       src,
		NodeType:     postType,
		Options:      opts,
		FilterFields: schema.ToInputFields(postFilterProperties),
		Args: graphql.FieldConfigArgument{
			"orderBy": &graphql.ArgumentConfig{
				Type:        graphql.NewList(graphql.NewNonNull(graphql.String)),
				Description: `Orderings such as "views desc". The id breaks ties.`,
			},
		},
		Scope: orderBy,
	})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("cannot build posts field: %w", err)
	}

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name: "Query",
			Fields: graphql.Fields{
				"posts": posts,
				"node":  registry.Field(),
			},
		}),
		Types: registry.Types(),
	})
}

// orderBy applies the orderBy argument to gorm sources.
func orderBy(p graphql.ResolveParams, src relayconn.Source[Post]) (relayconn.Source[Post], error) {
	raw, _ := p.Args["orderBy"].([]any)
	if len(raw) == 0 {
		return src, nil
	}

	gs, ok := src.(*relayconn.GormSource[Post])
	if !ok {
		return src, nil
	}

	orderings, err := relayconn.ParseSort(lo.Map(raw, func(v any, _ int) string {
		return fmt.Sprint(v)
	}), postColumns)
	if err != nil {
		return nil, err
	}

	ordered, err := gs.WithOrderings(orderings)
	if err != nil {
		return nil, err
	}

	return ordered, nil
}
