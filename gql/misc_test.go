package gql

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"testing"

	"github.com/Alp4ka/relayconn"
	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/require"
)

type tAuthor struct {
	Name string `json:"name"`
}

type tPost struct {
	ID       int      `json:"id"`
	AuthorID int      `json:"authorId"`
	Title    string   `json:"title"`
	Author   *tAuthor `json:"author"`
}

var tPostTable = relayconn.Table[tPost]{
	Name:       "Post",
	PrimaryKey: "id",
	Key:        func(p tPost) string { return strconv.Itoa(p.ID) },
}

// newPosts returns posts 1..n, authored alternately by authors 1 and 2.
func newPosts(n int) []tPost {
	ret := make([]tPost, 0, n)
	for i := 1; i <= n; i++ {
		authorID := (i-1)%2 + 1
		ret = append(ret, tPost{
			ID:       i,
			AuthorID: authorID,
			Title:    fmt.Sprintf("post %d", i),
			Author:   &tAuthor{Name: fmt.Sprintf("author %d", authorID)},
		})
	}

	return ret
}

// tSpySource records the relations requested by the resolver.
type tSpySource struct {
	*relayconn.MemorySource[tPost]
	relations relayconn.Relations
}

func (s *tSpySource) WithRelations(relations relayconn.Relations) relayconn.Source[tPost] {
	s.relations = relations
	return s
}

type tFixture struct {
	schema   graphql.Schema
	registry *NodeRegistry
	postType *graphql.Object
	source   *tSpySource
}

func newFixture(t *testing.T) *tFixture {
	t.Helper()

	posts := newPosts(6)
	src := &tSpySource{MemorySource: relayconn.NewMemorySource(posts, tPostTable.Key)}
	registry := NewNodeRegistry(nil)

	authorType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Author",
		Fields: graphql.Fields{
			"name": &graphql.Field{Type: graphql.String},
		},
	})

	postType := graphql.NewObject(graphql.ObjectConfig{
		Name:       "Post",
		Interfaces: []*graphql.Interface{registry.Interface()},
		Fields: graphql.Fields{
			"id":       IDField(tPostTable),
			"title":    &graphql.Field{Type: graphql.String},
			"authorId": &graphql.Field{Type: graphql.Int},
			"author":   &graphql.Field{Type: authorType},
		},
	})

	require.True(t, Register(registry, tPostTable, postType, func(_ context.Context, key string) (tPost, bool, error) {
		id, err := strconv.Atoi(key)
		if err != nil {
			return tPost{}, false, err
		}

		for _, p := range posts {
			if p.ID == id {
				return p, true, nil
			}
		}

		return tPost{}, false, nil
	}))

	defs := ConnectionDefinitions(ConnectionConfig{Name: "Post", NodeType: postType})

	postsField, err := ConnectionField(FieldConfig[tPost]{
		Table:      tPostTable,
		Source:     src,
		Connection: defs,
		FilterFields: graphql.InputObjectConfigFieldMap{
			"authorId": &graphql.InputObjectFieldConfig{Type: graphql.Int},
		},
	})
	require.NoError(t, err)

	authorPostsField, err := ConnectionField(FieldConfig[tPost]{
		Table:      tPostTable,
		Source:     src,
		Connection: defs,
		Args: graphql.FieldConfigArgument{
			"authorId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
		},
		Scope: func(p graphql.ResolveParams, src relayconn.Source[tPost]) (relayconn.Source[tPost], error) {
			return src.Filter(relayconn.Filters{"authorId": p.Args["authorId"]}), nil
		},
	})
	require.NoError(t, err)

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name: "Query",
			Fields: graphql.Fields{
				"posts":       postsField,
				"authorPosts": authorPostsField,
				"node":        registry.Field(),
			},
		}),
		Types: registry.Types(),
	})
	require.NoError(t, err)

	return &tFixture{
		schema:   schema,
		registry: registry,
		postType: postType,
		source:   src,
	}
}

func (f *tFixture) do(query string) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:        f.schema,
		RequestString: query,
		Context:       context.Background(),
	})
}

// requireData fails on errors and compares the result data as JSON.
func requireData(t *testing.T, want string, res *graphql.Result) {
	t.Helper()

	require.Empty(t, res.Errors)

	got, err := json.Marshal(res.Data)
	require.NoError(t, err)
	require.JSONEq(t, want, string(got))
}

func postCursor(id int) string {
	return relayconn.EncodeCursor(tPostTable.Name, strconv.Itoa(id))
}

func postID(id int) string {
	return relayconn.ToGlobalID(tPostTable.Name, strconv.Itoa(id))
}
