package main

import (
	"strconv"
	"time"

	"github.com/Alp4ka/relayconn"
	"github.com/Alp4ka/relayconn/schema"
	"github.com/graphql-go/graphql"
)

type Author struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	Status    string    `gorm:"not null;default:draft" json:"status"`
	Views     int       `json:"views"`
	AuthorID  uint      `gorm:"index" json:"authorId"`
	Author    *Author   `json:"author"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

var postTable = relayconn.Table[Post]{
	Name:       "Post",
	PrimaryKey: "id",
	Key:        func(p Post) string { return strconv.FormatUint(uint64(p.ID), 10) },
}

var (
	_postTitle    = schema.Prop("title", schema.String().Required().Describe("Title of the post."))
	_postStatus   = schema.Prop("status", schema.String().Enum("draft", "published").Required())
	_postViews    = schema.Prop("views", schema.Integer().Min(0))
	_postAuthorID = schema.Prop("authorId", schema.Integer())
)

// postProperties describe the GraphQL fields of a post, id excluded.
var postProperties = []schema.Property{
	_postTitle,
	_postStatus,
	_postViews,
	_postAuthorID,
	schema.Prop("author", schema.Object("Author",
		schema.Prop("name", schema.String().Required()),
	)),
	schema.Prop("createdAt", schema.String().GraphQL(graphql.DateTime)),
}

var postFilterProperties = []schema.Property{
	_postTitle,
	_postStatus,
	_postAuthorID,
}

// postColumns maps orderBy aliases to columns.
var postColumns = relayconn.ColumnMapping{
	"id":        "id",
	"title":     "title",
	"views":     "views",
	"createdAt": "created_at",
}
