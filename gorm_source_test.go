package relayconn

import (
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type tPost struct {
	ID        uint
	Title     string
	AuthorID  uint
	CreatedAt time.Time
}

func (tPost) TableName() string {
	return "posts"
}

var tPostTable = Table[tPost]{
	Name:       "Post",
	PrimaryKey: "id",
	Key:        func(p tPost) string { return strconv.FormatUint(uint64(p.ID), 10) },
}

var _sqlMockFnList = []func() (string, *gorm.DB, sqlmock.Sqlmock, error){
	newGORMMySQLMock,
	newGORMPostgresMock,
}

func newPostRows(createdAt time.Time, ids ...int) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "title", "author_id", "created_at"})
	for _, id := range ids {
		rows.AddRow(id, fmt.Sprintf("post %d", id), id%3, createdAt)
	}

	return rows
}

func Test_NewGormSource(t *testing.T) {
	_, db, _, err := newGORMMySQLMock()
	require.NoError(t, err)

	_, err = NewGormSource[tPost](nil, "id")
	assert.Error(t, err)

	_, err = NewGormSource[tPost](db, "id; --")
	assert.Error(t, err)

	src, err := NewGormSource[tPost](db, "id")
	require.NoError(t, err)
	assert.Equal(t, Orderings{
		{Column: "created_at", Direction: DirectionDESC},
		{Column: "id", Direction: DirectionDESC},
	}, src.Orderings())
}

func Test_GormSource_WithOrderings(t *testing.T) {
	_, db, _, err := newGORMMySQLMock()
	require.NoError(t, err)

	src, err := NewGormSource[tPost](db, "id")
	require.NoError(t, err)

	_, err = src.WithOrderings(Orderings{{Column: "title", Direction: "sideways"}})
	assert.Error(t, err)

	ordered, err := src.WithOrderings(Orderings{{Column: "title", Direction: DirectionASC}})
	require.NoError(t, err)
	assert.Equal(t, Orderings{
		{Column: "title", Direction: DirectionASC},
		{Column: "id", Direction: DirectionASC},
	}, ordered.Orderings())

	assert.Len(t, src.Orderings(), 2, "receiver must be left unchanged")
	assert.Equal(t, "created_at", src.Orderings()[0].Column)
}

func Test_GormSource_Count(t *testing.T) {
	for _, sqlMockFn := range _sqlMockFnList {
		dialect, db, dbMock, err := sqlMockFn()
		t.Run(dialect, func(t *testing.T) {
			require.NoError(t, err)

			dbMock.ExpectQuery("^SELECT count\\(\\*\\) FROM [`\"]posts[`\"]$").
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(20))

			src, err := NewGormSource[tPost](db, "id")
			require.NoError(t, err)

			count, err := src.Count(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 20, count)

			assert.NoError(t, dbMock.ExpectationsWereMet())
		})
	}
}

func Test_GormSource_Slice(t *testing.T) {
	createdAt := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name          string
		start, end    int
		expectedQuery string
		rows          []int
	}{
		{
			name:          "from start",
			start:         0,
			end:           2,
			expectedQuery: "^SELECT \\* FROM [`\"]posts[`\"] ORDER BY created_at DESC, id DESC LIMIT 3$",
			rows:          []int{20, 19, 18},
		},
		{
			name:          "with offset",
			start:         5,
			end:           6,
			expectedQuery: "^SELECT \\* FROM [`\"]posts[`\"] ORDER BY created_at DESC, id DESC LIMIT 2 OFFSET 5$",
			rows:          []int{15, 14},
		},
	}

	for _, sqlMockFn := range _sqlMockFnList {
		for _, tt := range tests {
			dialect, db, dbMock, err := sqlMockFn()
			t.Run(fmt.Sprintf("%s %s", dialect, tt.name), func(t *testing.T) {
				require.NoError(t, err)

				dbMock.ExpectQuery(tt.expectedQuery).WillReturnRows(newPostRows(createdAt, tt.rows...))

				src, err := NewGormSource[tPost](db, "id")
				require.NoError(t, err)

				posts, err := src.Slice(context.Background(), tt.start, tt.end)
				require.NoError(t, err)
				require.Len(t, posts, len(tt.rows))
				for i, id := range tt.rows {
					assert.Equal(t, uint(id), posts[i].ID)
				}

				assert.NoError(t, dbMock.ExpectationsWereMet())
			})
		}
	}
}

func Test_GormSource_Slice_EmptyWindow(t *testing.T) {
	_, db, dbMock, err := newGORMMySQLMock()
	require.NoError(t, err)

	src, err := NewGormSource[tPost](db, "id")
	require.NoError(t, err)

	posts, err := src.Slice(context.Background(), 7, 6)
	require.NoError(t, err)
	assert.Empty(t, posts)

	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func Test_GormSource_Locate(t *testing.T) {
	createdAt := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	for _, sqlMockFn := range _sqlMockFnList {
		dialect, db, dbMock, err := sqlMockFn()
		t.Run(dialect, func(t *testing.T) {
			require.NoError(t, err)

			dbMock.ExpectQuery("^SELECT [`\"]created_at[`\"],[`\"]id[`\"] FROM [`\"]posts[`\"] WHERE id = (\\?|\\$1) LIMIT 1$").
				WithArgs("7").
				WillReturnRows(sqlmock.NewRows([]string{"created_at", "id"}).AddRow(createdAt, 7))
			dbMock.ExpectQuery("^SELECT count\\(\\*\\) FROM [`\"]posts[`\"] WHERE \\(created_at > (\\?|\\$1) OR \\(created_at = (\\?|\\$2) AND id > (\\?|\\$3)\\)\\)$").
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

			src, err := NewGormSource[tPost](db, "id")
			require.NoError(t, err)

			offset, found, err := src.Locate(context.Background(), "7")
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, 3, offset)

			assert.NoError(t, dbMock.ExpectationsWereMet())
		})
	}
}

func Test_GormSource_Locate_Missing(t *testing.T) {
	for _, sqlMockFn := range _sqlMockFnList {
		dialect, db, dbMock, err := sqlMockFn()
		t.Run(dialect, func(t *testing.T) {
			require.NoError(t, err)

			dbMock.ExpectQuery("^SELECT .+ FROM [`\"]posts[`\"] WHERE id = (\\?|\\$1) LIMIT 1$").
				WithArgs("404").
				WillReturnRows(sqlmock.NewRows([]string{"created_at", "id"}))

			src, err := NewGormSource[tPost](db, "id")
			require.NoError(t, err)

			_, found, err := src.Locate(context.Background(), "404")
			require.NoError(t, err)
			assert.False(t, found)

			assert.NoError(t, dbMock.ExpectationsWereMet())
		})
	}
}

func Test_GormSource_Find(t *testing.T) {
	createdAt := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	for _, sqlMockFn := range _sqlMockFnList {
		dialect, db, dbMock, err := sqlMockFn()
		t.Run(dialect, func(t *testing.T) {
			require.NoError(t, err)

			dbMock.ExpectQuery("^SELECT \\* FROM [`\"]posts[`\"] WHERE id = (\\?|\\$1) LIMIT 1$").
				WithArgs("7").
				WillReturnRows(newPostRows(createdAt, 7))
			dbMock.ExpectQuery("^SELECT \\* FROM [`\"]posts[`\"] WHERE id = (\\?|\\$1) LIMIT 1$").
				WithArgs("404").
				WillReturnRows(newPostRows(createdAt))

			src, err := NewGormSource[tPost](db, "id")
			require.NoError(t, err)

			post, found, err := src.Find(context.Background(), "7")
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, tPost{ID: 7, Title: "post 7", AuthorID: 1, CreatedAt: createdAt}, post)

			_, found, err = src.Find(context.Background(), "404")
			require.NoError(t, err)
			assert.False(t, found)

			assert.NoError(t, dbMock.ExpectationsWereMet())
		})
	}
}

func Test_GormSource_Filter(t *testing.T) {
	for _, sqlMockFn := range _sqlMockFnList {
		dialect, db, dbMock, err := sqlMockFn()
		t.Run(dialect, func(t *testing.T) {
			require.NoError(t, err)

			dbMock.ExpectQuery("^SELECT count\\(\\*\\) FROM [`\"]posts[`\"] WHERE [`\"]author_id[`\"] = (\\?|\\$1)$").
				WithArgs(2).
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
			dbMock.ExpectQuery("^SELECT count\\(\\*\\) FROM [`\"]posts[`\"]$").
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

			src, err := NewGormSource[tPost](db, "id")
			require.NoError(t, err)

			count, err := src.Filter(Filters{"authorId": 2}).Count(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 4, count)

			count, err = src.Count(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 12, count, "receiver must be left unchanged")

			assert.NoError(t, dbMock.ExpectationsWereMet())
		})
	}
}

func Test_GormSource_Filter_ForbiddenColumn(t *testing.T) {
	_, db, dbMock, err := newGORMMySQLMock()
	require.NoError(t, err)

	src, err := NewGormSource[tPost](db, "id")
	require.NoError(t, err)

	filtered := src.Filter(Filters{"author = 1 or 1": 1})

	_, err = filtered.Count(context.Background())
	assert.Error(t, err)

	_, err = filtered.Slice(context.Background(), 0, 1)
	assert.Error(t, err)

	_, _, err = filtered.Locate(context.Background(), "1")
	assert.Error(t, err)

	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func Test_GormSource_WithRelations(t *testing.T) {
	_, db, _, err := newGORMMySQLMock()
	require.NoError(t, err)

	src, err := NewGormSource[tPost](db, "id")
	require.NoError(t, err)

	relations := Relations{
		"author":   {"profileImage": nil},
		"comments": nil,
	}

	tests := []struct {
		name        string
		preloadable []string
		want        []string
	}{
		{"nothing allowed", nil, nil},
		{"parent only", []string{"author"}, []string{"Author"}},
		{"nested", []string{"author", "author.profileImage", "comments"}, []string{"Author", "Author.ProfileImage", "Comments"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := src.WithPreloadable(tt.preloadable...).WithRelations(relations).(*GormSource[tPost])
			if len(tt.want) == 0 {
				assert.Empty(t, got.preloads)
				return
			}

			assert.Equal(t, tt.want, got.preloads)
		})
	}
}

func Test_associationPath(t *testing.T) {
	assert.Equal(t, "Author", associationPath("author"))
	assert.Equal(t, "Author.ProfileImage", associationPath("author.profileImage"))
}

func Test_Resolver_Resolve_GormSource(t *testing.T) {
	createdAt := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	for _, sqlMockFn := range _sqlMockFnList {
		dialect, db, dbMock, err := sqlMockFn()
		t.Run(dialect, func(t *testing.T) {
			require.NoError(t, err)

			dbMock.ExpectQuery("^SELECT .+ FROM [`\"]posts[`\"] WHERE [`\"]author_id[`\"] = (\\?|\\$1) AND id = (\\?|\\$2) LIMIT 1$").
				WillReturnRows(sqlmock.NewRows([]string{"created_at", "id"}).AddRow(createdAt, 10))
			dbMock.ExpectQuery("^SELECT count\\(\\*\\) FROM [`\"]posts[`\"] WHERE [`\"]author_id[`\"] = (\\?|\\$1) AND .+$").
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
			dbMock.ExpectQuery("^SELECT count\\(\\*\\) FROM [`\"]posts[`\"] WHERE [`\"]author_id[`\"] = (\\?|\\$1)$").
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(9))
			dbMock.ExpectQuery("^SELECT \\* FROM [`\"]posts[`\"] WHERE [`\"]author_id[`\"] = (\\?|\\$1) ORDER BY created_at DESC, id DESC LIMIT 2 OFFSET 4$").
				WillReturnRows(newPostRows(createdAt, 7, 4))

			src, err := NewGormSource[tPost](db, "id")
			require.NoError(t, err)

			r, err := NewResolver(tPostTable, Source[tPost](src))
			require.NoError(t, err)

			conn, err := r.Resolve(context.Background(), Request{
				Args:    NewArgs().WithFirst(2).WithAfter(EncodeCursor("Post", "10")),
				Filters: Filters{"authorId": 1},
			})
			require.NoError(t, err)

			require.Len(t, conn.Edges, 2)
			assert.Equal(t, EncodeCursor("Post", "7"), conn.Edges[0].Cursor)
			assert.Equal(t, EncodeCursor("Post", "4"), conn.Edges[1].Cursor)
			assert.True(t, conn.PageInfo.HasNextPage)
			assert.False(t, conn.PageInfo.HasPreviousPage)

			assert.NoError(t, dbMock.ExpectationsWereMet())
		})
	}
}

type tScored struct {
	ID    uint
	Name  string
	Score *int
	Tier  *int `gorm:"not null"`
}

func (tScored) TableName() string {
	return "scores"
}

func Test_nullableColumns(t *testing.T) {
	_, db, _, err := newGORMMySQLMock()
	require.NoError(t, err)

	assert.Equal(t, map[string]bool{
		"id":    false,
		"name":  false,
		"score": true,
		"tier":  false,
	}, nullableColumns(db, new(tScored)))
}

func Test_GormSource_Locate_NullableColumn(t *testing.T) {
	tests := []struct {
		newMock   func() (string, *gorm.DB, sqlmock.Sqlmock, error)
		wantCount string
	}{
		{
			newMock:   newGORMMySQLMock,
			wantCount: "^SELECT count\\(\\*\\) FROM `scores` WHERE \\(score < \\? OR score IS NULL OR \\(score = \\? AND id < \\?\\)\\)$",
		},
		{
			newMock:   newGORMPostgresMock,
			wantCount: "^SELECT count\\(\\*\\) FROM \"scores\" WHERE \\(score < \\$1 OR \\(score = \\$2 AND id < \\$3\\)\\)$",
		},
	}
	for _, tt := range tests {
		dialect, db, dbMock, err := tt.newMock()
		t.Run(dialect, func(t *testing.T) {
			require.NoError(t, err)

			dbMock.ExpectQuery("^SELECT [`\"]score[`\"],[`\"]id[`\"] FROM [`\"]scores[`\"] WHERE id = (\\?|\\$1) LIMIT 1$").
				WithArgs("7").
				WillReturnRows(sqlmock.NewRows([]string{"score", "id"}).AddRow(2, 7))
			dbMock.ExpectQuery(tt.wantCount).
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

			src, err := NewGormSource[tScored](db, "id")
			require.NoError(t, err)

			src, err = src.WithOrderings(Orderings{{Column: "score", Direction: DirectionASC}})
			require.NoError(t, err)

			offset, found, err := src.Locate(context.Background(), "7")
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, 3, offset)

			assert.NoError(t, dbMock.ExpectationsWereMet())
		})
	}
}

func Test_GormSource_Locate_NullOrderingValues(t *testing.T) {
	db, err := newGORMSQLite(t.Name())
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tScored{}))

	tier := 1
	scores := []tScored{
		{ID: 1, Name: "one", Score: lo.ToPtr(1), Tier: &tier},
		{ID: 2, Name: "two", Tier: &tier},
		{ID: 3, Name: "three", Score: lo.ToPtr(2), Tier: &tier},
		{ID: 4, Name: "four", Tier: &tier},
	}
	require.NoError(t, db.Create(&scores).Error)

	base, err := NewGormSource[tScored](db, "id")
	require.NoError(t, err)

	key := func(s tScored) string { return strconv.FormatUint(uint64(s.ID), 10) }

	for _, direction := range []Direction{DirectionASC, DirectionDESC} {
		t.Run(string(direction), func(t *testing.T) {
			ctx := context.Background()

			src, err := base.WithOrderings(Orderings{{Column: "score", Direction: direction}})
			require.NoError(t, err)

			rows, err := src.Slice(ctx, 0, 3)
			require.NoError(t, err)
			require.Len(t, rows, 4)

			for i, row := range rows {
				offset, found, err := src.Locate(ctx, key(row))
				require.NoError(t, err)
				assert.True(t, found)
				assert.Equal(t, i, offset, "record %d", row.ID)
			}

			r, err := NewResolver(Table[tScored]{Name: "Score", PrimaryKey: "id", Key: key}, Source[tScored](src))
			require.NoError(t, err)

			var walked []string
			args := NewArgs().WithFirst(1)
			for {
				conn, err := r.Resolve(ctx, Request{Args: args})
				require.NoError(t, err)
				require.Len(t, conn.Edges, 1)

				walked = append(walked, key(conn.Edges[0].Node))
				if !conn.PageInfo.HasNextPage {
					break
				}

				args = NewArgs().WithFirst(1).WithAfter(*conn.PageInfo.EndCursor)
			}

			assert.Equal(t, lo.Map(rows, func(s tScored, _ int) string { return key(s) }), walked)
		})
	}
}
