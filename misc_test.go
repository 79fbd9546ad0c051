package relayconn

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/samber/lo"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newGORMMySQLMock() (string, *gorm.DB, sqlmock.Sqlmock, error) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		return "", nil, nil, err
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      mockDB,
		SkipInitializeWithVersion: true,
	})

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return "", nil, nil, err
	}

	return "mysql", db.Debug(), mock, nil
}

func newGORMPostgresMock() (string, *gorm.DB, sqlmock.Sqlmock, error) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		return "", nil, nil, err
	}

	dialector := postgres.New(postgres.Config{
		Conn: mockDB,
	})

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return "", nil, nil, err
	}

	return "postgres", db.Debug(), mock, nil
}

// newGORMSQLite opens a private in-memory sqlite database named after the
// test.
func newGORMSQLite(name string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(name, "/", "_"))

	return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
}

type tRecord struct {
	ID       int    `json:"id"`
	AuthorID int    `json:"authorId"`
	Title    string `json:"title"`
}

var tRecordTable = Table[tRecord]{
	Name:       "Record",
	PrimaryKey: "id",
	Key:        func(r tRecord) string { return strconv.Itoa(r.ID) },
}

// newRecords returns n records whose ids equal their offsets.
func newRecords(n int) []tRecord {
	ret := make([]tRecord, 0, n)
	for i := 0; i < n; i++ {
		ret = append(ret, tRecord{ID: i, AuthorID: i % 3, Title: fmt.Sprintf("record %d", i)})
	}

	return ret
}

func newRecordSource(n int) *MemorySource[tRecord] {
	return NewMemorySource(newRecords(n), tRecordTable.Key)
}

func recordCursor(id int) string {
	return EncodeCursor(tRecordTable.Name, strconv.Itoa(id))
}

func recordIDs(conn *Connection[tRecord]) []int {
	return lo.Map(conn.Nodes(), func(r tRecord, _ int) int { return r.ID })
}
