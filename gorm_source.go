package relayconn

import (
	"context"
	"database/sql/driver"
	"fmt"
	"reflect"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// DefaultOrderings is the ordering of a GormSource unless WithOrderings
// replaces it: newest records first.
var DefaultOrderings = Orderings{{Column: "created_at", Direction: DirectionDESC}}

// GormSource is a Source over the table of model T.
//
// Records are ordered by the configured orderings followed by the primary
// key, so the order is total. Slice uses OFFSET/LIMIT; Locate counts the
// records placed before the keyed one with a keyset condition. NULL ordering
// values are placed the way the database sorts them: first in ascending order
// on MySQL and SQLite, last on PostgreSQL.
type GormSource[T any] struct {
	db          *gorm.DB
	primaryKey  string
	nullable    map[string]bool
	orderings   Orderings
	preloadable map[string]struct{}
	preloads    []string
	err         error
}

// NewGormSource creates a source over the table of T. primaryKey is the
// primary key column.
func NewGormSource[T any](db *gorm.DB, primaryKey string) (*GormSource[T], error) {
	if db == nil {
		return nil, fmt.Errorf("cannot create gorm source: db is nil")
	}

	if err := validateColumn(primaryKey); err != nil {
		return nil, fmt.Errorf("cannot create gorm source: %w", err)
	}

	return &GormSource[T]{
		db:         db.Model(new(T)).Session(&gorm.Session{}),
		primaryKey: primaryKey,
		nullable:   nullableColumns(db, new(T)),
		orderings:  DefaultOrderings.WithTiebreaker(primaryKey),
	}, nil
}

var _valuerType = reflect.TypeOf((*driver.Valuer)(nil)).Elem()

// nullableColumns maps the columns of model to whether they may hold NULL.
// Pointer and driver.Valuer fields may, unless tagged not null or part of the
// primary key.
func nullableColumns(db *gorm.DB, model any) map[string]bool {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return nil
	}

	ret := make(map[string]bool, len(stmt.Schema.DBNames))
	for _, name := range stmt.Schema.DBNames {
		field := stmt.Schema.FieldsByDBName[name]
		ret[name] = !field.PrimaryKey && !field.NotNull &&
			(field.FieldType.Kind() == reflect.Pointer || field.FieldType.Implements(_valuerType))
	}

	return ret
}

// isNullable reports whether column may hold NULL. Columns outside the model,
// such as joined ones, may.
func (s *GormSource[T]) isNullable(column string) bool {
	if column == s.primaryKey {
		return false
	}

	nullable, ok := s.nullable[column]
	return !ok || nullable
}

// nullsLow reports whether the database sorts NULL below every non-null
// value.
func (s *GormSource[T]) nullsLow() bool {
	return s.db.Dialector.Name() != "postgres"
}

// WithOrderings returns a copy ordered by orderings. The primary key is
// appended when missing.
func (s *GormSource[T]) WithOrderings(orderings Orderings) (*GormSource[T], error) {
	if err := orderings.validate(); err != nil {
		return nil, fmt.Errorf("cannot set orderings: %w", err)
	}

	ret := s.clone()
	ret.orderings = orderings.WithTiebreaker(s.primaryKey)

	return ret, nil
}

// WithPreloadable returns a copy allowed to preload the given relations.
// Names are GraphQL field paths such as "author" or "author.profile".
func (s *GormSource[T]) WithPreloadable(names ...string) *GormSource[T] {
	ret := s.clone()
	ret.preloadable = make(map[string]struct{}, len(s.preloadable)+len(names))
	for name := range s.preloadable {
		ret.preloadable[name] = struct{}{}
	}

	for _, name := range names {
		ret.preloadable[name] = struct{}{}
	}

	return ret
}

// Orderings returns the effective ordering, tie-breaker included.
func (s *GormSource[T]) Orderings() Orderings {
	return s.orderings
}

// Count implements Source.
func (s *GormSource[T]) Count(ctx context.Context) (int, error) {
	if s.err != nil {
		return 0, s.err
	}

	var count int64
	if err := s.db.WithContext(ctx).Count(&count).Error; err != nil {
		return 0, err
	}

	return int(count), nil
}

// Slice implements Source.
func (s *GormSource[T]) Slice(ctx context.Context, start, end int) ([]T, error) {
	if s.err != nil {
		return nil, s.err
	}

	w := NewWindow(max(start, 0), end)
	if w.IsEmpty() {
		return []T{}, nil
	}

	tx := s.orderings.Apply(s.db.WithContext(ctx))
	for _, preload := range s.preloads {
		tx = tx.Preload(preload)
	}

	rows := make([]T, 0, w.Len())
	if err := w.Apply(tx).Find(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}

// Locate implements Source. It reads the ordering values of the keyed record
// and counts the records placed before them.
func (s *GormSource[T]) Locate(ctx context.Context, key string) (int, bool, error) {
	if s.err != nil {
		return 0, false, s.err
	}

	values := make(map[string]any, len(s.orderings))
	res := s.db.WithContext(ctx).
		Select(s.orderings.Columns()).
		Where(fmt.Sprintf("%s = ?", s.primaryKey), key).
		Limit(1).
		Find(&values)
	if res.Error != nil {
		return 0, false, res.Error
	}

	if res.RowsAffected == 0 {
		return 0, false, nil
	}

	ks, err := newKeyset(s.orderings, values, s.isNullable, s.nullsLow())
	if err != nil {
		return 0, false, err
	}

	var offset int64
	if err = ks.Preceding(s.db.WithContext(ctx)).Count(&offset).Error; err != nil {
		return 0, false, err
	}

	return int(offset), true, nil
}

// Find returns the record with the given primary key, with the relations
// selected by WithRelations preloaded.
func (s *GormSource[T]) Find(ctx context.Context, key string) (T, bool, error) {
	var ret T
	if s.err != nil {
		return ret, false, s.err
	}

	tx := s.db.WithContext(ctx)
	for _, preload := range s.preloads {
		tx = tx.Preload(preload)
	}

	res := tx.Where(fmt.Sprintf("%s = ?", s.primaryKey), key).Limit(1).Find(&ret)
	if res.Error != nil {
		return ret, false, res.Error
	}

	return ret, res.RowsAffected > 0, nil
}

// Filter implements Source. Filter names are GraphQL field names and are
// mapped to snake_case columns.
func (s *GormSource[T]) Filter(filters Filters) Source[T] {
	ret := s.clone()
	if len(filters) == 0 {
		return ret
	}

	conditions := make(map[string]any, len(filters))
	for name, value := range filters {
		column := strcase.ToSnake(name)
		if err := validateColumn(column); err != nil {
			ret.err = fmt.Errorf("cannot filter by '%s': %w", name, err)
			return ret
		}

		conditions[column] = value
	}

	ret.db = s.db.Where(conditions).Session(&gorm.Session{})

	return ret
}

// WithRelations implements RelationSource. Relations outside the allow-list
// set by WithPreloadable are ignored.
func (s *GormSource[T]) WithRelations(relations Relations) Source[T] {
	ret := s.clone()
	ret.preloads = lo.FilterMap(relations.Paths(), func(path string, _ int) (string, bool) {
		_, ok := s.preloadable[path]
		return associationPath(path), ok
	})

	return ret
}

// WithSession implements SessionSource. fn runs against a view pinned to one
// pooled connection, which is returned to the pool when fn returns.
func (s *GormSource[T]) WithSession(ctx context.Context, fn func(Source[T]) error) error {
	if s.err != nil {
		return s.err
	}

	return s.db.WithContext(ctx).Connection(func(tx *gorm.DB) error {
		view := s.clone()
		view.db = tx.Session(&gorm.Session{})

		return fn(view)
	})
}

func (s *GormSource[T]) clone() *GormSource[T] {
	ret := *s
	return &ret
}

// associationPath maps a GraphQL field path to a gorm association path:
// "author.profileImage" becomes "Author.ProfileImage".
func associationPath(path string) string {
	return strings.Join(lo.Map(strings.Split(path, "."), func(segment string, _ int) string {
		return strcase.ToCamel(segment)
	}), ".")
}

var (
	_ Source[any]         = (*GormSource[any])(nil)
	_ RelationSource[any] = (*GormSource[any])(nil)
	_ SessionSource[any]  = (*GormSource[any])(nil)
)
