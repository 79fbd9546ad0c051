package schema

import (
	"slices"

	"github.com/graphql-go/graphql"
	"github.com/samber/lo"
)

// Property is a named field of an object.
type Property struct {
	Key   string
	Field *Field
}

// Field describes one value of a record. Builders return copies, so a field
// may be shared and refined.
type Field struct {
	Kind        Kind
	Description string
	// UnitName names object and enum types when no key is available, e.g.
	// for array items.
	UnitName   string
	EnumValues []string
	Pattern    string
	Minimum    *float64
	Maximum    *float64
	Properties []Property
	Items      []*Field
	IsRequired bool
	// Override replaces the derived GraphQL type.
	Override graphql.Output
}

func String() *Field {
	return &Field{Kind: KindString}
}

func Integer() *Field {
	return &Field{Kind: KindInteger}
}

func Number() *Field {
	return &Field{Kind: KindNumber}
}

func Boolean() *Field {
	return &Field{Kind: KindBoolean}
}

// Object returns an object field. name is used as its unit name.
func Object(name string, props ...Property) *Field {
	return &Field{Kind: KindObject, UnitName: name, Properties: slices.Clone(props)}
}

// Array returns an array field. Exactly one item type is expected by the
// GraphQL mapping; others are kept so that the mapping can report them.
func Array(items ...*Field) *Field {
	return &Field{Kind: KindArray, Items: slices.Clone(items)}
}

// Prop pairs a key with a field.
func Prop(key string, f *Field) Property {
	return Property{Key: key, Field: f}
}

func (f *Field) clone() *Field {
	ret := *f
	ret.EnumValues = slices.Clone(f.EnumValues)
	ret.Properties = slices.Clone(f.Properties)
	ret.Items = slices.Clone(f.Items)

	return &ret
}

func (f *Field) Required() *Field {
	ret := f.clone()
	ret.IsRequired = true

	return ret
}

func (f *Field) Describe(description string) *Field {
	ret := f.clone()
	ret.Description = description

	return ret
}

// Enum restricts the field to values.
func (f *Field) Enum(values ...string) *Field {
	ret := f.clone()
	ret.EnumValues = lo.Uniq(values)

	return ret
}

func (f *Field) Unit(name string) *Field {
	ret := f.clone()
	ret.UnitName = name

	return ret
}

// Match restricts string values to the regular expression pattern.
func (f *Field) Match(pattern string) *Field {
	ret := f.clone()
	ret.Pattern = pattern

	return ret
}

func (f *Field) Min(v float64) *Field {
	ret := f.clone()
	ret.Minimum = &v

	return ret
}

func (f *Field) Max(v float64) *Field {
	ret := f.clone()
	ret.Maximum = &v

	return ret
}

// GraphQL makes the mapping return t as is.
func (f *Field) GraphQL(t graphql.Output) *Field {
	ret := f.clone()
	ret.Override = t

	return ret
}
