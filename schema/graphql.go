package schema

import (
	"errors"
	"fmt"

	"github.com/graphql-go/graphql"
	"github.com/iancoleman/strcase"
	"go.uber.org/multierr"
)

// ErrUnnamedType is returned for objects and enums with neither a key nor a
// unit name.
var ErrUnnamedType = errors.New("type must be named by its key or unit")

// ToGraphQLField maps f to a GraphQL output type. key names generated object
// and enum types; the unit name is used when key is empty.
func ToGraphQLField(key string, f *Field) (graphql.Output, error) {
	if f == nil {
		return nil, fmt.Errorf("field is nil")
	}

	if f.Override != nil {
		return f.Override, nil
	}

	var ret graphql.Output
	switch f.Kind {
	case KindObject:
		name, err := typeName(key, f)
		if err != nil {
			return nil, err
		}

		fields, err := ToGraphQLFields(f.Properties)
		if err != nil {
			return nil, err
		}

		ret = graphql.NewObject(graphql.ObjectConfig{
			Name:        name,
			Description: f.Description,
			Fields:      fields,
		})
	case KindArray:
		if len(f.Items) != 1 {
			return nil, fmt.Errorf("array must have exactly one item type, got %d", len(f.Items))
		}

		item, err := ToGraphQLField("", f.Items[0])
		if err != nil {
			return nil, fmt.Errorf("array item: %w", err)
		}

		ret = graphql.NewList(item)
	case KindBoolean:
		ret = graphql.Boolean
	case KindInteger:
		ret = graphql.Int
	case KindNumber:
		ret = graphql.Float
	default:
		ret = graphql.String
	}

	if len(f.EnumValues) > 0 {
		name, err := typeName(key, f)
		if err != nil {
			return nil, err
		}

		values := make(graphql.EnumValueConfigMap, len(f.EnumValues))
		for _, v := range f.EnumValues {
			values[strcase.ToScreamingSnake(v)] = &graphql.EnumValueConfig{Value: v}
		}

		ret = graphql.NewEnum(graphql.EnumConfig{
			Name:        name,
			Description: f.Description,
			Values:      values,
		})
	}

	if f.IsRequired {
		ret = graphql.NewNonNull(ret)
	}

	return ret, nil
}

// ToGraphQLFields maps object properties to GraphQL fields. Every failing
// property is reported.
func ToGraphQLFields(props []Property) (graphql.Fields, error) {
	var errs error

	ret := make(graphql.Fields, len(props))
	for _, p := range props {
		if _, ok := ret[p.Key]; ok {
			errs = multierr.Append(errs, fmt.Errorf("field '%s': duplicate key", p.Key))
			continue
		}

		t, err := ToGraphQLField(p.Key, p.Field)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("field '%s': %w", p.Key, err))
			continue
		}

		ret[p.Key] = &graphql.Field{
			Type:        t,
			Description: p.Field.Description,
		}
	}

	if errs != nil {
		return nil, errs
	}

	return ret, nil
}

// ToInputFields maps the scalar properties to optional input fields, as used
// by filter arguments. Objects and arrays are skipped; enums become strings.
func ToInputFields(props []Property) graphql.InputObjectConfigFieldMap {
	ret := graphql.InputObjectConfigFieldMap{}
	for _, p := range props {
		if p.Field == nil {
			continue
		}

		var t graphql.Input
		switch p.Field.Kind {
		case KindObject, KindArray:
			continue
		case KindBoolean:
			t = graphql.Boolean
		case KindInteger:
			t = graphql.Int
		case KindNumber:
			t = graphql.Float
		default:
			t = graphql.String
		}

		ret[p.Key] = &graphql.InputObjectFieldConfig{
			Type:        t,
			Description: p.Field.Description,
		}
	}

	return ret
}

func typeName(key string, f *Field) (string, error) {
	name := key
	if name == "" {
		name = f.UnitName
	}

	if name == "" {
		return "", ErrUnnamedType
	}

	return strcase.ToCamel(name), nil
}
