package schema

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/sirupsen/logrus"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/multierr"
)

// ValidatedScalar returns a scalar whose input values are validated against
// the JSON Schema of f. Invalid values are rejected by the executor.
func ValidatedScalar(name string, f *Field) (*graphql.Scalar, error) {
	if name == "" {
		return nil, fmt.Errorf("cannot create scalar: name is empty")
	}

	if f == nil {
		return nil, fmt.Errorf("cannot create scalar '%s': field is nil", name)
	}

	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(f.JSONSchema()))
	if err != nil {
		return nil, fmt.Errorf("cannot create scalar '%s': %w", name, err)
	}

	logger := logrus.WithField("scalar", name)
	validated := func(value any) any {
		if err := validate(compiled, value); err != nil {
			logger.WithError(err).Debug("rejected scalar value")
			return nil
		}

		return value
	}

	return graphql.NewScalar(graphql.ScalarConfig{
		Name:        name,
		Description: f.Description,
		Serialize: func(value any) any {
			return value
		},
		ParseValue: validated,
		ParseLiteral: func(valueAST ast.Value) any {
			value, ok := literalValue(valueAST)
			if !ok {
				return nil
			}

			return validated(value)
		},
	}), nil
}

// Validate checks value against the JSON Schema of f.
func (f *Field) Validate(value any) error {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(f.JSONSchema()))
	if err != nil {
		return err
	}

	return validate(compiled, value)
}

func validate(compiled *gojsonschema.Schema, value any) error {
	res, err := compiled.Validate(gojsonschema.NewGoLoader(value))
	if err != nil {
		return err
	}

	var errs error
	for _, e := range res.Errors() {
		errs = multierr.Append(errs, errors.New(e.String()))
	}

	return errs
}

func literalValue(valueAST ast.Value) (any, bool) {
	switch v := valueAST.(type) {
	case *ast.StringValue:
		return v.Value, true
	case *ast.EnumValue:
		return v.Value, true
	case *ast.BooleanValue:
		return v.Value, true
	case *ast.IntValue:
		n, err := strconv.ParseInt(v.Value, 10, 64)
		if err != nil {
			return nil, false
		}
		return int(n), true
	case *ast.FloatValue:
		n, err := strconv.ParseFloat(v.Value, 64)
		if err != nil {
			return nil, false
		}
		return n, true
	default:
		return nil, false
	}
}
