package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/samber/lo"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/multierr"
)

// JSONSchema returns f as a JSON Schema document. Required properties are
// listed by their parent; the GraphQL override is not represented.
func (f *Field) JSONSchema() map[string]any {
	ret := map[string]any{
		"type": f.Kind.String(),
	}

	if f.Description != "" {
		ret["description"] = f.Description
	}
	if f.UnitName != "" {
		ret["title"] = f.UnitName
	}
	if len(f.EnumValues) > 0 {
		ret["enum"] = slices.Clone(f.EnumValues)
	}
	if f.Pattern != "" {
		ret["pattern"] = f.Pattern
	}
	if f.Minimum != nil {
		ret["minimum"] = *f.Minimum
	}
	if f.Maximum != nil {
		ret["maximum"] = *f.Maximum
	}

	switch f.Kind {
	case KindObject:
		props := make(map[string]any, len(f.Properties))
		var required []string
		for _, p := range f.Properties {
			props[p.Key] = p.Field.JSONSchema()
			if p.Field.IsRequired {
				required = append(required, p.Key)
			}
		}

		ret["properties"] = props
		if len(required) > 0 {
			ret["required"] = required
		}
	case KindArray:
		switch len(f.Items) {
		case 0:
		case 1:
			ret["items"] = f.Items[0].JSONSchema()
		default:
			ret["items"] = lo.Map(f.Items, func(item *Field, _ int) any { return item.JSONSchema() })
		}
	}

	return ret
}

type jsonSchemaDocument struct {
	Type        string                         `json:"type"`
	Title       string                         `json:"title"`
	Description string                         `json:"description"`
	Enum        []any                          `json:"enum"`
	Pattern     string                         `json:"pattern"`
	Minimum     *float64                       `json:"minimum"`
	Maximum     *float64                       `json:"maximum"`
	Properties  map[string]*jsonSchemaDocument `json:"properties"`
	Required    []string                       `json:"required"`
	Items       json.RawMessage                `json:"items"`
}

// FromJSONSchema reads a JSON Schema document into a field. The document
// must be a valid schema; properties are sorted by key.
func FromJSONSchema(data []byte) (*Field, error) {
	if _, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data)); err != nil {
		return nil, fmt.Errorf("invalid json schema: %w", err)
	}

	var doc jsonSchemaDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("cannot decode json schema: %w", err)
	}

	return doc.toField()
}

func (d *jsonSchemaDocument) toField() (*Field, error) {
	kind, err := ParseKind(d.Type)
	if err != nil {
		return nil, err
	}

	ret := &Field{
		Kind:        kind,
		Description: d.Description,
		UnitName:    d.Title,
		Pattern:     d.Pattern,
		Minimum:     d.Minimum,
		Maximum:     d.Maximum,
	}

	var errs error
	for _, v := range d.Enum {
		s, ok := v.(string)
		if !ok {
			errs = multierr.Append(errs, fmt.Errorf("enum value %v is not a string", v))
			continue
		}
		ret.EnumValues = append(ret.EnumValues, s)
	}

	keys := lo.Keys(d.Properties)
	slices.Sort(keys)
	for _, key := range keys {
		f, err := d.Properties[key].toField()
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("property '%s': %w", key, err))
			continue
		}

		f.IsRequired = slices.Contains(d.Required, key)
		ret.Properties = append(ret.Properties, Prop(key, f))
	}

	items, err := d.items()
	if err != nil {
		errs = multierr.Append(errs, err)
	}
	for i, item := range items {
		f, err := item.toField()
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("item %d: %w", i, err))
			continue
		}
		ret.Items = append(ret.Items, f)
	}

	if errs != nil {
		return nil, errs
	}

	return ret, nil
}

// items reads "items" as a single schema or a list of schemas.
func (d *jsonSchemaDocument) items() ([]*jsonSchemaDocument, error) {
	raw := bytes.TrimSpace(d.Items)
	if len(raw) == 0 {
		return nil, nil
	}

	if raw[0] == '[' {
		var ret []*jsonSchemaDocument
		if err := json.Unmarshal(raw, &ret); err != nil {
			return nil, fmt.Errorf("cannot decode items: %w", err)
		}

		return ret, nil
	}

	var item jsonSchemaDocument
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, fmt.Errorf("cannot decode items: %w", err)
	}

	return []*jsonSchemaDocument{&item}, nil
}
