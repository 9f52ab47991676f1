package configschema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/google/jsonschema-go/jsonschema"
	quantdeskcfg "github.com/quantdesk/quantdesk/pkg/config"
)

// BuildSchema returns a JSON Schema for the platform configuration, with
// defaults taken from DefaultConfig() and the per-market provider enums
// attached to the exchange routing fields. Editor tooling consumes it; the
// loader never does.
func BuildSchema() (*jsonschema.Schema, error) {
	return BuildSchemaWithDefaults(nil)
}

// BuildSchemaWithDefaults builds the schema and injects defaults.
// If defaults is nil, DefaultConfig() is used.
func BuildSchemaWithDefaults(defaults any) (*jsonschema.Schema, error) {
	opts := &jsonschema.ForOptions{
		IgnoreInvalidTypes: true,
	}

	schema, err := jsonschema.ForType(reflect.TypeOf(quantdeskcfg.Config{}), opts)
	if err != nil {
		return nil, fmt.Errorf("build schema: %w", err)
	}
	applyFieldNames(schema, reflect.TypeOf(quantdeskcfg.Config{}))

	if defaults == nil {
		defaults = quantdeskcfg.DefaultConfig()
	}
	injectDefaults(schema, reflect.ValueOf(defaults))
	pruneRequiredWithDefaults(schema)
	attachProviderEnums(schema)
	attachDatabaseTypeEnum(schema)

	schema.Title = "QuantDesk Configuration"
	schema.Description = "Schema for QuantDesk platform configuration."
	schema.Schema = "https://json-schema.org/draft/2020-12/schema"
	return schema, nil
}

// attachProviderEnums constrains each exchange routing field to the provider
// set of its market.
func attachProviderEnums(schema *jsonschema.Schema) {
	if schema == nil {
		return
	}
	exchanges, ok := schema.Properties["exchanges"]
	if !ok || len(exchanges.Properties) == 0 {
		return
	}
	for _, market := range quantdeskcfg.Markets() {
		prop, ok := exchanges.Properties[market]
		if !ok {
			continue
		}
		providers := quantdeskcfg.MarketProviders(market)
		prop.Enum = make([]any, len(providers))
		for i, provider := range providers {
			prop.Enum[i] = provider
		}
	}
}

func attachDatabaseTypeEnum(schema *jsonschema.Schema) {
	if schema == nil {
		return
	}
	database, ok := schema.Properties["database"]
	if !ok {
		return
	}
	if prop, ok := database.Properties["type"]; ok {
		prop.Enum = []any{quantdeskcfg.DatabaseTypeMySQL, quantdeskcfg.DatabaseTypeSQLite}
	}
}

func applyFieldNames(schema *jsonschema.Schema, t reflect.Type) {
	if schema == nil || t == nil {
		return
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Struct:
		if len(schema.Properties) == 0 {
			return
		}
		nameMap := make(map[string]string)
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			jsonName, omit := jsonFieldName(field)
			if omit {
				continue
			}
			desired := fieldKeyName(field)
			nameMap[jsonName] = desired
			if prop, ok := schema.Properties[jsonName]; ok {
				delete(schema.Properties, jsonName)
				schema.Properties[desired] = prop
				applyFieldNames(prop, field.Type)
			}
		}

		if len(schema.Required) > 0 {
			updated := make([]string, 0, len(schema.Required))
			for _, name := range schema.Required {
				if mapped, ok := nameMap[name]; ok {
					updated = append(updated, mapped)
				} else {
					updated = append(updated, name)
				}
			}
			schema.Required = dedupeStrings(updated)
		}

		if len(schema.PropertyOrder) > 0 {
			updated := make([]string, 0, len(schema.PropertyOrder))
			for _, name := range schema.PropertyOrder {
				if mapped, ok := nameMap[name]; ok {
					updated = append(updated, mapped)
				} else {
					updated = append(updated, name)
				}
			}
			schema.PropertyOrder = dedupeStrings(updated)
		}

	case reflect.Slice, reflect.Array:
		applyFieldNames(schema.Items, t.Elem())

	case reflect.Map:
		if schema.AdditionalProperties != nil {
			applyFieldNames(schema.AdditionalProperties, t.Elem())
		}
	}
}

func injectDefaults(schema *jsonschema.Schema, value reflect.Value) {
	if schema == nil || !value.IsValid() {
		return
	}
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return
		}
		value = value.Elem()
	}

	switch value.Kind() {
	case reflect.Struct:
		if len(schema.Properties) == 0 {
			return
		}
		t := value.Type()
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			name := fieldKeyName(field)
			if name == "" {
				continue
			}
			propSchema, ok := schema.Properties[name]
			if !ok {
				continue
			}

			fieldVal := value.Field(i)
			if propSchema.Default == nil {
				if raw, ok := marshalDefault(fieldVal); ok {
					propSchema.Default = raw
				}
			}

			injectDefaults(propSchema, fieldVal)
		}

	case reflect.Slice, reflect.Array, reflect.Map, reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		if schema.Default == nil {
			if raw, ok := marshalDefault(value); ok {
				schema.Default = raw
			}
		}
	}
}

func pruneRequiredWithDefaults(schema *jsonschema.Schema) {
	if schema == nil {
		return
	}
	for _, prop := range schema.Properties {
		pruneRequiredWithDefaults(prop)
	}
	if len(schema.Required) == 0 || len(schema.Properties) == 0 {
		return
	}
	kept := make([]string, 0, len(schema.Required))
	for _, name := range schema.Required {
		prop := schema.Properties[name]
		if prop == nil || prop.Default == nil {
			kept = append(kept, name)
		}
	}
	schema.Required = kept
}

func marshalDefault(value reflect.Value) (json.RawMessage, bool) {
	if !value.IsValid() {
		return nil, false
	}
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil, false
		}
		value = value.Elem()
	}

	payload, err := json.Marshal(value.Interface())
	if err != nil {
		return nil, false
	}
	return payload, true
}

func fieldKeyName(field reflect.StructField) string {
	if tag, ok := tagName(field.Tag.Get("mapstructure")); ok {
		return tag
	}
	if tag, ok := tagName(field.Tag.Get("yaml")); ok {
		return tag
	}
	return toSnakeCase(field.Name)
}

func tagName(tag string) (string, bool) {
	if tag == "" {
		return "", false
	}
	name := strings.Split(tag, ",")[0]
	if name == "" || name == "-" {
		return "", false
	}
	return name, true
}

func toSnakeCase(value string) string {
	if value == "" {
		return value
	}
	var b strings.Builder
	b.Grow(len(value) + 8)

	for i, r := range value {
		if i > 0 && isWordBoundary(value, i, r) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

func isWordBoundary(value string, index int, r rune) bool {
	if !unicode.IsUpper(r) {
		return false
	}
	prev := rune(value[index-1])
	if unicode.IsUpper(prev) {
		if index+1 < len(value) {
			next := rune(value[index+1])
			return unicode.IsLower(next)
		}
		return false
	}
	return true
}

func jsonFieldName(field reflect.StructField) (string, bool) {
	if !field.IsExported() {
		return "", true
	}
	name := field.Name
	if tag, ok := field.Tag.Lookup("json"); ok {
		tagName, _, found := strings.Cut(tag, ",")
		if tagName == "-" && !found {
			return "", true
		}
		if tagName != "" {
			name = tagName
		}
	}
	return name, false
}

func dedupeStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
