package config

import (
	"reflect"
)

// Keys returns every schema key as a dotted path, in declaration order.
// Slice-valued fields (watch lists) appear as a single key.
func Keys() []string {
	var keys []string
	collectKeys(reflect.TypeOf(Config{}), "", &keys)
	return keys
}

func collectKeys(t reflect.Type, prefix string, keys *[]string) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" || tag == "-" {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		if field.Type.Kind() == reflect.Struct {
			collectKeys(field.Type, key, keys)
			continue
		}
		*keys = append(*keys, key)
	}
}

// Get returns the value at a dotted schema key ("cache.port"). A key
// outside the schema returns *UnknownKeyError regardless of how the
// configuration was loaded.
func (c *Config) Get(key string) (any, error) {
	v := reflect.ValueOf(c).Elem()
	rest := key
	for {
		seg, tail := splitKey(rest)
		field, ok := fieldByTag(v, seg)
		if !ok {
			return nil, &UnknownKeyError{Key: key}
		}
		if tail == "" {
			if field.Kind() == reflect.Struct {
				return nil, &UnknownKeyError{Key: key}
			}
			return field.Interface(), nil
		}
		if field.Kind() != reflect.Struct {
			return nil, &UnknownKeyError{Key: key}
		}
		v, rest = field, tail
	}
}

func splitKey(key string) (string, string) {
	for i := 0; i < len(key); i++ {
		if key[i] == '.' {
			return key[:i], key[i+1:]
		}
	}
	return key, ""
}

func fieldByTag(v reflect.Value, tag string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).Tag.Get("mapstructure") == tag {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// Settings returns the configuration as nested maps in the template file
// shape. Loading the result back through WithOverrides yields an identical
// Config.
func (c *Config) Settings() map[string]any {
	return structSettings(reflect.ValueOf(c).Elem())
}

func structSettings(v reflect.Value) map[string]any {
	out := make(map[string]any, v.NumField())
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("mapstructure")
		if tag == "" || tag == "-" {
			continue
		}
		field := v.Field(i)
		switch field.Kind() {
		case reflect.Struct:
			out[tag] = structSettings(field)
		case reflect.Slice:
			items := make([]map[string]any, field.Len())
			for j := 0; j < field.Len(); j++ {
				items[j] = structSettings(field.Index(j))
			}
			out[tag] = items
		default:
			out[tag] = field.Interface()
		}
	}
	return out
}
