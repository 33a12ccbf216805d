package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// encoding/json matches object keys without regard to case and lets a later
// duplicate overwrite an earlier one. The wire contract is the exact key
// names, so checkKeys walks the raw document against the shadow struct and
// rejects a repeated key or a key that differs from a known field only in
// case. Keys that match no field in any case stay ignored, along with
// whatever they hold.
func checkKeys(data []byte, shape reflect.Type) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return walkKeys(dec, shape, "")
}

func walkKeys(dec *json.Decoder, shape reflect.Type, path string) error {
	for shape != nil && shape.Kind() == reflect.Ptr {
		shape = shape.Elem()
	}
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return nil
	}

	switch delim {
	case '{':
		var fields map[string]reflect.Type
		var elem reflect.Type
		if shape != nil {
			switch shape.Kind() {
			case reflect.Struct:
				fields = jsonFields(shape)
			case reflect.Map:
				elem = shape.Elem()
			}
		}
		seen := make(map[string]bool)
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return err
			}
			key := tok.(string)
			at := joinPath(path, key)
			if shape != nil && seen[key] {
				return fmt.Errorf("duplicate field %q", at)
			}
			seen[key] = true

			next := elem
			if fields != nil {
				ft, known := fields[key]
				if !known {
					for name := range fields {
						if strings.EqualFold(name, key) {
							return fmt.Errorf("field %q must be spelled %q", at, joinPath(path, name))
						}
					}
				}
				next = ft
			}
			if err := walkKeys(dec, next, at); err != nil {
				return err
			}
		}
		_, err = dec.Token()
		return err

	case '[':
		var elem reflect.Type
		if shape != nil && shape.Kind() == reflect.Slice {
			elem = shape.Elem()
		}
		for i := 0; dec.More(); i++ {
			if err := walkKeys(dec, elem, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
		_, err = dec.Token()
		return err
	}
	return nil
}

func jsonFields(t reflect.Type) map[string]reflect.Type {
	fields := make(map[string]reflect.Type, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			continue
		}
		fields[name] = f.Type
	}
	return fields
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
