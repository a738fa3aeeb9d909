package protocol

import (
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// wireField is one JSON field of a record, as derived from its struct tags. A field is
// required unless it is tagged omitempty or omitzero.
type wireField struct {
	name     string
	typ      reflect.Type
	required bool
}

var (
	wireFieldsCache sync.Map // reflect.Type -> []wireField
	unmarshalerType = reflect.TypeOf((*json.Unmarshaler)(nil)).Elem()
)

func wireFields(t reflect.Type) []wireField {
	if cached, ok := wireFieldsCache.Load(t); ok {
		return cached.([]wireField)
	}
	var fields []wireField
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
			fields = append(fields, wireFields(sf.Type)...)
			continue
		}
		if !sf.IsExported() {
			continue
		}
		tag := sf.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		if name == "" {
			name = sf.Name
		}
		optional := false
		for _, opt := range strings.Split(opts, ",") {
			if opt == "omitempty" || opt == "omitzero" {
				optional = true
			}
		}
		fields = append(fields, wireField{name: name, typ: sf.Type, required: !optional})
	}
	wireFieldsCache.Store(t, fields)
	return fields
}

// checkRequired verifies that every required field of t is present in obj, descending into
// nested records, pointers to records and slices of records. Types that decode themselves
// are left to their own UnmarshalJSON.
func checkRequired(t reflect.Type, obj map[string]json.RawMessage, path string) *DecodeError {
	for _, f := range wireFields(t) {
		fieldPath := f.name
		if path != "" {
			fieldPath = path + "." + f.name
		}
		raw, ok := obj[f.name]
		if !ok {
			if f.required {
				return malformed("", fieldPath, "missing required field", nil)
			}
			continue
		}
		if err := checkNested(f.typ, raw, fieldPath, f.required); err != nil {
			return err
		}
	}
	return nil
}

func checkNested(t reflect.Type, raw json.RawMessage, path string, required bool) *DecodeError {
	isNull := isJSONNull(raw)
	if isNull && required && isScalar(t.Kind()) {
		return malformed("", path, "required field is null", nil)
	}
	if decodesItself(t) {
		return nil
	}

	switch t.Kind() {
	case reflect.Pointer:
		if isNull {
			return nil
		}
		return checkNested(t.Elem(), raw, path, false)

	case reflect.Struct:
		if isNull {
			if required {
				return malformed("", path, "required record is null", nil)
			}
			return nil
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return malformed("", path, "expected an object", err)
		}
		return checkRequired(t, obj, path)

	case reflect.Slice:
		elem := t.Elem()
		if isNull || elem.Kind() != reflect.Struct {
			return nil
		}
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return malformed("", path, "expected an array", err)
		}
		for i, item := range items {
			if err := checkNested(elem, item, path+"["+strconv.Itoa(i)+"]", true); err != nil {
				return err
			}
		}
	}
	return nil
}

func isJSONNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}

func decodesItself(t reflect.Type) bool {
	return reflect.PointerTo(t).Implements(unmarshalerType) || t.Implements(unmarshalerType)
}

// isScalar reports kinds that encoding/json leaves at their zero value on null.
// Slices and maps are not included: a null list keeps meaning "no entries".
func isScalar(k reflect.Kind) bool {
	switch k {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// exactKeys removes object keys that differ from a wire name only by case, at every
// level of t. encoding/json would otherwise bind "TURNRATE" to the turnRate field.
// changed is false when raw already uses exact names only.
func exactKeys(t reflect.Type, raw json.RawMessage) (clean json.RawMessage, changed bool, err error) {
	if isJSONNull(raw) || decodesItself(t) {
		return raw, false, nil
	}
	switch t.Kind() {
	case reflect.Pointer:
		return exactKeys(t.Elem(), raw)

	case reflect.Slice:
		var items []json.RawMessage
		if json.Unmarshal(raw, &items) != nil {
			return raw, false, nil
		}
		for i, item := range items {
			c, ch, err := exactKeys(t.Elem(), item)
			if err != nil {
				return nil, false, err
			}
			if ch {
				items[i], changed = c, true
			}
		}
		if !changed {
			return raw, false, nil
		}
		clean, err = json.Marshal(items)
		return clean, true, err

	case reflect.Struct:
		var obj map[string]json.RawMessage
		if json.Unmarshal(raw, &obj) != nil || obj == nil {
			return raw, false, nil
		}
		byName := make(map[string]reflect.Type)
		for _, f := range wireFields(t) {
			byName[f.name] = f.typ
		}
		for key, val := range obj {
			if ft, ok := byName[key]; ok {
				c, ch, err := exactKeys(ft, val)
				if err != nil {
					return nil, false, err
				}
				if ch {
					obj[key], changed = c, true
				}
				continue
			}
			for name := range byName {
				if strings.EqualFold(key, name) {
					delete(obj, key)
					changed = true
					break
				}
			}
		}
		if !changed {
			return raw, false, nil
		}
		clean, err = json.Marshal(obj)
		return clean, true, err
	}
	return raw, false, nil
}
