package parser

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// DecodeArgs decodes raw values into new values of types. Missing values
// decode to the zero value of their type, extra values are ignored.
func DecodeArgs(raw []json.RawMessage, types []reflect.Type) ([]reflect.Value, error) {
	ret := make([]reflect.Value, len(types))

	for i, typ := range types {
		isPtr := typ.Kind() == reflect.Ptr
		if isPtr {
			typ = typ.Elem()
		}

		v := reflect.New(typ)
		if i < len(raw) {
			if err := json.Unmarshal(raw[i], v.Interface()); err != nil {
				return nil, fmt.Errorf("decode arg %d as %s: %w", i, typ, err)
			}
		}

		if isPtr {
			ret[i] = v
		} else {
			ret[i] = v.Elem()
		}
	}

	return ret, nil
}
