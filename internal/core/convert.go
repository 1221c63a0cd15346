package core

// convert.go turns record attribute values into spreadsheet cells.
//
// Every cell is written as text. A value is absent when it is nil, a nil
// pointer, an empty string or byte slice, a zero time, or a driver.Valuer
// that yields NULL. A value is falsy when it is absent, false, a zero
// number, or an empty slice, map or array. CellsOmitEmpty skips falsy
// values; CellsKeepEmpty blanks only absent ones.

import (
	"database/sql/driver"
	"fmt"
	"reflect"
	"strconv"
	"time"
)

// CellString returns the cell text for v and false when v is empty.
func CellString(v any) (string, bool) {
	v = indirect(v)

	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, x != ""
	case []byte:
		return string(x), len(x) > 0
	case time.Time:
		if x.IsZero() {
			return "", false
		}
		return x.Format(time.RFC3339), true
	case bool:
		return strconv.FormatBool(x), true
	case int:
		return strconv.FormatInt(int64(x), 10), true
	case int8:
		return strconv.FormatInt(int64(x), 10), true
	case int16:
		return strconv.FormatInt(int64(x), 10), true
	case int32:
		return strconv.FormatInt(int64(x), 10), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case uint:
		return strconv.FormatUint(uint64(x), 10), true
	case uint8:
		return strconv.FormatUint(uint64(x), 10), true
	case uint16:
		return strconv.FormatUint(uint64(x), 10), true
	case uint32:
		return strconv.FormatUint(uint64(x), 10), true
	case uint64:
		return strconv.FormatUint(x, 10), true
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case driver.Valuer:
		val, err := x.Value()
		if err != nil || val == nil {
			return "", false
		}
		return CellString(val)
	case fmt.Stringer:
		s := x.String()
		return s, s != ""
	default:
		s := fmt.Sprint(x)
		return s, s != ""
	}
}

// falsy reports whether v is skipped under CellsOmitEmpty.
func falsy(v any) bool {
	if _, ok := CellString(v); !ok {
		return true
	}
	v = indirect(v)
	if val, ok := v.(driver.Valuer); ok {
		inner, err := val.Value()
		return err != nil || falsy(inner)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return !rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return rv.IsZero()
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	default:
		return false
	}
}

// indirect dereferences pointers; a nil pointer becomes untyped nil.
func indirect(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	return rv.Interface()
}
