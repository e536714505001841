// File: confmerge/coerce.go
package confmerge

import (
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"reflect"
	"strconv"
	"time"
)

// CoerceFunc converts a raw value observed in a source into the item's
// target type. Raw values are typically strings (command line) but may be
// any JSON/TOML/YAML scalar or structure, or json.Number for numbers read
// from a JSON document.
type CoerceFunc func(raw any) (any, error)

// CoerceString converts the raw value to a string.
// Non-string scalars are formatted with their default representation.
func CoerceString(raw any) (any, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return fmt.Sprintf("%v", raw), nil
	}
}

// CoerceInt converts the raw value to an int.
func CoerceInt(raw any) (any, error) {
	i, err := rawToInt64(raw)
	if err != nil {
		return nil, err
	}
	return int(i), nil
}

// CoerceInt64 converts the raw value to an int64.
func CoerceInt64(raw any) (any, error) {
	return rawToInt64(raw)
}

func rawToInt64(raw any) (int64, error) {
	switch v := raw.(type) {
	case json.Number:
		return v.Int64()
	case string:
		// Base 0 allows hex/octal forms like "0xFF"
		return strconv.ParseInt(v, 0, 64)
	}

	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > uint64(^uint64(0)>>1) {
			return 0, fmt.Errorf("unsigned value %d overflows int64", u)
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		return int64(rv.Float()), nil
	}
	return 0, fmt.Errorf("cannot convert %T to integer", raw)
}

// CoerceFloat64 converts the raw value to a float64.
func CoerceFloat64(raw any) (any, error) {
	switch v := raw.(type) {
	case json.Number:
		return v.Float64()
	case string:
		return strconv.ParseFloat(v, 64)
	}

	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), nil
	}
	return nil, fmt.Errorf("cannot convert %T to float64", raw)
}

// CoerceBool converts the raw value to a bool. Strings are parsed with
// strconv.ParseBool, numbers are non-zero tests.
func CoerceBool(raw any) (any, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		return strconv.ParseBool(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, err
		}
		return f != 0, nil
	}

	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0, nil
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0, nil
	}
	return nil, fmt.Errorf("cannot convert %T to bool", raw)
}

// CoerceDuration parses the raw value as a time.Duration.
func CoerceDuration(raw any) (any, error) {
	s, err := CoerceString(raw)
	if err != nil {
		return nil, err
	}
	return time.ParseDuration(s.(string))
}

// CoerceIP parses the raw value as a net.IP.
func CoerceIP(raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("cannot convert %T to net.IP", raw)
	}
	if len(s) > 45 { // max IPv6 textual length
		return nil, fmt.Errorf("invalid IP length: %d", len(s))
	}
	ip := net.ParseIP(s)
	if ip == nil {
		return nil, fmt.Errorf("invalid IP address: %s", s)
	}
	return ip, nil
}

// CoerceURL parses the raw value as a *url.URL.
func CoerceURL(raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("cannot convert %T to *url.URL", raw)
	}
	if len(s) > 2048 {
		return nil, fmt.Errorf("URL too long: %d bytes", len(s))
	}
	return url.Parse(s)
}

// CoerceJSON decodes the raw value as an embedded JSON document. String and
// []byte raw values are decoded; anything else is passed through unchanged
// (it is already structured, e.g. came from a JSON source).
func CoerceJSON(raw any) (any, error) {
	var data []byte
	switch v := raw.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return raw, nil
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("invalid embedded JSON: %w", err)
	}
	return out, nil
}

var errType = reflect.TypeOf((*error)(nil)).Elem()

// asCoerceFunc validates that t is usable as a value coercion and adapts it
// to a CoerceFunc. Accepted forms: nil (defaults to CoerceString), a
// CoerceFunc, or any func taking one argument and returning either one value
// or a (value, error) pair.
func asCoerceFunc(t any) (CoerceFunc, error) {
	switch fn := t.(type) {
	case nil:
		return CoerceString, nil
	case CoerceFunc:
		if fn == nil {
			return nil, fmt.Errorf("%w: nil coercion function", ErrInvalidType)
		}
		return fn, nil
	case func(any) (any, error):
		if fn == nil {
			return nil, fmt.Errorf("%w: nil coercion function", ErrInvalidType)
		}
		return fn, nil
	}

	rv := reflect.ValueOf(t)
	if rv.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w: %T is not callable", ErrInvalidType, t)
	}
	if rv.IsNil() {
		return nil, fmt.Errorf("%w: nil coercion function", ErrInvalidType)
	}
	ft := rv.Type()
	if ft.IsVariadic() || ft.NumIn() != 1 {
		return nil, fmt.Errorf("%w: coercion must take exactly one argument, got %s", ErrInvalidType, ft)
	}
	switch ft.NumOut() {
	case 1:
		if ft.Out(0) == errType {
			return nil, fmt.Errorf("%w: coercion must return a value, got %s", ErrInvalidType, ft)
		}
	case 2:
		if ft.Out(1) != errType {
			return nil, fmt.Errorf("%w: second return value must be error, got %s", ErrInvalidType, ft)
		}
	default:
		return nil, fmt.Errorf("%w: coercion must return one or two values, got %s", ErrInvalidType, ft)
	}

	in := ft.In(0)
	return func(raw any) (out any, err error) {
		av := reflect.ValueOf(raw)
		if !av.IsValid() {
			av = reflect.Zero(in)
		} else if !av.Type().AssignableTo(in) {
			if !av.Type().ConvertibleTo(in) {
				return nil, fmt.Errorf("cannot pass %T to coercion %s", raw, ft)
			}
			av = av.Convert(in)
		}
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("coercion %s panicked: %v", ft, r)
			}
		}()
		results := rv.Call([]reflect.Value{av})
		if len(results) == 2 && !results[1].IsNil() {
			return nil, results[1].Interface().(error)
		}
		return results[0].Interface(), nil
	}, nil
}
