// File: confmerge/namespace.go
package confmerge

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Namespace is an insertion-ordered mapping from item name to resolved
// value. It is both the result of a resolution pass and the shape sources
// and callers exchange values in. Two Namespaces are equal iff they hold
// the same set of name to value pairs; insertion order does not affect
// equality.
type Namespace struct {
	names  []string
	values map[string]any
}

// NewNamespace returns an empty Namespace.
func NewNamespace() *Namespace {
	return &Namespace{values: make(map[string]any)}
}

// Set stores a value for name, preserving first-insertion order.
func (ns *Namespace) Set(name string, value any) {
	if _, exists := ns.values[name]; !exists {
		ns.names = append(ns.names, name)
	}
	ns.values[name] = value
}

// Get retrieves the value for name. The second return value reports whether
// the name has an entry; a nil value with true means the item resolved to
// an explicit null.
func (ns *Namespace) Get(name string) (any, bool) {
	v, ok := ns.values[name]
	return v, ok
}

// Has reports whether name has an entry.
func (ns *Namespace) Has(name string) bool {
	_, ok := ns.values[name]
	return ok
}

// Names returns the entry names in insertion order.
func (ns *Namespace) Names() []string {
	out := make([]string, len(ns.names))
	copy(out, ns.names)
	return out
}

// Len returns the number of entries.
func (ns *Namespace) Len() int {
	return len(ns.names)
}

// Map returns a copy of the entries as a plain map.
func (ns *Namespace) Map() map[string]any {
	out := make(map[string]any, len(ns.values))
	for k, v := range ns.values {
		out[k] = v
	}
	return out
}

// Equal reports structural equality: the same set of names, each mapped to
// a deeply-equal value.
func (ns *Namespace) Equal(other *Namespace) bool {
	if other == nil || len(ns.values) != len(other.values) {
		return false
	}
	for name, v := range ns.values {
		ov, ok := other.values[name]
		if !ok || !reflect.DeepEqual(v, ov) {
			return false
		}
	}
	return true
}

// Debug returns a formatted listing of all entries in insertion order.
func (ns *Namespace) Debug() string {
	var b strings.Builder
	b.WriteString("Resolved values:\n")
	for _, name := range ns.names {
		b.WriteString(fmt.Sprintf("  %s: %v\n", name, ns.values[name]))
	}
	return b.String()
}

// String retrieves a string value by name.
// Attempts conversion from common types if the stored value isn't already a string.
func (ns *Namespace) String(name string) (string, error) {
	val, found := ns.Get(name)
	if !found {
		return "", fmt.Errorf("no value for config item %q", name)
	}
	if val == nil {
		return "", nil // Treat nil as empty string for convenience
	}

	if strVal, ok := val.(string); ok {
		return strVal, nil
	}

	switch v := val.(type) {
	case fmt.Stringer:
		return v.String(), nil
	case []byte:
		return string(v), nil
	case int, int8, int16, int32, int64:
		return strconv.FormatInt(reflect.ValueOf(val).Int(), 10), nil
	case uint, uint8, uint16, uint32, uint64:
		return strconv.FormatUint(reflect.ValueOf(val).Uint(), 10), nil
	case float32, float64:
		return strconv.FormatFloat(reflect.ValueOf(val).Float(), 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	case error:
		return v.Error(), nil
	default:
		return "", fmt.Errorf("cannot convert type %T to string for config item %q", val, name)
	}
}

// Int64 retrieves an int64 value by name.
// Attempts conversion from numeric types, parsable strings, and booleans.
func (ns *Namespace) Int64(name string) (int64, error) {
	val, found := ns.Get(name)
	if !found {
		return 0, fmt.Errorf("no value for config item %q", name)
	}
	if val == nil {
		return 0, fmt.Errorf("value for config item %q is nil, cannot convert to int64", name)
	}

	v := reflect.ValueOf(val)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := v.Uint()
		if u > uint64(^uint64(0)>>1) {
			return 0, fmt.Errorf("cannot convert unsigned integer %d to int64 for config item %q: overflow", u, name)
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		return int64(v.Float()), nil
	case reflect.String:
		s := v.String()
		if i, err := strconv.ParseInt(s, 0, 64); err == nil {
			return i, nil
		} else {
			if f, ferr := strconv.ParseFloat(s, 64); ferr == nil {
				return int64(f), nil
			}
			return 0, fmt.Errorf("cannot convert string %q to int64 for config item %q: %w", s, name, err)
		}
	case reflect.Bool:
		if v.Bool() {
			return 1, nil
		}
		return 0, nil
	}

	return 0, fmt.Errorf("cannot convert type %T to int64 for config item %q", val, name)
}

// Bool retrieves a boolean value by name.
// Attempts conversion from numeric types (0=false, non-zero=true) and parsable strings.
func (ns *Namespace) Bool(name string) (bool, error) {
	val, found := ns.Get(name)
	if !found {
		return false, fmt.Errorf("no value for config item %q", name)
	}
	if val == nil {
		return false, fmt.Errorf("value for config item %q is nil, cannot convert to bool", name)
	}

	v := reflect.ValueOf(val)
	switch v.Kind() {
	case reflect.Bool:
		return v.Bool(), nil
	case reflect.String:
		s := v.String()
		if b, err := strconv.ParseBool(s); err == nil {
			return b, nil
		} else {
			return false, fmt.Errorf("cannot convert string %q to bool for config item %q: %w", s, name, err)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() != 0, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() != 0, nil
	case reflect.Float32, reflect.Float64:
		return v.Float() != 0, nil
	}

	return false, fmt.Errorf("cannot convert type %T to bool for config item %q", val, name)
}

// Float64 retrieves a float64 value by name.
// Attempts conversion from numeric types, parsable strings, and booleans.
func (ns *Namespace) Float64(name string) (float64, error) {
	val, found := ns.Get(name)
	if !found {
		return 0.0, fmt.Errorf("no value for config item %q", name)
	}
	if val == nil {
		return 0.0, fmt.Errorf("value for config item %q is nil, cannot convert to float64", name)
	}

	v := reflect.ValueOf(val)
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), nil
	case reflect.String:
		s := v.String()
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, nil
		} else {
			return 0.0, fmt.Errorf("cannot convert string %q to float64 for config item %q: %w", s, name, err)
		}
	case reflect.Bool:
		if v.Bool() {
			return 1.0, nil
		}
		return 0.0, nil
	}

	return 0.0, fmt.Errorf("cannot convert type %T to float64 for config item %q", val, name)
}
