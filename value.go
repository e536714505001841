// File: confmerge/value.go
package confmerge

import "fmt"

// Value is the tagged absent-or-present state of a config item. The zero
// Value is absent. An absent Value is distinct from a present Value holding
// nil, which lets callers supply nil as a real config value.
type Value struct {
	present bool
	val     any
}

// Absent returns a Value representing "no value was ever provided".
func Absent() Value {
	return Value{}
}

// Present wraps v as a provided value.
func Present(v any) Value {
	return Value{present: true, val: v}
}

// IsPresent reports whether the Value holds a provided value.
func (v Value) IsPresent() bool {
	return v.present
}

// Get returns the held value and whether one is present.
func (v Value) Get() (any, bool) {
	return v.val, v.present
}

func (v Value) String() string {
	if !v.present {
		return "ABSENT"
	}
	return fmt.Sprintf("%v", v.val)
}

type presence struct{}

func (presence) String() string { return "PRESENT_WITHOUT_VALUE" }

// Presence is the raw value recorded when an item was mentioned in a source
// without carrying content (a zero-arity flag, a bare key). The const-family
// and count actions only ever see this marker; its content is irrelevant.
var Presence = presence{}

// RawBatch maps item names to the ordered, uncoerced values one source
// observed for them during a single resolution pass. Items the source did
// not see have no entry.
type RawBatch map[string][]any
