// File: confmerge/item.go
package confmerge

import (
	"fmt"
	"reflect"
	"strings"
)

// Action selects how multiple raw values for one item combine across
// sources, and how the item's final value is derived once all sources have
// been merged.
type Action string

const (
	// Store keeps the last coerced value seen across all sources.
	Store Action = "store"
	// StoreConst yields a fixed constant whenever the item is mentioned.
	StoreConst Action = "store_const"
	// StoreTrue is StoreConst specialized to true with a false default.
	StoreTrue Action = "store_true"
	// StoreFalse is StoreConst specialized to false with a true default.
	StoreFalse Action = "store_false"
	// Append collects every coerced value, in arrival order, into a list.
	Append Action = "append"
	// Count yields the number of times the item was mentioned.
	Count Action = "count"
)

// takesValue reports whether the action consumes raw value content. The
// const-family and count actions only care about presence.
func (a Action) takesValue() bool {
	return a == Store || a == Append
}

// ItemOptions configures one config item at registration. The zero value
// registers a plain required=false string-typed Store item.
type ItemOptions struct {
	// Action defaults to Store.
	Action Action

	// Type is the coercion from a raw source value to the item's target
	// type: a CoerceFunc, or any func taking one argument and returning a
	// value or a (value, error) pair. Defaults to CoerceString. Ignored by
	// the const-family and Count actions, which never coerce.
	Type any

	// Required makes Resolve fail if no source provides a value. Item and
	// global defaults do not satisfy Required.
	Required bool

	// Default is the item-level fallback. Leave absent (the zero Value) for
	// no item default. Store substitutes it only when nothing was seen;
	// Append prepends it to collected values; Count adds it to the
	// mention count.
	Default Value

	// Const is the value produced by StoreConst when the item is mentioned.
	// Rejected for other actions. StoreTrue and StoreFalse supply their own.
	Const any

	// Choices restricts permitted values, checked against the coerced value,
	// never the raw one. Ignored by the const-family and Count actions.
	Choices []any

	// Help is a description of the item, used as flag usage text by the
	// command-line source.
	Help string
}

// ItemSpec describes one named config item. Create via
// Resolver.RegisterItem; immutable afterwards.
type ItemSpec struct {
	name     string
	action   Action
	required bool
	help     string
	rule     rule
}

// Name returns the item's unique name.
func (s *ItemSpec) Name() string { return s.name }

// Action returns the item's accumulation action.
func (s *ItemSpec) Action() Action { return s.action }

// Required reports whether Resolve demands a source-provided value.
func (s *ItemSpec) Required() bool { return s.required }

// Help returns the item's description.
func (s *ItemSpec) Help() string { return s.help }

// rule is the per-action accumulation and defaulting behavior. accumulate
// folds one raw source value into the running value for a resolution pass;
// applyDefault runs once per pass after all sources are merged.
type rule interface {
	accumulate(current Value, raw any) (Value, error)
	applyDefault(v Value) Value
}

func newItemSpec(name string, opts ItemOptions) (*ItemSpec, error) {
	if !isValidItemName(name) {
		return nil, fmt.Errorf("%w: %q must match [A-Za-z_][A-Za-z0-9_]*", ErrInvalidName, name)
	}

	action := opts.Action
	if action == "" {
		action = Store
	}

	spec := &ItemSpec{
		name:     name,
		action:   action,
		required: opts.Required,
		help:     opts.Help,
	}

	switch action {
	case Store:
		coerce, err := storeOptions(name, opts)
		if err != nil {
			return nil, err
		}
		spec.rule = &storeRule{item: name, coerce: coerce, choices: opts.Choices, def: opts.Default}

	case Append:
		coerce, err := storeOptions(name, opts)
		if err != nil {
			return nil, err
		}
		def, err := appendDefault(name, opts.Default)
		if err != nil {
			return nil, err
		}
		spec.rule = &appendRule{item: name, coerce: coerce, choices: opts.Choices, def: def}

	case StoreConst:
		if opts.Const == nil {
			return nil, fmt.Errorf("%w: %s requires a Const value for item %q", ErrUnsupportedAction, action, name)
		}
		if opts.Required {
			return nil, fmt.Errorf("%w: Required cannot be combined with %s for item %q", ErrUnsupportedAction, action, name)
		}
		spec.rule = &constRule{constVal: opts.Const, def: opts.Default}

	case StoreTrue, StoreFalse:
		if opts.Const != nil {
			return nil, fmt.Errorf("%w: Const cannot be combined with %s for item %q", ErrUnsupportedAction, action, name)
		}
		if opts.Required {
			return nil, fmt.Errorf("%w: Required cannot be combined with %s for item %q", ErrUnsupportedAction, action, name)
		}
		constVal := action == StoreTrue
		def := opts.Default
		if !def.IsPresent() {
			def = Present(!constVal)
		}
		spec.rule = &constRule{constVal: constVal, def: def}

	case Count:
		if opts.Const != nil {
			return nil, fmt.Errorf("%w: Const cannot be combined with %s for item %q", ErrUnsupportedAction, action, name)
		}
		def, err := countDefault(name, opts.Default)
		if err != nil {
			return nil, err
		}
		spec.rule = &countRule{def: def}

	case "append_const", "extend":
		return nil, fmt.Errorf("%w: action %q has not been implemented", ErrUnsupportedAction, action)

	default:
		return nil, fmt.Errorf("%w: unknown action %q", ErrUnsupportedAction, action)
	}

	return spec, nil
}

// storeOptions validates the option combination shared by Store and Append.
func storeOptions(name string, opts ItemOptions) (CoerceFunc, error) {
	if opts.Const != nil {
		return nil, fmt.Errorf("%w: Const cannot be combined with the %s action for item %q", ErrUnsupportedAction, opts.Action, name)
	}
	coerce, err := asCoerceFunc(opts.Type)
	if err != nil {
		return nil, fmt.Errorf("item %q: %w", name, err)
	}
	return coerce, nil
}

// appendDefault normalizes an Append item's default to []any.
func appendDefault(name string, def Value) (Value, error) {
	v, ok := def.Get()
	if !ok {
		return def, nil
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return Absent(), fmt.Errorf("%w: append default for item %q must be a slice, got %T", ErrInvalidType, name, v)
	}
	list := make([]any, rv.Len())
	for i := range list {
		list[i] = rv.Index(i).Interface()
	}
	return Present(list), nil
}

// countDefault normalizes a Count item's default to int.
func countDefault(name string, def Value) (Value, error) {
	v, ok := def.Get()
	if !ok {
		return def, nil
	}
	i, err := rawToInt64(v)
	if err != nil {
		return Absent(), fmt.Errorf("%w: count default for item %q must be an integer: %v", ErrInvalidType, name, err)
	}
	return Present(int(i)), nil
}

// isValidItemName checks the identifier rule for item names: a letter or
// underscore followed by letters, digits or underscores.
func isValidItemName(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if i == 0 && !isLetter && r != '_' {
			return false
		}
		if !isLetter && !isDigit && r != '_' {
			return false
		}
	}
	return true
}

func checkChoice(item string, choices []any, v any) error {
	if len(choices) == 0 {
		return nil
	}
	for _, c := range choices {
		if reflect.DeepEqual(c, v) {
			return nil
		}
	}
	strs := make([]string, len(choices))
	for i, c := range choices {
		strs[i] = fmt.Sprintf("%v", c)
	}
	return fmt.Errorf("%w: '%v' for config item %q; valid choices are (%s)",
		ErrInvalidChoice, v, item, strings.Join(strs, ","))
}

// storeRule: coerce, choice-check, last writer wins.
type storeRule struct {
	item    string
	coerce  CoerceFunc
	choices []any
	def     Value
}

func (r *storeRule) accumulate(_ Value, raw any) (Value, error) {
	v, err := r.coerce(raw)
	if err != nil {
		return Absent(), fmt.Errorf("config item %q: cannot coerce value '%v': %w", r.item, raw, err)
	}
	if err := checkChoice(r.item, r.choices, v); err != nil {
		return Absent(), err
	}
	return Present(v), nil
}

func (r *storeRule) applyDefault(v Value) Value {
	if v.IsPresent() {
		return v
	}
	return r.def
}

// appendRule: coerce, choice-check, collect in arrival order. The item
// default is prepended to collected values, not substituted.
type appendRule struct {
	item    string
	coerce  CoerceFunc
	choices []any
	def     Value
}

func (r *appendRule) accumulate(current Value, raw any) (Value, error) {
	v, err := r.coerce(raw)
	if err != nil {
		return Absent(), fmt.Errorf("config item %q: cannot coerce value '%v': %w", r.item, raw, err)
	}
	if err := checkChoice(r.item, r.choices, v); err != nil {
		return Absent(), err
	}
	cur, ok := current.Get()
	if !ok {
		return Present([]any{v}), nil
	}
	existing := cur.([]any)
	next := make([]any, 0, len(existing)+1)
	next = append(next, existing...)
	next = append(next, v)
	return Present(next), nil
}

func (r *appendRule) applyDefault(v Value) Value {
	dv, ok := r.def.Get()
	if !ok {
		return v
	}
	def := dv.([]any)
	cur, ok := v.Get()
	if !ok {
		return Present(append([]any{}, def...))
	}
	collected := cur.([]any)
	merged := make([]any, 0, len(def)+len(collected))
	merged = append(merged, def...)
	merged = append(merged, collected...)
	return Present(merged)
}

// constRule: presence in, constant out. Covers StoreConst, StoreTrue and
// StoreFalse; the actual constant is resolved in applyDefault so repeated
// mentions collapse to a single presence marker.
type constRule struct {
	constVal any
	def      Value
}

func (r *constRule) accumulate(Value, any) (Value, error) {
	return Present(Presence), nil
}

func (r *constRule) applyDefault(v Value) Value {
	if v.IsPresent() {
		return Present(r.constVal)
	}
	return r.def
}

// countRule: counts presence markers; the default is added to the count.
type countRule struct {
	def Value
}

func (r *countRule) accumulate(current Value, _ any) (Value, error) {
	cur, ok := current.Get()
	if !ok {
		return Present(1), nil
	}
	return Present(cur.(int) + 1), nil
}

func (r *countRule) applyDefault(v Value) Value {
	dv, ok := r.def.Get()
	if !ok {
		return v
	}
	cur, ok := v.Get()
	if !ok {
		return r.def
	}
	return Present(dv.(int) + cur.(int))
}
