// File: confmerge/errors.go
package confmerge

import "errors"

// Sentinel errors returned (wrapped with context) by registration and
// resolution. Match with errors.Is.
var (
	// ErrInvalidName indicates a config item name that is not a valid
	// identifier.
	ErrInvalidName = errors.New("invalid config item name")

	// ErrDuplicateItem indicates an item name already registered with the
	// Resolver.
	ErrDuplicateItem = errors.New("duplicate config item")

	// ErrInvalidType indicates a Type option that cannot be used as a value
	// coercion.
	ErrInvalidType = errors.New("invalid type coercion")

	// ErrUnsupportedAction indicates an unknown action, or an action combined
	// with options it does not support.
	ErrUnsupportedAction = errors.New("unsupported action")

	// ErrInvalidChoice indicates a coerced value outside an item's permitted
	// choices.
	ErrInvalidChoice = errors.New("invalid choice")

	// ErrRequiredMissing indicates a required item for which no source
	// provided a value. Returned by Resolve, never by ResolvePartial.
	ErrRequiredMissing = errors.New("required config item missing")

	// ErrSourceConstruction indicates a source given an invalid combination
	// of construction options.
	ErrSourceConstruction = errors.New("invalid source construction")
)
