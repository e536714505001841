// File: confmerge/resolver.go
package confmerge

import (
	"fmt"
	"io"
)

// Options configures a Resolver's global default policy: what "no value"
// means for items that are still absent after source merging and item-level
// defaulting.
//
// The zero Options maps such items to an explicit nil entry. A present
// GlobalDefault substitutes that value instead. Suppress leaves the item
// out of the result entirely.
type Options struct {
	// GlobalDefault is the resolver-wide fallback value for unset items.
	GlobalDefault Value

	// Suppress omits unset items from the result. Takes precedence over
	// GlobalDefault.
	Suppress bool
}

// Resolver merges configuration values for a fixed set of named items from
// multiple sources into one Namespace, with consistent precedence and
// validation.
//
// Items are registered first; each source is bound to a snapshot of the
// items registered before it. Sources are pulled in registration order, so
// a later source's values override (Store) or follow (Append, Count) an
// earlier source's. A Resolver is not safe for concurrent use; the parse
// pipeline is synchronous and single-threaded.
type Resolver struct {
	items   []*ItemSpec
	byName  map[string]*ItemSpec
	sources []Source
	opts    Options
}

// New creates a Resolver with the default policy: unset items resolve to an
// explicit nil entry.
func New() *Resolver {
	return NewWithOptions(Options{})
}

// NewWithOptions creates a Resolver with a custom global default policy.
func NewWithOptions(opts Options) *Resolver {
	return &Resolver{
		byName: make(map[string]*ItemSpec),
		opts:   opts,
	}
}

// RegisterItem declares a config item. The returned spec is immutable; it
// is the handle sources use to recognize the item.
func (r *Resolver) RegisterItem(name string, opts ItemOptions) (*ItemSpec, error) {
	if _, exists := r.byName[name]; exists {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateItem, name)
	}
	spec, err := newItemSpec(name, opts)
	if err != nil {
		return nil, err
	}
	r.items = append(r.items, spec)
	r.byName[name] = spec
	return spec, nil
}

// MustRegisterItem is like RegisterItem but panics on error. Intended for
// static item declarations.
func (r *Resolver) MustRegisterItem(name string, opts ItemOptions) *ItemSpec {
	spec, err := r.RegisterItem(name, opts)
	if err != nil {
		panic(fmt.Sprintf("config item registration failed: %v", err))
	}
	return spec
}

// Items returns a copy of the registered items in registration order.
func (r *Resolver) Items() []*ItemSpec {
	return r.snapshot()
}

func (r *Resolver) snapshot() []*ItemSpec {
	items := make([]*ItemSpec, len(r.items))
	copy(items, r.items)
	return items
}

// AddSource builds a source bound to a snapshot of the currently-registered
// items and appends it to the pull order. Items registered after this call
// are invisible to the source. The constructed source is returned for
// source-specific extra wiring.
func (r *Resolver) AddSource(build SourceFactory) (Source, error) {
	source, err := build(r.snapshot())
	if err != nil {
		return nil, err
	}
	r.sources = append(r.sources, source)
	return source, nil
}

// AddMap registers a MapSource over values.
func (r *Resolver) AddMap(values map[string]any) *MapSource {
	source := NewMapSource(r.snapshot(), values)
	r.sources = append(r.sources, source)
	return source
}

// AddCommandLine registers a CommandLineSource parsing args.
func (r *Resolver) AddCommandLine(args []string) *CommandLineSource {
	source := NewCommandLineSource(r.snapshot(), CommandLineOptions{Args: args})
	r.sources = append(r.sources, source)
	return source
}

// AddJSONFile registers a JSONSource reading from a file path.
func (r *Resolver) AddJSONFile(path string) (*JSONSource, error) {
	return r.addJSON(FileSourceOptions{Path: path})
}

// AddJSON registers a JSONSource reading from an open stream.
func (r *Resolver) AddJSON(reader io.Reader) (*JSONSource, error) {
	return r.addJSON(FileSourceOptions{Reader: reader})
}

func (r *Resolver) addJSON(opts FileSourceOptions) (*JSONSource, error) {
	source, err := NewJSONSource(r.snapshot(), opts)
	if err != nil {
		return nil, err
	}
	r.sources = append(r.sources, source)
	return source, nil
}

// AddTOMLFile registers a TOMLSource reading from a file path.
func (r *Resolver) AddTOMLFile(path string) (*TOMLSource, error) {
	source, err := NewTOMLSource(r.snapshot(), FileSourceOptions{Path: path})
	if err != nil {
		return nil, err
	}
	r.sources = append(r.sources, source)
	return source, nil
}

// AddYAMLFile registers a YAMLSource reading from a file path.
func (r *Resolver) AddYAMLFile(path string) (*YAMLSource, error) {
	source, err := NewYAMLSource(r.snapshot(), FileSourceOptions{Path: path})
	if err != nil {
		return nil, err
	}
	r.sources = append(r.sources, source)
	return source, nil
}

// ResolvePartial runs the merge pipeline without enforcing Required: pull
// each source in registration order, fold its raw values through each
// item's accumulation rule, then apply item defaults and the global default
// policy. A source or coercion error discards the whole pass.
func (r *Resolver) ResolvePartial() (*Namespace, error) {
	ns, _, err := r.resolve()
	return ns, err
}

// Resolve is ResolvePartial plus enforcement that every Required item got a
// value from some source. Neither item defaults nor the global default
// satisfy Required.
func (r *Resolver) Resolve() (*Namespace, error) {
	ns, accumulated, err := r.resolve()
	if err != nil {
		return nil, err
	}
	for _, item := range r.items {
		if item.Required() && !accumulated[item.Name()].IsPresent() {
			return nil, fmt.Errorf("%w: did not find value for config item %q", ErrRequiredMissing, item.Name())
		}
	}
	return ns, nil
}

// resolve computes a full pass from scratch. The accumulated pre-default
// state is returned alongside the result for the Required check.
func (r *Resolver) resolve() (*Namespace, map[string]Value, error) {
	accumulated := make(map[string]Value, len(r.items))

	for _, source := range r.sources {
		batch, err := source.ParseRaw()
		if err != nil {
			return nil, nil, err
		}
		for _, item := range r.items {
			raws, ok := batch[item.Name()]
			if !ok {
				continue
			}
			current := accumulated[item.Name()]
			for _, raw := range raws {
				current, err = item.rule.accumulate(current, raw)
				if err != nil {
					return nil, nil, err
				}
			}
			accumulated[item.Name()] = current
		}
	}

	ns := NewNamespace()
	for _, item := range r.items {
		value := item.rule.applyDefault(accumulated[item.Name()])
		if v, ok := value.Get(); ok {
			ns.Set(item.Name(), v)
			continue
		}
		switch {
		case r.opts.Suppress:
			// No entry at all.
		case r.opts.GlobalDefault.IsPresent():
			v, _ := r.opts.GlobalDefault.Get()
			ns.Set(item.Name(), v)
		default:
			ns.Set(item.Name(), nil)
		}
	}
	return ns, accumulated, nil
}
