// File: confmerge/builder.go
package confmerge

import (
	"fmt"
	"io"
)

// ValidatorFunc validates a resolved Namespace. It runs after resolution
// succeeds and should return an error if the combined values are not
// acceptable.
type ValidatorFunc func(ns *Namespace) error

// Builder provides a fluent interface for declaring items and sources and
// resolving them in one chain. Item and source declarations are replayed in
// call order, so the usual snapshot rule applies: a source sees only the
// items declared before it.
type Builder struct {
	opts       Options
	steps      []func(r *Resolver) error
	validators []ValidatorFunc
}

// NewBuilder creates a new configuration builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// WithOptions sets the resolver's global default policy.
func (b *Builder) WithOptions(opts Options) *Builder {
	b.opts = opts
	return b
}

// WithGlobalDefault sets an explicit fallback value for unset items.
func (b *Builder) WithGlobalDefault(v any) *Builder {
	b.opts.GlobalDefault = Present(v)
	return b
}

// SuppressMissing omits unset items from the result entirely.
func (b *Builder) SuppressMissing() *Builder {
	b.opts.Suppress = true
	return b
}

// AddItem declares a config item.
func (b *Builder) AddItem(name string, opts ItemOptions) *Builder {
	b.steps = append(b.steps, func(r *Resolver) error {
		_, err := r.RegisterItem(name, opts)
		return err
	})
	return b
}

// WithMap adds a MapSource over values.
func (b *Builder) WithMap(values map[string]any) *Builder {
	b.steps = append(b.steps, func(r *Resolver) error {
		r.AddMap(values)
		return nil
	})
	return b
}

// WithCommandLine adds a CommandLineSource parsing args.
func (b *Builder) WithCommandLine(args []string) *Builder {
	b.steps = append(b.steps, func(r *Resolver) error {
		r.AddCommandLine(args)
		return nil
	})
	return b
}

// WithJSONFile adds a JSONSource reading from a file path.
func (b *Builder) WithJSONFile(path string) *Builder {
	b.steps = append(b.steps, func(r *Resolver) error {
		_, err := r.AddJSONFile(path)
		return err
	})
	return b
}

// WithJSON adds a JSONSource reading from an open stream.
func (b *Builder) WithJSON(reader io.Reader) *Builder {
	b.steps = append(b.steps, func(r *Resolver) error {
		_, err := r.AddJSON(reader)
		return err
	})
	return b
}

// WithTOMLFile adds a TOMLSource reading from a file path.
func (b *Builder) WithTOMLFile(path string) *Builder {
	b.steps = append(b.steps, func(r *Resolver) error {
		_, err := r.AddTOMLFile(path)
		return err
	})
	return b
}

// WithYAMLFile adds a YAMLSource reading from a file path.
func (b *Builder) WithYAMLFile(path string) *Builder {
	b.steps = append(b.steps, func(r *Resolver) error {
		_, err := r.AddYAMLFile(path)
		return err
	})
	return b
}

// WithSource adds a source built by factory, for source kinds the builder
// has no dedicated method for.
func (b *Builder) WithSource(factory SourceFactory) *Builder {
	b.steps = append(b.steps, func(r *Resolver) error {
		_, err := r.AddSource(factory)
		return err
	})
	return b
}

// WithValidator adds a validation function that runs after resolution.
// Multiple validators can be added and are executed in the order they are
// added.
func (b *Builder) WithValidator(fn ValidatorFunc) *Builder {
	if fn != nil {
		b.validators = append(b.validators, fn)
	}
	return b
}

// Build replays the declarations onto a fresh Resolver without resolving.
func (b *Builder) Build() (*Resolver, error) {
	r := NewWithOptions(b.opts)
	for _, step := range b.steps {
		if err := step(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Resolve builds the resolver, runs a full resolution pass with Required
// enforcement, then runs the validators.
func (b *Builder) Resolve() (*Namespace, error) {
	r, err := b.Build()
	if err != nil {
		return nil, err
	}
	ns, err := r.Resolve()
	if err != nil {
		return nil, err
	}
	for _, validator := range b.validators {
		if err := validator(ns); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}
	return ns, nil
}

// ResolveAndScan resolves and decodes the result into the provided target
// struct pointer.
func (b *Builder) ResolveAndScan(target any) error {
	ns, err := b.Resolve()
	if err != nil {
		return err
	}
	if err := ns.Scan(target); err != nil {
		return fmt.Errorf("failed to scan resolved config into target: %w", err)
	}
	return nil
}
