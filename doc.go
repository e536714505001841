// File: confmerge/doc.go

// Package confmerge merges configuration values for a fixed set of named
// items from multiple heterogeneous sources: command-line flags, JSON, TOML
// or YAML documents, and in-memory mappings. Each item declares how values
// from successive sources combine (store, store_const, store_true,
// store_false, append, count), how raw values are coerced and validated
// against permitted choices, and what its fallback is when no source
// provides a value.
//
// Features:
//   - Per-item accumulation actions with consistent cross-source semantics
//   - Caller-supplied type coercion, validated at registration
//   - Item-level defaults that compose with append and count accumulation
//   - Required-item enforcement, separable from the merge itself
//   - Three-way policy for unset items: explicit nil, fallback value, or
//     suppression
//   - Builder pattern for easy initialization
//   - Struct decoding of results via mapstructure
//
// Quick Start:
//
//	ns, err := confmerge.NewBuilder().
//	    AddItem("log_level", confmerge.ItemOptions{
//	        Choices: []any{"debug", "info", "warn", "error"},
//	        Default: confmerge.Present("info"),
//	    }).
//	    AddItem("verbose", confmerge.ItemOptions{Action: confmerge.Count}).
//	    AddItem("port", confmerge.ItemOptions{Type: confmerge.CoerceInt, Required: true}).
//	    WithJSONFile("config.json").
//	    WithCommandLine(os.Args[1:]).
//	    Resolve()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	level, _ := ns.String("log_level")
//	port, _ := ns.Int64("port")
//
// Precedence is source registration order: sources added later override
// (store) or extend (append, count) values from sources added earlier.
// Each source is bound to the items declared before it was added; items
// declared later are invisible to it.
//
// The parse pipeline is synchronous and single-threaded. A Resolver is not
// safe for concurrent use.
package confmerge
