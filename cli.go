// File: confmerge/cli.go
package confmerge

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// flagCollector gathers every occurrence of a value-taking flag in
// command-line order.
type flagCollector struct {
	raws *[]any
}

func (c *flagCollector) String() string { return "" }

func (c *flagCollector) Set(s string) error {
	*c.raws = append(*c.raws, s)
	return nil
}

// presenceCollector gathers occurrences of a zero-arity flag. The flag
// package hands Set a synthetic "true" for bare boolean flags; the content
// is discarded, only the mention counts.
type presenceCollector struct {
	raws *[]any
}

func (c *presenceCollector) String() string { return "" }

func (c *presenceCollector) Set(string) error {
	*c.raws = append(*c.raws, Presence)
	return nil
}

func (c *presenceCollector) IsBoolFlag() bool { return true }

// FlagSource obtains raw values from a caller-owned flag.FlagSet. It
// registers one long flag per bound item (underscores become dashes):
// value-taking for Store and Append, presence-only for the const-family and
// Count. The caller parses the FlagSet, typically alongside its own flags,
// before resolution runs.
//
// Use CommandLineSource instead when no extra flags are needed.
type FlagSource struct {
	items     []*ItemSpec
	fs        *flag.FlagSet
	collected map[string]*[]any
}

// NewFlagSource creates a FlagSource and registers the bound items' flags
// on fs.
func NewFlagSource(items []*ItemSpec, fs *flag.FlagSet) *FlagSource {
	s := &FlagSource{
		items:     items,
		fs:        fs,
		collected: make(map[string]*[]any),
	}
	for _, item := range items {
		flagName := itemFlagName(item.Name())
		raws := new([]any)
		s.collected[item.Name()] = raws
		switch item.Action() {
		case Store, Append:
			fs.Var(&flagCollector{raws: raws}, flagName, item.Help())
		case StoreConst, StoreTrue, StoreFalse, Count:
			fs.Var(&presenceCollector{raws: raws}, flagName, item.Help())
		default:
			// Shapes this adapter cannot express are left to other sources.
		}
	}
	return s
}

// FlagSet returns the underlying FlagSet.
func (s *FlagSource) FlagSet() *flag.FlagSet { return s.fs }

// ParseRaw implements Source. The FlagSet must have been parsed first.
func (s *FlagSource) ParseRaw() (RawBatch, error) {
	if !s.fs.Parsed() {
		return nil, fmt.Errorf("command-line flags have not been parsed")
	}
	batch := make(RawBatch)
	for _, item := range s.items {
		raws := s.collected[item.Name()]
		if raws == nil || len(*raws) == 0 {
			continue
		}
		batch[item.Name()] = *raws
	}
	return batch, nil
}

// CommandLineOptions configures a CommandLineSource.
type CommandLineOptions struct {
	// Args are the arguments to parse. Defaults to os.Args[1:].
	Args []string

	// Name is the FlagSet name used in usage output. Defaults to "config".
	Name string

	// ErrorHandling controls how the underlying FlagSet reacts to
	// unrecognized flags. Defaults to flag.ContinueOnError, surfacing the
	// parse error through resolution.
	ErrorHandling flag.ErrorHandling
}

// CommandLineSource obtains raw values from the command line using an owned
// flag.FlagSet. Extra flags unrelated to any item may still be added via
// FlagSet before resolution runs.
type CommandLineSource struct {
	flags  *FlagSource
	args   []string
	parsed bool
}

// NewCommandLineSource creates a CommandLineSource for the given item
// snapshot. Prefer Resolver.AddCommandLine, which supplies the snapshot.
func NewCommandLineSource(items []*ItemSpec, opts CommandLineOptions) *CommandLineSource {
	name := opts.Name
	if name == "" {
		name = "config"
	}
	args := opts.Args
	if args == nil {
		args = os.Args[1:]
	}
	fs := flag.NewFlagSet(name, opts.ErrorHandling)
	return &CommandLineSource{
		flags: NewFlagSource(items, fs),
		args:  args,
	}
}

// FlagSet returns the owned FlagSet for extra caller wiring. Flags must be
// added before the first resolution pass parses it.
func (s *CommandLineSource) FlagSet() *flag.FlagSet { return s.flags.FlagSet() }

// ParseRaw implements Source. The first call parses the arguments; later
// calls reuse the result.
func (s *CommandLineSource) ParseRaw() (RawBatch, error) {
	if !s.parsed {
		if err := s.flags.FlagSet().Parse(s.args); err != nil {
			return nil, fmt.Errorf("failed to parse command-line args: %w", err)
		}
		s.parsed = true
	}
	return s.flags.ParseRaw()
}

// itemFlagName maps an item name to its long flag name.
func itemFlagName(name string) string {
	return strings.ReplaceAll(name, "_", "-")
}
