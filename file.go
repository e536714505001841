// File: confmerge/file.go
package confmerge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// FileSourceOptions locates the document a file-backed source reads.
// Exactly one of Path and Reader must be set; anything else fails
// construction with ErrSourceConstruction.
type FileSourceOptions struct {
	// Path of the file to read.
	Path string

	// Reader holding an already-open document stream.
	Reader io.Reader
}

func (o FileSourceOptions) validate(kind string) error {
	if o.Path != "" && o.Reader != nil {
		return fmt.Errorf("%w: %s source's Path and Reader options were both specified but only one is expected", ErrSourceConstruction, kind)
	}
	if o.Path == "" && o.Reader == nil {
		return fmt.Errorf("%w: %s source requires one of the Path and Reader options", ErrSourceConstruction, kind)
	}
	return nil
}

func (o FileSourceOptions) read() ([]byte, error) {
	if o.Path != "" {
		data, err := os.ReadFile(o.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", o.Path, err)
		}
		return data, nil
	}
	data, err := io.ReadAll(o.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read config stream: %w", err)
	}
	return data, nil
}

// fileSource is the shared body of the document-backed sources: read the
// document once, decode it to a flat key-value mapping, then contribute raw
// values by the MapSource rule.
type fileSource struct {
	items  []*ItemSpec
	opts   FileSourceOptions
	decode func(data []byte) (map[string]any, error)
	batch  RawBatch
	loaded bool
}

// ParseRaw implements Source. The document is read and decoded on the first
// call; later calls within a pass reuse the result.
func (s *fileSource) ParseRaw() (RawBatch, error) {
	if s.loaded {
		return s.batch, nil
	}
	data, err := s.opts.read()
	if err != nil {
		return nil, err
	}
	values, err := s.decode(data)
	if err != nil {
		return nil, err
	}
	batch, err := NewMapSource(s.items, values).ParseRaw()
	if err != nil {
		return nil, err
	}
	s.batch = batch
	s.loaded = true
	return s.batch, nil
}

// JSONSource obtains raw values from a document holding a single top-level
// JSON object. Keys matching bound item names are read, other keys are
// ignored. Values are handed to the item's coercion as decoded: numbers as
// json.Number, nested structures as-is.
type JSONSource struct {
	fileSource
}

// NewJSONSource creates a JSONSource. Prefer Resolver.AddJSONFile or
// Resolver.AddJSON, which supply the item snapshot.
func NewJSONSource(items []*ItemSpec, opts FileSourceOptions) (*JSONSource, error) {
	if err := opts.validate("JSON"); err != nil {
		return nil, err
	}
	return &JSONSource{fileSource{
		items:  items,
		opts:   opts,
		decode: decodeJSONDocument,
	}}, nil
}

func decodeJSONDocument(data []byte) (map[string]any, error) {
	values := make(map[string]any)
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber() // Preserve number precision
	if err := decoder.Decode(&values); err != nil {
		return nil, fmt.Errorf("failed to parse JSON config document: %w", err)
	}
	return values, nil
}

// TOMLSource obtains raw values from a TOML document, reading top-level
// keys by the same rule as JSONSource.
type TOMLSource struct {
	fileSource
}

// NewTOMLSource creates a TOMLSource. Prefer Resolver.AddTOMLFile.
func NewTOMLSource(items []*ItemSpec, opts FileSourceOptions) (*TOMLSource, error) {
	if err := opts.validate("TOML"); err != nil {
		return nil, err
	}
	return &TOMLSource{fileSource{
		items:  items,
		opts:   opts,
		decode: decodeTOMLDocument,
	}}, nil
}

func decodeTOMLDocument(data []byte) (map[string]any, error) {
	values := make(map[string]any)
	if err := toml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse TOML config document: %w", err)
	}
	return values, nil
}

// YAMLSource obtains raw values from a YAML document, reading top-level
// keys by the same rule as JSONSource.
type YAMLSource struct {
	fileSource
}

// NewYAMLSource creates a YAMLSource. Prefer Resolver.AddYAMLFile.
func NewYAMLSource(items []*ItemSpec, opts FileSourceOptions) (*YAMLSource, error) {
	if err := opts.validate("YAML"); err != nil {
		return nil, err
	}
	return &YAMLSource{fileSource{
		items:  items,
		opts:   opts,
		decode: decodeYAMLDocument,
	}}, nil
}

func decodeYAMLDocument(data []byte) (map[string]any, error) {
	values := make(map[string]any)
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config document: %w", err)
	}
	return values, nil
}
