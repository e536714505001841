// File: confmerge/source.go
package confmerge

// Source produces the raw, uncoerced values one external medium holds for
// the items it was bound to. A source is bound at registration to a copy of
// the items known at that time; items registered later are invisible to it.
//
// ParseRaw is called once per resolution pass. Implementations may compute
// lazily or cache, but must return the same content if queried again within
// a pass. Values must not be coerced; coercion is the item rule's job.
type Source interface {
	ParseRaw() (RawBatch, error)
}

// SourceFactory builds a Source bound to the given item snapshot. Used with
// Resolver.AddSource.
type SourceFactory func(items []*ItemSpec) (Source, error)

// MapSource obtains raw values from a key-value mapping the host program
// constructed directly. The mapping's medium is the caller's business: a
// parsed config file, hard-coded overrides, anything.
//
// For every bound item whose name is a key, the source contributes a
// one-element raw list with the mapped value. Presence-only items (the
// const-family and Count actions) contribute the Presence marker instead;
// the mapped value's content is irrelevant to them.
type MapSource struct {
	items  []*ItemSpec
	values map[string]any
}

// NewMapSource creates a MapSource over values for the given item snapshot.
// Prefer Resolver.AddMap, which supplies the snapshot.
func NewMapSource(items []*ItemSpec, values map[string]any) *MapSource {
	return &MapSource{items: items, values: values}
}

// ParseRaw implements Source.
func (s *MapSource) ParseRaw() (RawBatch, error) {
	batch := make(RawBatch)
	for _, item := range s.items {
		value, ok := s.values[item.Name()]
		if !ok {
			continue
		}
		if !item.Action().takesValue() {
			value = Presence
		}
		batch[item.Name()] = []any{value}
	}
	return batch, nil
}
