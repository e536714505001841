// File: confmerge/source_test.go
package confmerge

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itemSnapshot(t *testing.T, opts map[string]ItemOptions) []*ItemSpec {
	t.Helper()
	r := New()
	for name, o := range opts {
		_, err := r.RegisterItem(name, o)
		require.NoError(t, err)
	}
	return r.Items()
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// TestMapSource tests key matching and presence substitution
func TestMapSource(t *testing.T) {
	items := itemSnapshot(t, map[string]ItemOptions{
		"host":    {},
		"tags":    {Action: Append},
		"verbose": {Action: Count},
		"force":   {Action: StoreTrue},
		"missing": {},
	})

	source := NewMapSource(items, map[string]any{
		"host":    "example.com",
		"tags":    "a",
		"verbose": "whatever",
		"force":   nil,
		"unknown": "ignored",
	})

	batch, err := source.ParseRaw()
	require.NoError(t, err)

	assert.Equal(t, []any{"example.com"}, batch["host"])
	assert.Equal(t, []any{"a"}, batch["tags"])
	// Presence-only actions never see the mapped content.
	assert.Equal(t, []any{Presence}, batch["verbose"])
	assert.Equal(t, []any{Presence}, batch["force"])
	// Unmatched keys and unseen items contribute nothing.
	assert.NotContains(t, batch, "unknown")
	assert.NotContains(t, batch, "missing")
}

// TestFileSourceOptions tests the Path/Reader exclusivity rule
func TestFileSourceOptions(t *testing.T) {
	items := itemSnapshot(t, map[string]ItemOptions{"c1": {}})

	t.Run("NeitherSet", func(t *testing.T) {
		_, err := NewJSONSource(items, FileSourceOptions{})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSourceConstruction)
	})

	t.Run("BothSet", func(t *testing.T) {
		_, err := NewJSONSource(items, FileSourceOptions{
			Path:   "x.json",
			Reader: strings.NewReader("{}"),
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSourceConstruction)
	})

	t.Run("MissingFile", func(t *testing.T) {
		source, err := NewJSONSource(items, FileSourceOptions{Path: filepath.Join(t.TempDir(), "absent.json")})
		require.NoError(t, err)
		_, err = source.ParseRaw()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config file")
	})
}

// TestJSONSource tests decoding and number handling
func TestJSONSource(t *testing.T) {
	items := itemSnapshot(t, map[string]ItemOptions{
		"host": {},
		"port": {Type: CoerceInt},
		"seen": {Action: StoreTrue},
	})

	t.Run("FromReader", func(t *testing.T) {
		source, err := NewJSONSource(items, FileSourceOptions{
			Reader: strings.NewReader(`{"host": "h", "port": 8080, "seen": false, "extra": 1}`),
		})
		require.NoError(t, err)

		batch, err := source.ParseRaw()
		require.NoError(t, err)
		assert.Equal(t, []any{"h"}, batch["host"])
		// Numbers arrive as json.Number so precision survives.
		assert.Equal(t, []any{json.Number("8080")}, batch["port"])
		// Presence-only items register presence regardless of the JSON value.
		assert.Equal(t, []any{Presence}, batch["seen"])
		assert.NotContains(t, batch, "extra")
	})

	t.Run("FromPath", func(t *testing.T) {
		path := writeTempFile(t, "config.json", `{"host": "filed"}`)
		source, err := NewJSONSource(items, FileSourceOptions{Path: path})
		require.NoError(t, err)

		batch, err := source.ParseRaw()
		require.NoError(t, err)
		assert.Equal(t, []any{"filed"}, batch["host"])
	})

	t.Run("MalformedDocument", func(t *testing.T) {
		source, err := NewJSONSource(items, FileSourceOptions{Reader: strings.NewReader("[1, 2]")})
		require.NoError(t, err)
		_, err = source.ParseRaw()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse JSON")
	})

	t.Run("CachedAcrossCalls", func(t *testing.T) {
		// The reader is drained on first parse; the cached batch must be
		// returned on later calls.
		source, err := NewJSONSource(items, FileSourceOptions{
			Reader: strings.NewReader(`{"host": "once"}`),
		})
		require.NoError(t, err)

		first, err := source.ParseRaw()
		require.NoError(t, err)
		second, err := source.ParseRaw()
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

// TestTOMLSource tests decoding of a TOML document
func TestTOMLSource(t *testing.T) {
	items := itemSnapshot(t, map[string]ItemOptions{
		"host": {},
		"port": {Type: CoerceInt},
	})
	path := writeTempFile(t, "config.toml", "host = \"tomled\"\nport = 9000\n")

	source, err := NewTOMLSource(items, FileSourceOptions{Path: path})
	require.NoError(t, err)

	batch, err := source.ParseRaw()
	require.NoError(t, err)
	assert.Equal(t, []any{"tomled"}, batch["host"])
	assert.Equal(t, []any{int64(9000)}, batch["port"])
}

// TestYAMLSource tests decoding of a YAML document
func TestYAMLSource(t *testing.T) {
	items := itemSnapshot(t, map[string]ItemOptions{
		"host": {},
		"port": {Type: CoerceInt},
	})
	path := writeTempFile(t, "config.yaml", "host: yamled\nport: 7000\n")

	source, err := NewYAMLSource(items, FileSourceOptions{Path: path})
	require.NoError(t, err)

	batch, err := source.ParseRaw()
	require.NoError(t, err)
	assert.Equal(t, []any{"yamled"}, batch["host"])
	assert.Equal(t, []any{7000}, batch["port"])
}

// TestFileSourcesThroughResolver tests the resolver-level file helpers end
// to end
func TestFileSourcesThroughResolver(t *testing.T) {
	jsonPath := writeTempFile(t, "base.json", `{"host": "json-host", "port": 1}`)
	tomlPath := writeTempFile(t, "override.toml", "port = 2\n")
	yamlPath := writeTempFile(t, "final.yaml", "tag: y\n")

	r := New()
	r.MustRegisterItem("host", ItemOptions{})
	r.MustRegisterItem("port", ItemOptions{Type: CoerceInt})
	r.MustRegisterItem("tag", ItemOptions{Action: Append})

	_, err := r.AddJSONFile(jsonPath)
	require.NoError(t, err)
	_, err = r.AddTOMLFile(tomlPath)
	require.NoError(t, err)
	_, err = r.AddYAMLFile(yamlPath)
	require.NoError(t, err)

	ns, err := r.Resolve()
	require.NoError(t, err)
	v, _ := ns.Get("host")
	assert.Equal(t, "json-host", v)
	v, _ = ns.Get("port")
	assert.Equal(t, 2, v)
	v, _ = ns.Get("tag")
	assert.Equal(t, []any{"y"}, v)
}
