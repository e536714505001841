// File: confmerge/builder_test.go
package confmerge

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBuilderResolve tests declaring items and sources in one chain
func TestBuilderResolve(t *testing.T) {
	ns, err := NewBuilder().
		AddItem("log_level", ItemOptions{
			Choices: []any{"debug", "info", "warn", "error"},
			Default: Present("info"),
		}).
		AddItem("port", ItemOptions{Type: CoerceInt, Required: true}).
		AddItem("verbose", ItemOptions{Action: Count}).
		WithJSON(strings.NewReader(`{"port": 8080}`)).
		WithCommandLine([]string{"--verbose", "--log-level", "debug"}).
		Resolve()
	require.NoError(t, err)

	level, err := ns.String("log_level")
	require.NoError(t, err)
	assert.Equal(t, "debug", level)

	port, err := ns.Int64("port")
	require.NoError(t, err)
	assert.Equal(t, int64(8080), port)

	v, _ := ns.Get("verbose")
	assert.Equal(t, 1, v)
}

// TestBuilderReplayOrder tests that declarations replay in call order, so
// snapshot binding matches the chain
func TestBuilderReplayOrder(t *testing.T) {
	ns, err := NewBuilder().
		AddItem("a", ItemOptions{}).
		WithMap(map[string]any{"a": "1", "b": "early"}).
		AddItem("b", ItemOptions{}).
		WithMap(map[string]any{"b": "late"}).
		Resolve()
	require.NoError(t, err)

	v, _ := ns.Get("a")
	assert.Equal(t, "1", v)
	v, _ = ns.Get("b")
	assert.Equal(t, "late", v)
}

// TestBuilderRegistrationError tests that bad declarations fail the chain
func TestBuilderRegistrationError(t *testing.T) {
	_, err := NewBuilder().
		AddItem("bad-name", ItemOptions{}).
		Resolve()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = NewBuilder().
		AddItem("dup", ItemOptions{}).
		AddItem("dup", ItemOptions{}).
		Build()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateItem)
}

// TestBuilderOptions tests the policy helpers
func TestBuilderOptions(t *testing.T) {
	t.Run("GlobalDefault", func(t *testing.T) {
		ns, err := NewBuilder().
			WithGlobalDefault("unset").
			AddItem("a", ItemOptions{}).
			Resolve()
		require.NoError(t, err)
		v, _ := ns.Get("a")
		assert.Equal(t, "unset", v)
	})

	t.Run("SuppressMissing", func(t *testing.T) {
		ns, err := NewBuilder().
			SuppressMissing().
			AddItem("a", ItemOptions{}).
			Resolve()
		require.NoError(t, err)
		assert.False(t, ns.Has("a"))
	})
}

// TestBuilderValidators tests post-resolution validation hooks
func TestBuilderValidators(t *testing.T) {
	base := func() *Builder {
		return NewBuilder().
			AddItem("port", ItemOptions{Type: CoerceInt}).
			WithMap(map[string]any{"port": "70000"})
	}

	portRange := func(ns *Namespace) error {
		port, err := ns.Int64("port")
		if err != nil {
			return err
		}
		if port < 1 || port > 65535 {
			return fmt.Errorf("port %d out of range", port)
		}
		return nil
	}

	t.Run("ValidatorFailure", func(t *testing.T) {
		_, err := base().WithValidator(portRange).Resolve()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration validation failed")
		assert.Contains(t, err.Error(), "out of range")
	})

	t.Run("ValidatorSuccess", func(t *testing.T) {
		ns, err := NewBuilder().
			AddItem("port", ItemOptions{Type: CoerceInt}).
			WithMap(map[string]any{"port": "8080"}).
			WithValidator(portRange).
			Resolve()
		require.NoError(t, err)
		require.NotNil(t, ns)
	})

	t.Run("ValidatorsRunInOrder", func(t *testing.T) {
		var ran []string
		_, err := base().
			WithValidator(func(*Namespace) error {
				ran = append(ran, "first")
				return nil
			}).
			WithValidator(func(*Namespace) error {
				ran = append(ran, "second")
				return errors.New("stop here")
			}).
			WithValidator(func(*Namespace) error {
				ran = append(ran, "third")
				return nil
			}).
			Resolve()
		require.Error(t, err)
		assert.Equal(t, []string{"first", "second"}, ran)
	})
}

// TestBuilderCustomSource tests wiring an arbitrary SourceFactory
func TestBuilderCustomSource(t *testing.T) {
	ns, err := NewBuilder().
		AddItem("tags", ItemOptions{Action: Append}).
		WithSource(func(items []*ItemSpec) (Source, error) {
			return &stubSource{batch: RawBatch{"tags": {"x", "y"}}}, nil
		}).
		Resolve()
	require.NoError(t, err)
	v, _ := ns.Get("tags")
	assert.Equal(t, []any{"x", "y"}, v)
}

// TestBuilderResolveAndScan tests the one-shot decode helper
func TestBuilderResolveAndScan(t *testing.T) {
	type appConfig struct {
		Host    string `config:"host"`
		Workers int    `config:"workers"`
	}

	var cfg appConfig
	err := NewBuilder().
		SuppressMissing().
		AddItem("host", ItemOptions{Default: Present("localhost")}).
		AddItem("workers", ItemOptions{Type: CoerceInt}).
		WithMap(map[string]any{"workers": "8"}).
		ResolveAndScan(&cfg)
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 8, cfg.Workers)
}

// TestBuilderReusable tests that Build produces independent resolvers
func TestBuilderReusable(t *testing.T) {
	b := NewBuilder().
		AddItem("a", ItemOptions{Default: Present("d")})

	r1, err := b.Build()
	require.NoError(t, err)
	r2, err := b.Build()
	require.NoError(t, err)

	// Extending one resolver must not leak into the other.
	r1.MustRegisterItem("extra", ItemOptions{})
	assert.Len(t, r1.Items(), 2)
	assert.Len(t, r2.Items(), 1)
}
