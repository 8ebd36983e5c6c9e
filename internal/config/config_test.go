package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracewire/usdtgen/internal/probe"
)

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
out: gen/usdt
package: probes
go_bindings: true
case_folding_abi: true
encodings:
  time.Duration: int64
  os.FileMode: uint32
`))
	require.NoError(t, err)

	assert.Equal(t, "gen/usdt", cfg.Out)
	assert.Equal(t, "probes", cfg.Package)
	assert.True(t, cfg.GoBindings)
	assert.False(t, cfg.Profile().CaseSensitive)
	assert.Equal(t, probe.TypeInt64, cfg.Encodings["time.Duration"])
	assert.Equal(t, probe.TypeUint32, cfg.Encodings["os.FileMode"])
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte("{}"))
	require.NoError(t, err)

	assert.Equal(t, ".", cfg.Out)
	assert.Equal(t, "usdt", cfg.Package)
	assert.True(t, cfg.Profile().CaseSensitive)
}

func TestParseRejectsUnknownEncoding(t *testing.T) {
	_, err := Parse([]byte("encodings:\n  time.Duration: float64\n"))
	require.Error(t, err)
}

func TestParseRejectsBadPackage(t *testing.T) {
	_, err := Parse([]byte("package: my-probes\n"))
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "usdtgen.yaml")
	require.NoError(t, os.WriteFile(path, []byte("out: build\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "build", cfg.Out)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err, "explicitly named missing config must fail")
}
