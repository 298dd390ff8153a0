package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "brain")

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.DirExists(t, dir)
	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
	_, ok := store.Get("anything")
	assert.False(t, ok)
}

func TestConfigStore_ReadsNestedTables(t *testing.T) {
	dir := t.TempDir()
	content := `
[identity]
name = "Alex"
aliases = ["AJ", "Alexander"]

[llm]
provider = "anthropic"
requests_per_minute = 30

[pipeline]
extract_timeout = "45s"
decode_timeout = 120

[dates]
strict_window = true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "Alex", store.GetString("identity.name"))
	assert.Equal(t, []string{"AJ", "Alexander"}, store.GetStringSlice("identity.aliases"))
	assert.Equal(t, "anthropic", store.GetString("llm.provider"))
	assert.Equal(t, 30, store.GetInt("llm.requests_per_minute"))
	assert.Equal(t, 45*time.Second, store.GetDuration("pipeline.extract_timeout"))
	assert.Equal(t, 2*time.Minute, store.GetDuration("pipeline.decode_timeout"))
	assert.True(t, store.GetBool("dates.strict_window"))
}

func TestConfigStore_CommaSeparatedAliases(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"),
		[]byte("[identity]\naliases = \"AJ, Alexander ,\"\n"), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"AJ", "Alexander"}, store.GetStringSlice("identity.aliases"))
}

func TestConfigStore_SetPersistsAsTables(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("llm.provider", "ollama"))
	require.NoError(t, store.Set("llm.model", "llama3.2"))
	require.NoError(t, store.Set("identity.aliases", []string{"AJ"}))
	require.NoError(t, store.Set("upload.max_bytes", 1024))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[llm]")
	assert.NotContains(t, string(raw), "'llm.provider'")

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "ollama", reopened.GetString("llm.provider"))
	assert.Equal(t, "llama3.2", reopened.GetString("llm.model"))
	assert.Equal(t, []string{"AJ"}, reopened.GetStringSlice("identity.aliases"))
	assert.Equal(t, 1024, reopened.GetInt("upload.max_bytes"))
}

func TestConfigStore_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[llm\nprovider="), 0600))

	_, err := NewConfigStore(dir)
	assert.Error(t, err)
}

func TestConfigStore_WrongTypes(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("k", true))

	assert.Empty(t, store.GetString("k"))
	assert.Zero(t, store.GetInt("k"))
	assert.Nil(t, store.GetStringSlice("k"))
	assert.Zero(t, store.GetDuration("k"))
}

func TestFlattenAndNest(t *testing.T) {
	nested := map[string]any{
		"llm":  map[string]any{"provider": "openai", "opts": map[string]any{"deep": int64(1)}},
		"root": "x",
	}
	flat := flattenMap(nested, "")
	assert.Equal(t, map[string]any{
		"llm.provider":  "openai",
		"llm.opts.deep": int64(1),
		"root":          "x",
	}, flat)
	assert.Equal(t, nested, nestMap(flat))
}
