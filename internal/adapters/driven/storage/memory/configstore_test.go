package memory

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_GetSet(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("llm.model", "gpt-4o"))
	require.NoError(t, store.Set("image.max_width", 1600))
	require.NoError(t, store.Set("dates.strict_window", true))

	assert.Equal(t, "gpt-4o", store.GetString("llm.model"))
	assert.Equal(t, 1600, store.GetInt("image.max_width"))
	assert.True(t, store.GetBool("dates.strict_window"))

	_, ok := store.Get("missing")
	assert.False(t, ok)
	assert.Empty(t, store.GetString("missing"))
	assert.Zero(t, store.GetInt("missing"))
	assert.False(t, store.GetBool("missing"))
}

func TestConfigStore_WrongTypesReturnZero(t *testing.T) {
	store := NewConfigStoreFrom(map[string]any{
		"a": 42,
		"b": "text",
	})

	assert.Empty(t, store.GetString("a"))
	assert.Zero(t, store.GetInt("b"))
	assert.False(t, store.GetBool("b"))
	assert.Zero(t, store.GetDuration("a"))
}

func TestConfigStore_GetInt_NumericKinds(t *testing.T) {
	store := NewConfigStoreFrom(map[string]any{
		"i64": int64(7),
		"f64": float64(9),
	})
	assert.Equal(t, 7, store.GetInt("i64"))
	assert.Equal(t, 9, store.GetInt("f64"))
}

func TestConfigStore_GetStringSlice(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  []string
	}{
		{"string slice", []string{"Alex", "AJ"}, []string{"Alex", "AJ"}},
		{"any slice", []any{"Alex", 3, "AJ"}, []string{"Alex", "AJ"}},
		{"comma string", " Alex , AJ,, ", []string{"Alex", "AJ"}},
		{"wrong type", 12, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewConfigStoreFrom(map[string]any{"k": tt.value})
			assert.Equal(t, tt.want, store.GetStringSlice("k"))
		})
	}
}

func TestConfigStore_GetDuration(t *testing.T) {
	store := NewConfigStoreFrom(map[string]any{
		"str":  "90s",
		"dur":  2 * time.Minute,
		"junk": "soon",
	})
	assert.Equal(t, 90*time.Second, store.GetDuration("str"))
	assert.Equal(t, 2*time.Minute, store.GetDuration("dur"))
	assert.Zero(t, store.GetDuration("junk"))
	assert.Zero(t, store.GetDuration("missing"))
}

func TestConfigStore_NoOps(t *testing.T) {
	store := NewConfigStore()
	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := NewConfigStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("counter", n)
		}(i)
		go func() {
			defer wg.Done()
			_ = store.GetInt("counter")
		}()
	}
	wg.Wait()

	_, ok := store.Get("counter")
	assert.True(t, ok)
}
