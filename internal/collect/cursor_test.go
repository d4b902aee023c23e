package collect

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorStore_MissingFile(t *testing.T) {
	c := NewCursorStore(filepath.Join(t.TempDir(), "state", "cursors.json"))

	_, ok, err := c.Get("whatsapp")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCursorStore_SetAndGet(t *testing.T) {
	c := NewCursorStore(filepath.Join(t.TempDir(), "state", "cursors.json"))
	ts := time.Date(2026, 8, 20, 10, 30, 0, 0, time.UTC)

	require.NoError(t, c.Set("whatsapp", ts))

	got, ok, err := c.Get("whatsapp")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, got.Equal(ts))
}

func TestCursorStore_PerSourceIsolation(t *testing.T) {
	c := NewCursorStore(filepath.Join(t.TempDir(), "cursors.json"))
	waTS := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	gmailTS := time.Date(2026, 8, 19, 8, 0, 0, 0, time.UTC)

	require.NoError(t, c.Set("whatsapp", waTS))
	require.NoError(t, c.Set("gmail", gmailTS))

	got, ok, err := c.Get("whatsapp")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, got.Equal(waTS))

	got, ok, err = c.Get("gmail")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, got.Equal(gmailTS))
}

func TestCursorStore_Overwrite(t *testing.T) {
	c := NewCursorStore(filepath.Join(t.TempDir(), "cursors.json"))
	first := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	second := first.Add(30 * time.Minute)

	require.NoError(t, c.Set("whatsapp", first))
	require.NoError(t, c.Set("whatsapp", second))

	got, _, err := c.Get("whatsapp")
	require.NoError(t, err)
	assert.True(t, got.Equal(second))
}
