package slots

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissingFileIsEmpty(t *testing.T) {
	c := NewCatalog(filepath.Join(t.TempDir(), "data", "slots.json"))

	times, err := c.ForDate("2026-10-20")
	require.NoError(t, err)
	assert.Empty(t, times)

	all, err := c.All()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSetThenRead(t *testing.T) {
	c := NewCatalog(filepath.Join(t.TempDir(), "data", "slots.json"))

	require.NoError(t, c.Set("2026-10-20", []string{"09:00", "11:30"}))
	require.NoError(t, c.Set("2026-10-21", []string{"16:00"}))
	require.NoError(t, c.Set("2026-10-20", []string{"10:00"}))

	times, err := c.ForDate("2026-10-20")
	require.NoError(t, err)
	assert.Equal(t, []string{"10:00"}, times)

	all, err := c.All()
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"2026-10-20": {"10:00"},
		"2026-10-21": {"16:00"},
	}, all)
}

func TestReadsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slots.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"2026.10.22":["08:00","12:00"],"2026-10-23":[]}`), 0o644))
	c := NewCatalog(path)

	times, err := c.ForDate("2026.10.22")
	require.NoError(t, err)
	assert.Equal(t, []string{"08:00", "12:00"}, times)

	times, err = c.ForDate("2026-10-23")
	require.NoError(t, err)
	assert.Empty(t, times)
}

func TestSetRequiresDate(t *testing.T) {
	c := NewCatalog(filepath.Join(t.TempDir(), "slots.json"))
	require.Error(t, c.Set("  ", []string{"09:00"}))
}

func TestInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slots.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))
	c := NewCatalog(path)

	_, err := c.ForDate("2026-10-20")
	require.Error(t, err)
	require.Error(t, c.Set("2026-10-20", nil))
}
