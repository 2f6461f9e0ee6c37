package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/crewsched/core/model"
)

func TestEmbeddedInstances(t *testing.T) {
	assert.Equal(t, []string{"large", "medium", "small"}, Instances())

	sizes := map[string]int{"small": 17, "medium": 48, "large": 79}
	for name, n := range sizes {
		cat, err := EmbeddedSource{Name: name}.Load(context.Background())
		require.NoError(t, err, name)
		assert.Equal(t, name, cat.Name)
		assert.Len(t, cat.Shifts, n)
		for _, s := range cat.Shifts {
			assert.Equal(t, model.FormatMinute(s.StartMinute), s.DisplayStart, "%s/%s", name, s.Label)
		}
	}

	_, err := EmbeddedSource{Name: "huge"}.Load(context.Background())
	assert.ErrorIs(t, err, ErrUnknownInstance)
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "depot.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`shifts:
  - {start: "05:00", end: "06:20", driving_minutes: 80}
  - {label: late, start_minute: 1380, end_minute: 1470, driving_minutes: 90}
`), 0o644))
	cat, err := FileSource{Path: yamlPath}.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "depot", cat.Name)
	require.Len(t, cat.Shifts, 2)
	assert.Equal(t, "0", cat.Shifts[0].Label)
	assert.Equal(t, 300, cat.Shifts[0].StartMinute)
	assert.Equal(t, 380, cat.Shifts[0].EndMinute)
	assert.Equal(t, "24:30", cat.Shifts[1].DisplayEnd)

	jsonPath := filepath.Join(dir, "night.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"name":"night","shifts":[{"label":"n1","start_minute":60,"end_minute":120,"driving_minutes":50}]}`), 0o644))
	cat, err = FileSource{Path: jsonPath}.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "night", cat.Name)
	assert.Equal(t, "01:00", cat.Shifts[0].DisplayStart)

	badPath := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(badPath, []byte(`shifts:
  - {label: x, start_minute: 100, end_minute: 50, driving_minutes: 10}
`), 0o644))
	_, err = FileSource{Path: badPath}.Load(context.Background())
	assert.ErrorIs(t, err, model.ErrInvalidShift)

	emptyPath := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(emptyPath, []byte("name: empty\n"), 0o644))
	_, err = FileSource{Path: emptyPath}.Load(context.Background())
	assert.ErrorIs(t, err, model.ErrEmptyCatalog)

	_, err = FileSource{Path: filepath.Join(dir, "missing.yaml")}.Load(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteRoundTrip(t *testing.T) {
	cat, err := EmbeddedSource{Name: "small"}.Load(context.Background())
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "small.yaml")
	require.NoError(t, Write(path, cat))

	back, err := FileSource{Path: path}.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cat, back)
}

func TestParseMinute(t *testing.T) {
	for in, want := range map[string]int{"00:00": 0, "05:07": 307, "24:30": 1470, " 9:05 ": 545} {
		got, err := ParseMinute(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"", "0500", "05:60", "aa:10", "-1:00"} {
		_, err := ParseMinute(in)
		assert.ErrorIs(t, err, model.ErrInvalidShift, in)
	}
}

func TestConfig(t *testing.T) {
	var c Config
	c.SetDefaults()
	assert.Equal(t, "small", c.Instance)
	require.NoError(t, c.Validate())
	assert.IsType(t, EmbeddedSource{}, NewSource(c))

	c.Instance = "huge"
	assert.ErrorIs(t, c.Validate(), ErrUnknownInstance)

	c = Config{PostgresDSN: "postgres://x"}
	assert.Error(t, c.Validate())
	c.Name = "depot"
	require.NoError(t, c.Validate())
	assert.IsType(t, &PostgresSource{}, NewSource(c))

	c.File = "depot.yaml"
	assert.Equal(t, FileSource{Path: "depot.yaml"}, NewSource(c))
}
