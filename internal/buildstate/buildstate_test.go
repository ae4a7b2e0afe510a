package buildstate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordMatches(t *testing.T) {
	rec := &Record{
		Files:     map[string]string{"a.js": "1", "b.js": "2"},
		Arguments: []string{"--prod"},
	}

	testCases := []struct {
		name  string
		files map[string]string
		args  []string
		want  bool
	}{
		{"identical", map[string]string{"a.js": "1", "b.js": "2"}, []string{"--prod"}, true},
		{"changed hash", map[string]string{"a.js": "1", "b.js": "3"}, []string{"--prod"}, false},
		{"added file", map[string]string{"a.js": "1", "b.js": "2", "c.js": "4"}, []string{"--prod"}, false},
		{"removed file", map[string]string{"a.js": "1"}, []string{"--prod"}, false},
		{"renamed file", map[string]string{"a.js": "1", "z.js": "2"}, []string{"--prod"}, false},
		{"different args", map[string]string{"a.js": "1", "b.js": "2"}, []string{"--dev"}, false},
		{"no args", map[string]string{"a.js": "1", "b.js": "2"}, nil, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, rec.Matches(tc.files, tc.args))
		})
	}

	t.Run("nil record", func(t *testing.T) {
		var none *Record
		assert.False(t, none.Matches(map[string]string{}, nil))
	})

	t.Run("nil and empty args are equal", func(t *testing.T) {
		r := &Record{Files: map[string]string{}, Arguments: []string{}}
		assert.True(t, r.Matches(map[string]string{}, nil))
	})
}

func TestIsStatePath(t *testing.T) {
	assert.True(t, IsStatePath(".taskgrid/temp"))
	assert.True(t, IsStatePath(".taskgrid/temp/package-deps_build.yaml"))
	assert.True(t, IsStatePath(".taskgrid/temp/package-deps_build.yaml.tmp"))
	assert.False(t, IsStatePath(".taskgrid/temporary.txt"))
	assert.False(t, IsStatePath("src/.taskgrid/temp/x"))
	assert.False(t, IsStatePath("index.js"))
}

func TestFileStore(t *testing.T) {
	project := t.TempDir()
	store := FileStore{}

	rec, err := store.Load(project, "build")
	require.NoError(t, err)
	assert.Nil(t, rec, "missing record loads as nil")

	want := &Record{
		Files:     map[string]string{"src/index.js": "abc"},
		Arguments: []string{"--verbose"},
	}
	require.NoError(t, store.Save(project, "build", want))
	assert.FileExists(t, filepath.Join(project, ".taskgrid", "temp", "package-deps_build.yaml"))

	got, err := store.Load(project, "build")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	other, err := store.Load(project, "test")
	require.NoError(t, err)
	assert.Nil(t, other, "records are per command")

	require.NoError(t, store.Invalidate(project, "build"))
	gone, err := store.Load(project, "build")
	require.NoError(t, err)
	assert.Nil(t, gone)

	require.NoError(t, store.Invalidate(project, "build"), "invalidating twice is fine")
}

func TestFileStore_Corrupt(t *testing.T) {
	project := t.TempDir()
	store := FileStore{}
	path := store.Path(project, "build")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("files: [unclosed"), 0o644))

	_, err := store.Load(project, "build")
	assert.ErrorContains(t, err, "parse build record")
}
