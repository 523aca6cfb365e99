package storage

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestObjectStore_PutOpenDelete round-trips an object through the store.
func TestObjectStore_PutOpenDelete(t *testing.T) {
	store, err := NewObjectStore(t.TempDir())
	require.NoError(t, err)

	path, err := store.Path("member-1", "club", "notes.txt")
	require.NoError(t, err)

	n, err := store.Put(path, strings.NewReader("session notes"))
	require.NoError(t, err)
	assert.Equal(t, int64(len("session notes")), n)

	reader, err := store.Open(path)
	require.NoError(t, err)
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.NoError(t, reader.Close())
	assert.Equal(t, "session notes", string(data))

	require.NoError(t, store.Delete(path))
	_, err = store.Open(path)
	assert.Error(t, err)

	// Deleting a missing object stays quiet.
	assert.NoError(t, store.Delete(path))
}

// TestObjectStore_PathValidation refuses segments that could climb out of
// the root.
func TestObjectStore_PathValidation(t *testing.T) {
	store, err := NewObjectStore(t.TempDir())
	require.NoError(t, err)

	bad := [][3]string{
		{"..", "club", "f.txt"},
		{"member-1", ".", "f.txt"},
		{"member-1", "club", ".."},
		{"member-1", "club", "a/b.txt"},
		{"member-1", "club", `a\b.txt`},
		{"", "club", "f.txt"},
		{"member-1", "", "f.txt"},
	}
	for _, segments := range bad {
		_, err := store.Path(segments[0], segments[1], segments[2])
		assert.ErrorIs(t, err, ErrInvalidStorePath, "segments %v", segments)
	}
}
