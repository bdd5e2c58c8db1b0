package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/haggle/internal/ports"
)

const classifierKey = "haggle/classifier/api_key"

func TestStoreRejectsInvalidKeys(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	testCases := []struct {
		name    string
		key     string
		wantErr string
	}{
		{name: "empty", key: "", wantErr: "secret key is empty"},
		{name: "whitespace", key: "   ", wantErr: "secret key is empty"},
		{name: "absolute", key: "/absolute/path", wantErr: "invalid secret key"},
		{name: "traversal", key: "../escape", wantErr: "invalid secret key"},
		{name: "deep traversal", key: "../../secret", wantErr: "invalid secret key"},
		{name: "parent", key: "..", wantErr: "invalid secret key"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := store.Put(context.Background(), tc.key, "value")
			require.Error(t, err)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestStoreAllowsDotPrefixedNames(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	require.NoError(t, store.Put(context.Background(), "..cache/key", "v"))
}

func TestStorePutGetRoundTripAndPermissions(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := NewStore(root)

	require.NoError(t, store.Put(context.Background(), classifierKey, "first"))
	require.NoError(t, store.Put(context.Background(), classifierKey, "top-secret"))

	got, err := store.Get(context.Background(), classifierKey)
	require.NoError(t, err)
	assert.Equal(t, "top-secret", got)

	secretPath := filepath.Join(root, classifierKey)
	info, err := os.Stat(secretPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(secretFileMod), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(secretPath))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStoreGetTrimsTrailingNewline(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := filepath.Join(root, "haggle", "key")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte("hand-edited\n"), 0o600))

	got, err := NewStore(root).Get(context.Background(), "haggle/key")
	require.NoError(t, err)
	assert.Equal(t, "hand-edited", got)
}

func TestStoreGetMissingSecret(t *testing.T) {
	t.Parallel()

	_, err := NewStore(t.TempDir()).Get(context.Background(), classifierKey)
	require.ErrorIs(t, err, ports.ErrSecretNotFound)
}

func TestStoreDeleteIsIdempotentWhenSecretMissing(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())

	err := store.Delete(context.Background(), classifierKey)
	require.NoError(t, err)

	err = store.Delete(context.Background(), classifierKey)
	require.NoError(t, err)
}
