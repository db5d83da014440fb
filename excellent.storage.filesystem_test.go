package excellent

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFilesystemStorage(t *testing.T) TemplateStorage {
	t.Helper()
	storage, err := NewFilesystemStorage(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })
	return storage
}

func TestFilesystemStorage(t *testing.T) {
	runStorageContract(t, newTestFilesystemStorage)
}

func TestFilesystemStorage_NewFilesystemStorage(t *testing.T) {
	t.Run("creates root directory", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "templates")

		storage, err := NewFilesystemStorage(root)
		require.NoError(t, err)
		defer storage.Close()

		info, err := os.Stat(root)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("rejects empty root", func(t *testing.T) {
		_, err := NewFilesystemStorage("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgInvalidStorageRoot)
	})
}

func TestFilesystemStorage_Layout(t *testing.T) {
	root := t.TempDir()
	storage, err := NewFilesystemStorage(root)
	require.NoError(t, err)
	defer storage.Close()

	ctx := context.Background()
	require.NoError(t, storage.Save(ctx, &StoredTemplate{Name: "welcome", Language: "eng", Source: "Hi"}))
	require.NoError(t, storage.Save(ctx, &StoredTemplate{Name: "welcome", Language: "eng", Source: "Hello"}))
	require.NoError(t, storage.Save(ctx, &StoredTemplate{Name: "welcome", Source: "@contact.name"}))

	assert.FileExists(t, filepath.Join(root, "welcome", "eng", "v1.json"))
	assert.FileExists(t, filepath.Join(root, "welcome", "eng", "v2.json"))
	assert.FileExists(t, filepath.Join(root, "welcome", FilesystemNoLanguageDir, "v1.json"))

	got, err := storage.Get(ctx, "welcome", "")
	require.NoError(t, err)
	assert.Equal(t, "@contact.name", got.Source)
	assert.Empty(t, got.Language)

	require.NoError(t, storage.Delete(ctx, "welcome", "eng"))
	require.NoError(t, storage.Delete(ctx, "welcome", ""))
	assert.NoDirExists(t, filepath.Join(root, "welcome"))
}

func TestFilesystemStorage_Persists(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()

	storage, err := NewFilesystemStorage(root)
	require.NoError(t, err)
	require.NoError(t, storage.Save(ctx, &StoredTemplate{
		Name: "kept", Language: "kin", Source: "Muraho @contact.first_name", Metadata: map[string]string{"flow": "registration"},
	}))
	require.NoError(t, storage.Close())

	reopened, err := NewFilesystemStorage(root)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "kept", "kin")
	require.NoError(t, err)
	assert.Equal(t, "Muraho @contact.first_name", got.Source)
	assert.Equal(t, "registration", got.Metadata["flow"])
	assert.Equal(t, 1, got.Version)

	next := &StoredTemplate{Name: "kept", Language: "kin", Source: "Muraho"}
	require.NoError(t, reopened.Save(ctx, next))
	assert.Equal(t, 2, next.Version)
}

func TestFilesystemStorage_InvalidPaths(t *testing.T) {
	storage, err := NewFilesystemStorage(t.TempDir())
	require.NoError(t, err)
	defer storage.Close()

	ctx := context.Background()
	tests := []struct {
		name     string
		tmplName string
		language string
	}{
		{"parent traversal", "../escape", "eng"},
		{"separator in name", "flows/welcome", "eng"},
		{"separator in language", "welcome", "en/us"},
		{"traversal in language", "welcome", ".."},
		{"reserved language directory", "welcome", FilesystemNoLanguageDir},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := storage.Save(ctx, &StoredTemplate{Name: tt.tmplName, Language: tt.language})
			assert.Error(t, err)

			_, err = storage.Get(ctx, tt.tmplName, tt.language)
			assert.Error(t, err)
			assert.NotErrorIs(t, err, ErrTemplateNotFound)
		})
	}
}

func TestFilesystemStorage_IgnoresStrayFiles(t *testing.T) {
	root := t.TempDir()
	storage, err := NewFilesystemStorage(root)
	require.NoError(t, err)
	defer storage.Close()

	ctx := context.Background()
	require.NoError(t, storage.Save(ctx, &StoredTemplate{Name: "welcome", Language: "eng", Source: "Hi"}))
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("notes"), FilesystemFilePermissions))
	require.NoError(t, os.WriteFile(filepath.Join(root, "welcome", "eng", "draft.txt"), []byte("x"), FilesystemFilePermissions))

	got, err := storage.Get(ctx, "welcome", "eng")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Version)

	all, err := storage.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestFilesystemStorage_Driver(t *testing.T) {
	assert.Contains(t, ListStorageDrivers(), StorageDriverNameFilesystem)

	storage, err := OpenStorage(StorageDriverNameFilesystem, t.TempDir())
	require.NoError(t, err)
	assert.IsType(t, &FilesystemStorage{}, storage)
	require.NoError(t, storage.Close())

	_, err = OpenStorage(StorageDriverNameFilesystem, "")
	assert.Error(t, err)
}
