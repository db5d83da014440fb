package excellent

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storageFactory opens a fresh, empty storage for one test.
type storageFactory func(t *testing.T) TemplateStorage

func newTestSQLiteStorage(t *testing.T) TemplateStorage {
	t.Helper()
	storage, err := NewSQLiteStorage(SQLiteConfig{Path: SQLiteMemoryConnection})
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })
	return storage
}

func newTestMemoryStorage(t *testing.T) TemplateStorage {
	t.Helper()
	storage := NewMemoryStorage()
	t.Cleanup(func() { _ = storage.Close() })
	return storage
}

func TestMemoryStorage(t *testing.T) {
	runStorageContract(t, newTestMemoryStorage)
}

func TestSQLiteStorage(t *testing.T) {
	runStorageContract(t, newTestSQLiteStorage)
}

// runStorageContract exercises behaviour every TemplateStorage must share.
func runStorageContract(t *testing.T, open storageFactory) {
	t.Run("SaveAssignsVersions", func(t *testing.T) {
		storage := open(t)
		ctx := context.Background()

		first := &StoredTemplate{Name: "welcome", Language: "eng", Source: "Hi @contact.name"}
		require.NoError(t, storage.Save(ctx, first))
		assert.NotEmpty(t, first.ID)
		assert.Equal(t, 1, first.Version)
		assert.False(t, first.CreatedAt.IsZero())

		second := &StoredTemplate{
			Name:     "welcome",
			Language: "eng",
			Source:   "Hello @contact.first_name",
			Metadata: map[string]string{"author": "flows"},
		}
		require.NoError(t, storage.Save(ctx, second))
		assert.Equal(t, 2, second.Version)
		assert.NotEqual(t, first.ID, second.ID)

		other := &StoredTemplate{Name: "welcome", Language: "fra", Source: "Bonjour"}
		require.NoError(t, storage.Save(ctx, other))
		assert.Equal(t, 1, other.Version)

		got, err := storage.Get(ctx, "welcome", "eng")
		require.NoError(t, err)
		assert.Equal(t, second.ID, got.ID)
		assert.Equal(t, 2, got.Version)
		assert.Equal(t, "Hello @contact.first_name", got.Source)
		assert.Equal(t, "flows", got.Metadata["author"])
	})

	t.Run("SaveRequiresName", func(t *testing.T) {
		storage := open(t)
		assert.Error(t, storage.Save(context.Background(), &StoredTemplate{Source: "x"}))
		assert.Error(t, storage.Save(context.Background(), nil))
	})

	t.Run("GetNotFound", func(t *testing.T) {
		storage := open(t)
		_, err := storage.Get(context.Background(), "missing", "eng")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrTemplateNotFound))
	})

	t.Run("GetReturnsCopy", func(t *testing.T) {
		storage := open(t)
		ctx := context.Background()
		require.NoError(t, storage.Save(ctx, &StoredTemplate{
			Name: "copy", Language: "eng", Source: "a", Metadata: map[string]string{"k": "v"},
		}))

		got, err := storage.Get(ctx, "copy", "eng")
		require.NoError(t, err)
		got.Source = "changed"
		got.Metadata["k"] = "changed"

		again, err := storage.Get(ctx, "copy", "eng")
		require.NoError(t, err)
		assert.Equal(t, "a", again.Source)
		assert.Equal(t, "v", again.Metadata["k"])
	})

	t.Run("List", func(t *testing.T) {
		storage := open(t)
		ctx := context.Background()
		for _, tmpl := range []StoredTemplate{
			{Name: "survey_intro", Language: "eng", Source: "v1"},
			{Name: "survey_intro", Language: "eng", Source: "v2"},
			{Name: "survey_intro", Language: "kin", Source: "kin"},
			{Name: "survey_outro", Language: "eng", Source: "bye"},
			{Name: "welcome", Language: "eng", Source: "hi"},
		} {
			tmpl := tmpl
			require.NoError(t, storage.Save(ctx, &tmpl))
		}

		all, err := storage.List(ctx, nil)
		require.NoError(t, err)
		require.Len(t, all, 4)
		assert.Equal(t, "survey_intro", all[0].Name)
		assert.Equal(t, "eng", all[0].Language)
		assert.Equal(t, "v2", all[0].Source)
		assert.Equal(t, "kin", all[1].Language)
		assert.Equal(t, "survey_outro", all[2].Name)
		assert.Equal(t, "welcome", all[3].Name)

		tests := []struct {
			name     string
			query    *TemplateQuery
			expected []string
		}{
			{"prefix", &TemplateQuery{NamePrefix: "survey_"}, []string{"survey_intro/eng", "survey_intro/kin", "survey_outro/eng"}},
			{"language", &TemplateQuery{Language: "kin"}, []string{"survey_intro/kin"}},
			{"prefix and language", &TemplateQuery{NamePrefix: "survey", Language: "eng"}, []string{"survey_intro/eng", "survey_outro/eng"}},
			{"limit", &TemplateQuery{Limit: 2}, []string{"survey_intro/eng", "survey_intro/kin"}},
			{"offset", &TemplateQuery{Offset: 3}, []string{"welcome/eng"}},
			{"limit and offset", &TemplateQuery{Limit: 1, Offset: 2}, []string{"survey_outro/eng"}},
			{"offset past end", &TemplateQuery{Offset: 10}, nil},
			{"no match", &TemplateQuery{NamePrefix: "zzz"}, nil},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				results, err := storage.List(ctx, tt.query)
				require.NoError(t, err)

				var keys []string
				for _, r := range results {
					keys = append(keys, r.Name+"/"+r.Language)
				}
				assert.Equal(t, tt.expected, keys)
			})
		}
	})

	t.Run("Delete", func(t *testing.T) {
		storage := open(t)
		ctx := context.Background()
		require.NoError(t, storage.Save(ctx, &StoredTemplate{Name: "bye", Language: "eng", Source: "Bye"}))
		require.NoError(t, storage.Save(ctx, &StoredTemplate{Name: "bye", Language: "eng", Source: "Bye!"}))
		require.NoError(t, storage.Save(ctx, &StoredTemplate{Name: "bye", Language: "fra", Source: "Salut"}))
		require.NoError(t, storage.Save(ctx, &StoredTemplate{Name: "bye", Language: "kin", Source: "Murabeho"}))

		require.NoError(t, storage.Delete(ctx, "bye", "eng"))
		_, err := storage.Get(ctx, "bye", "eng")
		assert.True(t, errors.Is(err, ErrTemplateNotFound))

		_, err = storage.Get(ctx, "bye", "fra")
		require.NoError(t, err)

		require.NoError(t, storage.Delete(ctx, "bye", ""))
		_, err = storage.Get(ctx, "bye", "kin")
		assert.True(t, errors.Is(err, ErrTemplateNotFound))

		err = storage.Delete(ctx, "bye", "")
		assert.True(t, errors.Is(err, ErrTemplateNotFound))
	})

	t.Run("ConcurrentSaves", func(t *testing.T) {
		storage := open(t)
		ctx := context.Background()

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, storage.Save(ctx, &StoredTemplate{Name: "busy", Language: "eng", Source: "x"}))
			}()
		}
		wg.Wait()

		got, err := storage.Get(ctx, "busy", "eng")
		require.NoError(t, err)
		assert.Equal(t, 10, got.Version)
	})

	t.Run("Closed", func(t *testing.T) {
		storage := open(t)
		ctx := context.Background()
		require.NoError(t, storage.Close())

		_, err := storage.Get(ctx, "x", "eng")
		assert.True(t, errors.Is(err, ErrStorageClosed))
		assert.True(t, errors.Is(storage.Save(ctx, &StoredTemplate{Name: "x"}), ErrStorageClosed))
		assert.True(t, errors.Is(storage.Delete(ctx, "x", ""), ErrStorageClosed))
		_, err = storage.List(ctx, nil)
		assert.True(t, errors.Is(err, ErrStorageClosed))
	})

	t.Run("EvaluateStored", func(t *testing.T) {
		storage := open(t)
		ctx := context.Background()
		require.NoError(t, storage.Save(ctx, &StoredTemplate{
			Name: "greet", Language: "eng", Source: "Hi @contact.first_name, you are @contact.age",
		}))
		require.NoError(t, storage.Save(ctx, &StoredTemplate{
			Name: "greet", Language: "fra", Source: "Salut @contact.first_name",
		}))

		evaluator := MustNew()
		evalCtx := contactContext(t)

		result, err := evaluator.EvaluateStored(ctx, storage, "greet", "fra", "eng", evalCtx)
		require.NoError(t, err)
		assert.Equal(t, "Salut Bob", result.Output)
		assert.False(t, result.HasErrors())

		result, err = evaluator.EvaluateStored(ctx, storage, "greet", "kin", "eng", evalCtx)
		require.NoError(t, err)
		assert.Equal(t, "Hi Bob, you are 34", result.Output)

		_, err = evaluator.EvaluateStored(ctx, storage, "greet", "kin", "", evalCtx)
		assert.True(t, errors.Is(err, ErrTemplateNotFound))

		_, err = evaluator.EvaluateStored(ctx, storage, "nothing", "eng", "fra", evalCtx)
		assert.True(t, errors.Is(err, ErrTemplateNotFound))
	})
}

func TestEvaluateStored_NilStorage(t *testing.T) {
	_, err := MustNew().EvaluateStored(context.Background(), nil, "x", "eng", "", contactContext(t))
	assert.Error(t, err)
}

func TestMemoryStorage_CancelledContext(t *testing.T) {
	storage := NewMemoryStorage()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := storage.Get(ctx, "x", "eng")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, storage.Save(ctx, &StoredTemplate{Name: "x"}), context.Canceled)
}

func TestSQLiteStorage_InvalidTablePrefix(t *testing.T) {
	_, err := NewSQLiteStorage(SQLiteConfig{Path: SQLiteMemoryConnection, TablePrefix: "bad prefix;"})
	assert.Error(t, err)

	_, err = NewSQLiteStorage(SQLiteConfig{})
	assert.Error(t, err)
}

func TestSQLiteStorage_FilePersists(t *testing.T) {
	path := t.TempDir() + "/templates.db"
	ctx := context.Background()

	storage, err := NewSQLiteStorage(SQLiteConfig{Path: path, TablePrefix: "flows_"})
	require.NoError(t, err)
	require.NoError(t, storage.Save(ctx, &StoredTemplate{Name: "kept", Language: "eng", Source: "@(1 + 1)"}))
	require.NoError(t, storage.Close())

	reopened, err := NewSQLiteStorage(SQLiteConfig{Path: path, TablePrefix: "flows_"})
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "kept", "eng")
	require.NoError(t, err)
	assert.Equal(t, "@(1 + 1)", got.Source)
}

func TestPostgresStorage_EmptyConnectionString(t *testing.T) {
	_, err := NewPostgresStorage(PostgresConfig{})
	assert.Error(t, err)
}

func TestStorageDrivers(t *testing.T) {
	drivers := ListStorageDrivers()
	assert.Contains(t, drivers, StorageDriverNameMemory)
	assert.Contains(t, drivers, StorageDriverNameSQLite)
	assert.Contains(t, drivers, StorageDriverNamePostgres)

	storage, err := OpenStorage(StorageDriverNameMemory, "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStorage{}, storage)
	require.NoError(t, storage.Close())

	storage, err = OpenStorage(StorageDriverNameSQLite, SQLiteMemoryConnection)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStorage{}, storage)
	require.NoError(t, storage.Close())

	_, err = OpenStorage("mongo", "")
	assert.Error(t, err)
}

func TestRegisterStorageDriver_Panics(t *testing.T) {
	assert.Panics(t, func() { RegisterStorageDriver("nil-driver", nil) })
	assert.Panics(t, func() { RegisterStorageDriver(StorageDriverNameMemory, &MemoryStorageDriver{}) })
}
