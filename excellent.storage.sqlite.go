package excellent

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteConfig configures the SQLite storage driver.
type SQLiteConfig struct {
	// Path is a database file path, or ":memory:" for a private in-memory database.
	Path string

	// TablePrefix allows customizing the table name prefix.
	// Default: "excellent_"
	TablePrefix string

	// QueryTimeout is the default timeout for queries.
	// Default: 30 seconds
	QueryTimeout time.Duration

	// Logger receives storage debug logs.
	Logger *zap.Logger
}

// SQLiteStorage implements TemplateStorage using SQLite.
// It is suitable for single-process production use.
type SQLiteStorage struct {
	*sqlStore
}

// SQLiteStorageDriver is the driver for creating SQLiteStorage instances.
type SQLiteStorageDriver struct{}

func init() {
	RegisterStorageDriver(StorageDriverNameSQLite, &SQLiteStorageDriver{})
}

// Open creates a new SQLiteStorage. The connection string is the database path.
func (d *SQLiteStorageDriver) Open(connectionString string) (TemplateStorage, error) {
	return NewSQLiteStorage(SQLiteConfig{Path: connectionString})
}

// NewSQLiteStorage opens (and creates if needed) a SQLite template store.
// The schema is created on open.
func NewSQLiteStorage(config SQLiteConfig) (*SQLiteStorage, error) {
	if config.Path == "" {
		return nil, NewConfigError(ErrMsgEmptyConnString, nil)
	}

	db, err := sql.Open(SQLiteDriverName, config.Path)
	if err != nil {
		return nil, NewStorageError(ErrMsgConnectionFailed, err)
	}
	// A single connection keeps ":memory:" databases shared and serialises writers.
	db.SetMaxOpenConns(1)

	store, err := newSQLStore(db, sqliteDialect, config.TablePrefix, config.QueryTimeout, config.Logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), store.timeout)
	defer cancel()

	if _, err := db.ExecContext(ctx, SQLitePragmaJournalModeWAL); err != nil {
		db.Close()
		return nil, NewStorageError(ErrMsgConnectionFailed, err)
	}
	if err := store.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	store.logger.Debug(LogMsgStorageOpened,
		zap.String(LogFieldDriver, store.dialect.name),
		zap.String(LogFieldPath, config.Path),
	)
	return &SQLiteStorage{sqlStore: store}, nil
}
