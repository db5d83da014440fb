package excellent

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

// sqlDialect captures the differences between the SQL backends
type sqlDialect struct {
	// name is the driver name for logging
	name string
	// placeholder returns the bind parameter for the n-th argument (1-based)
	placeholder func(n int) string
	// noLimit is the LIMIT value meaning "all rows"
	noLimit string
}

var (
	sqliteDialect = sqlDialect{
		name:        StorageDriverNameSQLite,
		placeholder: func(int) string { return "?" },
		noLimit:     "-1",
	}
	postgresDialect = sqlDialect{
		name:        StorageDriverNamePostgres,
		placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
		noLimit:     "ALL",
	}
)

// sqlStore implements TemplateStorage over database/sql. SQLiteStorage and
// PostgresStorage embed it.
type sqlStore struct {
	db      *sql.DB
	dialect sqlDialect
	table   string
	timeout time.Duration
	logger  *zap.Logger
	mu      sync.RWMutex
	closed  bool
}

func newSQLStore(db *sql.DB, dialect sqlDialect, tablePrefix string, timeout time.Duration, logger *zap.Logger) (*sqlStore, error) {
	if tablePrefix == "" {
		tablePrefix = SQLTablePrefix
	}
	if !isSQLIdentifier(tablePrefix) {
		return nil, NewConfigError(ErrMsgInvalidTablePrefix, nil)
	}
	if timeout <= 0 {
		timeout = SQLDefaultQueryTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &sqlStore{
		db:      db,
		dialect: dialect,
		table:   tablePrefix + "templates",
		timeout: timeout,
		logger:  logger,
	}, nil
}

// isSQLIdentifier reports whether s is safe to splice into SQL as a name
func isSQLIdentifier(s string) bool {
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return s != ""
}

// migrate creates the templates table and its index
func (s *sqlStore) migrate(ctx context.Context) error {
	statements := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id         VARCHAR(64) PRIMARY KEY,
				name       VARCHAR(255) NOT NULL,
				language   VARCHAR(32) NOT NULL,
				source     TEXT NOT NULL,
				version    INTEGER NOT NULL,
				metadata   TEXT NOT NULL,
				created_at BIGINT NOT NULL,
				updated_at BIGINT NOT NULL,
				UNIQUE (name, language, version)
			)`, s.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_name ON %s (name, language)`, s.table, s.table),
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return NewStorageError(ErrMsgMigrationFailed, err)
		}
	}
	return nil
}

// begin checks the storage state and derives a query context
func (s *sqlStore) begin(ctx context.Context) (context.Context, context.CancelFunc, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if s.closed {
		return nil, nil, NewStorageClosedError()
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	return ctx, cancel, nil
}

func (s *sqlStore) columns() string {
	return "id, name, language, source, version, metadata, created_at, updated_at"
}

// Get retrieves the latest version of a template translation.
func (s *sqlStore) Get(ctx context.Context, name, language string) (*StoredTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE name = %s AND language = %s
		ORDER BY version DESC
		LIMIT 1`, s.columns(), s.table, s.dialect.placeholder(1), s.dialect.placeholder(2))

	tmpl, err := scanStoredTemplate(s.db.QueryRowContext(ctx, query, name, language))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewTemplateNotFoundError(name, language)
	}
	if err != nil {
		return nil, NewStorageError(ErrMsgQueryFailed, err)
	}
	return tmpl, nil
}

// Save stores a new version of a template translation.
func (s *sqlStore) Save(ctx context.Context, tmpl *StoredTemplate) error {
	if err := validateStoredTemplate(tmpl); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	metadata, err := json.Marshal(tmpl.Metadata)
	if err != nil {
		return NewStorageError(ErrMsgSaveFailed, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return NewStorageError(ErrMsgSaveFailed, err)
	}
	defer func() { _ = tx.Rollback() }()

	var latest int
	query := fmt.Sprintf(`SELECT COALESCE(MAX(version), 0) FROM %s WHERE name = %s AND language = %s`,
		s.table, s.dialect.placeholder(1), s.dialect.placeholder(2))
	if err := tx.QueryRowContext(ctx, query, tmpl.Name, tmpl.Language).Scan(&latest); err != nil {
		return NewStorageError(ErrMsgSaveFailed, err)
	}

	now := time.Now().UTC()
	id := generateTemplateID()
	insert := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`, s.table, s.columns(), s.placeholders(8))
	if _, err := tx.ExecContext(ctx, insert,
		string(id), tmpl.Name, tmpl.Language, tmpl.Source, latest+1, string(metadata),
		now.UnixNano(), now.UnixNano(),
	); err != nil {
		return NewStorageError(ErrMsgSaveFailed, err)
	}
	if err := tx.Commit(); err != nil {
		return NewStorageError(ErrMsgSaveFailed, err)
	}

	tmpl.ID = id
	tmpl.Version = latest + 1
	tmpl.CreatedAt = now
	tmpl.UpdatedAt = now
	return nil
}

// Delete removes a template translation, or all translations when language is empty.
func (s *sqlStore) Delete(ctx context.Context, name, language string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	query := fmt.Sprintf(`DELETE FROM %s WHERE name = %s`, s.table, s.dialect.placeholder(1))
	args := []any{name}
	if language != "" {
		query += fmt.Sprintf(` AND language = %s`, s.dialect.placeholder(2))
		args = append(args, language)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return NewStorageError(ErrMsgDeleteFailed, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return NewStorageError(ErrMsgDeleteFailed, err)
	}
	if affected == 0 {
		return NewTemplateNotFoundError(name, language)
	}
	return nil
}

// List returns the latest version of each matching translation.
func (s *sqlStore) List(ctx context.Context, query *TemplateQuery) ([]*StoredTemplate, error) {
	if query == nil {
		query = &TemplateQuery{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	var (
		where []string
		args  []any
	)
	where = append(where, fmt.Sprintf(
		`t.version = (SELECT MAX(v.version) FROM %s v WHERE v.name = t.name AND v.language = t.language)`, s.table))
	if query.NamePrefix != "" {
		args = append(args, utf8.RuneCountInString(query.NamePrefix), query.NamePrefix)
		where = append(where, fmt.Sprintf(`substr(t.name, 1, %s) = %s`,
			s.dialect.placeholder(len(args)-1), s.dialect.placeholder(len(args))))
	}
	if query.Language != "" {
		args = append(args, query.Language)
		where = append(where, fmt.Sprintf(`t.language = %s`, s.dialect.placeholder(len(args))))
	}

	stmt := fmt.Sprintf(`SELECT %s FROM %s t WHERE %s ORDER BY t.name, t.language`,
		s.qualifiedColumns("t"), s.table, strings.Join(where, " AND "))
	if query.Limit > 0 || query.Offset > 0 {
		limit := s.dialect.noLimit
		if query.Limit > 0 {
			limit = fmt.Sprintf("%d", query.Limit)
		}
		stmt += fmt.Sprintf(` LIMIT %s OFFSET %d`, limit, query.Offset)
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, NewStorageError(ErrMsgQueryFailed, err)
	}
	defer rows.Close()

	var results []*StoredTemplate
	for rows.Next() {
		tmpl, err := scanStoredTemplate(rows)
		if err != nil {
			return nil, NewStorageError(ErrMsgScanFailed, err)
		}
		results = append(results, tmpl)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError(ErrMsgQueryFailed, err)
	}
	return results, nil
}

// Close closes the database connection.
func (s *sqlStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *sqlStore) qualifiedColumns(alias string) string {
	cols := strings.Split(s.columns(), ", ")
	for i, col := range cols {
		cols[i] = alias + "." + col
	}
	return strings.Join(cols, ", ")
}

func (s *sqlStore) placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = s.dialect.placeholder(i + 1)
	}
	return strings.Join(parts, ", ")
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanStoredTemplate(row rowScanner) (*StoredTemplate, error) {
	var (
		tmpl      StoredTemplate
		id        string
		metadata  string
		createdAt int64
		updatedAt int64
	)
	if err := row.Scan(&id, &tmpl.Name, &tmpl.Language, &tmpl.Source, &tmpl.Version,
		&metadata, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	tmpl.ID = TemplateID(id)
	tmpl.CreatedAt = time.Unix(0, createdAt).UTC()
	tmpl.UpdatedAt = time.Unix(0, updatedAt).UTC()
	if metadata != "" && metadata != "null" {
		if err := json.Unmarshal([]byte(metadata), &tmpl.Metadata); err != nil {
			return nil, err
		}
	}
	return &tmpl, nil
}
