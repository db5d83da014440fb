package excellent

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TemplateID is a unique identifier for one stored template version.
type TemplateID string

// StoredTemplate is a message template kept in a storage backend. A template
// is addressed by name and language; each save creates a new version.
type StoredTemplate struct {
	// ID is the unique identifier for this version.
	ID TemplateID `json:"id"`

	// Name is the template name used for lookups.
	Name string `json:"name"`

	// Language is the language code of this translation, e.g. "eng".
	Language string `json:"language"`

	// Source is the raw template text.
	Source string `json:"source"`

	// Version is the version number (1, 2, 3, ...). Higher versions are newer.
	Version int `json:"version"`

	// Metadata contains arbitrary key-value pairs for user-defined data.
	Metadata map[string]string `json:"metadata,omitempty"`

	// CreatedAt is when this version was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when this version was last modified.
	UpdatedAt time.Time `json:"updated_at"`
}

// TemplateQuery defines filters for listing templates.
type TemplateQuery struct {
	// NamePrefix filters to names starting with this prefix.
	NamePrefix string

	// Language filters to one language (empty matches all).
	Language string

	// Limit is the maximum number of results (0 = no limit).
	Limit int

	// Offset is the number of results to skip.
	Offset int
}

// TemplateStorage is the interface for pluggable template storage backends.
// Implementations must be safe for concurrent use.
type TemplateStorage interface {
	// Get retrieves the latest version of a template translation.
	// Returns an error matching ErrTemplateNotFound if it doesn't exist.
	Get(ctx context.Context, name, language string) (*StoredTemplate, error)

	// Save stores a template as a new version of its name and language. The
	// ID, Version, CreatedAt and UpdatedAt fields are set by the storage.
	Save(ctx context.Context, tmpl *StoredTemplate) error

	// Delete removes all versions of a template translation, or of every
	// translation when language is empty.
	Delete(ctx context.Context, name, language string) error

	// List returns the latest version of each matching translation, ordered
	// by name then language.
	List(ctx context.Context, query *TemplateQuery) ([]*StoredTemplate, error)

	// Close releases any resources held by the storage.
	Close() error
}

// Sentinel storage errors, matched with errors.Is
var (
	ErrTemplateNotFound = errors.New(ErrMsgTemplateNotFound)
	ErrStorageClosed    = errors.New(ErrMsgStorageClosed)
)

// StorageDriver is a factory for creating storage instances.
type StorageDriver interface {
	// Open creates a new storage instance with the given connection string.
	Open(connectionString string) (TemplateStorage, error)
}

var (
	storageDriversMu sync.RWMutex
	storageDrivers   = make(map[string]StorageDriver)
)

// RegisterStorageDriver registers a storage driver by name.
// Panics if the driver is nil or the name is already registered.
func RegisterStorageDriver(name string, driver StorageDriver) {
	storageDriversMu.Lock()
	defer storageDriversMu.Unlock()

	if driver == nil {
		panic(ErrMsgNilStorageDriver)
	}
	if _, exists := storageDrivers[name]; exists {
		panic(ErrMsgDriverAlreadyRegistered + ": " + name)
	}
	storageDrivers[name] = driver
}

// OpenStorage opens a storage connection using the named driver.
//
//	storage, err := excellent.OpenStorage("memory", "")
//	storage, err := excellent.OpenStorage("sqlite", "./templates.db")
func OpenStorage(driverName, connectionString string) (TemplateStorage, error) {
	storageDriversMu.RLock()
	driver, ok := storageDrivers[driverName]
	storageDriversMu.RUnlock()

	if !ok {
		return nil, NewStorageError(ErrMsgStorageDriverNotFound+": "+driverName, nil)
	}
	return driver.Open(connectionString)
}

// ListStorageDrivers returns the names of all registered storage drivers, sorted.
func ListStorageDrivers() []string {
	storageDriversMu.RLock()
	defer storageDriversMu.RUnlock()

	names := make([]string, 0, len(storageDrivers))
	for name := range storageDrivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewStorageClosedError creates an error for operations on closed storage
func NewStorageClosedError() error {
	return NewStorageError(ErrMsgStorageClosed, ErrStorageClosed)
}

// EvaluateStored loads the latest translation of a stored template and
// evaluates it. When the template has no version in language, the
// fallbackLanguage translation is used instead.
func (e *Evaluator) EvaluateStored(
	ctx context.Context,
	storage TemplateStorage,
	name, language, fallbackLanguage string,
	evalCtx *EvaluationContext,
	opts ...TemplateOption,
) (EvaluatedTemplate, error) {
	if storage == nil {
		return EvaluatedTemplate{}, NewConfigError(ErrMsgNilStorage, nil)
	}

	tmpl, err := storage.Get(ctx, name, language)
	if errors.Is(err, ErrTemplateNotFound) && fallbackLanguage != "" && fallbackLanguage != language {
		tmpl, err = storage.Get(ctx, name, fallbackLanguage)
	}
	if err != nil {
		return EvaluatedTemplate{}, err
	}

	e.logger.Debug(LogMsgStoredTemplateUsed,
		zap.String(LogFieldName, tmpl.Name),
		zap.String(LogFieldLanguage, tmpl.Language),
		zap.Int(LogFieldVersion, tmpl.Version),
	)
	return e.EvaluateTemplate(tmpl.Source, evalCtx, opts...), nil
}

// generateTemplateID returns a new random template ID
func generateTemplateID() TemplateID {
	return TemplateID(uuid.NewString())
}

// copyStoredTemplate creates a deep copy of a StoredTemplate.
func copyStoredTemplate(tmpl *StoredTemplate) *StoredTemplate {
	if tmpl == nil {
		return nil
	}
	cp := *tmpl
	if tmpl.Metadata != nil {
		cp.Metadata = make(map[string]string, len(tmpl.Metadata))
		for k, v := range tmpl.Metadata {
			cp.Metadata[k] = v
		}
	}
	return &cp
}

// validateStoredTemplate checks the fields a caller must set before Save
func validateStoredTemplate(tmpl *StoredTemplate) error {
	if tmpl == nil || tmpl.Name == "" {
		return NewConfigError(ErrMsgEmptyTemplateName, nil)
	}
	return nil
}
