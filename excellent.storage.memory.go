package excellent

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStorage is an in-memory implementation of TemplateStorage.
// It is primarily intended for testing and development.
// All data is lost when the process terminates.
type MemoryStorage struct {
	mu        sync.RWMutex
	templates map[templateKey][]*StoredTemplate // versions sorted by version desc
	closed    bool
}

type templateKey struct {
	name     string
	language string
}

// MemoryStorageDriver is the driver for creating MemoryStorage instances.
type MemoryStorageDriver struct{}

func init() {
	RegisterStorageDriver(StorageDriverNameMemory, &MemoryStorageDriver{})
}

// Open creates a new MemoryStorage instance.
// The connection string is ignored for memory storage.
func (d *MemoryStorageDriver) Open(connectionString string) (TemplateStorage, error) {
	return NewMemoryStorage(), nil
}

// NewMemoryStorage creates a new in-memory template storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		templates: make(map[templateKey][]*StoredTemplate),
	}
}

// Get retrieves the latest version of a template translation.
func (s *MemoryStorage) Get(ctx context.Context, name, language string) (*StoredTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}

	versions := s.templates[templateKey{name: name, language: language}]
	if len(versions) == 0 {
		return nil, NewTemplateNotFoundError(name, language)
	}
	return copyStoredTemplate(versions[0]), nil
}

// Save stores a new version of a template translation.
func (s *MemoryStorage) Save(ctx context.Context, tmpl *StoredTemplate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateStoredTemplate(tmpl); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStorageClosedError()
	}

	key := templateKey{name: tmpl.Name, language: tmpl.Language}
	versions := s.templates[key]

	now := time.Now().UTC()
	tmpl.ID = generateTemplateID()
	tmpl.Version = 1
	if len(versions) > 0 {
		tmpl.Version = versions[0].Version + 1
	}
	tmpl.CreatedAt = now
	tmpl.UpdatedAt = now

	s.templates[key] = append([]*StoredTemplate{copyStoredTemplate(tmpl)}, versions...)
	return nil
}

// Delete removes a template translation, or all translations when language is empty.
func (s *MemoryStorage) Delete(ctx context.Context, name, language string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStorageClosedError()
	}

	deleted := false
	for key := range s.templates {
		if key.name == name && (language == "" || key.language == language) {
			delete(s.templates, key)
			deleted = true
		}
	}
	if !deleted {
		return NewTemplateNotFoundError(name, language)
	}
	return nil
}

// List returns the latest version of each matching translation.
func (s *MemoryStorage) List(ctx context.Context, query *TemplateQuery) ([]*StoredTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if query == nil {
		query = &TemplateQuery{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}

	var results []*StoredTemplate
	for key, versions := range s.templates {
		if !strings.HasPrefix(key.name, query.NamePrefix) {
			continue
		}
		if query.Language != "" && key.language != query.Language {
			continue
		}
		results = append(results, copyStoredTemplate(versions[0]))
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Name != results[j].Name {
			return results[i].Name < results[j].Name
		}
		return results[i].Language < results[j].Language
	})

	return paginate(results, query.Offset, query.Limit), nil
}

// Close marks the storage as closed and drops its contents.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.templates = nil
	return nil
}

// paginate applies offset and limit to a sorted result slice
func paginate(results []*StoredTemplate, offset, limit int) []*StoredTemplate {
	if offset > 0 {
		if offset >= len(results) {
			return []*StoredTemplate{}
		}
		results = results[offset:]
	}
	if limit > 0 && limit < len(results) {
		results = results[:limit]
	}
	return results
}
