package excellent

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// FilesystemStorage stores template translations as JSON files, one file
// per version.
//
// Directory structure:
//
//	<root>/
//	  <template-name>/
//	    <language>/
//	      v1.json
//	      v2.json
//
// Translations without a language live in the "_" directory.
type FilesystemStorage struct {
	mu     sync.RWMutex
	root   string
	closed bool
}

// FilesystemStorageDriver is the driver for creating FilesystemStorage instances.
type FilesystemStorageDriver struct{}

func init() {
	RegisterStorageDriver(StorageDriverNameFilesystem, &FilesystemStorageDriver{})
}

// Open creates a new FilesystemStorage instance.
// The connection string is the root directory path.
func (d *FilesystemStorageDriver) Open(connectionString string) (TemplateStorage, error) {
	return NewFilesystemStorage(connectionString)
}

// NewFilesystemStorage creates a new filesystem-based template storage.
// The root directory will be created if it doesn't exist.
func NewFilesystemStorage(root string) (*FilesystemStorage, error) {
	if root == "" {
		return nil, NewConfigError(ErrMsgInvalidStorageRoot, nil)
	}
	if err := os.MkdirAll(root, FilesystemDirPermissions); err != nil {
		return nil, NewFilesystemError(ErrMsgCreateStorageDir, root, err)
	}
	return &FilesystemStorage{root: root}, nil
}

// Get retrieves the latest version of a template translation.
func (s *FilesystemStorage) Get(ctx context.Context, name, language string) (*StoredTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validatePathSegments(name, language); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}

	dir := s.languageDir(name, language)
	versions, err := listVersions(dir)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, NewTemplateNotFoundError(name, language)
	}
	return loadVersion(dir, versions[0])
}

// Save writes the template as the next version of its translation.
func (s *FilesystemStorage) Save(ctx context.Context, tmpl *StoredTemplate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateStoredTemplate(tmpl); err != nil {
		return err
	}
	if err := validatePathSegments(tmpl.Name, tmpl.Language); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStorageClosedError()
	}

	dir := s.languageDir(tmpl.Name, tmpl.Language)
	if err := os.MkdirAll(dir, FilesystemDirPermissions); err != nil {
		return NewFilesystemError(ErrMsgCreateStorageDir, dir, err)
	}

	versions, err := listVersions(dir)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	stored := copyStoredTemplate(tmpl)
	stored.ID = generateTemplateID()
	stored.Version = 1
	if len(versions) > 0 {
		stored.Version = versions[0] + 1
	}
	stored.CreatedAt = now
	stored.UpdatedAt = now

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return NewFilesystemError(ErrMsgMarshalTemplate, dir, err)
	}
	path := versionPath(dir, stored.Version)
	if err := os.WriteFile(path, data, FilesystemFilePermissions); err != nil {
		return NewFilesystemError(ErrMsgWriteTemplate, path, err)
	}

	tmpl.ID = stored.ID
	tmpl.Version = stored.Version
	tmpl.CreatedAt = stored.CreatedAt
	tmpl.UpdatedAt = stored.UpdatedAt
	return nil
}

// Delete removes a template translation, or all translations when language is empty.
func (s *FilesystemStorage) Delete(ctx context.Context, name, language string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validatePathSegments(name, language); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStorageClosedError()
	}

	nameDir := filepath.Join(s.root, name)
	target := nameDir
	if language != "" {
		target = s.languageDir(name, language)
	}
	if _, err := os.Stat(target); errors.Is(err, fs.ErrNotExist) {
		return NewTemplateNotFoundError(name, language)
	}
	if err := os.RemoveAll(target); err != nil {
		return NewFilesystemError(ErrMsgDeleteFailed, target, err)
	}

	// drop the name directory once its last translation is gone
	if entries, err := os.ReadDir(nameDir); err == nil && len(entries) == 0 {
		_ = os.Remove(nameDir)
	}
	return nil
}

// List returns the latest version of each matching translation.
func (s *FilesystemStorage) List(ctx context.Context, query *TemplateQuery) ([]*StoredTemplate, error) {
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

	names, err := os.ReadDir(s.root)
	if err != nil {
		return nil, NewFilesystemError(ErrMsgReadStorageDir, s.root, err)
	}

	var results []*StoredTemplate
	for _, nameEntry := range names {
		if !nameEntry.IsDir() || !strings.HasPrefix(nameEntry.Name(), query.NamePrefix) {
			continue
		}

		nameDir := filepath.Join(s.root, nameEntry.Name())
		languages, err := os.ReadDir(nameDir)
		if err != nil {
			return nil, NewFilesystemError(ErrMsgReadStorageDir, nameDir, err)
		}

		for _, langEntry := range languages {
			if !langEntry.IsDir() {
				continue
			}
			dir := filepath.Join(nameDir, langEntry.Name())
			versions, err := listVersions(dir)
			if err != nil {
				return nil, err
			}
			if len(versions) == 0 {
				continue
			}

			tmpl, err := loadVersion(dir, versions[0])
			if err != nil {
				return nil, err
			}
			if query.Language != "" && tmpl.Language != query.Language {
				continue
			}
			results = append(results, tmpl)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Name != results[j].Name {
			return results[i].Name < results[j].Name
		}
		return results[i].Language < results[j].Language
	})

	return paginate(results, query.Offset, query.Limit), nil
}

// Close marks the storage as closed. Files on disk are left in place.
func (s *FilesystemStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

// languageDir returns the directory holding the versions of one translation.
func (s *FilesystemStorage) languageDir(name, language string) string {
	if language == "" {
		language = FilesystemNoLanguageDir
	}
	return filepath.Join(s.root, name, language)
}

// listVersions returns the version numbers stored in dir, newest first.
func listVersions(dir string) ([]int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, NewFilesystemError(ErrMsgReadStorageDir, dir, err)
	}

	var versions []int
	for _, entry := range entries {
		filename := entry.Name()
		if entry.IsDir() ||
			!strings.HasPrefix(filename, FilesystemVersionPrefix) ||
			!strings.HasSuffix(filename, FilesystemVersionSuffix) {
			continue
		}
		number := strings.TrimSuffix(strings.TrimPrefix(filename, FilesystemVersionPrefix), FilesystemVersionSuffix)
		if version, err := strconv.Atoi(number); err == nil && version > 0 {
			versions = append(versions, version)
		}
	}

	sort.Sort(sort.Reverse(sort.IntSlice(versions)))
	return versions, nil
}

func loadVersion(dir string, version int) (*StoredTemplate, error) {
	path := versionPath(dir, version)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewFilesystemError(ErrMsgReadTemplate, path, err)
	}

	var tmpl StoredTemplate
	if err := json.Unmarshal(data, &tmpl); err != nil {
		return nil, NewFilesystemError(ErrMsgReadTemplate, path, err)
	}
	return &tmpl, nil
}

func versionPath(dir string, version int) string {
	return filepath.Join(dir, FilesystemVersionPrefix+strconv.Itoa(version)+FilesystemVersionSuffix)
}

// validatePathSegments rejects names and languages that could escape the
// storage root or collide with the no-language directory.
func validatePathSegments(name, language string) error {
	for _, segment := range []string{name, language} {
		if strings.Contains(segment, "..") || strings.ContainsAny(segment, "/\\:*?\"<>|") {
			return NewConfigError(ErrMsgInvalidPathSegment, nil)
		}
	}
	if name == "" || language == FilesystemNoLanguageDir {
		return NewConfigError(ErrMsgInvalidPathSegment, nil)
	}
	return nil
}
