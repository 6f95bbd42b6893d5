// Package catalog provides the catalog store: named product catalogs with
// persistence and attribute filtering. Two drivers exist: a JSON file store
// and a Redis-backed store.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/lumenkart/shopassist/internal/domain"
	domcat "github.com/lumenkart/shopassist/internal/domain/catalog"
	"github.com/lumenkart/shopassist/internal/domain/record"
)

// fileDoc is the on-disk document shape.
type fileDoc struct {
	Catalogs []fileCatalog `json:"catalogs"`
}

// fileCatalog is a single named catalog on disk.
type fileCatalog struct {
	Name     string          `json:"name"`
	Products []record.Record `json:"products"`
}

// FileStore keeps catalogs in a single JSON document on disk. The whole
// document is held in memory; every mutation rewrites the file.
type FileStore struct {
	mu       sync.Mutex
	path     string
	catalogs []fileCatalog
	logger   *zap.Logger
}

// NewFileStore loads the catalog document at path. A missing or unreadable
// file yields an empty store rather than an error, so a fresh deployment can
// start without seed data.
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	s := &FileStore{path: path, logger: logger}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		logger.Warn("Catalog file not found, starting empty", zap.String("path", path), zap.Error(err))
		return s
	}

	var doc fileDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		logger.Warn("Invalid catalog JSON, starting empty", zap.String("path", path), zap.Error(err))
		return s
	}

	s.catalogs = doc.Catalogs
	return s
}

// AllRecords returns every product across all catalogs, in document order.
func (s *FileStore) AllRecords(_ context.Context) ([]record.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []record.Record
	for _, c := range s.catalogs {
		all = append(all, c.Products...)
	}
	return all, nil
}

// AddRecord appends the record to the named catalog and rewrites the file.
func (s *FileStore) AddRecord(_ context.Context, catalogName string, rec record.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.catalogs {
		if s.catalogs[i].Name != catalogName {
			continue
		}
		s.catalogs[i].Products = append(s.catalogs[i].Products, rec.Clone())
		if err := s.save(); err != nil {
			// Roll back the in-memory append so memory and disk agree.
			products := s.catalogs[i].Products
			s.catalogs[i].Products = products[:len(products)-1]
			return err
		}
		return nil
	}
	return fmt.Errorf("%w: %q", domain.ErrCatalogNotFound, catalogName)
}

// Filter returns all records satisfying the attribute filter.
func (s *FileStore) Filter(ctx context.Context, f domcat.Filter) ([]record.Record, error) {
	all, err := s.AllRecords(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]record.Record, 0, len(all))
	for _, rec := range all {
		if f.Matches(rec) {
			filtered = append(filtered, rec)
		}
	}
	return filtered, nil
}

// Names returns the catalog names in document order.
func (s *FileStore) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, len(s.catalogs))
	for i, c := range s.catalogs {
		names[i] = c.Name
	}
	return names
}

// save is called with the mutex held.
func (s *FileStore) save() error {
	data, err := json.MarshalIndent(fileDoc{Catalogs: s.catalogs}, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal catalogs: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write catalog file: %w", err)
	}
	return nil
}
