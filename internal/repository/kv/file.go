package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// FileStore persists the namespace as one JSON object on disk. The whole
// object is rewritten on every Put through a temp file and rename.
type FileStore struct {
	mu     sync.Mutex
	path   string
	data   map[string]string
	logger *zap.Logger
	closed bool
}

// NewFileStore opens (or prepares) the namespace file at path. An unreadable
// or malformed file starts as an empty namespace.
func NewFileStore(path string, logger *zap.Logger) (*FileStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if path == "" {
		return nil, fmt.Errorf("file store path must not be empty")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir %s: %w", dir, err)
		}
	}

	s := &FileStore{path: path, data: make(map[string]string), logger: logger}

	raw, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		logger.Info("storage file not found, starting empty", zap.String("path", path))
	case err != nil:
		return nil, fmt.Errorf("read storage file %s: %w", path, err)
	case len(raw) > 0:
		if err := json.Unmarshal(raw, &s.data); err != nil {
			logger.Warn("storage file is malformed, starting empty", zap.String("path", path), zap.Error(err))
			s.data = make(map[string]string)
		}
	}

	return s, nil
}

// Get returns the value stored under key.
func (s *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", false, ErrClosed
	}
	v, ok := s.data[key]
	return v, ok, nil
}

// Put stores value under key and flushes the namespace to disk.
func (s *FileStore) Put(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	prev, existed := s.data[key]
	s.data[key] = value
	if err := s.flush(); err != nil {
		if existed {
			s.data[key] = prev
		} else {
			delete(s.data, key)
		}
		return err
	}

	s.logger.Debug("storage key written", zap.String("key", key), zap.Int("bytes", len(value)))
	return nil
}

// Close stops accepting operations. The file is already up to date.
func (s *FileStore) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *FileStore) flush() error {
	payload, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode storage: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp storage file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp storage file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp storage file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace storage file %s: %w", s.path, err)
	}
	return nil
}
