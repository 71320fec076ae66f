package kitstore

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/brandkit/pkg/brand"
	"github.com/matzehuels/brandkit/pkg/errors"
	"github.com/matzehuels/brandkit/pkg/observability"
)

// FileStore keeps each user's kit as a JSON file under a base directory.
// Suitable for the CLI and for single-node deployments.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
	logger  *log.Logger
}

// NewFileStore creates a file-backed kit store.
// If baseDir is empty, defaults to ~/.config/brandkit/kits/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodePersistence, err, "get home dir")
		}
		baseDir = filepath.Join(home, ".config", "brandkit", "kits")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, errors.Wrap(errors.ErrCodePersistence, err, "create kit dir")
	}
	return &FileStore{baseDir: baseDir, logger: log.Default()}, nil
}

func (s *FileStore) kitPath(userID string) string {
	return filepath.Join(s.baseDir, userID+".json")
}

func (s *FileStore) Load(ctx context.Context, userID string) (*brand.Config, error) {
	if err := errors.ValidateUserID(userID); err != nil {
		return nil, err
	}
	start := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.kitPath(userID)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			err = errors.New(errors.ErrCodeKitNotFound, "no kit for user %s", userID)
		} else {
			err = errors.Wrap(errors.ErrCodePersistence, err, "read kit file")
		}
		observability.Store().OnLoad(ctx, userID, time.Since(start), err)
		return nil, err
	}

	cfg, err := decodeKit(s.logger, userID, data)
	if err != nil {
		err = errors.Wrap(errors.ErrCodePersistence, err, "parse kit file")
		observability.Store().OnLoad(ctx, userID, time.Since(start), err)
		return nil, err
	}
	observability.Store().OnLoad(ctx, userID, time.Since(start), nil)
	return cfg, nil
}

func (s *FileStore) Save(ctx context.Context, userID string, cfg *brand.Config) error {
	if err := errors.ValidateUserID(userID); err != nil {
		return err
	}
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := cfg.MarshalJSON()
	if err != nil {
		return errors.Wrap(errors.ErrCodePersistence, err, "marshal kit")
	}
	if err := os.WriteFile(s.kitPath(userID), data, 0600); err != nil {
		wrapped := errors.Wrap(errors.ErrCodePersistence, err, "write kit file")
		observability.Store().OnSave(ctx, userID, time.Since(start), wrapped)
		return wrapped
	}
	observability.Store().OnSave(ctx, userID, time.Since(start), nil)
	return nil
}

// Delete removes a user's kit file. Missing files are not an error.
func (s *FileStore) Delete(ctx context.Context, userID string) error {
	if err := errors.ValidateUserID(userID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.kitPath(userID)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodePersistence, err, "remove kit file")
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory for kit files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)
