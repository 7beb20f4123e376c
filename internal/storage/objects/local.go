package objects

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/jaiswar203/CreatorEvolve-Server/internal/common"
	"github.com/jaiswar203/CreatorEvolve-Server/internal/interfaces"
	"github.com/jaiswar203/CreatorEvolve-Server/internal/models"
)

// LocalStore is a filesystem-backed object store. Keys map directly to
// file names under the configured root; a repeated put of the same key
// hint overwrites, which keeps finalizer retries idempotent.
type LocalStore struct {
	dir     string
	baseURL string
	logger  arbor.ILogger
}

// NewLocalStore creates the root directory and returns the store.
func NewLocalStore(logger arbor.ILogger, config *common.ObjectsConfig) (interfaces.ObjectStorage, error) {
	if config.Dir == "" {
		return nil, fmt.Errorf("objects directory is required")
	}
	if err := os.MkdirAll(config.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create objects directory: %w", err)
	}

	return &LocalStore{
		dir:     config.Dir,
		baseURL: strings.TrimRight(config.PublicBaseURL, "/"),
		logger:  logger,
	}, nil
}

func (s *LocalStore) Put(ctx context.Context, r io.Reader, keyHint string) (string, error) {
	key := sanitizeKey(keyHint)
	if key == "" {
		return "", fmt.Errorf("empty object key hint")
	}

	path := filepath.Join(s.dir, key)

	// Write through a temp file so a partial upload never leaves a
	// half-written object under the final key.
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp object: %w", err)
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp object: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to store object: %w", err)
	}

	s.logger.Debug().Str("key", key).Int64("bytes", written).Msg("Object stored")

	return key, nil
}

func (s *LocalStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.dir, sanitizeKey(key)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to open object: %w", err)
	}
	return f, nil
}

func (s *LocalStore) GetURL(key string) string {
	return s.baseURL + "/" + sanitizeKey(key)
}

func (s *LocalStore) Delete(ctx context.Context, key string) error {
	if err := os.Remove(filepath.Join(s.dir, sanitizeKey(key))); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// sanitizeKey flattens a hint into a single safe file name. Path
// separators and parent references are stripped so keys cannot escape
// the store root.
func sanitizeKey(hint string) string {
	hint = strings.ReplaceAll(hint, "\\", "/")
	hint = filepath.Base(filepath.Clean("/" + hint))
	if hint == "/" || hint == "." {
		return ""
	}

	var b strings.Builder
	for _, r := range hint {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
