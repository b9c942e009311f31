package repo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/storefront-poc-v1/server/internal/cart/model"
	errx "github.com/storefront-poc-v1/server/internal/core/error"
	logx "github.com/storefront-poc-v1/server/pkg/logger"
)

// FileStorage persists the cart to a single file on local disk.
// Writes go to a temp file in the same directory and are renamed over the
// target, so a reader never sees a partial write.
type FileStorage struct {
	path string
}

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: filepath.Clean(path)}
}

func (f *FileStorage) Read(_ context.Context) ([]byte, error) {
	b, err := os.ReadFile(f.path)
	if err != nil {
		return nil, errx.WrapStorage(err)
	}
	return b, nil
}

func (f *FileStorage) Write(_ context.Context, data []byte) (err error) {
	dir := filepath.Dir(f.path)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		logx.Error().Err(err).Str("dir", dir).Msg("failed to create cart storage directory")
		return errx.WrapStorage(fmt.Errorf("creating directory %q: %w", dir, err))
	}

	tmp, err := os.CreateTemp(dir, ".cart-*.tmp")
	if err != nil {
		logx.Error().Err(err).Str("dir", dir).Msg("failed to create temp file")
		return errx.WrapStorage(fmt.Errorf("creating temp file in %q: %w", dir, err))
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errx.WrapStorage(fmt.Errorf("writing %q: %w", tmpName, err))
	}
	if err = tmp.Close(); err != nil {
		return errx.WrapStorage(fmt.Errorf("closing %q: %w", tmpName, err))
	}
	if err = os.Rename(tmpName, f.path); err != nil {
		logx.Error().Err(err).Str("path", f.path).Msg("failed to replace cart file")
		return errx.WrapStorage(fmt.Errorf("renaming %q to %q: %w", tmpName, f.path, err))
	}
	return nil
}

var _ model.StateStorage = (*FileStorage)(nil)
