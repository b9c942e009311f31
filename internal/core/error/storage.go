package errx

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
)

// WrapStorage maps file system errors to AppError. A missing file matches ErrNotFound.
func WrapStorage(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, fs.ErrNotExist) {
		return New(fmt.Errorf("%w: %w", ErrNotFound, err), http.StatusNotFound, StorageNotFoundMessage)
	}

	return New(err, http.StatusInternalServerError, StorageErrorMessage)
}
