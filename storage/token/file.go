// Package tokenstore persists the session token: a single opaque string under
// one well-known path, read at boot, written on login, removed on logout or
// rejection. This file is the portal's only durable state.
package tokenstore

import (
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/session"
)

type FileStore struct {
	path string
}

var _ session.TokenStorage = (*FileStore)(nil) // interface compliance check

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (fs *FileStore) Read() (string, error) {
	data, err := ioutil.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errors.Wrap(err, "reading token file")
	}
	return string(data), nil
}

func (fs *FileStore) Write(token string) error {
	if err := os.MkdirAll(filepath.Dir(fs.path), 0700); err != nil {
		return errors.Wrap(err, "creating token dir")
	}
	if err := ioutil.WriteFile(fs.path, []byte(token), 0600); err != nil {
		return errors.Wrap(err, "writing token file")
	}
	return nil
}

// Clear removes the token file; a missing file is not an error (logout is idempotent).
func (fs *FileStore) Clear() error {
	if err := os.Remove(fs.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing token file")
	}
	return nil
}
