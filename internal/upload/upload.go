// Package upload stores profile pictures in a flat directory under generated,
// collision-resistant names. Size and MIME type are enforced by the browser
// client before uploading; the server accepts any payload. That trust
// boundary is deliberate and documented, not silently hardened.
package upload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Store is a flat file store for uploaded images.
type Store struct {
	dir string
}

// NewStore creates the storage directory if necessary and returns a store
// writing into it.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

// Dir returns the storage directory, for serving the files back statically.
func (s *Store) Dir() string {
	return s.dir
}

// Save persists the payload under a generated name and returns that name.
// The name combines the current time with a random suffix so that concurrent
// uploads cannot collide, and keeps the extension of the original filename.
func (s *Store) Save(src io.Reader, originalName string) (string, error) {
	name := generateName(originalName)
	path := filepath.Join(s.dir, name)
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return "", err
	}
	if err := dst.Close(); err != nil {
		return "", err
	}
	return name, nil
}

func generateName(originalName string) string {
	ext := filepath.Ext(originalName)
	return fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString(), ext)
}
