package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalImageStore writes uploads below Root, which the router serves as MEDIA_URL.
// References are slash separated paths relative to Root, e.g. "product/<uuid>.jpg".
type LocalImageStore struct {
	Root string
}

func NewLocalImageStore(root string) *LocalImageStore {
	return &LocalImageStore{Root: root}
}

// Save stores r under prefix with a fresh name that keeps the original extension.
func (s *LocalImageStore) Save(prefix, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	ref := path.Join(prefix, uuid.NewString()+ext)

	target, err := s.resolve(ref)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}

	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", ref, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(target)
		return "", fmt.Errorf("failed to write %s: %w", ref, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(target)
		return "", fmt.Errorf("failed to write %s: %w", ref, err)
	}
	return ref, nil
}

// Delete removes the referenced file. A missing file is not an error.
func (s *LocalImageStore) Delete(ref string) error {
	target, err := s.resolve(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", ref, err)
	}
	return nil
}

func (s *LocalImageStore) resolve(ref string) (string, error) {
	clean := path.Clean("/" + ref)
	if clean == "/" {
		return "", fmt.Errorf("invalid image reference %q", ref)
	}
	return filepath.Join(s.Root, filepath.FromSlash(clean)), nil
}
