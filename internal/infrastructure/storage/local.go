package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

type localStore struct {
	root      string
	publicURL string
}

// NewLocalStore writes under root and serves from publicURL (e.g. "/storage").
func NewLocalStore(root, publicURL string) (Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create %s: %w", root, err)
	}
	return &localStore{root: root, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

func (s *localStore) resolve(name string) (string, error) {
	clean := path.Clean("/" + name)[1:]
	if clean == "" {
		return "", fmt.Errorf("storage: empty object name")
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

func (s *localStore) Put(_ context.Context, name, _ string, data []byte) (string, error) {
	full, err := s.resolve(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("storage: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write %s: %w", name, err)
	}
	return s.publicURL + "/" + strings.TrimPrefix(path.Clean("/"+name), "/"), nil
}

func (s *localStore) Delete(_ context.Context, name string) error {
	full, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: delete %s: %w", name, err)
	}
	return nil
}
