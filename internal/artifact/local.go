package artifact

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps artifacts under a root directory. Writes go through a
// temp file and rename so a crashed write never leaves a truncated artifact.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("artifact root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact root: %w", err)
	}
	return &LocalStore{root: root}, nil
}

func (s *LocalStore) path(key string) (string, error) {
	cleaned := filepath.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid artifact key %q", key)
	}
	return filepath.Join(s.root, cleaned), nil
}

func (s *LocalStore) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) (Info, error) {
	target, err := s.path(key)
	if err != nil {
		return Info{}, err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return Info{}, fmt.Errorf("create artifact directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".artifact-*")
	if err != nil {
		return Info{}, fmt.Errorf("create temp artifact: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	written, err := io.Copy(tmp, body)
	if err != nil {
		_ = tmp.Close()
		return Info{}, fmt.Errorf("write artifact %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return Info{}, fmt.Errorf("close temp artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return Info{}, fmt.Errorf("publish artifact %q: %w", key, err)
	}

	stat, err := os.Stat(target)
	if err != nil {
		return Info{}, fmt.Errorf("stat artifact %q: %w", key, err)
	}
	return Info{Key: key, Size: written, LastModified: stat.ModTime()}, nil
}

func (s *LocalStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	target, err := s.path(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(target)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open artifact %q: %w", key, err)
	}
	return file, nil
}

func (s *LocalStore) Stat(_ context.Context, key string) (Info, error) {
	target, err := s.path(key)
	if err != nil {
		return Info{}, err
	}
	stat, err := os.Stat(target)
	if err != nil {
		if os.IsNotExist(err) {
			return Info{}, ErrNotFound
		}
		return Info{}, fmt.Errorf("stat artifact %q: %w", key, err)
	}
	return Info{Key: key, Size: stat.Size(), LastModified: stat.ModTime()}, nil
}

func (s *LocalStore) Delete(_ context.Context, key string) error {
	target, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("delete artifact %q: %w", key, err)
	}
	return nil
}
