package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"convert-json-to-parquet/internal/location"
)

var _ Store = (*LocalStore)(nil)

// LocalStore serves file:// locations and bare paths.
type LocalStore struct{}

// NewLocalStore returns a store over the local file system.
func NewLocalStore() *LocalStore {
	return &LocalStore{}
}

// List fails with ErrNotFound when loc does not exist. An empty
// directory lists no objects.
func (s *LocalStore) List(ctx context.Context, loc location.Location) ([]Object, error) {
	info, err := os.Stat(loc.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, loc)
		}
		return nil, fmt.Errorf("listing %s: %w", loc, err)
	}
	if !info.IsDir() {
		return []Object{{Location: loc, Size: info.Size()}}, nil
	}

	var objects []Object
	err = filepath.WalkDir(loc.Path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(loc.Path, p)
		if err != nil {
			return err
		}
		if hidden(filepath.ToSlash(rel)) {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		objects = append(objects, Object{
			Location: location.Location{Scheme: location.SchemeFile, Path: p},
			Size:     fi.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", loc, err)
	}

	sort.Slice(objects, func(i, j int) bool { return objects[i].Location.Path < objects[j].Location.Path })
	return objects, nil
}

func (s *LocalStore) Open(ctx context.Context, loc location.Location) (io.ReadCloser, error) {
	f, err := os.Open(loc.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, loc)
		}
		return nil, fmt.Errorf("opening %s: %w", loc, err)
	}
	return f, nil
}

func (s *LocalStore) Put(ctx context.Context, loc location.Location, body io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(loc.Path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", loc, err)
	}
	f, err := os.Create(loc.Path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", loc, err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", loc, err)
	}
	return f.Close()
}

func (s *LocalStore) Delete(ctx context.Context, loc location.Location) error {
	if err := os.Remove(loc.Path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, loc)
		}
		return fmt.Errorf("deleting %s: %w", loc, err)
	}
	return nil
}
