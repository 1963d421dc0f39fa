// Package storage abstracts the object stores jobs read input from and write Parquet to.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"convert-json-to-parquet/internal/location"
	"convert-json-to-parquet/pkg/types"
)

// ErrNotFound is returned when an object does not exist.
var ErrNotFound = errors.New("object not found")

// Object is one listed object.
type Object struct {
	Location location.Location
	Size     int64
}

// Store reads and writes objects at locations of one scheme.
type Store interface {
	// List returns the objects at loc: loc itself if it names an object,
	// otherwise everything beneath it. Results are in lexicographic order.
	List(ctx context.Context, loc location.Location) ([]Object, error)
	// Open returns a reader for the object at loc.
	Open(ctx context.Context, loc location.Location) (io.ReadCloser, error)
	// Put writes body to loc, replacing any existing object.
	Put(ctx context.Context, loc location.Location, body io.Reader) error
	// Delete removes the object at loc.
	Delete(ctx context.Context, loc location.Location) error
}

// ForScheme builds the store that serves locations of the given scheme.
func ForScheme(ctx context.Context, scheme location.Scheme, cfg types.S3Config) (Store, error) {
	switch scheme {
	case location.SchemeS3:
		client, err := NewS3Client(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewS3Store(client), nil
	case location.SchemeFile:
		return NewLocalStore(), nil
	default:
		return nil, fmt.Errorf("no store for scheme %q", scheme)
	}
}

// hidden reports whether a listed key is a directory marker or a
// bookkeeping file (_SUCCESS, .crc and similar) that is not data.
func hidden(key string) bool {
	if key == "" || strings.HasSuffix(key, "/") {
		return true
	}
	base := key
	if i := strings.LastIndex(key, "/"); i >= 0 {
		base = key[i+1:]
	}
	return strings.HasPrefix(base, "_") || strings.HasPrefix(base, ".")
}

// underPrefix reports whether key is prefix itself or lies beneath prefix as a directory.
func underPrefix(key, prefix string) bool {
	if prefix == "" || strings.HasSuffix(prefix, "/") {
		return strings.HasPrefix(key, prefix)
	}
	return key == prefix || strings.HasPrefix(key, prefix+"/")
}
