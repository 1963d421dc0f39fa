// Package location parses the object-storage URIs jobs read from and write to.
package location

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// Scheme identifies the backing store of a location.
type Scheme string

const (
	SchemeS3   Scheme = "s3"
	SchemeFile Scheme = "file"
)

// ErrInvalid is returned for locations that cannot be parsed.
var ErrInvalid = errors.New("invalid location")

// Location is a parsed storage URI. For S3, Path is the key (or key prefix)
// without a leading slash. For the file system, Path is a file system path.
type Location struct {
	Scheme Scheme
	Bucket string
	Path   string
}

// Parse accepts s3://, s3a://, s3n://, file:// URIs and bare file system paths.
func Parse(raw string) (Location, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Location{}, fmt.Errorf("%w: empty", ErrInvalid)
	}
	if !strings.Contains(raw, "://") {
		return Location{Scheme: SchemeFile, Path: filepath.Clean(raw)}, nil
	}

	scheme, rest, _ := strings.Cut(raw, "://")

	// Keys are kept verbatim: S3 keys are not URL-encoded, so "%", "#" and
	// "?" are ordinary key characters.
	switch strings.ToLower(scheme) {
	case "s3", "s3a", "s3n":
		bucket, key, _ := strings.Cut(rest, "/")
		if bucket == "" {
			return Location{}, fmt.Errorf("%w: %s: no bucket", ErrInvalid, raw)
		}
		return Location{
			Scheme: SchemeS3,
			Bucket: bucket,
			Path:   strings.TrimLeft(key, "/"),
		}, nil
	case "file":
		if rest == "" {
			return Location{}, fmt.Errorf("%w: %s: no path", ErrInvalid, raw)
		}
		return Location{Scheme: SchemeFile, Path: filepath.Clean(rest)}, nil
	default:
		return Location{}, fmt.Errorf("%w: %s: unsupported scheme %q", ErrInvalid, raw, scheme)
	}
}

// MustParse is Parse for constant inputs; it panics on error.
func MustParse(raw string) Location {
	l, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return l
}

// Join returns the location of name beneath l.
func (l Location) Join(name string) Location {
	switch l.Scheme {
	case SchemeS3:
		if l.Path == "" {
			l.Path = name
		} else {
			l.Path = strings.TrimSuffix(l.Path, "/") + "/" + name
		}
	default:
		l.Path = filepath.Join(l.Path, name)
	}
	return l
}

// Base returns the last element of the path.
func (l Location) Base() string {
	if l.Scheme == SchemeS3 {
		return path.Base(l.Path)
	}
	return filepath.Base(l.Path)
}

// String renders the canonical URI.
func (l Location) String() string {
	switch l.Scheme {
	case SchemeS3:
		return "s3://" + l.Bucket + "/" + l.Path
	default:
		return "file://" + filepath.ToSlash(l.Path)
	}
}
