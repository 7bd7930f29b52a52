// Package assets locates and reads the files a render depends on: the
// template PDF, the mapping JSON and the TrueType font.
//
// Each asset is looked up in an ordered list of candidate paths and read
// through an optional Cache keyed by path, modification time and size, so
// an edited file is picked up without a restart.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

var ErrNotFound = errors.New("assets: no candidate path exists")

// Resolve returns the first candidate that names an existing regular file.
// Empty candidates are skipped.
func Resolve(candidates ...string) (string, error) {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		fi, err := os.Stat(c)
		if err == nil && fi.Mode().IsRegular() {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: tried %q", ErrNotFound, candidates)
}

// Candidates joins name onto each directory, in order. An absolute name is
// returned on its own.
func Candidates(name string, dirs ...string) []string {
	if name == "" {
		return nil
	}
	if filepath.IsAbs(name) {
		return []string{name}
	}
	out := make([]string, 0, len(dirs))
	for _, d := range dirs {
		out = append(out, filepath.Join(d, name))
	}
	return out
}

// CacheKey identifies one version of a file.
func CacheKey(path string, fi fs.FileInfo) string {
	return fmt.Sprintf("%s|%d|%d", path, fi.ModTime().UnixNano(), fi.Size())
}

// File is a loaded asset.
type File struct {
	Path      string
	Data      []byte
	FromCache bool

	// CacheErr is set when the cache failed and the file was read from
	// disk instead.
	CacheErr error
}

// Loader reads files through a Cache. The zero value reads straight from
// disk and discards log output.
type Loader struct {
	cache  Cache
	logger *slog.Logger
}

// NewLoader returns a Loader backed by cache, which may be nil.
func NewLoader(cache Cache, logger *slog.Logger) *Loader {
	return &Loader{cache: cache, logger: logger}
}

func (l *Loader) log() *slog.Logger {
	if l.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return l.logger
}

// Load reads path. Cache errors are logged and bypassed; only a failure to
// read the file itself is returned.
func (l *Loader) Load(ctx context.Context, path string) (*File, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("assets: %w", err)
	}
	if !fi.Mode().IsRegular() {
		return nil, fmt.Errorf("assets: %s is not a regular file", path)
	}
	f := &File{Path: path}
	key := CacheKey(path, fi)

	if l.cache != nil {
		data, ok, err := l.cache.Get(ctx, key)
		switch {
		case err != nil:
			f.CacheErr = err
			l.log().WarnContext(ctx, "asset cache read failed", "path", path, "err", err)
		case ok:
			f.Data, f.FromCache = data, true
			return f, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("assets: %w", err)
	}
	f.Data = data

	if l.cache != nil && f.CacheErr == nil {
		if err := l.cache.Set(ctx, key, data); err != nil {
			f.CacheErr = err
			l.log().WarnContext(ctx, "asset cache write failed", "path", path, "err", err)
		}
	}
	return f, nil
}

// LoadFirst resolves candidates and loads the first that exists.
func (l *Loader) LoadFirst(ctx context.Context, candidates ...string) (*File, error) {
	path, err := Resolve(candidates...)
	if err != nil {
		return nil, err
	}
	return l.Load(ctx, path)
}
