package formfill

import (
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/lvillar/formfill/assets"
	"github.com/lvillar/formfill/mapping"
)

// Default asset names, relative to the root directory.
const (
	DefaultMappingPath = "mappings/TOP.json"
	DefaultFontFile    = "malgun.ttf"
)

// Option is a functional option for configuring an Engine via New.
type Option func(*config)

type config struct {
	root           string
	searchDirs     []string
	mappingPath    string
	fontCandidates []string
	strictMapping  bool
	logger         *slog.Logger
	cache          assets.Cache
	clock          func() time.Time
	wrapBoxes      map[string]mapping.WrapBox
}

func defaultConfig() *config {
	return &config{
		root:        ".",
		mappingPath: DefaultMappingPath,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		clock:       time.Now,
		wrapBoxes:   map[string]mapping.WrapBox{},
	}
}

// dirs is the ordered asset search path: the root, any extra directories,
// then the working directory.
func (c *config) dirs() []string {
	out := append([]string{c.root}, c.searchDirs...)
	return append(out, ".")
}

// WithRoot sets the directory assets are resolved against first.
func WithRoot(dir string) Option {
	return func(c *config) {
		c.root = dir
	}
}

// WithSearchDirs adds directories searched after the root for the template
// and font.
func WithSearchDirs(dirs ...string) Option {
	return func(c *config) {
		c.searchDirs = append(c.searchDirs, dirs...)
	}
}

// WithMappingPath sets the mapping file location. A relative path is taken
// from the root directory.
func WithMappingPath(path string) Option {
	return func(c *config) {
		c.mappingPath = path
	}
}

// WithFontCandidates replaces the font search list. The first existing file
// is used as the embedded face.
func WithFontCandidates(paths ...string) Option {
	return func(c *config) {
		c.fontCandidates = paths
	}
}

// WithStrictMapping makes a mapping file that fails to parse fatal instead
// of falling back to an empty mapping.
func WithStrictMapping(strict bool) Option {
	return func(c *config) {
		c.strictMapping = strict
	}
}

// WithLogger sets the structured logger. Warnings are logged here as well
// as returned in Result.Warnings.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithCache reads assets through cache.
func WithCache(cache assets.Cache) Option {
	return func(c *config) {
		c.cache = cache
	}
}

// WithClock sets the time source used for the default apply date.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.clock = now
		}
	}
}

// WithWrapBox registers a wrap box. Text spots whose wrap key or field key
// equals name are wrapped to it. Boxes in the mapping file take precedence.
func WithWrapBox(name string, box mapping.WrapBox) Option {
	return func(c *config) {
		c.wrapBoxes[name] = box
	}
}

func (c *config) resolveMappingPath() string {
	if filepath.IsAbs(c.mappingPath) {
		return c.mappingPath
	}
	return filepath.Join(c.root, c.mappingPath)
}

func (c *config) fontSearch() []string {
	if len(c.fontCandidates) > 0 {
		return c.fontCandidates
	}
	return assets.Candidates(DefaultFontFile, c.dirs()...)
}
