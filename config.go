package formfill

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lvillar/formfill/assets"
	"github.com/lvillar/formfill/mapping"
)

// Config is the file form of the engine options, read by LoadConfig.
//
//	listen: ":8080"
//	root: /srv/form
//	mapping: mappings/TOP.json
//	fonts: [/usr/share/fonts/malgun.ttf]
//	strict_mapping: false
//	log_level: info
//	cache:
//	  kind: redis
//	  addr: localhost:6379
//	  ttl: 10m
//	wrap:
//	  address: {max_width: 220, max_lines: 2}
type Config struct {
	Listen        string                `yaml:"listen"`
	Root          string                `yaml:"root"`
	SearchDirs    []string              `yaml:"search_dirs"`
	Mapping       string                `yaml:"mapping"`
	Fonts         []string              `yaml:"fonts"`
	StrictMapping bool                  `yaml:"strict_mapping"`
	LogLevel      string                `yaml:"log_level"`
	Cache         CacheConfig           `yaml:"cache"`
	Wrap          map[string]WrapConfig `yaml:"wrap"`
}

// CacheConfig selects the asset cache. Kind is "", "memory" or "redis".
type CacheConfig struct {
	Kind     string        `yaml:"kind"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
}

// WrapConfig is a wrap box; sizes are in points.
type WrapConfig struct {
	MaxWidth   float64 `yaml:"max_width"`
	MaxLines   int     `yaml:"max_lines"`
	LineHeight float64 `yaml:"line_height"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Listen:   ":8080",
		Root:     ".",
		Mapping:  DefaultMappingPath,
		LogLevel: "info",
		Cache:    CacheConfig{Prefix: "formfill:"},
	}
}

// LoadConfig reads a YAML file over DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("formfill: reading config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML over DefaultConfig.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("formfill: parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch strings.ToLower(c.Cache.Kind) {
	case "", "none", "memory":
	case "redis":
		if c.Cache.Addr == "" {
			return fmt.Errorf("formfill: config: redis cache needs an addr")
		}
	default:
		return fmt.Errorf("formfill: config: unknown cache kind %q", c.Cache.Kind)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	for name, w := range c.Wrap {
		if w.MaxWidth <= 0 {
			return fmt.Errorf("formfill: config: wrap box %q needs a positive max_width", name)
		}
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return l, fmt.Errorf("formfill: config: log_level: %w", err)
	}
	return l, nil
}

// Options converts the configuration to engine options. logger may be nil.
func (c *Config) Options(logger *slog.Logger) []Option {
	opts := []Option{
		WithRoot(c.Root),
		WithStrictMapping(c.StrictMapping),
		WithLogger(logger),
	}
	if len(c.SearchDirs) > 0 {
		opts = append(opts, WithSearchDirs(c.SearchDirs...))
	}
	if c.Mapping != "" {
		opts = append(opts, WithMappingPath(c.Mapping))
	}
	if len(c.Fonts) > 0 {
		opts = append(opts, WithFontCandidates(c.Fonts...))
	}
	if cache := c.cache(); cache != nil {
		opts = append(opts, WithCache(cache))
	}
	for name, w := range c.Wrap {
		maxLines := w.MaxLines
		if maxLines < 1 {
			maxLines = 1
		}
		opts = append(opts, WithWrapBox(name, mapping.WrapBox{
			MaxWidth:   w.MaxWidth,
			MaxLines:   maxLines,
			LineHeight: w.LineHeight,
		}))
	}
	return opts
}

func (c *Config) cache() assets.Cache {
	switch strings.ToLower(c.Cache.Kind) {
	case "memory":
		return assets.NewMemoryCache()
	case "redis":
		return assets.DialRedis(c.Cache.Addr, c.Cache.Password, c.Cache.DB, c.Cache.Prefix, c.Cache.TTL)
	}
	return nil
}
