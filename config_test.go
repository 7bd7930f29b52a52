package formfill

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvillar/formfill/assets"
	"github.com/lvillar/formfill/mapping"
)

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
listen: ":9090"
root: /srv/form
search_dirs: [/opt/form]
fonts: [/fonts/malgun.ttf]
strict_mapping: true
log_level: debug
cache:
  kind: redis
  addr: localhost:6379
  ttl: 10m
wrap:
  address: {max_width: 220, max_lines: 2}
`))
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Listen)
	assert.Equal(t, "/srv/form", cfg.Root)
	assert.Equal(t, DefaultMappingPath, cfg.Mapping)
	assert.True(t, cfg.StrictMapping)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "formfill:", cfg.Cache.Prefix)
	assert.Equal(t, WrapConfig{MaxWidth: 220, MaxLines: 2}, cfg.Wrap["address"])

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestParseConfigRejects(t *testing.T) {
	for name, doc := range map[string]string{
		"cache kind": "cache: {kind: memcached}",
		"redis addr": "cache: {kind: redis}",
		"log level":  "log_level: loud",
		"wrap width": "wrap: {a: {max_lines: 2}}",
		"bad yaml":   "listen: [",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConfig([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	p := filepath.Join(t.TempDir(), "formfill.yaml")
	require.NoError(t, os.WriteFile(p, []byte("root: /data\n"), 0o644))
	cfg, err := LoadConfig(p)
	require.NoError(t, err)
	assert.Equal(t, "/data", cfg.Root)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfigOptions(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
root: /srv/form
mapping: /etc/formfill/TOP.json
fonts: [/fonts/a.ttf, /fonts/b.ttf]
strict_mapping: true
cache: {kind: memory}
wrap:
  memo: {max_width: 100}
`))
	require.NoError(t, err)

	c := defaultConfig()
	for _, opt := range cfg.Options(nil) {
		opt(c)
	}
	assert.Equal(t, "/srv/form", c.root)
	assert.Equal(t, "/etc/formfill/TOP.json", c.resolveMappingPath())
	assert.Equal(t, []string{"/fonts/a.ttf", "/fonts/b.ttf"}, c.fontSearch())
	assert.True(t, c.strictMapping)
	assert.IsType(t, &assets.MemoryCache{}, c.cache)
	assert.Equal(t, mapping.WrapBox{MaxWidth: 100, MaxLines: 1}, c.wrapBoxes["memo"])
	assert.NotNil(t, c.logger)
}

func TestConfigSearchOrder(t *testing.T) {
	c := defaultConfig()
	WithRoot("/srv")(c)
	WithSearchDirs("/opt")(c)
	assert.Equal(t, []string{"/srv", "/opt", "."}, c.dirs())
	assert.Equal(t, filepath.Join("/srv", "mappings", "TOP.json"), c.resolveMappingPath())
	assert.Equal(t, []string{
		filepath.Join("/srv", DefaultFontFile),
		filepath.Join("/opt", DefaultFontFile),
		DefaultFontFile,
	}, c.fontSearch())
}
