package wgconf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gopasspw/gopass/pkg/appdir"
	"github.com/gopasspw/gopass/pkg/debug"
	"github.com/gopasspw/gopass/pkg/set"
)

// Configs manages the WireGuard configs of a single directory, one file per
// interface.
//
// Fields:
// - Dir: the managed directory (default: DefaultConfigDir)
// - NoWrites: if true, configs handed out by this manager never write to
//   disk (useful for tests)
//
// Loaded configs are cached, so repeated Open calls for the same interface
// return the same *Config. Like Config, Configs is not thread-safe.
type Configs struct {
	Dir      string
	NoWrites bool

	cfgs map[string]*Config
}

// DefaultConfigDir returns the directory interface configs are kept in:
// ConfigDir when running as root, a per-user config directory otherwise.
func DefaultConfigDir() string {
	if os.Geteuid() == 0 {
		return ConfigDir
	}

	return appdir.New("wireguard").UserConfig()
}

// NewConfigs returns a manager for the given directory. An empty dir selects
// DefaultConfigDir.
func NewConfigs(dir string) *Configs {
	if dir == "" {
		dir = DefaultConfigDir()
	}

	return &Configs{
		Dir:  dir,
		cfgs: make(map[string]*Config, 4),
	}
}

// String implements fmt.Stringer for debugging.
func (cs *Configs) String() string {
	return fmt.Sprintf("WGConfigs{Dir: %s - NoWrites: %t - Loaded: %d}", cs.Dir, cs.NoWrites, len(cs.cfgs))
}

// Names returns the sorted names of all interfaces with a config file in the
// managed directory.
func (cs *Configs) Names() ([]string, error) {
	entries, err := os.ReadDir(cs.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list configs in %q: %w", cs.Dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), configExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), configExt))
	}

	return set.Sorted(names), nil
}

// List returns the sorted interface names matching the given glob pattern.
func (cs *Configs) List(pattern string) ([]string, error) {
	names, err := cs.Names()
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(names))
	for _, name := range names {
		match, err := globMatch(pattern, name)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		if match {
			out = append(out, name)
		}
	}

	return out, nil
}

// Open loads the config of the named interface, caching it for subsequent
// calls.
func (cs *Configs) Open(name string) (*Config, error) {
	if c, found := cs.cfgs[name]; found {
		return c, nil
	}

	c, err := LoadConfig(filepath.Join(cs.Dir, name+configExt))
	if err != nil {
		return nil, err
	}
	c.noWrites = cs.NoWrites

	if cs.cfgs == nil {
		cs.cfgs = make(map[string]*Config, 4)
	}
	cs.cfgs[name] = c

	debug.V(1).Log("loaded config for %s from %s", name, cs.Dir)

	return c, nil
}

// Create returns a fresh, empty config for the named interface. Nothing is
// written to disk until Config.Write is called. An existing cache entry for
// the name is replaced.
func (cs *Configs) Create(name string) *Config {
	c := New(filepath.Join(cs.Dir, name+configExt))
	c.noWrites = cs.NoWrites

	if cs.cfgs == nil {
		cs.cfgs = make(map[string]*Config, 4)
	}
	cs.cfgs[name] = c

	return c
}
