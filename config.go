package wgconf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gopasspw/gopass/pkg/debug"
	"github.com/gopasspw/gopass/pkg/set"
)

// DefaultKeyAttr is the attribute identifying a peer section.
const DefaultKeyAttr = "PublicKey"

// Config represents a single WireGuard configuration file.
//
// Config handles reading and writing one configuration file while preserving
// the original formatting. The line buffer is the sole source of truth:
// comments, blank lines and untouched sections survive byte-for-byte, and
// every mutation is a minimal line splice. The section records (interface
// attributes, peers) are derived from the buffer on demand and invalidated
// by every mutation, never edited directly.
//
// Fields:
// - filename: file path of this config file (may be empty for in-memory use)
// - keyattr: attribute identifying peer sections (default: PublicKey)
// - noWrites: if true, prevents persisting changes to disk (useful for tests)
// - lines: the raw text, one entry per physical line, no trailing newlines
// - iface, peers, peerOrder: lazily derived section records
//
// Note: Config is not thread-safe. Concurrent access from multiple
// goroutines is not supported. Callers must provide synchronization if
// needed, including external file locking for multi-writer access to the
// same file.
//
// Typical Usage:
//
//	cfg, err := wgconf.LoadConfig("wg0")
//	if err != nil { ... }
//	peers, err := cfg.GetPeers(false)
//	if err := cfg.AddAttr(wgconf.Interface(), "ListenPort", 51820, "", false); err != nil { ... }
//	if err := cfg.Write(); err != nil { ... }
type Config struct {
	filename string
	keyattr  string
	noWrites bool

	lines []string

	iface     *Section
	peers     map[string]*Section
	peerOrder []string
}

// New returns an empty config for the given file, initialized with a bare
// [Interface] header. file may be a bare interface name like "wg0" (resolved
// below ConfigDir), a full path, or empty for a purely in-memory config.
func New(file string) *Config {
	c := &Config{
		filename: resolveFilename(file),
		keyattr:  DefaultKeyAttr,
		lines:    []string{"[Interface]"},
	}

	return c
}

// NewWithKeyAttr is like New but identifies peer sections by the given
// attribute instead of PublicKey.
func NewWithKeyAttr(file, keyattr string) *Config {
	c := New(file)
	c.keyattr = keyattr

	return c
}

// LoadConfig reads and parses the WireGuard config from the given file.
// file may be a bare interface name or a full path, see New.
func LoadConfig(file string) (*Config, error) {
	c := New(file)
	if err := c.Read(); err != nil {
		return nil, err
	}

	return c, nil
}

// ParseConfig parses a WireGuard config from the given reader. The resulting
// config has no filename, so Write requires an explicit one.
func ParseConfig(r io.Reader) (*Config, error) {
	c := New("")
	if err := c.readFrom(r); err != nil {
		return nil, err
	}

	return c, nil
}

// Filename returns the resolved path of the underlying file, if any.
func (c *Config) Filename() string {
	return c.filename
}

func (c *Config) keyAttr() string {
	if c.keyattr == "" {
		return DefaultKeyAttr
	}

	return c.keyattr
}

// Reset empties the config and writes a bare [Interface] header, optionally
// preceded by a leading comment.
func (c *Config) Reset(leadingComment string) error {
	if err := checkComment(leadingComment); err != nil {
		return err
	}

	lines := make([]string, 0, 2)
	if leadingComment != "" {
		lines = append(lines, leadingComment)
	}
	c.lines = append(lines, "[Interface]")
	c.invalidate()

	return nil
}

// Read loads the config file into memory, replacing any previous content.
func (c *Config) Read() error {
	if c.filename == "" {
		return ErrNoFilename
	}

	fh, err := os.Open(c.filename)
	if err != nil {
		return err
	}
	defer fh.Close() //nolint:errcheck

	debug.V(1).Log("reading config from %s", c.filename)

	return c.readFrom(fh)
}

func (c *Config) readFrom(r io.Reader) error {
	s := bufio.NewScanner(r)
	lines := make([]string, 0, 128)
	for s.Scan() {
		lines = append(lines, strings.TrimRight(s.Text(), " \t\r"))
	}
	if err := s.Err(); err != nil {
		return err
	}

	c.lines = lines
	c.invalidate()

	// fail fast on malformed input, no partial model is kept around
	return c.sections()
}

// Write serializes the line buffer to the config file, creating or
// truncating it with 0640 permissions. The write is a single pass over the
// whole buffer; no partial-write recovery is provided.
func (c *Config) Write() error {
	return c.WriteFile("")
}

// WriteFile is like Write but writes to the given file instead of the one
// the config was created with. An empty file falls back to the configured
// filename.
func (c *Config) WriteFile(file string) error {
	fn := c.filename
	if file != "" {
		fn = resolveFilename(file)
	}
	if fn == "" {
		return ErrNoFilename
	}

	if c.noWrites {
		debug.V(3).Log("not writing changes to disk (noWrites set, path %q)", fn)

		return nil
	}

	if err := os.MkdirAll(filepath.Dir(fn), 0o700); err != nil {
		return fmt.Errorf("failed to create directory %q for %q: %w", filepath.Dir(fn), fn, err)
	}

	if err := os.WriteFile(fn, []byte(c.String()), 0o640); err != nil {
		return fmt.Errorf("failed to write config to %s: %w", fn, err)
	}

	debug.V(1).Log("wrote config to %s", fn)

	return nil
}

// String returns the serialized config, each buffered line terminated by a
// newline.
func (c *Config) String() string {
	if len(c.lines) == 0 {
		return ""
	}

	return strings.Join(c.lines, "\n") + "\n"
}

// WriteTo writes the serialized config to w. It implements io.WriterTo.
func (c *Config) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, c.String())

	return int64(n), err
}

// Target addresses a section for attribute operations: either the single
// [Interface] section or a [Peer] section identified by the value of its key
// attribute.
type Target struct {
	peer bool
	key  string
}

// Interface addresses the [Interface] section.
func Interface() Target {
	return Target{}
}

// Peer addresses the [Peer] section with the given key.
func Peer(key string) Target {
	return Target{peer: true, key: key}
}

// String implements fmt.Stringer for debugging.
func (t Target) String() string {
	if !t.peer {
		return "[Interface]"
	}

	return fmt.Sprintf("[Peer] %s", t.key)
}

// section resolves a target to its derived record, rebuilding the records
// if needed.
func (c *Config) section(t Target) (*Section, error) {
	if err := c.sections(); err != nil {
		return nil, err
	}

	if !t.peer {
		return c.iface, nil
	}

	return c.peer(t.key)
}

func (c *Config) peer(key string) (*Section, error) {
	if err := c.sections(); err != nil {
		return nil, err
	}

	p, found := c.peers[key]
	// the empty key holds peer sections lacking the key attribute, it never
	// matches a lookup
	if !found || key == "" {
		return nil, fmt.Errorf("%w: %q", ErrPeerNotFound, key)
	}

	return p, nil
}

// GetInterface returns a copy of the attributes of the [Interface] section.
func (c *Config) GetInterface() (map[string]any, error) {
	if err := c.sections(); err != nil {
		return nil, err
	}

	return cloneAttrs(c.iface.Attrs), nil
}

// InterfaceSection returns the full derived record of the [Interface]
// section, including line bounds and the raw line span.
func (c *Config) InterfaceSection() (*Section, error) {
	if err := c.sections(); err != nil {
		return nil, err
	}

	return c.iface.clone(), nil
}

// GetPeers returns the peer keys in file order. Disabled peers are only
// included when includeDisabled is set.
func (c *Config) GetPeers(includeDisabled bool) ([]string, error) {
	if err := c.sections(); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(c.peerOrder))
	for _, k := range c.peerOrder {
		if k == "" {
			continue
		}
		if !includeDisabled && c.peers[k].Disabled {
			continue
		}
		keys = append(keys, k)
	}

	return keys, nil
}

// GetPeersData returns a copy of the attribute mapping of every peer,
// keyed by peer key. Disabled peers are only included when includeDisabled
// is set.
func (c *Config) GetPeersData(includeDisabled bool) (map[string]map[string]any, error) {
	keys, err := c.GetPeers(includeDisabled)
	if err != nil {
		return nil, err
	}

	out := make(map[string]map[string]any, len(keys))
	for _, k := range keys {
		out[k] = cloneAttrs(c.peers[k].Attrs)
	}

	return out, nil
}

// GetPeer returns a copy of the attributes of the peer with the given key.
func (c *Config) GetPeer(key string) (map[string]any, error) {
	p, err := c.peer(key)
	if err != nil {
		return nil, err
	}

	return cloneAttrs(p.Attrs), nil
}

// PeerSection returns the full derived record of the peer with the given
// key, including line bounds, the raw line span and the disabled flag.
func (c *Config) PeerSection(key string) (*Section, error) {
	p, err := c.peer(key)
	if err != nil {
		return nil, err
	}

	return p.clone(), nil
}

// PeerEnabled reports whether the peer with the given key is enabled, i.e.
// its section does not carry the disable marker.
func (c *Config) PeerEnabled(key string) (bool, error) {
	p, err := c.peer(key)
	if err != nil {
		return false, err
	}

	return !p.Disabled, nil
}

// ListAttrs returns the sorted attribute names of the addressed section.
func (c *Config) ListAttrs(t Target) ([]string, error) {
	s, err := c.section(t)
	if err != nil {
		return nil, err
	}

	return set.SortedKeys(s.Attrs), nil
}
