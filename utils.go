package wgconf

import (
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// ConfigDir is the directory bare interface names are resolved against.
var ConfigDir = "/etc/wireguard"

// configExt is the filename extension of interface config files.
const configExt = ".conf"

// resolveFilename maps a bare interface name to its canonical path below
// ConfigDir, appending the .conf extension if missing. Anything that is not
// a bare name (i.e. contains a path separator) is passed through unchanged.
//
// Valid examples:
// - wg0           -> /etc/wireguard/wg0.conf
// - wg0.conf      -> /etc/wireguard/wg0.conf
// - /tmp/wg0.conf -> /tmp/wg0.conf
func resolveFilename(file string) string {
	if file == "" {
		return ""
	}

	if filepath.Base(file) != file {
		return file
	}

	if !strings.HasSuffix(file, configExt) {
		file += configExt
	}

	return filepath.Join(ConfigDir, file)
}

// globMatch matches an interface name against a glob pattern.
func globMatch(pattern, s string) (bool, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return false, err
	}

	return g.Match(s), nil
}
