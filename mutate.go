package wgconf

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gopasspw/gopass/pkg/debug"
)

// All mutations follow the same shape: resolve the target against fresh
// section records, validate the arguments, splice the line buffer and
// invalidate the records. No derived state is held across the edit and a
// failing call leaves the buffer untouched.

func checkComment(comment string) error {
	if comment == "" {
		return nil
	}

	if !strings.HasPrefix(strings.TrimSpace(comment), "#") {
		return fmt.Errorf("%w: %q", ErrInvalidComment, comment)
	}

	return nil
}

// AddPeer appends a new [Peer] section with the given key to the end of the
// buffer, separated by a blank line. A non-empty leadingComment is inserted
// before the header and must start with "#".
func (c *Config) AddPeer(key, leadingComment string) error {
	if err := c.sections(); err != nil {
		return err
	}

	if _, found := c.peers[key]; found {
		return fmt.Errorf("%w: %q", ErrPeerExists, key)
	}
	if err := checkComment(leadingComment); err != nil {
		return err
	}

	c.lines = append(c.lines, "")
	if leadingComment != "" {
		c.lines = append(c.lines, leadingComment)
	}
	c.lines = append(c.lines, "[Peer]", formatAttrLine(c.keyAttr(), []any{key}, ""))

	debug.V(1).Log("added peer %q", key)
	c.invalidate()

	return nil
}

// DelPeer removes the section of the peer with the given key, including its
// leading and trailing comment lines. A blank line directly above the
// section is removed as well to keep the file tidy.
func (c *Config) DelPeer(key string) error {
	p, err := c.peer(key)
	if err != nil {
		return err
	}

	first, last := p.FirstLine, p.LastLine
	if first > 0 && c.lines[first-1] == "" {
		first--
	}
	c.lines = slices.Delete(c.lines, first, last+1)

	debug.V(1).Log("deleted peer %q (lines %d-%d)", key, first, last)
	c.invalidate()

	return nil
}

// AddAttr adds an attribute/value pair to the addressed section. If a line
// for the attribute already exists, the value is appended to that line's
// value list and the line's trailing comment is preserved; newLine forces a
// fresh "attr = value" line after the last matching one instead. Without any
// matching line the new line goes after the section's last line. A non-empty
// leadingComment is inserted directly before the edited or inserted line and
// must start with "#".
func (c *Config) AddAttr(t Target, attr string, value any, leadingComment string, newLine bool) error {
	s, err := c.section(t)
	if err != nil {
		return err
	}
	if err := checkComment(leadingComment); err != nil {
		return err
	}

	lineFound := -1
	for i := s.FirstLine + 1; i <= s.LastLine; i++ {
		name, _, _ := parseAttrLine(c.lines[i])
		if name == attr {
			lineFound = i
		}
	}

	if lineFound < 0 || newLine {
		if lineFound < 0 {
			lineFound = s.LastLine
		}
		lineFound++
		c.lines = slices.Insert(c.lines, lineFound, formatAttrLine(attr, []any{value}, ""))
	} else {
		name, values, comment := parseAttrLine(c.lines[lineFound])
		c.lines[lineFound] = formatAttrLine(name, append(values, value), comment)
	}

	if leadingComment != "" {
		c.lines = slices.Insert(c.lines, lineFound, leadingComment)
	}

	debug.V(2).Log("added %s = %v to %s", attr, value, t)
	c.invalidate()

	return nil
}

// DelAttr removes an attribute from the addressed section. With a nil value
// every matching line is removed entirely; otherwise only the given value is
// dropped from the matching lines, deleting a line once its value list runs
// empty. Value matching is type-sensitive: a numeric line value only matches
// an int. When removeComments is set, the contiguous run of comment lines
// directly above the first match is removed as well.
func (c *Config) DelAttr(t Target, attr string, value any, removeComments bool) error {
	s, err := c.section(t)
	if err != nil {
		return err
	}

	var found []int
	for i := s.FirstLine + 1; i <= s.LastLine; i++ {
		name, values, _ := parseAttrLine(c.lines[i])
		if name != attr {
			continue
		}
		if value == nil || slices.Contains(values, value) {
			found = append(found, i)
		}
	}
	if len(found) == 0 {
		return fmt.Errorf("%w: %s in %s", ErrAttrNotFound, attr, t)
	}

	// reversed so earlier indices stay valid
	for j := len(found) - 1; j >= 0; j-- {
		i := found[j]
		if value == nil {
			c.lines = slices.Delete(c.lines, i, i+1)

			continue
		}

		name, values, comment := parseAttrLine(c.lines[i])
		values = removeValue(values, value)
		if len(values) == 0 {
			c.lines = slices.Delete(c.lines, i, i+1)
		} else {
			c.lines[i] = formatAttrLine(name, values, comment)
		}
	}

	if removeComments {
		for i := found[0] - 1; i > 0 && strings.HasPrefix(c.lines[i], "#"); i-- {
			c.lines = slices.Delete(c.lines, i, i+1)
		}
	}

	debug.V(2).Log("deleted %s (value %v) from %s", attr, value, t)
	c.invalidate()

	return nil
}

// EnablePeer strips the disable marker from every line of the peer's
// section. Enabling an enabled peer is a no-op.
func (c *Config) EnablePeer(key string) error {
	p, err := c.peer(key)
	if err != nil {
		return err
	}

	for i := p.FirstLine; i <= p.LastLine; i++ {
		c.lines[i] = strings.ReplaceAll(c.lines[i], disableMarker, "")
	}

	debug.V(1).Log("enabled peer %q", key)
	c.invalidate()

	return nil
}

// DisablePeer prefixes every line of the peer's section with the disable
// marker. Disabling an already disabled peer is a no-op.
func (c *Config) DisablePeer(key string) error {
	p, err := c.peer(key)
	if err != nil {
		return err
	}
	if p.Disabled {
		return nil
	}

	for i := p.FirstLine; i <= p.LastLine; i++ {
		c.lines[i] = disableMarker + c.lines[i]
	}

	debug.V(1).Log("disabled peer %q", key)
	c.invalidate()

	return nil
}
