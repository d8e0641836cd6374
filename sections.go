package wgconf

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gopasspw/gopass/pkg/debug"
)

// disableMarker is the literal prefix applied to every line of a section to
// mark it inactive without deleting it.
const disableMarker = "#! "

// Section is the derived record for a single [Interface] or [Peer] block.
//
// Fields:
// - Attrs: attribute name to value; a single value is stored as a scalar
//   (string or int), repeated or comma-separated values as a []any
// - FirstLine, LastLine: zero-based, inclusive bounds into the line buffer,
//   including a contiguous comment block directly above the header and any
//   trailing comment lines
// - Raw: the literal slice of the line buffer between the bounds
// - Disabled: true iff the first raw line starts with the disable marker
//
// A Section references the line buffer by index only and becomes stale as
// soon as a mutation splices the buffer. Never retain one across an edit.
type Section struct {
	Attrs     map[string]any
	FirstLine int
	LastLine  int
	Raw       []string
	Disabled  bool
}

func (s *Section) clone() *Section {
	return &Section{
		Attrs:     cloneAttrs(s.Attrs),
		FirstLine: s.FirstLine,
		LastLine:  s.LastLine,
		Raw:       slices.Clone(s.Raw),
		Disabled:  s.Disabled,
	}
}

func cloneAttrs(attrs map[string]any) map[string]any {
	out := make(map[string]any, len(attrs))
	for k, v := range attrs {
		if vs, ok := v.([]any); ok {
			out[k] = slices.Clone(vs)

			continue
		}
		out[k] = v
	}

	return out
}

// sectionKind is the parser state: outside any section, inside the
// [Interface] section or inside a [Peer] section.
type sectionKind int

const (
	noSection sectionKind = iota
	inInterface
	inPeer
)

type sectionBuilder struct {
	kind  sectionKind
	attrs map[string][]any
	first int
	last  int
}

// sections rebuilds the derived section records if they were invalidated by
// a mutation. Reads must call this before touching iface or peers.
func (c *Config) sections() error {
	if c.iface != nil {
		return nil
	}

	return c.parseLines()
}

// invalidate drops all derived section records. Every mutation of the line
// buffer must call this before the records are next read.
func (c *Config) invalidate() {
	c.iface = nil
	c.peers = nil
	c.peerOrder = nil
}

// parseLines derives the section records from the line buffer in a single
// forward pass. On error nothing is kept, the config stays unbuilt.
func (c *Config) parseLines() error {
	iface := &Section{Attrs: map[string]any{}, LastLine: -1}
	peers := make(map[string]*Section, 8)
	order := make([]string, 0, 8)

	closeSection := func(b *sectionBuilder) {
		if b == nil {
			return
		}

		attrs := make(map[string]any, len(b.attrs))
		for k, vs := range b.attrs {
			if len(vs) == 1 {
				attrs[k] = vs[0]

				continue
			}
			attrs[k] = slices.Clone(vs)
		}

		s := &Section{
			Attrs:     attrs,
			FirstLine: b.first,
			LastLine:  b.last,
			Raw:       slices.Clone(c.lines[b.first : b.last+1]),
		}
		s.Disabled = strings.HasPrefix(s.Raw[0], disableMarker)

		if b.kind == inInterface {
			iface = s

			return
		}

		key := keyString(attrs[c.keyAttr()])
		if _, dup := peers[key]; !dup {
			order = append(order, key)
		}
		peers[key] = s
	}

	var cur *sectionBuilder
	// A virtual blank line precedes the start of the file so that leading
	// comments of the very first section are captured as well.
	lastBlank := -1
	haveBlank := true

	for i, raw := range c.lines {
		line := strings.TrimSpace(strings.ReplaceAll(raw, disableMarker, ""))

		switch {
		case line == "":
			lastBlank = i
			haveBlank = true
		case strings.HasPrefix(line, "["):
			// Trailing blank lines belong to neither section; they cap the
			// previous section and start the new one's leading-comment span.
			if cur != nil && haveBlank {
				cur.last = lastBlank - 1
			}
			closeSection(cur)

			b := &sectionBuilder{attrs: make(map[string][]any, 8), first: i, last: i}
			if haveBlank {
				b.first = lastBlank + 1
				haveBlank = false
			}

			name, _, _ := strings.Cut(line[1:], "]")
			switch strings.ToLower(name) {
			case "interface":
				b.kind = inInterface
			case "peer":
				b.kind = inPeer
			default:
				return fmt.Errorf("%w [%s] in line %d", ErrUnsupportedSection, name, i+1)
			}
			cur = b
		case strings.HasPrefix(line, "#"):
			if cur != nil {
				cur.last = i
			}
		default:
			if cur == nil {
				// attribute line before any section header
				continue
			}
			attr, values, _ := parseAttrLine(line)
			cur.attrs[attr] = append(cur.attrs[attr], values...)
			cur.last = i
		}
	}
	closeSection(cur)

	c.iface, c.peers, c.peerOrder = iface, peers, order

	debug.V(3).Log("parsed %d lines: %d interface attrs, %d peers", len(c.lines), len(iface.Attrs), len(peers))

	return nil
}

// keyString normalizes a collapsed attribute value for use as a peer map
// key. A missing key attribute maps to the empty string, which never matches
// a lookup.
func keyString(v any) string {
	if v == nil {
		return ""
	}

	return fmt.Sprint(v)
}
