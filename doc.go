// Package wgconf implements a line-preserving editor for WireGuard
// configuration files. It parses a config into an in-memory model that
// supports lookups and scripted mutation (add/remove attributes, add/remove
// peers, enable/disable a peer) while writing back the minimal textual diff:
// original comments, blank lines and untouched sections survive
// byte-for-byte.
//
// The raw lines of the file are the sole source of truth. The derived view
// (interface attributes, peer records with their line bounds) is rebuilt
// lazily from the line buffer and invalidated by every mutation, so the two
// representations can never diverge.
//
// # File format
//
// A config consists of one [Interface] section and any number of [Peer]
// sections made up of "Attr = value" lines. Values may be comma-separated
// lists, a trailing "#" starts a comment. Purely numeric values are reported
// as int, everything else as trimmed strings. Peer sections are identified
// by their key attribute, PublicKey unless configured otherwise.
//
// A section whose lines all carry the literal prefix "#! " is disabled: it
// is presented like a normal section (prefix stripped) plus a disabled flag.
// A "#"-comment block directly above a section header belongs to that
// section.
//
// # Usage
//
// ## Reading
//
// Bare interface names are resolved below ConfigDir (/etc/wireguard):
//
//	cfg, err := wgconf.LoadConfig("wg0")
//	if err != nil {
//		log.Fatal(err)
//	}
//	iface, _ := cfg.GetInterface()
//	fmt.Println(iface["Address"])
//	peers, _ := cfg.GetPeers(false)
//
// ## Editing
//
// Attribute operations address a section with a Target, either
// wgconf.Interface() or wgconf.Peer(key):
//
//	cfg.AddAttr(wgconf.Interface(), "ListenPort", 51820, "", false)
//	cfg.AddPeer("k9UgLE...", "# laptop")
//	cfg.AddAttr(wgconf.Peer("k9UgLE..."), "AllowedIPs", "10.0.0.2/32", "", false)
//	cfg.DisablePeer("k9UgLE...")
//	if err := cfg.Write(); err != nil {
//		log.Fatal(err)
//	}
//
// ## Managing a config directory
//
// Configs manages a directory with one file per interface:
//
//	cfgs := wgconf.NewConfigs("")
//	names, _ := cfgs.List("wg*")
//	cfg, err := cfgs.Open(names[0])
//
// # Limitations
//
// The package validates structure, not semantics: attribute values are not
// checked against the WireGuard protocol. Nested sections are not supported.
// There is no concurrency control and no partial-write recovery; callers
// needing either must provide it externally.
package wgconf
