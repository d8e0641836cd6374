package wgconf

import "errors"

var (
	// ErrUnsupportedSection indicates a section header other than
	// [Interface] or [Peer] was encountered during parsing.
	ErrUnsupportedSection = errors.New("unsupported section")
	// ErrPeerNotFound indicates an operation referenced a peer key that
	// does not exist in the config.
	ErrPeerNotFound = errors.New("peer not found")
	// ErrPeerExists indicates AddPeer was called with a key that is
	// already present.
	ErrPeerExists = errors.New("peer already exists")
	// ErrAttrNotFound indicates DelAttr matched no attribute line.
	ErrAttrNotFound = errors.New("attribute not found")
	// ErrInvalidComment indicates a supplied leading comment does not
	// start with the comment marker.
	ErrInvalidComment = errors.New("comment must start with '#'")
	// ErrNoFilename indicates a filename is required but none was set.
	ErrNoFilename = errors.New("no filename set")
)
