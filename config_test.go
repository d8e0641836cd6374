package wgconf

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `[Interface]
Address = 10.0.0.1/24
PrivateKey = AAA=
ListenPort = 51820

# laptop
[Peer]
PublicKey = BBB=
AllowedIPs = 10.0.0.2/32, 10.0.1.0/24 # roaming

[Peer]
PublicKey = CCC=
AllowedIPs = 10.0.0.3/32
`

func parseSample(t *testing.T) *Config {
	t.Helper()

	c, err := ParseConfig(strings.NewReader(sampleConfig))
	require.NoError(t, err)

	return c
}

func TestParseConfig(t *testing.T) {
	t.Parallel()

	c := parseSample(t)

	iface, err := c.GetInterface()
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1/24", iface["Address"])
	assert.Equal(t, "AAA=", iface["PrivateKey"])
	assert.Equal(t, 51820, iface["ListenPort"])

	peers, err := c.GetPeers(false)
	require.NoError(t, err)
	assert.Equal(t, []string{"BBB=", "CCC="}, peers)

	peer, err := c.GetPeer("BBB=")
	require.NoError(t, err)
	assert.Equal(t, []any{"10.0.0.2/32", "10.0.1.0/24"}, peer["AllowedIPs"])
}

func TestSectionBounds(t *testing.T) {
	t.Parallel()

	c := parseSample(t)

	iface, err := c.InterfaceSection()
	require.NoError(t, err)
	assert.Equal(t, 0, iface.FirstLine)
	assert.Equal(t, 3, iface.LastLine)
	assert.False(t, iface.Disabled)

	// the comment block above the header belongs to the section
	peer, err := c.PeerSection("BBB=")
	require.NoError(t, err)
	assert.Equal(t, 5, peer.FirstLine)
	assert.Equal(t, 8, peer.LastLine)
	assert.Equal(t, []string{
		"# laptop",
		"[Peer]",
		"PublicKey = BBB=",
		"AllowedIPs = 10.0.0.2/32, 10.0.1.0/24 # roaming",
	}, peer.Raw)
}

// Parsing and immediately serializing without mutation reproduces the
// original text.
func TestRoundTrip(t *testing.T) {
	t.Parallel()

	for name, in := range map[string]string{
		"sample": sampleConfig,
		"disabled section": `[Interface]
PrivateKey = AAA=

#! [Peer]
#! PublicKey = BBB=
#! AllowedIPs = 10.0.0.2/32
`,
		"interface only": "[Interface]\nPrivateKey = AAA=\n",
		"comments and blanks": `# header comment
[Interface]
PrivateKey = AAA=

# comment between sections

[Peer]
PublicKey = BBB=
# trailing comment
`,
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			c, err := ParseConfig(strings.NewReader(in))
			require.NoError(t, err)
			assert.Equal(t, in, c.String())

			again, err := ParseConfig(strings.NewReader(c.String()))
			require.NoError(t, err)
			assert.Equal(t, c.String(), again.String())
		})
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	c := New("")
	assert.Equal(t, "[Interface]\n", c.String())
	assert.Empty(t, c.Filename())

	iface, err := c.GetInterface()
	require.NoError(t, err)
	assert.Empty(t, iface)

	peers, err := c.GetPeers(true)
	require.NoError(t, err)
	assert.Empty(t, peers)
}

func TestReset(t *testing.T) {
	t.Parallel()

	c := parseSample(t)
	require.NoError(t, c.Reset("# fresh start"))
	assert.Equal(t, "# fresh start\n[Interface]\n", c.String())

	assert.ErrorIs(t, c.Reset("not a comment"), ErrInvalidComment)
}

func TestDisabledPeers(t *testing.T) {
	t.Parallel()

	in := `[Interface]
PrivateKey = AAA=

[Peer]
PublicKey = BBB=

#! [Peer]
#! PublicKey = CCC=
#! AllowedIPs = 10.0.0.3/32
`
	c, err := ParseConfig(strings.NewReader(in))
	require.NoError(t, err)

	peers, err := c.GetPeers(false)
	require.NoError(t, err)
	assert.Equal(t, []string{"BBB="}, peers)

	peers, err = c.GetPeers(true)
	require.NoError(t, err)
	assert.Equal(t, []string{"BBB=", "CCC="}, peers)

	// disabled sections are presented with the marker stripped
	peer, err := c.GetPeer("CCC=")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.3/32", peer["AllowedIPs"])

	enabled, err := c.PeerEnabled("CCC=")
	require.NoError(t, err)
	assert.False(t, enabled)

	enabled, err = c.PeerEnabled("BBB=")
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestGetPeersData(t *testing.T) {
	t.Parallel()

	c := parseSample(t)

	data, err := c.GetPeersData(true)
	require.NoError(t, err)
	require.Len(t, data, 2)
	assert.Equal(t, "BBB=", data["BBB="]["PublicKey"])
	assert.Equal(t, "10.0.0.3/32", data["CCC="]["AllowedIPs"])
}

// Returned mappings are copies, mutating them must not leak into the model.
func TestGetPeerReturnsCopy(t *testing.T) {
	t.Parallel()

	c := parseSample(t)

	peer, err := c.GetPeer("BBB=")
	require.NoError(t, err)
	peer["PublicKey"] = "EVIL="
	peer["AllowedIPs"].([]any)[0] = "0.0.0.0/0"

	peer, err = c.GetPeer("BBB=")
	require.NoError(t, err)
	assert.Equal(t, "BBB=", peer["PublicKey"])
	assert.Equal(t, []any{"10.0.0.2/32", "10.0.1.0/24"}, peer["AllowedIPs"])
}

func TestListAttrs(t *testing.T) {
	t.Parallel()

	c := parseSample(t)

	attrs, err := c.ListAttrs(Interface())
	require.NoError(t, err)
	assert.Equal(t, []string{"Address", "ListenPort", "PrivateKey"}, attrs)

	attrs, err = c.ListAttrs(Peer("CCC="))
	require.NoError(t, err)
	assert.Equal(t, []string{"AllowedIPs", "PublicKey"}, attrs)
}

func TestCustomKeyAttr(t *testing.T) {
	t.Parallel()

	td := t.TempDir()
	fn := filepath.Join(td, "wg0.conf")
	content := `[Interface]
PrivateKey = AAA=

[Peer]
Name = alice
PublicKey = BBB=
`
	require.NoError(t, os.WriteFile(fn, []byte(content), 0o640))

	c := NewWithKeyAttr(fn, "Name")
	require.NoError(t, c.Read())

	peers, err := c.GetPeers(true)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, peers)

	peer, err := c.GetPeer("alice")
	require.NoError(t, err)
	assert.Equal(t, "BBB=", peer["PublicKey"])
}

func TestLoadWriteCycle(t *testing.T) {
	t.Parallel()

	td := t.TempDir()
	fn := filepath.Join(td, "wg0.conf")
	require.NoError(t, os.WriteFile(fn, []byte(sampleConfig), 0o640))

	c, err := LoadConfig(fn)
	require.NoError(t, err)
	assert.Equal(t, fn, c.Filename())

	require.NoError(t, c.AddAttr(Interface(), "MTU", 1420, "", false))
	require.NoError(t, c.Write())

	buf, err := os.ReadFile(fn)
	require.NoError(t, err)
	assert.Equal(t, c.String(), string(buf))
	assert.Contains(t, string(buf), "MTU = 1420\n")

	// everything but the edited section survives byte-for-byte
	assert.Contains(t, string(buf), "# laptop\n[Peer]\nPublicKey = BBB=\nAllowedIPs = 10.0.0.2/32, 10.0.1.0/24 # roaming\n")
}

func TestWriteFile(t *testing.T) {
	t.Parallel()

	td := t.TempDir()
	c := parseSample(t)

	fn := filepath.Join(td, "copy.conf")
	require.NoError(t, c.WriteFile(fn))

	buf, err := os.ReadFile(fn)
	require.NoError(t, err)
	assert.Equal(t, sampleConfig, string(buf))
}

func TestWriteTo(t *testing.T) {
	t.Parallel()

	c := parseSample(t)

	var buf bytes.Buffer
	n, err := c.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(len(sampleConfig)), n)
	assert.Equal(t, sampleConfig, buf.String())
}

// The scenario from the package documentation: appending an interface
// attribute and disabling a peer.
func TestScenario(t *testing.T) {
	t.Parallel()

	in := `[Interface]
PrivateKey = AAA=

[Peer]
PublicKey = BBB=
AllowedIPs = 10.0.0.2/32
`
	c, err := ParseConfig(strings.NewReader(in))
	require.NoError(t, err)

	require.NoError(t, c.AddAttr(Interface(), "ListenPort", 51820, "", false))
	assert.Equal(t, `[Interface]
PrivateKey = AAA=
ListenPort = 51820

[Peer]
PublicKey = BBB=
AllowedIPs = 10.0.0.2/32
`, c.String())

	require.NoError(t, c.DisablePeer("BBB="))
	assert.Equal(t, `[Interface]
PrivateKey = AAA=
ListenPort = 51820

#! [Peer]
#! PublicKey = BBB=
#! AllowedIPs = 10.0.0.2/32
`, c.String())

	peers, err := c.GetPeers(false)
	require.NoError(t, err)
	assert.Empty(t, peers)

	peers, err = c.GetPeers(true)
	require.NoError(t, err)
	assert.Equal(t, []string{"BBB="}, peers)
}
