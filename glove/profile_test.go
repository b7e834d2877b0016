package glove

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var profileYAML = `
space: o
tiles:
  a: 3
  b: -7
word_delay_ms: 300
ack_timeout_ms: 2000
`

func TestParseProfile(t *testing.T) {
	p, err := ParseProfile([]byte(profileYAML))
	if err != nil {
		t.Fatal(err)
	}

	m, err := p.TileMap(nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := m.TileID('a'); got != 3 {
		t.Fatalf("TileID(a) = %d, want 3", got)
	}
	if got := m.TileID('b'); got != 7 {
		t.Fatalf("TileID(b) = %d, want 7", got)
	}
	// Unmentioned letters keep the default layout.
	if got := m.TileID('c'); got != DefaultTileMap.TileID('c') {
		t.Fatalf("TileID(c) = %d, want default %d", got, DefaultTileMap.TileID('c'))
	}
	if m.Space() != 'o' {
		t.Fatalf("space = %q, want o", string(m.Space()))
	}

	cfg := p.Config(DefaultConfig())
	if cfg.WordDelay != 300*time.Millisecond {
		t.Fatalf("WordDelay = %v", cfg.WordDelay)
	}
	if cfg.AckTimeout != 2*time.Second {
		t.Fatalf("AckTimeout = %v", cfg.AckTimeout)
	}
	// Unmentioned timings keep their defaults.
	if cfg.SingleDuration != 150*time.Millisecond {
		t.Fatalf("SingleDuration = %v", cfg.SingleDuration)
	}
}

func TestParseProfileBad(t *testing.T) {
	for _, bad := range []string{
		"tiles:\n  aa: 3\n",
		"tiles:\n  A: 3\n",
		"space: xyz\n",
	} {
		p, err := ParseProfile([]byte(bad))
		if err != nil {
			continue // bad at the YAML level is fine too
		}
		if _, err := p.TileMap(nil); err == nil {
			t.Fatalf("profile %q produced a tile map", bad)
		}
	}
}

func TestLoadAndApplyProfile(t *testing.T) {
	dir, err := ioutil.TempDir("", "glove-profile")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	filename := filepath.Join(dir, "glove.yaml")
	if err := ioutil.WriteFile(filename, []byte(profileYAML), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadProfile(filename)
	if err != nil {
		t.Fatal(err)
	}

	g := New(nil, DefaultConfig())
	if err := g.ApplyProfile(p); err != nil {
		t.Fatal(err)
	}

	if got := g.TileMap().TileID('a'); got != 3 {
		t.Fatalf("TileID(a) = %d, want 3", got)
	}
	if got := g.Config().WordDelay; got != 300*time.Millisecond {
		t.Fatalf("WordDelay = %v", got)
	}
}
