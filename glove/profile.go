/* Copyright 2018 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package glove

import (
	"fmt"
	"io/ioutil"
	"time"

	"github.com/jsccast/yaml"
)

// A Profile is a declarative glove configuration: a (partial) tile
// layout and timing parameters.  Zero fields keep their defaults, so
// a profile can override just one letter or just one delay.
//
// Example:
//
//	space: w
//	tiles:
//	  a: 9
//	  p: -9
//	word_delay_ms: 300
//	ack_timeout_ms: 2000
type Profile struct {
	Space string         `yaml:"space,omitempty"`
	Tiles map[string]int `yaml:"tiles,omitempty"`

	LetterDelayMS    int `yaml:"letter_delay_ms,omitempty"`
	WordDelayMS      int `yaml:"word_delay_ms,omitempty"`
	SingleDurationMS int `yaml:"single_duration_ms,omitempty"`
	DoubleDurationMS int `yaml:"double_duration_ms,omitempty"`
	DoubleGapMS      int `yaml:"double_gap_ms,omitempty"`
	AckTimeoutMS     int `yaml:"ack_timeout_ms,omitempty"`
}

// LoadProfile reads a YAML Profile from a file.
func LoadProfile(filename string) (*Profile, error) {
	bs, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParseProfile(bs)
}

// ParseProfile reads a YAML Profile.
func ParseProfile(bs []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(bs, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// TileMap builds a tile map: the given base (DefaultTileMap if nil)
// with the profile's overrides applied.
func (p *Profile) TileMap(base *TileMap) (*TileMap, error) {
	if base == nil {
		base = DefaultTileMap
	}
	codes := base.codes
	space := base.space

	for letter, code := range p.Tiles {
		if len(letter) != 1 || letter[0] < 'a' || 'z' < letter[0] {
			return nil, fmt.Errorf("bad tile letter %q", letter)
		}
		codes[letter[0]-'a'] = code
	}
	if p.Space != "" {
		if len(p.Space) != 1 {
			return nil, fmt.Errorf("bad space letter %q", p.Space)
		}
		space = p.Space[0]
	}

	return NewTileMap(codes, space)
}

// Config overlays the profile's timing parameters on the given base.
func (p *Profile) Config(base Config) Config {
	overlay := func(target *time.Duration, ms int) {
		if ms != 0 {
			*target = time.Duration(ms) * time.Millisecond
		}
	}
	overlay(&base.LetterDelay, p.LetterDelayMS)
	overlay(&base.WordDelay, p.WordDelayMS)
	overlay(&base.SingleDuration, p.SingleDurationMS)
	overlay(&base.DoubleDuration, p.DoubleDurationMS)
	overlay(&base.DoubleGap, p.DoubleGapMS)
	overlay(&base.AckTimeout, p.AckTimeoutMS)
	return base
}

// ApplyProfile applies a profile to the glove.  Not allowed while a
// draw is in flight.
func (g *Glove) ApplyProfile(p *Profile) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.drawing {
		return ErrDrawBusy
	}

	tiles, err := p.TileMap(g.tiles)
	if err != nil {
		return err
	}
	g.tiles = tiles
	g.cfg = p.Config(g.cfg)
	return nil
}
