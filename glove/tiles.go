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
)

// A TileMap relates letters to tiles.
//
// Each of the 26 letters maps to a signed code: the magnitude is a
// 1-based tile index, and the sign is the tap polarity (positive for
// a single tap, negative for a double tap).  One designated letter
// doubles as the space character: space is the opposite polarity of
// that letter's own tile.
type TileMap struct {
	codes [26]int
	space byte
}

// DefaultTileMap is the factory glove layout, with 'w' designated as
// the space letter.
var DefaultTileMap = &TileMap{
	codes: [26]int{
		9, 12, 7, 4, 1, 10, 13, 8, 5, 2, 11, 14, 15,
		6, 3, -9, -12, -7, -4, -1, -11, -14, -16, -15, -6, -3,
	},
	space: 'w',
}

// NewTileMap makes a TileMap from 26 signed codes (for 'a' through
// 'z') and a designated space letter.
func NewTileMap(codes [26]int, space byte) (*TileMap, error) {
	if space < 'a' || 'z' < space {
		return nil, fmt.Errorf("space letter %q not in [a-z]", string(space))
	}
	for i, c := range codes {
		if c == 0 {
			return nil, fmt.Errorf("letter %q has no tile", string(rune('a'+i)))
		}
	}
	return &TileMap{codes: codes, space: space}, nil
}

// Space returns the designated space letter.
func (m *TileMap) Space() byte {
	return m.space
}

// Code returns a letter's signed code.
func (m *TileMap) Code(letter byte) (int, bool) {
	if letter < 'a' || 'z' < letter {
		return 0, false
	}
	return m.codes[letter-'a'], true
}

// TileID returns the 1-based index of the tile for a letter, or -1
// when the letter isn't in [a-z].
func (m *TileMap) TileID(letter byte) int {
	code, have := m.Code(letter)
	if !have {
		return -1
	}
	if code < 0 {
		return -code
	}
	return code
}

// Letter decodes a signed symbol (positive for a single tap, negative
// for a double tap) back into a letter.  The negation of the space
// letter's own code decodes to ' '.  An unmapped symbol is not an
// error: the second result is just false.
func (m *TileMap) Letter(symbol int) (byte, bool) {
	if symbol == -m.codes[m.space-'a'] {
		return ' ', true
	}
	for i, c := range m.codes {
		if c == symbol {
			return byte('a' + i), true
		}
	}
	return 0, false
}
