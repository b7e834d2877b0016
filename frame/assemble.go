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

// Package frame compiles textual frame descriptions into the binary
// frames the device firmware consumes.
//
// A description is a sequence of tokens, each optionally wrapped in
// square brackets:
//
//	[!BLINK][0][3][2|500]
//
// Opening brackets are stripped and the remainder is split on ']'.
// Each token is classified by syntax, in this order:
//
//	!NAME       command reference (see Commands)
//	'text'      UTF-8 string, NUL-terminated on the wire
//	1.5f        32-bit float, big-endian
//	1.5d        64-bit float, big-endian
//	%len, %lenN one-byte forward length reference (see below)
//	w|v         the w low-order bytes of v, most significant first
//	a,b,c       byte array
//	n           single signed byte
//
// A '%len' token reserves one byte whose value isn't known yet: the
// length of some counted construct elsewhere in the frame.  Strings
// record their wire length (bytes plus terminator) at every buffer
// offset they occupy; byte arrays record their element count the same
// way.  After the whole description has been emitted, each reserved
// byte is patched with the length recorded at the referenced offset
// (the byte after the placeholder by default, or %lenN for N bytes
// away; N may be negative).  A reference that lands on nothing patches
// to 0xFF.
//
// The two passes matter: a PLAY command's step count precedes steps
// whose size isn't known until the rest of the description has been
// seen.
package frame

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
)

// Sentinel is written over a length placeholder whose reference
// cannot be resolved.
const Sentinel = 0xFF

// An Assembler compiles frame descriptions.
//
// The zero value is ready to use and logs diagnostics via the log
// package.
type Assembler struct {
	// Diagnostic, if non-nil, receives per-token assembly
	// problems.  A bad token is skipped, not fatal: the rest of
	// the frame is still emitted.
	Diagnostic func(format string, args ...interface{})
}

func (a *Assembler) diag(format string, args ...interface{}) {
	if a != nil && a.Diagnostic != nil {
		a.Diagnostic(format, args...)
		return
	}
	log.Printf(format, args...)
}

// Assemble compiles a frame description into a binary frame.
//
// Tokens that fail to parse are reported via Diagnostic and skipped.
// A skipped token does not consume a token index, so token-index
// length records stay aligned with what was actually emitted.
func (a *Assembler) Assemble(msg string) []byte {
	var (
		buf     bytes.Buffer
		lengths = map[int]int{}
		refs    = map[int]int{}
		id      = 0
	)

	msg = strings.ReplaceAll(msg, "[", "")
	toks := strings.Split(msg, "]")
	if n := len(toks); n > 0 && toks[n-1] == "" {
		toks = toks[:n-1]
	}

	for _, t := range toks {
		if err := a.emit(&buf, strings.TrimSpace(t), id, lengths, refs); err != nil {
			a.diag("frame: token %d [%s]: %v", id, t, err)
			continue
		}
		id++
	}

	out := buf.Bytes()
	for at, src := range refs {
		n, have := lengths[src]
		if !have {
			a.diag("frame: unresolved length reference at %d (offset %d)", at, src)
			out[at] = Sentinel
			continue
		}
		out[at] = byte(n)
	}

	return out
}

// emit writes one token's bytes.  The caller owns diagnostics; emit
// just reports what went wrong.  A mid-token failure (say a bad
// element deep in a byte array) can leave a partial emission behind,
// which mirrors the device's best-effort contract.
func (a *Assembler) emit(buf *bytes.Buffer, t string, id int, lengths, refs map[int]int) error {
	switch {
	case strings.HasPrefix(t, "!"):
		op, have := Opcode(t[1:])
		if !have {
			return &UnknownCommand{Name: t[1:]}
		}
		buf.WriteByte(op)

	case strings.HasPrefix(t, "'"):
		if len(t) < 2 || !strings.HasSuffix(t, "'") {
			return fmt.Errorf("unterminated string")
		}
		s := t[1 : len(t)-1]
		pos := buf.Len()
		buf.WriteString(s)
		buf.WriteByte(0)
		n := len(s) + 1
		for i := 0; i < n; i++ {
			lengths[pos+i] = n
		}
		lengths[id] = n

	case strings.HasSuffix(t, "f"):
		v, err := strconv.ParseFloat(strings.TrimSuffix(t, "f"), 32)
		if err != nil {
			return err
		}
		var bs [4]byte
		binary.BigEndian.PutUint32(bs[:], math.Float32bits(float32(v)))
		buf.Write(bs[:])

	case strings.HasSuffix(t, "d"):
		v, err := strconv.ParseFloat(strings.TrimSuffix(t, "d"), 64)
		if err != nil {
			return err
		}
		var bs [8]byte
		binary.BigEndian.PutUint64(bs[:], math.Float64bits(v))
		buf.Write(bs[:])

	case strings.Contains(t, "%len"):
		at := strings.Index(t, "%len")
		off := 1
		if rest := t[at+4:]; rest != "" {
			n, err := strconv.Atoi(rest)
			if err != nil {
				return err
			}
			off = n
		}
		pos := buf.Len()
		refs[pos] = pos + off
		buf.WriteByte(0)

	case strings.Contains(t, "|"):
		bar := strings.Index(t, "|")
		width, err := strconv.Atoi(t[:bar])
		if err != nil {
			return err
		}
		if width < 1 || width > 4 {
			return fmt.Errorf("bad integer width %d", width)
		}
		v, err := strconv.ParseInt(t[bar+1:], 10, 64)
		if err != nil {
			return err
		}
		var bs [4]byte
		binary.BigEndian.PutUint32(bs[:], uint32(int32(v)))
		buf.Write(bs[4-width:])

	case strings.Contains(t, ","):
		elts := strings.Split(t, ",")
		for _, e := range elts {
			n, err := strconv.Atoi(strings.TrimSpace(e))
			if err != nil {
				return err
			}
			buf.WriteByte(byte(n))
			lengths[buf.Len()-1] = len(elts)
		}

	default:
		n, err := strconv.Atoi(t)
		if err != nil {
			return err
		}
		buf.WriteByte(byte(n))
	}

	return nil
}

// DefaultAssembler backs the package-level Assemble.
var DefaultAssembler = &Assembler{}

// Assemble compiles a frame description using the DefaultAssembler.
func Assemble(msg string) []byte {
	return DefaultAssembler.Assemble(msg)
}

// UnknownCommand occurs when a '!' token names a command that isn't
// in the vocabulary.
type UnknownCommand struct {
	Name string
}

func (e *UnknownCommand) Error() string {
	return `unknown command "` + e.Name + `"`
}
