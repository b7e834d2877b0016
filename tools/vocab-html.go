/* Copyright 2019 Comcast Cable Communications Management, LLC
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

// Package tools renders protocol reference material.
package tools

import (
	"fmt"
	"io"

	"github.com/Comcast/tacttiles/device"
	"github.com/Comcast/tacttiles/frame"

	md "github.com/russross/blackfriday/v2"
)

// RenderVocabHTML writes an HTML reference of the outbound command
// table and the inbound message vocabulary.  Doc strings are
// Markdown.
func RenderVocabHTML(out io.Writer) error {
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	f(`<div class="vocab">`)

	{ // Commands
		f(`<h2>Commands</h2>`)
		f(`<div class="commands"><table>`)
		f(`<tr><th>name</th><th>opcode</th><th></th></tr>`)
		for _, c := range frame.Commands {
			f(`<tr class="command"><td><code>%s</code></td><td>%d</td>`, c.Name, c.Opcode)
			f(`<td><div class="commandDoc doc">%s</div></td></tr>`, md.Run([]byte(c.Doc)))
		}
		f(`</table></div>`)
	}

	vocabs := []struct {
		category device.Category
		title    string
		subs     []device.Subtype
	}{
		{device.CategorySystem, "System messages", device.SystemSubtypes},
		{device.CategoryDebug, "Debug messages", device.DebugSubtypes},
		{device.CategoryGesture, "Gesture messages", device.GestureSubtypes},
	}

	for _, v := range vocabs {
		f(`<h2>%s (<code>%s</code>)</h2>`, v.title, string(v.category))
		f(`<div class="messages"><table>`)
		f(`<tr><th>code</th><th>name</th><th></th></tr>`)
		for _, s := range v.subs {
			f(`<tr class="message"><td><code>%s</code></td><td>%s</td>`, s.Code, s.Name)
			f(`<td><div class="messageDoc doc">%s</div></td></tr>`, md.Run([]byte(s.Doc)))
		}
		f(`</table></div>`)
	}

	f(`<h2>Error messages (<code>E</code>)</h2>`)
	f(`<p>No subtypes: everything after the category sigil and its separator is the error text.</p>`)

	f(`</div>`)

	return nil
}
