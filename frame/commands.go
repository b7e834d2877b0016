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

package frame

import (
	"strings"
)

// Command is one entry of the device command vocabulary.
//
// Doc is Markdown.
type Command struct {
	Name   string
	Opcode byte
	Doc    string
}

// Commands is the complete command vocabulary of the device firmware.
//
// The table is fixed: the firmware dispatches on these opcodes, so
// changing it here without a firmware update will confuse the device.
var Commands = []Command{
	{"PLAY", 1, "Run a sequence of timed output steps.  The opcode is followed by a one-byte step count (usually a `%len` reference) and the steps themselves."},
	{"PRINT_CHAR", 2, "Draw a single character on the tile grid."},
	{"BLINK", 3, "Pulse the vibration motor: pin, pulse count, and a two-byte duration in milliseconds."},
	{"SEND_AGAIN", 4, "Ask the device to retransmit its last message."},
	{"ENABLE_AUDIO_UPDATE", 5, "Enable streaming audio threshold updates."},
	{"SET_DEBUG_MODE", 6, "Set the firmware debug verbosity (0-2)."},
	{"GET_DFA_STATE", 7, "Report the gesture recognizer's current state."},
	{"GET_FREE_RAM", 8, "Report free RAM in bytes (answered with a `FR` system message)."},
	{"GET_VCC", 9, "Report the supply voltage (answered with an `SV` system message)."},
	{"READ_PIN", 10, "Read an analog or digital pin (answered with `AR`/`DR`)."},
	{"EPROM_DUMP", 11, "Dump the EEPROM contents (answered with `ED` system messages)."},
	{"POWER_OFF", 12, "Power the device off."},
	{"RESET", 13, "Soft-reset the firmware."},
	{"SET_THRESHOLD", 14, "Set the touch sensitivity threshold (0-16)."},
}

var opcodes map[string]byte

func init() {
	opcodes = make(map[string]byte, len(Commands))
	for _, c := range Commands {
		opcodes[c.Name] = c.Opcode
	}
}

// Opcode resolves a command name (case-insensitively) to its opcode.
func Opcode(name string) (byte, bool) {
	op, have := opcodes[strings.ToUpper(name)]
	return op, have
}
