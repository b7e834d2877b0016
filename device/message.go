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

package device

// Category is the top-level classification of an inbound device
// message: the message's first character.
type Category byte

const (
	CategorySystem  Category = 'S'
	CategoryError   Category = 'E'
	CategoryDebug   Category = 'D'
	CategoryGesture Category = 'G'
)

// System message subtypes.
const (
	SystemPong             = "PM"
	SystemPowerOff         = "PO"
	SystemChargerConnected = "CC"
	SystemDrawFinished     = "DF"
	SystemEEPROMDump       = "ED"
	SystemAnalogRead       = "AR"
	SystemDigitalRead      = "DR"
	SystemFreeRAM          = "FR"
	SystemVoltage          = "SV"
)

// Debug message subtypes.
const (
	DebugDrawGesture     = "DG"
	DebugMessageReceived = "MR"
	DebugOutputState     = "OS"
	DebugStartDraw       = "ST"
	DebugStateAddress    = "SA"
)

// Gesture message subtypes.
const (
	GestureID          = "ID"
	GestureDoubleTouch = "DT"
	GestureSingleTouch = "ST"
	GestureButtonPress = "BP"
)

// Subtype is one entry of a category's message vocabulary.
//
// Doc is Markdown.
type Subtype struct {
	Code string
	Name string
	Doc  string
}

// SystemSubtypes is the vocabulary for CategorySystem.
var SystemSubtypes = []Subtype{
	{SystemPong, "PONG", "Reply to a ping."},
	{SystemPowerOff, "POWER_OFF", "The device is about to power off."},
	{SystemChargerConnected, "CHARGER_CONNECTED", "A charger was plugged in."},
	{SystemDrawFinished, "DRAW_FINISHED", "The last gesture frame finished playing."},
	{SystemEEPROMDump, "EEPROM_DUMP", "One chunk of an EEPROM dump."},
	{SystemAnalogRead, "ANALOG_READ", "Result of an analog `READ_PIN`."},
	{SystemDigitalRead, "DIGITAL_READ", "Result of a digital `READ_PIN`."},
	{SystemFreeRAM, "FREE_RAM", "Free RAM in bytes."},
	{SystemVoltage, "SYSTEM_VOLTAGE", "Supply voltage reading."},
}

// DebugSubtypes is the vocabulary for CategoryDebug.
var DebugSubtypes = []Subtype{
	{DebugDrawGesture, "DRAW_GESTURE", "The firmware started drawing a gesture."},
	{DebugMessageReceived, "MESSAGE_RECEIVED", "The firmware accepted an inbound frame."},
	{DebugOutputState, "OUTPUT_STATE", "Output pin state snapshot."},
	{DebugStartDraw, "START_DRAW", "A draw sequence began."},
	{DebugStateAddress, "STATE_ADDRESS", "Gesture recognizer state address."},
}

// GestureSubtypes is the vocabulary for CategoryGesture.
var GestureSubtypes = []Subtype{
	{GestureID, "ID", "Raw gesture recognizer identification."},
	{GestureDoubleTouch, "DOUBLE_TOUCH", "A tile was tapped twice; the payload is the tile index."},
	{GestureSingleTouch, "SINGLE_TOUCH", "A tile was tapped once; the payload is the tile index."},
	{GestureButtonPress, "BUTTON_PRESS", "The glove button was pressed."},
}

var vocabularies = map[Category]map[string]bool{
	CategorySystem:  subtypeSet(SystemSubtypes),
	CategoryDebug:   subtypeSet(DebugSubtypes),
	CategoryGesture: subtypeSet(GestureSubtypes),
}

func subtypeSet(subs []Subtype) map[string]bool {
	acc := make(map[string]bool, len(subs))
	for _, s := range subs {
		acc[s.Code] = true
	}
	return acc
}

// Message is a classified inbound device message.
type Message struct {
	Category Category
	Subtype  string
	Payload  string
}

// Classify parses an inbound message.
//
// The wire form is <category><sep><subtype><payload>: the category
// sigil at offset 0, a separator at offset 1 that is not otherwise
// inspected, a two-character subtype at offsets 2-3, and the payload
// from offset 4 on.  Error messages have no subtype: everything after
// the sigil and the separator is the payload.
//
// An unknown category, or an unknown subtype in a validated category,
// is a classification error and returns one of the typed errors in
// this package.  No partial result is returned.
func Classify(raw string) (Message, error) {
	if len(raw) < 1 {
		return Message{}, &Truncated{Raw: raw}
	}

	cat := Category(raw[0])

	if cat == CategoryError {
		if len(raw) < 2 {
			return Message{}, &Truncated{Raw: raw}
		}
		return Message{Category: cat, Payload: raw[2:]}, nil
	}

	vocab, have := vocabularies[cat]
	if !have {
		return Message{}, &UnknownCategory{Raw: raw}
	}

	if len(raw) < 4 {
		return Message{}, &Truncated{Raw: raw}
	}
	subtype := raw[2:4]
	if !vocab[subtype] {
		return Message{}, &UnknownSubtype{Category: cat, Subtype: subtype}
	}

	return Message{Category: cat, Subtype: subtype, Payload: raw[4:]}, nil
}
