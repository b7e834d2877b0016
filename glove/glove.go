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

// Package glove draws text on a Tact-Tiles glove as timed vibration
// gestures and decodes tapped gestures back into letters.
//
// Letters are simplified to gestures: a single or double tap on one
// of the glove's tiles.  Drawing a text sends one PLAY frame per
// letter and waits for the device's DRAW_FINISHED acknowledgment
// before advancing.
package glove

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/Comcast/tacttiles/device"
)

// setupFrame is sent whenever the device (re)connects.
const setupFrame = "[!SET_DEBUG_MODE][2][!SET_THRESHOLD][6]"

// ErrDrawBusy occurs when a draw is started, or the glove is
// reconfigured, while another draw is in flight.
var ErrDrawBusy = errors.New("draw in progress")

// BadLetter occurs when a text to draw contains a character outside
// [a-z] and space.
type BadLetter struct {
	Letter byte
}

func (e *BadLetter) Error() string {
	return fmt.Sprintf("letter %q not in [a-z] or space", string(e.Letter))
}

// Config holds the gesture timing parameters.  All of them end up as
// millisecond counts inside gesture frames.
type Config struct {
	// LetterDelay is the pause between letters of a drawn text.
	LetterDelay time.Duration

	// WordDelay is the duration of the pause gesture drawn for a
	// space.
	WordDelay time.Duration

	// SingleDuration is the buzz duration for single-tap letters.
	SingleDuration time.Duration

	// DoubleDuration is the buzz duration for each of the two
	// buzzes of double-tap letters.
	DoubleDuration time.Duration

	// DoubleGap is the pause between the two buzzes of double-tap
	// letters.
	DoubleGap time.Duration

	// AckTimeout bounds the wait for each letter's DRAW_FINISHED
	// acknowledgment.  Zero means wait until the context is done.
	AckTimeout time.Duration
}

// DefaultConfig returns the factory timing parameters.
func DefaultConfig() Config {
	return Config{
		LetterDelay:    250 * time.Millisecond,
		WordDelay:      250 * time.Millisecond,
		SingleDuration: 150 * time.Millisecond,
		DoubleDuration: 150 * time.Millisecond,
		DoubleGap:      100 * time.Millisecond,
	}
}

// A Listener receives glove-level notifications in addition to the
// raw device notifications.  Embed a BaseListener for no-ops.
type Listener interface {
	device.Listener

	// OnLetterDrawn is called after each letter of a text passed
	// to Draw has been acknowledged by the device.
	OnLetterDrawn(index int, text string)

	// OnButtonPressed is called when the glove button is pressed.
	OnButtonPressed(duration int)

	// OnLetterReceived is called when a tapped gesture decodes to
	// a letter via the tile map.
	OnLetterReceived(letter byte)
}

// BaseListener is a Listener that does nothing.  Embed it.
type BaseListener struct {
	device.BaseListener
}

func (BaseListener) OnLetterDrawn(index int, text string) {}
func (BaseListener) OnButtonPressed(duration int)         {}
func (BaseListener) OnLetterReceived(letter byte)         {}

// A Subscription is a glove listener's registration.  Disabling it
// silences both the glove-level and the device-level notifications.
type Subscription struct {
	*device.Subscription
	l Listener
}

// A Glove sequences letter gestures over a Device.
type Glove struct {
	dev *device.Device

	mu      sync.Mutex
	cfg     Config
	tiles   *TileMap
	subs    []*Subscription
	drawing bool
	text    string
	index   int
	ack     chan struct{}
}

// New makes a Glove on top of the given Device (a fresh one if nil)
// with the DefaultTileMap.
//
// The Glove registers its own device listener: it reacts to
// DRAW_FINISHED acknowledgments, translates tap gestures to letters,
// and sends the setup frame when the device connects.
func New(dev *device.Device, cfg Config) *Glove {
	if dev == nil {
		dev = device.NewDevice()
	}
	g := &Glove{
		dev:   dev,
		cfg:   cfg,
		tiles: DefaultTileMap,
	}
	dev.AddListener(&hooks{g: g})
	return g
}

// Device returns the underlying Device for lower-level control.
func (g *Glove) Device() *device.Device {
	return g.dev
}

// AddListener registers a glove listener.  It also sees the raw
// device notifications.
func (g *Glove) AddListener(l Listener) *Subscription {
	sub := &Subscription{
		Subscription: g.dev.AddListener(l),
		l:            l,
	}
	g.mu.Lock()
	g.subs = append(g.subs, sub)
	g.mu.Unlock()
	return sub
}

// RemoveListener removes a subscription made with AddListener.
func (g *Glove) RemoveListener(sub *Subscription) {
	g.mu.Lock()
	for i, s := range g.subs {
		if s == sub {
			g.subs = append(g.subs[:i], g.subs[i+1:]...)
			break
		}
	}
	g.mu.Unlock()
	g.dev.RemoveListener(sub.Subscription)
}

func (g *Glove) snapshot() []*Subscription {
	g.mu.Lock()
	acc := make([]*Subscription, len(g.subs))
	copy(acc, g.subs)
	g.mu.Unlock()
	return acc
}

// Setup replaces the timing parameters.  Not allowed while a draw is
// in flight.
func (g *Glove) Setup(cfg Config) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.drawing {
		return ErrDrawBusy
	}
	g.cfg = cfg
	return nil
}

// Config returns the current timing parameters.
func (g *Glove) Config() Config {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cfg
}

// SetTileMap replaces the tile map.  Not allowed while a draw is in
// flight.
func (g *Glove) SetTileMap(m *TileMap) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.drawing {
		return ErrDrawBusy
	}
	g.tiles = m
	return nil
}

// TileMap returns the current tile map.
func (g *Glove) TileMap() *TileMap {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.tiles
}

// Draw renders a text as a series of vibration gestures.
//
// One frame is sent per letter, and the next letter isn't sent until
// the device acknowledges the previous one with DRAW_FINISHED.  After
// each acknowledgment, listeners get OnLetterDrawn(index, text).
//
// Draw blocks until the whole text is drawn, the context is done, or
// an acknowledgment times out (see Config.AckTimeout).  At most one
// draw may be in flight: a second concurrent call returns
// ErrDrawBusy.
func (g *Glove) Draw(ctx context.Context, text string) error {
	g.mu.Lock()
	if g.drawing {
		g.mu.Unlock()
		return ErrDrawBusy
	}
	g.drawing = true
	g.text = text
	g.index = 0
	g.ack = make(chan struct{}, 1)
	cfg, tiles, ack := g.cfg, g.tiles, g.ack
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		g.drawing = false
		g.mu.Unlock()
	}()

	for i := 0; i < len(text); i++ {
		desc, err := gesture(tiles, cfg, text[i])
		if err != nil {
			return err
		}

		g.mu.Lock()
		g.index = i
		g.mu.Unlock()

		if err := g.dev.SendDescription(desc); err != nil {
			return err
		}
		if err := waitAck(ctx, ack, cfg.AckTimeout); err != nil {
			return err
		}
		if cfg.LetterDelay > 0 && i < len(text)-1 {
			if err := pause(ctx, cfg.LetterDelay); err != nil {
				return err
			}
		}
	}

	return nil
}

// ErrAckTimeout occurs when the device doesn't acknowledge a gesture
// frame within Config.AckTimeout.
var ErrAckTimeout = errors.New("timed out waiting for draw acknowledgment")

func waitAck(ctx context.Context, ack chan struct{}, timeout time.Duration) error {
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}
	select {
	case <-ack:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-expired:
		return ErrAckTimeout
	}
}

func pause(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// gesture builds the frame description for one letter.
//
// A space is a single timed pause.  A positive tile code is one timed
// buzz; a negative code is two buzzes separated by a gap.  Tile
// indexes are zero-based on the wire.
func gesture(tiles *TileMap, cfg Config, letter byte) (string, error) {
	if letter == ' ' {
		return fmt.Sprintf("[!PLAY][%%len][1,0,%d,7]",
			cfg.WordDelay.Milliseconds()), nil
	}

	code, have := tiles.Code(letter)
	if !have {
		return "", &BadLetter{Letter: letter}
	}

	if code > 0 {
		tile := code - 1
		return fmt.Sprintf("[!PLAY][%%len][2,1,%d,1,0,%d,5,7]",
			tile, cfg.SingleDuration.Milliseconds()), nil
	}

	tile := -code - 1
	return fmt.Sprintf("[!PLAY][%%len][2,1,%d,1,0,%d,5,1,0,%d,2,1,%d,1,0,%d,5,7]",
		tile, cfg.DoubleDuration.Milliseconds(),
		cfg.DoubleGap.Milliseconds(),
		tile, cfg.DoubleDuration.Milliseconds()), nil
}

// drawFinished handles the device's DRAW_FINISHED acknowledgment:
// notify listeners of the letter just drawn, then release the waiting
// Draw.
func (g *Glove) drawFinished() {
	g.mu.Lock()
	if !g.drawing {
		g.mu.Unlock()
		return
	}
	index, text, ack := g.index, g.text, g.ack
	g.mu.Unlock()

	for _, sub := range g.snapshot() {
		if sub.Enabled() {
			sub.l.OnLetterDrawn(index, text)
		}
	}

	select {
	case ack <- struct{}{}:
	default:
	}
}

func (g *Glove) letterReceived(symbol int) {
	letter, have := g.TileMap().Letter(symbol)
	if !have {
		log.Printf("glove: no letter for symbol %d", symbol)
		return
	}
	for _, sub := range g.snapshot() {
		if sub.Enabled() {
			sub.l.OnLetterReceived(letter)
		}
	}
}

func (g *Glove) buttonPressed(duration int) {
	for _, sub := range g.snapshot() {
		if sub.Enabled() {
			sub.l.OnButtonPressed(duration)
		}
	}
}

// hooks is the Glove's own device listener.
type hooks struct {
	device.BaseListener
	g *Glove
}

func (h *hooks) OnDeviceFound() {
	if err := h.g.dev.SendDescription(setupFrame); err != nil {
		log.Printf("glove: setup frame: %v", err)
	}
}

func (h *hooks) OnSystemMessage(subtype, args string) {
	if subtype == device.SystemDrawFinished {
		h.g.drawFinished()
	}
}

func (h *hooks) OnGestureReceived(subtype, args string) {
	switch subtype {
	case device.GestureSingleTouch:
		symbol, err := strconv.Atoi(args)
		if err != nil {
			log.Printf("glove: bad touch payload %q: %v", args, err)
			return
		}
		h.g.letterReceived(symbol)
	case device.GestureDoubleTouch:
		symbol, err := strconv.Atoi(args)
		if err != nil {
			log.Printf("glove: bad touch payload %q: %v", args, err)
			return
		}
		h.g.letterReceived(-symbol)
	case device.GestureButtonPress:
		h.g.buttonPressed(0)
	case device.GestureID:
		// Recognizer identification; nothing to do here yet.
	}
}
