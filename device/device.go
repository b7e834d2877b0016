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

// Package device dispatches inbound device messages to listeners and
// sends assembled frames to a transport.
//
// A Device sits between a Transport (whatever actually moves bytes to
// and from the hardware; see package relay) and any number of
// Listeners.  The transport calls OnMessage, OnDeviceFound, and
// OnDeviceLost; the Device classifies and fans out.
package device

import (
	"fmt"
	"sync"

	"github.com/Comcast/tacttiles/frame"
)

// A Transport moves assembled frames to the physical device.
//
// Implementations deliver inbound traffic by calling the Device's
// OnMessage, OnDeviceFound, and OnDeviceLost methods.
type Transport interface {
	Send(frame []byte) error
	Close() error
}

// A Listener receives device notifications.
//
// Embed a BaseListener to get no-op implementations of the methods
// you don't care about.
type Listener interface {
	// OnSystemMessage is called for CategorySystem messages.
	OnSystemMessage(subtype, args string)

	// OnErrorMessage is called for CategoryError messages.
	OnErrorMessage(msg string)

	// OnDebugMessage is called for CategoryDebug messages.
	OnDebugMessage(subtype, args string)

	// OnGestureReceived is called for CategoryGesture messages.
	OnGestureReceived(subtype, args string)

	// OnDeviceFound is called when the transport reports that the
	// physical device is connected.
	OnDeviceFound()

	// OnDeviceLost is called when the transport reports that the
	// connection is gone (or was never established).
	OnDeviceLost()
}

// BaseListener is a Listener that does nothing.  Embed it.
type BaseListener struct{}

func (BaseListener) OnSystemMessage(subtype, args string)   {}
func (BaseListener) OnErrorMessage(msg string)              {}
func (BaseListener) OnDebugMessage(subtype, args string)    {}
func (BaseListener) OnGestureReceived(subtype, args string) {}
func (BaseListener) OnDeviceFound()                         {}
func (BaseListener) OnDeviceLost()                          {}

// A Subscription is a listener's registration with a Device.  It can
// be disabled (and re-enabled) without losing its place in the
// notification order.
type Subscription struct {
	mu       sync.Mutex
	l        Listener
	disabled bool
}

// Enable turns notifications back on.
func (s *Subscription) Enable() {
	s.mu.Lock()
	s.disabled = false
	s.mu.Unlock()
}

// Disable turns notifications off without removing the listener.
func (s *Subscription) Disable() {
	s.mu.Lock()
	s.disabled = true
	s.mu.Unlock()
}

// Enabled reports whether this subscription receives notifications.
func (s *Subscription) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.disabled
}

// A Device talks the low-level protocol of Tact-Tiles hardware.
type Device struct {
	// Assembler compiles frame descriptions for SendDescription.
	Assembler frame.Assembler

	mu        sync.Mutex
	transport Transport
	subs      []*Subscription
}

// NewDevice makes a Device with no transport and no listeners.
func NewDevice() *Device {
	return &Device{}
}

// Attach sets the transport used for outbound frames.  A nil
// transport detaches.
func (d *Device) Attach(t Transport) {
	d.mu.Lock()
	d.transport = t
	d.mu.Unlock()
}

// AddListener appends a listener to the notification order and
// returns its subscription.
func (d *Device) AddListener(l Listener) *Subscription {
	sub := &Subscription{l: l}
	d.mu.Lock()
	d.subs = append(d.subs, sub)
	d.mu.Unlock()
	return sub
}

// RemoveListener removes a subscription.  Removing during a
// notification is fine: in-flight fan-out works on a snapshot.
func (d *Device) RemoveListener(sub *Subscription) {
	d.mu.Lock()
	for i, s := range d.subs {
		if s == sub {
			d.subs = append(d.subs[:i], d.subs[i+1:]...)
			break
		}
	}
	d.mu.Unlock()
}

func (d *Device) snapshot() []*Subscription {
	d.mu.Lock()
	acc := make([]*Subscription, len(d.subs))
	copy(acc, d.subs)
	d.mu.Unlock()
	return acc
}

// OnMessage classifies an inbound message and notifies every enabled
// listener, in registration order, on the caller's goroutine.
//
// A classification error is returned before any listener is touched.
// That error usually means the stream is desynchronized; whether to
// reset the connection is the caller's policy.
func (d *Device) OnMessage(raw string) error {
	m, err := Classify(raw)
	if err != nil {
		return err
	}

	for _, sub := range d.snapshot() {
		if !sub.Enabled() {
			continue
		}
		switch m.Category {
		case CategorySystem:
			sub.l.OnSystemMessage(m.Subtype, m.Payload)
		case CategoryError:
			sub.l.OnErrorMessage(m.Payload)
		case CategoryDebug:
			sub.l.OnDebugMessage(m.Subtype, m.Payload)
		case CategoryGesture:
			sub.l.OnGestureReceived(m.Subtype, m.Payload)
		}
	}

	return nil
}

// OnDeviceFound reports that the physical device is connected.
func (d *Device) OnDeviceFound() {
	for _, sub := range d.snapshot() {
		if sub.Enabled() {
			sub.l.OnDeviceFound()
		}
	}
}

// OnDeviceLost reports that the connection is gone.
func (d *Device) OnDeviceLost() {
	for _, sub := range d.snapshot() {
		if sub.Enabled() {
			sub.l.OnDeviceLost()
		}
	}
}

// Send writes an assembled frame to the transport.
func (d *Device) Send(bs []byte) error {
	d.mu.Lock()
	t := d.transport
	d.mu.Unlock()
	if t == nil {
		return ErrNotConnected
	}
	return t.Send(bs)
}

// SendDescription assembles a frame description (see package frame)
// and sends the result.
func (d *Device) SendDescription(desc string) error {
	return d.Send(d.Assembler.Assemble(desc))
}

// PowerOff powers the connected device off.
func (d *Device) PowerOff() error {
	return d.SendDescription("[!POWER_OFF]")
}

// RequestBatteryStatus asks for the supply voltage, which arrives as
// an SV system message.
func (d *Device) RequestBatteryStatus() error {
	return d.SendDescription("[!GET_VCC]")
}

// Vibrate pulses the device's motor: times pulses of duration
// milliseconds each (on and off).
func (d *Device) Vibrate(times, duration int) error {
	return d.SendDescription(fmt.Sprintf("[!BLINK][0][%d][2|%d]", times, duration))
}

// SetTouchSensibility sets the tiles' touch sensitivity.  The value
// should be in [0,16]; higher is more sensitive.
func (d *Device) SetTouchSensibility(sensibility int) error {
	return d.SendDescription(fmt.Sprintf("[!SET_THRESHOLD][%d]", sensibility))
}
