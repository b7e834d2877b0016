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

package relay

import (
	"errors"
	"sync"
)

// ErrClosed occurs when sending through a closed transport.
var ErrClosed = errors.New("transport closed")

// A Pipe is an in-memory transport: outbound frames land on the
// Frames channel, and the other "side" is driven by calling Inject,
// Found, and Lost.  Useful for tests and for driving the SDK with no
// hardware at all.
type Pipe struct {
	// Frames receives every frame sent through the pipe.
	Frames chan []byte

	ep Endpoint

	mu     sync.Mutex
	closed bool
}

// NewPipe makes a Pipe feeding the given endpoint.
func NewPipe(ep Endpoint) *Pipe {
	return &Pipe{
		Frames: make(chan []byte, 64),
		ep:     ep,
	}
}

// Send queues an outbound frame on Frames.
func (p *Pipe) Send(bs []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	cp := make([]byte, len(bs))
	copy(cp, bs)
	select {
	case p.Frames <- cp:
		return nil
	default:
		return errors.New("pipe full")
	}
}

// Close shuts the pipe down.
func (p *Pipe) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// Inject delivers an inbound message as if the device had sent it.
func (p *Pipe) Inject(raw string) error {
	return p.ep.OnMessage(raw)
}

// Found reports device connection to the endpoint.
func (p *Pipe) Found() {
	p.ep.OnDeviceFound()
}

// Lost reports device loss to the endpoint.
func (p *Pipe) Lost() {
	p.ep.OnDeviceLost()
}
