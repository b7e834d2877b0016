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
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Envelope is the wire form the websocket relay speaks.  The relay
// host sends "recv" (with Msg), "found", and "lost"; we send "send"
// (with Data, base64 in the JSON).
type Envelope struct {
	Type string `json:"type"`
	Msg  string `json:"msg,omitempty"`
	Data []byte `json:"data,omitempty"`
}

// A WS is a websocket connection to a relay host.
type WS struct {
	ep Endpoint

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
}

// DialWS connects to a relay host (ws://host:port/path) and starts
// reading inbound traffic for the endpoint.  The context governs the
// dial and the reader.
func DialWS(ctx context.Context, urls string, ep Endpoint) (*WS, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, urls, nil)
	if err != nil {
		return nil, err
	}

	w := &WS{
		ep:   ep,
		conn: conn,
	}

	go w.reader(ctx)

	return w, nil
}

func (w *WS) reader(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Close()
			return
		default:
		}

		_, bs, err := w.conn.ReadMessage()
		if err != nil {
			w.mu.Lock()
			closed := w.closed
			w.mu.Unlock()
			if !closed {
				log.Printf("relay: websocket read: %v", err)
				w.ep.OnDeviceLost()
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(bs, &env); err != nil {
			log.Printf("relay: bad envelope %s: %v", bs, err)
			continue
		}

		switch env.Type {
		case "recv":
			if err := w.ep.OnMessage(env.Msg); err != nil {
				// Classification errors mean the stream
				// is suspect; report and carry on.
				log.Printf("relay: %v", err)
			}
		case "found":
			w.ep.OnDeviceFound()
		case "lost":
			w.ep.OnDeviceLost()
		default:
			log.Printf("relay: unknown envelope type %q", env.Type)
		}
	}
}

// Send forwards a frame to the relay host.
func (w *WS) Send(bs []byte) error {
	env := Envelope{
		Type: "send",
		Data: bs,
	}
	js, err := json.Marshal(&env)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	return w.conn.WriteMessage(websocket.TextMessage, js)
}

// Close shuts the connection down.
func (w *WS) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()
	return w.conn.Close()
}
