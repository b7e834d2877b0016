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
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Comcast/tacttiles/device"
	"github.com/gorilla/websocket"
)

type recordingEndpoint struct {
	mu       sync.Mutex
	messages []string
	found    int
	lost     int
}

func (ep *recordingEndpoint) OnMessage(raw string) error {
	ep.mu.Lock()
	ep.messages = append(ep.messages, raw)
	ep.mu.Unlock()
	return nil
}

func (ep *recordingEndpoint) OnDeviceFound() {
	ep.mu.Lock()
	ep.found++
	ep.mu.Unlock()
}

func (ep *recordingEndpoint) OnDeviceLost() {
	ep.mu.Lock()
	ep.lost++
	ep.mu.Unlock()
}

func (ep *recordingEndpoint) wait(t *testing.T, check func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		ep.mu.Lock()
		ok := check()
		ep.mu.Unlock()
		if ok {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for endpoint state")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestPipe(t *testing.T) {
	dev := device.NewDevice()
	p := NewPipe(dev)
	dev.Attach(p)

	if err := dev.SendDescription("[!RESET]"); err != nil {
		t.Fatal(err)
	}
	select {
	case bs := <-p.Frames:
		if !bytes.Equal(bs, []byte{13}) {
			t.Fatalf("frame = % X", bs)
		}
	default:
		t.Fatal("no frame")
	}

	if err := p.Inject("S:PM"); err != nil {
		t.Fatal(err)
	}
	if err := p.Inject("S:QQ"); err == nil {
		t.Fatal("classification error didn't surface")
	}

	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if err := p.Send([]byte{1}); err != ErrClosed {
		t.Fatalf("Send after Close: %v, want ErrClosed", err)
	}
}

func TestWS(t *testing.T) {
	upgrader := websocket.Upgrader{}

	fromClient := make(chan Envelope, 8)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer c.Close()

		// Play a short relay-host session.
		for _, env := range []Envelope{
			{Type: "found"},
			{Type: "recv", Msg: "S:PM"},
			{Type: "recv", Msg: "G:ST9"},
		} {
			js, _ := json.Marshal(&env)
			if err := c.WriteMessage(websocket.TextMessage, js); err != nil {
				t.Errorf("write: %v", err)
				return
			}
		}

		for {
			_, bs, err := c.ReadMessage()
			if err != nil {
				return
			}
			var env Envelope
			if err := json.Unmarshal(bs, &env); err != nil {
				t.Errorf("bad client envelope %s: %v", bs, err)
				return
			}
			fromClient <- env
		}
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	ep := &recordingEndpoint{}
	w, err := DialWS(context.Background(), url, ep)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	ep.wait(t, func() bool {
		return ep.found == 1 && len(ep.messages) == 2
	})
	if ep.messages[0] != "S:PM" || ep.messages[1] != "G:ST9" {
		t.Fatalf("messages = %v", ep.messages)
	}

	if err := w.Send([]byte{3, 0, 3, 0x01, 0xF4}); err != nil {
		t.Fatal(err)
	}
	select {
	case env := <-fromClient:
		if env.Type != "send" {
			t.Fatalf("envelope type = %q", env.Type)
		}
		if !bytes.Equal(env.Data, []byte{3, 0, 3, 0x01, 0xF4}) {
			t.Fatalf("frame = % X", env.Data)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("relay host never got the frame")
	}

	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Send([]byte{1}); err != ErrClosed {
		t.Fatalf("Send after Close: %v, want ErrClosed", err)
	}
}
