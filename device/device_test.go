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

import (
	"bytes"
	"testing"
)

type recordingListener struct {
	BaseListener
	system  []string
	errors  []string
	debug   []string
	gesture []string
	found   int
	lost    int
}

func (l *recordingListener) OnSystemMessage(subtype, args string) {
	l.system = append(l.system, subtype+"/"+args)
}
func (l *recordingListener) OnErrorMessage(msg string) {
	l.errors = append(l.errors, msg)
}
func (l *recordingListener) OnDebugMessage(subtype, args string) {
	l.debug = append(l.debug, subtype+"/"+args)
}
func (l *recordingListener) OnGestureReceived(subtype, args string) {
	l.gesture = append(l.gesture, subtype+"/"+args)
}
func (l *recordingListener) OnDeviceFound() { l.found++ }
func (l *recordingListener) OnDeviceLost() { l.lost++ }

type frameSink struct {
	frames [][]byte
}

func (s *frameSink) Send(bs []byte) error {
	s.frames = append(s.frames, bs)
	return nil
}

func (s *frameSink) Close() error { return nil }

func TestDispatch(t *testing.T) {
	d := NewDevice()
	on := &recordingListener{}
	off := &recordingListener{}
	d.AddListener(on)
	sub := d.AddListener(off)
	sub.Disable()

	if err := d.OnMessage("S:PM"); err != nil {
		t.Fatal(err)
	}
	if err := d.OnMessage("E:broken"); err != nil {
		t.Fatal(err)
	}
	if err := d.OnMessage("G:ST4"); err != nil {
		t.Fatal(err)
	}
	d.OnDeviceFound()
	d.OnDeviceLost()

	if len(on.system) != 1 || on.system[0] != "PM/" {
		t.Fatalf("system = %v", on.system)
	}
	if len(on.errors) != 1 || on.errors[0] != "broken" {
		t.Fatalf("errors = %v", on.errors)
	}
	if len(on.gesture) != 1 || on.gesture[0] != "ST/4" {
		t.Fatalf("gesture = %v", on.gesture)
	}
	if on.found != 1 || on.lost != 1 {
		t.Fatalf("found=%d lost=%d", on.found, on.lost)
	}

	if len(off.system)+len(off.errors)+len(off.gesture)+off.found+off.lost != 0 {
		t.Fatal("disabled listener was notified")
	}

	sub.Enable()
	if err := d.OnMessage("D:MRok"); err != nil {
		t.Fatal(err)
	}
	if len(off.debug) != 1 || off.debug[0] != "MR/ok" {
		t.Fatalf("debug = %v", off.debug)
	}
}

func TestDispatchClassificationError(t *testing.T) {
	d := NewDevice()
	l := &recordingListener{}
	d.AddListener(l)

	if err := d.OnMessage("S:QQ"); err == nil {
		t.Fatal("expected classification error")
	}
	if err := d.OnMessage("Q:PM"); err == nil {
		t.Fatal("expected classification error")
	}

	// No partial dispatch.
	if len(l.system)+len(l.errors)+len(l.debug)+len(l.gesture) != 0 {
		t.Fatal("listener was notified for an invalid message")
	}
}

// A listener that removes itself mid-notification must not break the
// fan-out for the others.
func TestRemoveDuringNotify(t *testing.T) {
	d := NewDevice()

	var sub *Subscription
	first := &selfRemover{d: d}
	sub = d.AddListener(first)
	first.sub = sub

	second := &recordingListener{}
	d.AddListener(second)

	if err := d.OnMessage("S:PM"); err != nil {
		t.Fatal(err)
	}
	if len(second.system) != 1 {
		t.Fatalf("second listener got %d notifications, want 1", len(second.system))
	}

	// First is gone now.
	if err := d.OnMessage("S:PM"); err != nil {
		t.Fatal(err)
	}
	if first.calls != 1 {
		t.Fatalf("removed listener got %d notifications, want 1", first.calls)
	}
}

type selfRemover struct {
	BaseListener
	d     *Device
	sub   *Subscription
	calls int
}

func (l *selfRemover) OnSystemMessage(subtype, args string) {
	l.calls++
	l.d.RemoveListener(l.sub)
}

func TestSendNotConnected(t *testing.T) {
	d := NewDevice()
	if err := d.PowerOff(); err != ErrNotConnected {
		t.Fatalf("err = %v, want ErrNotConnected", err)
	}
}

func TestConvenienceCommands(t *testing.T) {
	d := NewDevice()
	sink := &frameSink{}
	d.Attach(sink)

	if err := d.Vibrate(3, 500); err != nil {
		t.Fatal(err)
	}
	if err := d.SetTouchSensibility(6); err != nil {
		t.Fatal(err)
	}
	if err := d.PowerOff(); err != nil {
		t.Fatal(err)
	}
	if err := d.RequestBatteryStatus(); err != nil {
		t.Fatal(err)
	}

	want := [][]byte{
		{3, 0, 3, 0x01, 0xF4},
		{14, 6},
		{12},
		{9},
	}
	if len(sink.frames) != len(want) {
		t.Fatalf("sent %d frames, want %d", len(sink.frames), len(want))
	}
	for i, bs := range want {
		if !bytes.Equal(sink.frames[i], bs) {
			t.Fatalf("frame %d = % X, want % X", i, sink.frames[i], bs)
		}
	}
}
