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

// Package script runs ECMAScript macros against a glove.
//
// A macro sees these functions:
//
//	send(desc): assemble a frame description and send it.
//	draw(text): draw a text and wait for it to finish.
//	vibrate(times, ms): pulse the motor.
//	sensitivity(n): set the touch threshold.
//	sleep(ms): pause.
//	log(args...): write to the log.
//	on(event, f): register a handler; events are "system",
//	  "error", "debug", "gesture", "letter", "drawn", "button",
//	  "found", and "lost".
//	done(): stop the event loop.
//
// If a macro registers no handlers, Run returns as soon as the source
// has been evaluated.  Otherwise Run keeps delivering events to the
// handlers until one of them calls done() or the context is done.
// Handlers run on Run's goroutine: the interpreter is never entered
// concurrently.
package script

import (
	"context"
	"errors"
	"io/ioutil"
	"log"
	"time"

	"github.com/Comcast/tacttiles/glove"

	"github.com/dop251/goja"
)

var (
	// InterruptedMessage is the string value of Interrupted.
	InterruptedMessage = "RuntimeError: interrupted"

	// Interrupted is returned by Run if the macro is interrupted
	// by context cancellation.
	Interrupted = errors.New(InterruptedMessage)

	// ErrBusy occurs when Run is called while another macro is
	// running on the same Host.
	ErrBusy = errors.New("a macro is already running")
)

// An Event is one glove or device notification queued for macro
// handlers.
type Event struct {
	Kind  string
	Type  string
	Args  string
	Index int
	Text  string
}

// A Host runs macros against one Glove.
type Host struct {
	g      *glove.Glove
	events chan Event
	busy   chan bool
}

// NewHost makes a Host.  It registers its own glove listener, so
// events that arrive while no macro is running are quietly dropped
// once the queue fills.
func NewHost(g *glove.Glove) *Host {
	h := &Host{
		g:      g,
		events: make(chan Event, 256),
		busy:   make(chan bool, 1),
	}
	g.AddListener(&feed{h: h})
	return h
}

func (h *Host) push(ev Event) {
	select {
	case h.events <- ev:
	default:
		// A slow (or absent) macro shouldn't block the
		// dispatcher.
	}
}

// Run evaluates a macro and, if it registered handlers, pumps events
// to them until done() or context cancellation.
func (h *Host) Run(ctx context.Context, name, src string) error {
	select {
	case h.busy <- true:
	default:
		return ErrBusy
	}
	defer func() { <-h.busy }()

	// Drop anything that queued up between runs.
	for {
		select {
		case <-h.events:
			continue
		default:
		}
		break
	}

	vm := goja.New()

	handlers := map[string][]goja.Callable{}
	stopped := false

	fail := func(err error) {
		panic(vm.ToValue(err.Error()))
	}

	vm.Set("log", func(call goja.FunctionCall) goja.Value {
		args := make([]interface{}, 0, len(call.Arguments))
		for _, a := range call.Arguments {
			args = append(args, a.Export())
		}
		log.Println(args...)
		return goja.Undefined()
	})

	vm.Set("send", func(desc string) {
		if err := h.g.Device().SendDescription(desc); err != nil {
			fail(err)
		}
	})

	vm.Set("draw", func(text string) {
		if err := h.g.Draw(ctx, text); err != nil {
			fail(err)
		}
	})

	vm.Set("vibrate", func(times, ms int) {
		if err := h.g.Device().Vibrate(times, ms); err != nil {
			fail(err)
		}
	})

	vm.Set("sensitivity", func(n int) {
		if err := h.g.Device().SetTouchSensibility(n); err != nil {
			fail(err)
		}
	})

	vm.Set("sleep", func(ms int) {
		timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			// The interrupt below takes it from here.
		}
	})

	vm.Set("on", func(call goja.FunctionCall) goja.Value {
		kind := call.Argument(0).String()
		f, is := goja.AssertFunction(call.Argument(1))
		if !is {
			fail(errors.New("on() wants a function"))
		}
		handlers[kind] = append(handlers[kind], f)
		return goja.Undefined()
	})

	vm.Set("done", func() {
		stopped = true
	})

	ictx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ictx.Done()
		// If Run got here on its own, the macro has already
		// returned and this interrupt is moot.
		vm.Interrupt(InterruptedMessage)
	}()

	if _, err := vm.RunScript(name, src); err != nil {
		return runErr(err)
	}

	if stopped || len(handlers) == 0 {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-h.events:
			for _, f := range handlers[ev.Kind] {
				if _, err := f(goja.Undefined(), eventArgs(vm, ev)...); err != nil {
					return runErr(err)
				}
			}
			if stopped {
				return nil
			}
		}
	}
}

func runErr(err error) error {
	if _, is := err.(*goja.InterruptedError); is {
		return Interrupted
	}
	return err
}

func eventArgs(vm *goja.Runtime, ev Event) []goja.Value {
	switch ev.Kind {
	case "system", "debug", "gesture":
		return []goja.Value{vm.ToValue(ev.Type), vm.ToValue(ev.Args)}
	case "error":
		return []goja.Value{vm.ToValue(ev.Args)}
	case "letter":
		return []goja.Value{vm.ToValue(ev.Text)}
	case "drawn":
		return []goja.Value{vm.ToValue(ev.Index), vm.ToValue(ev.Text)}
	case "button":
		return []goja.Value{vm.ToValue(ev.Index)}
	default: // "found", "lost"
		return nil
	}
}

// feed is the Host's glove listener: it turns notifications into
// queued Events.
type feed struct {
	glove.BaseListener
	h *Host
}

func (f *feed) OnSystemMessage(subtype, args string) {
	f.h.push(Event{Kind: "system", Type: subtype, Args: args})
}

func (f *feed) OnErrorMessage(msg string) {
	f.h.push(Event{Kind: "error", Args: msg})
}

func (f *feed) OnDebugMessage(subtype, args string) {
	f.h.push(Event{Kind: "debug", Type: subtype, Args: args})
}

func (f *feed) OnGestureReceived(subtype, args string) {
	f.h.push(Event{Kind: "gesture", Type: subtype, Args: args})
}

func (f *feed) OnDeviceFound() {
	f.h.push(Event{Kind: "found"})
}

func (f *feed) OnDeviceLost() {
	f.h.push(Event{Kind: "lost"})
}

func (f *feed) OnLetterDrawn(index int, text string) {
	f.h.push(Event{Kind: "drawn", Index: index, Text: text})
}

func (f *feed) OnButtonPressed(duration int) {
	f.h.push(Event{Kind: "button", Index: duration})
}

func (f *feed) OnLetterReceived(letter byte) {
	f.h.push(Event{Kind: "letter", Text: string(letter)})
}

// RunFile reads a macro from a file and runs it.
func RunFile(ctx context.Context, h *Host, filename string) error {
	bs, err := ioutil.ReadFile(filename)
	if err != nil {
		return err
	}
	return h.Run(ctx, filename, string(bs))
}
