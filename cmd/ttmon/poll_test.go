package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/Comcast/tacttiles/device"
)

type frameSink struct {
	frames chan []byte
}

func (s *frameSink) Send(bs []byte) error {
	s.frames <- bs
	return nil
}

func (s *frameSink) Close() error {
	return nil
}

func TestRunPollsBadSchedule(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dev := device.NewDevice()
	polls := []Poll{
		{Schedule: "not a schedule", Description: "[!GET_VCC]"},
	}
	if err := RunPolls(ctx, dev, polls); err == nil {
		t.Fatal("a bad schedule parsed")
	}
}

func TestRunPolls(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := &frameSink{frames: make(chan []byte, 8)}
	dev := device.NewDevice()
	dev.Attach(sink)

	// Every second.
	polls := []Poll{
		{Schedule: "* * * * * * *", Description: "[!GET_VCC]"},
	}
	if err := RunPolls(ctx, dev, polls); err != nil {
		t.Fatal(err)
	}

	select {
	case bs := <-sink.frames:
		if want := []byte{9}; !bytes.Equal(bs, want) {
			t.Fatalf("poll sent % X, want % X", bs, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("the poll never fired")
	}
}
