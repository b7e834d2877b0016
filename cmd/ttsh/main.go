// ttsh is an interactive shell for a Tact-Tiles glove.
//
// With -ws or -mq it talks to a relay host; with neither it runs an
// in-memory pipe that prints outbound frames and acknowledges every
// gesture, which is handy for trying frame descriptions with no
// hardware at all.
//
//	!RESET                send a one-command frame
//	[!BLINK][0][3][2|500] send any frame description
//	draw hello world      draw a text
//	vibrate 3 500         pulse the motor
//	sens 6                set touch sensitivity
//	battery               request the supply voltage
//	js macro.js           run an ECMAScript macro
//	< S:PM                inject an inbound message (pipe mode)
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/Comcast/tacttiles/device"
	"github.com/Comcast/tacttiles/glove"
	"github.com/Comcast/tacttiles/relay"
	"github.com/Comcast/tacttiles/script"
)

func main() {
	var (
		wsURL    = flag.String("ws", "", "relay websocket URL (ws://host:port/path)")
		broker   = flag.String("mq", "", "MQTT broker URL (tcp://host:1883)")
		inTopic  = flag.String("mq-in", "tacttiles/in", "inbound MQTT topic")
		outTopic = flag.String("mq-out", "tacttiles/out", "outbound MQTT topic")
		clientID = flag.String("mq-id", "ttsh", "MQTT client id")
		profile  = flag.String("profile", "", "glove profile YAML filename")
	)
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g := glove.New(nil, glove.DefaultConfig())
	dev := g.Device()

	if *profile != "" {
		p, err := glove.LoadProfile(*profile)
		if err != nil {
			log.Fatal(err)
		}
		if err := g.ApplyProfile(p); err != nil {
			log.Fatal(err)
		}
	}

	g.AddListener(&printer{})

	var (
		transport device.Transport
		pipe      *relay.Pipe
	)
	switch {
	case *wsURL != "":
		w, err := relay.DialWS(ctx, *wsURL, dev)
		if err != nil {
			log.Fatal(err)
		}
		transport = w
	case *broker != "":
		m, err := relay.DialMQTT(relay.MQTTOptions{
			Broker:   *broker,
			ClientID: *clientID,
			InTopic:  *inTopic,
			OutTopic: *outTopic,
		}, dev)
		if err != nil {
			log.Fatal(err)
		}
		transport = m
	default:
		pipe = relay.NewPipe(dev)
		transport = pipe
		// Pretend to be a very agreeable glove.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case bs := <-pipe.Frames:
					fmt.Printf("frame   % X\n", bs)
					if err := pipe.Inject("S:DF"); err != nil {
						log.Printf("ack: %v", err)
					}
				}
			}
		}()
		pipe.Found()
	}
	dev.Attach(transport)
	defer transport.Close()

	host := script.NewHost(g)

	in := bufio.NewScanner(os.Stdin)
	for in.Scan() {
		line := strings.TrimSpace(in.Text())
		if line == "" {
			continue
		}

		var err error
		switch {
		case line == "quit" || line == "exit":
			return
		case strings.HasPrefix(line, "["):
			err = dev.SendDescription(line)
		case strings.HasPrefix(line, "!"):
			err = dev.SendDescription("[" + line + "]")
		case strings.HasPrefix(line, "< "):
			if pipe == nil {
				err = fmt.Errorf("injection needs pipe mode")
				break
			}
			err = pipe.Inject(strings.TrimSpace(line[2:]))
		case strings.HasPrefix(line, "draw "):
			err = g.Draw(ctx, strings.TrimPrefix(line, "draw "))
		case strings.HasPrefix(line, "vibrate "):
			var times, ms int
			if times, ms, err = twoInts(strings.TrimPrefix(line, "vibrate ")); err == nil {
				err = dev.Vibrate(times, ms)
			}
		case strings.HasPrefix(line, "sens "):
			var n int
			if n, err = strconv.Atoi(strings.TrimPrefix(line, "sens ")); err == nil {
				err = dev.SetTouchSensibility(n)
			}
		case line == "battery":
			err = dev.RequestBatteryStatus()
		case line == "off":
			err = dev.PowerOff()
		case strings.HasPrefix(line, "js "):
			err = script.RunFile(ctx, host, strings.TrimPrefix(line, "js "))
		default:
			err = fmt.Errorf("say what? (try 'draw hello' or '!RESET')")
		}

		if err != nil {
			fmt.Printf("error   %v\n", err)
		}
	}

	if err := in.Err(); err != nil {
		log.Fatal(err)
	}
}

func twoInts(s string) (int, int, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("want two numbers")
	}
	a, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, err
	}
	b, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

// printer writes notifications to stdout, tagged sio-style.
type printer struct {
	glove.BaseListener
}

func (p *printer) OnSystemMessage(subtype, args string) {
	fmt.Printf("system  %s %s\n", subtype, args)
}

func (p *printer) OnErrorMessage(msg string) {
	fmt.Printf("error   %s\n", msg)
}

func (p *printer) OnDebugMessage(subtype, args string) {
	fmt.Printf("debug   %s %s\n", subtype, args)
}

func (p *printer) OnGestureReceived(subtype, args string) {
	fmt.Printf("gesture %s %s\n", subtype, args)
}

func (p *printer) OnDeviceFound() {
	fmt.Printf("device  found\n")
}

func (p *printer) OnDeviceLost() {
	fmt.Printf("device  lost\n")
}

func (p *printer) OnLetterDrawn(index int, text string) {
	fmt.Printf("drawn   %d of %q\n", index, text)
}

func (p *printer) OnLetterReceived(letter byte) {
	fmt.Printf("letter  %q\n", string(letter))
}

func (p *printer) OnButtonPressed(duration int) {
	fmt.Printf("button  %d\n", duration)
}
