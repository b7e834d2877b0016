// ttmon watches a Tact-Tiles glove: it connects to a relay host,
// appends every inbound message to a BoltDB file, and optionally
// polls the device on cron schedules.
//
// Configuration is YAML:
//
//	ws: ws://localhost:8080/relay
//	db: captures.db
//	polls:
//	  - schedule: "0 */5 * * * * *"
//	    description: "[!GET_VCC]"
//	  - schedule: "0 0 * * * * *"
//	    description: "[!GET_FREE_RAM]"
//
// or, for an MQTT relay,
//
//	mqtt:
//	  broker: tcp://localhost:1883
//	  in: tacttiles/in
//	  out: tacttiles/out
//
// Run with -dump to print what's been captured and exit.
package main

import (
	"context"
	"flag"
	"io/ioutil"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Comcast/tacttiles/device"
	"github.com/Comcast/tacttiles/relay"

	yaml "gopkg.in/yaml.v2"
)

// Config is what a ttmon YAML configuration file deserializes to.
type Config struct {
	// WS is a relay websocket URL.
	WS string `yaml:"ws,omitempty"`

	// MQTT, if given, wins over WS.
	MQTT *MQTTConfig `yaml:"mqtt,omitempty"`

	// DB is the BoltDB filename for captures.
	DB string `yaml:"db,omitempty"`

	Polls []Poll `yaml:"polls,omitempty"`
}

// MQTTConfig names an MQTT relay.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"id,omitempty"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	InTopic  string `yaml:"in,omitempty"`
	OutTopic string `yaml:"out,omitempty"`
}

func main() {
	var (
		configFile = flag.String("c", "ttmon.yaml", "configuration filename")
		dbFile     = flag.String("db", "", "override the capture filename from the config")
		dump       = flag.Bool("dump", false, "print stored captures and exit")
		debug      = flag.Bool("d", false, "log storage operations")
	)
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bs, err := ioutil.ReadFile(*configFile)
	if err != nil {
		log.Fatal(err)
	}
	var cfg Config
	if err = yaml.Unmarshal(bs, &cfg); err != nil {
		log.Fatal(err)
	}

	if *dbFile != "" {
		cfg.DB = *dbFile
	}
	if cfg.DB == "" {
		cfg.DB = "ttmon.db"
	}

	s, err := NewStorage(cfg.DB)
	if err != nil {
		log.Fatal(err)
	}
	s.Debug = *debug
	if err = s.Open(ctx); err != nil {
		log.Fatal(err)
	}
	defer s.Close(ctx)

	if *dump {
		if err = s.Dump(ctx, os.Stdout); err != nil {
			log.Fatal(err)
		}
		return
	}

	dev := device.NewDevice()
	dev.AddListener(&capturer{s: s})

	var transport device.Transport
	switch {
	case cfg.MQTT != nil:
		m, err := relay.DialMQTT(relay.MQTTOptions{
			Broker:   cfg.MQTT.Broker,
			ClientID: cfg.MQTT.ClientID,
			Username: cfg.MQTT.Username,
			Password: cfg.MQTT.Password,
			InTopic:  cfg.MQTT.InTopic,
			OutTopic: cfg.MQTT.OutTopic,
		}, dev)
		if err != nil {
			log.Fatal(err)
		}
		transport = m
	case cfg.WS != "":
		w, err := relay.DialWS(ctx, cfg.WS, dev)
		if err != nil {
			log.Fatal(err)
		}
		transport = w
	default:
		log.Fatal("config needs either ws: or mqtt:")
	}
	dev.Attach(transport)
	defer transport.Close()

	if err = RunPolls(ctx, dev, cfg.Polls); err != nil {
		log.Fatal(err)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	<-sigs
}

// capturer appends everything the device says to storage.
type capturer struct {
	device.BaseListener
	s *Storage
}

func (c *capturer) capture(cat, subtype, payload string) {
	if err := c.s.Append(context.Background(), &Capture{
		Category: cat,
		Subtype:  subtype,
		Payload:  payload,
	}); err != nil {
		log.Printf("capture: %v", err)
	}
}

func (c *capturer) OnSystemMessage(subtype, args string) {
	c.capture("S", subtype, args)
}

func (c *capturer) OnErrorMessage(msg string) {
	c.capture("E", "", msg)
}

func (c *capturer) OnDebugMessage(subtype, args string) {
	c.capture("D", subtype, args)
}

func (c *capturer) OnGestureReceived(subtype, args string) {
	c.capture("G", subtype, args)
}

func (c *capturer) OnDeviceFound() {
	log.Printf("device found")
}

func (c *capturer) OnDeviceLost() {
	log.Printf("device lost")
}
