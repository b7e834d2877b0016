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
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTOptions configures an MQTT relay coupling.
type MQTTOptions struct {
	// Broker is the broker URL (tcp://host:1883).
	Broker string

	// ClientID is the MQTT client id.
	ClientID string

	Username string
	Password string

	// InTopic carries inbound device messages (as UTF-8 text).
	InTopic string

	// OutTopic carries outbound frames (as raw bytes).
	OutTopic string

	// QoS for both directions.
	QoS byte

	// Quiesce is the disconnection quiescence in milliseconds.
	Quiesce uint

	// ConnectTimeout bounds Connect and per-operation waits.
	ConnectTimeout time.Duration
}

// An MQTT couples a device endpoint to a relay host via an MQTT
// broker: the relay publishes device messages on one topic, and we
// publish frames on another.
type MQTT struct {
	opts   MQTTOptions
	ep     Endpoint
	client mqtt.Client
}

// DialMQTT connects to the broker and subscribes to the inbound
// topic.
func DialMQTT(opts MQTTOptions, ep Endpoint) (*MQTT, error) {
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 10 * time.Second
	}

	m := &MQTT{
		opts: opts,
		ep:   ep,
	}

	o := mqtt.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetUsername(opts.Username).
		SetPassword(opts.Password).
		SetConnectTimeout(opts.ConnectTimeout)

	o.SetOnConnectHandler(func(c mqtt.Client) {
		ep.OnDeviceFound()
	})
	o.SetConnectionLostHandler(func(c mqtt.Client, err error) {
		log.Printf("relay: mqtt connection lost: %v", err)
		ep.OnDeviceLost()
	})

	m.client = mqtt.NewClient(o)

	if t := m.client.Connect(); !t.WaitTimeout(opts.ConnectTimeout) || t.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %v", t.Error())
	}

	handler := func(c mqtt.Client, msg mqtt.Message) {
		if err := m.ep.OnMessage(string(msg.Payload())); err != nil {
			log.Printf("relay: %v", err)
		}
	}
	if t := m.client.Subscribe(opts.InTopic, opts.QoS, handler); !t.WaitTimeout(opts.ConnectTimeout) || t.Error() != nil {
		m.client.Disconnect(opts.Quiesce)
		return nil, fmt.Errorf("mqtt subscribe %q: %v", opts.InTopic, t.Error())
	}

	return m, nil
}

// Send publishes a frame on the outbound topic.
func (m *MQTT) Send(bs []byte) error {
	t := m.client.Publish(m.opts.OutTopic, m.opts.QoS, false, bs)
	if !t.WaitTimeout(m.opts.ConnectTimeout) {
		return fmt.Errorf("mqtt publish %q: timeout", m.opts.OutTopic)
	}
	return t.Error()
}

// Close unsubscribes and disconnects.
func (m *MQTT) Close() error {
	if t := m.client.Unsubscribe(m.opts.InTopic); !t.WaitTimeout(m.opts.ConnectTimeout) || t.Error() != nil {
		log.Printf("relay: mqtt unsubscribe: %v", t.Error())
	}
	m.client.Disconnect(m.opts.Quiesce)
	return nil
}
