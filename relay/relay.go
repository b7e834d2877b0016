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

// Package relay provides transports that couple a device.Device to a
// relay host: the process that owns the actual Bluetooth link to the
// hardware.
//
// A transport implements device.Transport for the outbound direction
// and feeds the inbound direction by calling the Endpoint's methods.
package relay

// An Endpoint is the inbound side a transport feeds.  *device.Device
// is one.
type Endpoint interface {
	// OnMessage delivers a complete inbound message.  The
	// returned error, if any, is a classification error; the
	// transport just reports it.
	OnMessage(raw string) error

	// OnDeviceFound reports that the physical device is
	// connected.
	OnDeviceFound()

	// OnDeviceLost reports that the connection is gone.
	OnDeviceLost()
}
