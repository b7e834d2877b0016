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

// These errors are protocol errors, not internal errors.  A
// classification error usually means the inbound stream is
// desynchronized; the caller should consider resetting the
// connection.

import (
	"errors"
	"fmt"
)

// Truncated occurs when an inbound message is too short to carry its
// category and subtype.
type Truncated struct {
	Raw string
}

func (e *Truncated) Error() string {
	return fmt.Sprintf("truncated message %q", e.Raw)
}

// UnknownCategory occurs when an inbound message's first character
// isn't one of the four category sigils.
type UnknownCategory struct {
	Raw string
}

func (e *UnknownCategory) Error() string {
	return fmt.Sprintf("unknown message category %q", e.Raw[0:1])
}

// UnknownSubtype occurs when a validated category carries a subtype
// that isn't in its vocabulary.
type UnknownSubtype struct {
	Category Category
	Subtype  string
}

func (e *UnknownSubtype) Error() string {
	return fmt.Sprintf("unknown subtype %q for category %q", e.Subtype, string(e.Category))
}

// ErrNotConnected occurs when a send is attempted with no transport
// attached.
var ErrNotConnected = errors.New("no transport attached")
