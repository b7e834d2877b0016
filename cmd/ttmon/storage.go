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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"time"

	bolt "go.etcd.io/bbolt"
)

var capturesBucket = []byte("captures")

// A Capture is one inbound message as stored.
type Capture struct {
	At       time.Time `json:"at"`
	Category string    `json:"cat"`
	Subtype  string    `json:"sub,omitempty"`
	Payload  string    `json:"payload,omitempty"`
}

// Storage is a type of persistence.
type Storage struct {
	Debug    bool
	filename string
	db       *bolt.DB
}

// NewStorage takes in a filename and returns a Storage object.
func NewStorage(filename string) (*Storage, error) {
	return &Storage{
		filename: filename,
	}, nil
}

// Open opens the underlying BoltDB file and makes sure the captures
// bucket exists.
func (s *Storage) Open(ctx context.Context) error {
	opts := &bolt.Options{
		Timeout: time.Second,
	}

	db, err := bolt.Open(s.filename, 0644, opts)
	if err != nil {
		return err
	}
	if err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(capturesBucket)
		return err
	}); err != nil {
		db.Close()
		return err
	}
	s.db = db
	return nil
}

// Close closes the underlying BoltDB.
func (s *Storage) Close(ctx context.Context) error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Storage) logf(format string, args ...interface{}) {
	if s == nil {
		return
	}
	if s.Debug {
		log.Printf("BoltDB "+format, args...)
	}
}

// Append records a capture.  A zero At gets the current time.  Keys
// are the bucket sequence number, so a cursor walks captures in
// arrival order.
func (s *Storage) Append(ctx context.Context, c *Capture) error {
	if s == nil {
		return nil
	}
	if c.At.IsZero() {
		c.At = time.Now().UTC()
	}
	js, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(capturesBucket)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		key := []byte(fmt.Sprintf("%020d", seq))
		s.logf("Append %s %s", key, js)
		return b.Put(key, js)
	})
}

// Dump writes all stored captures to w, one JSON object per line, in
// arrival order.
func (s *Storage) Dump(ctx context.Context, w io.Writer) error {
	if s == nil {
		return nil
	}
	return s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(capturesBucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if _, err := fmt.Fprintf(w, "%s\n", v); err != nil {
				return err
			}
		}
		return nil
	})
}
