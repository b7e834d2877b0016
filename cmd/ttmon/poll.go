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
	"fmt"
	"log"
	"time"

	"github.com/Comcast/tacttiles/device"

	"github.com/gorhill/cronexpr"
)

// A Poll sends a frame description to the device on a cron schedule.
//
// Schedules use cronexpr syntax, which allows an optional leading
// seconds field ("*/30 * * * * * *" is every thirty seconds).
type Poll struct {
	Schedule    string `yaml:"schedule"`
	Description string `yaml:"description"`
}

// RunPolls parses every schedule (reporting bad ones before anything
// starts) and then runs each poll on its own goroutine until the
// context is done.
func RunPolls(ctx context.Context, dev *device.Device, polls []Poll) error {
	exprs := make([]*cronexpr.Expression, len(polls))
	for i, p := range polls {
		expr, err := cronexpr.Parse(p.Schedule)
		if err != nil {
			return fmt.Errorf("bad schedule %q: %v", p.Schedule, err)
		}
		exprs[i] = expr
	}

	for i := range polls {
		go poll(ctx, dev, polls[i], exprs[i])
	}

	return nil
}

func poll(ctx context.Context, dev *device.Device, p Poll, expr *cronexpr.Expression) {
	for {
		next := expr.Next(time.Now())
		if next.IsZero() {
			// The schedule has no more firings.
			return
		}
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		if err := dev.SendDescription(p.Description); err != nil {
			log.Printf("poll %q: %v", p.Description, err)
		}
	}
}
