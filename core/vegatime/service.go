// Copyright (C) 2023 Gobalsky Labs Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package vegatime

import (
	"context"
	"encoding/json"
	"time"

	"code.vegaprotocol.io/marketplace/core/events"
	"code.vegaprotocol.io/marketplace/core/types"
	"code.vegaprotocol.io/marketplace/logging"
)

const namedLogger = "time"

const timeKey = "now"

// Broker send events.
type Broker interface {
	Send(event events.Event)
}

// Svc is the time service the engines read the current time from. Time
// only moves when the owner of the service sets it.
type Svc struct {
	log    *logging.Logger
	broker Broker

	previous  time.Time
	current   time.Time
	listeners []func(context.Context, time.Time)
}

// New instantiates a new time service starting at the given time.
func New(log *logging.Logger, broker Broker, start time.Time) *Svc {
	return &Svc{
		log:      log.Named(namedLogger),
		broker:   broker,
		previous: start.UTC(),
		current:  start.UTC(),
	}
}

// SetTimeNow moves the clock forward and notifies the listeners. Going back
// in time is not allowed, such updates are ignored.
func (s *Svc) SetTimeNow(ctx context.Context, t time.Time) {
	t = t.UTC()
	if t.Before(s.current) {
		s.log.Error("time update going backward, ignoring",
			logging.Time("current", s.current),
			logging.Time("update", t),
		)
		return
	}

	s.previous = s.current
	s.current = t

	s.broker.Send(events.NewTime(ctx, t))
	for _, f := range s.listeners {
		f(ctx, t)
	}
}

// GetTimeNow returns the current time.
func (s *Svc) GetTimeNow() time.Time {
	return s.current
}

// GetTimeLastBatch returns the time before the last update.
func (s *Svc) GetTimeLastBatch() time.Time {
	return s.previous
}

// NotifyOnTick registers functions called on every time update.
func (s *Svc) NotifyOnTick(f ...func(context.Context, time.Time)) {
	s.listeners = append(s.listeners, f...)
}

func (s *Svc) Namespace() types.SnapshotNamespace {
	return types.TimeSnapshot
}

func (s *Svc) Keys() []string {
	return []string{timeKey}
}

type timeState struct {
	Previous time.Time `json:"previous"`
	Current  time.Time `json:"current"`
}

func (s *Svc) GetState(key string) ([]byte, error) {
	if key != timeKey {
		return nil, types.ErrSnapshotKeyDoesNotExist
	}
	return json.Marshal(timeState{Previous: s.previous, Current: s.current})
}

func (s *Svc) LoadState(_ context.Context, key string, state []byte) error {
	if key != timeKey {
		return types.ErrSnapshotKeyDoesNotExist
	}
	var ts timeState
	if err := json.Unmarshal(state, &ts); err != nil {
		return err
	}
	s.previous = ts.Previous.UTC()
	s.current = ts.Current.UTC()
	return nil
}
