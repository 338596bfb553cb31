// Copyright 2025 The Go A2A Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultBufferSize is the default per-observer channel buffer.
const DefaultBufferSize = 256

// Broadcaster fans out events to all currently subscribed observers.
//
// Each observer gets its own buffered channel; a full buffer drops the
// event for that observer only, so one slow consumer cannot block
// publication for the others or for the caller. Publication iterates a
// snapshot of the subscriber set, so an unsubscribe during delivery
// cannot corrupt delivery to the rest.
type Broadcaster struct {
	mu      sync.RWMutex
	subs    map[uint64]chan Event
	nextID  uint64
	bufSize int
	logger  *slog.Logger

	// now is the clock; replaced in tests.
	now func() time.Time
}

var _ Publisher = (*Broadcaster)(nil)

// NewBroadcaster creates a Broadcaster. If bufSize is 0,
// DefaultBufferSize is used.
func NewBroadcaster(bufSize int) *Broadcaster {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	return &Broadcaster{
		subs:    make(map[uint64]chan Event),
		bufSize: bufSize,
		logger:  slog.Default(),
		now:     time.Now,
	}
}

// WithLogger sets the logger for the Broadcaster.
func (b *Broadcaster) WithLogger(logger *slog.Logger) *Broadcaster {
	b.logger = logger
	return b
}

// Subscribe registers a new observer and returns its event channel plus a
// cancel function. The channel receives only events published after the
// subscription; there is no replay. The cancel function is idempotent and
// closes the channel.
func (b *Broadcaster) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, b.bufSize)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			// The write lock excludes in-flight Publish calls, so the
			// close below can never race a send.
			b.mu.Lock()
			delete(b.subs, id)
			close(ch)
			b.mu.Unlock()
		})
	}
	return ch, cancel
}

// Publish stamps the event with the current UTC time and delivers it to
// every currently connected observer. Full observer buffers drop the
// event for that observer only. The subscriber set is stable for the
// duration of the delivery loop, so a disconnect during iteration cannot
// corrupt delivery to the rest.
func (b *Broadcaster) Publish(eventType string, data map[string]any) {
	ev := Event{
		Type:      eventType,
		Data:      data,
		Timestamp: b.now().UTC(),
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			b.logger.Warn("dropping event for slow observer", "event_type", eventType)
		}
	}
}

// Len returns the number of connected observers.
func (b *Broadcaster) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
