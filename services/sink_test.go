package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type sinkEvent struct {
	target      string
	messageType string
	payload     interface{}
	private     bool
}

// fakeSink records emitted events in order so tests can assert on them
// without a websocket in the loop.
type fakeSink struct {
	mutex  sync.Mutex
	events []sinkEvent
}

func (f *fakeSink) ToRoom(roomCode string, messageType string, payload interface{}) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.events = append(f.events, sinkEvent{target: roomCode, messageType: messageType, payload: payload})
}

func (f *fakeSink) ToPlayer(playerID string, messageType string, payload interface{}) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.events = append(f.events, sinkEvent{target: playerID, messageType: messageType, payload: payload, private: true})
}

func (f *fakeSink) eventsOfType(messageType string) []sinkEvent {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	var matched []sinkEvent
	for _, e := range f.events {
		if e.messageType == messageType {
			matched = append(matched, e)
		}
	}
	return matched
}

func (f *fakeSink) countOf(messageType string) int {
	return len(f.eventsOfType(messageType))
}

// waitFor blocks until at least count events of the given type have been
// recorded, failing the test after two seconds.
func (f *fakeSink) waitFor(t *testing.T, messageType string, count int) []sinkEvent {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if events := f.eventsOfType(messageType); len(events) >= count {
			return events
		}
		time.Sleep(5 * time.Millisecond)
	}

	events := f.eventsOfType(messageType)
	require.GreaterOrEqual(t, len(events), count, "timed out waiting for %d %q events", count, messageType)
	return events
}
