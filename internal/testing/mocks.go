package testing

import (
	"sync"

	"github.com/harborline/cargosim/internal/events"
)

// RecordingEmitter captures emitted events for assertions.
type RecordingEmitter struct {
	mu     sync.Mutex
	events []events.EventData
}

// NewRecordingEmitter creates an empty recorder
func NewRecordingEmitter() *RecordingEmitter {
	return &RecordingEmitter{}
}

// EmitTyped records the event
func (m *RecordingEmitter) EmitTyped(module string, data events.EventData) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, data)
}

// Events returns a copy of the recorded events
func (m *RecordingEmitter) Events() []events.EventData {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]events.EventData, len(m.events))
	copy(out, m.events)
	return out
}

// OfType returns recorded events matching t
func (m *RecordingEmitter) OfType(t events.EventType) []events.EventData {
	var out []events.EventData
	for _, e := range m.Events() {
		if e.EventType() == t {
			out = append(out, e)
		}
	}
	return out
}
