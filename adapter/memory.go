package adapter

import (
	"sync"
)

// Memory is an adapter that collects published messages in memory, in publish order.
type Memory struct {
	messages []Message
	mutex    sync.RWMutex
}

// NewMemory creates an empty in-memory adapter.
func NewMemory() *Memory {
	return &Memory{}
}

// Publish appends the message unchanged. It never fails.
func (m *Memory) Publish(message Message) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.messages = append(m.messages, message)

	return nil
}

// Messages returns a snapshot of all recorded messages, oldest first.
func (m *Memory) Messages() []Message {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	snapshot := make([]Message, len(m.messages))
	copy(snapshot, m.messages)

	return snapshot
}

// Len reports the number of recorded messages.
func (m *Memory) Len() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return len(m.messages)
}

// Reset discards all recorded messages.
func (m *Memory) Reset() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.messages = nil
}
