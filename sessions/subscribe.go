package sessions

// Subscribe returns a channel that receives a Snapshot after every session
// change, and a func that ends the subscription. The channel holds one value:
// a subscriber that falls behind sees only the latest snapshot.
func (m *Manager) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	m.subMu.Lock()
	defer m.subMu.Unlock()
	if m.closed {
		close(ch)
		return ch, func() {}
	}
	id := m.nextSubID
	m.nextSubID++
	m.subscribers[id] = ch

	return ch, func() {
		m.subMu.Lock()
		defer m.subMu.Unlock()
		if sub, ok := m.subscribers[id]; ok {
			delete(m.subscribers, id)
			close(sub)
		}
	}
}

// publish sends the current snapshot to every subscriber, replacing any value
// they have not received yet. It must not be called with m.mu held.
func (m *Manager) publish() {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	if len(m.subscribers) == 0 {
		return
	}

	snap := m.Snapshot()
	for _, ch := range m.subscribers {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}
