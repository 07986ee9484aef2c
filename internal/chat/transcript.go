package chat

// Transcript is an ordered set of messages addressed by id. Updates touch one
// entry in place without disturbing the order.
// It is not safe for concurrent use; Session guards it.
type Transcript struct {
	order []string
	byID  map[string]*Message
}

// NewTranscript returns an empty transcript
func NewTranscript() *Transcript {
	return &Transcript{byID: make(map[string]*Message)}
}

// Append adds m at the end. An existing id is overwritten where it stands.
func (t *Transcript) Append(m Message) {
	if existing, ok := t.byID[m.ID]; ok {
		*existing = m
		return
	}
	msg := m
	t.byID[m.ID] = &msg
	t.order = append(t.order, m.ID)
}

// Update applies fn to the entry with the given id and reports whether it existed
func (t *Transcript) Update(id string, fn func(*Message)) bool {
	m, ok := t.byID[id]
	if !ok {
		return false
	}
	fn(m)
	m.ID = id
	return true
}

// Remove deletes the entry with the given id
func (t *Transcript) Remove(id string) bool {
	if _, ok := t.byID[id]; !ok {
		return false
	}
	delete(t.byID, id)
	for i, oid := range t.order {
		if oid == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

// Get returns a copy of the entry with the given id
func (t *Transcript) Get(id string) (Message, bool) {
	m, ok := t.byID[id]
	if !ok {
		return Message{}, false
	}
	return *m, true
}

// Replace swaps the whole transcript for msgs
func (t *Transcript) Replace(msgs []Message) {
	t.Reset()
	for _, m := range msgs {
		t.Append(m)
	}
}

// Reset empties the transcript
func (t *Transcript) Reset() {
	t.order = nil
	t.byID = make(map[string]*Message)
}

// Messages returns a copy of the entries in order
func (t *Transcript) Messages() []Message {
	out := make([]Message, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, *t.byID[id])
	}
	return out
}

// Len returns the number of entries
func (t *Transcript) Len() int {
	return len(t.order)
}

// LoadingCount returns how many entries are still waiting for content
func (t *Transcript) LoadingCount() int {
	n := 0
	for _, m := range t.byID {
		if m.IsLoading {
			n++
		}
	}
	return n
}
