package chat

import (
	"testing"
	"time"

	"github.com/benvon/cook-with-ai/internal/models"
)

func ids(msgs []Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.ID)
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestTranscript_UpdateKeepsOrder(t *testing.T) {
	t.Parallel()

	tr := NewTranscript()
	tr.Append(Message{ID: "a", Role: models.MessageRoleUser, Content: "one"})
	tr.Append(Message{ID: "b", Role: models.MessageRoleAssistant, IsLoading: true})
	tr.Append(Message{ID: "c", Role: models.MessageRoleUser, Content: "three"})

	if tr.LoadingCount() != 1 {
		t.Fatalf("LoadingCount() = %d, want 1", tr.LoadingCount())
	}

	ok := tr.Update("b", func(m *Message) {
		m.Content = "two"
		m.IsLoading = false
		m.ID = "hijack"
	})
	if !ok {
		t.Fatal("Update() = false, want true")
	}

	got := tr.Messages()
	if !equalIDs(ids(got), []string{"a", "b", "c"}) {
		t.Errorf("order = %v", ids(got))
	}
	if got[1].Content != "two" || got[1].IsLoading {
		t.Errorf("updated entry = %+v", got[1])
	}
	if tr.LoadingCount() != 0 {
		t.Errorf("LoadingCount() = %d, want 0", tr.LoadingCount())
	}
}

func TestTranscript_AppendExistingID(t *testing.T) {
	t.Parallel()

	tr := NewTranscript()
	tr.Append(Message{ID: "a", Content: "first"})
	tr.Append(Message{ID: "b"})
	tr.Append(Message{ID: "a", Content: "second"})

	if tr.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", tr.Len())
	}
	m, _ := tr.Get("a")
	if m.Content != "second" {
		t.Errorf("Content = %q, want second", m.Content)
	}
	if !equalIDs(ids(tr.Messages()), []string{"a", "b"}) {
		t.Errorf("order = %v", ids(tr.Messages()))
	}
}

func TestTranscript_RemoveAndMissing(t *testing.T) {
	t.Parallel()

	tr := NewTranscript()
	tr.Replace([]Message{{ID: "a"}, {ID: "b"}, {ID: "c"}})

	if !tr.Remove("b") {
		t.Fatal("Remove(b) = false")
	}
	if tr.Remove("b") {
		t.Error("second Remove(b) = true")
	}
	if tr.Update("zzz", func(*Message) {}) {
		t.Error("Update on unknown id = true")
	}
	if _, ok := tr.Get("b"); ok {
		t.Error("Get(b) found removed entry")
	}
	if !equalIDs(ids(tr.Messages()), []string{"a", "c"}) {
		t.Errorf("order = %v", ids(tr.Messages()))
	}
}

func TestTranscript_MessagesIsACopy(t *testing.T) {
	t.Parallel()

	tr := NewTranscript()
	tr.Append(WelcomeMessage(time.Now()))
	msgs := tr.Messages()
	msgs[0].Content = "changed"

	m, _ := tr.Get(WelcomeID)
	if m.Content != WelcomeText {
		t.Errorf("transcript was mutated through Messages(): %q", m.Content)
	}
}

func TestParseConversationID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		wantNil bool
		wantErr bool
	}{
		{name: "blank", raw: "  ", wantNil: true},
		{name: "welcome sentinel", raw: "welcome", wantNil: true},
		{name: "uuid", raw: "0b9b3c4e-3f0a-4f2e-9d55-4c6f1a2b3c4d"},
		{name: "garbage", raw: "not-an-id", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			id, err := ParseConversationID(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if (id == nil) != tt.wantNil {
				t.Errorf("id = %v, wantNil %v", id, tt.wantNil)
			}
		})
	}
}

func TestDefaultConversationTitle(t *testing.T) {
	t.Parallel()

	got := DefaultConversationTitle(time.Date(2026, time.April, 20, 9, 0, 0, 0, time.UTC))
	if got != "Chat on Apr 20, 2026" {
		t.Errorf("DefaultConversationTitle() = %q", got)
	}
}
