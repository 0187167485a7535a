// Package chat keeps the multi-session conversation state: an ordered message
// list and a document-scope selection per session, persisted across runs.
package chat

import (
	"time"

	"github.com/hyunsol/docchat/internal/ragapi"
)

// Role identifies who produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one chat transcript entry. Sources keep the backend's relevance
// order; they are never re-sorted.
type Message struct {
	ID        string              `json:"id"`
	Role      Role                `json:"role"`
	Content   string              `json:"content"`
	CreatedAt time.Time           `json:"created_at"`
	Sources   []ragapi.SourceMeta `json:"sources,omitempty"`
}

// Session is one conversation: an append-only message list plus the doc_ids
// the user scoped it to. SelectedDocIDs has set semantics; the slice keeps
// insertion order for UI stability.
type Session struct {
	ID             string    `json:"id"`
	Messages       []Message `json:"messages"`
	SelectedDocIDs []string  `json:"selectedDocIds"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// HasSelectedDoc reports whether the session is scoped to the given doc_id.
func (s *Session) HasSelectedDoc(docID string) bool {
	for _, id := range s.SelectedDocIDs {
		if id == docID {
			return true
		}
	}
	return false
}

func (s *Session) clone() Session {
	out := *s
	out.Messages = append([]Message(nil), s.Messages...)
	out.SelectedDocIDs = append([]string(nil), s.SelectedDocIDs...)
	return out
}
