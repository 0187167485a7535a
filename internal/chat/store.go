package chat

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	registryFile = "sessions.json"
	currentFile  = "current_session"
)

// Store is the persisted session registry plus the current-session pointer.
// Every mutation writes through to disk; a write failure is logged and
// swallowed so the chat keeps working without persistence.
type Store struct {
	mu        sync.Mutex
	dir       string
	sessions  map[string]*Session
	currentID string
	now       func() time.Time
}

// Open loads the registry from dir, reconciles the current-session pointer,
// and guarantees exactly one current session before returning. A missing or
// corrupt registry starts empty rather than failing.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	s := &Store{
		dir:      dir,
		sessions: map[string]*Session{},
		now:      time.Now,
	}
	s.load()
	s.reconcile()
	return s, nil
}

// Create allocates a fresh empty session and makes it current.
func (s *Store) Create() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked()
}

func (s *Store) createLocked() Session {
	now := s.now()
	session := &Session{
		ID:        uuid.NewString(),
		Messages:  []Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.sessions[session.ID] = session
	s.currentID = session.ID
	s.persistLocked()
	return session.clone()
}

// Switch makes the named session current. Unknown ids are a no-op.
func (s *Store) Switch(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return
	}
	s.currentID = id
	s.persistPointerLocked()
}

// AddMessage appends to the current session's transcript. Without a current
// session it is a no-op.
func (s *Store) AddMessage(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[s.currentID]
	if !ok {
		return
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = s.now()
	}
	session.Messages = append(session.Messages, msg)
	session.UpdatedAt = s.now()
	s.persistLocked()
}

// SetSelectedDocs replaces the current session's document scope.
func (s *Store) SetSelectedDocs(docIDs []string) {
	s.mutateSelection(func(session *Session) {
		seen := map[string]bool{}
		out := make([]string, 0, len(docIDs))
		for _, id := range docIDs {
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, id)
		}
		session.SelectedDocIDs = out
	})
}

// AddSelectedDoc adds one doc_id to the scope. Adding twice is idempotent.
func (s *Store) AddSelectedDoc(docID string) {
	if docID == "" {
		return
	}
	s.mutateSelection(func(session *Session) {
		if !session.HasSelectedDoc(docID) {
			session.SelectedDocIDs = append(session.SelectedDocIDs, docID)
		}
	})
}

// RemoveSelectedDoc drops one doc_id from the scope; absent ids are a no-op.
func (s *Store) RemoveSelectedDoc(docID string) {
	s.mutateSelection(func(session *Session) {
		out := session.SelectedDocIDs[:0]
		for _, id := range session.SelectedDocIDs {
			if id != docID {
				out = append(out, id)
			}
		}
		session.SelectedDocIDs = out
	})
}

// ToggleSelectedDoc flips one doc_id in or out of the scope.
func (s *Store) ToggleSelectedDoc(docID string) {
	if docID == "" {
		return
	}
	s.mutateSelection(func(session *Session) {
		if session.HasSelectedDoc(docID) {
			out := session.SelectedDocIDs[:0]
			for _, id := range session.SelectedDocIDs {
				if id != docID {
					out = append(out, id)
				}
			}
			session.SelectedDocIDs = out
			return
		}
		session.SelectedDocIDs = append(session.SelectedDocIDs, docID)
	})
}

func (s *Store) mutateSelection(mutate func(*Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[s.currentID]
	if !ok {
		return
	}
	mutate(session)
	session.UpdatedAt = s.now()
	s.persistLocked()
}

// Delete removes a session. Deleting the current one promotes the remaining
// session with the latest UpdatedAt, or creates a fresh session when none
// remain.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return
	}
	delete(s.sessions, id)
	if s.currentID == id {
		if latest := s.latestLocked(); latest != nil {
			s.currentID = latest.ID
		} else {
			s.createLocked()
			return
		}
	}
	s.persistLocked()
}

// Current returns the active session.
func (s *Store) Current() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[s.currentID]
	if !ok {
		return Session{}, false
	}
	return session.clone(), true
}

// CurrentID returns the active session id.
func (s *Store) CurrentID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentID
}

// Sessions lists every session, most recently updated first.
func (s *Store) Sessions() []Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		out = append(out, session.clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

// Len reports the number of sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) latestLocked() *Session {
	var latest *Session
	for _, session := range s.sessions {
		if latest == nil || session.UpdatedAt.After(latest.UpdatedAt) {
			latest = session
		}
	}
	return latest
}

// load restores the registry and pointer from disk, tolerating anything
// missing or malformed.
func (s *Store) load() {
	data, err := os.ReadFile(filepath.Join(s.dir, registryFile))
	if err == nil {
		var stored map[string]*Session
		if err := json.Unmarshal(data, &stored); err != nil {
			log.Printf("[chat] discarding malformed session registry: %v", err)
		} else {
			for id, session := range stored {
				if session == nil || id == "" {
					continue
				}
				session.ID = id
				if session.Messages == nil {
					session.Messages = []Message{}
				}
				if session.SelectedDocIDs == nil {
					session.SelectedDocIDs = []string{}
				}
				s.sessions[id] = session
			}
		}
	} else if !os.IsNotExist(err) {
		log.Printf("[chat] reading session registry: %v", err)
	}

	pointer, err := os.ReadFile(filepath.Join(s.dir, currentFile))
	if err == nil {
		s.currentID = strings.TrimSpace(string(pointer))
	}
}

// reconcile enforces the one-current-session invariant after load: a stale or
// missing pointer falls back to the most recently updated session, and an
// empty registry self-heals by creating one.
func (s *Store) reconcile() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[s.currentID]; ok {
		return
	}
	if latest := s.latestLocked(); latest != nil {
		s.currentID = latest.ID
		s.persistPointerLocked()
		return
	}
	s.createLocked()
}

func (s *Store) persistLocked() {
	data, err := json.MarshalIndent(s.sessions, "", "  ")
	if err != nil {
		log.Printf("[chat] encoding session registry: %v", err)
		return
	}
	if err := os.WriteFile(filepath.Join(s.dir, registryFile), data, 0o644); err != nil {
		log.Printf("[chat] writing session registry: %v", err)
	}
	s.persistPointerLocked()
}

func (s *Store) persistPointerLocked() {
	if s.currentID == "" {
		return
	}
	if err := os.WriteFile(filepath.Join(s.dir, currentFile), []byte(s.currentID), 0o644); err != nil {
		log.Printf("[chat] writing current-session pointer: %v", err)
	}
}
