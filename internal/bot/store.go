package bot

import (
	"sync"

	"souksync/internal/domain/model"
	"souksync/internal/domain/ports/repository"
)

var _ repository.ConversationStore = (*Store)(nil)

// Store keeps one ConversationState per chat for the process lifetime.
// States are created lazily on first contact and removed only by Reset.
//
// Mutations for a single chat are serialized by a per-entry lock, so two
// updates for the same chat can never interleave, while unrelated chats
// proceed in parallel. The outer lock only guards the map itself.
type Store struct {
	mu    sync.RWMutex
	chats map[int64]*chatEntry
}

type chatEntry struct {
	mu    sync.Mutex
	state *model.ConversationState
}

func NewStore() *Store {
	return &Store{chats: make(map[int64]*chatEntry)}
}

func (s *Store) entry(chatID int64) *chatEntry {
	s.mu.RLock()
	e, ok := s.chats[chatID]
	s.mu.RUnlock()
	if ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok = s.chats[chatID]; ok {
		return e
	}
	e = &chatEntry{state: model.NewConversationState()}
	s.chats[chatID] = e
	return e
}

// Mutate runs fn with exclusive access to the chat's state, creating a
// fresh state on first contact. fn runs to completion before any other
// mutation of the same chat starts.
func (s *Store) Mutate(chatID int64, fn func(st *model.ConversationState)) {
	e := s.entry(chatID)
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.state)
}

// Get returns a copy of the chat's current state (fresh default for an
// unseen chat). The copy keeps callers from mutating shared state.
func (s *Store) Get(chatID int64) model.ConversationState {
	e := s.entry(chatID)
	e.mu.Lock()
	defer e.mu.Unlock()
	st := *e.state
	st.Cart = append([]model.CartLine(nil), e.state.Cart...)
	return st
}

// Reset discards the chat's state entirely. Ops/test use.
func (s *Store) Reset(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.chats, chatID)
}
