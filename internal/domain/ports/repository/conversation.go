package repository

import "souksync/internal/domain/model"

// ConversationStore owns all per-chat conversation state. Entries are
// created lazily on first contact, mutated only through Mutate, and live
// for the process lifetime unless explicitly reset.
type ConversationStore interface {
	// Mutate runs fn with exclusive access to the chat's state. Calls for
	// the same chat are serialized; unrelated chats never block each other.
	Mutate(chatID int64, fn func(st *model.ConversationState))

	// Get returns a copy of the chat's current state.
	Get(chatID int64) model.ConversationState

	// Reset discards the chat's state entirely.
	Reset(chatID int64)
}
