// File: internal/domain/ports/adapter/telegram.go
package adapter

import "context"

// Messenger sends replies to the chat platform. Implementations apply a
// bounded per-send timeout and treat delivery failures as logged, swallowed
// errors; the state machine never sees a send fail.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	AnswerCallback(ctx context.Context, callbackID string) error
}
