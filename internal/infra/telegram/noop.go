package telegram

import (
	"context"

	"souksync/internal/domain/ports/adapter"

	"github.com/rs/zerolog"
)

var _ adapter.Messenger = (*Noop)(nil)

// Noop implements adapter.Messenger for local/dev runs without a bot token.
// It logs messages instead of sending real Telegram messages.
type Noop struct {
	log *zerolog.Logger
}

func NewNoop(logger *zerolog.Logger) *Noop {
	return &Noop{log: logger}
}

func (n *Noop) SendMessage(_ context.Context, chatID int64, text string) error {
	n.log.Info().Int64("chat_id", chatID).Str("text", text).Msg("noop telegram send")
	return nil
}

func (n *Noop) AnswerCallback(_ context.Context, callbackID string) error {
	n.log.Info().Str("callback_id", callbackID).Msg("noop telegram callback ack")
	return nil
}
