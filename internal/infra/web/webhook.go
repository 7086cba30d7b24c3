package web

import (
	"encoding/json"
	"net/http"

	"souksync/internal/infra/metrics"
)

// telegramUpdate mirrors the subset of the Bot API update payload the bot
// consumes. Everything else in the update is ignored.
type telegramUpdate struct {
	UpdateID int64 `json:"update_id"`
	Message  *struct {
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
		Text string `json:"text"`
	} `json:"message"`
	CallbackQuery *struct {
		ID      string `json:"id"`
		Data    string `json:"data"`
		Message struct {
			Chat struct {
				ID int64 `json:"id"`
			} `json:"chat"`
		} `json:"message"`
	} `json:"callback_query"`
}

// handleTelegramWebhook always answers 200 {"ok":true}: a non-200 makes
// Telegram redeliver the update, and a broken or unparseable update will
// not get better on redelivery.
func (s *Server) handleTelegramWebhook(w http.ResponseWriter, r *http.Request) {
	defer writeJSON(w, http.StatusOK, map[string]bool{"ok": true})

	var update telegramUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		metrics.IncBotUpdate("malformed")
		s.log.Warn().Err(err).Msg("telegram webhook body unparseable")
		return
	}

	ctx := r.Context()
	switch {
	case update.Message != nil && update.Message.Chat.ID != 0 && update.Message.Text != "":
		metrics.IncBotUpdate("message")
		s.log.Info().
			Int64("update_id", update.UpdateID).
			Int64("chat_id", update.Message.Chat.ID).
			Str("text", update.Message.Text).
			Msg("telegram update")
		s.machine.HandleText(ctx, update.Message.Chat.ID, update.Message.Text)

	case update.CallbackQuery != nil && update.CallbackQuery.Message.Chat.ID != 0:
		metrics.IncBotUpdate("callback")
		s.log.Info().
			Int64("update_id", update.UpdateID).
			Int64("chat_id", update.CallbackQuery.Message.Chat.ID).
			Str("callback_data", update.CallbackQuery.Data).
			Msg("telegram update")
		s.machine.HandleCallback(ctx, update.CallbackQuery.Message.Chat.ID, update.CallbackQuery.ID, update.CallbackQuery.Data)

	default:
		metrics.IncBotUpdate("malformed")
		s.log.Info().Int64("update_id", update.UpdateID).Msg("telegram update unhandled")
	}
}
