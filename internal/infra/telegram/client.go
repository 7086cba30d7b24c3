package telegram

import (
	"context"
	"net/http"

	"souksync/internal/config"
	"souksync/internal/domain/ports/adapter"
	"souksync/internal/infra/metrics"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

var _ adapter.Messenger = (*Client)(nil)

// Client sends messages through the Telegram Bot API. Every send has a
// bounded timeout; failures are logged and counted, never escalated, since
// the webhook must acknowledge receipt no matter what happens downstream.
type Client struct {
	bot *tgbotapi.BotAPI
	log *zerolog.Logger
}

func NewClient(cfg *config.BotConfig, logger *zerolog.Logger) (*Client, error) {
	httpClient := &http.Client{Timeout: cfg.SendTimeout}
	bot, err := tgbotapi.NewBotAPIWithClient(cfg.Token, tgbotapi.APIEndpoint, httpClient)
	if err != nil {
		return nil, err
	}
	return &Client{bot: bot, log: logger}, nil
}

func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := c.bot.Send(msg); err != nil {
		metrics.IncBotSendFailure()
		c.log.Warn().Err(err).Int64("chat_id", chatID).Msg("telegram send failed")
		return err
	}
	return nil
}

func (c *Client) AnswerCallback(ctx context.Context, callbackID string) error {
	cb := tgbotapi.NewCallback(callbackID, "")
	if _, err := c.bot.Request(cb); err != nil {
		metrics.IncBotSendFailure()
		c.log.Warn().Err(err).Str("callback_id", callbackID).Msg("telegram callback ack failed")
		return err
	}
	return nil
}
