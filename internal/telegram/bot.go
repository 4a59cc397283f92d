// Package telegram is the chat front door: it receives customer messages,
// hands them to intake and lets customers confirm or cancel the resulting
// orders with inline buttons. It also delivers outbound notifications.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/tbourn/pedidos-backend/internal/domain"
	"github.com/tbourn/pedidos-backend/internal/services"
)

const (
	pollTimeout   = 60
	maxInFlight   = 8
	maxVoiceBytes = 20 << 20
)

// API is the part of *tgbotapi.BotAPI the bot calls.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	GetFileDirectURL(fileID string) (string, error)
}

// Intake turns chat messages into orders.
type Intake interface {
	Process(ctx context.Context, msg services.IncomingMessage) (*services.IntakeResult, error)
	ProcessVoice(ctx context.Context, msg services.IncomingMessage, audio []byte, mimeType string, duration int) (*services.IntakeResult, error)
}

// Orders changes and lists orders on behalf of a customer.
type Orders interface {
	ChangeState(ctx context.Context, id uint, newState, actor string, note *string) (*services.TransitionResult, error)
	ActiveForCustomer(ctx context.Context, externalUserID int64) ([]domain.Order, error)
}

// Stats reports per-customer counters.
type Stats interface {
	ForCustomer(ctx context.Context, externalUserID int64) (*services.CustomerStats, error)
}

// Bot handles Telegram updates.
type Bot struct {
	api    API
	intake Intake
	orders Orders
	stats  Stats
	client *http.Client
	log    zerolog.Logger
	now    func() time.Time
}

// NewAPI authenticates token against the Bot API.
func NewAPI(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return api, nil
}

// New returns a Bot. intake, orders and stats may be nil for a send-only
// bot used by the scheduler and the notification dispatcher.
func New(api API, intake Intake, orders Orders, stats Stats, logger zerolog.Logger) *Bot {
	return &Bot{
		api:    api,
		intake: intake,
		orders: orders,
		stats:  stats,
		client: &http.Client{Timeout: 30 * time.Second},
		log:    logger.With().Str("component", "telegram").Logger(),
		now:    time.Now,
	}
}

// SendText implements services.MessageSender.
func (b *Bot) SendText(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// Run long-polls for updates until ctx is done. Updates queued while the
// bot was offline are dropped.
func (b *Bot) Run(ctx context.Context) error {
	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: true}); err != nil {
		b.log.Warn().Err(err).Msg("could not drop pending updates")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeout
	u.AllowedUpdates = []string{"message", "callback_query"}
	updates := b.api.GetUpdatesChan(u)
	b.log.Info().Msg("telegram bot polling")

	var wg sync.WaitGroup
	sem := make(chan struct{}, maxInFlight)
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case up, ok := <-updates:
			if !ok {
				return nil
			}
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				b.api.StopReceivingUpdates()
				return nil
			}
			wg.Add(1)
			go func(up tgbotapi.Update) {
				defer wg.Done()
				defer func() { <-sem }()
				b.handle(ctx, up)
			}(up)
		}
	}
}

func (b *Bot) handle(ctx context.Context, up tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().Interface("panic", r).Int("update_id", up.UpdateID).Msg("update handler panicked")
		}
	}()

	switch {
	case up.CallbackQuery != nil:
		b.onCallback(ctx, up.CallbackQuery)
	case up.Message == nil || up.Message.From == nil:
		return
	case up.Message.IsCommand():
		b.onCommand(ctx, up.Message)
	case up.Message.Voice != nil:
		b.onVoice(ctx, up.Message)
	case up.Message.Text != "":
		b.onText(ctx, up.Message)
	}
}

func (b *Bot) reply(chatID int64, text string, markup any) {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := b.api.Send(msg); err != nil {
		b.log.Warn().Err(err).Int64("chat_id", chatID).Msg("reply failed")
	}
}

// download fetches a file from the Bot API file endpoint.
func (b *Bot) download(ctx context.Context, fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("file download: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxVoiceBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxVoiceBytes {
		return nil, errors.New("file download: voice note too large")
	}
	return data, nil
}
