package telegram

import (
	"context"
	"errors"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/tbourn/pedidos-backend/internal/domain"
	"github.com/tbourn/pedidos-backend/internal/services"
)

func incoming(m *tgbotapi.Message) services.IncomingMessage {
	var username *string
	switch {
	case m.From.UserName != "":
		username = &m.From.UserName
	case m.From.FirstName != "":
		username = &m.From.FirstName
	}
	return services.IncomingMessage{
		ExternalUserID:   m.From.ID,
		ExternalUsername: username,
		ExternalMsgID:    int64(m.MessageID),
		Text:             m.Text,
	}
}

func (b *Bot) onCommand(ctx context.Context, m *tgbotapi.Message) {
	chatID := m.Chat.ID
	switch m.Command() {
	case "start":
		b.reply(chatID, helpText, nil)

	case "stats":
		if b.stats == nil {
			return
		}
		st, err := b.stats.ForCustomer(ctx, m.From.ID)
		if err != nil {
			b.log.Error().Err(err).Int64("telegram_user_id", m.From.ID).Msg("stats command failed")
			b.reply(chatID, msgGenericError, nil)
			return
		}
		b.reply(chatID, formatStats(st), nil)

	case "pendientes":
		if b.orders == nil {
			return
		}
		orders, err := b.orders.ActiveForCustomer(ctx, m.From.ID)
		if err != nil {
			b.log.Error().Err(err).Int64("telegram_user_id", m.From.ID).Msg("pendientes command failed")
			b.reply(chatID, msgGenericError, nil)
			return
		}
		b.reply(chatID, formatPending(orders, b.now()), nil)
	}
}

func (b *Bot) onText(ctx context.Context, m *tgbotapi.Message) {
	if b.intake == nil {
		return
	}
	chatID := m.Chat.ID
	b.reply(chatID, msgAnalyzing, nil)

	res, err := b.intake.Process(ctx, incoming(m))
	if err != nil {
		if !errors.Is(err, services.ErrClassificationFailed) {
			b.log.Error().Err(err).Int64("telegram_user_id", m.From.ID).Msg("intake failed")
		}
		b.reply(chatID, msgAnalyzeFailed, nil)
		return
	}
	if len(res.Orders) == 0 {
		b.reply(chatID, msgNotAnOrder, nil)
		return
	}
	b.reply(chatID, formatRegistered(res.Orders, "", b.now()), confirmKeyboard(res.Orders))
}

func (b *Bot) onVoice(ctx context.Context, m *tgbotapi.Message) {
	if b.intake == nil {
		return
	}
	chatID := m.Chat.ID
	voice := m.Voice
	b.log.Info().Int64("telegram_user_id", m.From.ID).Int("duration", voice.Duration).Msg("voice message received")

	audio, err := b.download(ctx, voice.FileID)
	if err != nil {
		b.log.Warn().Err(err).Msg("voice download failed")
		b.reply(chatID, msgVoiceDownloadFailed, nil)
		return
	}
	b.reply(chatID, msgTranscribing, nil)

	mime := voice.MimeType
	if mime == "" {
		mime = "audio/ogg"
	}
	res, err := b.intake.ProcessVoice(ctx, incoming(m), audio, mime, voice.Duration)
	switch {
	case errors.Is(err, services.ErrTranscriptionFailed):
		b.reply(chatID, msgTranscriptionFailed, nil)
		return
	case errors.Is(err, services.ErrClassificationFailed) && res != nil:
		b.reply(chatID, voiceUnanalyzed(res.Transcription), nil)
		return
	case err != nil:
		b.log.Error().Err(err).Int64("telegram_user_id", m.From.ID).Msg("voice intake failed")
		b.reply(chatID, msgAnalyzeFailed, nil)
		return
	}
	if len(res.Orders) == 0 {
		b.reply(chatID, voiceNotAnOrder(res.Transcription), nil)
		return
	}
	b.reply(chatID, formatRegistered(res.Orders, res.Transcription, b.now()), confirmKeyboard(res.Orders))
}

// callbackAction is a parsed inline button payload.
type callbackAction struct {
	state domain.State
	ids   []uint
	bulk  bool
}

// parseCallback understands confirmar_<id>, cancelar_<id>,
// confirmar_todos_<id,id,...> and cancelar_todos_<id,id,...>.
func parseCallback(data string) (callbackAction, bool) {
	var a callbackAction
	verb, rest, ok := strings.Cut(data, "_")
	if !ok {
		return a, false
	}
	switch verb {
	case "confirmar":
		a.state = domain.StateConfirmed
	case "cancelar":
		a.state = domain.StateCancelled
	default:
		return a, false
	}
	if ids, found := strings.CutPrefix(rest, "todos_"); found {
		a.bulk = true
		rest = ids
	}
	for _, part := range strings.Split(rest, ",") {
		id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
		if err != nil || id == 0 {
			return a, false
		}
		a.ids = append(a.ids, uint(id))
	}
	if !a.bulk && len(a.ids) != 1 {
		return a, false
	}
	return a, true
}

func (b *Bot) onCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		// the query expired; Telegram no longer shows the result
		b.log.Debug().Err(err).Msg("callback answer failed")
		return
	}
	if b.orders == nil || q.Message == nil {
		return
	}
	action, ok := parseCallback(q.Data)
	if !ok {
		b.log.Warn().Str("data", q.Data).Msg("unknown callback payload")
		return
	}

	done := 0
	for _, id := range action.ids {
		if _, err := b.orders.ChangeState(ctx, id, string(action.state), services.ActorBot, nil); err != nil {
			b.log.Warn().Err(err).Uint("pedido_id", id).Str("estado", string(action.state)).Msg("callback transition failed")
			continue
		}
		done++
	}

	chatID := q.Message.Chat.ID
	if done == 0 {
		b.reply(chatID, msgUpdateFailed, nil)
		return
	}
	edit := tgbotapi.NewEditMessageText(chatID, q.Message.MessageID, resolvedText(q.Message.Text, action, done))
	if _, err := b.api.Send(edit); err != nil {
		b.log.Warn().Err(err).Msg("could not edit confirmation message")
	}
}
