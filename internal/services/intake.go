// Package services – IntakeService
//
// IntakeService turns inbound chat messages into orders. Every message is
// logged first; the classifier then decides whether it contains orders.
// All orders proposed by one message are created in a single transaction
// and share the message id.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/pedidos-backend/internal/classifier"
	"github.com/tbourn/pedidos-backend/internal/domain"
	"github.com/tbourn/pedidos-backend/internal/observability"
	"github.com/tbourn/pedidos-backend/internal/repo"
)

// ActorBot is the history actor recorded for chat-originated changes.
const ActorBot = "telegram_bot"

// IncomingMessage is one chat message handed to intake.
type IncomingMessage struct {
	ExternalUserID   int64
	ExternalUsername *string
	ExternalMsgID    int64
	Text             string
}

// IntakeResult reports what intake did with a message.
type IntakeResult struct {
	Log            *domain.MessageLog
	Classification *classifier.Classification
	Orders         []domain.Order
	// Transcription is set for voice messages.
	Transcription string
}

// IntakeService classifies chat messages and stores the resulting orders.
type IntakeService struct {
	DB          *gorm.DB
	Classifier  classifier.Classifier
	Transcriber classifier.Transcriber
	Events      EventPublisher

	now func() time.Time
}

// NewIntakeService wires an IntakeService.
func NewIntakeService(db *gorm.DB, c classifier.Classifier, t classifier.Transcriber, events EventPublisher) *IntakeService {
	return &IntakeService{DB: db, Classifier: c, Transcriber: t, Events: events, now: func() time.Time { return time.Now().UTC() }}
}

// Process logs a text message and creates the orders it contains. On a
// classifier failure the log is kept, no order is created and the error
// wraps ErrClassificationFailed.
func (s *IntakeService) Process(ctx context.Context, msg IncomingMessage) (*IntakeResult, error) {
	entry := &domain.MessageLog{
		ExternalUserID:   msg.ExternalUserID,
		ExternalUsername: msg.ExternalUsername,
		ExternalMsgID:    msg.ExternalMsgID,
		Kind:             domain.MessageText,
		Content:          msg.Text,
	}
	return s.process(ctx, msg, entry)
}

// ProcessVoice transcribes a voice note, logs it and continues as Process.
// A failed transcription yields ErrTranscriptionFailed and writes nothing.
func (s *IntakeService) ProcessVoice(ctx context.Context, msg IncomingMessage, audio []byte, mimeType string, duration int) (*IntakeResult, error) {
	if s.Transcriber == nil {
		return nil, ErrTranscriptionFailed
	}
	text, err := s.Transcriber.Transcribe(ctx, audio, mimeType)
	if err != nil || strings.TrimSpace(text) == "" {
		log.Warn().Err(err).Int64("telegram_user_id", msg.ExternalUserID).Msg("voice transcription failed")
		observability.IntakeTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrTranscriptionFailed, err)
	}
	msg.Text = text
	entry := &domain.MessageLog{
		ExternalUserID:   msg.ExternalUserID,
		ExternalUsername: msg.ExternalUsername,
		ExternalMsgID:    msg.ExternalMsgID,
		Kind:             domain.MessageVoice,
		Content:          fmt.Sprintf("[Mensaje de voz - %ds]: %s", duration, text),
		Transcription:    &text,
	}
	res, err := s.process(ctx, msg, entry)
	if res != nil {
		res.Transcription = text
	}
	return res, err
}

func (s *IntakeService) process(ctx context.Context, msg IncomingMessage, entry *domain.MessageLog) (*IntakeResult, error) {
	tr := otel.Tracer("services/IntakeService")
	ctx, span := tr.Start(ctx, "Process",
		trace.WithAttributes(
			attribute.Int64("telegram.user_id", msg.ExternalUserID),
			attribute.String("kind", string(entry.Kind)),
		),
	)
	defer span.End()

	entry.ReceivedAt = s.now()
	if err := repo.CreateMessageLog(ctx, s.DB, entry); err != nil {
		return nil, err
	}
	res := &IntakeResult{Log: entry}

	if s.Classifier == nil {
		observability.IntakeTotal.WithLabelValues("error").Inc()
		return res, ErrClassificationFailed
	}
	c, err := s.Classifier.Classify(ctx, msg.Text)
	if err != nil {
		span.RecordError(err)
		observability.IntakeTotal.WithLabelValues("error").Inc()
		return res, fmt.Errorf("%w: %v", ErrClassificationFailed, err)
	}
	res.Classification = c
	if !c.IsOrder || len(c.Orders) == 0 {
		observability.IntakeTotal.WithLabelValues("not_order").Inc()
		return res, nil
	}

	var owner *uint
	if u, err := repo.GetUserByTelegramID(ctx, s.DB, msg.ExternalUserID); err == nil {
		owner = &u.ID
	} else if !errors.Is(err, repo.ErrNotFound) {
		return res, err
	}

	orders := make([]domain.Order, 0, len(c.Orders))
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range c.Orders {
			prio, _ := domain.ParsePriority(p.Priority)
			o := domain.Order{
				UserID:           owner,
				ExternalUserID:   msg.ExternalUserID,
				ExternalUsername: msg.ExternalUsername,
				ExternalMsgID:    msg.ExternalMsgID,
				Priority:         prio,
				State:            domain.StatePending,
				RequestedDate:    p.RequestedDate,
				RequestedTime:    p.RequestedTime,
				ItemSummary:      p.ItemSummary,
			}
			if err := repo.CreateOrder(ctx, tx, &o); err != nil {
				return err
			}
			orders = append(orders, o)
		}
		return repo.MarkMessageLogOrder(ctx, tx, entry.ID)
	})
	if err != nil {
		span.RecordError(err)
		return res, err
	}
	entry.IsOrder = true
	res.Orders = orders
	observability.IntakeTotal.WithLabelValues("order").Inc()

	for i := range orders {
		publish(ctx, s.Events, domain.NewOrderEvent(domain.EventOrderCreated, &orders[i]))
	}
	return res, nil
}
