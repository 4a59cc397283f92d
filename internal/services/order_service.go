// Package services – OrderService
//
// This file implements OrderService, the dashboard-facing API over orders:
// listing with filters, manual creation, partial updates, deletion, state
// changes, ranked text search, history and CSV export.
//
// State changes go through LifecycleEngine. The resulting customer
// notification is handed to Dispatcher after the transaction commits,
// asynchronously by default, on a context detached from the request. A
// delivery failure is logged and never undoes the transition.
//
// Observability: public methods are OpenTelemetry-instrumented.
package services

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/pedidos-backend/internal/domain"
	"github.com/tbourn/pedidos-backend/internal/repo"
	"github.com/tbourn/pedidos-backend/internal/search"
	"github.com/tbourn/pedidos-backend/internal/utils"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 100

	// notifyTimeout bounds a detached delivery.
	notifyTimeout = 30 * time.Second
)

// CreateOrderInput is a manually entered order.
type CreateOrderInput struct {
	ExternalUserID   int64
	ExternalUsername *string
	Priority         string
	RequestedDate    *string
	RequestedTime    *string
	ItemSummary      string
	Notes            *string
	AssignedTo       *string
}

// UpdateOrderInput carries the editable fields; nil leaves a field unchanged.
type UpdateOrderInput struct {
	Notes      *string
	AssignedTo *string
}

// SearchInput combines repository filters with a free-text query.
type SearchInput struct {
	Query  string
	Filter repo.OrderFilter
}

// OrderService coordinates order persistence, transitions and events.
type OrderService struct {
	DB         *gorm.DB
	Engine     *LifecycleEngine
	Dispatcher *Dispatcher
	Events     EventPublisher

	// AsyncNotify delivers notifications in the background.
	AsyncNotify bool

	wg sync.WaitGroup
}

// NewOrderService wires an OrderService.
func NewOrderService(db *gorm.DB, engine *LifecycleEngine, d *Dispatcher, events EventPublisher, async bool) *OrderService {
	return &OrderService{DB: db, Engine: engine, Dispatcher: d, Events: events, AsyncNotify: async}
}

// List returns a page of orders matching f and the total match count.
// Limit defaults to 50 and is capped at 100.
func (s *OrderService) List(ctx context.Context, f repo.OrderFilter) ([]domain.Order, int64, error) {
	tr := otel.Tracer("services/OrderService")
	ctx, span := tr.Start(ctx, "List",
		trace.WithAttributes(
			attribute.String("estado", string(f.State)),
			attribute.Int("limit", f.Limit),
			attribute.Int("offset", f.Offset),
		),
	)
	defer span.End()

	f.Limit = utils.ClampLimit(f.Limit, defaultPageLimit, maxPageLimit)
	f.Offset = utils.ClampOffset(f.Offset)

	total, err := repo.CountOrders(ctx, s.DB, f)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Order{}, 0, nil
	}
	items, err := repo.ListOrders(ctx, s.DB, f)
	return items, total, err
}

// Get returns one order.
func (s *OrderService) Get(ctx context.Context, id uint) (*domain.Order, error) {
	o, err := repo.GetOrder(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return o, nil
}

// Create stores a manual order in pending_confirmation and writes its
// initial history row.
func (s *OrderService) Create(ctx context.Context, in CreateOrderInput, actor string) (*domain.Order, error) {
	tr := otel.Tracer("services/OrderService")
	ctx, span := tr.Start(ctx, "Create", trace.WithAttributes(attribute.String("actor", actor)))
	defer span.End()

	summary := strings.TrimSpace(in.ItemSummary)
	if summary == "" {
		return nil, ErrValidation
	}
	if !validDate(in.RequestedDate) || !validClock(in.RequestedTime) {
		return nil, ErrValidation
	}
	prio := domain.PriorityMedium
	if in.Priority != "" {
		p, ok := domain.ParsePriority(in.Priority)
		if !ok {
			return nil, ErrValidation
		}
		prio = p
	}

	o := &domain.Order{
		ExternalUserID:   in.ExternalUserID,
		ExternalUsername: in.ExternalUsername,
		Priority:         prio,
		State:            domain.StatePending,
		RequestedDate:    in.RequestedDate,
		RequestedTime:    in.RequestedTime,
		ItemSummary:      summary,
		Notes:            in.Notes,
		AssignedTo:       in.AssignedTo,
	}
	// History starts with the first state change.
	if err := repo.CreateOrder(ctx, s.DB, o); err != nil {
		return nil, err
	}
	publish(ctx, s.Events, domain.NewOrderEvent(domain.EventOrderCreated, o))
	return o, nil
}

// Update applies the editable fields of in to order id.
func (s *OrderService) Update(ctx context.Context, id uint, in UpdateOrderInput) (*domain.Order, error) {
	fields := map[string]any{}
	if in.Notes != nil {
		fields["notes"] = *in.Notes
	}
	if in.AssignedTo != nil {
		fields["assigned_to"] = *in.AssignedTo
	}
	if len(fields) > 0 {
		fields["updated_at"] = time.Now().UTC()
		if err := repo.UpdateOrderFields(ctx, s.DB, id, fields); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, ErrOrderNotFound
			}
			return nil, err
		}
	}
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		publish(ctx, s.Events, domain.NewOrderEvent(domain.EventOrderUpdated, o))
	}
	return o, nil
}

// Delete removes an order with its dependent rows.
func (s *OrderService) Delete(ctx context.Context, id uint) error {
	if err := repo.DeleteOrder(ctx, s.DB, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrOrderNotFound
		}
		return err
	}
	publish(ctx, s.Events, domain.Event{Type: domain.EventOrderDeleted, OrderID: id, OccurredAt: time.Now().UTC()})
	return nil
}

// ChangeState transitions an order, announces it and hands the customer
// notification to the dispatcher.
func (s *OrderService) ChangeState(ctx context.Context, id uint, newState, actor string, note *string) (*TransitionResult, error) {
	tr := otel.Tracer("services/OrderService")
	ctx, span := tr.Start(ctx, "ChangeState",
		trace.WithAttributes(
			attribute.Int64("pedido.id", int64(id)),
			attribute.String("estado.nuevo", newState),
		),
	)
	defer span.End()

	res, err := s.Engine.Transition(ctx, id, newState, actor, note)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Events, domain.NewStateEvent(res.Order.ID, res.Previous, res.Order.State))
	publish(ctx, s.Events, domain.NewOrderEvent(domain.EventOrderUpdated, res.Order))

	if res.Intent != nil && s.Dispatcher != nil {
		s.notify(ctx, res.Intent)
	}
	return res, nil
}

func (s *OrderService) notify(ctx context.Context, intent *NotificationIntent) {
	deliver := func(ctx context.Context) {
		if _, err := s.Dispatcher.Deliver(ctx, intent); err != nil {
			log.Warn().Err(err).Int64("telegram_user_id", intent.ExternalUserID).Msg("state change notification not delivered")
		}
	}
	if !s.AsyncNotify {
		deliver(ctx)
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()
		deliver(dctx)
	}()
}

// ActiveForCustomer returns a chat user's non-terminal orders, newest first.
func (s *OrderService) ActiveForCustomer(ctx context.Context, externalUserID int64) ([]domain.Order, error) {
	return repo.ListOrders(ctx, s.DB, repo.OrderFilter{
		ExternalUserID: externalUserID,
		States:         domain.ActiveStates(),
	})
}

// Wait blocks until background deliveries started so far have finished.
func (s *OrderService) Wait() { s.wg.Wait() }

// Search filters orders and, when in.Query is set, ranks the matches by
// accent-insensitive similarity over summary, notes and username. Without a
// query it behaves like List.
func (s *OrderService) Search(ctx context.Context, in SearchInput) ([]domain.Order, int64, error) {
	tr := otel.Tracer("services/OrderService")
	ctx, span := tr.Start(ctx, "Search", trace.WithAttributes(attribute.String("query", in.Query)))
	defer span.End()

	q := strings.TrimSpace(in.Query)
	if q == "" {
		return s.List(ctx, in.Filter)
	}

	limit := utils.ClampLimit(in.Filter.Limit, defaultPageLimit, maxPageLimit)
	offset := utils.ClampOffset(in.Filter.Offset)

	all := in.Filter
	all.Limit, all.Offset = 0, 0
	candidates, err := repo.ListOrders(ctx, s.DB, all)
	if err != nil {
		return nil, 0, err
	}

	docs := make([]search.Doc, 0, len(candidates))
	byID := make(map[uint]domain.Order, len(candidates))
	for _, o := range candidates {
		byID[o.ID] = o
		docs = append(docs, search.Doc{ID: o.ID, Fields: []string{o.ItemSummary, deref(o.Notes), deref(o.ExternalUsername)}})
	}
	hits := search.NewIndex(docs, search.WithStopwords(search.SpanishStopwords)).TopK(q, 0)

	total := int64(len(hits))
	if offset >= len(hits) {
		return []domain.Order{}, total, nil
	}
	hits = hits[offset:]
	if len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]domain.Order, 0, len(hits))
	for _, h := range hits {
		out = append(out, byID[h.ID])
	}
	return out, total, nil
}

// History returns the audit trail of an order, oldest first.
func (s *OrderService) History(ctx context.Context, id uint) ([]domain.HistoryEntry, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return repo.ListHistory(ctx, s.DB, id)
}

// csvHeader lists the export columns in order.
var csvHeader = []string{
	"ID", "Telegram User ID", "Username", "Prioridad", "Estado",
	"Fecha Solicitada", "Hora Solicitada", "Resumen Items",
	"Notas", "Asignado A", "Fecha Creación", "Fecha Confirmación",
	"Fecha Preparación", "Fecha Listo", "Fecha Completado", "Fecha Cancelado",
}

// ExportCSV writes every order matching f (paging ignored) as CSV to w,
// oldest first.
func (s *OrderService) ExportCSV(ctx context.Context, f repo.OrderFilter, w io.Writer) error {
	tr := otel.Tracer("services/OrderService")
	ctx, span := tr.Start(ctx, "ExportCSV")
	defer span.End()

	f.Limit, f.Offset = 0, 0
	orders, err := repo.ListOrders(ctx, s.DB, f)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for i := len(orders) - 1; i >= 0; i-- {
		o := orders[i]
		row := []string{
			strconv.FormatUint(uint64(o.ID), 10),
			strconv.FormatInt(o.ExternalUserID, 10),
			deref(o.ExternalUsername),
			string(o.Priority),
			string(o.State),
			deref(o.RequestedDate),
			deref(o.RequestedTime),
			o.ItemSummary,
			deref(o.Notes),
			deref(o.AssignedTo),
			fmtTime(&o.CreatedAt),
			fmtTime(o.ConfirmedAt),
			fmtTime(o.InPreparationAt),
			fmtTime(o.ReadyAt),
			fmtTime(o.CompletedAt),
			fmtTime(o.CancelledAt),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func fmtTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}

func validDate(s *string) bool {
	if s == nil {
		return true
	}
	_, err := time.Parse("2006-01-02", *s)
	return err == nil
}

func validClock(s *string) bool {
	if s == nil {
		return true
	}
	_, err := time.Parse("15:04", *s)
	return err == nil
}
