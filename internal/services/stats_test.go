package services

import (
	"context"
	"testing"
	"time"

	"github.com/tbourn/pedidos-backend/internal/domain"
	"github.com/tbourn/pedidos-backend/internal/repo"
)

func TestStats_BasicAndAdvanced(t *testing.T) {
	db := newSvcDB(t)
	ctx := context.Background()
	s := NewStatsService(db)

	empty, err := s.Advanced(ctx)
	if err != nil {
		t.Fatalf("Advanced on empty store: %v", err)
	}
	if empty.TotalOrders != 0 || empty.CancelRate != 0 || empty.AvgMinutesToConfirm != nil || empty.ByAssignee != nil || len(empty.ByHour) != 24 {
		t.Fatalf("unexpected empty stats: %+v", empty)
	}

	t0 := time.Date(2025, 2, 3, 14, 0, 0, 0, time.UTC)
	conf := t0.Add(10 * time.Minute)
	prep := t0.Add(40 * time.Minute)
	done := t0.Add(60 * time.Minute)
	cancelled := t0.Add(5 * time.Minute)
	orders := []*domain.Order{
		{ItemSummary: "a", Priority: domain.PriorityHigh, State: domain.StateCompleted, CreatedAt: t0, ConfirmedAt: &conf, InPreparationAt: &prep, CompletedAt: &done, AssignedTo: strp("luis")},
		{ItemSummary: "b", Priority: domain.PriorityLow, State: domain.StateCancelled, CreatedAt: t0, CancelledAt: &cancelled},
		{ItemSummary: "c", State: domain.StatePending, CreatedAt: t0.Add(6 * time.Hour), AssignedTo: strp("luis")},
		{ItemSummary: "d", State: domain.StatePending, CreatedAt: t0.Add(6 * time.Hour)},
	}
	for _, o := range orders {
		o.ExternalUserID, o.ExternalMsgID = 1, 1
		if err := repo.CreateOrder(ctx, db, o); err != nil {
			t.Fatal(err)
		}
	}
	if err := repo.CreateMessageLog(ctx, db, &domain.MessageLog{ExternalUserID: 1, ExternalMsgID: 1, Kind: domain.MessageText, Content: "x", ReceivedAt: t0}); err != nil {
		t.Fatal(err)
	}

	basic, err := s.Basic(ctx)
	if err != nil {
		t.Fatalf("Basic: %v", err)
	}
	if basic.TotalMessages != 1 || basic.TotalOrders != 4 {
		t.Fatalf("totals = %d/%d", basic.TotalMessages, basic.TotalOrders)
	}
	if basic.ByState[domain.StatePending] != 2 || basic.ByState[domain.StateReady] != 0 || len(basic.ByState) != 6 {
		t.Fatalf("ByState = %v", basic.ByState)
	}
	if basic.ByPriority[domain.PriorityMedium] != 2 || basic.ByPriority[domain.PriorityHigh] != 1 {
		t.Fatalf("ByPriority = %v", basic.ByPriority)
	}

	adv, err := s.Advanced(ctx)
	if err != nil {
		t.Fatalf("Advanced: %v", err)
	}
	if adv.AvgMinutesToConfirm == nil || *adv.AvgMinutesToConfirm != 10 {
		t.Fatalf("confirm avg = %v", adv.AvgMinutesToConfirm)
	}
	if adv.AvgMinutesToPrepare == nil || *adv.AvgMinutesToPrepare != 30 {
		t.Fatalf("prepare avg = %v", adv.AvgMinutesToPrepare)
	}
	if adv.AvgMinutesToComplete == nil || *adv.AvgMinutesToComplete != 60 {
		t.Fatalf("complete avg = %v", adv.AvgMinutesToComplete)
	}
	if adv.CancelRate != 25 {
		t.Fatalf("cancel rate = %v", adv.CancelRate)
	}
	if adv.ByHour["14"] != 2 || adv.ByHour["20"] != 2 || adv.ByHour["0"] != 0 {
		t.Fatalf("ByHour = %v", adv.ByHour)
	}
	if adv.ByAssignee["luis"] != 2 {
		t.Fatalf("ByAssignee = %v", adv.ByAssignee)
	}
}

func TestStats_ForCustomer(t *testing.T) {
	db := newSvcDB(t)
	ctx := context.Background()
	orders := NewOrderService(db, NewLifecycleEngine(db, false), nil, nil, false)

	a := seedOrder(t, db, "uno")
	b := seedOrder(t, db, "dos")
	seedOrder(t, db, "tres")
	if _, err := orders.ChangeState(ctx, a.ID, "confirmed", "x", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := orders.ChangeState(ctx, b.ID, "cancelled", "x", nil); err != nil {
		t.Fatal(err)
	}
	other := &domain.Order{ExternalUserID: 888, ExternalMsgID: 2, ItemSummary: "ajeno", State: domain.StatePending, Priority: domain.PriorityMedium}
	if err := repo.CreateOrder(ctx, db, other); err != nil {
		t.Fatal(err)
	}

	st, err := NewStatsService(db).ForCustomer(ctx, 777)
	if err != nil {
		t.Fatalf("ForCustomer: %v", err)
	}
	if st.Orders != 3 || st.Pending != 1 || st.Confirmed != 1 || st.Cancelled != 1 {
		t.Fatalf("stats = %+v", st)
	}

	active, err := orders.ActiveForCustomer(ctx, 777)
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 2 {
		t.Fatalf("active = %d; want 2", len(active))
	}
	for _, o := range active {
		if o.ID == b.ID || o.ExternalUserID != 777 {
			t.Fatalf("unexpected active order %+v", o)
		}
	}
}
