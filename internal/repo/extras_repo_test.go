package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/pedidos-backend/internal/domain"
)

func TestHistoryNotificationsAndMessageLogs(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	o := &domain.Order{ExternalUserID: 3, ExternalMsgID: 1, ItemSummary: "x"}
	if err := CreateOrder(ctx, db, o); err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	t0 := time.Now().UTC()
	prev := domain.StatePending
	_ = AppendHistory(ctx, db, &domain.HistoryEntry{OrderID: o.ID, NewState: domain.StatePending, Actor: "telegram_bot", ChangedAt: t0})
	_ = AppendHistory(ctx, db, &domain.HistoryEntry{OrderID: o.ID, PreviousState: &prev, NewState: domain.StateConfirmed, Actor: "a@b.c", ChangedAt: t0.Add(time.Second)})

	h, err := ListHistory(ctx, db, o.ID)
	if err != nil || len(h) != 2 || h[1].NewState != domain.StateConfirmed || *h[1].PreviousState != domain.StatePending {
		t.Fatalf("ListHistory: %v %+v", err, h)
	}
	if n, _ := CountHistory(ctx, db, o.ID); n != 2 {
		t.Fatalf("CountHistory = %d", n)
	}

	oid := o.ID
	_ = CreateNotification(ctx, db, &domain.NotificationRecord{OrderID: &oid, ExternalUserID: 3, Category: domain.NotifyStateChange, Message: "m", Success: true, SentAt: t0})
	_ = CreateNotification(ctx, db, &domain.NotificationRecord{ExternalUserID: -100, Category: domain.NotifySummary, Message: "s", Success: true, SentAt: t0})
	ns, _ := ListNotifications(ctx, db, o.ID)
	if len(ns) != 1 {
		t.Fatalf("ListNotifications: %+v", ns)
	}
	sums, _ := ListNotificationsByCategory(ctx, db, domain.NotifySummary)
	if len(sums) != 1 || sums[0].OrderID != nil {
		t.Fatalf("ListNotificationsByCategory: %+v", sums)
	}

	log := &domain.MessageLog{ExternalUserID: 3, ExternalMsgID: 1, Kind: domain.MessageText, Content: "hola", ReceivedAt: t0}
	if err := CreateMessageLog(ctx, db, log); err != nil {
		t.Fatalf("CreateMessageLog: %v", err)
	}
	_ = CreateMessageLog(ctx, db, &domain.MessageLog{ExternalUserID: 4, ExternalMsgID: 2, Kind: domain.MessageVoice, Content: "[voz]", ReceivedAt: t0})
	if err := MarkMessageLogOrder(ctx, db, log.ID); err != nil {
		t.Fatalf("MarkMessageLogOrder: %v", err)
	}
	var reloaded domain.MessageLog
	db.First(&reloaded, log.ID)
	if !reloaded.IsOrder {
		t.Fatalf("log not flagged as order")
	}
	if n, _ := CountMessageLogs(ctx, db, 0); n != 2 {
		t.Fatalf("CountMessageLogs(all) = %d", n)
	}
	if n, _ := CountMessageLogs(ctx, db, 3); n != 1 {
		t.Fatalf("CountMessageLogs(3) = %d", n)
	}
}

func TestCommentsImagesFilters(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	u := &domain.User{Email: "s@x.io", HashedPassword: "h", Role: domain.RoleStaff, IsActive: true}
	_ = CreateUser(ctx, db, u)
	o := &domain.Order{ExternalUserID: 1, ExternalMsgID: 1, ItemSummary: "x"}
	_ = CreateOrder(ctx, db, o)

	_ = CreateComment(ctx, db, &domain.OrderComment{OrderID: o.ID, UserID: u.ID, Body: "primero"})
	_ = CreateComment(ctx, db, &domain.OrderComment{OrderID: o.ID, UserID: u.ID, Body: "segundo"})
	cs, _ := ListComments(ctx, db, o.ID)
	if len(cs) != 2 || cs[0].Body != "primero" {
		t.Fatalf("ListComments: %+v", cs)
	}

	img := &domain.OrderImage{OrderID: o.ID, URL: "https://cdn/x.jpg", Filename: "x.jpg"}
	_ = CreateImage(ctx, db, img)
	if imgs, _ := ListImages(ctx, db, o.ID); len(imgs) != 1 {
		t.Fatalf("ListImages: %+v", imgs)
	}
	if err := DeleteImage(ctx, db, img.ID); err != nil {
		t.Fatalf("DeleteImage: %v", err)
	}
	if err := DeleteImage(ctx, db, img.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("DeleteImage twice: %v", err)
	}

	f1 := &domain.SavedFilter{UserID: u.ID, Name: "hoy", FiltersJSON: `{}`, IsDefault: true}
	f2 := &domain.SavedFilter{UserID: u.ID, Name: "alta", FiltersJSON: `{"prioridad":"alta"}`}
	_ = CreateFilter(ctx, db, f1)
	_ = CreateFilter(ctx, db, f2)
	if err := ClearDefaultFilters(ctx, db, u.ID, f2.ID); err != nil {
		t.Fatalf("ClearDefaultFilters: %v", err)
	}
	f2.IsDefault = true
	_ = SaveFilter(ctx, db, f2)

	fs, _ := ListFilters(ctx, db, u.ID)
	if len(fs) != 2 || fs[0].ID != f2.ID || fs[1].IsDefault {
		t.Fatalf("ListFilters default first: %+v", fs)
	}
	if _, err := GetFilter(ctx, db, f1.ID, u.ID+1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetFilter foreign owner: %v", err)
	}
	if err := DeleteFilter(ctx, db, f1.ID, u.ID); err != nil {
		t.Fatalf("DeleteFilter: %v", err)
	}
}
