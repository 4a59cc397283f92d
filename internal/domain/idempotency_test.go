package domain

import (
	"testing"
	"time"
)

func TestIdempotency_UniquePerUserScopeKey(t *testing.T) {
	db := newDomainDB(t)

	if !db.Migrator().HasIndex(&Idempotency{}, "ux_user_scope_key") {
		t.Fatalf("expected unique index ux_user_scope_key")
	}

	exp := time.Now().UTC().Add(time.Hour)
	first := &Idempotency{ID: "i1", UserID: "1", Scope: "/api/telegram/pedidos", Key: "k", ResourceID: "10", Status: 201, ExpiresAt: exp}
	if err := db.Create(first).Error; err != nil {
		t.Fatalf("insert: %v", err)
	}

	dup := &Idempotency{ID: "i2", UserID: "1", Scope: "/api/telegram/pedidos", Key: "k", ResourceID: "11", Status: 201, ExpiresAt: exp}
	if err := db.Create(dup).Error; err == nil {
		t.Fatalf("expected unique violation for same (user, scope, key)")
	}

	other := &Idempotency{ID: "i3", UserID: "1", Scope: "/other", Key: "k", ResourceID: "12", Status: 201, ExpiresAt: exp}
	if err := db.Create(other).Error; err != nil {
		t.Fatalf("different scope must be accepted: %v", err)
	}

	var got Idempotency
	if err := db.Where("idem_key = ? AND scope = ?", "k", "/api/telegram/pedidos").First(&got).Error; err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.ResourceID != "10" || got.CreatedAt.IsZero() {
		t.Fatalf("unexpected row: %+v", got)
	}
}
