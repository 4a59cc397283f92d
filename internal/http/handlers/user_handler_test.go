package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/tbourn/pedidos-backend/internal/domain"
	"github.com/tbourn/pedidos-backend/internal/services"
)

func TestMeAndUpdateMe(t *testing.T) {
	me := &domain.User{ID: 4, Email: "ana@example.com", Role: domain.RoleStaff, IsActive: true}
	h := New(Deps{Users: stubUsers{
		me: func(_ context.Context, id uint) (*domain.User, error) {
			if id != 4 {
				t.Fatalf("me called with %d", id)
			}
			return me, nil
		},
		updateMe: func(_ context.Context, id uint, in services.UpdateMeInput) (*domain.User, error) {
			if in.Email != nil && *in.Email == "taken@example.com" {
				return nil, services.ErrEmailTaken
			}
			u := *me
			if in.FullName != nil {
				u.FullName = in.FullName
			}
			return &u, nil
		},
	}})
	r := newEngine(asUser(me))
	r.GET("/users/me", h.Me)
	r.PUT("/users/me", h.UpdateMe)

	w := do(t, r, http.MethodGet, "/users/me", "")
	var u domain.User
	_ = json.Unmarshal(w.Body.Bytes(), &u)
	if w.Code != http.StatusOK || u.Email != me.Email {
		t.Fatalf("me: %d %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodPut, "/users/me", `{"full_name":"Ana G"}`)
	_ = json.Unmarshal(w.Body.Bytes(), &u)
	if w.Code != http.StatusOK || u.FullName == nil || *u.FullName != "Ana G" {
		t.Fatalf("update: %d %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodPut, "/users/me", `{"email":"taken@example.com"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("taken: %d", w.Code)
	}
}

func TestChangePassword(t *testing.T) {
	h := New(Deps{Users: stubUsers{
		changePassword: func(_ context.Context, _ uint, old, _ string) error {
			if old != "old" {
				return services.ErrWrongPassword
			}
			return nil
		},
	}})
	r := newEngine(asUser(&domain.User{ID: 1}))
	r.POST("/users/me/change-password", h.ChangePassword)

	w := do(t, r, http.MethodPost, "/users/me/change-password", `{"old_password":"old","new_password":"new"}`)
	var m MessageResponse
	_ = json.Unmarshal(w.Body.Bytes(), &m)
	if w.Code != http.StatusOK || m.Message != "Contraseña actualizada exitosamente" {
		t.Fatalf("ok: %d %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodPost, "/users/me/change-password", `{"old_password":"bad","new_password":"new"}`)
	if w.Code != http.StatusBadRequest || decodeErr(t, w).Message != services.ErrWrongPassword.Error() {
		t.Fatalf("wrong: %d %s", w.Code, w.Body.String())
	}
}

func TestAdminUserEndpoints(t *testing.T) {
	admin := &domain.User{ID: 1, Email: "root@example.com", Role: domain.RoleAdmin, IsActive: true}
	var gotOffset, gotLimit int
	var gotUpdate services.AdminUpdateInput
	h := New(Deps{Users: stubUsers{
		list: func(_ context.Context, off, lim int) ([]domain.User, error) {
			gotOffset, gotLimit = off, lim
			return []domain.User{*admin}, nil
		},
		get: func(_ context.Context, id uint) (*domain.User, error) {
			if id == 404 {
				return nil, services.ErrUserNotFound
			}
			return &domain.User{ID: id}, nil
		},
		adminUpdate: func(_ context.Context, id uint, in services.AdminUpdateInput) (*domain.User, error) {
			gotUpdate = in
			if in.Role != nil && *in.Role == "owner" {
				return nil, services.ErrValidation
			}
			return &domain.User{ID: id}, nil
		},
		del: func(_ context.Context, actor, id uint) error {
			if actor == id {
				return services.ErrForbidden
			}
			return nil
		},
	}})
	r := newEngine(asUser(admin))
	r.GET("/users", h.ListUsers)
	r.GET("/users/:id", h.GetUser)
	r.PATCH("/users/:id", h.UpdateUser)
	r.DELETE("/users/:id", h.DeleteUser)

	if w := do(t, r, http.MethodGet, "/users?offset=5&limit=2", ""); w.Code != http.StatusOK || gotOffset != 5 || gotLimit != 2 {
		t.Fatalf("list: %d off=%d lim=%d", w.Code, gotOffset, gotLimit)
	}
	if w := do(t, r, http.MethodGet, "/users/404", ""); w.Code != http.StatusNotFound {
		t.Fatalf("missing: %d", w.Code)
	}
	if w := do(t, r, http.MethodGet, "/users/abc", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("bad id: %d", w.Code)
	}

	w := do(t, r, http.MethodPatch, "/users/7", `{"is_active":false,"telegram_id":42}`)
	if w.Code != http.StatusOK || gotUpdate.IsActive == nil || *gotUpdate.IsActive || gotUpdate.TelegramID == nil || *gotUpdate.TelegramID != 42 {
		t.Fatalf("patch: %d %+v", w.Code, gotUpdate)
	}
	if w := do(t, r, http.MethodPatch, "/users/7", `{"role":"owner"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("bad role: %d", w.Code)
	}

	if w := do(t, r, http.MethodDelete, "/users/7", ""); w.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", w.Code)
	}
	if w := do(t, r, http.MethodDelete, "/users/1", ""); w.Code != http.StatusForbidden {
		t.Fatalf("self delete: %d", w.Code)
	}
}
