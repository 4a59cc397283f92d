package services

import (
	"context"
	"errors"
	"testing"

	"github.com/tbourn/pedidos-backend/internal/domain"
)

func TestExtras_Comments(t *testing.T) {
	db := newSvcDB(t)
	ctx := context.Background()
	pub := &recPublisher{}
	s := NewExtrasService(db, pub)
	users := NewUserService(db)
	staff := seedUser(t, users, "staff@x.com", "pw", domain.RoleStaff)
	o := seedOrder(t, db, "pastel")

	if _, err := s.AddComment(ctx, o.ID, staff.ID, "  "); !errors.Is(err, ErrValidation) {
		t.Fatalf("empty: want ErrValidation, got %v", err)
	}
	if _, err := s.AddComment(ctx, 999, staff.ID, "hola"); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("missing order: want ErrOrderNotFound, got %v", err)
	}

	c, err := s.AddComment(ctx, o.ID, staff.ID, "cliente llamó")
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if _, err := s.AddComment(ctx, o.ID, staff.ID, "confirmado por teléfono"); err != nil {
		t.Fatal(err)
	}
	list, err := s.Comments(ctx, o.ID)
	if err != nil || len(list) != 2 || list[0].ID != c.ID {
		t.Fatalf("Comments: %v %+v", err, list)
	}

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.events) != 2 || pub.events[0].Type != domain.EventCommentCreated ||
		pub.events[0].OrderID != o.ID || pub.events[0].Comment == nil {
		t.Fatalf("events = %+v", pub.events)
	}
}

func TestExtras_Images(t *testing.T) {
	db := newSvcDB(t)
	ctx := context.Background()
	s := NewExtrasService(db, nil)
	o := seedOrder(t, db, "torta")

	if _, err := s.AddImage(ctx, o.ID, ImageInput{URL: "", Filename: "a.png"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
	size := int64(2048)
	img, err := s.AddImage(ctx, o.ID, ImageInput{URL: "https://cdn.example.com/a.png", Filename: "a.png", SizeBytes: &size, MimeType: strp("image/png")})
	if err != nil {
		t.Fatalf("AddImage: %v", err)
	}
	imgs, _ := s.Images(ctx, o.ID)
	if len(imgs) != 1 || imgs[0].URL != "https://cdn.example.com/a.png" {
		t.Fatalf("Images = %+v", imgs)
	}
	if err := s.DeleteImage(ctx, img.ID); err != nil {
		t.Fatalf("DeleteImage: %v", err)
	}
	if err := s.DeleteImage(ctx, img.ID); !errors.Is(err, ErrImageNotFound) {
		t.Fatalf("want ErrImageNotFound, got %v", err)
	}
}

func TestExtras_FiltersSingleDefault(t *testing.T) {
	db := newSvcDB(t)
	ctx := context.Background()
	s := NewExtrasService(db, nil)
	users := NewUserService(db)
	u := seedUser(t, users, "f@x.com", "pw", domain.RoleStaff)
	other := seedUser(t, users, "g@x.com", "pw", domain.RoleStaff)
	yes := true

	if _, err := s.CreateFilter(ctx, u.ID, FilterInput{Name: strp("bad"), FiltersJSON: strp("{nope")}); !errors.Is(err, ErrValidation) {
		t.Fatalf("invalid JSON: want ErrValidation, got %v", err)
	}
	if _, err := s.CreateFilter(ctx, u.ID, FilterInput{Name: strp(" "), FiltersJSON: strp("{}")}); !errors.Is(err, ErrValidation) {
		t.Fatalf("empty name: want ErrValidation, got %v", err)
	}

	first, err := s.CreateFilter(ctx, u.ID, FilterInput{Name: strp("pendientes"), FiltersJSON: strp(`{"estado":"pending_confirmation"}`), IsDefault: &yes})
	if err != nil {
		t.Fatalf("CreateFilter: %v", err)
	}
	second, err := s.CreateFilter(ctx, u.ID, FilterInput{Name: strp("alta"), FiltersJSON: strp(`{"prioridad":"high"}`), IsDefault: &yes})
	if err != nil {
		t.Fatal(err)
	}

	list, _ := s.Filters(ctx, u.ID)
	if len(list) != 2 || list[0].ID != second.ID || !list[0].IsDefault || list[1].IsDefault {
		t.Fatalf("want only the newest default, got %+v", list)
	}

	upd, err := s.UpdateFilter(ctx, u.ID, first.ID, FilterInput{IsDefault: &yes, Name: strp("por confirmar")})
	if err != nil {
		t.Fatalf("UpdateFilter: %v", err)
	}
	if upd.Name != "por confirmar" || !upd.IsDefault {
		t.Fatalf("update not applied: %+v", upd)
	}
	list, _ = s.Filters(ctx, u.ID)
	defaults := 0
	for _, f := range list {
		if f.IsDefault {
			defaults++
		}
	}
	if defaults != 1 || list[0].ID != first.ID {
		t.Fatalf("default not moved: %+v", list)
	}

	if _, err := s.UpdateFilter(ctx, other.ID, first.ID, FilterInput{Name: strp("x")}); !errors.Is(err, ErrFilterNotFound) {
		t.Fatalf("foreign filter: want ErrFilterNotFound, got %v", err)
	}
	if err := s.DeleteFilter(ctx, other.ID, first.ID); !errors.Is(err, ErrFilterNotFound) {
		t.Fatalf("foreign delete: want ErrFilterNotFound, got %v", err)
	}
	if err := s.DeleteFilter(ctx, u.ID, first.ID); err != nil {
		t.Fatalf("DeleteFilter: %v", err)
	}
}
