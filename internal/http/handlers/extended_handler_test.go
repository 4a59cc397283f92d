package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/tbourn/pedidos-backend/internal/domain"
	"github.com/tbourn/pedidos-backend/internal/repo"
	"github.com/tbourn/pedidos-backend/internal/services"
)

func TestSearch(t *testing.T) {
	var got services.SearchInput
	h := New(Deps{Orders: stubOrders{
		search: func(_ context.Context, in services.SearchInput) ([]domain.Order, int64, error) {
			got = in
			return []domain.Order{{ID: 3, ItemSummary: "pizza margarita"}}, 1, nil
		},
	}})
	r := newEngine(asUser(staff))
	r.POST("/pedidos-extended/buscar", h.Search)

	w := do(t, r, http.MethodPost, "/pedidos-extended/buscar", `{"query":"pizza","estado":"en_preparacion","telegram_username":" ana ","limit":5}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if got.Query != "pizza" || got.Filter.State != domain.StateInPreparation || got.Filter.Username != "ana" || got.Filter.Limit != 5 {
		t.Fatalf("input: %+v", got)
	}
	var resp ListOrdersResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 1 || resp.Limit != 5 || len(resp.Orders) != 1 {
		t.Fatalf("resp: %+v", resp)
	}

	if w := do(t, r, http.MethodPost, "/pedidos-extended/buscar", `{"estado":"nope"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("bad state: %d", w.Code)
	}
	if w := do(t, r, http.MethodPost, "/pedidos-extended/buscar", `not json`); w.Code != http.StatusBadRequest {
		t.Fatalf("bad json: %d", w.Code)
	}
}

func TestImages(t *testing.T) {
	var got services.ImageInput
	h := New(Deps{Extras: stubExtras{
		addImage: func(_ context.Context, oid uint, in services.ImageInput) (*domain.OrderImage, error) {
			if oid == 404 {
				return nil, services.ErrOrderNotFound
			}
			got = in
			return &domain.OrderImage{ID: 1, OrderID: oid, URL: in.URL, Filename: in.Filename}, nil
		},
		images: func(_ context.Context, oid uint) ([]domain.OrderImage, error) {
			return []domain.OrderImage{{ID: 1, OrderID: oid}}, nil
		},
		deleteImage: func(_ context.Context, id uint) error {
			if id == 404 {
				return services.ErrImageNotFound
			}
			return nil
		},
	}})
	r := newEngine(asUser(staff))
	r.POST("/pedidos-extended/pedidos/:id/imagenes", h.AddImage)
	r.GET("/pedidos-extended/pedidos/:id/imagenes", h.ListImages)
	r.DELETE("/pedidos-extended/imagenes/:image_id", h.DeleteImage)

	w := do(t, r, http.MethodPost, "/pedidos-extended/pedidos/2/imagenes", `{"url":"https://x/y.jpg","filename":"y.jpg","size_bytes":10,"mime_type":"image/jpeg"}`)
	if w.Code != http.StatusCreated || got.SizeBytes == nil || *got.SizeBytes != 10 || got.MimeType == nil {
		t.Fatalf("add: %d %+v", w.Code, got)
	}
	if w := do(t, r, http.MethodPost, "/pedidos-extended/pedidos/2/imagenes", `{"url":"https://x/y.jpg"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("missing filename: %d", w.Code)
	}
	if w := do(t, r, http.MethodPost, "/pedidos-extended/pedidos/404/imagenes", `{"url":"u","filename":"f"}`); w.Code != http.StatusNotFound {
		t.Fatalf("missing order: %d", w.Code)
	}
	if w := do(t, r, http.MethodGet, "/pedidos-extended/pedidos/2/imagenes", ""); w.Code != http.StatusOK {
		t.Fatalf("list: %d", w.Code)
	}

	w = do(t, r, http.MethodDelete, "/pedidos-extended/imagenes/1", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Imagen eliminada exitosamente") {
		t.Fatalf("delete: %d %s", w.Code, w.Body.String())
	}
	if w := do(t, r, http.MethodDelete, "/pedidos-extended/imagenes/404", ""); w.Code != http.StatusNotFound {
		t.Fatalf("delete missing: %d", w.Code)
	}
}

func TestCommentsAndHistory(t *testing.T) {
	var author uint
	h := New(Deps{
		Extras: stubExtras{
			addComment: func(_ context.Context, oid, uid uint, body string) (*domain.OrderComment, error) {
				author = uid
				return &domain.OrderComment{ID: 1, OrderID: oid, UserID: uid, Body: body}, nil
			},
			comments: func(context.Context, uint) ([]domain.OrderComment, error) {
				return []domain.OrderComment{{ID: 1}, {ID: 2}}, nil
			},
		},
		Orders: stubOrders{
			history: func(_ context.Context, id uint) ([]domain.HistoryEntry, error) {
				if id == 404 {
					return nil, services.ErrOrderNotFound
				}
				return []domain.HistoryEntry{{ID: 1, OrderID: id, NewState: domain.StatePending, Actor: "bot"}}, nil
			},
		},
	})
	r := newEngine(asUser(staff))
	r.POST("/pedidos-extended/pedidos/:id/comentarios", h.AddComment)
	r.GET("/pedidos-extended/pedidos/:id/comentarios", h.ListComments)
	r.GET("/pedidos-extended/pedidos/:id/historial", h.History)

	if w := do(t, r, http.MethodPost, "/pedidos-extended/pedidos/2/comentarios", `{"comentario":"llamó"}`); w.Code != http.StatusCreated || author != staff.ID {
		t.Fatalf("comment: %d author=%d", w.Code, author)
	}
	if w := do(t, r, http.MethodPost, "/pedidos-extended/pedidos/2/comentarios", `{}`); w.Code != http.StatusBadRequest {
		t.Fatalf("empty comment: %d", w.Code)
	}
	w := do(t, r, http.MethodGet, "/pedidos-extended/pedidos/2/comentarios", "")
	var cms []domain.OrderComment
	_ = json.Unmarshal(w.Body.Bytes(), &cms)
	if w.Code != http.StatusOK || len(cms) != 2 {
		t.Fatalf("comments: %d %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodGet, "/pedidos-extended/pedidos/2/historial", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"modificado_por":"bot"`) {
		t.Fatalf("history: %d %s", w.Code, w.Body.String())
	}
	if w := do(t, r, http.MethodGet, "/pedidos-extended/pedidos/404/historial", ""); w.Code != http.StatusNotFound {
		t.Fatalf("history missing: %d", w.Code)
	}
}

func TestSavedFilters(t *testing.T) {
	var got services.FilterInput
	var owner uint
	h := New(Deps{Extras: stubExtras{
		createFilter: func(_ context.Context, uid uint, in services.FilterInput) (*domain.SavedFilter, error) {
			owner, got = uid, in
			if *in.FiltersJSON == "{" {
				return nil, services.ErrValidation
			}
			return &domain.SavedFilter{ID: 1, UserID: uid, Name: *in.Name, FiltersJSON: *in.FiltersJSON}, nil
		},
		filters: func(_ context.Context, uid uint) ([]domain.SavedFilter, error) {
			return []domain.SavedFilter{{ID: 1, UserID: uid}}, nil
		},
		updateFilter: func(_ context.Context, uid, id uint, in services.FilterInput) (*domain.SavedFilter, error) {
			got = in
			if id == 404 {
				return nil, services.ErrFilterNotFound
			}
			return &domain.SavedFilter{ID: id, UserID: uid}, nil
		},
		deleteFilter: func(_ context.Context, _, id uint) error {
			if id == 404 {
				return services.ErrFilterNotFound
			}
			return nil
		},
	}})
	r := newEngine(asUser(staff))
	r.POST("/pedidos-extended/filtros", h.CreateFilter)
	r.GET("/pedidos-extended/filtros", h.ListFilters)
	r.PUT("/pedidos-extended/filtros/:filter_id", h.UpdateFilter)
	r.DELETE("/pedidos-extended/filtros/:filter_id", h.DeleteFilter)

	w := do(t, r, http.MethodPost, "/pedidos-extended/filtros", `{"nombre":" Urgentes ","filtros_json":"{\"prioridad\":\"alta\"}","is_default":true}`)
	if w.Code != http.StatusCreated || owner != staff.ID || *got.Name != "Urgentes" || got.IsDefault == nil || !*got.IsDefault {
		t.Fatalf("create: %d %+v", w.Code, got)
	}
	if w := do(t, r, http.MethodPost, "/pedidos-extended/filtros", `{"nombre":"x"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("missing json: %d", w.Code)
	}
	if w := do(t, r, http.MethodPost, "/pedidos-extended/filtros", `{"nombre":"x","filtros_json":"{"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("invalid json: %d", w.Code)
	}
	if w := do(t, r, http.MethodGet, "/pedidos-extended/filtros", ""); w.Code != http.StatusOK {
		t.Fatalf("list: %d", w.Code)
	}

	w = do(t, r, http.MethodPut, "/pedidos-extended/filtros/3", `{"is_default":false}`)
	if w.Code != http.StatusOK || got.Name != nil || got.FiltersJSON != nil || got.IsDefault == nil || *got.IsDefault {
		t.Fatalf("update: %d %+v", w.Code, got)
	}
	if w := do(t, r, http.MethodPut, "/pedidos-extended/filtros/404", `{}`); w.Code != http.StatusNotFound {
		t.Fatalf("update missing: %d", w.Code)
	}

	w = do(t, r, http.MethodDelete, "/pedidos-extended/filtros/3", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Filtro eliminado exitosamente") {
		t.Fatalf("delete: %d %s", w.Code, w.Body.String())
	}
	if w := do(t, r, http.MethodDelete, "/pedidos-extended/filtros/404", ""); w.Code != http.StatusNotFound {
		t.Fatalf("delete missing: %d", w.Code)
	}
}

func TestAdvancedStats(t *testing.T) {
	avg := 12.5
	h := New(Deps{Stats: stubStats{
		advanced: func(context.Context) (*services.AdvancedStats, error) {
			return &services.AdvancedStats{AvgMinutesToConfirm: &avg, CancelRate: 25, ByHour: map[string]int64{"13": 2}}, nil
		},
	}})
	r := newEngine(asUser(staff))
	r.GET("/pedidos-extended/estadisticas-avanzadas", h.AdvancedStats)

	w := do(t, r, http.MethodGet, "/pedidos-extended/estadisticas-avanzadas", "")
	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if w.Code != http.StatusOK || out["tiempo_promedio_confirmacion"] != 12.5 || out["tasa_cancelacion"] != 25.0 {
		t.Fatalf("advanced: %d %s", w.Code, w.Body.String())
	}
}

func TestExportCSV(t *testing.T) {
	var got repo.OrderFilter
	h := New(Deps{
		Orders: stubOrders{
			exportCSV: func(_ context.Context, f repo.OrderFilter, w io.Writer) error {
				got = f
				_, err := io.WriteString(w, "ID,Estado\n1,confirmed\n")
				return err
			},
		},
		Now: func() time.Time { return time.Date(2025, 3, 12, 9, 5, 7, 0, time.UTC) },
	})
	r := newEngine(asUser(staff))
	r.GET("/pedidos-extended/export/csv", h.ExportCSV)

	w := do(t, r, http.MethodGet, "/pedidos-extended/export/csv?estado=cancelado&fecha_hasta=2025-03-31", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if cd := w.Header().Get("Content-Disposition"); cd != "attachment; filename=pedidos_20250312_090507.csv" {
		t.Fatalf("disposition: %q", cd)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("content type: %q", ct)
	}
	if w.Body.String() != "ID,Estado\n1,confirmed\n" {
		t.Fatalf("body: %q", w.Body.String())
	}
	if got.State != domain.StateCancelled || got.CreatedTo == nil {
		t.Fatalf("filter: %+v", got)
	}

	if w := do(t, r, http.MethodGet, "/pedidos-extended/export/csv?fecha_desde=manana", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("bad date: %d", w.Code)
	}
}
