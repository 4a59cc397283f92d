package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/pedidos-backend/internal/domain"
	"github.com/tbourn/pedidos-backend/internal/repo"
	"github.com/tbourn/pedidos-backend/internal/services"
)

// ---------- service stubs ----------

type stubAuth struct {
	register  func(context.Context, services.RegisterInput) (*services.Session, error)
	login     func(context.Context, string, string) (*services.Session, error)
	refresh   func(context.Context, string) (*services.Session, error)
	logout    func(context.Context, string) error
	logoutAll func(context.Context, uint) (int64, error)
}

func (s stubAuth) Register(ctx context.Context, in services.RegisterInput) (*services.Session, error) {
	return s.register(ctx, in)
}
func (s stubAuth) Login(ctx context.Context, email, pw string) (*services.Session, error) {
	return s.login(ctx, email, pw)
}
func (s stubAuth) Refresh(ctx context.Context, raw string) (*services.Session, error) {
	return s.refresh(ctx, raw)
}
func (s stubAuth) Logout(ctx context.Context, raw string) error { return s.logout(ctx, raw) }
func (s stubAuth) LogoutAll(ctx context.Context, uid uint) (int64, error) {
	return s.logoutAll(ctx, uid)
}

type stubUsers struct {
	me             func(context.Context, uint) (*domain.User, error)
	updateMe       func(context.Context, uint, services.UpdateMeInput) (*domain.User, error)
	changePassword func(context.Context, uint, string, string) error
	get            func(context.Context, uint) (*domain.User, error)
	list           func(context.Context, int, int) ([]domain.User, error)
	adminUpdate    func(context.Context, uint, services.AdminUpdateInput) (*domain.User, error)
	del            func(context.Context, uint, uint) error
}

func (s stubUsers) Me(ctx context.Context, id uint) (*domain.User, error) { return s.me(ctx, id) }
func (s stubUsers) UpdateMe(ctx context.Context, id uint, in services.UpdateMeInput) (*domain.User, error) {
	return s.updateMe(ctx, id, in)
}
func (s stubUsers) ChangePassword(ctx context.Context, id uint, o, n string) error {
	return s.changePassword(ctx, id, o, n)
}
func (s stubUsers) Get(ctx context.Context, id uint) (*domain.User, error) { return s.get(ctx, id) }
func (s stubUsers) List(ctx context.Context, off, lim int) ([]domain.User, error) {
	return s.list(ctx, off, lim)
}
func (s stubUsers) AdminUpdate(ctx context.Context, id uint, in services.AdminUpdateInput) (*domain.User, error) {
	return s.adminUpdate(ctx, id, in)
}
func (s stubUsers) Delete(ctx context.Context, actor, id uint) error { return s.del(ctx, actor, id) }

type stubOrders struct {
	list        func(context.Context, repo.OrderFilter) ([]domain.Order, int64, error)
	get         func(context.Context, uint) (*domain.Order, error)
	create      func(context.Context, services.CreateOrderInput, string) (*domain.Order, error)
	update      func(context.Context, uint, services.UpdateOrderInput) (*domain.Order, error)
	del         func(context.Context, uint) error
	changeState func(context.Context, uint, string, string, *string) (*services.TransitionResult, error)
	search      func(context.Context, services.SearchInput) ([]domain.Order, int64, error)
	history     func(context.Context, uint) ([]domain.HistoryEntry, error)
	exportCSV   func(context.Context, repo.OrderFilter, io.Writer) error
}

func (s stubOrders) List(ctx context.Context, f repo.OrderFilter) ([]domain.Order, int64, error) {
	return s.list(ctx, f)
}
func (s stubOrders) Get(ctx context.Context, id uint) (*domain.Order, error) { return s.get(ctx, id) }
func (s stubOrders) Create(ctx context.Context, in services.CreateOrderInput, actor string) (*domain.Order, error) {
	return s.create(ctx, in, actor)
}
func (s stubOrders) Update(ctx context.Context, id uint, in services.UpdateOrderInput) (*domain.Order, error) {
	return s.update(ctx, id, in)
}
func (s stubOrders) Delete(ctx context.Context, id uint) error { return s.del(ctx, id) }
func (s stubOrders) ChangeState(ctx context.Context, id uint, st, actor string, note *string) (*services.TransitionResult, error) {
	return s.changeState(ctx, id, st, actor, note)
}
func (s stubOrders) Search(ctx context.Context, in services.SearchInput) ([]domain.Order, int64, error) {
	return s.search(ctx, in)
}
func (s stubOrders) History(ctx context.Context, id uint) ([]domain.HistoryEntry, error) {
	return s.history(ctx, id)
}
func (s stubOrders) ExportCSV(ctx context.Context, f repo.OrderFilter, w io.Writer) error {
	return s.exportCSV(ctx, f, w)
}

type stubStats struct {
	basic    func(context.Context) (*services.BasicStats, error)
	advanced func(context.Context) (*services.AdvancedStats, error)
}

func (s stubStats) Basic(ctx context.Context) (*services.BasicStats, error)       { return s.basic(ctx) }
func (s stubStats) Advanced(ctx context.Context) (*services.AdvancedStats, error) { return s.advanced(ctx) }

type stubExtras struct {
	addComment   func(context.Context, uint, uint, string) (*domain.OrderComment, error)
	comments     func(context.Context, uint) ([]domain.OrderComment, error)
	addImage     func(context.Context, uint, services.ImageInput) (*domain.OrderImage, error)
	images       func(context.Context, uint) ([]domain.OrderImage, error)
	deleteImage  func(context.Context, uint) error
	createFilter func(context.Context, uint, services.FilterInput) (*domain.SavedFilter, error)
	filters      func(context.Context, uint) ([]domain.SavedFilter, error)
	updateFilter func(context.Context, uint, uint, services.FilterInput) (*domain.SavedFilter, error)
	deleteFilter func(context.Context, uint, uint) error
}

func (s stubExtras) AddComment(ctx context.Context, oid, uid uint, body string) (*domain.OrderComment, error) {
	return s.addComment(ctx, oid, uid, body)
}
func (s stubExtras) Comments(ctx context.Context, oid uint) ([]domain.OrderComment, error) {
	return s.comments(ctx, oid)
}
func (s stubExtras) AddImage(ctx context.Context, oid uint, in services.ImageInput) (*domain.OrderImage, error) {
	return s.addImage(ctx, oid, in)
}
func (s stubExtras) Images(ctx context.Context, oid uint) ([]domain.OrderImage, error) {
	return s.images(ctx, oid)
}
func (s stubExtras) DeleteImage(ctx context.Context, id uint) error { return s.deleteImage(ctx, id) }
func (s stubExtras) CreateFilter(ctx context.Context, uid uint, in services.FilterInput) (*domain.SavedFilter, error) {
	return s.createFilter(ctx, uid, in)
}
func (s stubExtras) Filters(ctx context.Context, uid uint) ([]domain.SavedFilter, error) {
	return s.filters(ctx, uid)
}
func (s stubExtras) UpdateFilter(ctx context.Context, uid, id uint, in services.FilterInput) (*domain.SavedFilter, error) {
	return s.updateFilter(ctx, uid, id, in)
}
func (s stubExtras) DeleteFilter(ctx context.Context, uid, id uint) error {
	return s.deleteFilter(ctx, uid, id)
}

type idemCall struct {
	userID, scope, key, resourceID string
	status                         int
}

type stubIdem struct {
	calls *[]idemCall
	err   error
}

func (s stubIdem) Record(_ context.Context, userID, scope, key, resourceID string, status int) error {
	*s.calls = append(*s.calls, idemCall{userID, scope, key, resourceID, status})
	return s.err
}

// ---------- router helpers ----------

// asUser installs what Authenticate would set for u.
func asUser(u *domain.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user", u)
		c.Set("userID", strconv.FormatUint(uint64(u.ID), 10))
		c.Next()
	}
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	return r
}

func do(t *testing.T, r http.Handler, method, path, body string, hdr ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeErr(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var er ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return er
}

func strp(s string) *string { return &s }
