package handlers

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/pedidos-backend/internal/domain"
	"github.com/tbourn/pedidos-backend/internal/repo"
	"github.com/tbourn/pedidos-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// AuthService issues and revokes dashboard sessions.
type AuthService interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.Session, error)
	Login(ctx context.Context, email, password string) (*services.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*services.Session, error)
	Logout(ctx context.Context, refreshToken string) error
	LogoutAll(ctx context.Context, userID uint) (int64, error)
}

// UserService manages accounts.
type UserService interface {
	Me(ctx context.Context, userID uint) (*domain.User, error)
	UpdateMe(ctx context.Context, userID uint, in services.UpdateMeInput) (*domain.User, error)
	ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error
	Get(ctx context.Context, id uint) (*domain.User, error)
	List(ctx context.Context, offset, limit int) ([]domain.User, error)
	AdminUpdate(ctx context.Context, id uint, in services.AdminUpdateInput) (*domain.User, error)
	Delete(ctx context.Context, actorID, id uint) error
}

// OrderService is the dashboard view of orders.
type OrderService interface {
	List(ctx context.Context, f repo.OrderFilter) ([]domain.Order, int64, error)
	Get(ctx context.Context, id uint) (*domain.Order, error)
	Create(ctx context.Context, in services.CreateOrderInput, actor string) (*domain.Order, error)
	Update(ctx context.Context, id uint, in services.UpdateOrderInput) (*domain.Order, error)
	Delete(ctx context.Context, id uint) error
	ChangeState(ctx context.Context, id uint, newState, actor string, note *string) (*services.TransitionResult, error)
	Search(ctx context.Context, in services.SearchInput) ([]domain.Order, int64, error)
	History(ctx context.Context, id uint) ([]domain.HistoryEntry, error)
	ExportCSV(ctx context.Context, f repo.OrderFilter, w io.Writer) error
}

// StatsService aggregates order statistics.
type StatsService interface {
	Basic(ctx context.Context) (*services.BasicStats, error)
	Advanced(ctx context.Context) (*services.AdvancedStats, error)
}

// ExtrasService manages comments, images and saved filters.
type ExtrasService interface {
	AddComment(ctx context.Context, orderID, userID uint, body string) (*domain.OrderComment, error)
	Comments(ctx context.Context, orderID uint) ([]domain.OrderComment, error)
	AddImage(ctx context.Context, orderID uint, in services.ImageInput) (*domain.OrderImage, error)
	Images(ctx context.Context, orderID uint) ([]domain.OrderImage, error)
	DeleteImage(ctx context.Context, id uint) error
	CreateFilter(ctx context.Context, userID uint, in services.FilterInput) (*domain.SavedFilter, error)
	Filters(ctx context.Context, userID uint) ([]domain.SavedFilter, error)
	UpdateFilter(ctx context.Context, userID, id uint, in services.FilterInput) (*domain.SavedFilter, error)
	DeleteFilter(ctx context.Context, userID, id uint) error
}

// IdempotencyRecorder stores the outcome of a keyed POST so a retry can be
// answered with the same resource.
type IdempotencyRecorder interface {
	Record(ctx context.Context, userID, scope, key, resourceID string, status int) error
}

//
// Handler wiring
//

// Deps groups the services the handlers depend on.
type Deps struct {
	Auth   AuthService
	Users  UserService
	Orders OrderService
	Stats  StatsService
	Extras ExtrasService
	Idem   IdempotencyRecorder

	// Now defaults to time.Now; it names CSV exports.
	Now func() time.Time
}

// Handlers groups every REST endpoint.
type Handlers struct {
	auth   AuthService
	users  UserService
	orders OrderService
	stats  StatsService
	extras ExtrasService
	idem   IdempotencyRecorder
	now    func() time.Time
}

// New constructs Handlers bound to d.
func New(d Deps) *Handlers {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	return &Handlers{
		auth:   d.Auth,
		users:  d.Users,
		orders: d.Orders,
		stats:  d.Stats,
		extras: d.Extras,
		idem:   d.Idem,
		now:    now,
	}
}

//
// Helpers
//

// pathID parses a positive numeric path parameter.
func pathID(c *gin.Context, name string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, name+" must be a positive integer")
		return 0, false
	}
	return uint(n), true
}

// timeLayouts are accepted for fecha_desde / fecha_hasta.
var timeLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func parseTime(s string) (*time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, true
		}
	}
	return nil, false
}

// FilterParams are the order filters shared by listing, search and export.
type FilterParams struct {
	State          string `json:"estado"            form:"estado"            example:"confirmado"`
	Priority       string `json:"prioridad"         form:"prioridad"         example:"alta"`
	ExternalUserID int64  `json:"telegram_user_id"  form:"telegram_user_id"  example:"123456789"`
	Username       string `json:"telegram_username" form:"telegram_username" example:"ana"`
	From           string `json:"fecha_desde"       form:"fecha_desde"       example:"2025-03-01"`
	To             string `json:"fecha_hasta"       form:"fecha_hasta"       example:"2025-03-31T23:59:59Z"`
	AssignedTo     string `json:"asignado_a"        form:"asignado_a"        example:"staff@example.com"`
	Limit          int    `json:"limit"             form:"limit"             example:"50"`
	Offset         int    `json:"offset"            form:"offset"            example:"0"`
}

// toFilter validates p. Unknown states or priorities and unparseable dates
// are reported by the returned message.
func (p FilterParams) toFilter() (repo.OrderFilter, string) {
	var f repo.OrderFilter
	if p.State != "" {
		s, ok := domain.ParseState(p.State)
		if !ok {
			return f, "unknown estado: " + p.State
		}
		f.State = s
	}
	if p.Priority != "" {
		pr, ok := domain.ParsePriority(p.Priority)
		if !ok {
			return f, "unknown prioridad: " + p.Priority
		}
		f.Priority = pr
	}
	from, ok := parseTime(p.From)
	if !ok {
		return f, "fecha_desde must be a date or RFC3339 timestamp"
	}
	to, ok := parseTime(p.To)
	if !ok {
		return f, "fecha_hasta must be a date or RFC3339 timestamp"
	}
	if p.Limit < 0 || p.Offset < 0 {
		return f, "limit and offset must not be negative"
	}
	f.ExternalUserID = p.ExternalUserID
	f.Username = strings.TrimSpace(p.Username)
	f.AssignedTo = strings.TrimSpace(p.AssignedTo)
	f.CreatedFrom, f.CreatedTo = from, to
	f.Limit, f.Offset = p.Limit, p.Offset
	return f, ""
}

// queryFilter binds FilterParams from the query string.
func queryFilter(c *gin.Context) (repo.OrderFilter, bool) {
	var p FilterParams
	if err := c.ShouldBindQuery(&p); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid query parameters")
		return repo.OrderFilter{}, false
	}
	f, msg := p.toFilter()
	if msg != "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msg)
		return repo.OrderFilter{}, false
	}
	return f, true
}

// actorOf names the signed-in user in history rows.
func actorOf(u *domain.User) string {
	if u == nil {
		return "api"
	}
	return u.Email
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
