// Order HTTP handlers.
//
// Endpoints under /telegram (admin and staff):
//   - GET    /pedidos                      (list, filtered and paginated)
//   - POST   /pedidos                      (manual order, Idempotency-Key aware)
//   - GET    /pedidos/{id}
//   - PUT    /pedidos/{id}                 (notes and assignee)
//   - DELETE /pedidos/{id}                 (admin)
//   - POST   /pedidos/{id}/cambiar-estado  (lifecycle transition)
//   - GET    /estadisticas                 (weak ETag)
package handlers

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/pedidos-backend/internal/domain"
	"github.com/tbourn/pedidos-backend/internal/http/middleware"
	"github.com/tbourn/pedidos-backend/internal/services"
	"github.com/tbourn/pedidos-backend/internal/utils"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 100
)

// ListOrdersResponse is one page of orders.
type ListOrdersResponse struct {
	Total  int64          `json:"total"   example:"120"`
	Orders []domain.Order `json:"pedidos"`
	Offset int            `json:"offset"  example:"0"`
	Limit  int            `json:"limit"   example:"50"`
}

// CreateOrderRequest is a manually entered order.
type CreateOrderRequest struct {
	ExternalUserID   int64   `json:"telegram_user_id"  binding:"required" example:"123456789"`
	ExternalUsername *string `json:"telegram_username" example:"ana"`
	ItemSummary      string  `json:"resumen_items"     binding:"required" example:"2 pizzas margarita"`
	Priority         string  `json:"prioridad"         example:"media" enums:"alta,media,baja"`
	RequestedDate    *string `json:"fecha_solicitada"  example:"2025-03-12"`
	RequestedTime    *string `json:"hora_solicitada"   example:"13:30"`
	Notes            *string `json:"notas_adicionales" example:"sin cebolla"`
	AssignedTo       *string `json:"asignado_a"        example:"staff@example.com"`
}

// UpdateOrderRequest edits notes and assignee; omitted fields are kept.
type UpdateOrderRequest struct {
	Notes      *string `json:"notas_adicionales" example:"recoge su hermano"`
	AssignedTo *string `json:"asignado_a"        example:"staff@example.com"`
}

// ChangeStateRequest moves an order through its lifecycle.
type ChangeStateRequest struct {
	NewState string  `json:"nuevo_estado" binding:"required" example:"confirmado"`
	Note     *string `json:"notas"        example:"confirmado por teléfono"`
}

// ListOrders godoc
// @ID          listOrders
// @Summary     List orders
// @Description Newest first. estado and prioridad accept Spanish or English names.
// @Tags        Orders
// @Produce     json
// @Security    BearerAuth
// @Param       estado            query  string  false  "State"
// @Param       prioridad         query  string  false  "Priority"
// @Param       telegram_user_id  query  int     false  "Customer chat user id"
// @Param       fecha_desde       query  string  false  "Created from (date or RFC3339)"
// @Param       fecha_hasta       query  string  false  "Created to (date or RFC3339)"
// @Param       asignado_a        query  string  false  "Assignee"
// @Param       limit             query  int     false  "Page size"  minimum(1) maximum(100) default(50)
// @Param       offset            query  int     false  "Offset"     minimum(0) default(0)
// @Success     200  {object}  handlers.ListOrdersResponse
// @Failure     400  {object}  handlers.ErrorResponse
// @Router      /telegram/pedidos [get]
func (h *Handlers) ListOrders(c *gin.Context) {
	f, valid := queryFilter(c)
	if !valid {
		return
	}
	items, total, err := h.orders.List(c.Request.Context(), f)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, ListOrdersResponse{
		Total:  total,
		Orders: items,
		Offset: utils.ClampOffset(f.Offset),
		Limit:  utils.ClampLimit(f.Limit, defaultPageLimit, maxPageLimit),
	})
}

// CreateOrder godoc
// @ID          createOrder
// @Summary     Create an order manually
// @Description Stored as pending_confirmation. Retrying with the same Idempotency-Key returns the order created first.
// @Tags        Orders
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       Idempotency-Key  header  string                       false  "Idempotency key"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       body             body    handlers.CreateOrderRequest  true   "Order"
// @Success     201  {object}  domain.Order
// @Header      201  {string}  Idempotency-Replayed  "true when served from a previous request"
// @Failure     400  {object}  handlers.ErrorResponse
// @Router      /telegram/pedidos [post]
func (h *Handlers) CreateOrder(c *gin.Context) {
	ctx := c.Request.Context()

	if rid, replay := middleware.ReplayedResource(c); replay {
		if id, err := strconv.ParseUint(rid, 10, 64); err == nil {
			if o, err := h.orders.Get(ctx, uint(id)); err == nil {
				c.Header("Idempotency-Replayed", "true")
				ok(c, http.StatusCreated, o)
				return
			}
		}
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "telegram_user_id and resumen_items required")
		return
	}
	u, _ := middleware.CurrentUser(c)
	o, err := h.orders.Create(ctx, services.CreateOrderInput{
		ExternalUserID:   req.ExternalUserID,
		ExternalUsername: trimmed(req.ExternalUsername),
		Priority:         req.Priority,
		RequestedDate:    trimmed(req.RequestedDate),
		RequestedTime:    trimmed(req.RequestedTime),
		ItemSummary:      req.ItemSummary,
		Notes:            req.Notes,
		AssignedTo:       trimmed(req.AssignedTo),
	}, actorOf(u))
	if err != nil {
		failErr(c, err)
		return
	}

	if key, has := middleware.GetIdempotencyKey(c); has && h.idem != nil {
		uid := strconv.FormatUint(uint64(middleware.CurrentUserID(c)), 10)
		rid := strconv.FormatUint(uint64(o.ID), 10)
		if err := h.idem.Record(ctx, uid, middleware.IdempotencyScope(c), key, rid, http.StatusCreated); err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Uint("pedido_id", o.ID).Msg("idempotency record not stored")
		}
	}
	ok(c, http.StatusCreated, o)
}

// GetOrder godoc
// @ID          getOrder
// @Summary     Get an order
// @Tags        Orders
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      int  true  "Order ID"
// @Success     200  {object}  domain.Order
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /telegram/pedidos/{id} [get]
func (h *Handlers) GetOrder(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	o, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, o)
}

// UpdateOrder godoc
// @ID          updateOrder
// @Summary     Edit notes or assignee
// @Tags        Orders
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path      int                          true  "Order ID"
// @Param       body  body      handlers.UpdateOrderRequest  true  "Changes"
// @Success     200   {object}  domain.Order
// @Failure     404   {object}  handlers.ErrorResponse
// @Router      /telegram/pedidos/{id} [put]
func (h *Handlers) UpdateOrder(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	o, err := h.orders.Update(c.Request.Context(), id, services.UpdateOrderInput{
		Notes:      req.Notes,
		AssignedTo: trimmed(req.AssignedTo),
	})
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, o)
}

// DeleteOrder godoc
// @ID          deleteOrder
// @Summary     Delete an order (admin)
// @Tags        Orders
// @Security    BearerAuth
// @Param       id   path  int  true  "Order ID"
// @Success     204  {string}  string  "No Content"
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /telegram/pedidos/{id} [delete]
func (h *Handlers) DeleteOrder(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.orders.Delete(c.Request.Context(), id); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}

// ChangeState godoc
// @ID          changeOrderState
// @Summary     Change the state of an order
// @Description Records history, stamps the lifecycle time, notifies the customer and pushes realtime events.
// @Tags        Orders
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path      int                          true  "Order ID"
// @Param       body  body      handlers.ChangeStateRequest  true  "New state"
// @Success     200   {object}  domain.Order
// @Failure     400   {object}  handlers.ErrorResponse  "Unknown state"
// @Failure     404   {object}  handlers.ErrorResponse
// @Failure     409   {object}  handlers.ErrorResponse  "Transition not allowed in strict mode"
// @Router      /telegram/pedidos/{id}/cambiar-estado [post]
func (h *Handlers) ChangeState(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req ChangeStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "nuevo_estado required")
		return
	}
	u, _ := middleware.CurrentUser(c)
	res, err := h.orders.ChangeState(c.Request.Context(), id, req.NewState, actorOf(u), req.Note)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, res.Order)
}

// Stats godoc
// @ID          orderStats
// @Summary     Order statistics
// @Description Supports a weak ETag via If-None-Match and may return 304.
// @Tags        Orders
// @Produce     json
// @Security    BearerAuth
// @Param       If-None-Match  header  string  false  "Return 304 if ETag matches"
// @Success     200  {object}  services.BasicStats
// @Header      200  {string}  ETag  "Weak ETag of the payload"
// @Success     304  {string}  string  "Not Modified"
// @Router      /telegram/estadisticas [get]
func (h *Handlers) Stats(c *gin.Context) {
	st, err := h.stats.Basic(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	body, err := json.Marshal(st)
	if err != nil {
		failErr(c, err)
		return
	}
	hsh := fnv.New64a()
	_, _ = hsh.Write(body)
	etag := fmt.Sprintf(`W/"stats:%x"`, hsh.Sum64())
	c.Header("ETag", etag)
	if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
		c.Status(http.StatusNotModified)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}
