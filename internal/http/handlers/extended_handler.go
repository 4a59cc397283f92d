// Extended order HTTP handlers, mounted under /pedidos-extended.
//
// Images, comments, history, saved filters, full-text search, advanced
// statistics and CSV export.
package handlers

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/pedidos-backend/internal/http/middleware"
	"github.com/tbourn/pedidos-backend/internal/services"
	"github.com/tbourn/pedidos-backend/internal/utils"
)

// SearchRequest is a filter plus an optional free-text query.
type SearchRequest struct {
	Query string `json:"query" example:"pizza margarita"`
	FilterParams
}

// AddImageRequest references an already uploaded image.
type AddImageRequest struct {
	URL       string  `json:"url"        binding:"required" example:"https://cdn.example.com/p/42.jpg"`
	Filename  string  `json:"filename"   binding:"required" example:"42.jpg"`
	SizeBytes *int64  `json:"size_bytes" example:"20480"`
	MimeType  *string `json:"mime_type"  example:"image/jpeg"`
}

// AddCommentRequest is an internal staff note.
type AddCommentRequest struct {
	Body string `json:"comentario" binding:"required" example:"cliente llamó para confirmar"`
}

// FilterRequest creates or updates a saved filter. On update omitted
// fields are kept.
type FilterRequest struct {
	Name        *string `json:"nombre"       example:"Urgentes"`
	FiltersJSON *string `json:"filtros_json" example:"{\"prioridad\":\"alta\"}"`
	IsDefault   *bool   `json:"is_default"   example:"false"`
}

// Search godoc
// @ID          searchOrders
// @Summary     Search orders
// @Description Applies the filters, then ranks matches by similarity to query over summary, notes and username.
// @Tags        Extended
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body      handlers.SearchRequest  true  "Search"
// @Success     200   {object}  handlers.ListOrdersResponse
// @Failure     400   {object}  handlers.ErrorResponse
// @Router      /pedidos-extended/buscar [post]
func (h *Handlers) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	f, msg := req.FilterParams.toFilter()
	if msg != "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msg)
		return
	}
	items, total, err := h.orders.Search(c.Request.Context(), services.SearchInput{Query: req.Query, Filter: f})
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

// AddImage godoc
// @ID          addOrderImage
// @Summary     Attach an image to an order
// @Tags        Extended
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path      int                       true  "Order ID"
// @Param       body  body      handlers.AddImageRequest  true  "Image"
// @Success     201   {object}  domain.OrderImage
// @Failure     404   {object}  handlers.ErrorResponse
// @Router      /pedidos-extended/pedidos/{id}/imagenes [post]
func (h *Handlers) AddImage(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req AddImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "url and filename required")
		return
	}
	img, err := h.extras.AddImage(c.Request.Context(), id, services.ImageInput{
		URL:       req.URL,
		Filename:  req.Filename,
		SizeBytes: req.SizeBytes,
		MimeType:  req.MimeType,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, img)
}

// ListImages godoc
// @ID          listOrderImages
// @Summary     Images of an order
// @Tags        Extended
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      int  true  "Order ID"
// @Success     200  {array}   domain.OrderImage
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /pedidos-extended/pedidos/{id}/imagenes [get]
func (h *Handlers) ListImages(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	imgs, err := h.extras.Images(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, imgs)
}

// DeleteImage godoc
// @ID          deleteOrderImage
// @Summary     Remove an image
// @Tags        Extended
// @Produce     json
// @Security    BearerAuth
// @Param       image_id  path      int  true  "Image ID"
// @Success     200       {object}  handlers.MessageResponse
// @Failure     404       {object}  handlers.ErrorResponse
// @Router      /pedidos-extended/imagenes/{image_id} [delete]
func (h *Handlers) DeleteImage(c *gin.Context) {
	id, valid := pathID(c, "image_id")
	if !valid {
		return
	}
	if err := h.extras.DeleteImage(c.Request.Context(), id); err != nil {
		failErr(c, err)
		return
	}
	message(c, "Imagen eliminada exitosamente")
}

// AddComment godoc
// @ID          addOrderComment
// @Summary     Add an internal comment
// @Tags        Extended
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path      int                         true  "Order ID"
// @Param       body  body      handlers.AddCommentRequest  true  "Comment"
// @Success     201   {object}  domain.OrderComment
// @Failure     404   {object}  handlers.ErrorResponse
// @Router      /pedidos-extended/pedidos/{id}/comentarios [post]
func (h *Handlers) AddComment(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "comentario required")
		return
	}
	cm, err := h.extras.AddComment(c.Request.Context(), id, middleware.CurrentUserID(c), req.Body)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, cm)
}

// ListComments godoc
// @ID          listOrderComments
// @Summary     Comments of an order, oldest first
// @Tags        Extended
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      int  true  "Order ID"
// @Success     200  {array}   domain.OrderComment
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /pedidos-extended/pedidos/{id}/comentarios [get]
func (h *Handlers) ListComments(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	cms, err := h.extras.Comments(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, cms)
}

// History godoc
// @ID          orderHistory
// @Summary     Audit trail of an order
// @Tags        Extended
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      int  true  "Order ID"
// @Success     200  {array}   domain.HistoryEntry
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /pedidos-extended/pedidos/{id}/historial [get]
func (h *Handlers) History(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	hist, err := h.orders.History(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, hist)
}

// CreateFilter godoc
// @ID          createFilter
// @Summary     Save a filter
// @Description Marking it default clears the flag on the caller's other filters.
// @Tags        Extended
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body      handlers.FilterRequest  true  "Filter"
// @Success     201   {object}  domain.SavedFilter
// @Failure     400   {object}  handlers.ErrorResponse
// @Router      /pedidos-extended/filtros [post]
func (h *Handlers) CreateFilter(c *gin.Context) {
	var req FilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if req.Name == nil || req.FiltersJSON == nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "nombre and filtros_json required")
		return
	}
	f, err := h.extras.CreateFilter(c.Request.Context(), middleware.CurrentUserID(c), req.input())
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, f)
}

// ListFilters godoc
// @ID          listFilters
// @Summary     Saved filters of the caller
// @Tags        Extended
// @Produce     json
// @Security    BearerAuth
// @Success     200  {array}  domain.SavedFilter
// @Router      /pedidos-extended/filtros [get]
func (h *Handlers) ListFilters(c *gin.Context) {
	fs, err := h.extras.Filters(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, fs)
}

// UpdateFilter godoc
// @ID          updateFilter
// @Summary     Update a saved filter
// @Tags        Extended
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       filter_id  path      int                     true  "Filter ID"
// @Param       body       body      handlers.FilterRequest  true  "Changes"
// @Success     200        {object}  domain.SavedFilter
// @Failure     404        {object}  handlers.ErrorResponse  "Not found or owned by someone else"
// @Router      /pedidos-extended/filtros/{filter_id} [put]
func (h *Handlers) UpdateFilter(c *gin.Context) {
	id, valid := pathID(c, "filter_id")
	if !valid {
		return
	}
	var req FilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	f, err := h.extras.UpdateFilter(c.Request.Context(), middleware.CurrentUserID(c), id, req.input())
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, f)
}

// DeleteFilter godoc
// @ID          deleteFilter
// @Summary     Delete a saved filter
// @Tags        Extended
// @Produce     json
// @Security    BearerAuth
// @Param       filter_id  path      int  true  "Filter ID"
// @Success     200        {object}  handlers.MessageResponse
// @Failure     404        {object}  handlers.ErrorResponse
// @Router      /pedidos-extended/filtros/{filter_id} [delete]
func (h *Handlers) DeleteFilter(c *gin.Context) {
	id, valid := pathID(c, "filter_id")
	if !valid {
		return
	}
	if err := h.extras.DeleteFilter(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		failErr(c, err)
		return
	}
	message(c, "Filtro eliminado exitosamente")
}

func (r FilterRequest) input() services.FilterInput {
	return services.FilterInput{Name: trimmed(r.Name), FiltersJSON: r.FiltersJSON, IsDefault: r.IsDefault}
}

// AdvancedStats godoc
// @ID          advancedStats
// @Summary     Lifecycle timings, cancel rate and hourly distribution
// @Tags        Extended
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  services.AdvancedStats
// @Router      /pedidos-extended/estadisticas-avanzadas [get]
func (h *Handlers) AdvancedStats(c *gin.Context) {
	st, err := h.stats.Advanced(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, st)
}

// ExportCSV godoc
// @ID          exportOrdersCSV
// @Summary     Export orders as CSV
// @Tags        Extended
// @Produce     text/csv
// @Security    BearerAuth
// @Param       estado       query  string  false  "State"
// @Param       fecha_desde  query  string  false  "Created from"
// @Param       fecha_hasta  query  string  false  "Created to"
// @Success     200  {file}    file
// @Failure     400  {object}  handlers.ErrorResponse
// @Router      /pedidos-extended/export/csv [get]
func (h *Handlers) ExportCSV(c *gin.Context) {
	f, valid := queryFilter(c)
	if !valid {
		return
	}
	var buf bytes.Buffer
	if err := h.orders.ExportCSV(c.Request.Context(), f, &buf); err != nil {
		failErr(c, err)
		return
	}
	name := "pedidos_" + h.now().Format("20060102_150405") + ".csv"
	c.Header("Content-Disposition", `attachment; filename=`+name)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
