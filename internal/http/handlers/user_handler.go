// User HTTP handlers.
//
// Self service under /users/me for every signed-in account; the rest of
// /users is admin only (enforced by the router).
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/pedidos-backend/internal/http/middleware"
	"github.com/tbourn/pedidos-backend/internal/services"
	"github.com/tbourn/pedidos-backend/internal/utils"
)

// UpdateMeRequest changes the caller's profile; omitted fields are kept.
type UpdateMeRequest struct {
	Email    *string `json:"email"     example:"ana@example.com"`
	FullName *string `json:"full_name" example:"Ana García"`
}

// ChangePasswordRequest replaces the caller's password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required" example:"old"`
	NewPassword string `json:"new_password" binding:"required" example:"new"`
}

// AdminUpdateUserRequest is an admin change to any account.
type AdminUpdateUserRequest struct {
	FullName   *string `json:"full_name"   example:"Ana García"`
	Role       *string `json:"role"        example:"staff" enums:"admin,staff,user"`
	IsActive   *bool   `json:"is_active"   example:"true"`
	TelegramID *int64  `json:"telegram_id" example:"123456789"`
}

// Me godoc
// @ID          getMe
// @Summary     Current account
// @Tags        Users
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  domain.User
// @Failure     401  {object}  handlers.ErrorResponse
// @Router      /users/me [get]
func (h *Handlers) Me(c *gin.Context) {
	u, err := h.users.Me(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, u)
}

// UpdateMe godoc
// @ID          updateMe
// @Summary     Update the current account
// @Tags        Users
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body      handlers.UpdateMeRequest  true  "Profile changes"
// @Success     200   {object}  domain.User
// @Failure     400   {object}  handlers.ErrorResponse  "Invalid or taken email"
// @Router      /users/me [put]
func (h *Handlers) UpdateMe(c *gin.Context) {
	var req UpdateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	u, err := h.users.UpdateMe(c.Request.Context(), middleware.CurrentUserID(c), services.UpdateMeInput{
		Email:    req.Email,
		FullName: req.FullName,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, u)
}

// ChangePassword godoc
// @ID          changePassword
// @Summary     Change the current password
// @Tags        Users
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body      handlers.ChangePasswordRequest  true  "Passwords"
// @Success     200   {object}  handlers.MessageResponse
// @Failure     400   {object}  handlers.ErrorResponse  "Current password is incorrect"
// @Router      /users/me/change-password [post]
func (h *Handlers) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "old_password and new_password required")
		return
	}
	if err := h.users.ChangePassword(c.Request.Context(), middleware.CurrentUserID(c), req.OldPassword, req.NewPassword); err != nil {
		failErr(c, err)
		return
	}
	message(c, "Contraseña actualizada exitosamente")
}

// ListUsers godoc
// @ID          listUsers
// @Summary     List accounts (admin)
// @Tags        Users
// @Produce     json
// @Security    BearerAuth
// @Param       offset  query  int  false  "Offset"  minimum(0) default(0)
// @Param       limit   query  int  false  "Limit"   minimum(1) maximum(100) default(50)
// @Success     200  {array}   domain.User
// @Failure     403  {object}  handlers.ErrorResponse
// @Router      /users [get]
func (h *Handlers) ListUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context(),
		utils.AtoiDefault(c.Query("offset"), 0),
		utils.AtoiDefault(c.Query("limit"), 0),
	)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, users)
}

// GetUser godoc
// @ID          getUser
// @Summary     Get an account (admin)
// @Tags        Users
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      int  true  "User ID"
// @Success     200  {object}  domain.User
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /users/{id} [get]
func (h *Handlers) GetUser(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	u, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, u)
}

// UpdateUser godoc
// @ID          updateUser
// @Summary     Update an account (admin)
// @Description PUT and PATCH behave the same: omitted fields are kept.
// @Tags        Users
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path      int                              true  "User ID"
// @Param       body  body      handlers.AdminUpdateUserRequest  true  "Changes"
// @Success     200   {object}  domain.User
// @Failure     400   {object}  handlers.ErrorResponse  "Unknown role"
// @Failure     404   {object}  handlers.ErrorResponse
// @Router      /users/{id} [put]
func (h *Handlers) UpdateUser(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req AdminUpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	u, err := h.users.AdminUpdate(c.Request.Context(), id, services.AdminUpdateInput{
		FullName:   req.FullName,
		Role:       req.Role,
		IsActive:   req.IsActive,
		TelegramID: req.TelegramID,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, u)
}

// DeleteUser godoc
// @ID          deleteUser
// @Summary     Delete an account (admin)
// @Tags        Users
// @Security    BearerAuth
// @Param       id   path  int  true  "User ID"
// @Success     204  {string}  string  "No Content"
// @Failure     403  {object}  handlers.ErrorResponse  "Cannot delete yourself"
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /users/{id} [delete]
func (h *Handlers) DeleteUser(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.users.Delete(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}
