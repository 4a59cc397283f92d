// Auth HTTP handlers.
//
// Endpoints under /auth:
//   - POST /register    (create account, returns a session)
//   - POST /login       (JSON credentials)
//   - POST /token       (OAuth2 password form, for interactive API docs)
//   - POST /refresh     (exchange a refresh token)
//   - POST /logout      (revoke one refresh token)
//   - POST /logout-all  (revoke every refresh token of the caller)
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/pedidos-backend/internal/http/middleware"
	"github.com/tbourn/pedidos-backend/internal/services"
)

// RegisterRequest creates an account. New accounts get the user role.
type RegisterRequest struct {
	Email    string  `json:"email"     binding:"required,email" example:"ana@example.com"`
	Password string  `json:"password"  binding:"required,min=1"  example:"s3cret"`
	FullName *string `json:"full_name" example:"Ana García"`
}

// LoginRequest carries JSON credentials.
type LoginRequest struct {
	Email    string `json:"email"    binding:"required" example:"ana@example.com"`
	Password string `json:"password" binding:"required" example:"s3cret"`
}

// RefreshRequest carries an opaque refresh token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required" example:"9f2c…"`
}

// LogoutAllResponse reports how many sessions were revoked.
type LogoutAllResponse struct {
	Message string `json:"message" example:"Sesiones cerradas"`
	Revoked int64  `json:"revoked" example:"3"`
}

// Register godoc
// @ID          register
// @Summary     Register an account
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.RegisterRequest  true  "Account"
// @Success     201   {object}  services.Session
// @Failure     400   {object}  handlers.ErrorResponse  "Invalid body or email taken"
// @Router      /auth/register [post]
func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email and password required")
		return
	}
	s, err := h.auth.Register(c.Request.Context(), services.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: trimmed(req.FullName),
	})
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, s)
}

// Login godoc
// @ID          login
// @Summary     Sign in with email and password
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.LoginRequest  true  "Credentials"
// @Success     200   {object}  services.Session
// @Failure     401   {object}  handlers.ErrorResponse  "Incorrect email or password"
// @Failure     403   {object}  handlers.ErrorResponse  "Inactive user"
// @Router      /auth/login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email and password required")
		return
	}
	h.signIn(c, req.Email, req.Password)
}

// Token godoc
// @ID          token
// @Summary     OAuth2 password grant
// @Description Same as login but reads form fields username (the email) and password.
// @Tags        Auth
// @Accept      x-www-form-urlencoded
// @Produce     json
// @Param       username  formData  string  true  "Email"
// @Param       password  formData  string  true  "Password"
// @Success     200  {object}  services.Session
// @Failure     401  {object}  handlers.ErrorResponse
// @Router      /auth/token [post]
func (h *Handlers) Token(c *gin.Context) {
	user, pass := c.PostForm("username"), c.PostForm("password")
	if user == "" || pass == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "username and password required")
		return
	}
	h.signIn(c, user, pass)
}

func (h *Handlers) signIn(c *gin.Context, email, password string) {
	s, err := h.auth.Login(c.Request.Context(), strings.TrimSpace(email), password)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, s)
}

// Refresh godoc
// @ID          refresh
// @Summary     Exchange a refresh token
// @Description With rotation enabled the presented token stops working.
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.RefreshRequest  true  "Refresh token"
// @Success     200   {object}  services.Session
// @Failure     401   {object}  handlers.ErrorResponse  "Invalid refresh token"
// @Router      /auth/refresh [post]
func (h *Handlers) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "refresh_token required")
		return
	}
	s, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, s)
}

// Logout godoc
// @ID          logout
// @Summary     Revoke a refresh token
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.RefreshRequest  true  "Refresh token"
// @Success     200   {object}  handlers.MessageResponse
// @Failure     401   {object}  handlers.ErrorResponse
// @Router      /auth/logout [post]
func (h *Handlers) Logout(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "refresh_token required")
		return
	}
	if err := h.auth.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		failErr(c, err)
		return
	}
	message(c, "Sesión cerrada")
}

// LogoutAll godoc
// @ID          logoutAll
// @Summary     Revoke every session of the caller
// @Tags        Auth
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  handlers.LogoutAllResponse
// @Failure     401  {object}  handlers.ErrorResponse
// @Router      /auth/logout-all [post]
func (h *Handlers) LogoutAll(c *gin.Context) {
	n, err := h.auth.LogoutAll(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, LogoutAllResponse{Message: "Sesiones cerradas", Revoked: n})
}
