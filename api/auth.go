package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SivaTeja36/Bus-reservation/internal/domain"
	"github.com/SivaTeja36/Bus-reservation/internal/logging"
	"github.com/SivaTeja36/Bus-reservation/internal/notify"
	"github.com/SivaTeja36/Bus-reservation/internal/service/auth"
	"github.com/SivaTeja36/Bus-reservation/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type loginPage struct {
	shell
	Email       string
	EmailError  string
	PassError   string
	FormMessage string
}

type AuthHandler struct {
	service auth.AuthUseCase
	notices notify.Queue
	logger  *slog.Logger
}

func NewAuthHandler(service auth.AuthUseCase, notices notify.Queue, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{service: service, notices: notices, logger: logger}
}

func (h *AuthHandler) Register(router *gin.RouterGroup) {
	router.GET("/login", h.loginForm)
	router.POST("/login", h.login)
	router.POST("/logout", h.logout)
}

func (h *AuthHandler) loginForm(c *gin.Context) {
	if currentUser(c) != nil {
		c.Redirect(http.StatusSeeOther, "/"+string(domain.ResourceTickets))
		return
	}
	page := loginPage{shell: shellData(c, "Login", "")}
	page.Notices = drainNotices(c, h.notices, h.logger)
	c.HTML(http.StatusOK, "login.tmpl", page)
}

// login signs in under a fresh session ID, so an ID planted before
// sign-in never becomes authenticated.
func (h *AuthHandler) login(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")

	fresh := uuid.NewString()
	_, err := h.service.Login(session.WithID(c.Request.Context(), fresh), fresh, email, password)
	if err == nil {
		hadUser := currentUser(c) != nil
		old := rotateSession(c, fresh)
		if hadUser {
			if err := h.service.Logout(c.Request.Context(), old); err != nil {
				logging.FromContext(c.Request.Context(), h.logger).Warn("drop previous session", "error", err)
			}
		}
		pushNotice(c, h.notices, h.logger, notify.Success("Login successful!"))
		c.Redirect(http.StatusSeeOther, "/"+string(domain.ResourceTickets))
		return
	}

	page := loginPage{shell: shellData(c, "Login", ""), Email: email}
	var fieldErrs domain.ValidationErrors
	switch {
	case errors.As(err, &fieldErrs):
		page.EmailError = fieldErrs.Field("email")
		page.PassError = fieldErrs.Field("password")
		c.HTML(http.StatusBadRequest, "login.tmpl", page)
	case domain.IsAuthentication(err):
		page.Notices = append(page.Notices, notify.Error(err.Error()))
		c.HTML(http.StatusUnauthorized, "login.tmpl", page)
	default:
		logging.FromContext(c.Request.Context(), h.logger).Error("login failed", "error", err)
		page.Notices = append(page.Notices, notify.Error("Login failed, please try again"))
		c.HTML(http.StatusInternalServerError, "login.tmpl", page)
	}
}

func (h *AuthHandler) logout(c *gin.Context) {
	if err := h.service.Logout(c.Request.Context(), sessionID(c)); err != nil {
		logging.FromContext(c.Request.Context(), h.logger).Error("logout failed", "error", err)
		c.HTML(http.StatusInternalServerError, "login.tmpl", loginPage{
			shell: shellData(c, "Login", ""),
		})
		return
	}
	c.Redirect(http.StatusSeeOther, "/login")
}
