package handler

import (
	"net/http"
	"time"

	"lead_management_backend/internal/auth/service"
	"lead_management_backend/internal/auth/transport"
	"lead_management_backend/platform/config"
	"lead_management_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest = "Invalid JSON body"
	msgLoggedOut      = "Logged out"
)

type Handler struct {
	svc *service.Service
	cfg config.SessionConfig
}

func New(svc *service.Service, cfg config.SessionConfig) *Handler {
	return &Handler{svc: svc, cfg: cfg}
}

// RegisterRoutes mounts the public auth routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/register", h.Register)
	rg.POST("/login", h.Login)
	rg.POST("/logout", h.Logout)
}

func (h *Handler) Register(c *gin.Context) {
	var req transport.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	resp, session, err := h.svc.Register(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	h.setSessionCookie(c, session.Token, session.ExpiresAt)
	httpkit.JSON(c, http.StatusCreated, resp)
}

func (h *Handler) Login(c *gin.Context) {
	var req transport.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	resp, session, err := h.svc.Login(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	h.setSessionCookie(c, session.Token, session.ExpiresAt)
	httpkit.OK(c, resp)
}

func (h *Handler) Logout(c *gin.Context) {
	rawToken, _ := httpkit.SessionToken(c, h.cfg.GetCookieName())
	if err := h.svc.Logout(c.Request.Context(), rawToken); httpkit.HandleError(c, err) {
		return
	}

	h.clearSessionCookie(c)
	httpkit.OK(c, transport.MessageResponse{Message: msgLoggedOut})
}

func (h *Handler) Me(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	resp, err := h.svc.Me(c.Request.Context(), identity.OwnerID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, resp)
}

func (h *Handler) setSessionCookie(c *gin.Context, value string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}
	c.SetSameSite(h.cfg.GetCookieSameSite())
	c.SetCookie(h.cfg.GetCookieName(), value, maxAge, "/", h.cfg.GetCookieDomain(), h.cfg.GetCookieSecure(), true)
}

func (h *Handler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(h.cfg.GetCookieSameSite())
	c.SetCookie(h.cfg.GetCookieName(), "", -1, "/", h.cfg.GetCookieDomain(), h.cfg.GetCookieSecure(), true)
}
