package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"lead_management_backend/internal/leads/filter"
	"lead_management_backend/internal/leads/management"
	"lead_management_backend/internal/leads/transport"
	"lead_management_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

const msgInvalidBody = "Invalid JSON body"

// Handler exposes the owner-scoped lead CRUD endpoints.
type Handler struct {
	svc *management.Service
}

func New(svc *management.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the lead routes on an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.GetByID)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}

func (h *Handler) Create(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	payload, ok := bindPayload(c)
	if !ok {
		return
	}

	lead, err := h.svc.Create(c.Request.Context(), identity.OwnerID(), payload)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, lead)
}

func (h *Handler) List(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	query := c.Request.URL.Query()
	req := transport.ListLeadsRequest{
		Page:    query.Get("page"),
		Limit:   query.Get("limit"),
		Sort:    query.Get("sort"),
		Filters: filter.Params(query),
	}

	result, err := h.svc.List(c.Request.Context(), identity.OwnerID(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) GetByID(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	lead, err := h.svc.GetByID(c.Request.Context(), identity.OwnerID(), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, lead)
}

func (h *Handler) Update(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	payload, ok := bindPayload(c)
	if !ok {
		return
	}

	lead, err := h.svc.Update(c.Request.Context(), identity.OwnerID(), c.Param("id"), payload)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, lead)
}

func (h *Handler) Delete(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.Delete(c.Request.Context(), identity.OwnerID(), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// bindPayload decodes the request body as a flat JSON object. Numbers stay
// json.Number so the validator can tell integers from fractions. An empty
// body is an empty object.
func bindPayload(c *gin.Context) (map[string]any, bool) {
	payload := map[string]any{}
	if c.Request.Body == nil {
		return payload, true
	}

	decoder := json.NewDecoder(c.Request.Body)
	decoder.UseNumber()
	if err := decoder.Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidBody, nil)
		return nil, false
	}
	if payload == nil {
		payload = map[string]any{}
	}
	return payload, true
}
