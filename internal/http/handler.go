package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/asram/pickup-service/internal/http/middleware"
	"github.com/asram/pickup-service/internal/model"
	"github.com/asram/pickup-service/internal/service"
)

type Handler struct {
	pickups *service.PickupService
	history *service.HistoryService
	clients service.ClientStore
	log     zerolog.Logger
}

func NewHandler(pickups *service.PickupService, history *service.HistoryService, clients service.ClientStore, log zerolog.Logger) *Handler {
	return &Handler{pickups: pickups, history: history, clients: clients, log: log}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(authMiddleware)

	protected.GET("/pickups", h.listPickups)
	protected.POST("/pickups", h.createPickup)
	protected.PATCH("/pickups/:id", h.updatePickup)
	protected.POST("/pickups/:id/complete", h.completePickup)
	protected.DELETE("/pickups/:id", h.deletePickup)

	protected.GET("/clients", h.listClients)
	protected.GET("/clients/:id/history", h.clientHistory)
	protected.POST("/clients/:id/history/entries", h.addHistoricalEntry)
	protected.POST("/clients/:id/history/export", h.exportHistory)
}

func (h *Handler) listPickups(c *gin.Context) {
	filter := service.ListPickupsFilter{
		District:     strings.TrimSpace(c.Query("district")),
		Neighborhood: strings.TrimSpace(c.Query("neighborhood")),
	}
	if raw := strings.TrimSpace(c.Query("client_id")); raw != "" {
		clientID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client_id"})
			return
		}
		filter.ClientID = &clientID
	}

	pickups, err := h.pickups.List(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pickups": pickups})
}

type createPickupRequest struct {
	ClientID     string  `json:"client_id"`
	RouteID      string  `json:"route_id"`
	RequestedAt  string  `json:"requested_at"`
	ScheduledAt  string  `json:"scheduled_at"`
	Date         string  `json:"date"`
	Litres       float64 `json:"litres"`
	Address      string  `json:"address"`
	District     string  `json:"district"`
	Neighborhood string  `json:"neighborhood"`
	ContactName  string  `json:"contact_name"`
	ContactPhone string  `json:"contact_phone"`
	ContactEmail string  `json:"contact_email"`
}

func (h *Handler) createPickup(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req createPickupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := service.CreatePickupInput{
		Litres:       req.Litres,
		Address:      req.Address,
		District:     req.District,
		Neighborhood: req.Neighborhood,
		ContactName:  req.ContactName,
		ContactPhone: req.ContactPhone,
		ContactEmail: req.ContactEmail,
	}
	if req.ClientID != "" {
		clientID, err := uuid.Parse(strings.TrimSpace(req.ClientID))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client_id"})
			return
		}
		input.ClientID = &clientID
	}
	if req.RouteID != "" {
		routeID, err := uuid.Parse(strings.TrimSpace(req.RouteID))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid route_id"})
			return
		}
		input.RouteID = &routeID
	}
	if req.RequestedAt != "" {
		requestedAt, err := parseDate(req.RequestedAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid requested_at"})
			return
		}
		input.RequestedAt = requestedAt
	}
	if req.ScheduledAt != "" {
		scheduledAt, err := parseDate(req.ScheduledAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid scheduled_at"})
			return
		}
		input.ScheduledAt = &scheduledAt
	}
	if req.Date != "" {
		date, err := parseDate(req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
			return
		}
		input.Date = &date
	}

	pickup, err := h.pickups.Create(c.Request.Context(), principal, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pickup)
}

type updatePickupRequest struct {
	Date         *string  `json:"date"`
	ScheduledAt  *string  `json:"scheduled_at"`
	Address      *string  `json:"address"`
	District     *string  `json:"district"`
	Neighborhood *string  `json:"neighborhood"`
	ContactName  *string  `json:"contact_name"`
	ContactPhone *string  `json:"contact_phone"`
	ContactEmail *string  `json:"contact_email"`
	Litres       *float64 `json:"litres"`
}

func (h *Handler) updatePickup(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pickup id"})
		return
	}

	var req updatePickupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch := model.PickupPatch{
		Address:      req.Address,
		District:     req.District,
		Neighborhood: req.Neighborhood,
		ContactName:  req.ContactName,
		ContactPhone: req.ContactPhone,
		ContactEmail: req.ContactEmail,
		Litres:       req.Litres,
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
			return
		}
		patch.Date = &date
	}
	if req.ScheduledAt != nil {
		scheduledAt, err := parseDate(*req.ScheduledAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid scheduled_at"})
			return
		}
		patch.ScheduledAt = &scheduledAt
	}

	if err := h.pickups.Update(c.Request.Context(), principal, id, patch); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

type completePickupRequest struct {
	Litres float64 `json:"litres"`
}

func (h *Handler) completePickup(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pickup id"})
		return
	}

	var req completePickupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.pickups.Complete(c.Request.Context(), principal, id, req.Litres); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "completed"})
}

func (h *Handler) deletePickup(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pickup id"})
		return
	}

	if err := h.pickups.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handler) listClients(c *gin.Context) {
	clients, err := h.clients.List(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clients": clients})
}

func (h *Handler) clientHistory(c *gin.Context) {
	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
		return
	}

	history, err := h.history.ClientHistory(c.Request.Context(), clientID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

type historicalEntryRequest struct {
	Date   string  `json:"date" binding:"required"`
	Litres float64 `json:"litres"`
}

func (h *Handler) addHistoricalEntry(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
		return
	}

	var req historicalEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
		return
	}

	pickup, err := h.pickups.AddHistoricalEntry(c.Request.Context(), principal, clientID, date, req.Litres)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pickup)
}

type exportHistoryRequest struct {
	Format string `json:"format" binding:"required"`
}

func (h *Handler) exportHistory(c *gin.Context) {
	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
		return
	}

	var req exportHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	format := service.ExportFormat(strings.ToLower(strings.TrimSpace(req.Format)))
	result, err := h.history.ExportHistory(c.Request.Context(), clientID, format)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, result.ContentType, result.Content)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}
