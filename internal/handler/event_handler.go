package handler

import (
	"errors"
	"net/http"
	"time"

	"event-rsvp-service/internal/model"
	"event-rsvp-service/internal/service"
	apperrors "event-rsvp-service/pkg/app_errors"
	"event-rsvp-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EventHandler struct {
	service service.EventService
}

func NewEventHandler(service service.EventService) *EventHandler {
	return &EventHandler{service: service}
}

func (h *EventHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.GET("events", h.List)
		router.GET("events/:uuid", h.GetByEventID)
		router.GET("events/:uuid/stats", h.Stats)
		router.POST("events", h.Create)
		router.PUT("events/:uuid", h.UpdateByEventID)
	}
}

// CreateEventRequest 建立活動請求
type CreateEventRequest struct {
	Name                 string     `json:"name" binding:"required"`
	Description          *string    `json:"description"`
	Venue                *string    `json:"venue"`
	EventDate            *time.Time `json:"event_date"`
	MaxCapacity          int        `json:"max_capacity" binding:"required,min=1"`
	RegistrationDeadline *time.Time `json:"registration_deadline"`
	SeatPolicy           *string    `json:"seat_policy"`
}

// UpdateEventRequest 更新活動請求
type UpdateEventRequest struct {
	Name                 *string    `json:"name"`
	Description          *string    `json:"description"`
	Venue                *string    `json:"venue"`
	EventDate            *time.Time `json:"event_date"`
	RegistrationDeadline *time.Time `json:"registration_deadline"`
	SeatPolicy           *string    `json:"seat_policy"`
	IsActive             *bool      `json:"is_active"`
}

func (h *EventHandler) List(c *gin.Context) {
	events, err := h.service.List(c)
	if err != nil {
		h.handleError(c, err, "List")
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *EventHandler) GetByEventID(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event uuid"})
		return
	}
	event, err := h.service.GetByEventID(c, eventID)
	if err != nil {
		h.handleError(c, err, "GetByEventID")
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) Stats(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event uuid"})
		return
	}
	stats, err := h.service.Stats(c, eventID)
	if err != nil {
		h.handleError(c, err, "Stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *EventHandler) Create(c *gin.Context) {
	var req CreateEventRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	event := &model.Event{
		Name:                 req.Name,
		Description:          req.Description,
		Venue:                req.Venue,
		EventDate:            req.EventDate,
		MaxCapacity:          req.MaxCapacity,
		RegistrationDeadline: req.RegistrationDeadline,
	}
	if req.SeatPolicy != nil {
		event.SeatPolicy = model.SeatPolicy(*req.SeatPolicy)
	}
	created, err := h.service.Create(c, event)
	if err != nil {
		h.handleError(c, err, "Create")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *EventHandler) UpdateByEventID(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event uuid"})
		return
	}
	var req UpdateEventRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	params := model.UpdateEventParams{
		Name:                 req.Name,
		Description:          req.Description,
		Venue:                req.Venue,
		EventDate:            req.EventDate,
		RegistrationDeadline: req.RegistrationDeadline,
		IsActive:             req.IsActive,
	}
	if req.SeatPolicy != nil {
		policy := model.SeatPolicy(*req.SeatPolicy)
		params.SeatPolicy = &policy
	}
	updated, err := h.service.UpdateByEventID(c, eventID, params)
	if err != nil {
		h.handleError(c, err, "UpdateByEventID")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *EventHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrEventNotFound):
		log.Warn("Event not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
