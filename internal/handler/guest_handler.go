package handler

import (
	"errors"
	"net/http"

	"event-rsvp-service/internal/model"
	"event-rsvp-service/internal/service"
	apperrors "event-rsvp-service/pkg/app_errors"
	"event-rsvp-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type GuestHandler struct {
	service service.GuestService
}

func NewGuestHandler(service service.GuestService) *GuestHandler {
	return &GuestHandler{service: service}
}

func (h *GuestHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.GET("guests", h.List)
		router.POST("guests", h.Create)
		router.POST("guests/import", h.Import)
	}
}

func (h *GuestHandler) List(c *gin.Context) {
	guests, err := h.service.List(c)
	if err != nil {
		h.handleError(c, err, "List")
		return
	}
	c.JSON(http.StatusOK, guests)
}

func (h *GuestHandler) Create(c *gin.Context) {
	var req model.CreateGuestRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	created, err := h.service.Create(c, req)
	if err != nil {
		h.handleError(c, err, "Create")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *GuestHandler) Import(c *gin.Context) {
	var req model.ImportGuestsRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	result, err := h.service.Import(c, req)
	if err != nil {
		h.handleError(c, err, "Import")
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *GuestHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrDuplicateEmail):
		log.Warn("Duplicate email")
		c.JSON(http.StatusConflict, gin.H{"error": "A guest with this email already exists"})
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
