package handler

import (
	"errors"
	"net/http"

	"event-rsvp-service/internal/model"
	"event-rsvp-service/internal/service"
	apperrors "event-rsvp-service/pkg/app_errors"
	"event-rsvp-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RSVPHandler struct {
	service service.RegistrationService
}

func NewRSVPHandler(service service.RegistrationService) *RSVPHandler {
	return &RSVPHandler{service: service}
}

func (h *RSVPHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.POST("rsvp/:token", h.Register)
		router.GET("rsvp/:token", h.GetStatus)
		router.PUT("rsvp/:token/:uuid", h.UpdateResponse)
		router.DELETE("rsvp/:token/:uuid", h.Withdraw)
		router.POST("rsvp/:token/:uuid/check-in", h.CheckIn)
		router.GET("registrations", h.ListAll)
	}
}

// UpdateRSVPRequest 變更回覆請求
type UpdateRSVPRequest struct {
	Status string `json:"status" binding:"required"`
}

// CheckInRequest 入場登記請求
type CheckInRequest struct {
	State string `json:"state" binding:"required"`
}

func (h *RSVPHandler) Register(c *gin.Context) {
	token, err := uuid.Parse(c.Param("token"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invitation token"})
		return
	}

	var req model.RSVPRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	result, err := h.service.Register(c, token, req)
	if err != nil {
		// 重複提交視為冪等：附上既有回覆讓客戶端對齊狀態
		if errors.Is(err, apperrors.ErrAlreadyResponded) && result != nil {
			c.JSON(http.StatusConflict, gin.H{
				"error":    "You have already responded to this invitation",
				"existing": result,
			})
			return
		}
		h.handleError(c, err, "Register")
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *RSVPHandler) GetStatus(c *gin.Context) {
	token, err := uuid.Parse(c.Param("token"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invitation token"})
		return
	}

	var eventID *uuid.UUID
	if raw := c.Query("event_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event uuid"})
			return
		}
		eventID = &parsed
	}

	status, err := h.service.GetStatus(c, token, eventID)
	if err != nil {
		h.handleError(c, err, "GetStatus")
		return
	}

	c.JSON(http.StatusOK, status)
}

func (h *RSVPHandler) UpdateResponse(c *gin.Context) {
	token, err := uuid.Parse(c.Param("token"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invitation token"})
		return
	}
	eventID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event uuid"})
		return
	}

	var req UpdateRSVPRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	result, err := h.service.UpdateResponse(c, token, eventID, model.RSVPStatus(req.Status))
	if err != nil {
		h.handleError(c, err, "UpdateResponse")
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *RSVPHandler) Withdraw(c *gin.Context) {
	token, err := uuid.Parse(c.Param("token"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invitation token"})
		return
	}
	eventID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event uuid"})
		return
	}

	result, err := h.service.Withdraw(c, token, eventID)
	if err != nil {
		h.handleError(c, err, "Withdraw")
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *RSVPHandler) CheckIn(c *gin.Context) {
	token, err := uuid.Parse(c.Param("token"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invitation token"})
		return
	}
	eventID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event uuid"})
		return
	}

	var req CheckInRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	registration, err := h.service.CheckIn(c, token, eventID, model.CheckInState(req.State))
	if err != nil {
		h.handleError(c, err, "CheckIn")
		return
	}

	c.JSON(http.StatusOK, registration)
}

func (h *RSVPHandler) ListAll(c *gin.Context) {
	registrations, err := h.service.ListAll(c)
	if err != nil {
		h.handleError(c, err, "ListAll")
		return
	}

	c.JSON(http.StatusOK, registrations)
}

// Helper functions

func (h *RSVPHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrGuestNotFound):
		log.Warn("Guest not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid invitation token"})
	case errors.Is(err, apperrors.ErrEventNotFound):
		log.Warn("Event not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
	case errors.Is(err, apperrors.ErrRegistrationNotFound):
		log.Warn("Registration not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Registration not found"})
	case errors.Is(err, apperrors.ErrEventClosed):
		log.Warn("Event closed")
		c.JSON(http.StatusForbidden, gin.H{"error": "Event closed for registration"})
	case errors.Is(err, apperrors.ErrAlreadyResponded):
		log.Warn("Already responded")
		c.JSON(http.StatusConflict, gin.H{"error": "You have already responded to this invitation"})
	case errors.Is(err, apperrors.ErrNotConfirmed):
		log.Warn("Registration not confirmed")
		c.JSON(http.StatusConflict, gin.H{"error": "Registration is not confirmed"})
	case errors.Is(err, apperrors.ErrInvalidStatus):
		log.Warn("Invalid status")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rsvp status"})
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
