package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"event-rsvp-service/internal/handler"
	"event-rsvp-service/internal/model"
	apperrors "event-rsvp-service/pkg/app_errors"
	"event-rsvp-service/test/internal/mocks/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupEventTestRouter(mockService *services.EventServiceMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler.NewEventHandler(mockService).RegisterRoutes(router)
	return router
}

func TestEventHandler_Create(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := services.NewEventServiceMock()
		router := setupEventTestRouter(mockService)

		mockService.On("Create", mock.Anything, mock.Anything).Return(&model.Event{
			ID:          1,
			EventID:     uuid.New(),
			Name:        "Launch Party",
			MaxCapacity: 100,
			SeatPolicy:  model.SeatPolicySequential,
			IsActive:    true,
		}, nil).Once()

		body := map[string]interface{}{"name": "Launch Party", "max_capacity": 100}
		req := createJSONHTTPRequest("POST", "/api/v1/events", body)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - missing capacity", func(t *testing.T) {
		mockService := services.NewEventServiceMock()
		router := setupEventTestRouter(mockService)

		body := map[string]interface{}{"name": "Launch Party"}
		req := createJSONHTTPRequest("POST", "/api/v1/events", body)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "Create")
	})
}

func TestEventHandler_Get(t *testing.T) {
	eventID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockService := services.NewEventServiceMock()
		router := setupEventTestRouter(mockService)

		mockService.On("GetByEventID", mock.Anything, eventID).Return(&model.Event{
			ID: 1, EventID: eventID, Name: "Some Event", MaxCapacity: 10,
		}, nil).Once()

		req := httptest.NewRequest("GET", "/api/v1/events/"+eventID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - ErrEventNotFound", func(t *testing.T) {
		mockService := services.NewEventServiceMock()
		router := setupEventTestRouter(mockService)

		mockService.On("GetByEventID", mock.Anything, eventID).Return(nil, apperrors.ErrEventNotFound).Once()

		req := httptest.NewRequest("GET", "/api/v1/events/"+eventID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - invalid uuid", func(t *testing.T) {
		mockService := services.NewEventServiceMock()
		router := setupEventTestRouter(mockService)

		req := httptest.NewRequest("GET", "/api/v1/events/not-a-uuid", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "GetByEventID")
	})
}

func TestEventHandler_Stats(t *testing.T) {
	eventID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockService := services.NewEventServiceMock()
		router := setupEventTestRouter(mockService)

		mockService.On("Stats", mock.Anything, eventID).Return(&model.EventStats{
			Event:       &model.Event{ID: 1, EventID: eventID, MaxCapacity: 10},
			RSVPCounts:  map[string]int{"confirmed": 5, "waitlisted": 2},
			EmailCounts: map[string]int{"sent": 7},
		}, nil).Once()

		req := httptest.NewRequest("GET", "/api/v1/events/"+eventID.String()+"/stats", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "rsvp_counts")
		mockService.AssertExpectations(t)
	})
}

func TestEventHandler_Update(t *testing.T) {
	eventID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockService := services.NewEventServiceMock()
		router := setupEventTestRouter(mockService)

		mockService.On("UpdateByEventID", mock.Anything, eventID, mock.Anything).Return(&model.Event{
			ID: 1, EventID: eventID, Name: "Renamed", MaxCapacity: 10,
		}, nil).Once()

		body := map[string]interface{}{"name": "Renamed"}
		req := createJSONHTTPRequest("PUT", "/api/v1/events/"+eventID.String(), body)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})
}
