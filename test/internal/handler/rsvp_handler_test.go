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

func setupRSVPTestRouter(mockService *services.RegistrationServiceMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler.NewRSVPHandler(mockService).RegisterRoutes(router)
	return router
}

func intPtr(v int) *int { return &v }

func TestRSVPHandler_Register(t *testing.T) {
	token := uuid.New()
	eventID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockService := services.NewRegistrationServiceMock()
		router := setupRSVPTestRouter(mockService)

		mockService.On("Register", mock.Anything, token, mock.Anything).Return(&model.RSVPResult{
			Status:     model.RSVPStatusConfirmed,
			SeatNumber: intPtr(1),
			Message:    "Your RSVP has been confirmed. Your seat number is 1",
		}, nil).Once()

		body := model.RSVPRequest{EventID: eventID.String(), Status: "confirmed"}
		req := createJSONHTTPRequest("POST", "/api/v1/rsvp/"+token.String(), body)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), "confirmed")
		mockService.AssertExpectations(t)
	})

	t.Run("Demoted to waitlist still returns 201", func(t *testing.T) {
		mockService := services.NewRegistrationServiceMock()
		router := setupRSVPTestRouter(mockService)

		mockService.On("Register", mock.Anything, token, mock.Anything).Return(&model.RSVPResult{
			Status:  model.RSVPStatusWaitlisted,
			Message: "Event is full. You have been added to the waitlist",
		}, nil).Once()

		body := model.RSVPRequest{EventID: eventID.String(), Status: "confirmed"}
		req := createJSONHTTPRequest("POST", "/api/v1/rsvp/"+token.String(), body)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), "waitlist")
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - conflict carries existing response", func(t *testing.T) {
		mockService := services.NewRegistrationServiceMock()
		router := setupRSVPTestRouter(mockService)

		mockService.On("Register", mock.Anything, token, mock.Anything).Return(&model.RSVPResult{
			Status:     model.RSVPStatusConfirmed,
			SeatNumber: intPtr(2),
		}, apperrors.ErrAlreadyResponded).Once()

		body := model.RSVPRequest{EventID: eventID.String(), Status: "declined"}
		req := createJSONHTTPRequest("POST", "/api/v1/rsvp/"+token.String(), body)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "existing")
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - ErrEventClosed", func(t *testing.T) {
		mockService := services.NewRegistrationServiceMock()
		router := setupRSVPTestRouter(mockService)

		mockService.On("Register", mock.Anything, token, mock.Anything).Return(nil, apperrors.ErrEventClosed).Once()

		body := model.RSVPRequest{EventID: eventID.String(), Status: "confirmed"}
		req := createJSONHTTPRequest("POST", "/api/v1/rsvp/"+token.String(), body)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - ErrGuestNotFound", func(t *testing.T) {
		mockService := services.NewRegistrationServiceMock()
		router := setupRSVPTestRouter(mockService)

		mockService.On("Register", mock.Anything, token, mock.Anything).Return(nil, apperrors.ErrGuestNotFound).Once()

		body := model.RSVPRequest{EventID: eventID.String(), Status: "confirmed"}
		req := createJSONHTTPRequest("POST", "/api/v1/rsvp/"+token.String(), body)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - invalid token", func(t *testing.T) {
		mockService := services.NewRegistrationServiceMock()
		router := setupRSVPTestRouter(mockService)

		body := model.RSVPRequest{EventID: eventID.String(), Status: "confirmed"}
		req := createJSONHTTPRequest("POST", "/api/v1/rsvp/not-a-uuid", body)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "Register")
	})

	t.Run("Failed - BindingError", func(t *testing.T) {
		mockService := services.NewRegistrationServiceMock()
		router := setupRSVPTestRouter(mockService)

		req := createJSONHTTPRequest("POST", "/api/v1/rsvp/"+token.String(), InvalidJSON)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "Register")
	})
}

func TestRSVPHandler_GetStatus(t *testing.T) {
	token := uuid.New()
	eventID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockService := services.NewRegistrationServiceMock()
		router := setupRSVPTestRouter(mockService)

		mockService.On("GetStatus", mock.Anything, token, mock.Anything).Return(&model.RegistrationStatus{
			Event:    &model.Event{ID: 1, EventID: eventID, Name: "Some Event", MaxCapacity: 10},
			Capacity: model.CapacitySnapshot{MaxCapacity: 10, SpotsRemaining: 10, IsOpen: true},
		}, nil).Once()

		req := httptest.NewRequest("GET", "/api/v1/rsvp/"+token.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "spots_remaining")
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - invalid event_id query", func(t *testing.T) {
		mockService := services.NewRegistrationServiceMock()
		router := setupRSVPTestRouter(mockService)

		req := httptest.NewRequest("GET", "/api/v1/rsvp/"+token.String()+"?event_id=bogus", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "GetStatus")
	})
}

func TestRSVPHandler_UpdateResponse(t *testing.T) {
	token := uuid.New()
	eventID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockService := services.NewRegistrationServiceMock()
		router := setupRSVPTestRouter(mockService)

		mockService.On("UpdateResponse", mock.Anything, token, eventID, model.RSVPStatusDeclined).
			Return(&model.RSVPResult{Status: model.RSVPStatusDeclined, Message: "Your response has been recorded"}, nil).Once()

		body := map[string]string{"status": "declined"}
		req := createJSONHTTPRequest("PUT", "/api/v1/rsvp/"+token.String()+"/"+eventID.String(), body)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - ErrRegistrationNotFound", func(t *testing.T) {
		mockService := services.NewRegistrationServiceMock()
		router := setupRSVPTestRouter(mockService)

		mockService.On("UpdateResponse", mock.Anything, token, eventID, model.RSVPStatusConfirmed).
			Return(nil, apperrors.ErrRegistrationNotFound).Once()

		body := map[string]string{"status": "confirmed"}
		req := createJSONHTTPRequest("PUT", "/api/v1/rsvp/"+token.String()+"/"+eventID.String(), body)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - ErrInvalidStatus", func(t *testing.T) {
		mockService := services.NewRegistrationServiceMock()
		router := setupRSVPTestRouter(mockService)

		mockService.On("UpdateResponse", mock.Anything, token, eventID, model.RSVPStatus("maybe")).
			Return(nil, apperrors.ErrInvalidStatus).Once()

		body := map[string]string{"status": "maybe"}
		req := createJSONHTTPRequest("PUT", "/api/v1/rsvp/"+token.String()+"/"+eventID.String(), body)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertExpectations(t)
	})
}

func TestRSVPHandler_Withdraw(t *testing.T) {
	token := uuid.New()
	eventID := uuid.New()

	t.Run("Success - with promotion", func(t *testing.T) {
		mockService := services.NewRegistrationServiceMock()
		router := setupRSVPTestRouter(mockService)

		mockService.On("Withdraw", mock.Anything, token, eventID).Return(&model.WithdrawResult{
			ReleasedStatus: model.RSVPStatusConfirmed,
			Promoted:       &model.PromotedGuest{GuestID: 2, RegistrationID: 5, SeatNumber: 1},
		}, nil).Once()

		req := httptest.NewRequest("DELETE", "/api/v1/rsvp/"+token.String()+"/"+eventID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "promoted")
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - ErrRegistrationNotFound", func(t *testing.T) {
		mockService := services.NewRegistrationServiceMock()
		router := setupRSVPTestRouter(mockService)

		mockService.On("Withdraw", mock.Anything, token, eventID).
			Return(nil, apperrors.ErrRegistrationNotFound).Once()

		req := httptest.NewRequest("DELETE", "/api/v1/rsvp/"+token.String()+"/"+eventID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		mockService.AssertExpectations(t)
	})
}

func TestRSVPHandler_CheckIn(t *testing.T) {
	token := uuid.New()
	eventID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockService := services.NewRegistrationServiceMock()
		router := setupRSVPTestRouter(mockService)

		mockService.On("CheckIn", mock.Anything, token, eventID, model.CheckInCheckedIn).
			Return(&model.Registration{ID: 1, Status: model.RSVPStatusConfirmed, CheckInStatus: model.CheckInCheckedIn}, nil).Once()

		body := map[string]string{"state": "checked_in"}
		req := createJSONHTTPRequest("POST", "/api/v1/rsvp/"+token.String()+"/"+eventID.String()+"/check-in", body)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - ErrNotConfirmed", func(t *testing.T) {
		mockService := services.NewRegistrationServiceMock()
		router := setupRSVPTestRouter(mockService)

		mockService.On("CheckIn", mock.Anything, token, eventID, model.CheckInCheckedIn).
			Return(nil, apperrors.ErrNotConfirmed).Once()

		body := map[string]string{"state": "checked_in"}
		req := createJSONHTTPRequest("POST", "/api/v1/rsvp/"+token.String()+"/"+eventID.String()+"/check-in", body)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		mockService.AssertExpectations(t)
	})
}

func TestRSVPHandler_ListAll(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := services.NewRegistrationServiceMock()
		router := setupRSVPTestRouter(mockService)

		mockService.On("ListAll", mock.Anything).Return([]*model.RegistrationDetail{
			{Registration: model.Registration{ID: 1, Status: model.RSVPStatusConfirmed}, GuestEmail: "alice@test.com"},
			{Registration: model.Registration{ID: 2, Status: model.RSVPStatusWaitlisted}, GuestEmail: "bob@test.com"},
		}, nil).Once()

		req := httptest.NewRequest("GET", "/api/v1/registrations", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "alice@test.com")
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - internal error", func(t *testing.T) {
		mockService := services.NewRegistrationServiceMock()
		router := setupRSVPTestRouter(mockService)

		mockService.On("ListAll", mock.Anything).Return(nil, apperrors.ErrInternalServerError).Once()

		req := httptest.NewRequest("GET", "/api/v1/registrations", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		mockService.AssertExpectations(t)
	})
}
