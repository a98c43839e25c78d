package apperrors

import "errors"

var (
	ErrGuestNotFound        = errors.New("guest not found")
	ErrEventNotFound        = errors.New("event not found")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrEventClosed          = errors.New("event closed for registration")
	ErrAlreadyResponded     = errors.New("guest already responded to this event")
	ErrDuplicateEmail       = errors.New("guest with this email already exists")
	ErrInvalidStatus        = errors.New("invalid rsvp status")
	ErrInvalidInput         = errors.New("invalid input")
	ErrNotConfirmed         = errors.New("registration is not confirmed")
	ErrSeatExhausted        = errors.New("no free seat despite successful reservation")
	ErrInternalServerError  = errors.New("internal server error")
)
