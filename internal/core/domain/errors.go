package domain

import (
	"errors"
	"fmt"
)

var (
	ErrServiceDown      = errors.New("service unavailable")
	ErrNotAuthenticated = errors.New("sign in to reserve")
	ErrSessionNotFound  = errors.New("session not found")
	ErrInvalidSeats     = errors.New("invalid seat count")
	ErrEmptyPayload     = errors.New("empty response payload")
	ErrNoUser           = errors.New("authentication returned no user")
)

// ServiceDownError reports which resource blocked an action.
type ServiceDownError struct {
	Resource Resource
}

func (e *ServiceDownError) Error() string {
	return fmt.Sprintf("%s service is unavailable", e.Resource)
}

func (e *ServiceDownError) Unwrap() error {
	return ErrServiceDown
}

type InsufficientSeatsError struct {
	SessionID ID
	Requested int
	Remaining int
}

func (e *InsufficientSeatsError) Error() string {
	return fmt.Sprintf("only %d seat(s) left for this session", e.Remaining)
}
