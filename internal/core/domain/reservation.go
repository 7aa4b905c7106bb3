package domain

import "time"

type Reservation struct {
	ID         ID        `json:"id,omitempty"`
	SessionID  ID        `json:"sessionId"`
	UserID     ID        `json:"userId"`
	Seats      int       `json:"seats"`
	TotalPrice float64   `json:"totalPrice"`
	CreatedAt  time.Time `json:"createdAt"`
}

type ReservationRequest struct {
	SessionID ID  `json:"sessionId"`
	Seats     int `json:"seats"`
}
