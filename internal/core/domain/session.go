package domain

// Session is one showtime of a film.
type Session struct {
	ID         ID     `json:"id,omitempty"`
	FilmID     ID     `json:"filmId"`
	Date       string `json:"date,omitempty"`
	Time       string `json:"time,omitempty"`
	Room       string `json:"room,omitempty"`
	Version    string `json:"version,omitempty"`
	SeatsTotal int    `json:"seatsTotal"`
	SeatsTaken int    `json:"seatsTaken"`
}

// SeatsRemaining never goes below zero, even when a backend reports an
// overbooked session.
func (s *Session) SeatsRemaining() int {
	remaining := s.SeatsTotal - s.SeatsTaken
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (s *Session) IsConsistent() bool {
	return s.SeatsTaken >= 0 && s.SeatsTaken <= s.SeatsTotal
}
