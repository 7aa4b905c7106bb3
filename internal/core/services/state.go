package services

import "github.com/srgjo27/cinema_client/internal/core/domain"

// State is a point-in-time copy of everything the store holds.
type State struct {
	Films        []domain.Film
	Sessions     []domain.Session
	Users        []domain.User
	Reservations []domain.Reservation
	CurrentUser  *domain.User
	Token        string
	Status       map[domain.Resource]domain.ResourceStatus
}

func newState() State {
	status := make(map[domain.Resource]domain.ResourceStatus, len(domain.Resources))
	for _, r := range domain.Resources {
		status[r] = domain.ResourceStatus{}
	}

	return State{
		Films:        []domain.Film{},
		Sessions:     []domain.Session{},
		Users:        []domain.User{},
		Reservations: []domain.Reservation{},
		Status:       status,
	}
}

func (st *State) clone() State {
	out := State{
		Films:        make([]domain.Film, len(st.Films)),
		Sessions:     append([]domain.Session{}, st.Sessions...),
		Users:        append([]domain.User{}, st.Users...),
		Reservations: append([]domain.Reservation{}, st.Reservations...),
		Token:        st.Token,
		Status:       make(map[domain.Resource]domain.ResourceStatus, len(st.Status)),
	}

	for i, f := range st.Films {
		f.SessionIDs = append([]domain.ID(nil), f.SessionIDs...)
		out.Films[i] = f
	}
	for r, s := range st.Status {
		out.Status[r] = s
	}
	if st.CurrentUser != nil {
		u := *st.CurrentUser
		out.CurrentUser = &u
	}

	return out
}

func (st *State) findSession(id domain.ID) (domain.Session, bool) {
	for _, s := range st.Sessions {
		if s.ID == id {
			return s, true
		}
	}
	return domain.Session{}, false
}

func (st *State) findFilm(id domain.ID) (domain.Film, bool) {
	for _, f := range st.Films {
		if f.ID == id {
			return f, true
		}
	}
	return domain.Film{}, false
}

// ReservationHistory lists the current user's reservations.
func (st *State) ReservationHistory() []domain.Reservation {
	history := []domain.Reservation{}
	if st.CurrentUser == nil {
		return history
	}
	for _, r := range st.Reservations {
		if r.UserID == st.CurrentUser.ID {
			history = append(history, r)
		}
	}
	return history
}

// SessionsByFilm groups sessions by film, keeping their order.
func (st *State) SessionsByFilm() map[domain.ID][]domain.Session {
	index := make(map[domain.ID][]domain.Session)
	for _, s := range st.Sessions {
		index[s.FilmID] = append(index[s.FilmID], s)
	}
	return index
}

// SeatsRemaining is 0 for unknown sessions.
func (st *State) SeatsRemaining(sessionID domain.ID) int {
	session, ok := st.findSession(sessionID)
	if !ok {
		return 0
	}
	return session.SeatsRemaining()
}
