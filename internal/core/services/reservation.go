package services

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/srgjo27/cinema_client/internal/core/domain"
	"github.com/srgjo27/cinema_client/internal/platform/metrics"
)

// AddReservation books seats on a session for the signed-in user.
//
// Reservations for the same session are serialized within this store, so the
// local availability check and the remote increment cannot interleave with
// another local booking. Concurrent clients are still only kept apart by the
// sessions backend.
func (s *Store) AddReservation(ctx context.Context, req domain.ReservationRequest) (*domain.Reservation, error) {
	reservation, err := s.addReservation(ctx, req)
	if err != nil {
		metrics.RecordReservation("rejected")
		return nil, err
	}
	metrics.RecordReservation("created")
	return reservation, nil
}

func (s *Store) addReservation(ctx context.Context, req domain.ReservationRequest) (*domain.Reservation, error) {
	s.mu.RLock()
	var user *domain.User
	if s.state.CurrentUser != nil {
		u := *s.state.CurrentUser
		user = &u
	}
	token := s.state.Token
	s.mu.RUnlock()

	if user == nil {
		return nil, domain.ErrNotAuthenticated
	}
	if err := s.ensureService(domain.ResourceSessions, domain.ResourceAccounts); err != nil {
		return nil, err
	}
	if req.Seats <= 0 {
		return nil, domain.ErrInvalidSeats
	}

	unlock := s.lockSession(req.SessionID)
	defer unlock()

	s.mu.RLock()
	session, ok := s.state.findSession(req.SessionID)
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	available := session.SeatsTotal - session.SeatsTaken
	if req.Seats > available {
		if available < 0 {
			available = 0
		}
		return nil, &domain.InsufficientSeatsError{
			SessionID: req.SessionID,
			Requested: req.Seats,
			Remaining: available,
		}
	}

	updated, err := s.sessions.ReserveSeats(ctx, req.SessionID, req.Seats)
	if err != nil {
		return nil, err
	}
	if !updated.IsConsistent() {
		s.log.WithFields(logrus.Fields{
			"session_id":  updated.ID,
			"seats_total": updated.SeatsTotal,
			"seats_taken": updated.SeatsTaken,
		}).Warn("sessions backend reported an overbooked session")
	}

	created, err := s.accounts.AddReservation(ctx, domain.Reservation{
		SessionID:  req.SessionID,
		UserID:     user.ID,
		Seats:      req.Seats,
		TotalPrice: domain.TotalPrice(user.Pricing, req.Seats),
		CreatedAt:  s.now().UTC(),
	}, token)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.replaceSession(req.SessionID, *updated)
	s.state.Reservations = append(s.state.Reservations, *created)
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"session_id":  req.SessionID,
		"seats":       req.Seats,
		"total_price": created.TotalPrice,
	}).Info("reservation created")

	return created, nil
}

func (s *Store) lockSession(id domain.ID) func() {
	s.reserveMu.Lock()
	m, ok := s.reserving[id]
	if !ok {
		m = &sync.Mutex{}
		s.reserving[id] = m
	}
	s.reserveMu.Unlock()

	m.Lock()
	return m.Unlock
}

// forgetSessionLock drops the reservation lock of a deleted session.
func (s *Store) forgetSessionLock(id domain.ID) {
	s.reserveMu.Lock()
	delete(s.reserving, id)
	s.reserveMu.Unlock()
}
