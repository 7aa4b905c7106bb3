package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/srgjo27/cinema_client/internal/core/domain"
)

func (s *Store) token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

func (s *Store) AddFilm(ctx context.Context, film domain.Film) (*domain.Film, error) {
	if err := s.ensureService(domain.ResourceFilms); err != nil {
		return nil, err
	}

	created, err := s.films.CreateFilm(ctx, film)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.state.Films = append(s.state.Films, *created)
	s.mu.Unlock()

	return created, nil
}

func (s *Store) EditFilm(ctx context.Context, id domain.ID, film domain.Film) (*domain.Film, error) {
	if err := s.ensureService(domain.ResourceFilms); err != nil {
		return nil, err
	}

	updated, err := s.films.UpdateFilm(ctx, id, film)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	films := make([]domain.Film, len(s.state.Films))
	for i, f := range s.state.Films {
		if f.ID == id {
			f = *updated
		}
		films[i] = f
	}
	s.state.Films = films
	s.mu.Unlock()

	return updated, nil
}

// RemoveFilm deletes the film, then each of its sessions through the same
// path as RemoveSession. Deletes already committed remotely stay committed
// when a later step fails.
func (s *Store) RemoveFilm(ctx context.Context, id domain.ID) error {
	if err := s.ensureService(domain.ResourceFilms, domain.ResourceSessions, domain.ResourceAccounts); err != nil {
		return err
	}

	if err := s.films.DeleteFilm(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	dependents := s.dependentSessions(id)
	films := make([]domain.Film, 0, len(s.state.Films))
	for _, f := range s.state.Films {
		if f.ID != id {
			films = append(films, f)
		}
	}
	s.state.Films = films
	s.mu.Unlock()

	for _, sessionID := range dependents {
		if err := s.removeSession(ctx, sessionID); err != nil {
			s.log.WithFields(logrus.Fields{
				"film_id":    id,
				"session_id": sessionID,
			}).WithError(err).Error("film cascade interrupted")
			return fmt.Errorf("remove session %s of film %s: %w", sessionID, id, err)
		}
	}

	s.log.WithFields(logrus.Fields{"film_id": id, "sessions": len(dependents)}).Info("film removed")
	return nil
}

// dependentSessions lists the sessions of the film: local sessions pointing
// at it by filmId, then any id from the film's sessionIds not held locally.
// Callers hold s.mu.
func (s *Store) dependentSessions(filmID domain.ID) []domain.ID {
	var linked []domain.ID
	if film, ok := s.state.findFilm(filmID); ok {
		linked = film.SessionIDs
	}

	seen := make(map[domain.ID]bool)
	var ids []domain.ID
	for _, session := range s.state.Sessions {
		if session.FilmID == filmID || containsID(linked, session.ID) {
			ids = append(ids, session.ID)
			seen[session.ID] = true
		}
	}

	for _, id := range linked {
		if !seen[id] && !id.IsZero() {
			ids = append(ids, id)
			seen[id] = true
		}
	}
	return ids
}

func containsID(ids []domain.ID, id domain.ID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func (s *Store) AddSession(ctx context.Context, session domain.Session) (*domain.Session, error) {
	if err := s.ensureService(domain.ResourceSessions); err != nil {
		return nil, err
	}

	created, err := s.sessions.CreateSession(ctx, session)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.state.Sessions = append(s.state.Sessions, *created)
	s.mu.Unlock()

	return created, nil
}

func (s *Store) EditSession(ctx context.Context, id domain.ID, session domain.Session) (*domain.Session, error) {
	if err := s.ensureService(domain.ResourceSessions); err != nil {
		return nil, err
	}

	updated, err := s.sessions.UpdateSession(ctx, id, session)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.replaceSession(id, *updated)
	s.mu.Unlock()

	return updated, nil
}

func (s *Store) RemoveSession(ctx context.Context, id domain.ID) error {
	if err := s.ensureService(domain.ResourceSessions, domain.ResourceAccounts); err != nil {
		return err
	}
	return s.removeSession(ctx, id)
}

func (s *Store) removeSession(ctx context.Context, id domain.ID) error {
	if err := s.sessions.DeleteSession(ctx, id); err != nil {
		return err
	}

	if err := s.accounts.DeleteReservationsBySession(ctx, id, s.token()); err != nil {
		s.forgetSessionLock(id)
		s.mu.Lock()
		s.pruneSession(id)
		s.mu.Unlock()
		return err
	}

	s.forgetSessionLock(id)

	s.mu.Lock()
	s.pruneSession(id)
	reservations := make([]domain.Reservation, 0, len(s.state.Reservations))
	for _, r := range s.state.Reservations {
		if r.SessionID != id {
			reservations = append(reservations, r)
		}
	}
	s.state.Reservations = reservations
	s.mu.Unlock()

	return nil
}

// Callers hold s.mu for the two helpers below. Both build a new slice.
func (s *Store) pruneSession(id domain.ID) {
	sessions := make([]domain.Session, 0, len(s.state.Sessions))
	for _, session := range s.state.Sessions {
		if session.ID != id {
			sessions = append(sessions, session)
		}
	}
	s.state.Sessions = sessions
}

func (s *Store) replaceSession(id domain.ID, session domain.Session) {
	sessions := make([]domain.Session, len(s.state.Sessions))
	for i, existing := range s.state.Sessions {
		if existing.ID == id {
			existing = session
		}
		sessions[i] = existing
	}
	s.state.Sessions = sessions
}
