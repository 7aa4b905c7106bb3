package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/srgjo27/cinema_client/internal/core/domain"
	"github.com/srgjo27/cinema_client/internal/core/ports"
	"github.com/srgjo27/cinema_client/internal/platform/logger"
	"github.com/srgjo27/cinema_client/internal/platform/metrics"
)

// Store holds the client-visible state and mediates every call to the films,
// sessions and accounts backends.
//
// The mutex is never held across a backend call. Anything read before a call
// may be stale afterwards, so results are applied by id against the state
// current at that moment.
type Store struct {
	films     ports.FilmsService
	sessions  ports.SessionsService
	accounts  ports.AccountsService
	snapshots ports.SnapshotStore
	log       *logrus.Entry
	now       func() time.Time

	mu    sync.RWMutex
	state State

	reserveMu sync.Mutex
	reserving map[domain.ID]*sync.Mutex

	background sync.WaitGroup
}

type StoreOption func(*Store)

func WithSnapshotStore(snapshots ports.SnapshotStore) StoreOption {
	return func(s *Store) {
		s.snapshots = snapshots
	}
}

func WithLogger(log *logrus.Logger) StoreOption {
	return func(s *Store) {
		s.log = logger.Component(log, "store")
	}
}

func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

func NewStore(films ports.FilmsService, sessions ports.SessionsService, accounts ports.AccountsService, opts ...StoreOption) *Store {
	s := &Store{
		films:     films,
		sessions:  sessions,
		accounts:  accounts,
		log:       logger.Component(nil, "store"),
		now:       time.Now,
		state:     newState(),
		reserving: make(map[domain.ID]*sync.Mutex),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

func (s *Store) Status(resource domain.Resource) domain.ResourceStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Status[resource]
}

func (s *Store) CurrentUser() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.CurrentUser == nil {
		return nil
	}
	u := *s.state.CurrentUser
	return &u
}

func (s *Store) ReservationHistory() []domain.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.ReservationHistory()
}

func (s *Store) SessionsByFilm() map[domain.ID][]domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.SessionsByFilm()
}

func (s *Store) SeatsRemaining(sessionID domain.ID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.SeatsRemaining(sessionID)
}

// CatalogIdle reports an empty catalog with no films fetch in flight.
func (s *Store) CatalogIdle() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.state.Films) == 0 && !s.state.Status[domain.ResourceFilms].Loading
}

// Wait blocks until every background task started by the store has returned.
func (s *Store) Wait() {
	s.background.Wait()
}

func (s *Store) goBackground(name string, task func(ctx context.Context)) {
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		s.log.WithField("task", name).Debug("background task started")
		task(context.Background())
	}()
}

func (s *Store) updateStatus(resource domain.Resource, fn func(*domain.ResourceStatus)) {
	status := s.state.Status[resource]
	fn(&status)
	s.state.Status[resource] = status
}

// ensureService fails with the first resource marked down.
func (s *Store) ensureService(resources ...domain.Resource) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range resources {
		if s.state.Status[r].Down {
			return &domain.ServiceDownError{Resource: r}
		}
	}
	return nil
}

// SetServiceStatus toggles the manual outage flag. Bringing a resource back
// up re-fetches it in the background.
func (s *Store) SetServiceStatus(resource domain.Resource, down bool) {
	s.mu.Lock()
	wasDown := s.state.Status[resource].Down
	s.updateStatus(resource, func(st *domain.ResourceStatus) { st.Down = down })
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{"resource": resource, "down": down}).Info("service status changed")

	if wasDown && !down {
		s.goBackground("refetch:"+string(resource), func(ctx context.Context) {
			s.Fetch(ctx, resource)
		})
	}
}

// Bootstrap fetches the three resources concurrently. A failing resource
// only affects its own status.
func (s *Store) Bootstrap(ctx context.Context) {
	var wg sync.WaitGroup
	for _, r := range domain.Resources {
		wg.Add(1)
		go func(r domain.Resource) {
			defer wg.Done()
			s.Fetch(ctx, r)
		}(r)
	}
	wg.Wait()
}

func (s *Store) BootstrapAsync() {
	s.goBackground("bootstrap", s.Bootstrap)
}

func (s *Store) Fetch(ctx context.Context, resource domain.Resource) {
	switch resource {
	case domain.ResourceFilms:
		s.FetchFilms(ctx)
	case domain.ResourceSessions:
		s.FetchSessions(ctx)
	case domain.ResourceAccounts:
		s.FetchAccounts(ctx)
	}
}

func (s *Store) FetchFilms(ctx context.Context) {
	s.fetch(ctx, domain.ResourceFilms, func(ctx context.Context) error {
		films, err := s.films.ListFilms(ctx)
		if err != nil {
			return err
		}

		snapshot := s.encodeSnapshot(domain.ResourceFilms, films)

		s.mu.Lock()
		s.state.Films = films
		s.mu.Unlock()

		s.saveSnapshot(ctx, domain.ResourceFilms, snapshot)
		return nil
	})
}

func (s *Store) FetchSessions(ctx context.Context) {
	s.fetch(ctx, domain.ResourceSessions, func(ctx context.Context) error {
		sessions, err := s.sessions.ListSessions(ctx)
		if err != nil {
			return err
		}

		snapshot := s.encodeSnapshot(domain.ResourceSessions, sessions)

		s.mu.Lock()
		s.state.Sessions = sessions
		s.mu.Unlock()

		s.saveSnapshot(ctx, domain.ResourceSessions, snapshot)
		return nil
	})
}

// FetchAccounts drops its results when the signed-in session changed while
// the requests were in flight.
func (s *Store) FetchAccounts(ctx context.Context) {
	s.fetch(ctx, domain.ResourceAccounts, func(ctx context.Context) error {
		s.mu.RLock()
		token := s.state.Token
		s.mu.RUnlock()

		users, err := s.accounts.ListUsers(ctx, token)
		if err != nil {
			return err
		}

		s.mu.Lock()
		if s.state.Token == token {
			s.state.Users = users
		}
		s.mu.Unlock()

		reservations, err := s.accounts.ListReservations(ctx, token)
		if err != nil {
			return err
		}

		s.mu.Lock()
		if s.state.Token == token {
			s.state.Reservations = reservations
		}
		s.mu.Unlock()

		return nil
	})
}

// fetch runs one idle -> loading -> idle cycle. Errors, panics included, end
// up in the resource's error field and never reach the caller.
func (s *Store) fetch(ctx context.Context, resource domain.Resource, load func(ctx context.Context) error) {
	s.mu.Lock()
	if s.state.Status[resource].Down {
		s.mu.Unlock()
		return
	}
	s.updateStatus(resource, func(st *domain.ResourceStatus) {
		st.Loading = true
		st.Error = ""
	})
	s.mu.Unlock()

	var err error
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}

		s.mu.Lock()
		s.updateStatus(resource, func(st *domain.ResourceStatus) {
			st.Loading = false
			if err != nil {
				st.Error = err.Error()
			}
		})
		s.mu.Unlock()

		if err != nil {
			metrics.RecordFetchFailure(string(resource))
			s.log.WithField("resource", resource).WithError(err).Warn("fetch failed")
		}
	}()

	err = load(ctx)
}

// encodeSnapshot marshals v before it is published to the state, so later
// edits to the state never race with the encoding.
func (s *Store) encodeSnapshot(resource domain.Resource, v interface{}) []byte {
	if s.snapshots == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		s.log.WithField("resource", resource).WithError(err).Warn("failed to encode snapshot")
		return nil
	}
	return data
}

func (s *Store) saveSnapshot(ctx context.Context, resource domain.Resource, data []byte) {
	if s.snapshots == nil || data == nil {
		return
	}

	if err := s.snapshots.SaveSnapshot(ctx, resource, data); err != nil {
		s.log.WithField("resource", resource).WithError(err).Warn("failed to save snapshot")
	}
}

// RestoreSnapshot seeds an empty catalog from the snapshot store so it can be
// shown before the backends answer. Missing snapshots are not an error.
func (s *Store) RestoreSnapshot(ctx context.Context) error {
	if s.snapshots == nil {
		return nil
	}

	var errs []error

	var films []domain.Film
	if ok, err := s.loadSnapshot(ctx, domain.ResourceFilms, &films); err != nil {
		errs = append(errs, err)
	} else if ok {
		s.mu.Lock()
		if len(s.state.Films) == 0 {
			s.state.Films = films
		}
		s.mu.Unlock()
	}

	var sessions []domain.Session
	if ok, err := s.loadSnapshot(ctx, domain.ResourceSessions, &sessions); err != nil {
		errs = append(errs, err)
	} else if ok {
		s.mu.Lock()
		if len(s.state.Sessions) == 0 {
			s.state.Sessions = sessions
		}
		s.mu.Unlock()
	}

	return errors.Join(errs...)
}

func (s *Store) loadSnapshot(ctx context.Context, resource domain.Resource, v interface{}) (bool, error) {
	data, err := s.snapshots.LoadSnapshot(ctx, resource)
	if errors.Is(err, ports.ErrSnapshotMiss) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load %s snapshot: %w", resource, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s snapshot: %w", resource, err)
	}
	return true, nil
}

// RunBackgroundRefresh re-runs Bootstrap every interval until ctx ends.
func (s *Store) RunBackgroundRefresh(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.log.WithField("interval", interval).Info("background refresh started")

	for {
		select {
		case <-ctx.Done():
			s.log.Info("background refresh stopped")
			return
		case <-ticker.C:
			s.Bootstrap(ctx)
		}
	}
}
