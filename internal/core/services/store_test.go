package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/cinema_client/internal/core/domain"
	"github.com/srgjo27/cinema_client/internal/core/ports"
	"github.com/srgjo27/cinema_client/internal/core/ports/mocks"
	"github.com/srgjo27/cinema_client/internal/core/services"
	"github.com/srgjo27/cinema_client/internal/platform/httpclient"
)

var fixedNow = time.Date(2026, 10, 18, 20, 30, 0, 0, time.UTC)

type fixture struct {
	store    *services.Store
	films    *mocks.FilmsService
	sessions *mocks.SessionsService
	accounts *mocks.AccountsService
}

func newFixture(t *testing.T, opts ...services.StoreOption) *fixture {
	fx := &fixture{
		films:    mocks.NewFilmsService(t),
		sessions: mocks.NewSessionsService(t),
		accounts: mocks.NewAccountsService(t),
	}
	opts = append([]services.StoreOption{services.WithClock(func() time.Time { return fixedNow })}, opts...)
	fx.store = services.NewStore(fx.films, fx.sessions, fx.accounts, opts...)
	return fx
}

func (fx *fixture) seedCatalog(t *testing.T, films []domain.Film, sessions []domain.Session) {
	t.Helper()
	ctx := context.Background()

	fx.films.On("ListFilms", mock.Anything).Return(films, nil).Once()
	fx.sessions.On("ListSessions", mock.Anything).Return(sessions, nil).Once()

	fx.store.FetchFilms(ctx)
	fx.store.FetchSessions(ctx)
}

func (fx *fixture) signIn(t *testing.T, user domain.User, token string, reservations []domain.Reservation) {
	t.Helper()

	creds := domain.Credentials{Login: user.Login, Password: "pw"}
	fx.accounts.On("Authenticate", mock.Anything, creds).Return(&domain.AuthResult{User: &user, Token: token}, nil).Once()
	fx.accounts.On("ListUsers", mock.Anything, token).Return([]domain.User{user}, nil).Once()
	fx.accounts.On("ListReservations", mock.Anything, token).Return(reservations, nil).Once()

	_, err := fx.store.Login(context.Background(), creds)
	require.NoError(t, err)
}

var (
	filmF1    = domain.Film{ID: "F1", Title: "Le Samouraï", SessionIDs: []domain.ID{"S1"}}
	sessionS1 = domain.Session{ID: "S1", FilmID: "F1", SeatsTotal: 50, SeatsTaken: 0}
	student   = domain.User{ID: "U", Login: "ana", Role: domain.RoleUser, Pricing: domain.PricingStudent}
)

func TestBootstrap_SessionsFailureIsIsolated(t *testing.T) {
	fx := newFixture(t)

	fx.films.On("ListFilms", mock.Anything).Return([]domain.Film{filmF1}, nil)
	fx.sessions.On("ListSessions", mock.Anything).Return(nil, &httpclient.HTTPError{Status: 503, Message: "sessions backend down"})
	fx.accounts.On("ListUsers", mock.Anything, "").Return([]domain.User{student}, nil)
	fx.accounts.On("ListReservations", mock.Anything, "").Return([]domain.Reservation{{ID: "R0", SessionID: "S9"}}, nil)

	fx.store.Bootstrap(context.Background())

	state := fx.store.Snapshot()
	assert.Len(t, state.Films, 1)
	assert.Empty(t, state.Sessions)
	assert.Len(t, state.Users, 1)
	assert.Len(t, state.Reservations, 1)

	assert.Equal(t, "sessions backend down", state.Status[domain.ResourceSessions].Error)
	assert.False(t, state.Status[domain.ResourceSessions].Loading)
	assert.Empty(t, state.Status[domain.ResourceFilms].Error)
	assert.False(t, state.Status[domain.ResourceFilms].Loading)
	assert.False(t, state.Status[domain.ResourceAccounts].Loading)
}

func TestFetch_ClearsPreviousError(t *testing.T) {
	fx := newFixture(t)

	fx.films.On("ListFilms", mock.Anything).Return(nil, errors.New("boom")).Once()
	fx.store.FetchFilms(context.Background())
	assert.Equal(t, "boom", fx.store.Status(domain.ResourceFilms).Error)

	fx.films.On("ListFilms", mock.Anything).Return([]domain.Film{filmF1}, nil).Once()
	fx.store.FetchFilms(context.Background())

	status := fx.store.Status(domain.ResourceFilms)
	assert.Empty(t, status.Error)
	assert.False(t, status.Loading)
}

func TestFetch_PanicIsRecorded(t *testing.T) {
	fx := newFixture(t)

	fx.films.On("ListFilms", mock.Anything).Run(func(mock.Arguments) { panic("decoder exploded") }).Return(nil, nil)

	assert.NotPanics(t, func() { fx.store.FetchFilms(context.Background()) })

	status := fx.store.Status(domain.ResourceFilms)
	assert.Equal(t, "decoder exploded", status.Error)
	assert.False(t, status.Loading)
}

func TestFetch_SkippedWhenServiceDown(t *testing.T) {
	fx := newFixture(t)

	fx.store.SetServiceStatus(domain.ResourceFilms, true)
	fx.store.FetchFilms(context.Background())

	fx.films.AssertNotCalled(t, "ListFilms", mock.Anything)
	assert.True(t, fx.store.Status(domain.ResourceFilms).Down)
}

func TestSetServiceStatus_DownThenAddFilmFailsWithoutCall(t *testing.T) {
	fx := newFixture(t)

	fx.store.SetServiceStatus(domain.ResourceFilms, true)

	_, err := fx.store.AddFilm(context.Background(), domain.Film{Title: "Heat"})

	var downErr *domain.ServiceDownError
	require.True(t, errors.As(err, &downErr))
	assert.Equal(t, domain.ResourceFilms, downErr.Resource)
	assert.ErrorIs(t, err, domain.ErrServiceDown)
	assert.Equal(t, "films service is unavailable", err.Error())
	fx.films.AssertNotCalled(t, "CreateFilm", mock.Anything, mock.Anything)
}

func TestSetServiceStatus_UpRefetchesInBackground(t *testing.T) {
	fx := newFixture(t)

	fx.store.SetServiceStatus(domain.ResourceSessions, true)
	fx.sessions.On("ListSessions", mock.Anything).Return(nil, errors.New("still broken")).Once()

	fx.store.SetServiceStatus(domain.ResourceSessions, false)
	fx.store.Wait()

	status := fx.store.Status(domain.ResourceSessions)
	assert.False(t, status.Down)
	assert.Equal(t, "still broken", status.Error)
}

func TestSetServiceStatus_UpWhenAlreadyUpDoesNotRefetch(t *testing.T) {
	fx := newFixture(t)

	fx.store.SetServiceStatus(domain.ResourceFilms, false)
	fx.store.Wait()

	fx.films.AssertNotCalled(t, "ListFilms", mock.Anything)
}

func TestRemoveFilm_RequiresAllServices(t *testing.T) {
	fx := newFixture(t)
	fx.seedCatalog(t, []domain.Film{filmF1}, []domain.Session{sessionS1})

	fx.store.SetServiceStatus(domain.ResourceAccounts, true)

	err := fx.store.RemoveFilm(context.Background(), "F1")

	assert.ErrorIs(t, err, domain.ErrServiceDown)
	fx.films.AssertNotCalled(t, "DeleteFilm", mock.Anything, mock.Anything)
	assert.Len(t, fx.store.Snapshot().Films, 1)
}

func TestReservationScenario(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	fx.seedCatalog(t, []domain.Film{filmF1}, []domain.Session{sessionS1})
	fx.signIn(t, student, "jwt", nil)

	booked := sessionS1
	booked.SeatsTaken = 10
	fx.sessions.On("ReserveSeats", mock.Anything, domain.ID("S1"), 10).Return(&booked, nil).Once()
	fx.accounts.On("AddReservation", mock.Anything, domain.Reservation{
		SessionID:  "S1",
		UserID:     "U",
		Seats:      10,
		TotalPrice: 90,
		CreatedAt:  fixedNow,
	}, "jwt").Return(&domain.Reservation{ID: "R1", SessionID: "S1", UserID: "U", Seats: 10, TotalPrice: 90, CreatedAt: fixedNow}, nil).Once()

	reservation, err := fx.store.AddReservation(ctx, domain.ReservationRequest{SessionID: "S1", Seats: 10})
	require.NoError(t, err)
	assert.Equal(t, 90.0, reservation.TotalPrice)
	assert.Equal(t, 40, fx.store.SeatsRemaining("S1"))
	assert.Len(t, fx.store.ReservationHistory(), 1)

	_, err = fx.store.AddReservation(ctx, domain.ReservationRequest{SessionID: "S1", Seats: 45})
	var seatsErr *domain.InsufficientSeatsError
	require.True(t, errors.As(err, &seatsErr))
	assert.Equal(t, 40, seatsErr.Remaining)
	assert.Contains(t, err.Error(), "40")
	assert.Equal(t, 10, fx.store.Snapshot().Sessions[0].SeatsTaken)

	fx.films.On("DeleteFilm", mock.Anything, domain.ID("F1")).Return(nil).Once()
	fx.sessions.On("DeleteSession", mock.Anything, domain.ID("S1")).Return(nil).Once()
	fx.accounts.On("DeleteReservationsBySession", mock.Anything, domain.ID("S1"), "jwt").Return(nil).Once()

	require.NoError(t, fx.store.RemoveFilm(ctx, "F1"))

	state := fx.store.Snapshot()
	assert.Empty(t, state.Films)
	assert.Empty(t, state.Sessions)
	assert.Empty(t, state.Reservations)
	assert.Empty(t, fx.store.ReservationHistory())
	assert.Equal(t, 0, fx.store.SeatsRemaining("S1"))
}

func TestRemoveFilm_CascadesInOrder(t *testing.T) {
	fx := newFixture(t)
	film := domain.Film{ID: "F2", SessionIDs: []domain.ID{"S3"}}
	fx.seedCatalog(t, []domain.Film{filmF1, film}, []domain.Session{
		sessionS1,
		{ID: "S2", FilmID: "F2", SeatsTotal: 10},
		{ID: "S3", FilmID: "legacy", SeatsTotal: 10},
	})

	var order []string
	record := func(name string) func(mock.Arguments) {
		return func(args mock.Arguments) { order = append(order, name+":"+string(args.Get(1).(domain.ID))) }
	}

	fx.films.On("DeleteFilm", mock.Anything, domain.ID("F2")).Run(record("film")).Return(nil).Once()
	fx.sessions.On("DeleteSession", mock.Anything, mock.AnythingOfType("domain.ID")).Run(record("session")).Return(nil).Twice()
	fx.accounts.On("DeleteReservationsBySession", mock.Anything, mock.AnythingOfType("domain.ID"), "").Run(record("tickets")).Return(nil).Twice()

	require.NoError(t, fx.store.RemoveFilm(context.Background(), "F2"))

	assert.Equal(t, []string{"film:F2", "session:S2", "tickets:S2", "session:S3", "tickets:S3"}, order)

	state := fx.store.Snapshot()
	require.Len(t, state.Sessions, 1)
	assert.Equal(t, domain.ID("S1"), state.Sessions[0].ID)
	require.Len(t, state.Films, 1)
	assert.Equal(t, domain.ID("F1"), state.Films[0].ID)
}

func TestRemoveFilm_PartialCascadeKeepsCommittedDeletes(t *testing.T) {
	fx := newFixture(t)
	fx.seedCatalog(t, []domain.Film{filmF1}, []domain.Session{sessionS1, {ID: "S2", FilmID: "F1", SeatsTotal: 5}})

	fx.films.On("DeleteFilm", mock.Anything, domain.ID("F1")).Return(nil).Once()
	fx.sessions.On("DeleteSession", mock.Anything, domain.ID("S1")).Return(nil).Once()
	fx.accounts.On("DeleteReservationsBySession", mock.Anything, domain.ID("S1"), "").Return(nil).Once()
	fx.sessions.On("DeleteSession", mock.Anything, domain.ID("S2")).Return(errors.New("timeout")).Once()

	err := fx.store.RemoveFilm(context.Background(), "F1")
	assert.ErrorContains(t, err, "remove session S2 of film F1")

	state := fx.store.Snapshot()
	assert.Empty(t, state.Films)
	require.Len(t, state.Sessions, 1)
	assert.Equal(t, domain.ID("S2"), state.Sessions[0].ID)
}

func TestRemoveSession(t *testing.T) {
	fx := newFixture(t)
	fx.seedCatalog(t, []domain.Film{filmF1}, []domain.Session{sessionS1, {ID: "S2", FilmID: "F1"}})
	fx.signIn(t, student, "jwt", []domain.Reservation{
		{ID: "R1", SessionID: "S1", UserID: "U"},
		{ID: "R2", SessionID: "S2", UserID: "U"},
	})

	fx.sessions.On("DeleteSession", mock.Anything, domain.ID("S1")).Return(nil).Once()
	fx.accounts.On("DeleteReservationsBySession", mock.Anything, domain.ID("S1"), "jwt").Return(nil).Once()

	require.NoError(t, fx.store.RemoveSession(context.Background(), "S1"))

	state := fx.store.Snapshot()
	require.Len(t, state.Sessions, 1)
	assert.Equal(t, domain.ID("S2"), state.Sessions[0].ID)
	require.Len(t, state.Reservations, 1)
	assert.Equal(t, domain.ID("R2"), state.Reservations[0].ID)
}

func TestAddReservation_Preconditions(t *testing.T) {
	ctx := context.Background()

	t.Run("not authenticated", func(t *testing.T) {
		fx := newFixture(t)
		fx.seedCatalog(t, []domain.Film{filmF1}, []domain.Session{sessionS1})

		_, err := fx.store.AddReservation(ctx, domain.ReservationRequest{SessionID: "S1", Seats: 1})
		assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	})

	t.Run("unknown session", func(t *testing.T) {
		fx := newFixture(t)
		fx.seedCatalog(t, []domain.Film{filmF1}, []domain.Session{sessionS1})
		fx.signIn(t, student, "jwt", nil)

		_, err := fx.store.AddReservation(ctx, domain.ReservationRequest{SessionID: "S404", Seats: 1})
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("non positive seats", func(t *testing.T) {
		fx := newFixture(t)
		fx.signIn(t, student, "jwt", nil)

		_, err := fx.store.AddReservation(ctx, domain.ReservationRequest{SessionID: "S1", Seats: 0})
		assert.ErrorIs(t, err, domain.ErrInvalidSeats)
	})

	t.Run("sessions down", func(t *testing.T) {
		fx := newFixture(t)
		fx.seedCatalog(t, []domain.Film{filmF1}, []domain.Session{sessionS1})
		fx.signIn(t, student, "jwt", nil)
		fx.store.SetServiceStatus(domain.ResourceSessions, true)

		_, err := fx.store.AddReservation(ctx, domain.ReservationRequest{SessionID: "S1", Seats: 1})
		assert.ErrorIs(t, err, domain.ErrServiceDown)
		fx.sessions.AssertNotCalled(t, "ReserveSeats", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAddReservation_UnknownPricingUsesStandardRate(t *testing.T) {
	fx := newFixture(t)
	fx.seedCatalog(t, []domain.Film{filmF1}, []domain.Session{sessionS1})
	fx.signIn(t, domain.User{ID: "V", Login: "vic", Pricing: "senior"}, "jwt", nil)

	booked := sessionS1
	booked.SeatsTaken = 2
	fx.sessions.On("ReserveSeats", mock.Anything, domain.ID("S1"), 2).Return(&booked, nil).Once()
	fx.accounts.On("AddReservation", mock.Anything, mock.MatchedBy(func(r domain.Reservation) bool {
		return r.TotalPrice == 24 && r.UserID == "V"
	}), "jwt").Return(&domain.Reservation{ID: "R", SessionID: "S1", UserID: "V", Seats: 2, TotalPrice: 24}, nil).Once()

	reservation, err := fx.store.AddReservation(context.Background(), domain.ReservationRequest{SessionID: "S1", Seats: 2})
	require.NoError(t, err)
	assert.Equal(t, 24.0, reservation.TotalPrice)
}

func TestAddReservation_RemoteFailureLeavesStateIntact(t *testing.T) {
	fx := newFixture(t)
	fx.seedCatalog(t, []domain.Film{filmF1}, []domain.Session{sessionS1})
	fx.signIn(t, student, "jwt", nil)

	fx.sessions.On("ReserveSeats", mock.Anything, domain.ID("S1"), 5).Return(nil, &httpclient.HTTPError{Status: 409, Message: "full"}).Once()

	_, err := fx.store.AddReservation(context.Background(), domain.ReservationRequest{SessionID: "S1", Seats: 5})
	assert.EqualError(t, err, "full")

	assert.Equal(t, 0, fx.store.Snapshot().Sessions[0].SeatsTaken)
	assert.Empty(t, fx.store.ReservationHistory())
}

func TestAddReservation_SameSessionIsSerialized(t *testing.T) {
	fx := newFixture(t)
	fx.seedCatalog(t, []domain.Film{filmF1}, []domain.Session{sessionS1})
	fx.signIn(t, student, "jwt", nil)

	booked := sessionS1
	booked.SeatsTaken = 30
	fx.sessions.On("ReserveSeats", mock.Anything, domain.ID("S1"), 30).Return(&booked, nil).Once()
	fx.accounts.On("AddReservation", mock.Anything, mock.Anything, "jwt").Return(&domain.Reservation{ID: "R1", SessionID: "S1", UserID: "U", Seats: 30}, nil).Once()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := fx.store.AddReservation(context.Background(), domain.ReservationRequest{SessionID: "S1", Seats: 30})
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}()
	}
	wg.Wait()

	var failures int
	for _, err := range errs {
		if err != nil {
			failures++
			var seatsErr *domain.InsufficientSeatsError
			require.True(t, errors.As(err, &seatsErr))
			assert.Equal(t, 20, seatsErr.Remaining)
		}
	}
	assert.Equal(t, 1, failures)

	session := fx.store.Snapshot().Sessions[0]
	assert.LessOrEqual(t, session.SeatsTaken, session.SeatsTotal)
}

func TestLoginAndLogout(t *testing.T) {
	fx := newFixture(t)
	fx.signIn(t, student, "jwt", []domain.Reservation{
		{ID: "R1", SessionID: "S1", UserID: "U"},
		{ID: "R2", SessionID: "S1", UserID: "someone-else"},
	})

	state := fx.store.Snapshot()
	assert.Equal(t, "jwt", state.Token)
	assert.Equal(t, domain.ID("U"), state.CurrentUser.ID)
	assert.Len(t, state.Reservations, 2)
	assert.Len(t, fx.store.ReservationHistory(), 1)

	fx.store.Logout()

	state = fx.store.Snapshot()
	assert.Nil(t, state.CurrentUser)
	assert.Empty(t, state.Token)
	assert.Empty(t, state.Users)
	assert.Empty(t, state.Reservations)
	assert.Empty(t, fx.store.ReservationHistory())
}

func TestLogin_NoUserInResponse(t *testing.T) {
	fx := newFixture(t)
	creds := domain.Credentials{Login: "ghost", Password: "pw"}
	fx.accounts.On("Authenticate", mock.Anything, creds).Return(&domain.AuthResult{Token: "t"}, nil).Once()

	_, err := fx.store.Login(context.Background(), creds)

	assert.ErrorIs(t, err, domain.ErrNoUser)
	assert.Nil(t, fx.store.CurrentUser())
}

func TestLogin_BackendErrorPropagatesUnchanged(t *testing.T) {
	fx := newFixture(t)
	creds := domain.Credentials{Login: "ana", Password: "bad"}
	authErr := &httpclient.HTTPError{Status: 401, Message: "invalid credentials"}
	fx.accounts.On("Authenticate", mock.Anything, creds).Return(nil, authErr).Once()

	_, err := fx.store.Login(context.Background(), creds)

	assert.Same(t, authErr, err)
}

func TestRegisterUser(t *testing.T) {
	fx := newFixture(t)
	newUser := domain.User{Login: "bob", Password: "secret", Pricing: domain.PricingUnder16}
	created := domain.User{ID: "B", Login: "bob", Password: "secret", Pricing: domain.PricingUnder16}

	fx.accounts.On("RegisterUser", mock.Anything, newUser).Return(&domain.AuthResult{User: &created, Token: "t2"}, nil).Once()
	fx.accounts.On("ListUsers", mock.Anything, "t2").Return(nil, errors.New("forbidden")).Once()

	user, err := fx.store.RegisterUser(context.Background(), newUser)
	require.NoError(t, err)
	assert.Equal(t, domain.ID("B"), user.ID)

	state := fx.store.Snapshot()
	assert.Equal(t, "t2", state.Token)
	assert.Empty(t, state.CurrentUser.Password)
	assert.Len(t, state.Users, 1)
	assert.Equal(t, "forbidden", state.Status[domain.ResourceAccounts].Error)
}

func TestEditFilmAndSession(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	fx.seedCatalog(t, []domain.Film{filmF1}, []domain.Session{sessionS1})

	renamed := filmF1
	renamed.Title = "Le Samouraï (1967)"
	fx.films.On("UpdateFilm", mock.Anything, domain.ID("F1"), renamed).Return(&renamed, nil).Once()

	moved := sessionS1
	moved.Room = "Salle 2"
	fx.sessions.On("UpdateSession", mock.Anything, domain.ID("S1"), moved).Return(&moved, nil).Once()

	_, err := fx.store.EditFilm(ctx, "F1", renamed)
	require.NoError(t, err)
	_, err = fx.store.EditSession(ctx, "S1", moved)
	require.NoError(t, err)

	state := fx.store.Snapshot()
	assert.Equal(t, "Le Samouraï (1967)", state.Films[0].Title)
	assert.Equal(t, "Salle 2", state.Sessions[0].Room)
}

func TestAddFilmAndSession(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	fx.films.On("CreateFilm", mock.Anything, domain.Film{Title: "Heat"}).Return(&domain.Film{ID: "F9", Title: "Heat"}, nil).Once()
	fx.sessions.On("CreateSession", mock.Anything, domain.Session{FilmID: "F9", SeatsTotal: 80}).
		Return(&domain.Session{ID: "S9", FilmID: "F9", SeatsTotal: 80}, nil).Once()

	_, err := fx.store.AddFilm(ctx, domain.Film{Title: "Heat"})
	require.NoError(t, err)
	_, err = fx.store.AddSession(ctx, domain.Session{FilmID: "F9", SeatsTotal: 80})
	require.NoError(t, err)

	byFilm := fx.store.SessionsByFilm()
	require.Len(t, byFilm["F9"], 1)
	assert.Equal(t, 80, fx.store.SeatsRemaining("S9"))
}

func TestSessionsByFilm_KeepsOrder(t *testing.T) {
	fx := newFixture(t)
	fx.seedCatalog(t, nil, []domain.Session{
		{ID: "a", FilmID: "F1"},
		{ID: "b", FilmID: "F2"},
		{ID: "c", FilmID: "F1"},
	})

	byFilm := fx.store.SessionsByFilm()
	require.Len(t, byFilm["F1"], 2)
	assert.Equal(t, domain.ID("a"), byFilm["F1"][0].ID)
	assert.Equal(t, domain.ID("c"), byFilm["F1"][1].ID)
	assert.Len(t, byFilm["F2"], 1)
}

func TestSnapshot_IsACopy(t *testing.T) {
	fx := newFixture(t)
	fx.seedCatalog(t, []domain.Film{filmF1}, []domain.Session{sessionS1})

	state := fx.store.Snapshot()
	state.Sessions[0].SeatsTaken = 49
	state.Films[0].SessionIDs[0] = "tampered"

	fresh := fx.store.Snapshot()
	assert.Equal(t, 0, fresh.Sessions[0].SeatsTaken)
	assert.Equal(t, domain.ID("S1"), fresh.Films[0].SessionIDs[0])
}

func TestSnapshotStore_SaveAndRestore(t *testing.T) {
	snapshots := mocks.NewSnapshotStore(t)
	fx := newFixture(t, services.WithSnapshotStore(snapshots))

	snapshots.On("SaveSnapshot", mock.Anything, domain.ResourceFilms, mock.AnythingOfType("[]uint8")).Return(nil).Once()
	snapshots.On("SaveSnapshot", mock.Anything, domain.ResourceSessions, mock.AnythingOfType("[]uint8")).Return(errors.New("redis down")).Once()
	fx.seedCatalog(t, []domain.Film{filmF1}, []domain.Session{sessionS1})

	assert.Empty(t, fx.store.Status(domain.ResourceSessions).Error)

	restored := newFixture(t, services.WithSnapshotStore(snapshots))
	snapshots.On("LoadSnapshot", mock.Anything, domain.ResourceFilms).Return([]byte(`[{"id":"F1","title":"cached"}]`), nil).Once()
	snapshots.On("LoadSnapshot", mock.Anything, domain.ResourceSessions).Return(nil, ports.ErrSnapshotMiss).Once()

	require.NoError(t, restored.store.RestoreSnapshot(context.Background()))

	state := restored.store.Snapshot()
	require.Len(t, state.Films, 1)
	assert.Equal(t, "cached", state.Films[0].Title)
	assert.Empty(t, state.Sessions)
}

func TestRestoreSnapshot_CorruptData(t *testing.T) {
	snapshots := mocks.NewSnapshotStore(t)
	fx := newFixture(t, services.WithSnapshotStore(snapshots))

	snapshots.On("LoadSnapshot", mock.Anything, domain.ResourceFilms).Return([]byte(`{`), nil).Once()
	snapshots.On("LoadSnapshot", mock.Anything, domain.ResourceSessions).Return(nil, ports.ErrSnapshotMiss).Once()

	err := fx.store.RestoreSnapshot(context.Background())
	assert.ErrorContains(t, err, "decode films snapshot")
}

func TestRunBackgroundRefresh_StopsWithContext(t *testing.T) {
	fx := newFixture(t)
	fx.films.On("ListFilms", mock.Anything).Return([]domain.Film{}, nil).Maybe()
	fx.sessions.On("ListSessions", mock.Anything).Return([]domain.Session{}, nil).Maybe()
	fx.accounts.On("ListUsers", mock.Anything, "").Return([]domain.User{}, nil).Maybe()
	fx.accounts.On("ListReservations", mock.Anything, "").Return([]domain.Reservation{}, nil).Maybe()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		fx.store.RunBackgroundRefresh(ctx, 5*time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("background refresh did not stop")
	}
}

func TestRemoveFilm_CascadesToLinkedSessionsNotHeldLocally(t *testing.T) {
	fx := newFixture(t)
	film := domain.Film{ID: "F9", SessionIDs: []domain.ID{"S9"}}
	fx.seedCatalog(t, []domain.Film{film}, nil)

	fx.films.On("DeleteFilm", mock.Anything, domain.ID("F9")).Return(nil).Once()
	fx.sessions.On("DeleteSession", mock.Anything, domain.ID("S9")).Return(nil).Once()
	fx.accounts.On("DeleteReservationsBySession", mock.Anything, domain.ID("S9"), "").Return(nil).Once()

	require.NoError(t, fx.store.RemoveFilm(context.Background(), "F9"))

	assert.Empty(t, fx.store.Snapshot().Films)
}

func TestRemoveFilm_LinkedAndLocalSessionsDeletedOnce(t *testing.T) {
	fx := newFixture(t)
	fx.seedCatalog(t, []domain.Film{filmF1}, []domain.Session{sessionS1})

	fx.films.On("DeleteFilm", mock.Anything, domain.ID("F1")).Return(nil).Once()
	fx.sessions.On("DeleteSession", mock.Anything, domain.ID("S1")).Return(nil).Once()
	fx.accounts.On("DeleteReservationsBySession", mock.Anything, domain.ID("S1"), "").Return(nil).Once()

	require.NoError(t, fx.store.RemoveFilm(context.Background(), "F1"))

	fx.sessions.AssertNumberOfCalls(t, "DeleteSession", 1)
}

func TestFetchFilms_SnapshotEncodingDoesNotShareState(t *testing.T) {
	snapshots := mocks.NewSnapshotStore(t)
	fx := newFixture(t, services.WithSnapshotStore(snapshots))

	films := []domain.Film{filmF1, {ID: "F2", Title: "Heat"}}
	fx.films.On("ListFilms", mock.Anything).Return(films, nil)
	fx.films.On("UpdateFilm", mock.Anything, domain.ID("F1"), mock.Anything).Return(&domain.Film{ID: "F1", Title: "edited"}, nil)

	var (
		mu    sync.Mutex
		saved [][]byte
	)
	snapshots.On("SaveSnapshot", mock.Anything, domain.ResourceFilms, mock.AnythingOfType("[]uint8")).
		Run(func(args mock.Arguments) {
			mu.Lock()
			saved = append(saved, args.Get(2).([]byte))
			mu.Unlock()
		}).Return(nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			fx.store.FetchFilms(context.Background())
		}()
		go func() {
			defer wg.Done()
			_, err := fx.store.EditFilm(context.Background(), "F1", domain.Film{Title: "edited"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, "Le Samouraï", films[0].Title)
	require.Len(t, saved, 20)
	for _, data := range saved {
		assert.Contains(t, string(data), "Le Samoura")
		assert.NotContains(t, string(data), "edited")
	}
}

func TestRemoveSession_ReleasesReservationLock(t *testing.T) {
	fx := newFixture(t)
	fx.seedCatalog(t, []domain.Film{filmF1}, []domain.Session{sessionS1})
	fx.signIn(t, student, "jwt", nil)

	booked := sessionS1
	booked.SeatsTaken = 1
	fx.sessions.On("ReserveSeats", mock.Anything, domain.ID("S1"), 1).Return(&booked, nil).Once()
	fx.accounts.On("AddReservation", mock.Anything, mock.Anything, "jwt").
		Return(&domain.Reservation{ID: "R1", SessionID: "S1", UserID: "U", Seats: 1}, nil).Once()

	_, err := fx.store.AddReservation(context.Background(), domain.ReservationRequest{SessionID: "S1", Seats: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, fx.store.SessionLockCount())

	fx.sessions.On("DeleteSession", mock.Anything, domain.ID("S1")).Return(nil).Once()
	fx.accounts.On("DeleteReservationsBySession", mock.Anything, domain.ID("S1"), "jwt").Return(nil).Once()

	require.NoError(t, fx.store.RemoveSession(context.Background(), "S1"))
	assert.Equal(t, 0, fx.store.SessionLockCount())
}
