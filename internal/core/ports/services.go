package ports

import (
	"context"

	"github.com/srgjo27/cinema_client/internal/core/domain"
)

type FilmsService interface {
	ListFilms(ctx context.Context) ([]domain.Film, error)
	CreateFilm(ctx context.Context, film domain.Film) (*domain.Film, error)
	UpdateFilm(ctx context.Context, id domain.ID, film domain.Film) (*domain.Film, error)
	DeleteFilm(ctx context.Context, id domain.ID) error
}

type SessionsService interface {
	ListSessions(ctx context.Context) ([]domain.Session, error)
	CreateSession(ctx context.Context, session domain.Session) (*domain.Session, error)
	UpdateSession(ctx context.Context, id domain.ID, session domain.Session) (*domain.Session, error)
	DeleteSession(ctx context.Context, id domain.ID) error
	// ReserveSeats increments seatsTaken server side and returns the updated session.
	ReserveSeats(ctx context.Context, id domain.ID, seats int) (*domain.Session, error)
}

// AccountsService calls take the bearer token explicitly; an empty token
// sends no Authorization header.
type AccountsService interface {
	ListUsers(ctx context.Context, token string) ([]domain.User, error)
	ListReservations(ctx context.Context, token string) ([]domain.Reservation, error)
	RegisterUser(ctx context.Context, user domain.User) (*domain.AuthResult, error)
	Authenticate(ctx context.Context, credentials domain.Credentials) (*domain.AuthResult, error)
	AddReservation(ctx context.Context, reservation domain.Reservation, token string) (*domain.Reservation, error)
	DeleteReservationsBySession(ctx context.Context, sessionID domain.ID, token string) error
	DeleteReservationsBySessions(ctx context.Context, sessionIDs []domain.ID, token string) error
}
