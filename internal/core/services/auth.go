package services

import (
	"context"

	"github.com/srgjo27/cinema_client/internal/core/domain"
)

func (s *Store) RegisterUser(ctx context.Context, user domain.User) (*domain.User, error) {
	if err := s.ensureService(domain.ResourceAccounts); err != nil {
		return nil, err
	}

	result, err := s.accounts.RegisterUser(ctx, user)
	if err != nil {
		return nil, err
	}
	if result.User == nil {
		return nil, domain.ErrNoUser
	}

	s.mu.Lock()
	registered := s.signIn(result)
	s.state.Users = append(s.state.Users, registered)
	s.mu.Unlock()

	s.log.WithField("user_id", registered.ID).Info("user registered")

	s.FetchAccounts(ctx)

	return &registered, nil
}

func (s *Store) Login(ctx context.Context, credentials domain.Credentials) (*domain.User, error) {
	if err := s.ensureService(domain.ResourceAccounts); err != nil {
		return nil, err
	}

	result, err := s.accounts.Authenticate(ctx, credentials)
	if err != nil {
		return nil, err
	}
	if result.User == nil {
		return nil, domain.ErrNoUser
	}

	s.mu.Lock()
	user := s.signIn(result)
	s.mu.Unlock()

	s.log.WithField("user_id", user.ID).Info("user signed in")

	s.FetchAccounts(ctx)

	return &user, nil
}

// Logout drops everything scoped to the signed-in session.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.CurrentUser = nil
	s.state.Token = ""
	s.state.Users = []domain.User{}
	s.state.Reservations = []domain.Reservation{}
}

// signIn keeps no password in memory. Callers hold s.mu.
func (s *Store) signIn(result *domain.AuthResult) domain.User {
	user := *result.User
	user.Password = ""
	current := user
	s.state.CurrentUser = &current
	s.state.Token = result.Token
	return user
}
