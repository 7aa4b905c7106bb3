package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/tidwall/gjson"

	"github.com/srgjo27/cinema_client/internal/core/domain"
	"github.com/srgjo27/cinema_client/internal/platform/httpclient"
)

const (
	usersPath   = "/v1/user"
	loginPath   = "/v1/user/login"
	ticketsPath = "/v1/ticket"
)

type AccountsAPI struct {
	client *httpclient.Client
}

func NewAccountsAPI(client *httpclient.Client) *AccountsAPI {
	return &AccountsAPI{client: client}
}

func withToken(token string) httpclient.RequestOptions {
	return httpclient.RequestOptions{Token: token}
}

func (a *AccountsAPI) ListUsers(ctx context.Context, token string) ([]domain.User, error) {
	payload, err := a.client.Get(ctx, usersPath, withToken(token))
	if err != nil {
		return nil, err
	}

	users := []domain.User{}
	if _, err := payload.Decode(a.client.Envelope(), &users); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (a *AccountsAPI) ListReservations(ctx context.Context, token string) ([]domain.Reservation, error) {
	payload, err := a.client.Get(ctx, ticketsPath, withToken(token))
	if err != nil {
		return nil, err
	}

	reservations := []domain.Reservation{}
	if _, err := payload.Decode(a.client.Envelope(), &reservations); err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return reservations, nil
}

func (a *AccountsAPI) RegisterUser(ctx context.Context, user domain.User) (*domain.AuthResult, error) {
	payload, err := a.client.Post(ctx, usersPath, user, httpclient.RequestOptions{})
	if err != nil {
		return nil, err
	}
	return normalizeAuth(payload.Unwrap(a.client.Envelope()))
}

func (a *AccountsAPI) Authenticate(ctx context.Context, credentials domain.Credentials) (*domain.AuthResult, error) {
	payload, err := a.client.Post(ctx, loginPath, credentials, httpclient.RequestOptions{})
	if err != nil {
		return nil, err
	}
	return normalizeAuth(payload.Unwrap(a.client.Envelope()))
}

func (a *AccountsAPI) AddReservation(ctx context.Context, reservation domain.Reservation, token string) (*domain.Reservation, error) {
	payload, err := a.client.Post(ctx, ticketsPath, reservation, withToken(token))
	if err != nil {
		return nil, err
	}
	return decodeOne[domain.Reservation](payload, a.client.Envelope(), "add reservation")
}

func (a *AccountsAPI) DeleteReservationsBySession(ctx context.Context, sessionID domain.ID, token string) error {
	_, err := a.client.Delete(ctx, ticketsPath+"/session/"+url.PathEscape(sessionID.String()), withToken(token))
	return err
}

// DeleteReservationsBySessions stops at the first failure; earlier deletes
// are not rolled back.
func (a *AccountsAPI) DeleteReservationsBySessions(ctx context.Context, sessionIDs []domain.ID, token string) error {
	for _, id := range sessionIDs {
		if err := a.DeleteReservationsBySession(ctx, id, token); err != nil {
			return fmt.Errorf("delete reservations of session %s: %w", id, err)
		}
	}
	return nil
}

// normalizeAuth maps the REST backend's {user, token} shape and the bare user
// shape (optionally carrying its own token) onto one AuthResult.
func normalizeAuth(raw json.RawMessage) (*domain.AuthResult, error) {
	if raw == nil {
		return &domain.AuthResult{}, nil
	}

	parsed := gjson.ParseBytes(raw)
	if !parsed.IsObject() {
		return nil, fmt.Errorf("authentication response: unexpected %s payload", parsed.Type)
	}

	userField := parsed.Get("user")
	tokenField := parsed.Get("token")

	result := &domain.AuthResult{Token: tokenField.String()}

	if userField.Exists() || tokenField.Exists() {
		if userField.Exists() && userField.Type != gjson.Null {
			var user domain.User
			if err := json.Unmarshal([]byte(userField.Raw), &user); err != nil {
				return nil, fmt.Errorf("decode authenticated user: %w", err)
			}
			result.User = &user
		}
		return result, nil
	}

	var user domain.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("decode authenticated user: %w", err)
	}
	result.User = &user
	return result, nil
}
