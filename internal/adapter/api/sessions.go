package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/srgjo27/cinema_client/internal/core/domain"
	"github.com/srgjo27/cinema_client/internal/platform/httpclient"
)

const sessionsPath = "/api/sessions"

type SessionsAPI struct {
	client *httpclient.Client
}

func NewSessionsAPI(client *httpclient.Client) *SessionsAPI {
	return &SessionsAPI{client: client}
}

func (a *SessionsAPI) ListSessions(ctx context.Context) ([]domain.Session, error) {
	payload, err := a.client.Get(ctx, sessionsPath, httpclient.RequestOptions{})
	if err != nil {
		return nil, err
	}

	sessions := []domain.Session{}
	if _, err := payload.Decode(a.client.Envelope(), &sessions); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

func (a *SessionsAPI) CreateSession(ctx context.Context, session domain.Session) (*domain.Session, error) {
	payload, err := a.client.Post(ctx, sessionsPath, session, httpclient.RequestOptions{})
	if err != nil {
		return nil, err
	}
	return decodeOne[domain.Session](payload, a.client.Envelope(), "create session")
}

func (a *SessionsAPI) UpdateSession(ctx context.Context, id domain.ID, session domain.Session) (*domain.Session, error) {
	payload, err := a.client.Put(ctx, sessionPath(id), session, httpclient.RequestOptions{})
	if err != nil {
		return nil, err
	}
	return decodeOne[domain.Session](payload, a.client.Envelope(), "update session")
}

func (a *SessionsAPI) DeleteSession(ctx context.Context, id domain.ID) error {
	_, err := a.client.Delete(ctx, sessionPath(id), httpclient.RequestOptions{})
	return err
}

func (a *SessionsAPI) ReserveSeats(ctx context.Context, id domain.ID, seats int) (*domain.Session, error) {
	body := struct {
		Seats int `json:"seats"`
	}{Seats: seats}

	payload, err := a.client.Post(ctx, sessionPath(id)+"/reserve", body, httpclient.RequestOptions{})
	if err != nil {
		return nil, err
	}
	return decodeOne[domain.Session](payload, a.client.Envelope(), "reserve seats")
}

func sessionPath(id domain.ID) string {
	return sessionsPath + "/" + url.PathEscape(id.String())
}
