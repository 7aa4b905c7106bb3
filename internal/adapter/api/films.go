package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/srgjo27/cinema_client/internal/core/domain"
	"github.com/srgjo27/cinema_client/internal/platform/httpclient"
)

const filmsPath = "/api/films"

type FilmsAPI struct {
	client *httpclient.Client
}

func NewFilmsAPI(client *httpclient.Client) *FilmsAPI {
	return &FilmsAPI{client: client}
}

func (a *FilmsAPI) ListFilms(ctx context.Context) ([]domain.Film, error) {
	payload, err := a.client.Get(ctx, filmsPath, httpclient.RequestOptions{})
	if err != nil {
		return nil, err
	}

	films := []domain.Film{}
	if _, err := payload.Decode(a.client.Envelope(), &films); err != nil {
		return nil, fmt.Errorf("list films: %w", err)
	}
	return films, nil
}

func (a *FilmsAPI) CreateFilm(ctx context.Context, film domain.Film) (*domain.Film, error) {
	payload, err := a.client.Post(ctx, filmsPath, film, httpclient.RequestOptions{})
	if err != nil {
		return nil, err
	}
	return decodeOne[domain.Film](payload, a.client.Envelope(), "create film")
}

func (a *FilmsAPI) UpdateFilm(ctx context.Context, id domain.ID, film domain.Film) (*domain.Film, error) {
	payload, err := a.client.Put(ctx, filmPath(id), film, httpclient.RequestOptions{})
	if err != nil {
		return nil, err
	}
	return decodeOne[domain.Film](payload, a.client.Envelope(), "update film")
}

func (a *FilmsAPI) DeleteFilm(ctx context.Context, id domain.ID) error {
	_, err := a.client.Delete(ctx, filmPath(id), httpclient.RequestOptions{})
	return err
}

func filmPath(id domain.ID) string {
	return filmsPath + "/" + url.PathEscape(id.String())
}
