package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/srgjo27/cinema_client/internal/core/domain"
)

type catalogResponse struct {
	Films          []domain.Film                             `json:"films"`
	SessionsByFilm map[domain.ID][]domain.Session            `json:"sessionsByFilm"`
	Status         map[domain.Resource]domain.ResourceStatus `json:"status"`
}

func (h *CinemaHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	state := h.store.Snapshot()

	writeJSON(w, http.StatusOK, catalogResponse{
		Films:          state.Films,
		SessionsByFilm: state.SessionsByFilm(),
		Status:         state.Status,
	})
}

func (h *CinemaHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.Credentials
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.store.Login(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *CinemaHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.User
	if !h.decode(w, r, &req) {
		return
	}
	req.Role = domain.RoleUser

	user, err := h.store.RegisterUser(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (h *CinemaHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.store.Logout()
	w.WriteHeader(http.StatusNoContent)
}

func (h *CinemaHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req domain.ReservationRequest
	if !h.decode(w, r, &req) {
		return
	}

	reservation, err := h.store.AddReservation(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, reservation)
}

func (h *CinemaHandler) GetReservationHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.ReservationHistory())
}

func (h *CinemaHandler) CreateFilm(w http.ResponseWriter, r *http.Request) {
	var req domain.Film
	if !h.decode(w, r, &req) {
		return
	}

	film, err := h.store.AddFilm(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, film)
}

func (h *CinemaHandler) UpdateFilm(w http.ResponseWriter, r *http.Request) {
	var req domain.Film
	if !h.decode(w, r, &req) {
		return
	}

	film, err := h.store.EditFilm(r.Context(), domain.ID(chi.URLParam(r, "id")), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, film)
}

func (h *CinemaHandler) DeleteFilm(w http.ResponseWriter, r *http.Request) {
	if err := h.store.RemoveFilm(r.Context(), domain.ID(chi.URLParam(r, "id"))); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CinemaHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req domain.Session
	if !h.decode(w, r, &req) {
		return
	}

	session, err := h.store.AddSession(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

func (h *CinemaHandler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	var req domain.Session
	if !h.decode(w, r, &req) {
		return
	}

	session, err := h.store.EditSession(r.Context(), domain.ID(chi.URLParam(r, "id")), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

func (h *CinemaHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.store.RemoveSession(r.Context(), domain.ID(chi.URLParam(r, "id"))); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CinemaHandler) GetServices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Snapshot().Status)
}

func (h *CinemaHandler) SetServiceStatus(w http.ResponseWriter, r *http.Request) {
	resource, err := domain.ParseResource(chi.URLParam(r, "resource"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}

	var req struct {
		Down bool `json:"down"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	h.store.SetServiceStatus(resource, req.Down)
	writeJSON(w, http.StatusOK, h.store.Status(resource))
}

func (h *CinemaHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Snapshot().Users)
}

func (h *CinemaHandler) GetReservations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Snapshot().Reservations)
}
