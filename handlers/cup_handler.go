package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fifanights/cup-tracker/services"
)

type CupHandler struct {
	cupService services.CupService
}

func NewCupHandler(cupService services.CupService) *CupHandler {
	return &CupHandler{cupService: cupService}
}

func (h *CupHandler) ListDefs(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, jsonResponse{"cups": h.cupService.ListDefs()}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CupHandler) All(w http.ResponseWriter, r *http.Request) {
	views, err := h.cupService.AllCups(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"cups": views}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CupHandler) GetByKey(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "cupKey")
	if key == "" {
		badRequestResponse(w, r, errors.New("cup key is required"))
		return
	}

	view, err := h.cupService.GetCup(r.Context(), key)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"cup": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// OwnerBefore answers GET /cups/{cupKey}/owner?tournament_id=&date=.
// Without parameters it returns the current holder.
func (h *CupHandler) OwnerBefore(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "cupKey")
	if key == "" {
		badRequestResponse(w, r, errors.New("cup key is required"))
		return
	}

	query := r.URL.Query()
	var q services.OwnerQuery
	if raw := query.Get("tournament_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id < 1 {
			badRequestResponse(w, r, errors.New("invalid tournament_id query parameter"))
			return
		}
		q.TournamentID = id
	}
	if raw := query.Get("date"); raw != "" {
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			badRequestResponse(w, r, errors.New("date must be formatted as YYYY-MM-DD"))
			return
		}
		q.Date = &date
	}

	ownerID, err := h.cupService.OwnerBefore(r.Context(), key, q)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"owner_id": ownerID}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
