package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/fifanights/cup-tracker/models"
	"github.com/fifanights/cup-tracker/services"
	"github.com/fifanights/cup-tracker/stats"
)

var errInvalidPlayerIDParam = errors.New("invalid player_id query parameter")

type StatsHandler struct {
	statsService services.StatsService
}

func NewStatsHandler(statsService services.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

func scopeFromQuery(r *http.Request) (services.Scope, error) {
	return services.ParseScope(r.URL.Query().Get("scope"))
}

func (h *StatsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	formN, _ := strconv.Atoi(r.URL.Query().Get("form_n"))

	view, err := h.statsService.Overview(r.Context(), scope, formN)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"leaderboard": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StatsHandler) PlayerStats(w http.ResponseWriter, r *http.Request) {
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	scope, err := scopeFromQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.statsService.PlayerStats(r.Context(), playerID, scope)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"stats": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StatsHandler) Streaks(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	query := r.URL.Query()
	var mode *models.TournamentMode
	if raw := query.Get("mode"); raw != "" {
		switch m := models.TournamentMode(raw); m {
		case models.Mode1v1, models.Mode2v2:
			mode = &m
		default:
			badRequestResponse(w, r, errors.New("mode must be 1v1 or 2v2"))
			return
		}
	}
	var playerID *int
	if raw := query.Get("player_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id < 1 {
			badRequestResponse(w, r, errInvalidPlayerIDParam)
			return
		}
		playerID = &id
	}
	limit, _ := strconv.Atoi(query.Get("limit"))

	views, err := h.statsService.Streaks(r.Context(), scope, mode, playerID, limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"streaks": views}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StatsHandler) HeadToHead(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	query := r.URL.Query()
	var playerID *int
	if raw := query.Get("player_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id < 1 {
			badRequestResponse(w, r, errInvalidPlayerIDParam)
			return
		}
		playerID = &id
	}
	limit, _ := strconv.Atoi(query.Get("limit"))
	order := stats.ParseH2HOrder(query.Get("order"))

	report, err := h.statsService.HeadToHead(r.Context(), scope, playerID, limit, order)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"h2h": report}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
