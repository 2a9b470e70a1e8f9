package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/fifanights/cup-tracker/models"
	"github.com/fifanights/cup-tracker/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(matchService services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

func (h *MatchHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) UpdateScore(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input struct {
		GoalsA int `json:"goals_a"`
		GoalsB int `json:"goals_b"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.UpdateScore(r.Context(), id, input.GoalsA, input.GoalsB)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) transition(w http.ResponseWriter, r *http.Request,
	op func(r *http.Request, matchID int) (*models.Match, error)) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := op(r, id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(r *http.Request, id int) (*models.Match, error) {
		return h.matchService.Start(r.Context(), id)
	})
}

func (h *MatchHandler) Finish(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(r *http.Request, id int) (*models.Match, error) {
		return h.matchService.Finish(r.Context(), id)
	})
}

func (h *MatchHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(r *http.Request, id int) (*models.Match, error) {
		return h.matchService.Reschedule(r.Context(), id)
	})
}

type friendlySideInput struct {
	PlayerIDs []int `json:"player_ids"`
	ClubID    *int  `json:"club_id"`
	Goals     int   `json:"goals"`
}

type friendlyInput struct {
	Mode     string            `json:"mode"`
	PlayedOn string            `json:"played_on"`
	SideA    friendlySideInput `json:"side_a"`
	SideB    friendlySideInput `json:"side_b"`
}

func (h *MatchHandler) CreateFriendly(w http.ResponseWriter, r *http.Request) {
	var input friendlyInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	svcInput := services.CreateFriendlyInput{
		Mode: models.TournamentMode(input.Mode),
		SideA: services.FriendlySideInput{
			PlayerIDs: input.SideA.PlayerIDs, ClubID: input.SideA.ClubID, Goals: input.SideA.Goals,
		},
		SideB: services.FriendlySideInput{
			PlayerIDs: input.SideB.PlayerIDs, ClubID: input.SideB.ClubID, Goals: input.SideB.Goals,
		},
	}
	if input.PlayedOn != "" {
		playedOn, err := time.Parse("2006-01-02", input.PlayedOn)
		if err != nil {
			badRequestResponse(w, r, errors.New("played_on must be formatted as YYYY-MM-DD"))
			return
		}
		svcInput.PlayedOn = playedOn
	}

	match, err := h.matchService.CreateFriendly(r.Context(), svcInput)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) ListFriendlies(w http.ResponseWriter, r *http.Request) {
	matches, err := h.matchService.ListFriendlies(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
