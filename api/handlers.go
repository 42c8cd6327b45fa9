package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	leagueservice "github.com/parkside-league/league-hub/app/modules/league/application"
	scheduleservice "github.com/parkside-league/league-hub/app/modules/schedule/application"
	tournamentservice "github.com/parkside-league/league-hub/app/modules/tournament/application"
)

// maxUploadBytes caps workbook and tournament uploads.
const maxUploadBytes = 10 << 20

// Handlers exposes the application services over HTTP.
type Handlers struct {
	League     *leagueservice.LeagueService
	Schedule   *scheduleservice.ScheduleService
	Tournament *tournamentservice.TournamentService
	Logger     *slog.Logger
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Logger.Error("failed to encode response", slog.Any("error", err))
	}
}

// writeError maps service errors onto HTTP statuses. Data-integrity and
// validation failures are the caller's problem; everything else is a 500.
func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, leagueservice.ErrNotLoaded),
		errors.Is(err, tournamentservice.ErrNoTournament):
		status = http.StatusConflict
	case errors.Is(err, tournamentservice.ErrMatchNotFound),
		errors.Is(err, tournamentservice.ErrGroupMatchNotFound):
		status = http.StatusNotFound
	case errors.Is(err, tournamentservice.ErrMatchNotReady),
		errors.Is(err, tournamentservice.ErrInvalidTournament),
		errors.Is(err, tournamentservice.ErrBracketShape),
		errors.Is(err, leagueservice.ErrTiedSeries):
		status = http.StatusUnprocessableEntity
	}
	http.Error(w, err.Error(), status)
}

// GetStandings returns the current ranked standings.
func (h *Handlers) GetStandings(w http.ResponseWriter, r *http.Request) {
	standings, err := h.League.Standings(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, standings)
}

// GetStandingsChart renders the standings as a PNG bar chart.
func (h *Handlers) GetStandingsChart(w http.ResponseWriter, r *http.Request) {
	standings, err := h.League.Standings(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	png, err := leagueservice.GenerateStandingsChart(standings)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to render chart: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// UploadWorkbook installs a new results workbook from the request body.
func (h *Handlers) UploadWorkbook(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to read upload: %v", err), http.StatusBadRequest)
		return
	}

	if err := h.League.LoadWorkbook(r.Context(), raw); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReloadLeague re-reads the configured workbook from disk.
func (h *Handlers) ReloadLeague(w http.ResponseWriter, r *http.Request) {
	if err := h.League.Reload(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// WeeklyPlanRequest optionally pins the seed instead of deriving it from
// the upcoming league night.
type WeeklyPlanRequest struct {
	Seed *uint32 `json:"seed"`
}

// WeeklyPlanResponse bundles the selected matches with the flex order.
type WeeklyPlanResponse struct {
	Plan      any `json:"plan"`
	FlexOrder any `json:"flexOrder"`
}

// ComputeWeeklyPlan runs the weekly scheduling pipeline.
func (h *Handlers) ComputeWeeklyPlan(w http.ResponseWriter, r *http.Request) {
	var input WeeklyPlanRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			http.Error(w, fmt.Sprintf("Failed to decode request body: %v", err), http.StatusBadRequest)
			return
		}
	}

	plan, flex, err := h.Schedule.ComputeWeeklyPlan(r.Context(), input.Seed)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, WeeklyPlanResponse{Plan: plan, FlexOrder: flex})
}

// RebalanceRequest names the teams hidden for the week.
type RebalanceRequest struct {
	Hidden []string `json:"hidden"`
}

// RebalancePlan replaces matches that touch hidden teams.
func (h *Handlers) RebalancePlan(w http.ResponseWriter, r *http.Request) {
	var input RebalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, fmt.Sprintf("Failed to decode request body: %v", err), http.StatusBadRequest)
		return
	}

	plan, err := h.Schedule.RebalancePlan(r.Context(), input.Hidden)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, plan)
}

// GetTournament returns the live tournament document.
func (h *Handlers) GetTournament(w http.ResponseWriter, r *http.Request) {
	trn, err := h.Tournament.Current(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, trn)
}

// ImportTournament replaces the live tournament with the uploaded document.
func (h *Handlers) ImportTournament(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to read upload: %v", err), http.StatusBadRequest)
		return
	}

	trn, err := h.Tournament.Import(r.Context(), raw)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, trn)
}

// GroupScoreRequest is the payload for group-stage score entry.
type GroupScoreRequest struct {
	Group  string `json:"group"`
	Team1  string `json:"team1"`
	Team2  string `json:"team2"`
	Score1 int    `json:"score1"`
	Score2 int    `json:"score2"`
}

// RecordGroupScore enters a group-stage result.
func (h *Handlers) RecordGroupScore(w http.ResponseWriter, r *http.Request) {
	var input GroupScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, fmt.Sprintf("Failed to decode request body: %v", err), http.StatusBadRequest)
		return
	}

	trn, err := h.Tournament.RecordGroupScore(r.Context(), input.Group, input.Team1, input.Team2, input.Score1, input.Score2)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, trn)
}

// GroupClearRequest is the payload for clearing a group-stage result.
type GroupClearRequest struct {
	Group string `json:"group"`
	Team1 string `json:"team1"`
	Team2 string `json:"team2"`
}

// ClearGroupScore removes a group-stage result.
func (h *Handlers) ClearGroupScore(w http.ResponseWriter, r *http.Request) {
	var input GroupClearRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, fmt.Sprintf("Failed to decode request body: %v", err), http.StatusBadRequest)
		return
	}

	trn, err := h.Tournament.ClearGroupScore(r.Context(), input.Group, input.Team1, input.Team2)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, trn)
}

// BracketScoreRequest is the payload for knockout score entry.
type BracketScoreRequest struct {
	MatchID string `json:"matchId"`
	Score1  int    `json:"score1"`
	Score2  int    `json:"score2"`
}

// RecordBracketScore enters a knockout result.
func (h *Handlers) RecordBracketScore(w http.ResponseWriter, r *http.Request) {
	var input BracketScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, fmt.Sprintf("Failed to decode request body: %v", err), http.StatusBadRequest)
		return
	}

	trn, err := h.Tournament.RecordBracketScore(r.Context(), input.MatchID, input.Score1, input.Score2)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, trn)
}

// BracketClearRequest is the payload for clearing a knockout result.
type BracketClearRequest struct {
	MatchID string `json:"matchId"`
	Cascade bool   `json:"cascade"`
}

// ClearBracketScore clears a knockout result, cascading downstream only
// when asked to.
func (h *Handlers) ClearBracketScore(w http.ResponseWriter, r *http.Request) {
	var input BracketClearRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, fmt.Sprintf("Failed to decode request body: %v", err), http.StatusBadRequest)
		return
	}

	trn, err := h.Tournament.ClearBracketScore(r.Context(), input.MatchID, input.Cascade)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, trn)
}

// ExportTournament downloads the full tournament document.
func (h *Handlers) ExportTournament(w http.ResponseWriter, r *http.Request) {
	raw, err := h.Tournament.ExportJSON(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="tournament.json"`)
	w.Write(raw)
}

// ExportTournamentResults downloads the compact results-only document.
func (h *Handlers) ExportTournamentResults(w http.ResponseWriter, r *http.Request) {
	raw, err := h.Tournament.ExportResultsJSON(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="tournament-results.json"`)
	w.Write(raw)
}

// Healthz is the liveness probe.
func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
