package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	leagueservice "github.com/parkside-league/league-hub/app/modules/league/application"
	scheduleservice "github.com/parkside-league/league-hub/app/modules/schedule/application"
	tournamentservice "github.com/parkside-league/league-hub/app/modules/tournament/application"
	tournamentdomain "github.com/parkside-league/league-hub/app/modules/tournament/domain"
	tournamentdb "github.com/parkside-league/league-hub/app/modules/tournament/infrastructure/repositories"
	"github.com/parkside-league/league-hub/config"
	"github.com/parkside-league/league-hub/internal/eventbus"
	"github.com/parkside-league/league-hub/internal/observability"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := observability.NoOpLogger
	bus := eventbus.NewPubSub(logger)
	t.Cleanup(func() { bus.Close() })

	leagueCfg := config.LeagueConfig{SessionsRemaining: 1, QuotaAdjustment: 0.1}
	league := leagueservice.NewLeagueService(leagueCfg, logger, bus)
	schedule := scheduleservice.NewScheduleService(leagueCfg, league, logger, bus)
	tournament := tournamentservice.NewTournamentService(&tournamentdb.FakeRepository{}, logger, bus)

	h := &Handlers{League: league, Schedule: schedule, Tournament: tournament, Logger: logger}
	httpCfg := config.HTTPConfig{RateLimitRPS: 1000, RateLimitBurst: 1000}
	srv := httptest.NewServer(NewRouter(httpCfg, h, prometheus.NewRegistry()))
	t.Cleanup(srv.Close)
	return srv
}

func tournamentDoc(t *testing.T) []byte {
	t.Helper()
	doc := tournamentdomain.Tournament{
		TournamentName: "Club Open",
		Date:           "2026-09-05",
		Format: tournamentdomain.Format{
			GroupStage:       true,
			KnockoutStage:    true,
			GroupAdvancement: 2,
		},
		Groups: []tournamentdomain.Group{
			{
				Name:  "Group A",
				Teams: []string{"Aces", "Bandits"},
				Matches: []tournamentdomain.GroupMatch{
					{Team1: "Aces", Team2: "Bandits"},
				},
			},
		},
	}
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	return raw
}

func TestRouter_Healthz(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_MetricsExposed(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_StandingsBeforeLoadIsConflict(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/standings")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestRouter_TournamentLifecycle(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/tournament")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/api/tournament/import", "application/json", bytes.NewReader(tournamentDoc(t)))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	score, err := json.Marshal(GroupScoreRequest{
		Group: "Group A", Team1: "Aces", Team2: "Bandits", Score1: 11, Score2: 7,
	})
	require.NoError(t, err)
	resp, err = http.Post(srv.URL+"/api/tournament/group/score", "application/json", bytes.NewReader(score))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var trn tournamentdomain.Tournament
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&trn))
	require.True(t, trn.Groups[0].Matches[0].Completed)

	resp, err = http.Get(srv.URL + "/api/tournament/export/results")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestRouter_UnknownBracketMatchIsNotFound(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/tournament/import", "application/json", bytes.NewReader(tournamentDoc(t)))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body, err := json.Marshal(BracketScoreRequest{MatchID: "missing", Score1: 1, Score2: 0})
	require.NoError(t, err)
	resp, err = http.Post(srv.URL+"/api/tournament/bracket/score", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRateLimitMiddleware_Blocks(t *testing.T) {
	limiter := NewIPRateLimiter(1, 1)
	handler := RateLimitMiddleware(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
}
