//go:build integration_test || all_tests

package test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/2beens/gymlog/internal/gymlog"
	"github.com/2beens/gymlog/internal/gymlog/repo"
	"github.com/2beens/gymlog/internal/gymlog/session"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) request(ctx context.Context, method, path string, body any) (int, []byte) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(s.T(), err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, serverEndpoint+path, reader)
	require.NoError(s.T(), err)
	req.Header.Set("User-Agent", "gymlog-integration-test")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	require.NoError(s.T(), err)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err)
	return resp.StatusCode, respBytes
}

func (s *IntegrationTestSuite) state(ctx context.Context, method, path string, body any) gymlog.StateResponse {
	status, respBytes := s.request(ctx, method, path, body)
	require.Equal(s.T(), http.StatusOK, status, string(respBytes))

	var state gymlog.StateResponse
	require.NoError(s.T(), json.Unmarshal(respBytes, &state))
	return state
}

func (s *IntegrationTestSuite) TestLiveWorkout() {
	ctx := context.Background()
	s.clearData()
	t := s.T()

	state := s.state(ctx, "POST", "/session/start", nil)
	require.Equal(t, session.KindActive, state.Kind)
	sessionID := state.Workout.Session.ID

	// a second start while a session is open is refused
	status, _ := s.request(ctx, "POST", "/session/start", nil)
	assert.Equal(t, http.StatusConflict, status)

	for _, name := range []string{"Barbell Bench Press", "Squat"} {
		s.state(ctx, "POST", "/session/exercise/start", map[string]string{"name": name})
		s.state(ctx, "POST", "/session/exercise/draft", map[string]any{"reps": 8, "weightKg": 60})
		s.state(ctx, "POST", "/session/exercise/set", nil)
		state = s.state(ctx, "POST", "/session/exercise/set", nil)
		assert.Equal(t, session.ExerciseResting, state.Workout.ExerciseState)

		status, respBytes := s.request(ctx, "POST", "/session/exercise/finish", nil)
		require.Equal(t, http.StatusOK, status, string(respBytes))
	}

	state = s.state(ctx, "POST", "/session/end", nil)
	require.Equal(t, session.KindLabelConfirmation, state.Kind)
	assert.ElementsMatch(t, []string{"Chest", "Legs"}, state.Labels.Selected)

	state = s.state(ctx, "POST", "/session/labels/toggle", map[string]string{"label": "Legs"})
	assert.Equal(t, []string{"Chest"}, state.Labels.Selected)

	state = s.state(ctx, "POST", "/session/confirm", nil)
	require.Equal(t, session.KindEnded, state.Kind)
	assert.Equal(t, []string{"Chest"}, state.Session.Labels)

	status, respBytes := s.request(ctx, "GET", "/history", nil)
	require.Equal(t, http.StatusOK, status)
	var history []repo.SessionSummary
	require.NoError(t, json.Unmarshal(respBytes, &history))
	require.Len(t, history, 1)
	assert.Equal(t, sessionID, history[0].ID)
	assert.Equal(t, 2, history[0].ExerciseCount)

	status, respBytes = s.request(ctx, "GET", "/exercises/last?name=squat", nil)
	require.Equal(t, http.StatusOK, status)
	var latest repo.LatestExercise
	require.NoError(t, json.Unmarshal(respBytes, &latest))
	assert.Equal(t, 2, latest.Sets)
	assert.Equal(t, 60.0, latest.WeightKg)
}

func (s *IntegrationTestSuite) TestManualSessionsAndDelete() {
	ctx := context.Background()
	s.clearData()
	t := s.T()

	faker := gofakeit.New(0)
	var ids []string
	for i := 0; i < 3; i++ {
		status, respBytes := s.request(ctx, "POST", "/sessions/manual", map[string]any{
			"date":   time.Date(2025, 3, 10+i, 0, 0, 0, 0, time.UTC).Format("2006-01-02"),
			"labels": []string{"Back"},
			"note":   faker.Sentence(4),
			"exercises": []map[string]any{
				{"name": "Deadlift", "sets": 3, "reps": 5, "weightKg": 120 + 10*i},
			},
		})
		require.Equal(t, http.StatusCreated, status, string(respBytes))

		var created repo.Session
		require.NoError(t, json.Unmarshal(respBytes, &created))
		ids = append(ids, created.ID)
	}

	status, respBytes := s.request(ctx, "GET", "/sessions/recent?limit=2", nil)
	require.Equal(t, http.StatusOK, status)
	var recent []repo.SessionSummary
	require.NoError(t, json.Unmarshal(respBytes, &recent))
	require.Len(t, recent, 2)
	assert.Equal(t, ids[2], recent[0].ID)

	status, respBytes = s.request(ctx, "GET", "/stats/trend?name=deadlift&reps=5", nil)
	require.Equal(t, http.StatusOK, status, string(respBytes))
	assert.Contains(t, string(respBytes), "140")

	status, _ = s.request(ctx, "DELETE", "/sessions/"+ids[2], nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = s.request(ctx, "GET", "/sessions/"+ids[2], nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, respBytes = s.request(ctx, "GET", "/exercises/last?name=Deadlift", nil)
	require.Equal(t, http.StatusOK, status)
	var latest repo.LatestExercise
	require.NoError(t, json.Unmarshal(respBytes, &latest))
	assert.Equal(t, 130.0, latest.WeightKg)
}

func (s *IntegrationTestSuite) TestSyncAndRestore() {
	ctx := context.Background()
	s.clearData()
	t := s.T()

	status, respBytes := s.request(ctx, "POST", "/sessions/manual", map[string]any{
		"date":   "2025-04-01",
		"labels": []string{"Arms"},
		"exercises": []map[string]any{
			{"name": "Barbell Curl", "sets": 3, "reps": 10, "weightKg": 30},
		},
	})
	require.Equal(t, http.StatusCreated, status, string(respBytes))

	pushesBefore := s.webhook.Pushes()
	status, respBytes = s.request(ctx, "POST", "/backup/sync", nil)
	require.Equal(t, http.StatusOK, status, string(respBytes))
	assert.Equal(t, pushesBefore+1, s.webhook.Pushes())

	status, respBytes = s.request(ctx, "GET", "/backup/last-sync", nil)
	require.Equal(t, http.StatusOK, status)
	var lastSync struct {
		LastSync *time.Time `json:"lastSync"`
	}
	require.NoError(t, json.Unmarshal(respBytes, &lastSync))
	require.NotNil(t, lastSync.LastSync)

	s.clearData()
	status, respBytes = s.request(ctx, "GET", "/history", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, "[]", string(respBytes))

	status, respBytes = s.request(ctx, "POST", "/backup/restore", nil)
	require.Equal(t, http.StatusOK, status, string(respBytes))
	var restored struct {
		Sessions  int `json:"sessions"`
		Exercises int `json:"exercises"`
	}
	require.NoError(t, json.Unmarshal(respBytes, &restored))
	assert.Equal(t, 1, restored.Sessions)
	assert.Equal(t, 1, restored.Exercises)

	status, respBytes = s.request(ctx, "GET", "/exercises/last?name=barbell%20curl", nil)
	require.Equal(t, http.StatusOK, status, string(respBytes))

	status, respBytes = s.request(ctx, "GET", "/backup/export", nil)
	require.Equal(t, http.StatusOK, status)
	var snapshot repo.Snapshot
	require.NoError(t, json.Unmarshal(respBytes, &snapshot))
	assert.Len(t, snapshot.Sessions, 1)
}

func (s *IntegrationTestSuite) TestSyncRateLimited() {
	ctx := context.Background()
	t := s.T()

	// the budget is shared with every other sync in this suite
	limited := false
	for i := 0; i < 5; i++ {
		status, _ := s.request(ctx, "POST", "/backup/sync", nil)
		if status == http.StatusTooManyRequests {
			limited = true
			break
		}
		require.Equal(t, http.StatusOK, status)
	}
	assert.True(t, limited)
}
