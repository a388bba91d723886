package test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/2beens/liftlog/internal/exercises"
	"github.com/2beens/liftlog/internal/workouts"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setPayload is the json body a client sends to log a set.
type setPayload struct {
	ExerciseID int        `json:"exerciseId"`
	SetNumber  int        `json:"setNumber,omitempty"`
	Weight     float64    `json:"weight"`
	WeightUnit string     `json:"weightUnit,omitempty"`
	Reps       int        `json:"reps"`
	RPE        *int       `json:"rpe,omitempty"`
	IsWarmup   bool       `json:"isWarmup,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	AchievedAt *time.Time `json:"achievedAt,omitempty"`
}

// recordJson mirrors the personal record wire format.
type recordJson struct {
	ID           int        `json:"id"`
	UserID       int        `json:"userId"`
	ExerciseID   int        `json:"exerciseId"`
	SetID        int        `json:"setId"`
	Category     string     `json:"category"`
	Weight       float64    `json:"weight"`
	WeightUnit   string     `json:"weightUnit"`
	Reps         int        `json:"reps"`
	Volume       float64    `json:"volume"`
	OneRepMax    float64    `json:"oneRepMax"`
	AchievedAt   time.Time  `json:"achievedAt"`
	SupersededAt *time.Time `json:"supersededAt"`
	IsCurrent    bool       `json:"isCurrent"`
}

type categoryResultJson struct {
	Category   string      `json:"category"`
	NewRecord  recordJson  `json:"newRecord"`
	Superseded *recordJson `json:"superseded"`
}

type logSetResponseJson struct {
	Set        workouts.Set         `json:"set"`
	NewRecords []categoryResultJson `json:"newRecords"`
}

func (s *IntegrationTestSuite) startSession(ctx context.Context, token, name string) workouts.Session {
	sessionJson, err := json.Marshal(workouts.Session{Name: name})
	require.NoError(s.T(), err)

	req := s.authedRequest(ctx, "POST", fmt.Sprintf("%s/workouts", serverEndpoint), token, sessionJson)
	var session workouts.Session
	s.doJSON(req, http.StatusCreated, &session)
	require.NotZero(s.T(), session.ID)
	return session
}

func (s *IntegrationTestSuite) logSet(ctx context.Context, token string, sessionID int, payload setPayload) logSetResponseJson {
	payloadJson, err := json.Marshal(payload)
	require.NoError(s.T(), err)

	req := s.authedRequest(ctx, "POST", fmt.Sprintf("%s/workouts/%d/sets", serverEndpoint, sessionID), token, payloadJson)
	var logResp logSetResponseJson
	s.doJSON(req, http.StatusCreated, &logResp)
	require.NotZero(s.T(), logResp.Set.ID)
	return logResp
}

func (s *IntegrationTestSuite) TestWorkouts() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, token := s.registerAndLogin(ctx, "workout-lifter")
	squat := s.addExercise(ctx, token, exercises.Exercise{Name: "Workout Front Squat", MuscleGroup: "legs"})
	press := s.addExercise(ctx, token, exercises.Exercise{Name: "Workout Overhead Press", MuscleGroup: "shoulders"})

	t.Run("full session lifecycle", func(t *testing.T) {
		session := s.startSession(ctx, token, "Leg Day")
		assert.Nil(t, session.FinishedAt)
		assert.False(t, session.StartedAt.IsZero())

		warmup := s.logSet(ctx, token, session.ID, setPayload{
			ExerciseID: squat.ID,
			Weight:     60,
			Reps:       5,
			IsWarmup:   true,
		})
		assert.True(t, warmup.Set.IsWarmup)
		// warmups do not enter the records pipeline
		assert.Empty(t, warmup.NewRecords)

		first := s.logSet(ctx, token, session.ID, setPayload{
			ExerciseID: squat.ID,
			Weight:     100,
			Reps:       5,
		})
		assert.Equal(t, 2, first.Set.SetNumber)
		assert.InDelta(t, 100, first.Set.Weight.Float(), 0.001)

		second := s.logSet(ctx, token, session.ID, setPayload{
			ExerciseID: press.ID,
			Weight:     55,
			Reps:       8,
			Notes:      "paused reps",
		})
		assert.Equal(t, 1, second.Set.SetNumber) // numbering is per exercise

		req := s.authedRequest(ctx, "GET", fmt.Sprintf("%s/workouts/%d", serverEndpoint, session.ID), token, nil)
		var sessionResp workouts.SessionResponse
		s.doJSON(req, http.StatusOK, &sessionResp)
		assert.Equal(t, session.ID, sessionResp.Session.ID)
		require.Len(t, sessionResp.Sets, 3)
		assert.Equal(t, "paused reps", sessionResp.Sets[2].Notes)

		rpe := 8
		finishJson, err := json.Marshal(map[string]any{"rpe": rpe, "notes": "solid day"})
		require.NoError(t, err)
		req = s.authedRequest(ctx, "POST", fmt.Sprintf("%s/workouts/%d/finish", serverEndpoint, session.ID), token, finishJson)
		var finished workouts.Session
		s.doJSON(req, http.StatusOK, &finished)
		require.NotNil(t, finished.FinishedAt)
		require.NotNil(t, finished.RPE)
		assert.Equal(t, rpe, *finished.RPE)
		assert.Equal(t, "solid day", finished.Notes)

		// finishing twice, or logging into a finished session, conflicts
		req = s.authedRequest(ctx, "POST", fmt.Sprintf("%s/workouts/%d/finish", serverEndpoint, session.ID), token, nil)
		resp, err := s.httpClient.Do(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		resp.Body.Close()

		lateSetJson, err := json.Marshal(setPayload{ExerciseID: squat.ID, Weight: 100, Reps: 5})
		require.NoError(t, err)
		req = s.authedRequest(ctx, "POST", fmt.Sprintf("%s/workouts/%d/sets", serverEndpoint, session.ID), token, lateSetJson)
		resp, err = s.httpClient.Do(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("bad sets rejected", func(t *testing.T) {
		session := s.startSession(ctx, token, "Sloppy Day")

		badRPE := 14
		for name, payload := range map[string]setPayload{
			"unknown exercise": {ExerciseID: 99999, Weight: 100, Reps: 5},
			"missing exercise": {Weight: 100, Reps: 5},
			"negative weight":  {ExerciseID: squat.ID, Weight: -10, Reps: 5},
			"unknown unit":     {ExerciseID: squat.ID, Weight: 100, WeightUnit: "stones", Reps: 5},
			"too many reps":    {ExerciseID: squat.ID, Weight: 100, Reps: 1001},
			"rpe out of range": {ExerciseID: squat.ID, Weight: 100, Reps: 5, RPE: &badRPE},
		} {
			payloadJson, err := json.Marshal(payload)
			require.NoError(t, err)
			req := s.authedRequest(ctx, "POST", fmt.Sprintf("%s/workouts/%d/sets", serverEndpoint, session.ID), token, payloadJson)
			resp, err := s.httpClient.Do(req)
			require.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, name)
			resp.Body.Close()
		}
	})

	t.Run("sessions are private", func(t *testing.T) {
		_, otherToken := s.registerAndLogin(ctx, "other-workout-lifter")
		session := s.startSession(ctx, token, "Private Day")

		req := s.authedRequest(ctx, "GET", fmt.Sprintf("%s/workouts/%d", serverEndpoint, session.ID), otherToken, nil)
		resp, err := s.httpClient.Do(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		resp.Body.Close()

		setJson, err := json.Marshal(setPayload{ExerciseID: squat.ID, Weight: 100, Reps: 5})
		require.NoError(t, err)
		req = s.authedRequest(ctx, "POST", fmt.Sprintf("%s/workouts/%d/sets", serverEndpoint, session.ID), otherToken, setJson)
		resp, err = s.httpClient.Do(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("list sessions by time window", func(t *testing.T) {
		_, freshToken := s.registerAndLogin(ctx, "listing-lifter")

		now := time.Now()
		for _, seed := range []struct {
			name      string
			startedAt time.Time
		}{
			{"Old Session", now.Add(-72 * time.Hour)},
			{"Recent Session", now.Add(-time.Hour)},
		} {
			sessionJson, err := json.Marshal(workouts.Session{
				Name:      seed.name,
				StartedAt: seed.startedAt,
			})
			require.NoError(t, err)
			req := s.authedRequest(ctx, "POST", fmt.Sprintf("%s/workouts", serverEndpoint), freshToken, sessionJson)
			var created workouts.Session
			s.doJSON(req, http.StatusCreated, &created)
		}

		req := s.authedRequest(ctx, "GET", fmt.Sprintf("%s/workouts", serverEndpoint), freshToken, nil)
		var listResp workouts.ListSessionsResponse
		s.doJSON(req, http.StatusOK, &listResp)
		require.Equal(t, 2, listResp.Total)
		// newest first
		assert.Equal(t, "Recent Session", listResp.Sessions[0].Name)

		from := now.Add(-24 * time.Hour).Format(time.RFC3339)
		req = s.authedRequest(ctx, "GET", fmt.Sprintf("%s/workouts?from=%s", serverEndpoint, from), freshToken, nil)
		s.doJSON(req, http.StatusOK, &listResp)
		require.Equal(t, 1, listResp.Total)
		assert.Equal(t, "Recent Session", listResp.Sessions[0].Name)

		req = s.authedRequest(ctx, "GET", fmt.Sprintf("%s/workouts?from=yesterday", serverEndpoint), freshToken, nil)
		resp, err := s.httpClient.Do(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	})
}
