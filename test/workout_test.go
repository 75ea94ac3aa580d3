package test

import (
	"context"

	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/workout"
)

func (s *IntegrationTestSuite) TestWorkoutPlans() {
	ctx := context.Background()
	t := s.T()

	registered := registerUser(ctx, t, "planner", "planner@fitbot.test")

	var plans []workout.Plan
	code := doAuthedRequest(ctx, t, registered.Token, "GET", "/workouts/plans", nil, &plans)
	s.Equal(200, code)
	s.Len(plans, 4)

	types := make(map[string]bool)
	for _, plan := range plans {
		types[plan.Type] = true
		s.NotEmpty(plan.Exercises)
	}
	s.True(types["quick-hiit"])
	s.True(types["full-body-strength"])
}

func (s *IntegrationTestSuite) TestWorkoutLifecycle() {
	ctx := context.Background()
	t := s.T()

	registered := registerUser(ctx, t, "lifter", "lifter@fitbot.test")
	token := registered.Token

	var status workout.Status
	code := doAuthedRequest(ctx, t, token, "POST", "/workouts/start",
		workout.StartRequest{WorkoutType: "quick-hiit"}, &status)
	s.Equal(201, code)
	s.Equal(workout.StateRunning, status.State)
	s.NotEmpty(status.SessionID)

	// a second session for the same user is rejected
	code = doAuthedRequest(ctx, t, token, "POST", "/workouts/start",
		workout.StartRequest{WorkoutType: "quick-hiit"}, nil)
	s.Equal(409, code)

	code = doAuthedRequest(ctx, t, token, "POST", "/workouts/pause", nil, &status)
	s.Equal(200, code)
	s.Equal(workout.StatePaused, status.State)

	code = doAuthedRequest(ctx, t, token, "POST", "/workouts/resume", nil, &status)
	s.Equal(200, code)
	s.Equal(workout.StateRunning, status.State)

	code = doAuthedRequest(ctx, t, token, "GET", "/workouts/status", nil, &status)
	s.Equal(200, code)
	s.Equal("quick-hiit", status.WorkoutType)

	code = doAuthedRequest(ctx, t, token, "POST", "/workouts/end", nil, nil)
	s.Equal(200, code)

	// nothing left to report on
	code = doAuthedRequest(ctx, t, token, "GET", "/workouts/status", nil, nil)
	s.Equal(404, code)
}

func (s *IntegrationTestSuite) TestWorkoutUnknownPlan() {
	ctx := context.Background()
	t := s.T()

	registered := registerUser(ctx, t, "confused", "confused@fitbot.test")

	code := doAuthedRequest(ctx, t, registered.Token, "POST", "/workouts/start",
		workout.StartRequest{WorkoutType: "underwater-basket-weaving"}, nil)
	s.Equal(400, code)
}

func (s *IntegrationTestSuite) TestWorkoutHistoryEmpty() {
	ctx := context.Background()
	t := s.T()

	registered := registerUser(ctx, t, "historian", "historian@fitbot.test")

	var history workout.HistoryResponse
	code := doAuthedRequest(ctx, t, registered.Token, "GET", "/workouts/history/page/1/size/10", nil, &history)
	s.Equal(200, code)
	s.Equal(0, history.Total)
	s.Empty(history.Workouts)
}
