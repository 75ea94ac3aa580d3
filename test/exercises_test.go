package test

import (
	"context"

	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/exercises"
)

func (s *IntegrationTestSuite) TestExerciseTypes() {
	ctx := context.Background()
	t := s.T()

	// the exercise catalog is readable without a login
	var catalog []exercises.ExerciseInfo
	code := doAuthedRequest(ctx, t, "", "GET", "/exercises/types", nil, &catalog)
	s.Equal(200, code)
	s.Require().Len(catalog, 3)

	var single exercises.ExerciseInfo
	code = doAuthedRequest(ctx, t, "", "GET", "/exercises/types/1", nil, &single)
	s.Equal(200, code)
	s.Equal("Goblet Squat", single.Name)

	code = doAuthedRequest(ctx, t, "", "GET", "/exercises/types/9999", nil, nil)
	s.Equal(404, code)
}

func (s *IntegrationTestSuite) TestSubscriptionCheck() {
	ctx := context.Background()
	t := s.T()

	registered := registerUser(ctx, t, "payer", "payer@fitbot.test")

	// the fake billing API reports no customer for this email
	var status struct {
		Subscribed bool `json:"subscribed"`
	}
	code := doAuthedRequest(ctx, t, registered.Token, "POST", "/billing/check-subscription",
		map[string]string{}, &status)
	s.Equal(200, code)
	s.False(status.Subscribed)
}
