package test

import (
	"context"

	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/user"
)

func (s *IntegrationTestSuite) TestRegisterAndLogin() {
	ctx := context.Background()
	t := s.T()

	registered := registerUser(ctx, t, "mila", "mila@fitbot.test")
	s.Equal("mila", registered.User.Username)
	s.Equal("mila@fitbot.test", registered.User.Email)

	loggedIn := doLogin(ctx, t, "mila@fitbot.test")
	s.Equal(registered.User.ID, loggedIn.User.ID)

	var me user.User
	code := doAuthedRequest(ctx, t, loggedIn.Token, "GET", "/api/me", nil, &me)
	s.Equal(200, code)
	s.Equal("mila@fitbot.test", me.Email)
}

func (s *IntegrationTestSuite) TestUpdateProfile() {
	ctx := context.Background()
	t := s.T()

	registered := registerUser(ctx, t, "profiler", "profiler@fitbot.test")

	var updated user.User
	code := doAuthedRequest(ctx, t, registered.Token, "PUT", "/api/me", map[string]string{
		"username":  "profiler-two",
		"fullName":  "Pro Filer",
		"avatarUrl": "https://cdn.fitbot.test/avatar.png",
	}, &updated)
	s.Equal(200, code)
	s.Equal("profiler-two", updated.Username)
	s.Equal("Pro Filer", updated.FullName)
}

func (s *IntegrationTestSuite) TestProtectedRoutesRequireLogin() {
	ctx := context.Background()
	t := s.T()

	code := doAuthedRequest(ctx, t, "bogus-token", "GET", "/gamification/stats", nil, nil)
	s.Equal(401, code)

	code = doAuthedRequest(ctx, t, "", "GET", "/api/me", nil, nil)
	s.Equal(401, code)
}
