package auth

import "context"

// LoginTestChecker is used in unit tests of handlers that need an auth checker.
type LoginTestChecker struct {
	TokenToUserID map[string]string
}

func NewLoginTestChecker() *LoginTestChecker {
	return &LoginTestChecker{
		TokenToUserID: map[string]string{},
	}
}

func (ltc *LoginTestChecker) UserIDForToken(_ context.Context, token string) (string, error) {
	userID, ok := ltc.TokenToUserID[token]
	if !ok {
		return "", ErrNotLoggedIn
	}
	return userID, nil
}
