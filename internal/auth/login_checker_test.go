package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginChecker_UserIDForToken(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	loginChecker := NewLoginChecker(time.Hour, db)
	require.NotNil(t, loginChecker)

	ctx := context.Background()

	mock.ExpectGet(sessionKeyPrefix + "invalid-token").SetErr(redis.Nil)
	userID, err := loginChecker.UserIDForToken(ctx, "invalid-token")
	require.ErrorIs(t, err, ErrNotLoggedIn)
	assert.Empty(t, userID)

	testToken := "test-token"
	now := time.Now()
	sessionKey := sessionKeyPrefix + testToken

	mock.ExpectGet(sessionKey).SetVal(fmt.Sprintf("%s::%d", testUserID, now.Unix()))
	userID, err = loginChecker.UserIDForToken(ctx, testToken)
	require.NoError(t, err)
	assert.Equal(t, testUserID, userID)

	// expired session
	then := now.Add(-2 * time.Hour)
	mock.ExpectGet(sessionKey).SetVal(fmt.Sprintf("%s::%d", testUserID, then.Unix()))
	userID, err = loginChecker.UserIDForToken(ctx, testToken)
	require.ErrorIs(t, err, ErrNotLoggedIn)
	assert.Empty(t, userID)
}

func TestUserIDContext(t *testing.T) {
	ctx := context.Background()

	_, ok := UserIDFromContext(ctx)
	assert.False(t, ok)

	ctx = ContextWithUserID(ctx, testUserID)
	userID, ok := UserIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, testUserID, userID)
}
