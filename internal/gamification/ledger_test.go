package gamification

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/telemetry/metrics"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testUserID = "user-1"

func newTestLedger(repo *repoMock) *Ledger {
	return NewLedger(repo, metrics.NewTestManager())
}

func TestLedger_awardBelowThreshold(t *testing.T) {
	repo := newRepoMock()
	ledger := newTestLedger(repo)

	stats, err := ledger.Award(t.Context(), testUserID, 200)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Level)
	assert.Equal(t, 200, stats.XP)

	stats, err = ledger.Award(t.Context(), testUserID, 299)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Level)
	assert.Equal(t, 499, stats.XP)

	persisted, err := repo.GetStats(t.Context(), testUserID)
	require.NoError(t, err)
	assert.Equal(t, 499, persisted.XP)
}

func TestLedger_awardLevelUpScenario(t *testing.T) {
	repo := newRepoMock()
	require.NoError(t, repo.SaveStats(t.Context(), &UserStats{
		UserID: testUserID,
		Level:  1,
		XP:     450,
	}))
	ledger := newTestLedger(repo)

	// threshold 500, 450+100=550 → level 2 with 50 xp carried over
	stats, err := ledger.Award(t.Context(), testUserID, 100)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Level)
	assert.Equal(t, 50, stats.XP)
}

func TestLedger_awardSingleLevelUpOnly(t *testing.T) {
	ledger := newTestLedger(newRepoMock())

	// a huge grant still moves one level, overflow stays as xp even
	// though it exceeds the next threshold too
	stats, err := ledger.Award(t.Context(), testUserID, 2700)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Level)
	assert.Equal(t, 2200, stats.XP)
}

func TestLedger_awardReachesThresholdExactly(t *testing.T) {
	repo := newRepoMock()
	require.NoError(t, repo.SaveStats(t.Context(), &UserStats{
		UserID: testUserID,
		Level:  2,
		XP:     900,
	}))
	ledger := newTestLedger(repo)

	// pre-increment level value is used for the threshold: 2*500
	stats, err := ledger.Award(t.Context(), testUserID, 100)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Level)
	assert.Equal(t, 0, stats.XP)
}

func TestLedger_awardAdvancesDespiteFailedWrite(t *testing.T) {
	repo := newRepoMock()
	repo.saveErr = errors.New("connection reset")
	ledger := newTestLedger(repo)

	stats, err := ledger.Award(t.Context(), testUserID, 300)
	require.NoError(t, err)
	assert.Equal(t, 300, stats.XP)

	// nothing was persisted, nothing is retried
	persisted, err := repo.GetStats(t.Context(), testUserID)
	require.NoError(t, err)
	assert.Equal(t, 0, persisted.XP)
}

func TestLedger_workoutCompletionRollsCounters(t *testing.T) {
	repo := newRepoMock()
	ledger := newTestLedger(repo)
	day1 := time.Date(2025, 3, 10, 18, 30, 0, 0, time.UTC)

	require.NoError(t, ledger.AwardWorkoutCompletion(t.Context(), testUserID, 30, day1))
	stats, err := repo.GetStats(t.Context(), testUserID)
	require.NoError(t, err)
	assert.Equal(t, 30, stats.XP)
	assert.Equal(t, 1, stats.Streak)
	assert.Equal(t, 1, stats.WorkoutsCompleted)
	require.NotNil(t, stats.LastWorkoutDate)

	// same day again: streak untouched, counter moves
	require.NoError(t, ledger.AwardWorkoutCompletion(t.Context(), testUserID, 30, day1.Add(2*time.Hour)))
	stats, err = repo.GetStats(t.Context(), testUserID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Streak)
	assert.Equal(t, 2, stats.WorkoutsCompleted)

	// next calendar day extends the streak
	require.NoError(t, ledger.AwardWorkoutCompletion(t.Context(), testUserID, 30, day1.AddDate(0, 0, 1)))
	stats, err = repo.GetStats(t.Context(), testUserID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Streak)

	// a gap resets it
	require.NoError(t, ledger.AwardWorkoutCompletion(t.Context(), testUserID, 30, day1.AddDate(0, 0, 5)))
	stats, err = repo.GetStats(t.Context(), testUserID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Streak)
	assert.Equal(t, 4, stats.WorkoutsCompleted)
}

func TestLedger_workoutCompletionAwardsAchievements(t *testing.T) {
	repo := newRepoMock()
	ledger := newTestLedger(repo)
	completedAt := time.Date(2025, 3, 10, 18, 30, 0, 0, time.UTC)

	require.NoError(t, ledger.AwardWorkoutCompletion(t.Context(), testUserID, 30, completedAt))

	earned, err := ledger.UserAchievements(t.Context(), testUserID)
	require.NoError(t, err)
	require.Len(t, earned, 1)
	assert.Equal(t, "first-workout", earned[0].AchievementID)

	// a second completion does not re-award it
	require.NoError(t, ledger.AwardWorkoutCompletion(t.Context(), testUserID, 30, completedAt.AddDate(0, 0, 1)))
	earned, err = ledger.UserAchievements(t.Context(), testUserID)
	require.NoError(t, err)
	assert.Len(t, earned, 1)
}

func TestLedger_tenWorkoutsAchievement(t *testing.T) {
	repo := newRepoMock()
	ledger := newTestLedger(repo)
	start := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	for i := 0; i < 10; i++ {
		require.NoError(t, ledger.AwardWorkoutCompletion(t.Context(), testUserID, 30, start.AddDate(0, 0, i)))
	}

	earned, err := ledger.UserAchievements(t.Context(), testUserID)
	require.NoError(t, err)

	ids := make([]string, len(earned))
	for i, a := range earned {
		ids[i] = a.AchievementID
	}
	assert.Contains(t, ids, "first-workout")
	assert.Contains(t, ids, "ten-workouts")
	assert.Contains(t, ids, "week-streak")
}
