package gamification

import (
	"context"
	"sync"
	"time"
)

type repoMock struct {
	mutex        sync.Mutex
	stats        map[string]*UserStats
	achievements map[string][]UserAchievement

	saveErr error
}

func newRepoMock() *repoMock {
	return &repoMock{
		stats:        make(map[string]*UserStats),
		achievements: make(map[string][]UserAchievement),
	}
}

func (r *repoMock) GetStats(_ context.Context, userID string) (*UserStats, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	stats, ok := r.stats[userID]
	if !ok {
		return defaultStats(userID), nil
	}
	statsCopy := *stats
	return &statsCopy, nil
}

func (r *repoMock) SaveStats(_ context.Context, stats *UserStats) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	statsCopy := *stats
	r.stats[stats.UserID] = &statsCopy
	return nil
}

func (r *repoMock) AwardAchievement(_ context.Context, userID, achievementID string, awardedAt time.Time) (bool, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	for _, a := range r.achievements[userID] {
		if a.AchievementID == achievementID {
			return false, nil
		}
	}
	r.achievements[userID] = append(r.achievements[userID], UserAchievement{
		AchievementID: achievementID,
		AwardedAt:     awardedAt,
	})
	return true, nil
}

func (r *repoMock) ListAchievements(_ context.Context, userID string) ([]UserAchievement, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	out := make([]UserAchievement, len(r.achievements[userID]))
	copy(out, r.achievements[userID])
	return out, nil
}
