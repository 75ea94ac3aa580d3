package gamification

import "time"

// xp needed for the next level is the current level times this
const xpPerLevel = 500

type UserStats struct {
	UserID            string     `json:"userId"`
	Level             int        `json:"level"`
	XP                int        `json:"xp"`
	Streak            int        `json:"streak"`
	WorkoutsCompleted int        `json:"workoutsCompleted"`
	LastWorkoutDate   *time.Time `json:"lastWorkoutDate,omitempty"`
}

func (s *UserStats) XPToNextLevel() int {
	return s.Level * xpPerLevel
}

func defaultStats(userID string) *UserStats {
	return &UserStats{
		UserID: userID,
		Level:  1,
	}
}
