package gamification

import "time"

type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	qualifies   func(stats *UserStats) bool
}

type UserAchievement struct {
	AchievementID string    `json:"achievementId"`
	AwardedAt     time.Time `json:"awardedAt"`
}

var Achievements = []Achievement{
	{
		ID:          "first-workout",
		Title:       "First Steps",
		Description: "Complete your first workout",
		qualifies: func(stats *UserStats) bool {
			return stats.WorkoutsCompleted >= 1
		},
	},
	{
		ID:          "ten-workouts",
		Title:       "Regular",
		Description: "Complete 10 workouts",
		qualifies: func(stats *UserStats) bool {
			return stats.WorkoutsCompleted >= 10
		},
	},
	{
		ID:          "week-streak",
		Title:       "Unstoppable",
		Description: "Work out 7 days in a row",
		qualifies: func(stats *UserStats) bool {
			return stats.Streak >= 7
		},
	},
	{
		ID:          "level-five",
		Title:       "Getting Serious",
		Description: "Reach level 5",
		qualifies: func(stats *UserStats) bool {
			return stats.Level >= 5
		},
	},
}

func qualifiedAchievements(stats *UserStats) []Achievement {
	var out []Achievement
	for _, a := range Achievements {
		if a.qualifies(stats) {
			out = append(out, a)
		}
	}
	return out
}
