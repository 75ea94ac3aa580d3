package challenges

import (
	"errors"
	"time"
)

var (
	ErrChallengeNotFound = errors.New("challenge not found")
	ErrAlreadyJoined     = errors.New("challenge already joined")
	ErrNotJoined         = errors.New("challenge not joined")
)

// Challenge is a community challenge definition. Progress is counted in
// the challenge's unit (workouts, minutes, ...), completion pays out the
// xp reward once.
type Challenge struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Goal        int       `json:"goal"`
	Unit        string    `json:"unit"`
	XPReward    int       `json:"xpReward"`
	StartsAt    time.Time `json:"startsAt"`
	EndsAt      time.Time `json:"endsAt"`
}

type Membership struct {
	UserID      string     `json:"userId"`
	ChallengeID int        `json:"challengeId"`
	Progress    int        `json:"progress"`
	Completed   bool       `json:"completed"`
	JoinedAt    time.Time  `json:"joinedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}
