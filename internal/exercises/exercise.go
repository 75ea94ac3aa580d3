package exercises

import "errors"

var ErrExerciseNotFound = errors.New("exercise not found")

// ExerciseInfo is a library entry describing one exercise, independent
// of any workout plan.
type ExerciseInfo struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	MuscleGroup  string `json:"muscleGroup"`
	Difficulty   string `json:"difficulty"`
	DemoVideoURL string `json:"demoVideoUrl"`
}
