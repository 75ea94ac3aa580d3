package workout

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const exerciseStateBlobVersion = 1

var ErrUnknownSnapshotVersion = errors.New("unknown snapshot version")

// Snapshot is a persisted point-in-time copy of workout progress. Every
// save is a new row, rows of one session share the session id.
type Snapshot struct {
	ID                    int             `json:"id"`
	SessionID             string          `json:"sessionId"`
	UserID                string          `json:"userId"`
	WorkoutType           string          `json:"workoutType"`
	CurrentExerciseIndex  int             `json:"currentExerciseIndex"`
	SegmentElapsedSeconds int             `json:"segmentElapsedSeconds"`
	IsResting             bool            `json:"isResting"`
	TotalElapsedSeconds   int             `json:"totalElapsedSeconds"`
	ExerciseState         []ExerciseState `json:"exerciseState"`
	IsCompleted           bool            `json:"isCompleted"`
	CreatedAt             time.Time       `json:"createdAt"`
}

type CompletedWorkout struct {
	ID              int             `json:"id"`
	UserID          string          `json:"userId"`
	SessionID       string          `json:"sessionId"`
	WorkoutType     string          `json:"workoutType"`
	DurationSeconds int             `json:"durationSeconds"`
	CaloriesBurned  int             `json:"caloriesBurned"`
	ExerciseData    []ExerciseState `json:"exerciseData"`
	Notes           string          `json:"notes"`
	CompletedAt     time.Time       `json:"completedAt"`
}

// exerciseStateBlob is the tagged wire form of the exercise list stored
// in snapshot and completed-workout rows.
type exerciseStateBlob struct {
	Version   int             `json:"version"`
	Exercises []ExerciseState `json:"exercises"`
}

func marshalExerciseState(states []ExerciseState) ([]byte, error) {
	blob, err := json.Marshal(exerciseStateBlob{
		Version:   exerciseStateBlobVersion,
		Exercises: states,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal exercise state: %w", err)
	}
	return blob, nil
}

func unmarshalExerciseState(data []byte) ([]ExerciseState, error) {
	var blob exerciseStateBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		return nil, fmt.Errorf("unmarshal exercise state: %w", err)
	}
	if blob.Version != exerciseStateBlobVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSnapshotVersion, blob.Version)
	}
	return blob.Exercises, nil
}
