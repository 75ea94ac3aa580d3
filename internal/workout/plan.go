package workout

import "fmt"

var ErrUnknownPlan = fmt.Errorf("unknown workout plan")

// ExerciseDefinition is immutable once a workout starts.
type ExerciseDefinition struct {
	Name        string `json:"name"`
	WorkSeconds int    `json:"workSeconds"`
	RestSeconds int    `json:"restSeconds"`
}

// ExerciseState is the runtime counterpart of an exercise definition,
// array order is execution order.
type ExerciseState struct {
	ExerciseDefinition
	Completed bool `json:"completed"`
}

type Plan struct {
	Type              string               `json:"type"`
	Title             string               `json:"title"`
	CaloriesPerMinute float64              `json:"caloriesPerMinute"`
	Exercises         []ExerciseDefinition `json:"exercises"`
}

func (p Plan) DurationSeconds() int {
	var total int
	for _, ex := range p.Exercises {
		total += ex.WorkSeconds + ex.RestSeconds
	}
	return total
}

// DurationMinutes rounds up, a started minute counts as a whole one.
func (p Plan) DurationMinutes() int {
	return (p.DurationSeconds() + 59) / 60
}

func (p Plan) CaloriesBurned(durationSeconds int) int {
	return int(float64(durationSeconds) / 60.0 * p.CaloriesPerMinute)
}

func (p Plan) newExerciseStates() []ExerciseState {
	states := make([]ExerciseState, len(p.Exercises))
	for i, ex := range p.Exercises {
		states[i] = ExerciseState{ExerciseDefinition: ex}
	}
	return states
}

// DefaultPlans are the built-in workout plans, keyed by workout type.
var DefaultPlans = map[string]Plan{
	"quick-hiit": {
		Type:              "quick-hiit",
		Title:             "Quick HIIT Blast",
		CaloriesPerMinute: 12,
		Exercises: []ExerciseDefinition{
			{Name: "Jumping Jacks", WorkSeconds: 45, RestSeconds: 15},
			{Name: "High Knees", WorkSeconds: 45, RestSeconds: 15},
			{Name: "Burpees", WorkSeconds: 30, RestSeconds: 30},
			{Name: "Mountain Climbers", WorkSeconds: 45, RestSeconds: 15},
			{Name: "Squat Jumps", WorkSeconds: 30, RestSeconds: 30},
		},
	},
	"full-body-strength": {
		Type:              "full-body-strength",
		Title:             "Full Body Strength",
		CaloriesPerMinute: 8,
		Exercises: []ExerciseDefinition{
			{Name: "Push Ups", WorkSeconds: 40, RestSeconds: 20},
			{Name: "Bodyweight Squats", WorkSeconds: 40, RestSeconds: 20},
			{Name: "Plank", WorkSeconds: 60, RestSeconds: 30},
			{Name: "Lunges", WorkSeconds: 40, RestSeconds: 20},
			{Name: "Glute Bridges", WorkSeconds: 40, RestSeconds: 20},
			{Name: "Superman Hold", WorkSeconds: 30, RestSeconds: 30},
		},
	},
	"steady-cardio": {
		Type:              "steady-cardio",
		Title:             "Steady Cardio",
		CaloriesPerMinute: 10,
		Exercises: []ExerciseDefinition{
			{Name: "March In Place", WorkSeconds: 60, RestSeconds: 15},
			{Name: "Step Touch", WorkSeconds: 60, RestSeconds: 15},
			{Name: "Butt Kicks", WorkSeconds: 45, RestSeconds: 15},
			{Name: "Side Shuffles", WorkSeconds: 45, RestSeconds: 15},
			{Name: "Jump Rope", WorkSeconds: 60, RestSeconds: 30},
		},
	},
	"evening-stretch": {
		Type:              "evening-stretch",
		Title:             "Evening Stretch",
		CaloriesPerMinute: 3,
		Exercises: []ExerciseDefinition{
			{Name: "Neck Rolls", WorkSeconds: 30, RestSeconds: 5},
			{Name: "Shoulder Stretch", WorkSeconds: 30, RestSeconds: 5},
			{Name: "Hamstring Stretch", WorkSeconds: 45, RestSeconds: 5},
			{Name: "Hip Flexor Stretch", WorkSeconds: 45, RestSeconds: 5},
			{Name: "Child Pose", WorkSeconds: 60, RestSeconds: 5},
		},
	},
}

func PlanForType(workoutType string) (Plan, error) {
	plan, ok := DefaultPlans[workoutType]
	if !ok {
		return Plan{}, fmt.Errorf("%w: %s", ErrUnknownPlan, workoutType)
	}
	return plan, nil
}
