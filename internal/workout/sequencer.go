package workout

// sequencer tracks which exercise is active and whether the active slot
// is in its work phase or its rest phase. It is not safe for concurrent
// use, the owning tracker serializes access.
type sequencer struct {
	exercises []ExerciseState
	index     int
	resting   bool
}

func newSequencer(plan Plan) *sequencer {
	return &sequencer{
		exercises: plan.newExerciseStates(),
	}
}

// activeSegmentSeconds is the configured duration of the segment the
// cursor currently sits on.
func (s *sequencer) activeSegmentSeconds() int {
	ex := s.exercises[s.index]
	if s.resting {
		return ex.RestSeconds
	}
	return ex.WorkSeconds
}

// advance moves the cursor past the segment that just finished. At the
// end of a work phase the exercise is marked completed and the cursor
// flips to resting on the same slot. At the end of a rest phase the
// cursor moves to the next exercise, or reports plan exhaustion when
// there is none. A zero-rest exercise still burns one tick in the
// resting phase before advancing.
func (s *sequencer) advance() (exhausted bool) {
	s.exercises[s.index].Completed = true
	if !s.resting {
		s.resting = true
		return false
	}
	if s.index == len(s.exercises)-1 {
		return true
	}
	s.index++
	s.resting = false
	return false
}

func (s *sequencer) restore(index int, resting bool, completed []bool) {
	if index >= 0 && index < len(s.exercises) {
		s.index = index
	}
	s.resting = resting
	for i := range s.exercises {
		if i < len(completed) {
			s.exercises[i].Completed = completed[i]
		}
	}
}

func (s *sequencer) exerciseStates() []ExerciseState {
	states := make([]ExerciseState, len(s.exercises))
	copy(states, s.exercises)
	return states
}
