package exercises

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"

	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/telemetry/tracing"
)

const (
	cacheSizeBytes       = 10 * 1024 * 1024
	cacheExpireSeconds   = 5 * 60
	exercisesCacheKeyAll = "exercises::all"
)

type exercisesRepo interface {
	List(ctx context.Context) ([]ExerciseInfo, error)
	Get(ctx context.Context, id int) (*ExerciseInfo, error)
	Add(ctx context.Context, e ExerciseInfo) (*ExerciseInfo, error)
	Update(ctx context.Context, e *ExerciseInfo) error
	Delete(ctx context.Context, id int) error
}

// Service fronts the exercise library with an in-process read cache.
// Reads of the whole library dominate, so writes just flush everything.
type Service struct {
	repo  exercisesRepo
	cache *freecache.Cache
}

func NewService(repo exercisesRepo) *Service {
	return &Service{
		repo:  repo,
		cache: freecache.NewCache(cacheSizeBytes),
	}
}

func (s *Service) List(ctx context.Context) (_ []ExerciseInfo, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "exercises.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if cached, cacheErr := s.cache.Get([]byte(exercisesCacheKeyAll)); cacheErr == nil {
		var exercises []ExerciseInfo
		if err := json.Unmarshal(cached, &exercises); err != nil {
			log.Errorf("unmarshal cached exercises: %s", err)
		} else {
			return exercises, nil
		}
	}

	exercises, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	if exercisesJson, err := json.Marshal(exercises); err != nil {
		log.Errorf("marshal exercises for cache: %s", err)
	} else if err := s.cache.Set([]byte(exercisesCacheKeyAll), exercisesJson, cacheExpireSeconds); err != nil {
		log.Errorf("cache exercises: %s", err)
	}

	return exercises, nil
}

func (s *Service) Get(ctx context.Context, id int) (_ *ExerciseInfo, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "exercises.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	key := []byte(fmt.Sprintf("exercises::%d", id))
	if cached, cacheErr := s.cache.Get(key); cacheErr == nil {
		var exercise ExerciseInfo
		if unmarshalErr := json.Unmarshal(cached, &exercise); unmarshalErr == nil {
			return &exercise, nil
		}
	}

	exercise, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if exerciseJson, err := json.Marshal(exercise); err == nil {
		if err := s.cache.Set(key, exerciseJson, cacheExpireSeconds); err != nil {
			log.Errorf("cache exercise %d: %s", id, err)
		}
	}

	return exercise, nil
}

func (s *Service) Add(ctx context.Context, e ExerciseInfo) (*ExerciseInfo, error) {
	added, err := s.repo.Add(ctx, e)
	if err != nil {
		return nil, err
	}
	s.cache.Clear()
	return added, nil
}

func (s *Service) Update(ctx context.Context, e *ExerciseInfo) error {
	if err := s.repo.Update(ctx, e); err != nil {
		return err
	}
	s.cache.Clear()
	return nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Clear()
	return nil
}
