package exercises

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/liftlog/internal/telemetry/tracing"
)

const (
	oneHour             = 60 * 60
	exerciseCacheExpire = oneHour * 12 // catalog rarely changes
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=exercises_test

type exercisesRepo interface {
	Add(ctx context.Context, exercise Exercise) (*Exercise, error)
	Get(ctx context.Context, id int) (*Exercise, error)
	GetBySlug(ctx context.Context, slug string) (*Exercise, error)
	List(ctx context.Context, params ListParams) ([]Exercise, error)
	Update(ctx context.Context, exercise *Exercise) error
	Delete(ctx context.Context, id int) error
}

// Service fronts the exercise repo with an in-memory cache. The catalog is
// read on every workout screen, so reads are served from cache and any
// write drops the whole cache (it is small and rebuilt on demand).
type Service struct {
	repo  exercisesRepo
	cache *freecache.Cache
}

func NewService(repo exercisesRepo) *Service {
	megabyte := 1024 * 1024
	cacheSize := 10 * megabyte
	return &Service{
		repo:  repo,
		cache: freecache.NewCache(cacheSize),
	}
}

func (s *Service) Get(ctx context.Context, id int) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "exercises.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	cacheKey := fmt.Sprintf("exercise::%d", id)
	if exerciseBytes, err := s.cache.Get([]byte(cacheKey)); err == nil {
		var exercise Exercise
		if err = json.Unmarshal(exerciseBytes, &exercise); err == nil {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return &exercise, nil
		}
		log.Errorf("failed to unmarshal exercise %d from cache: %s", id, err)
	}

	exercise, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cacheSet(cacheKey, exercise)
	return exercise, nil
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "exercises.getBySlug")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("slug", slug))

	cacheKey := "exercise-slug::" + slug
	if exerciseBytes, err := s.cache.Get([]byte(cacheKey)); err == nil {
		var exercise Exercise
		if err = json.Unmarshal(exerciseBytes, &exercise); err == nil {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return &exercise, nil
		}
		log.Errorf("failed to unmarshal exercise [%s] from cache: %s", slug, err)
	}

	exercise, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	s.cacheSet(cacheKey, exercise)
	return exercise, nil
}

func (s *Service) List(ctx context.Context, params ListParams) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "exercises.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	cacheKey := fmt.Sprintf("exercises::%s::%s::%s", params.MuscleGroup, params.Equipment, params.Difficulty)
	if listBytes, err := s.cache.Get([]byte(cacheKey)); err == nil {
		var exercises []Exercise
		if err = json.Unmarshal(listBytes, &exercises); err == nil {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return exercises, nil
		}
		log.Errorf("failed to unmarshal exercises list from cache: %s", err)
	}

	exercises, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	s.cacheSet(cacheKey, exercises)
	return exercises, nil
}

func (s *Service) Add(ctx context.Context, exercise Exercise) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "exercises.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	added, err := s.repo.Add(ctx, exercise)
	if err != nil {
		return nil, err
	}
	s.cache.Clear()
	return added, nil
}

func (s *Service) Update(ctx context.Context, exercise *Exercise) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "exercises.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := s.repo.Update(ctx, exercise); err != nil {
		return err
	}
	s.cache.Clear()
	return nil
}

func (s *Service) Delete(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "exercises.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Clear()
	return nil
}

func (s *Service) cacheSet(key string, value any) {
	valueBytes, err := json.Marshal(value)
	if err != nil {
		log.Errorf("failed to marshal cache value for [%s]: %s", key, err)
		return
	}
	if err := s.cache.Set([]byte(key), valueBytes, exerciseCacheExpire); err != nil {
		log.Errorf("failed to write exercise cache for [%s]: %s", key, err)
	}
}
