package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"mediastudio/internal/domain"
	"mediastudio/internal/infra"
	"mediastudio/internal/metrics"
)

// Service is the job orchestrator: it validates a generation request,
// prepares the prompts synchronously, persists the queued job, and schedules
// exactly one background run that owns every state transition thereafter.
type Service struct {
	jobs         domain.JobRepository
	refiner      PromptRefiner
	provider     ProviderClient
	poller       *Poller
	materializer *Materializer
	runner       *Runner
	logger       infra.Logger
	metrics      *metrics.Metrics
}

// NewService wires the orchestrator's collaborators.
func NewService(
	jobs domain.JobRepository,
	refiner PromptRefiner,
	provider ProviderClient,
	poller *Poller,
	materializer *Materializer,
	runner *Runner,
	logger infra.Logger,
	m *metrics.Metrics,
) *Service {
	if m == nil {
		m = metrics.New()
	}
	return &Service{
		jobs:         jobs,
		refiner:      refiner,
		provider:     provider,
		poller:       poller,
		materializer: materializer,
		runner:       runner,
		logger:       logger,
		metrics:      m,
	}
}

// Submit validates the request, refines the prompts, persists a queued job
// and schedules its background run. The returned record is valid for lookups
// immediately, before the background run has started.
func (s *Service) Submit(ctx context.Context, imageRef, conceptText string, includeMusic bool) (*domain.Job, error) {
	imageRef = strings.TrimSpace(imageRef)
	conceptText = strings.TrimSpace(conceptText)
	if imageRef == "" {
		return nil, fmt.Errorf("%w: image_ref is required", domain.ErrInvalidInput)
	}
	if conceptText == "" {
		return nil, fmt.Errorf("%w: concept_text is required", domain.ErrInvalidInput)
	}

	refined, err := s.refiner.Refine(ctx, conceptText)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}

	musicPrompt := ""
	if includeMusic {
		musicPrompt, err = s.refiner.MusicPrompt(ctx, refined)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
		}
	}

	now := time.Now().UTC()
	job := &domain.Job{
		ID:              uuid.NewString(),
		Status:          domain.JobStatusQueued,
		RequestImageRef: imageRef,
		RequestPrompt:   refined,
		IncludeMusic:    includeMusic,
		MusicPrompt:     musicPrompt,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	s.metrics.JobsSubmitted.Inc()

	jobID := job.ID
	s.runner.Go(func(ctx context.Context) {
		s.execute(ctx, jobID)
	})

	return job, nil
}

// Get returns the job record for id, or domain.ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*domain.Job, error) {
	return s.jobs.GetByID(ctx, id)
}

// List returns all jobs, newest created first.
func (s *Service) List(ctx context.Context) ([]domain.Job, error) {
	return s.jobs.List(ctx)
}

// execute is the background run for one job. It owns every state transition
// after creation; all failures are captured into the job record, never
// allowed to escape the execution context.
func (s *Service) execute(ctx context.Context, jobID string) {
	log := s.logger.With().Str("job_id", jobID).Logger()
	started := time.Now()

	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.Error().Msg("generation: job record missing at background start, aborting")
		} else {
			log.Error().Err(err).Msg("generation: failed to load job record")
		}
		return
	}

	if err := s.jobs.MarkProcessing(ctx, jobID); err != nil {
		log.Error().Err(err).Msg("generation: failed to mark job processing")
		return
	}
	log.Info().Msg("generation: started")

	artifact, err := s.generate(ctx, job)
	if err != nil {
		s.metrics.JobsFailed.Inc()
		log.Error().Err(err).Msg("generation: failed")
		if markErr := s.jobs.MarkFailed(ctx, jobID, err.Error()); markErr != nil {
			log.Error().Err(markErr).Msg("generation: failed to persist failure")
		}
		return
	}

	if err := s.jobs.MarkCompleted(ctx, jobID, artifact.StoreRef, artifact.PublicURL); err != nil {
		log.Error().Err(err).Msg("generation: failed to persist completion")
		return
	}
	s.metrics.JobsCompleted.Inc()
	s.metrics.GenerationDuration.Observe(time.Since(started).Seconds())
	log.Info().
		Str("result_ref", artifact.StoreRef).
		Dur("took", time.Since(started)).
		Msg("generation: completed")
}

// generate runs the start/poll/extract pipeline. A panic anywhere inside is
// converted into an error so it lands in the job record like any other
// failure.
func (s *Service) generate(ctx context.Context, job *domain.Job) (artifact *Artifact, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			artifact = nil
			err = fmt.Errorf("generation panic: %v", rec)
		}
	}()

	op, err := s.provider.StartVideoGeneration(ctx, job.RequestPrompt, job.RequestImageRef)
	if err != nil {
		return nil, fmt.Errorf("start generation: %w", err)
	}

	last, err := s.poller.Poll(ctx, op)
	if err != nil {
		return nil, fmt.Errorf("poll operation: %w", err)
	}

	return s.materializer.Extract(ctx, last, op)
}
