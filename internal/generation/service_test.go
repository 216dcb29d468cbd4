package generation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"mediastudio/internal/domain"
	"mediastudio/internal/providers/genai"
)

func newTestService(t *testing.T, repo *fakeJobRepo, refiner *fakeRefiner, provider *fakeProvider, store *fakeStore) *Service {
	t.Helper()
	logger := testLogger()
	runner := NewRunner(context.Background(), 2, logger)
	poller := NewPoller(provider, time.Millisecond, 50*time.Millisecond, logger, nil)
	materializer := NewMaterializer(provider, store, logger)
	return NewService(repo, refiner, provider, poller, materializer, runner, logger, nil)
}

func waitTerminal(t *testing.T, repo *fakeJobRepo) {
	t.Helper()
	select {
	case <-repo.done:
	case <-time.After(2 * time.Second):
		t.Fatal("background run did not reach a terminal state")
	}
}

func TestSubmitReturnsQueuedJob(t *testing.T) {
	repo := newFakeJobRepo()
	provider := &fakeProvider{
		states: []*genai.OperationState{
			{Done: true, Videos: []genai.Video{{Data: []byte("clip")}}},
		},
	}
	service := newTestService(t, repo, &fakeRefiner{refined: "a cinematic cat on a skateboard"}, provider, &fakeStore{})

	job, err := service.Submit(context.Background(), "gs://bucket/a.png", "a cat on a skateboard", false)
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if job.ID == "" {
		t.Fatal("job id not assigned")
	}
	if job.Status != domain.JobStatusQueued {
		t.Fatalf("status = %q, want queued", job.Status)
	}
	if job.IncludeMusic {
		t.Fatal("include_music should be false")
	}
	if job.MusicPrompt != "" {
		t.Fatalf("music prompt = %q, want absent", job.MusicPrompt)
	}
	if job.RequestPrompt != "a cinematic cat on a skateboard" {
		t.Fatalf("persisted prompt = %q, want the refined text", job.RequestPrompt)
	}

	stored, err := service.Get(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("Get after Submit returned error: %v", err)
	}
	if stored.ID != job.ID {
		t.Fatalf("lookup returned id %q, want %q", stored.ID, job.ID)
	}
	waitTerminal(t, repo)
}

func TestSubmitUniqueIDs(t *testing.T) {
	repo := newFakeJobRepo()
	provider := &fakeProvider{
		states: []*genai.OperationState{
			{Done: true, Videos: []genai.Video{{Data: []byte("clip")}}},
		},
	}
	service := newTestService(t, repo, &fakeRefiner{}, provider, &fakeStore{})

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		job, err := service.Submit(context.Background(), "gs://bucket/a.png", "concept", false)
		if err != nil {
			t.Fatalf("Submit #%d returned error: %v", i, err)
		}
		if seen[job.ID] {
			t.Fatalf("duplicate job id %q", job.ID)
		}
		seen[job.ID] = true
	}
}

func TestSubmitWithMusicPopulatesPromptSynchronously(t *testing.T) {
	repo := newFakeJobRepo()
	provider := &fakeProvider{
		states: []*genai.OperationState{
			{Done: true, Videos: []genai.Video{{Data: []byte("clip")}}},
		},
	}
	refiner := &fakeRefiner{refined: "refined", musicPrompt: "ambient piano, 90 bpm"}
	service := newTestService(t, repo, refiner, provider, &fakeStore{})

	job, err := service.Submit(context.Background(), "gs://bucket/a.png", "concept", true)
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if !job.IncludeMusic {
		t.Fatal("include_music should be true")
	}
	if job.MusicPrompt != "ambient piano, 90 bpm" {
		t.Fatalf("music prompt = %q, want populated at creation", job.MusicPrompt)
	}
	waitTerminal(t, repo)
}

func TestSubmitRejectsEmptyConcept(t *testing.T) {
	repo := newFakeJobRepo()
	service := newTestService(t, repo, &fakeRefiner{}, &fakeProvider{}, &fakeStore{})

	_, err := service.Submit(context.Background(), "gs://bucket/a.png", "", false)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	jobs, _ := service.List(context.Background())
	if len(jobs) != 0 {
		t.Fatalf("jobs persisted = %d, want 0 after rejected submit", len(jobs))
	}
}

func TestSubmitRejectsEmptyImageRef(t *testing.T) {
	repo := newFakeJobRepo()
	service := newTestService(t, repo, &fakeRefiner{}, &fakeProvider{}, &fakeStore{})

	_, err := service.Submit(context.Background(), "  ", "concept", false)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestSubmitPreparationFailureLeavesNoTrace(t *testing.T) {
	repo := newFakeJobRepo()
	service := newTestService(t, repo, &fakeRefiner{refineErr: errBoom}, &fakeProvider{}, &fakeStore{})

	_, err := service.Submit(context.Background(), "gs://bucket/a.png", "concept", false)
	if !errors.Is(err, domain.ErrProviderFailure) {
		t.Fatalf("err = %v, want ErrProviderFailure", err)
	}
	jobs, _ := service.List(context.Background())
	if len(jobs) != 0 {
		t.Fatalf("jobs persisted = %d, want 0 after preparation failure", len(jobs))
	}
}

func TestBackgroundRunCompletesJob(t *testing.T) {
	repo := newFakeJobRepo()
	provider := &fakeProvider{
		states: []*genai.OperationState{
			{Done: true, Videos: []genai.Video{{Data: []byte("clip")}}},
		},
	}
	store := &fakeStore{}
	service := newTestService(t, repo, &fakeRefiner{}, provider, store)

	job, err := service.Submit(context.Background(), "gs://bucket/a.png", "concept", false)
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	waitTerminal(t, repo)

	final, err := service.Get(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if final.Status != domain.JobStatusCompleted {
		t.Fatalf("status = %q, want completed (error: %q)", final.Status, final.ErrorMessage)
	}
	if store.putCount() != 1 {
		t.Fatalf("store writes = %d, want exactly 1", store.putCount())
	}
	if !strings.Contains(final.ResultRef, "generated_videos/") {
		t.Fatalf("result_ref = %q, want generated_videos/ key", final.ResultRef)
	}
	if final.ResultPublicURL == "" {
		t.Fatal("result_public_url not populated")
	}
	if final.ErrorMessage != "" {
		t.Fatalf("completed job carries error message %q", final.ErrorMessage)
	}
}

func TestBackgroundRunFailsWithoutResult(t *testing.T) {
	// Poller never sees a done signal inside the window and the final
	// extraction attempt finds no generated videos.
	pending := &genai.OperationState{Handle: &genai.Operation{Name: "operations/test-op"}}
	provider := &fakeProvider{states: []*genai.OperationState{pending}}
	store := &fakeStore{}
	repo := newFakeJobRepo()
	service := newTestService(t, repo, &fakeRefiner{}, provider, store)

	job, err := service.Submit(context.Background(), "gs://bucket/a.png", "concept", false)
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	waitTerminal(t, repo)

	final, err := service.Get(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if final.Status != domain.JobStatusFailed {
		t.Fatalf("status = %q, want failed", final.Status)
	}
	if !strings.Contains(final.ErrorMessage, "no result found") {
		t.Fatalf("error message = %q, want mention of missing result", final.ErrorMessage)
	}
	if store.putCount() != 0 {
		t.Fatalf("store writes = %d, want 0", store.putCount())
	}
	if final.ResultRef != "" || final.ResultPublicURL != "" {
		t.Fatal("failed job must not carry result references")
	}
}

func TestBackgroundRunRecordsProviderStartFailure(t *testing.T) {
	provider := &fakeProvider{startErr: errBoom}
	repo := newFakeJobRepo()
	service := newTestService(t, repo, &fakeRefiner{}, provider, &fakeStore{})

	job, err := service.Submit(context.Background(), "gs://bucket/a.png", "concept", false)
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	waitTerminal(t, repo)

	final, _ := service.Get(context.Background(), job.ID)
	if final.Status != domain.JobStatusFailed {
		t.Fatalf("status = %q, want failed", final.Status)
	}
	if !strings.Contains(final.ErrorMessage, "start generation") {
		t.Fatalf("error message = %q, want start generation context", final.ErrorMessage)
	}
}

func TestGetUnknownJob(t *testing.T) {
	repo := newFakeJobRepo()
	service := newTestService(t, repo, &fakeRefiner{}, &fakeProvider{}, &fakeStore{})

	_, err := service.Get(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
