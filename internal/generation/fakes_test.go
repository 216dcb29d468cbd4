package generation

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"mediastudio/internal/domain"
	"mediastudio/internal/providers/genai"
	"mediastudio/internal/storage"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

type fakeProvider struct {
	mu           sync.Mutex
	startErr     error
	startedOps   []string
	states       []*genai.OperationState
	stateErrs    []error
	polls        []string
	downloads    []string
	downloadData []byte
	downloadErr  error
}

func (f *fakeProvider) StartVideoGeneration(ctx context.Context, prompt, imageRef string) (*genai.Operation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return nil, f.startErr
	}
	f.startedOps = append(f.startedOps, prompt)
	return &genai.Operation{Name: "operations/test-op"}, nil
}

func (f *fakeProvider) GetOperation(ctx context.Context, op *genai.Operation) (*genai.OperationState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if op == nil || op.Name == "" {
		return nil, genai.ErrStaleHandle
	}
	f.polls = append(f.polls, op.Name)
	idx := len(f.polls) - 1
	if idx < len(f.stateErrs) && f.stateErrs[idx] != nil {
		return nil, f.stateErrs[idx]
	}
	if idx >= len(f.states) {
		idx = len(f.states) - 1
	}
	if idx < 0 {
		return &genai.OperationState{Handle: op}, nil
	}
	return f.states[idx], nil
}

func (f *fakeProvider) DownloadVideo(ctx context.Context, uri string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.downloads = append(f.downloads, uri)
	if f.downloadErr != nil {
		return nil, f.downloadErr
	}
	return f.downloadData, nil
}

type fakeStore struct {
	mu      sync.Mutex
	puts    []string
	data    [][]byte
	putErr  error
	baseURL string
}

func (f *fakeStore) Put(ctx context.Context, key string, data []byte, contentType string) (storage.StoredObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return storage.StoredObject{}, f.putErr
	}
	f.puts = append(f.puts, key)
	f.data = append(f.data, data)
	base := f.baseURL
	if base == "" {
		base = "https://cdn.test"
	}
	return storage.StoredObject{
		StoreURI:  "s3://test-bucket/" + key,
		PublicURL: base + "/" + key,
	}, nil
}

func (f *fakeStore) List(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	return nil, nil
}

func (f *fakeStore) putCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.puts)
}

type fakeJobRepo struct {
	mu   sync.Mutex
	jobs map[string]*domain.Job
	// done receives one token per terminal transition, so tests can wait on
	// a background run without sleeping.
	done chan struct{}
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{
		jobs: make(map[string]*domain.Job),
		done: make(chan struct{}, 16),
	}
}

func (f *fakeJobRepo) signalTerminal() {
	select {
	case f.done <- struct{}{}:
	default:
	}
}

func (f *fakeJobRepo) Create(ctx context.Context, job *domain.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *job
	f.jobs[job.ID] = &copied
	return nil
}

func (f *fakeJobRepo) GetByID(ctx context.Context, jobID string) (*domain.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *job
	return &copied, nil
}

func (f *fakeJobRepo) List(ctx context.Context) ([]domain.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var jobs []domain.Job
	for _, job := range f.jobs {
		jobs = append(jobs, *job)
	}
	return jobs, nil
}

func (f *fakeJobRepo) MarkProcessing(ctx context.Context, jobID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[jobID]
	if !ok {
		return domain.ErrNotFound
	}
	job.Status = domain.JobStatusProcessing
	return nil
}

func (f *fakeJobRepo) MarkCompleted(ctx context.Context, jobID, resultRef, resultPublicURL string) error {
	f.mu.Lock()
	job, ok := f.jobs[jobID]
	if !ok {
		f.mu.Unlock()
		return domain.ErrNotFound
	}
	job.Status = domain.JobStatusCompleted
	job.ResultRef = resultRef
	job.ResultPublicURL = resultPublicURL
	f.mu.Unlock()
	f.signalTerminal()
	return nil
}

func (f *fakeJobRepo) MarkFailed(ctx context.Context, jobID, errMsg string) error {
	f.mu.Lock()
	job, ok := f.jobs[jobID]
	if !ok {
		f.mu.Unlock()
		return domain.ErrNotFound
	}
	job.Status = domain.JobStatusFailed
	job.ErrorMessage = errMsg
	f.mu.Unlock()
	f.signalTerminal()
	return nil
}

type fakeRefiner struct {
	refined     string
	refineErr   error
	musicPrompt string
	musicErr    error
}

func (f *fakeRefiner) Refine(ctx context.Context, concept string) (string, error) {
	if f.refineErr != nil {
		return "", f.refineErr
	}
	if f.refined != "" {
		return f.refined, nil
	}
	return "refined: " + concept, nil
}

func (f *fakeRefiner) MusicPrompt(ctx context.Context, videoPrompt string) (string, error) {
	if f.musicErr != nil {
		return "", f.musicErr
	}
	if f.musicPrompt != "" {
		return f.musicPrompt, nil
	}
	return "music for: " + videoPrompt, nil
}

var errBoom = errors.New("boom")
