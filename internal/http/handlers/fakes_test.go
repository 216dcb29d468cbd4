package handlers_test

import (
	"context"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"mediastudio/internal/domain"
	"mediastudio/internal/http/handlers"
	"mediastudio/internal/http/httpapi"
	"mediastudio/internal/storage"
)

type fakeJobService struct {
	submitFn func(ctx context.Context, imageRef, conceptText string, includeMusic bool) (*domain.Job, error)
	getFn    func(ctx context.Context, id string) (*domain.Job, error)
	listFn   func(ctx context.Context) ([]domain.Job, error)
}

func (f *fakeJobService) Submit(ctx context.Context, imageRef, conceptText string, includeMusic bool) (*domain.Job, error) {
	return f.submitFn(ctx, imageRef, conceptText, includeMusic)
}

func (f *fakeJobService) Get(ctx context.Context, id string) (*domain.Job, error) {
	return f.getFn(ctx, id)
}

func (f *fakeJobService) List(ctx context.Context) ([]domain.Job, error) {
	return f.listFn(ctx)
}

type fakeTemplateRepo struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]domain.Template
	err    error
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{items: map[int64]domain.Template{}}
}

func (f *fakeTemplateRepo) Create(_ context.Context, tmpl *domain.Template) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	tmpl.ID = f.nextID
	f.items[tmpl.ID] = *tmpl
	return nil
}

func (f *fakeTemplateRepo) GetByID(_ context.Context, id int64) (*domain.Template, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	tmpl, ok := f.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &tmpl, nil
}

func (f *fakeTemplateRepo) List(_ context.Context) ([]domain.Template, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Template, 0, len(f.items))
	for _, tmpl := range f.items {
		out = append(out, tmpl)
	}
	return out, nil
}

func (f *fakeTemplateRepo) Update(_ context.Context, tmpl *domain.Template) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[tmpl.ID]; !ok {
		return domain.ErrNotFound
	}
	f.items[tmpl.ID] = *tmpl
	return nil
}

func (f *fakeTemplateRepo) Delete(_ context.Context, id int64) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

type storedPut struct {
	key         string
	data        []byte
	contentType string
}

type fakeBlobStore struct {
	mu      sync.Mutex
	puts    []storedPut
	listed  []storage.ObjectInfo
	putErr  error
	listErr error
}

func (f *fakeBlobStore) Put(_ context.Context, key string, data []byte, contentType string) (storage.StoredObject, error) {
	if f.putErr != nil {
		return storage.StoredObject{}, f.putErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts = append(f.puts, storedPut{key: key, data: data, contentType: contentType})
	return storage.StoredObject{
		StoreURI:  "s3://media/" + key,
		PublicURL: "https://cdn.example.com/media/" + key,
	}, nil
}

func (f *fakeBlobStore) List(_ context.Context, _ string) ([]storage.ObjectInfo, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listed, nil
}

func newTestRouter(jobs handlers.JobService, templates domain.TemplateRepository, store storage.BlobStore) http.Handler {
	app := handlers.NewApp(jobs, templates, store, zerolog.Nop(), nil)
	return httpapi.NewRouter(app, httpapi.Options{})
}
