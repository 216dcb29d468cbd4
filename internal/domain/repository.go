package domain

import "context"

// JobRepository defines persistence for job entities. Each job id has a
// single writer after creation, so the update methods do not need to guard
// against concurrent writers beyond the store's own per-call atomicity.
type JobRepository interface {
	Create(ctx context.Context, job *Job) error
	GetByID(ctx context.Context, jobID string) (*Job, error)
	List(ctx context.Context) ([]Job, error)
	MarkProcessing(ctx context.Context, jobID string) error
	MarkCompleted(ctx context.Context, jobID, resultRef, resultPublicURL string) error
	MarkFailed(ctx context.Context, jobID, errMsg string) error
}

// TemplateRepository defines persistence for prompt templates.
type TemplateRepository interface {
	Create(ctx context.Context, tmpl *Template) error
	GetByID(ctx context.Context, id int64) (*Template, error)
	List(ctx context.Context) ([]Template, error)
	Update(ctx context.Context, tmpl *Template) error
	Delete(ctx context.Context, id int64) error
}
