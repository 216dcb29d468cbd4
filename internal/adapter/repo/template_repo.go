package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mediastudio/internal/domain"
)

// TemplateRepositoryPG implements domain.TemplateRepository.
type TemplateRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewTemplateRepository creates a new template repository backed by PostgreSQL.
func NewTemplateRepository(pool *pgxpool.Pool) *TemplateRepositoryPG {
	return &TemplateRepositoryPG{pool: pool}
}

// Create inserts a template and fills in the generated id.
func (r *TemplateRepositoryPG) Create(ctx context.Context, tmpl *domain.Template) error {
	query := `
INSERT INTO templates (name, description, template_text)
VALUES ($1, $2, $3)
RETURNING id, created_at, updated_at;
`
	row := r.pool.QueryRow(ctx, query, tmpl.Name, tmpl.Description, tmpl.TemplateText)
	return row.Scan(&tmpl.ID, &tmpl.CreatedAt, &tmpl.UpdatedAt)
}

// GetByID fetches a template by id.
func (r *TemplateRepositoryPG) GetByID(ctx context.Context, id int64) (*domain.Template, error) {
	query := `
SELECT id, name, description, template_text, created_at, updated_at
FROM templates
WHERE id = $1;
`
	row := r.pool.QueryRow(ctx, query, id)
	var tmpl domain.Template
	if err := row.Scan(&tmpl.ID, &tmpl.Name, &tmpl.Description, &tmpl.TemplateText, &tmpl.CreatedAt, &tmpl.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &tmpl, nil
}

// List returns all templates sorted by name.
func (r *TemplateRepositoryPG) List(ctx context.Context) ([]domain.Template, error) {
	query := `
SELECT id, name, description, template_text, created_at, updated_at
FROM templates
ORDER BY name;
`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []domain.Template
	for rows.Next() {
		var tmpl domain.Template
		if err := rows.Scan(&tmpl.ID, &tmpl.Name, &tmpl.Description, &tmpl.TemplateText, &tmpl.CreatedAt, &tmpl.UpdatedAt); err != nil {
			return nil, err
		}
		templates = append(templates, tmpl)
	}
	return templates, rows.Err()
}

// Update replaces the mutable fields of a template.
func (r *TemplateRepositoryPG) Update(ctx context.Context, tmpl *domain.Template) error {
	query := `
UPDATE templates
SET name = $2, description = $3, template_text = $4, updated_at = NOW()
WHERE id = $1;
`
	tag, err := r.pool.Exec(ctx, query, tmpl.ID, tmpl.Name, tmpl.Description, tmpl.TemplateText)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a template.
func (r *TemplateRepositoryPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM templates WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ domain.TemplateRepository = (*TemplateRepositoryPG)(nil)
