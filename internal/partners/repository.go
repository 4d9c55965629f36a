package partners

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bless15/nacos-admin/internal/shared"
)

// RepositoryPort defines data access methods for partners.
type RepositoryPort interface {
	List(ctx context.Context) ([]Partner, error)
	Get(ctx context.Context, id int64) (Partner, error)
	Create(ctx context.Context, p Partner) (Partner, error)
	Update(ctx context.Context, p Partner) (Partner, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const partnerColumns = `id, name, website, contact_email, blurb, created_at, updated_at`

// List returns all partners ordered by name.
func (r *Repository) List(ctx context.Context) ([]Partner, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+partnerColumns+` FROM partners ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Partner
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// Get fetches one partner.
func (r *Repository) Get(ctx context.Context, id int64) (Partner, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+partnerColumns+` FROM partners WHERE id = $1`, id)
	p, err := scanPartner(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Partner{}, shared.ErrNotFound
		}
		return Partner{}, err
	}
	return p, nil
}

// Create inserts a new partner.
func (r *Repository) Create(ctx context.Context, p Partner) (Partner, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO partners (name, website, contact_email, blurb, created_at, updated_at)
VALUES ($1, $2, $3, $4, NOW(), NOW()) RETURNING `+partnerColumns,
		p.Name, p.Website, p.ContactEmail, p.Blurb)
	return scanPartner(row)
}

// Update rewrites a partner.
func (r *Repository) Update(ctx context.Context, p Partner) (Partner, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE partners SET name = $2, website = $3, contact_email = $4, blurb = $5, updated_at = NOW()
WHERE id = $1 RETURNING `+partnerColumns,
		p.ID, p.Name, p.Website, p.ContactEmail, p.Blurb)
	updated, err := scanPartner(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Partner{}, shared.ErrNotFound
		}
		return Partner{}, err
	}
	return updated, nil
}

// Delete removes a partner.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM partners WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count returns the number of partners.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM partners`).Scan(&total)
	return total, err
}

func scanPartner(row pgx.Row) (Partner, error) {
	var p Partner
	err := row.Scan(&p.ID, &p.Name, &p.Website, &p.ContactEmail, &p.Blurb, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

var _ RepositoryPort = (*Repository)(nil)
