package resources

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bless15/nacos-admin/internal/shared"
)

// RepositoryPort defines data access methods for resources.
type RepositoryPort interface {
	List(ctx context.Context) ([]Resource, error)
	Get(ctx context.Context, id int64) (Resource, error)
	Create(ctx context.Context, res Resource) (Resource, error)
	Delete(ctx context.Context, id int64) (Resource, error)
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

const resourceColumns = `id, title, description, stored_name, original_name, size_bytes, uploaded_by, created_at`

// List returns all resources, newest first.
func (r *Repository) List(ctx context.Context) ([]Resource, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+resourceColumns+` FROM resources ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Resource
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// Get fetches one resource.
func (r *Repository) Get(ctx context.Context, id int64) (Resource, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+resourceColumns+` FROM resources WHERE id = $1`, id)
	res, err := scanResource(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Resource{}, shared.ErrNotFound
		}
		return Resource{}, err
	}
	return res, nil
}

// Create inserts a new resource record.
func (r *Repository) Create(ctx context.Context, res Resource) (Resource, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO resources (title, description, stored_name, original_name, size_bytes, uploaded_by, created_at)
VALUES ($1, $2, $3, $4, $5, $6, NOW()) RETURNING `+resourceColumns,
		res.Title, res.Description, res.StoredName, res.OriginalName, res.SizeBytes, res.UploadedBy)
	return scanResource(row)
}

// Delete removes a resource record and returns it so the caller can unlink
// the stored file.
func (r *Repository) Delete(ctx context.Context, id int64) (Resource, error) {
	row := r.pool.QueryRow(ctx, `DELETE FROM resources WHERE id = $1 RETURNING `+resourceColumns, id)
	res, err := scanResource(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Resource{}, shared.ErrNotFound
		}
		return Resource{}, err
	}
	return res, nil
}

// Count returns the number of resources.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM resources`).Scan(&total)
	return total, err
}

func scanResource(row pgx.Row) (Resource, error) {
	var res Resource
	err := row.Scan(&res.ID, &res.Title, &res.Description, &res.StoredName, &res.OriginalName,
		&res.SizeBytes, &res.UploadedBy, &res.CreatedAt)
	return res, err
}

var _ RepositoryPort = (*Repository)(nil)
