package members

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bless15/nacos-admin/internal/platform/db"
	"github.com/bless15/nacos-admin/internal/shared"
)

// RepositoryPort defines data access methods for members.
type RepositoryPort interface {
	List(ctx context.Context, filters ListFilters) ([]Member, int, error)
	Get(ctx context.Context, id int64) (Member, error)
	Create(ctx context.Context, m Member) (Member, error)
	Update(ctx context.Context, m Member) (Member, error)
	Delete(ctx context.Context, id int64) error
	Approve(ctx context.Context, id, approverID int64, at time.Time) (Member, error)
	Count(ctx context.Context) (int, int, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const memberColumns = `id, full_name, email, matric_number, level, approved,
COALESCE(approved_by, 0), COALESCE(approved_at, '0001-01-01'::timestamptz), created_at, updated_at`

// List returns a page of members with the total matching count.
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]Member, int, error) {
	page := shared.NewPagination(filters.Page, filters.PerPage, 0)
	search := "%" + filters.Search + "%"

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM members WHERE full_name ILIKE $1 OR email ILIKE $1 OR matric_number ILIKE $1`,
		search).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+memberColumns+` FROM members
WHERE full_name ILIKE $1 OR email ILIKE $1 OR matric_number ILIKE $1
ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		search, page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// Get fetches a single member.
func (r *Repository) Get(ctx context.Context, id int64) (Member, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+memberColumns+` FROM members WHERE id = $1`, id)
	m, err := scanMember(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Member{}, shared.ErrNotFound
		}
		return Member{}, err
	}
	return m, nil
}

// Create inserts a new member record.
func (r *Repository) Create(ctx context.Context, m Member) (Member, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO members (full_name, email, matric_number, level, approved, created_at, updated_at)
VALUES ($1, $2, $3, $4, false, NOW(), NOW()) RETURNING `+memberColumns,
		m.FullName, m.Email, m.MatricNumber, m.Level)
	created, err := scanMember(row)
	if err != nil {
		return Member{}, mapPGError(err)
	}
	return created, nil
}

// Update rewrites mutable member fields.
func (r *Repository) Update(ctx context.Context, m Member) (Member, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE members SET full_name = $2, email = $3, matric_number = $4, level = $5, updated_at = NOW()
WHERE id = $1 RETURNING `+memberColumns,
		m.ID, m.FullName, m.Email, m.MatricNumber, m.Level)
	updated, err := scanMember(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Member{}, shared.ErrNotFound
		}
		return Member{}, mapPGError(err)
	}
	return updated, nil
}

// Delete removes a member.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM members WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Approve flips the approval flag and records the approver atomically with
// the audit trail entry.
func (r *Repository) Approve(ctx context.Context, id, approverID int64, at time.Time) (Member, error) {
	var approved Member
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx,
			`UPDATE members SET approved = true, approved_by = $2, approved_at = $3, updated_at = NOW()
WHERE id = $1 AND approved = false RETURNING `+memberColumns,
			id, approverID, at.UTC())
		m, err := scanMember(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return shared.ErrNotFound
			}
			return err
		}
		approved = m
		_, err = tx.Exec(ctx,
			`INSERT INTO audit_logs (actor_id, action, entity, entity_id, outcome, meta, occurred_at)
VALUES ($1, 'member.approve', 'member', $2::text, 'success', '{}', $3)`,
			approverID, id, at.UTC())
		return err
	})
	if err != nil {
		return Member{}, err
	}
	return approved, nil
}

// Count returns total and pending member counts for the dashboard.
func (r *Repository) Count(ctx context.Context) (int, int, error) {
	var total, pending int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE NOT approved) FROM members`).Scan(&total, &pending)
	return total, pending, err
}

func scanMember(row pgx.Row) (Member, error) {
	var m Member
	err := row.Scan(&m.ID, &m.FullName, &m.Email, &m.MatricNumber, &m.Level,
		&m.Approved, &m.ApprovedBy, &m.ApprovedAt, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

func mapPGError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return shared.ErrDuplicate
	}
	return err
}

var _ RepositoryPort = (*Repository)(nil)
