package interests

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bless15/nacos-admin/internal/platform/db"
	"github.com/bless15/nacos-admin/internal/shared"
)

// RepositoryPort defines data access methods for interest requests.
type RepositoryPort interface {
	List(ctx context.Context) ([]Interest, error)
	Get(ctx context.Context, id int64) (Interest, error)
	Create(ctx context.Context, in Interest) (Interest, error)
	Decide(ctx context.Context, id, actorID int64, status string, at time.Time) (Interest, error)
	CountPending(ctx context.Context) (int, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const interestColumns = `id, organisation, contact_name, contact_email, message, status,
COALESCE(decided_by, 0), COALESCE(decided_at, '0001-01-01'::timestamptz), created_at`

// List returns all interest requests, pending first.
func (r *Repository) List(ctx context.Context) ([]Interest, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+interestColumns+` FROM interests ORDER BY status = 'pending' DESC, created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Interest
	for rows.Next() {
		in, err := scanInterest(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, in)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// Get fetches one interest request.
func (r *Repository) Get(ctx context.Context, id int64) (Interest, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+interestColumns+` FROM interests WHERE id = $1`, id)
	in, err := scanInterest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Interest{}, shared.ErrNotFound
		}
		return Interest{}, err
	}
	return in, nil
}

// Create records a submitted request as pending.
func (r *Repository) Create(ctx context.Context, in Interest) (Interest, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO interests (organisation, contact_name, contact_email, message, status, created_at)
VALUES ($1, $2, $3, $4, 'pending', NOW()) RETURNING `+interestColumns,
		in.Organisation, in.ContactName, in.ContactEmail, in.Message)
	return scanInterest(row)
}

// Decide flips a pending request to approved or rejected, recording the
// decision and its audit trail entry in one transaction.
func (r *Repository) Decide(ctx context.Context, id, actorID int64, status string, at time.Time) (Interest, error) {
	var decided Interest
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx,
			`UPDATE interests SET status = $3, decided_by = $2, decided_at = $4
WHERE id = $1 AND status = 'pending' RETURNING `+interestColumns,
			id, actorID, status, at.UTC())
		in, err := scanInterest(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return shared.ErrNotFound
			}
			return err
		}
		decided = in
		_, err = tx.Exec(ctx,
			`INSERT INTO audit_logs (actor_id, action, entity, entity_id, outcome, meta, occurred_at)
VALUES ($1, 'interest.' || $3::text, 'interest', $2::text, 'success', '{}', $4)`,
			actorID, id, status, at.UTC())
		return err
	})
	if err != nil {
		return Interest{}, err
	}
	return decided, nil
}

// CountPending returns the number of undecided requests.
func (r *Repository) CountPending(ctx context.Context) (int, error) {
	var pending int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM interests WHERE status = 'pending'`).Scan(&pending)
	return pending, err
}

func scanInterest(row pgx.Row) (Interest, error) {
	var in Interest
	err := row.Scan(&in.ID, &in.Organisation, &in.ContactName, &in.ContactEmail, &in.Message,
		&in.Status, &in.DecidedBy, &in.DecidedAt, &in.CreatedAt)
	return in, err
}

var _ RepositoryPort = (*Repository)(nil)
