package users

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

// RepositoryPort defines data access methods for back-office accounts.
type RepositoryPort interface {
	List(ctx context.Context) ([]User, error)
	Get(ctx context.Context, id int64) (User, error)
	Create(ctx context.Context, u User, passwordHash string) (User, error)
	Update(ctx context.Context, u User) (User, error)
	SetPassword(ctx context.Context, id int64, passwordHash string) error
	SetActive(ctx context.Context, id int64, active bool) (User, error)
	ChangeRole(ctx context.Context, id, actorID int64, role shared.Role, at time.Time) (User, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, email, name, role, is_active, created_at, updated_at`

// List returns all accounts ordered by id.
func (r *Repository) List(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM accounts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// Get fetches one account.
func (r *Repository) Get(ctx context.Context, id int64) (User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM accounts WHERE id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

// Create inserts a new account.
func (r *Repository) Create(ctx context.Context, u User, passwordHash string) (User, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO accounts (email, name, password_hash, role, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, true, NOW(), NOW()) RETURNING `+userColumns,
		u.Email, u.Name, passwordHash, string(u.Role))
	created, err := scanUser(row)
	if err != nil {
		return User{}, mapPGError(err)
	}
	return created, nil
}

// Update rewrites name and email.
func (r *Repository) Update(ctx context.Context, u User) (User, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE accounts SET email = $2, name = $3, updated_at = NOW() WHERE id = $1 RETURNING `+userColumns,
		u.ID, u.Email, u.Name)
	updated, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.ErrNotFound
		}
		return User{}, mapPGError(err)
	}
	return updated, nil
}

// SetPassword replaces the stored password hash.
func (r *Repository) SetPassword(ctx context.Context, id int64, passwordHash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE accounts SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SetActive flips the active flag.
func (r *Repository) SetActive(ctx context.Context, id int64, active bool) (User, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE accounts SET is_active = $2, updated_at = NOW() WHERE id = $1 RETURNING `+userColumns,
		id, active)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

// ChangeRole rewrites the role and records the change in the audit trail
// within one transaction.
func (r *Repository) ChangeRole(ctx context.Context, id, actorID int64, role shared.Role, at time.Time) (User, error) {
	var changed User
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx,
			`UPDATE accounts SET role = $2, updated_at = NOW() WHERE id = $1 RETURNING `+userColumns,
			id, string(role))
		u, err := scanUser(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return shared.ErrNotFound
			}
			return err
		}
		changed = u
		_, err = tx.Exec(ctx,
			`INSERT INTO audit_logs (actor_id, action, entity, entity_id, outcome, meta, occurred_at)
VALUES ($1, 'account.role_change', 'account', $2::text, 'success', jsonb_build_object('role', $3::text), $4)`,
			actorID, id, string(role), at.UTC())
		return err
	})
	if err != nil {
		return User{}, err
	}
	return changed, nil
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	var role string
	err := row.Scan(&u.ID, &u.Email, &u.Name, &role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return User{}, err
	}
	parsed, err := shared.ParseRole(role)
	if err != nil {
		return User{}, err
	}
	u.Role = parsed
	return u, nil
}

func mapPGError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return shared.ErrDuplicate
	}
	return err
}

var _ RepositoryPort = (*Repository)(nil)
