package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"userhub/internal/domain/entity"
	"userhub/internal/domain/repository"
)

// NewPool connects a pgx pool and verifies it with a ping.
func NewPool(ctx context.Context, dsn string, maxConns, minConns int32, maxConnLife time.Duration) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.MaxConns = maxConns
	cfg.MinConns = minConns
	cfg.MaxConnLifetime = maxConnLife
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// sortColumns maps entity attribute names to table columns. Anything
// outside this map is rejected before it reaches the query.
var sortColumns = map[string]string{
	"id":        "id",
	"username":  "username",
	"email":     "email",
	"firstName": "first_name",
	"lastName":  "last_name",
	"active":    "active",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

const userColumns = `id, username, email, password_hash, first_name, last_name, active, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	return r.findOne(ctx, `WHERE id = $1`, id)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.findOne(ctx, `WHERE username = $1`, username)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, `WHERE email = $1`, email)
}

func (r *UserRepository) findOne(ctx context.Context, where string, arg any) (*entity.User, error) {
	u := &entity.User{}
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users `+where, arg)
	if err := scanUser(row, u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) FindPage(ctx context.Context, page, size int, sortBy string, ascending bool) ([]entity.User, int64, error) {
	col, ok := sortColumns[sortBy]
	if !ok {
		return nil, 0, fmt.Errorf("unsupported sort field %q", sortBy)
	}
	order := "ASC"
	if !ascending {
		order = "DESC"
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY `+col+` `+order+` LIMIT $1 OFFSET $2`,
		size, page*size)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []entity.User
	for rows.Next() {
		var u entity.User
		if err := scanUser(rows, &u); err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, first_name, last_name, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, u.Username, u.Email, u.Password, u.FirstName, u.LastName, u.Active, u.CreatedAt, u.UpdatedAt)

	if err := row.Scan(&u.ID); err != nil {
		return translateErr(err)
	}
	return nil
}

func (r *UserRepository) Save(ctx context.Context, u *entity.User) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET username = $1, email = $2, password_hash = $3, first_name = $4,
		    last_name = $5, active = $6, updated_at = $7
		WHERE id = $8
	`, u.Username, u.Email, u.Password, u.FirstName, u.LastName, u.Active, u.UpdatedAt, u.ID)
	if err != nil {
		return translateErr(err)
	}
	if res.RowsAffected() == 0 {
		return fmt.Errorf("no user with id %d", u.ID)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanUser(row scannable, u *entity.User) error {
	return row.Scan(&u.ID, &u.Username, &u.Email, &u.Password,
		&u.FirstName, &u.LastName, &u.Active, &u.CreatedAt, &u.UpdatedAt)
}

// translateErr maps unique-constraint violations (SQLSTATE 23505) to
// repository.ErrDuplicate so the boundary can classify them as conflicts.
func translateErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", repository.ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}

var _ repository.UserRepository = (*UserRepository)(nil)
