package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"contacthub/internal/domain/entity"
	"contacthub/internal/domain/repository"
)

const uniqueViolation = "23505"

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, email, password_hash, subscription, avatar_url, session_token, verified, verification_token, created_at, updated_at`

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	if err := row.Scan(&u.ID, &u.Email, &u.Password, &u.Subscription, &u.AvatarURL,
		&u.SessionToken, &u.Verified, &u.VerificationToken, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) Create(u *entity.User) error {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, subscription, avatar_url, verification_token)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, u.Email, u.Password, u.Subscription, u.AvatarURL, u.VerificationToken)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return repository.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetByID(id string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(context.Background(), `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id))
}

func (r *UserRepository) GetByEmail(email string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(context.Background(), `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1
	`, email))
}

func (r *UserRepository) GetByVerificationToken(token string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(context.Background(), `
		SELECT `+userColumns+`
		FROM users
		WHERE verification_token = $1
	`, token))
}

func (r *UserRepository) UpdateSessionToken(id string, token *string) error {
	res, err := r.pool.Exec(context.Background(), `
		UPDATE users
		SET session_token = $1, updated_at = $2
		WHERE id = $3
	`, token, time.Now(), id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) SetVerified(id string) error {
	res, err := r.pool.Exec(context.Background(), `
		UPDATE users
		SET verified = TRUE, verification_token = NULL, updated_at = $1
		WHERE id = $2
	`, time.Now(), id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdateSubscription(id string, tier entity.Subscription) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(context.Background(), `
		UPDATE users
		SET subscription = $1, updated_at = $2
		WHERE id = $3
		RETURNING `+userColumns+`
	`, tier, time.Now(), id))
}

func (r *UserRepository) UpdateAvatarURL(id string, avatarURL string) error {
	res, err := r.pool.Exec(context.Background(), `
		UPDATE users
		SET avatar_url = $1, updated_at = $2
		WHERE id = $3
	`, avatarURL, time.Now(), id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
