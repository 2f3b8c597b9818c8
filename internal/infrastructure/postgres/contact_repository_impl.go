package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"contacthub/internal/domain/entity"
	"contacthub/internal/domain/repository"
)

type ContactRepository struct {
	pool *pgxpool.Pool
}

func NewContactRepository(pool *pgxpool.Pool) *ContactRepository {
	return &ContactRepository{pool: pool}
}

const contactColumns = `id, owner_id, name, email, phone, favorite, created_at, updated_at`

func scanContact(row pgx.Row) (*entity.Contact, error) {
	c := &entity.Contact{}
	if err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Email, &c.Phone,
		&c.Favorite, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *ContactRepository) Create(c *entity.Contact) error {
	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO contacts (owner_id, name, email, phone, favorite)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, c.OwnerID, c.Name, c.Email, c.Phone, c.Favorite)

	return row.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *ContactRepository) GetByID(ownerID, id string) (*entity.Contact, error) {
	return scanContact(r.pool.QueryRow(context.Background(), `
		SELECT `+contactColumns+`
		FROM contacts
		WHERE id = $1 AND owner_id = $2
	`, id, ownerID))
}

func (r *ContactRepository) List(ownerID string, f repository.ListFilter) ([]entity.Contact, error) {
	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	query := `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE owner_id = $1`
	args := []any{ownerID}
	if f.Favorite != nil {
		query += ` AND favorite = $2`
		args = append(args, *f.Favorite)
	}
	query += ` ORDER BY created_at`
	args = append(args, limit, offset)
	if f.Favorite != nil {
		query += ` LIMIT $3 OFFSET $4`
	} else {
		query += ` LIMIT $2 OFFSET $3`
	}

	rows, err := r.pool.Query(context.Background(), query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := make([]entity.Contact, 0)
	for rows.Next() {
		c := entity.Contact{}
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Email, &c.Phone,
			&c.Favorite, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

func (r *ContactRepository) Update(c *entity.Contact) error {
	c.UpdatedAt = time.Now()
	res, err := r.pool.Exec(context.Background(), `
		UPDATE contacts
		SET name = $1, email = $2, phone = $3, favorite = $4, updated_at = $5
		WHERE id = $6 AND owner_id = $7
	`, c.Name, c.Email, c.Phone, c.Favorite, c.UpdatedAt, c.ID, c.OwnerID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ContactRepository) UpdateFavorite(ownerID, id string, favorite bool) (*entity.Contact, error) {
	return scanContact(r.pool.QueryRow(context.Background(), `
		UPDATE contacts
		SET favorite = $1, updated_at = $2
		WHERE id = $3 AND owner_id = $4
		RETURNING `+contactColumns+`
	`, favorite, time.Now(), id, ownerID))
}

func (r *ContactRepository) Delete(ownerID, id string) error {
	res, err := r.pool.Exec(context.Background(), `
		DELETE FROM contacts
		WHERE id = $1 AND owner_id = $2
	`, id, ownerID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.ContactRepository = (*ContactRepository)(nil)
