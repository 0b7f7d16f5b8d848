package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quizverse-service/internal/domain"
)

// Directory resolves display names from the users table. Unknown users yield
// an empty name; the service falls back to the raw id.
type Directory struct {
	pool *pgxpool.Pool
}

func NewDirectory(pool *pgxpool.Pool) *Directory {
	return &Directory{pool: pool}
}

func (d *Directory) DisplayName(ctx context.Context, userID string) (string, error) {
	var name string
	err := d.pool.QueryRow(ctx, `SELECT name FROM users WHERE id=$1`, userID).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", domain.Unavailablef("load user", err)
	}
	return name, nil
}
