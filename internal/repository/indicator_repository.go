package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dextryayers/rujukan-jatim/internal/models"
)

var ErrIndicatorNotFound = errors.New("indicator not found")

const indicatorColumns = `id, name, region, capaian, target, status, date, created_at, updated_at`

type IndicatorFilter struct {
	Region string
	Status string
}

type IndicatorRepository struct {
	pool *pgxpool.Pool
}

func NewIndicatorRepository(pool *pgxpool.Pool) *IndicatorRepository {
	return &IndicatorRepository{pool: pool}
}

func scanIndicator(row pgx.Row) (models.Indicator, error) {
	var ind models.Indicator
	if err := row.Scan(
		&ind.ID,
		&ind.Name,
		&ind.Region,
		&ind.Capaian,
		&ind.Target,
		&ind.Status,
		&ind.Date,
		&ind.CreatedAt,
		&ind.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Indicator{}, ErrIndicatorNotFound
		}
		return models.Indicator{}, err
	}
	return ind, nil
}

func (r *IndicatorRepository) List(ctx context.Context, filter IndicatorFilter) ([]models.Indicator, error) {
	query := `SELECT ` + indicatorColumns + ` FROM indicators WHERE 1=1`
	args := []any{}

	if filter.Region != "" {
		args = append(args, filter.Region)
		query += ` AND region = $1`
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		if len(args) == 1 {
			query += ` AND status = $1`
		} else {
			query += ` AND status = $2`
		}
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var indicators []models.Indicator
	for rows.Next() {
		ind, err := scanIndicator(rows)
		if err != nil {
			return nil, err
		}
		indicators = append(indicators, ind)
	}
	return indicators, rows.Err()
}

func (r *IndicatorRepository) GetByID(ctx context.Context, id string) (models.Indicator, error) {
	const query = `SELECT ` + indicatorColumns + ` FROM indicators WHERE id = $1`
	return scanIndicator(r.pool.QueryRow(ctx, query, id))
}

func (r *IndicatorRepository) Create(ctx context.Context, ind models.Indicator) error {
	const query = `
		INSERT INTO indicators (id, name, region, capaian, target, status, date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.pool.Exec(ctx, query, ind.ID, ind.Name, ind.Region, ind.Capaian, ind.Target, ind.Status, ind.Date)
	return err
}

func (r *IndicatorRepository) Update(ctx context.Context, ind models.Indicator) error {
	const query = `
		UPDATE indicators
		SET name = $2, region = $3, capaian = $4, target = $5, status = $6, date = $7, updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, ind.ID, ind.Name, ind.Region, ind.Capaian, ind.Target, ind.Status, ind.Date)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrIndicatorNotFound
	}
	return nil
}

func (r *IndicatorRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM indicators WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrIndicatorNotFound
	}
	return nil
}

// ReplaceAll clears the table and inserts the new set in one transaction, so
// a failed insert leaves the previous rows untouched.
func (r *IndicatorRepository) ReplaceAll(ctx context.Context, indicators []models.Indicator) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM indicators`); err != nil {
		return err
	}

	const insert = `
		INSERT INTO indicators (id, name, region, capaian, target, status, date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	for _, ind := range indicators {
		if _, err := tx.Exec(ctx, insert, ind.ID, ind.Name, ind.Region, ind.Capaian, ind.Target, ind.Status, ind.Date); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
