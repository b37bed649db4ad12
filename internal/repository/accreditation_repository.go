package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dextryayers/rujukan-jatim/internal/models"
)

var ErrAccreditationNotFound = errors.New("accreditation stat not found")

const accreditationColumns = `id, paripurna, utama, madya, recorded_at, year, month, region, created_at, updated_at`

// AccreditationFilter narrows queries by period. RegionSet distinguishes "no
// region filter" (match rows with region IS NULL) from an explicit region.
type AccreditationFilter struct {
	Year      *int
	Month     *int
	Region    string
	RegionSet bool
}

type AccreditationRepository struct {
	pool *pgxpool.Pool
}

func NewAccreditationRepository(pool *pgxpool.Pool) *AccreditationRepository {
	return &AccreditationRepository{pool: pool}
}

func scanAccreditation(row pgx.Row) (models.AccreditationStat, error) {
	var stat models.AccreditationStat
	if err := row.Scan(
		&stat.ID,
		&stat.Paripurna,
		&stat.Utama,
		&stat.Madya,
		&stat.RecordedAt,
		&stat.Year,
		&stat.Month,
		&stat.Region,
		&stat.CreatedAt,
		&stat.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.AccreditationStat{}, ErrAccreditationNotFound
		}
		return models.AccreditationStat{}, err
	}
	return stat, nil
}

func buildAccreditationWhere(filter AccreditationFilter, latest bool) (string, []any) {
	where := ` WHERE 1=1`
	args := []any{}

	if filter.Year != nil {
		args = append(args, *filter.Year)
		where += fmt.Sprintf(` AND year = $%d`, len(args))
	}
	if filter.Month != nil {
		args = append(args, *filter.Month)
		where += fmt.Sprintf(` AND month = $%d`, len(args))
	}
	if filter.RegionSet {
		args = append(args, filter.Region)
		where += fmt.Sprintf(` AND region = $%d`, len(args))
	} else if latest {
		// The statewide snapshot lives in rows without a region.
		where += ` AND region IS NULL`
	}

	return where, args
}

const accreditationOrder = ` ORDER BY year DESC NULLS LAST, month DESC NULLS LAST, recorded_at DESC NULLS LAST, updated_at DESC, created_at DESC`

// Latest returns the most recent snapshot matching the filter.
func (r *AccreditationRepository) Latest(ctx context.Context, filter AccreditationFilter) (models.AccreditationStat, error) {
	where, args := buildAccreditationWhere(filter, true)
	query := `SELECT ` + accreditationColumns + ` FROM accreditation_stats` + where + accreditationOrder + ` LIMIT 1`
	return scanAccreditation(r.pool.QueryRow(ctx, query, args...))
}

func (r *AccreditationRepository) History(ctx context.Context, filter AccreditationFilter, limit int) ([]models.AccreditationStat, error) {
	where, args := buildAccreditationWhere(filter, false)
	args = append(args, limit)
	query := `SELECT ` + accreditationColumns + ` FROM accreditation_stats` + where + accreditationOrder +
		fmt.Sprintf(` LIMIT $%d`, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []models.AccreditationStat
	for rows.Next() {
		stat, err := scanAccreditation(rows)
		if err != nil {
			return nil, err
		}
		stats = append(stats, stat)
	}
	return stats, rows.Err()
}

// Upsert writes the snapshot keyed by (year, month, region), treating NULLs
// as part of the key via the COALESCE unique index.
func (r *AccreditationRepository) Upsert(ctx context.Context, stat models.AccreditationStat) (models.AccreditationStat, error) {
	const query = `
		INSERT INTO accreditation_stats (
			id, paripurna, utama, madya, recorded_at, year, month, region, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW()
		)
		ON CONFLICT (COALESCE(year, 0), COALESCE(month, 0), COALESCE(region, ''))
		DO UPDATE SET
			paripurna = EXCLUDED.paripurna,
			utama = EXCLUDED.utama,
			madya = EXCLUDED.madya,
			recorded_at = EXCLUDED.recorded_at,
			updated_at = NOW()
		RETURNING ` + accreditationColumns

	row := r.pool.QueryRow(ctx, query,
		stat.ID,
		stat.Paripurna,
		stat.Utama,
		stat.Madya,
		stat.RecordedAt,
		stat.Year,
		stat.Month,
		stat.Region,
	)
	return scanAccreditation(row)
}
