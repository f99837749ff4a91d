package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	ListActive(ctx context.Context) ([]Package, error)
	Create(ctx context.Context, p Package) (*Package, error)
}

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const packageColumns = `id, name, description, price::float8, currency, duration, features, icon, popular, status, created_at, updated_at`

func scanPackage(row pgx.Row) (*Package, error) {
	var (
		p        Package
		features []byte
	)

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.Currency,
		&p.Duration,
		&features,
		&p.Icon,
		&p.Popular,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Features = []string{}
	if len(features) > 0 {
		if err := json.Unmarshal(features, &p.Features); err != nil {
			return nil, fmt.Errorf("decode features of service %d: %w", p.ID, err)
		}
	}

	return &p, nil
}

func (r *PgRepository) ListActive(ctx context.Context) ([]Package, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+packageColumns+`
		FROM services
		WHERE status = 'active'
		ORDER BY popular DESC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query services: %w", err)
	}
	defer rows.Close()

	result := []Package{}
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate services: %w", err)
	}

	return result, nil
}

func (r *PgRepository) Create(ctx context.Context, p Package) (*Package, error) {
	features, err := json.Marshal(p.Features)
	if err != nil {
		return nil, fmt.Errorf("encode features: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO services (name, description, price, currency, duration, features, icon, popular, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, $8, $9, now(), now())
		RETURNING `+packageColumns,
		p.Name, p.Description, p.Price, p.Currency, p.Duration, string(features), p.Icon, p.Popular, p.Status)

	created, err := scanPackage(row)
	if err != nil {
		return nil, fmt.Errorf("insert service: %w", err)
	}
	return created, nil
}
