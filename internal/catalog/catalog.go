package catalog

import (
	"context"
	"fmt"
	"time"

	"dishdash/internal/config"
	"dishdash/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Repository provides read access to the dish catalogue.
type Repository interface {
	// GetAll retrieves dishes with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Dish, error)

	// GetByNames retrieves dishes matching the given names. Names with no
	// catalogue entry are simply absent from the result.
	GetByNames(ctx context.Context, names []string) ([]model.Dish, error)
}

// NewPool creates a PostgreSQL connection pool for the catalogue.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)
	poolConfig.MinConns = int32(cfg.MinConnections)
	poolConfig.MaxConnLifetime = time.Duration(cfg.MaxConnLifetime) * time.Second
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	logger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Msg("creating catalogue connection pool")

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// repository implements Repository using PostgreSQL.
type repository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewRepository creates a PostgreSQL-backed dish repository.
func NewRepository(pool *pgxpool.Pool, logger zerolog.Logger) Repository {
	return &repository{
		pool:   pool,
		logger: logger.With().Str("repository", "catalog").Logger(),
	}
}

// GetAll retrieves dishes with pagination support.
func (r *repository) GetAll(ctx context.Context, limit, offset int) ([]model.Dish, error) {
	query := `
		SELECT id, name, price, category, created_at
		FROM dishes
		ORDER BY name
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query dishes")
		return nil, fmt.Errorf("failed to query dishes: %w", err)
	}
	defer rows.Close()

	return scanDishes(rows)
}

// GetByNames retrieves dishes matching the given names.
func (r *repository) GetByNames(ctx context.Context, names []string) ([]model.Dish, error) {
	if len(names) == 0 {
		return []model.Dish{}, nil
	}

	query := `
		SELECT id, name, price, category, created_at
		FROM dishes
		WHERE name = ANY($1)
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query, names)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(names)).Msg("failed to query dishes by name")
		return nil, fmt.Errorf("failed to query dishes by name: %w", err)
	}
	defer rows.Close()

	return scanDishes(rows)
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanDishes(rows rowScanner) ([]model.Dish, error) {
	var dishes []model.Dish
	for rows.Next() {
		var d model.Dish
		if err := rows.Scan(&d.ID, &d.Name, &d.Price, &d.Category, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan dish: %w", err)
		}
		dishes = append(dishes, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dishes: %w", err)
	}

	return dishes, nil
}
