package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"cian-offers-parser/internal/observability"
	"cian-offers-parser/internal/storage"
)

const createTableQuery = `
CREATE TABLE IF NOT EXISTS cian_offers (
	checksum        TEXT PRIMARY KEY,
	url             TEXT NOT NULL,
	page            INTEGER NOT NULL,
	scraped_at      TIMESTAMPTZ NOT NULL,
	room_count      TEXT,
	all_area        TEXT,
	living_area     TEXT,
	kitchen_area    TEXT,
	floor           TEXT,
	floors_count    TEXT,
	contact_type    TEXT,
	contact_name    TEXT,
	foundation_year TEXT,
	housing_type    TEXT,
	ceiling_height  TEXT,
	restroom        TEXT,
	balcony_loggia  TEXT,
	renovation_type TEXT,
	window_view     TEXT,
	price           TEXT
)`

const insertOfferQuery = `
INSERT INTO cian_offers
	(checksum, url, page, scraped_at,
	 room_count, all_area, living_area, kitchen_area, floor, floors_count,
	 contact_type, contact_name, foundation_year, housing_type, ceiling_height,
	 restroom, balcony_loggia, renovation_type, window_view, price)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
ON CONFLICT (checksum) DO NOTHING`

// Repository зеркалит объявления в Postgres через пул pgx
type Repository struct {
	pool           *pgxpool.Pool
	commandTimeout time.Duration
	logger         *observability.Logger

	inserted   int
	duplicates int
}

func NewRepository(ctx context.Context, dsn string, commandTimeout time.Duration, logger *observability.Logger) (*Repository, error) {
	if logger == nil {
		logger = observability.NewNopLogger()
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres dsn: %w", err)
	}
	cfg.MaxConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	r := &Repository{pool: pool, commandTimeout: commandTimeout, logger: logger}
	if err := r.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repository) ensureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	if _, err := r.pool.Exec(ctx, createTableQuery); err != nil {
		return fmt.Errorf("failed to create cian_offers table: %w", err)
	}
	return nil
}

// Append вставляет объявление; повтор по checksum пропускается
func (r *Repository) Append(ctx context.Context, rec *storage.OfferRecord) error {
	if rec == nil || rec.Offer == nil {
		return fmt.Errorf("empty offer record")
	}

	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, insertOfferQuery, offerArgs(rec)...)
	if err != nil {
		return fmt.Errorf("failed to insert offer: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.duplicates++
		r.logger.Debug("offer already stored", "url", rec.URL, "checksum", rec.CheckSum)
		return nil
	}
	r.inserted++
	return nil
}

func offerArgs(rec *storage.OfferRecord) []any {
	args := []any{rec.CheckSum, rec.URL, rec.Page, rec.ScrapedAt}
	for _, v := range rec.Offer.Record() {
		args = append(args, v)
	}
	return args
}

func (r *Repository) Close() error {
	if r.pool == nil {
		return nil
	}
	r.logger.Info("postgres mirror closed", "inserted", r.inserted, "duplicates", r.duplicates)
	r.pool.Close()
	return nil
}
