package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/microsoft/go-mssqldb"

	"cian-offers-parser/internal/observability"
	"cian-offers-parser/internal/storage"
)

// Repository зеркалит объявления в SQL Server, таблица TblOffers
type Repository struct {
	db             *sql.DB
	commandTimeout time.Duration
	logger         *observability.Logger

	inserted int
	updated  int
}

func NewRepository(dsn string, commandTimeout time.Duration, logger *observability.Logger) (*Repository, error) {
	if logger == nil {
		logger = observability.NewNopLogger()
	}

	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Тестируем соединение
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{
		db:             db,
		commandTimeout: commandTimeout,
		logger:         logger,
	}, nil
}

const mergeOfferQuery = `
	MERGE INTO TblOffers AS target
	USING (SELECT @CheckSum AS CheckSum) AS source
	ON target.[CheckSum] = source.CheckSum
	WHEN MATCHED THEN
		UPDATE SET
			[Page] = @Page,
			[ScrapedAt] = @ScrapedAt
	WHEN NOT MATCHED THEN
		INSERT ([CheckSum], [URL], [Page], [ScrapedAt],
			[RoomCount], [AllArea], [LivingArea], [KitchenArea], [Floor], [FloorsCount],
			[ContactType], [ContactName], [FoundationYear], [HousingType], [CeilingHeight],
			[Restroom], [BalconyLoggia], [RenovationType], [WindowView], [Price])
		VALUES (@CheckSum, @URL, @Page, @ScrapedAt,
			@RoomCount, @AllArea, @LivingArea, @KitchenArea, @Floor, @FloorsCount,
			@ContactType, @ContactName, @FoundationYear, @HousingType, @CeilingHeight,
			@Restroom, @BalconyLoggia, @RenovationType, @WindowView, @Price)
	OUTPUT $action;
`

// Append сохраняет объявление; повтор по CheckSum только обновляет страницу и время
func (r *Repository) Append(ctx context.Context, rec *storage.OfferRecord) error {
	if rec == nil || rec.Offer == nil {
		return fmt.Errorf("empty offer record")
	}

	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	stmt, err := r.db.PrepareContext(ctx, mergeOfferQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			r.logger.Error("Failed to close statement", "error", err.Error())
		}
	}()

	var action string
	if err := stmt.QueryRowContext(ctx, offerParams(rec)...).Scan(&action); err != nil {
		return fmt.Errorf("failed to execute merge: %w", err)
	}

	if action == "INSERT" {
		r.inserted++
	} else {
		r.updated++
		r.logger.Debug("offer already stored", "url", rec.URL, "checksum", rec.CheckSum)
	}
	return nil
}

func offerParams(rec *storage.OfferRecord) []interface{} {
	o := rec.Offer
	return []interface{}{
		sql.Named("CheckSum", rec.CheckSum),
		sql.Named("URL", rec.URL),
		sql.Named("Page", rec.Page),
		sql.Named("ScrapedAt", rec.ScrapedAt),
		sql.Named("RoomCount", o.RoomCount),
		sql.Named("AllArea", o.AllArea),
		sql.Named("LivingArea", o.LivingArea),
		sql.Named("KitchenArea", o.KitchenArea),
		sql.Named("Floor", o.Floor),
		sql.Named("FloorsCount", o.FloorsCount),
		sql.Named("ContactType", o.ContactType),
		sql.Named("ContactName", o.ContactName),
		sql.Named("FoundationYear", o.FoundationYear),
		sql.Named("HousingType", o.HousingType),
		sql.Named("CeilingHeight", o.CeilingHeight),
		sql.Named("Restroom", o.Restroom),
		sql.Named("BalconyLoggia", o.BalconyLoggia),
		sql.Named("RenovationType", o.RenovationType),
		sql.Named("WindowView", o.WindowView),
		sql.Named("Price", o.Price),
	}
}

// Close закрывает соединение с БД
func (r *Repository) Close() error {
	if r.db == nil {
		return nil
	}
	r.logger.Info("mssql mirror closed", "inserted", r.inserted, "updated", r.updated)
	return r.db.Close()
}
