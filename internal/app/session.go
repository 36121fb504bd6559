package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/google/uuid"

	"cian-offers-parser/internal/checkpoint"
	"cian-offers-parser/internal/checksum"
	"cian-offers-parser/internal/config"
	"cian-offers-parser/internal/fetcher"
	"cian-offers-parser/internal/normalize"
	"cian-offers-parser/internal/observability"
	"cian-offers-parser/internal/scraper"
	"cian-offers-parser/internal/storage"
)

// Stats: итог обхода
type Stats struct {
	RunID     string
	StartPage int
	Pages     int // успешно обработанные страницы выдачи
	Rows      int // записанные объявления
	Retries   int // повторы страниц после MissingFieldError
	Elapsed   time.Duration
}

// Minutes возвращает длительность в минутах, округлённую до сотых
func (s *Stats) Minutes() float64 {
	return math.Round(s.Elapsed.Minutes()*100) / 100
}

// Session: последовательный обход выдачи: страница, карточки, запись строк
type Session struct {
	cfg       *config.Config
	baseURL   string
	startPage int

	logger   *observability.Logger
	fetcher  fetcher.Fetcher
	scraper  *scraper.Scraper
	sink     storage.Sink
	counter  *checkpoint.Counter
	checksum *checksum.Generator
	progress *Progress

	runID    string
	finished bool

	sleep func(ctx context.Context, d time.Duration) error
}

func NewSession(
	cfg *config.Config,
	baseURL string,
	startPage int,
	logger *observability.Logger,
	f fetcher.Fetcher,
	s *scraper.Scraper,
	sink storage.Sink,
) *Session {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	if startPage <= 0 {
		startPage = cfg.Crawl.StartPage
	}

	runID := uuid.NewString()
	return &Session{
		cfg:       cfg,
		baseURL:   baseURL,
		startPage: startPage,
		logger:    logger.With("run_id", runID),
		fetcher:   f,
		scraper:   s,
		sink:      sink,
		counter:   checkpoint.NewCounter(cfg.CheckpointFile),
		checksum:  checksum.NewGenerator(),
		progress:  NewProgress(cfg.Crawl.Progress, os.Stderr),
		runID:     runID,
		sleep:     sleepCtx,
	}
}

// Run обходит страницы start..total; total растёт по пагинации.
// MissingFieldError откатывает к последней записанной в счётчик странице.
func (s *Session) Run(ctx context.Context) (*Stats, error) {
	started := time.Now()
	stats := &Stats{RunID: s.runID, StartPage: s.startPage}
	defer func() { stats.Elapsed = time.Since(started) }()

	page := s.startPage
	total := s.cfg.Crawl.InitialTotalPages
	if total < page {
		total = page
	}
	attempts := 0

	s.logger.Info("Starting crawl",
		"base_url", s.baseURL,
		"start_page", page,
		"initial_total_pages", total,
		"fetch_mode", s.cfg.Fetch.Mode,
	)

	for page <= total {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		if every := s.cfg.Crawl.CourtesyEvery; every > 0 && page%every == 0 {
			s.logger.Info("Courtesy pause", "page", page, "delay", s.cfg.GetCourtesyDelay())
			if err := s.sleep(ctx, s.cfg.GetCourtesyDelay()); err != nil {
				return stats, err
			}
		}

		s.logger.Info("Page number", "page", page, "total_pages", total)

		pageTotal, err := s.processPage(ctx, page, stats)
		if err != nil {
			if !errors.Is(err, scraper.ErrMissingField) {
				s.logger.Error("Crawl aborted", "page", page, "error", err.Error())
				return stats, err
			}

			attempts++
			stats.Retries++
			s.logger.Error("Page failed", "page", page, "attempt", attempts, "error", err.Error())
			if attempts > s.cfg.Crawl.MaxPageRetries {
				return stats, fmt.Errorf("page %d failed %d times: %w", page, attempts, err)
			}

			if err := s.sleep(ctx, s.cfg.GetCooldown()); err != nil {
				return stats, err
			}
			if last, err := s.counter.Last(); err == nil {
				page = last
			}
			if err := s.counter.Remove(); err != nil {
				s.logger.Warn("Failed to remove checkpoint", "error", err.Error())
			}
			continue
		}

		attempts = 0
		stats.Pages++
		if pageTotal > total {
			total = pageTotal
		}
		page++
		if err := s.counter.Remove(); err != nil {
			s.logger.Warn("Failed to remove checkpoint", "error", err.Error())
		}
	}

	s.finished = true
	s.logger.Info("Crawl completed",
		"pages", stats.Pages,
		"rows", stats.Rows,
		"retries", stats.Retries,
		"elapsed", time.Since(started).Round(time.Second),
	)
	return stats, nil
}

// processPage возвращает число страниц из пагинации
func (s *Session) processPage(ctx context.Context, page int, stats *Stats) (int, error) {
	if err := s.counter.Record(page); err != nil {
		return 0, err
	}

	pageURL, err := normalize.WithPage(s.baseURL, page)
	if err != nil {
		return 0, fmt.Errorf("invalid base URL: %w", err)
	}

	resp, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return 0, fmt.Errorf("fetch index page %d: %w", page, err)
	}
	if resp.URL != "" {
		pageURL = resp.URL
	}

	index, err := s.scraper.ParseIndex(string(resp.Body), pageURL)
	if err != nil {
		return 0, err
	}

	s.logger.Debug("Index parsed", "page", page, "listings", len(index.Listings), "pagination_total", index.TotalPages)

	s.progress.Start(page, len(index.Listings))
	defer s.progress.Stop()

	for i, listing := range index.Listings {
		detail, err := s.fetcher.Fetch(ctx, listing.URL)
		if err != nil {
			return 0, fmt.Errorf("fetch offer %s: %w", listing.URL, err)
		}

		offer, err := s.scraper.AssembleOffer(string(detail.Body), listing.Section)
		if err != nil {
			return 0, fmt.Errorf("offer %s: %w", listing.URL, err)
		}

		rec := &storage.OfferRecord{
			Offer:     offer,
			URL:       listing.URL,
			Page:      page,
			CheckSum:  s.checksum.GenerateOfferHash(listing.URL, offer),
			ScrapedAt: time.Now().UTC(),
		}
		if err := s.sink.Append(ctx, rec); err != nil {
			return 0, fmt.Errorf("store offer %s: %w", listing.URL, err)
		}

		stats.Rows++
		s.progress.Update(i + 1)
	}

	return index.TotalPages, nil
}

// Close закрывает приёмники. Счётчик удаляется, кроме прерванного обхода с crawl.resume.
func (s *Session) Close() error {
	var errs []error
	if s.sink != nil {
		if err := s.sink.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close sinks: %w", err))
		}
	}
	if s.finished || !s.cfg.Crawl.Resume {
		if err := s.counter.Remove(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
