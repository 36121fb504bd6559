package storage

import (
	"context"
	"errors"
	"time"

	"cian-offers-parser/internal/scraper"
)

// OfferRecord: объявление с метаданными обхода, то что получают приёмники
type OfferRecord struct {
	Offer     *scraper.Offer
	URL       string // адрес карточки
	Page      int    // номер страницы выдачи
	CheckSum  string // SHA256, ключ дедупликации в БД
	ScrapedAt time.Time
}

// Sink принимает записи по одной, сразу после разбора карточки
type Sink interface {
	Append(ctx context.Context, rec *OfferRecord) error
	Close() error
}

// MultiSink пишет запись во все приёмники по порядку; первая ошибка прерывает запись
type MultiSink struct {
	sinks []Sink
}

func NewMultiSink(sinks ...Sink) *MultiSink {
	ms := &MultiSink{}
	for _, s := range sinks {
		if s != nil {
			ms.sinks = append(ms.sinks, s)
		}
	}
	return ms
}

func (m *MultiSink) Append(ctx context.Context, rec *OfferRecord) error {
	for _, s := range m.sinks {
		if err := s.Append(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// Close закрывает все приёмники, даже если какой-то вернул ошибку
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
