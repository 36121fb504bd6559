package storage

import (
	"context"
	"errors"
	"testing"

	"cian-offers-parser/internal/scraper"
)

type memorySink struct {
	records  []*OfferRecord
	failWith error
	closed   bool
	closeErr error
}

func (m *memorySink) Append(_ context.Context, rec *OfferRecord) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *memorySink) Close() error {
	m.closed = true
	return m.closeErr
}

func TestMultiSinkAppend(t *testing.T) {
	a, b := &memorySink{}, &memorySink{}
	ms := NewMultiSink(a, nil, b)

	rec := &OfferRecord{Offer: &scraper.Offer{Price: "100"}, URL: "https://x/1", Page: 1}
	if err := ms.Append(context.Background(), rec); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if len(a.records) != 1 || len(b.records) != 1 {
		t.Errorf("records a=%d b=%d", len(a.records), len(b.records))
	}
}

func TestMultiSinkStopsOnError(t *testing.T) {
	boom := errors.New("disk full")
	a, b := &memorySink{failWith: boom}, &memorySink{}
	ms := NewMultiSink(a, b)

	if err := ms.Append(context.Background(), &OfferRecord{Offer: &scraper.Offer{}}); !errors.Is(err, boom) {
		t.Fatalf("expected %v, got %v", boom, err)
	}
	if len(b.records) != 0 {
		t.Error("second sink received a record after the first failed")
	}
}

func TestMultiSinkCloseJoinsErrors(t *testing.T) {
	errA, errB := errors.New("a"), errors.New("b")
	a, b := &memorySink{closeErr: errA}, &memorySink{closeErr: errB}

	err := NewMultiSink(a, b).Close()
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Errorf("Close error = %v", err)
	}
	if !a.closed || !b.closed {
		t.Error("not all sinks closed")
	}
}
