package csvtable

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cian-offers-parser/internal/scraper"
	"cian-offers-parser/internal/storage"
)

// Table: CSV только на дозапись; заголовок пишется один раз, до первой строки
type Table struct {
	path   string
	file   *os.File
	writer *csv.Writer
	rows   int
}

// FileName возвращает <dir>/cian-<YYYY-MM-DD>.csv
func FileName(dir string, day time.Time) string {
	return filepath.Join(dir, "cian-"+day.Format("2006-01-02")+".csv")
}

// Create создаёт (или обнуляет) файл и пишет заголовок
func Create(path string) (*Table, error) {
	return open(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY)
}

// Open дописывает в существующий файл; заголовок только если файл пуст
func Open(path string) (*Table, error) {
	return open(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY)
}

func open(path string, flag int) (*Table, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output dir: %w", err)
		}
	}

	file, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open output file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat output file: %w", err)
	}

	t := &Table{path: path, file: file, writer: csv.NewWriter(file)}
	if info.Size() == 0 {
		if err := t.write(scraper.Columns); err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}
	return t, nil
}

func (t *Table) Path() string {
	return t.path
}

// Rows: сколько строк данных записано этим экземпляром
func (t *Table) Rows() int {
	return t.rows
}

// Append пишет строку и сразу сбрасывает её на диск
func (t *Table) Append(_ context.Context, rec *storage.OfferRecord) error {
	if rec == nil || rec.Offer == nil {
		return fmt.Errorf("empty offer record")
	}
	if err := t.write(rec.Offer.Record()); err != nil {
		return fmt.Errorf("failed to append row to %s: %w", t.path, err)
	}
	t.rows++
	return nil
}

func (t *Table) write(row []string) error {
	if err := t.writer.Write(row); err != nil {
		return err
	}
	t.writer.Flush()
	return t.writer.Error()
}

func (t *Table) Close() error {
	if t.file == nil {
		return nil
	}
	t.writer.Flush()
	flushErr := t.writer.Error()
	closeErr := t.file.Close()
	t.file = nil
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}
