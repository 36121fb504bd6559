package csvtable

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cian-offers-parser/internal/scraper"
	"cian-offers-parser/internal/storage"
)

const header = "RoomCount,AllArea,LivingArea,KitchenArea,Floor,FloorsCount,ContactType,ContactName," +
	"FondationYear,HousingType,CeilingHeight,Restroom,Balcony/Loggia,RenovationType,WindowView,Price"

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	return rows
}

func TestCreateWritesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "cian.csv")

	table, err := Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := table.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimRight(string(data), "\n") != header {
		t.Errorf("header = %q", data)
	}
}

func TestAppendRowsInColumnOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cian.csv")
	table, err := Create(path)
	if err != nil {
		t.Fatal(err)
	}

	offers := []*scraper.Offer{
		{RoomCount: "2", AllArea: "54.3", Floor: "3", FloorsCount: "9", Price: "12500000"},
		{RoomCount: "0", AllArea: "25", ContactType: "Собственник", ContactName: "Анна, тел.", Price: "5600000"},
	}
	for i, o := range offers {
		if err := table.Append(context.Background(), &storage.OfferRecord{Offer: o, Page: 1, URL: "u"}); err != nil {
			t.Fatalf("Append #%d: %v", i, err)
		}
	}
	if table.Rows() != 2 {
		t.Errorf("Rows() = %d", table.Rows())
	}
	if err := table.Close(); err != nil {
		t.Fatal(err)
	}

	rows := readRows(t, path)
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	for i, row := range rows {
		if len(row) != 16 {
			t.Errorf("row %d has %d columns", i, len(row))
		}
	}
	if rows[1][0] != "2" || rows[1][4] != "3" || rows[1][15] != "12500000" || rows[1][2] != "" {
		t.Errorf("row 1 = %v", rows[1])
	}
	if rows[2][7] != "Анна, тел." {
		t.Errorf("quoted field lost: %q", rows[2][7])
	}
}

func TestOpenDoesNotDuplicateHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cian.csv")

	table, err := Create(path)
	if err != nil {
		t.Fatal(err)
	}
	_ = table.Append(context.Background(), &storage.OfferRecord{Offer: &scraper.Offer{Price: "1"}})
	_ = table.Close()

	table, err = Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_ = table.Append(context.Background(), &storage.OfferRecord{Offer: &scraper.Offer{Price: "2"}})
	_ = table.Close()

	rows := readRows(t, path)
	if len(rows) != 3 {
		t.Fatalf("expected 3 lines, got %d: %v", len(rows), rows)
	}
	if rows[0][0] != "RoomCount" || rows[1][15] != "1" || rows[2][15] != "2" {
		t.Errorf("unexpected rows: %v", rows)
	}
}

func TestOpenEmptyFileWritesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cian.csv")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	_ = table.Close()

	if rows := readRows(t, path); len(rows) != 1 || rows[0][0] != "RoomCount" {
		t.Errorf("rows = %v", rows)
	}
}

func TestAppendRejectsEmptyRecord(t *testing.T) {
	table, err := Create(filepath.Join(t.TempDir(), "cian.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer table.Close()

	if err := table.Append(context.Background(), &storage.OfferRecord{}); err == nil {
		t.Error("expected error for record without offer")
	}
}

func TestFileName(t *testing.T) {
	day := time.Date(2024, 3, 9, 15, 0, 0, 0, time.UTC)
	if got := FileName("output", day); got != filepath.Join("output", "cian-2024-03-09.csv") {
		t.Errorf("FileName = %q", got)
	}
}
