package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"cian-offers-parser/internal/scraper"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// GenerateOfferHash: SHA256(url|RoomCount|AllArea|...|Price) в hex.
// Порядок полей совпадает с колонками CSV.
func (g *Generator) GenerateOfferHash(url string, offer *scraper.Offer) string {
	parts := make([]string, 0, len(scraper.Columns)+1)
	parts = append(parts, strings.TrimSpace(url))
	if offer != nil {
		parts = append(parts, offer.Record()...)
	}

	hash := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(hash[:])
}

// VerifyOfferHash проверяет соответствие хеша
func (g *Generator) VerifyOfferHash(expectedHash, url string, offer *scraper.Offer) bool {
	return g.GenerateOfferHash(url, offer) == expectedHash
}
