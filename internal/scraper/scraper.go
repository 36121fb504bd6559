package scraper

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"cian-offers-parser/internal/normalize"
)

type Scraper struct {
	selectors *Selectors
}

func NewScraper(selectors *Selectors) *Scraper {
	return &Scraper{
		selectors: selectors,
	}
}

// ParseIndex разбирает страницу выдачи: карточки в порядке документа и число страниц.
// Пагинация проверяется до карточек, чтобы битая страница не давала частичных данных.
func (s *Scraper) ParseIndex(body, pageURL string) (*IndexPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	total, err := s.parseTotalPages(doc.Selection)
	if err != nil {
		return nil, err
	}

	page := &IndexPage{TotalPages: total}
	var linkErr error
	s.selectors.Section.find(doc.Selection).EachWithBreak(func(i int, section *goquery.Selection) bool {
		href, ok := section.Find("[href]").First().Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			linkErr = missing("listing link", s.selectors.Section, fmt.Sprintf("section %d has no href", i+1))
			return false
		}
		page.Listings = append(page.Listings, &Listing{
			URL:         normalize.ResolveURL(pageURL, href),
			Section:     section,
			SequenceNum: i,
		})
		return true
	})
	if linkErr != nil {
		return nil, linkErr
	}

	return page, nil
}

// parseTotalPages читает предпоследний маркер пагинации (последний: "Дальше")
func (s *Scraper) parseTotalPages(doc *goquery.Selection) (int, error) {
	markers := s.selectors.Page.find(doc)
	if markers.Length() < 2 {
		return 0, missing("pagination", s.selectors.Page, fmt.Sprintf("found %d markers, need at least 2", markers.Length()))
	}

	text := normalize.CleanText(markers.Eq(markers.Length() - 2).Text())
	total, err := strconv.Atoi(text)
	if err != nil {
		return 0, missing("pagination", s.selectors.Page, fmt.Sprintf("marker %q is not a page number", text))
	}
	return total, nil
}

// AssembleOffer собирает запись из детальной страницы и карточки выдачи
func (s *Scraper) AssembleOffer(detailBody string, section *goquery.Selection) (*Offer, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(detailBody))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	title, err := ExtractTitle(doc.Selection, s.selectors.Title)
	if err != nil {
		return nil, err
	}
	mainInfo, err := ExtractMainInfo(doc.Selection, s.selectors.MainInfo)
	if err != nil {
		return nil, err
	}
	genInfo, err := ExtractGeneralInfo(doc.Selection, s.selectors.GenInfo)
	if err != nil {
		return nil, err
	}
	price, err := ExtractPrice(doc.Selection, s.selectors.Price)
	if err != nil {
		return nil, err
	}
	contact, err := ExtractContact(section, s.selectors.Contact)
	if err != nil {
		return nil, err
	}

	offer := &Offer{}
	for _, part := range []*Offer{title, mainInfo, genInfo, contact, price} {
		offer.Merge(part)
	}
	return offer, nil
}
