package scraper

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// Имена групп селекторов в порядке их следования в JSON-файле
const (
	SelectorURL      = "url"
	SelectorSection  = "section"
	SelectorPage     = "page"
	SelectorTitle    = "title"
	SelectorMainInfo = "main_inf"
	SelectorGenInfo  = "gen_inf"
	SelectorContact  = "contact"
	SelectorPrice    = "price"
)

var SelectorNames = []string{
	SelectorURL,
	SelectorSection,
	SelectorPage,
	SelectorTitle,
	SelectorMainInfo,
	SelectorGenInfo,
	SelectorContact,
	SelectorPrice,
}

// Selector: пара "тег + класс", скомпилированная в CSS-матчер
type Selector struct {
	Tag     string
	Class   string
	matcher cascadia.Selector
}

// NewSelector собирает CSS вида "div.a.b" и компилирует его
func NewSelector(tag, class string) (Selector, error) {
	s := Selector{Tag: strings.TrimSpace(tag), Class: strings.TrimSpace(class)}
	if s.Tag == "" && s.Class == "" {
		return Selector{}, fmt.Errorf("selector has neither tag nor class")
	}

	m, err := cascadia.Compile(s.CSS())
	if err != nil {
		return Selector{}, fmt.Errorf("invalid selector %q: %w", s.CSS(), err)
	}
	s.matcher = m
	return s, nil
}

// MustSelector паникует на ошибке, удобно для тестов и констант
func MustSelector(tag, class string) Selector {
	s, err := NewSelector(tag, class)
	if err != nil {
		panic(err)
	}
	return s
}

// CSS возвращает строку селектора
func (s Selector) CSS() string {
	var b strings.Builder
	if s.Tag == "" {
		b.WriteString("*")
	} else {
		b.WriteString(s.Tag)
	}
	for _, class := range strings.Fields(s.Class) {
		b.WriteString(".")
		b.WriteString(class)
	}
	return b.String()
}

func (s Selector) String() string {
	return s.CSS()
}

// find ищет совпадения внутри sel
func (s Selector) find(sel *goquery.Selection) *goquery.Selection {
	if s.matcher == nil {
		return sel.Find(s.CSS())
	}
	return sel.FindMatcher(s.matcher)
}

// Selectors: конфигурация селекторов (SelectorConfig), неизменяемая после загрузки
type Selectors struct {
	// BaseURL берётся из записи "url", если она содержит адрес
	BaseURL string

	URL      Selector
	Section  Selector
	Page     Selector
	Title    Selector
	MainInfo Selector
	GenInfo  Selector
	Contact  Selector
	Price    Selector
}

// Map возвращает селекторы по именам групп
func (s *Selectors) Map() map[string]Selector {
	return map[string]Selector{
		SelectorURL:      s.URL,
		SelectorSection:  s.Section,
		SelectorPage:     s.Page,
		SelectorTitle:    s.Title,
		SelectorMainInfo: s.MainInfo,
		SelectorGenInfo:  s.GenInfo,
		SelectorContact:  s.Contact,
		SelectorPrice:    s.Price,
	}
}

// Set записывает селектор по имени группы
func (s *Selectors) Set(name string, sel Selector) error {
	switch name {
	case SelectorURL:
		s.URL = sel
	case SelectorSection:
		s.Section = sel
	case SelectorPage:
		s.Page = sel
	case SelectorTitle:
		s.Title = sel
	case SelectorMainInfo:
		s.MainInfo = sel
	case SelectorGenInfo:
		s.GenInfo = sel
	case SelectorContact:
		s.Contact = sel
	case SelectorPrice:
		s.Price = sel
	default:
		return fmt.Errorf("unknown selector group: %s", name)
	}
	return nil
}

// Listing: карточка объявления на странице выдачи
type Listing struct {
	URL         string
	Section     *goquery.Selection
	SequenceNum int
}

// IndexPage: разобранная страница выдачи
type IndexPage struct {
	Listings   []*Listing
	TotalPages int
}
