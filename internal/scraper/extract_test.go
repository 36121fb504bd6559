package scraper

import (
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func mustDoc(t *testing.T, body string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		t.Fatalf("parse HTML: %v", err)
	}
	return doc.Selection
}

func TestExtractTitle(t *testing.T) {
	sel := MustSelector("h1", "title")

	tests := []struct {
		input     string
		rooms     string
		area      string
		wantErr   bool
		wantField bool
	}{
		{"Студия, 24,5 м²", "0", "24.5", false, false},
		{"3-комн. квартира, 65,2 м²", "3", "65.2", false, false},
		{"1-комн. квартира, 38 м²", "1", "38", false, false},
		{"Студия,", "", "", true, true},
		{"", "", "", true, true},
	}

	for _, tt := range tests {
		doc := mustDoc(t, `<h1 class="title">`+tt.input+`</h1>`)
		offer, err := ExtractTitle(doc, sel)
		if (err != nil) != tt.wantErr {
			t.Errorf("ExtractTitle(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if err != nil {
			if tt.wantField && !errors.Is(err, ErrMissingField) {
				t.Errorf("ExtractTitle(%q) error %v is not ErrMissingField", tt.input, err)
			}
			continue
		}
		if offer.RoomCount != tt.rooms || offer.AllArea != tt.area {
			t.Errorf("ExtractTitle(%q) = (%q, %q), want (%q, %q)", tt.input, offer.RoomCount, offer.AllArea, tt.rooms, tt.area)
		}
	}
}

func TestExtractTitleMissingElement(t *testing.T) {
	_, err := ExtractTitle(mustDoc(t, `<h2>Студия, 20 м²</h2>`), MustSelector("h1", "title"))

	var mfe *MissingFieldError
	if !errors.As(err, &mfe) {
		t.Fatalf("expected MissingFieldError, got %v", err)
	}
	if mfe.Field != "title" || mfe.Selector != "h1.title" {
		t.Errorf("unexpected error fields: %+v", mfe)
	}
}

func TestExtractPrice(t *testing.T) {
	doc := mustDoc(t, "<span class=\"price\">5\u00a0000\u00a0000 ₽</span>")

	offer, err := ExtractPrice(doc, MustSelector("span", "price"))
	if err != nil {
		t.Fatalf("ExtractPrice: %v", err)
	}
	if offer.Price != "5000000" {
		t.Errorf("Price = %q, want 5000000", offer.Price)
	}

	if _, err := ExtractPrice(mustDoc(t, "<p></p>"), MustSelector("span", "price")); !errors.Is(err, ErrMissingField) {
		t.Errorf("expected ErrMissingField for absent price, got %v", err)
	}
}

func TestExtractMainInfoLabelFirst(t *testing.T) {
	doc := mustDoc(t, `<div class="info"><span>Этаж</span><span>3 из 9</span><span>Жилая</span><span>40,1 м²</span></div>`)

	offer, err := ExtractMainInfo(doc, MustSelector("div", "info"))
	if err != nil {
		t.Fatalf("ExtractMainInfo: %v", err)
	}

	want := Offer{Floor: "3", FloorsCount: "9", LivingArea: "40.1"}
	if *offer != want {
		t.Errorf("ExtractMainInfo = %+v, want %+v", *offer, want)
	}
}

func TestExtractMainInfoValueFirst(t *testing.T) {
	doc := mustDoc(t, `
		<div class="info"><div>10,5 м²</div><div>Кухня</div></div>
		<div class="info"><div>1987</div><div>Построен</div></div>
		<div class="info"><div>Кирпич</div><div>Материал стен</div></div>
	`)

	offer, err := ExtractMainInfo(doc, MustSelector("div", "info"))
	if err != nil {
		t.Fatalf("ExtractMainInfo: %v", err)
	}

	// Неизвестная подпись "Материал стен" игнорируется
	want := Offer{KitchenArea: "10.5", FoundationYear: "1987"}
	if *offer != want {
		t.Errorf("ExtractMainInfo = %+v, want %+v", *offer, want)
	}
}

func TestExtractMainInfoNoBlocks(t *testing.T) {
	offer, err := ExtractMainInfo(mustDoc(t, `<p>nothing</p>`), MustSelector("div", "info"))
	if err != nil {
		t.Fatalf("ExtractMainInfo: %v", err)
	}
	if *offer != (Offer{}) {
		t.Errorf("expected empty offer, got %+v", *offer)
	}
}

func TestExtractGeneralInfo(t *testing.T) {
	doc := mustDoc(t, `
		<ul class="general">
			<li><span>Тип жилья</span><span>Вторичка</span></li>
			<li><span>Высота потолков</span><span>2,7 м</span></li>
			<li><span>Санузел</span><span>1 совмещенный</span></li>
			<li><span>Балкон/лоджия</span><span>1 балкон</span></li>
			<li><span>Ремонт</span><span>Косметический</span></li>
			<li><span>Вид из окон</span><span>Во двор</span></li>
			<li><span>Отопление</span><span>Центральное</span></li>
		</ul>
	`)

	offer, err := ExtractGeneralInfo(doc, MustSelector("ul", "general"))
	if err != nil {
		t.Fatalf("ExtractGeneralInfo: %v", err)
	}

	want := Offer{
		HousingType:    "Вторичка",
		CeilingHeight:  "2.7",
		Restroom:       "1 совмещенный",
		BalconyLoggia:  "1 балкон",
		RenovationType: "Косметический",
		WindowView:     "Во двор",
	}
	if *offer != want {
		t.Errorf("ExtractGeneralInfo = %+v, want %+v", *offer, want)
	}

	if _, err := ExtractGeneralInfo(mustDoc(t, `<div></div>`), MustSelector("ul", "general")); !errors.Is(err, ErrMissingField) {
		t.Errorf("expected ErrMissingField, got %v", err)
	}
}

func TestExtractContact(t *testing.T) {
	sel := MustSelector("div", "contact")

	tests := []struct {
		name        string
		html        string
		contactType string
		contactName string
	}{
		{
			name:        "single entry defaults to owner",
			html:        `<article><div class="contact"><div><span>ID 12345</span></div></div></article>`,
			contactType: "Собственник",
			contactName: "ID 12345",
		},
		{
			name:        "two entries in order",
			html:        `<article><div class="contact"><div><span>Агентство недвижимости</span><span>Этажи</span></div></div></article>`,
			contactType: "Агентство недвижимости",
			contactName: "Этажи",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offer, err := ExtractContact(mustDoc(t, tt.html), sel)
			if err != nil {
				t.Fatalf("ExtractContact: %v", err)
			}
			if offer.ContactType != tt.contactType || offer.ContactName != tt.contactName {
				t.Errorf("got (%q, %q), want (%q, %q)", offer.ContactType, offer.ContactName, tt.contactType, tt.contactName)
			}
		})
	}

	if _, err := ExtractContact(mustDoc(t, `<article><div class="contact"> </div></article>`), sel); !errors.Is(err, ErrMissingField) {
		t.Errorf("expected ErrMissingField for empty contact, got %v", err)
	}
}

func TestSelectorCSS(t *testing.T) {
	tests := []struct {
		tag, class string
		expected   string
	}{
		{"div", "a10a3f92e9--container--KIwW4", "div.a10a3f92e9--container--KIwW4"},
		{"li", "page  active", "li.page.active"},
		{"", "price", "*.price"},
		{"h1", "", "h1"},
	}

	for _, tt := range tests {
		sel, err := NewSelector(tt.tag, tt.class)
		if err != nil {
			t.Fatalf("NewSelector(%q, %q): %v", tt.tag, tt.class, err)
		}
		if sel.CSS() != tt.expected {
			t.Errorf("CSS() = %q, want %q", sel.CSS(), tt.expected)
		}
	}

	if _, err := NewSelector("", ""); err == nil {
		t.Error("expected error for empty selector")
	}
	if _, err := NewSelector("div", "1bad"); err == nil {
		t.Error("expected error for class starting with a digit")
	}
}
