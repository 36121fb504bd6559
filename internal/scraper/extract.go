package scraper

import (
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"cian-offers-parser/internal/normalize"
)

// contactOwner: тип контакта, если в блоке только имя
const contactOwner = "Собственник"

type fieldSetter func(o *Offer, value string)

// Подписи блока основной информации (площади, этаж, год постройки)
var mainInfoFields = map[string]fieldSetter{
	"Жилая": func(o *Offer, v string) { o.LivingArea = normalize.FirstNumber(v) },
	"Кухня": func(o *Offer, v string) { o.KitchenArea = normalize.FirstNumber(v) },
	"Этаж": func(o *Offer, v string) {
		// "3 из 9"
		tokens := normalize.Tokens(v)
		if len(tokens) > 0 {
			o.Floor = tokens[0]
		}
		if len(tokens) > 2 {
			o.FloorsCount = tokens[2]
		}
	},
	"Построен": func(o *Offer, v string) {
		if tokens := normalize.Tokens(v); len(tokens) > 0 {
			o.FoundationYear = tokens[0]
		}
	},
}

// Подписи блока общей информации
var genInfoFields = map[string]fieldSetter{
	"Тип жилья":       func(o *Offer, v string) { o.HousingType = v },
	"Высота потолков": func(o *Offer, v string) { o.CeilingHeight = normalize.FirstNumber(v) },
	"Санузел":         func(o *Offer, v string) { o.Restroom = v },
	"Балкон/лоджия":   func(o *Offer, v string) { o.BalconyLoggia = v },
	"Ремонт":          func(o *Offer, v string) { o.RenovationType = v },
	"Вид из окон":     func(o *Offer, v string) { o.WindowView = v },
}

// ExtractTitle разбирает заголовок вида "3-комн. квартира, 65,2 м²" или "Студия, 24,5 м²"
func ExtractTitle(doc *goquery.Selection, sel Selector) (*Offer, error) {
	node := sel.find(doc).First()
	if node.Length() == 0 {
		return nil, missing("title", sel, "element not found")
	}

	tokens := normalize.Tokens(node.Text())
	if len(tokens) == 0 {
		return nil, missing("title", sel, "empty title")
	}

	offer := &Offer{}
	if normalize.IsStudio(tokens[0]) {
		if len(tokens) < 2 {
			return nil, missing("title", sel, "studio title without area")
		}
		offer.RoomCount = "0"
		offer.AllArea = normalize.DecimalPoint(tokens[1])
		return offer, nil
	}

	if len(tokens) < 3 {
		return nil, missing("title", sel, "title without area")
	}
	offer.RoomCount = normalize.FirstRune(tokens[0])
	offer.AllArea = normalize.DecimalPoint(tokens[2])
	return offer, nil
}

// ExtractMainInfo собирает все блоки основной информации; порядок внутри пары: "значение, подпись"
func ExtractMainInfo(doc *goquery.Selection, sel Selector) (*Offer, error) {
	offer := &Offer{}
	entries := flattenBlocks(sel.find(doc))
	applyPairs(offer, entries, mainInfoFields, false)
	return offer, nil
}

// ExtractGeneralInfo разбирает блок общей информации; порядок внутри пары: "подпись, значение"
func ExtractGeneralInfo(doc *goquery.Selection, sel Selector) (*Offer, error) {
	block := sel.find(doc).First()
	if block.Length() == 0 {
		return nil, missing("general info", sel, "element not found")
	}

	// блок → строки → ячейки
	offer := &Offer{}
	applyPairs(offer, flattenBlocks(block.Children()), genInfoFields, true)
	return offer, nil
}

// ExtractPrice возвращает цену строкой из цифр
func ExtractPrice(doc *goquery.Selection, sel Selector) (*Offer, error) {
	node := sel.find(doc).First()
	if node.Length() == 0 {
		return nil, missing("price", sel, "element not found")
	}
	return &Offer{Price: normalize.Price(node.Text())}, nil
}

// ExtractContact ищет контакт в карточке выдачи (не на детальной странице)
func ExtractContact(section *goquery.Selection, sel Selector) (*Offer, error) {
	block := sel.find(section).First()
	if block.Length() == 0 {
		return nil, missing("contact", sel, "element not found")
	}

	var entries []string
	block.Contents().Each(func(_ int, child *goquery.Selection) {
		if isElement(child) {
			entries = append(entries, flattenBlocks(child)...)
			return
		}
		if text := normalize.CleanText(child.Text()); text != "" {
			entries = append(entries, text)
		}
	})

	switch len(entries) {
	case 0:
		return nil, missing("contact", sel, "empty contact block")
	case 1:
		return &Offer{ContactType: contactOwner, ContactName: entries[0]}, nil
	default:
		return &Offer{ContactType: entries[0], ContactName: entries[1]}, nil
	}
}

// flattenBlocks возвращает тексты прямых потомков каждого блока, пропуская пустые
func flattenBlocks(blocks *goquery.Selection) []string {
	var entries []string
	blocks.Each(func(_ int, block *goquery.Selection) {
		block.Contents().Each(func(_ int, child *goquery.Selection) {
			if text := normalize.CleanText(child.Text()); text != "" {
				entries = append(entries, text)
			}
		})
	})
	return entries
}

// applyPairs сопоставляет пары записей с известными подписями.
// labelFirst задаёт ожидаемый порядок; если подпись стоит на другой позиции, пара всё равно распознаётся.
// Неизвестные подписи пропускаются.
func applyPairs(offer *Offer, entries []string, fields map[string]fieldSetter, labelFirst bool) {
	for i := 0; i+1 < len(entries); i += 2 {
		label, value := entries[i+1], entries[i]
		if labelFirst {
			label, value = value, label
		}

		setter, ok := fields[label]
		if !ok {
			setter, ok = fields[value]
			if !ok {
				continue
			}
			value = label
		}
		setter(offer, value)
	}
}

func isElement(sel *goquery.Selection) bool {
	return len(sel.Nodes) > 0 && sel.Nodes[0].Type == html.ElementNode
}
