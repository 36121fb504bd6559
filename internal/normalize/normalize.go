package normalize

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	nbsp        = "\u00A0"
	rubleGlyph  = "₽"
	studioToken = "Студия,"
)

var spaceRun = regexp.MustCompile(`\s+`)

// CleanText заменяет NBSP на пробел и схлопывает пробельные последовательности
func CleanText(text string) string {
	text = strings.ReplaceAll(text, nbsp, " ")
	text = spaceRun.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Tokens делит текст по пробелам (включая NBSP)
func Tokens(text string) []string {
	return strings.Fields(text)
}

// DecimalPoint переводит десятичную запятую в точку: "24,5" → "24.5"
func DecimalPoint(value string) string {
	return strings.ReplaceAll(value, ",", ".")
}

// FirstNumber возвращает первый токен значения с десятичной точкой: "10,2 м²" → "10.2"
func FirstNumber(value string) string {
	tokens := Tokens(value)
	if len(tokens) == 0 {
		return ""
	}
	return DecimalPoint(tokens[0])
}

// Price убирает NBSP, знак рубля и пробелы: "5 000 000 ₽" → "5000000"
func Price(raw string) string {
	for _, junk := range []string{nbsp, rubleGlyph, " "} {
		raw = strings.ReplaceAll(raw, junk, "")
	}
	return strings.TrimSpace(raw)
}

// IsStudio сообщает, начинается ли заголовок со студии
func IsStudio(firstToken string) bool {
	return firstToken == studioToken
}

// FirstRune возвращает первый символ строки (для "3-комн." → "3")
func FirstRune(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError && size <= 1 {
		return ""
	}
	return string(r)
}

// NormalizeURL нормализует URL (убирает якоря)
func NormalizeURL(urlStr string) string {
	urlStr = strings.TrimSpace(urlStr)
	if idx := strings.Index(urlStr, "#"); idx > -1 {
		urlStr = urlStr[:idx]
	}
	return urlStr
}

// ResolveURL делает относительную ссылку абсолютной относительно base
func ResolveURL(base, href string) string {
	href = NormalizeURL(href)
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}

// WithPage подставляет параметр page в query базового URL
func WithPage(base string, page int) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
