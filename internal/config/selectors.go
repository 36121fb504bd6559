package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"cian-offers-parser/internal/scraper"
)

// selectorEntry: элемент JSON-массива селекторов
type selectorEntry struct {
	Flag  string `json:"flag"`
	Class string `json:"class"`
	URL   string `json:"url,omitempty"`
}

// LoadSelectors загружает селекторы из JSON-массива из 8 записей:
// url, section, page, title, main_inf, gen_inf, contact, price
func LoadSelectors(filePath string) (*scraper.Selectors, error) {
	if filePath == "" {
		return nil, configErr("", "selectors file path is empty")
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, configErr(filePath, "selectors file not readable: %w", err)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, configErr(filePath, "failed to parse selectors JSON: %w", err)
	}

	if len(raw) != len(scraper.SelectorNames) {
		return nil, configErr(filePath, "expected %d selector entries, got %d", len(scraper.SelectorNames), len(raw))
	}

	selectors := &scraper.Selectors{}
	for i, name := range scraper.SelectorNames {
		if name == scraper.SelectorURL {
			if err := decodeURLEntry(raw[i], selectors); err != nil {
				return nil, configErr(filePath, "entry %d (%s): %w", i, name, err)
			}
			continue
		}

		var entry selectorEntry
		if err := decodeStrict(raw[i], &entry); err != nil {
			return nil, configErr(filePath, "entry %d (%s): %w", i, name, err)
		}
		sel, err := scraper.NewSelector(entry.Flag, entry.Class)
		if err != nil {
			return nil, configErr(filePath, "entry %d (%s): %w", i, name, err)
		}
		if err := selectors.Set(name, sel); err != nil {
			return nil, configErr(filePath, "entry %d: %w", i, err)
		}
	}

	return selectors, nil
}

// decodeURLEntry: запись "url": строка с адресом или объект {flag, class[, url]}
func decodeURLEntry(raw json.RawMessage, selectors *scraper.Selectors) error {
	var address string
	if err := json.Unmarshal(raw, &address); err == nil {
		selectors.BaseURL = strings.TrimSpace(address)
		return nil
	}

	var entry selectorEntry
	if err := decodeStrict(raw, &entry); err != nil {
		return err
	}
	selectors.BaseURL = strings.TrimSpace(entry.URL)

	if entry.Flag == "" && entry.Class == "" {
		if selectors.BaseURL == "" {
			return fmt.Errorf("entry has neither url nor selector")
		}
		return nil
	}

	sel, err := scraper.NewSelector(entry.Flag, entry.Class)
	if err != nil {
		return err
	}
	selectors.URL = sel
	return nil
}

func decodeStrict(raw json.RawMessage, v interface{}) error {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("malformed selector entry: %w", err)
	}
	return nil
}
