package parser

import (
	"regexp"
	"strings"
)

// Free-text price fragments carry either <amount><currency> or
// <currency><amount>; currencies appear as ISO codes or as the symbols
// the site renders per storefront locale.
var (
	amountFirstPattern   = regexp.MustCompile(`(?i)(\d[\d\s.,]*)\s*([A-Z]{3}|€|£|\$)`)
	currencyFirstPattern = regexp.MustCompile(`(?i)([A-Z]{3}|€|£|\$)\s*(\d[\d\s.,]*)`)
	amountSeparators     = regexp.MustCompile(`[\s,]`)
)

var currencySymbols = map[string]string{
	"€": "EUR",
	"£": "GBP",
	"$": "USD",
}

// ISO-4217 codes the normalizer recognizes. Matching against a closed set
// keeps arbitrary three-letter words out of the price string.
var knownCurrencies = map[string]struct{}{
	"EUR": {}, "USD": {}, "GBP": {}, "CZK": {}, "PLN": {},
	"SEK": {}, "NOK": {}, "DKK": {}, "CHF": {}, "JPY": {},
	"AUD": {}, "CAD": {}, "HUF": {}, "RON": {}, "KRW": {},
}

// NormalizePrice parses price fragments into the canonical multi-currency
// string, e.g. "400CZK,20EUR". Fragments are scanned in the order given,
// so callers put detail-page elements before the listing fallback. Tokens
// are deduplicated by (amount, currency), first occurrence wins. An empty
// result is "", never a lone separator.
func NormalizePrice(fragments []string) string {
	var parts []string
	seen := make(map[string]struct{})

	appendToken := func(rawAmount, rawCurrency string) {
		currency, ok := normalizeCurrency(rawCurrency)
		if !ok {
			return
		}
		amount := normalizeAmount(rawAmount)
		if amount == "" {
			return
		}
		token := amount + currency
		if _, dup := seen[token]; dup {
			return
		}
		seen[token] = struct{}{}
		parts = append(parts, token)
	}

	for _, fragment := range fragments {
		fragment = strings.TrimSpace(fragment)
		if fragment == "" || len(fragment) > 200 {
			continue
		}
		for _, m := range amountFirstPattern.FindAllStringSubmatch(fragment, -1) {
			appendToken(m[1], m[2])
		}
		for _, m := range currencyFirstPattern.FindAllStringSubmatch(fragment, -1) {
			appendToken(m[2], m[1])
		}
	}

	return strings.Join(parts, ",")
}

// normalizeAmount strips whitespace and thousands-separator commas.
// Ambiguous locale formats are kept verbatim beyond that stripping.
func normalizeAmount(raw string) string {
	amount := amountSeparators.ReplaceAllString(raw, "")
	return strings.TrimRight(amount, ".")
}

func normalizeCurrency(raw string) (string, bool) {
	if code, ok := currencySymbols[raw]; ok {
		return code, true
	}
	code := strings.ToUpper(raw)
	if _, ok := knownCurrencies[code]; ok {
		return code, true
	}
	return "", false
}
