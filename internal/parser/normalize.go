// Package parser turns short Portuguese chat messages and search queries into
// structured transaction data.
package parser

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// fold lower-cases s and strips diacritics so "Salário" matches "salario".
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// amountPattern matches "1.234,56", "1234,56", "1234.56", "1.200" and "50",
// optionally prefixed by "R$".
var amountPattern = regexp.MustCompile(`(?i)(?:r\$\s*)?(\d{1,3}(?:\.\d{3})+(?:,\d{1,2})?|\d+(?:[.,]\d{1,2})?)\b`)

// parseCents converts a Brazilian or plain decimal amount to cents.
func parseCents(raw string) (int64, bool) {
	s := raw
	switch {
	case strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case strings.Count(s, ".") >= 1 && len(s) > 4 && s[len(s)-4] == '.':
		// thousands separator only: 1.200
		s = strings.ReplaceAll(s, ".", "")
	}

	whole, frac, _ := strings.Cut(s, ".")
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, false
	}
	var cents int64
	if frac != "" {
		if len(frac) == 1 {
			frac += "0"
		}
		c, err := strconv.ParseInt(frac[:2], 10, 64)
		if err != nil {
			return 0, false
		}
		cents = c
	}
	return units*100 + cents, true
}

var stopwords = map[string]bool{
	"a": true, "o": true, "as": true, "os": true, "um": true, "uma": true,
	"de": true, "do": true, "da": true, "dos": true, "das": true,
	"no": true, "na": true, "nos": true, "nas": true, "em": true,
	"com": true, "para": true, "pra": true, "pro": true, "por": true,
	"r$": true, "reais": true, "real": true, "e": true, "meu": true, "minha": true,
}

// words splits folded text into tokens without stopwords.
func words(s string) []string {
	var out []string
	for _, w := range strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == ';' || r == '!' || r == '?'
	}) {
		if !stopwords[w] {
			out = append(out, w)
		}
	}
	return out
}
