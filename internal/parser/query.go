package parser

import (
	"regexp"
	"strings"
	"time"
)

// Query is a structured transaction search. Nil bounds are open.
type Query struct {
	Terms     []string
	Type      string
	MinAmount *int64
	MaxAmount *int64
	From      *time.Time
	To        *time.Time
}

var months = map[string]time.Month{
	"janeiro": time.January, "fevereiro": time.February, "marco": time.March,
	"abril": time.April, "maio": time.May, "junho": time.June,
	"julho": time.July, "agosto": time.August, "setembro": time.September,
	"outubro": time.October, "novembro": time.November, "dezembro": time.December,
}

var (
	betweenPattern = regexp.MustCompile(`\bentre\s+(?:r\$\s*)?([\d.,]+)\s+e\s+(?:r\$\s*)?([\d.,]+)`)
	abovePattern   = regexp.MustCompile(`\b(?:acima\s+de|maior(?:es)?\s+que|mais\s+de|a\s+partir\s+de)\s+(?:r\$\s*)?([\d.,]+)`)
	belowPattern   = regexp.MustCompile(`\b(?:abaixo\s+de|menor(?:es)?\s+que|menos\s+de|ate)\s+(?:r\$\s*)?([\d.,]+)`)
	periodPattern  = regexp.MustCompile(`\b(?:(?:est[ea]|ess[ea])\s+mes|mes\s+passado|semana\s+passada|(?:est[ea]|ess[ea])\s+semana|hoje|ontem)\b`)
)

var queryNoise = map[string]bool{
	"gastos": true, "gasto": true, "despesas": true, "despesa": true, "compras": true,
	"receitas": true, "receita": true, "entradas": true, "ganhos": true,
	"transacoes": true, "transacao": true, "todas": true, "todos": true,
	"mostre": true, "mostrar": true, "quais": true, "quanto": true, "gastei": true,
	"recebi": true, "listar": true, "ver": true,
}

// ParseQuery reads queries like "gastos com uber acima de 50 em março" into a
// Query. Month names resolve to the most recent such month not after now.
func ParseQuery(text string, now time.Time) Query {
	s := fold(text)
	var q Query

	if m := betweenPattern.FindStringSubmatch(s); m != nil {
		q.MinAmount = cents(m[1])
		q.MaxAmount = cents(m[2])
		s = strings.Replace(s, m[0], " ", 1)
	}
	if m := abovePattern.FindStringSubmatch(s); m != nil {
		q.MinAmount = cents(m[1])
		s = strings.Replace(s, m[0], " ", 1)
	}
	if m := belowPattern.FindStringSubmatch(s); m != nil {
		q.MaxAmount = cents(m[1])
		s = strings.Replace(s, m[0], " ", 1)
	}
	if m := periodPattern.FindString(s); m != "" {
		from, to := period(m, now)
		q.From, q.To = &from, &to
		s = strings.Replace(s, m, " ", 1)
	}

	for _, w := range words(s) {
		switch w {
		case "gastos", "gasto", "despesas", "despesa", "compras", "gastei":
			q.Type = Expense
		case "receitas", "receita", "entradas", "ganhos", "recebi":
			q.Type = Income
		}
		if month, ok := months[w]; ok && q.From == nil {
			from, to := monthRange(month, now)
			q.From, q.To = &from, &to
			continue
		}
		if queryNoise[w] {
			continue
		}
		q.Terms = append(q.Terms, w)
	}
	return q
}

// Matches reports whether every term occurs in one of the texts, ignoring
// case and accents. A query without terms matches everything.
func (q Query) Matches(texts ...string) bool {
	folded := make([]string, len(texts))
	for i, t := range texts {
		folded[i] = fold(t)
	}
	for _, term := range q.Terms {
		found := false
		for _, f := range folded {
			if strings.Contains(f, term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func cents(raw string) *int64 {
	v, ok := parseCents(strings.Trim(raw, ".,"))
	if !ok {
		return nil
	}
	return &v
}

func monthRange(m time.Month, now time.Time) (time.Time, time.Time) {
	year := now.Year()
	if m > now.Month() {
		year--
	}
	from := time.Date(year, m, 1, 0, 0, 0, 0, now.Location())
	return from, from.AddDate(0, 1, 0).Add(-time.Nanosecond)
}

func period(phrase string, now time.Time) (time.Time, time.Time) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	endOf := func(t time.Time) time.Time { return t.Add(-time.Nanosecond) }
	switch {
	case phrase == "hoje":
		return day, endOf(day.AddDate(0, 0, 1))
	case phrase == "ontem":
		return day.AddDate(0, 0, -1), endOf(day)
	case strings.HasPrefix(phrase, "mes passado"):
		first := time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, now.Location())
		return first, endOf(first.AddDate(0, 1, 0))
	case strings.HasSuffix(phrase, "semana passada"):
		start := day.AddDate(0, 0, -int(day.Weekday())-7)
		return start, endOf(start.AddDate(0, 0, 7))
	case strings.HasSuffix(phrase, "semana"):
		start := day.AddDate(0, 0, -int(day.Weekday()))
		return start, endOf(start.AddDate(0, 0, 7))
	default:
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return first, endOf(first.AddDate(0, 1, 0))
	}
}
