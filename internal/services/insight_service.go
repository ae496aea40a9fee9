package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/gorm"

	apperrors "cortex/internal/errors"
	"cortex/internal/finance"
	"cortex/internal/llm"
	"cortex/internal/logger"
	"cortex/internal/models"
)

const insightSampleSize = 50

const (
	insightNoData   = "Ainda não tenho dados suficientes para gerar insights. Registre alguns gastos e volte depois."
	insightFallback = "Não consegui gerar uma análise agora. Tente novamente mais tarde."
)

const insightPrompt = `Você é um consultor financeiro pessoal brasileiro. Analise as transações
do usuário e responda apenas com JSON no formato {"insights": ["...", "...", "..."]}
contendo de 3 a 5 observações curtas, práticas e em português.`

type insightService struct {
	db        *gorm.DB
	completer llm.Completer
}

// NewInsightService creates a new InsightServicer. A nil completer always
// yields the fallback message.
func NewInsightService(db *gorm.DB, completer llm.Completer) InsightServicer {
	return &insightService{db: db, completer: completer}
}

// GenerateInsights asks the model for observations on the latest
// transactions. Model failures never surface as errors.
func (s *insightService) GenerateInsights(ctx context.Context, userID string) ([]string, error) {
	var txs []models.Transaction
	if err := s.db.Scopes(models.OwnedBy(userID)).
		Order("date DESC").
		Limit(insightSampleSize).
		Find(&txs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(txs) == 0 {
		return []string{insightNoData}, nil
	}
	if s.completer == nil {
		return []string{insightFallback}, nil
	}

	var b strings.Builder
	for _, t := range txs {
		fmt.Fprintf(&b, "%s | %s | %s | %s | %s\n",
			t.Date.UTC().Format("2006-01-02"), t.Type, t.Category, t.Description, finance.FormatBRL(t.Amount))
	}

	reply, err := s.completer.Complete(ctx, insightPrompt, b.String())
	if err != nil {
		logger.Get().Warnw("insight completion failed", "user_id", userID, "error", err)
		return []string{insightFallback}, nil
	}
	if insights := parseInsights(reply); len(insights) > 0 {
		return insights, nil
	}
	return []string{insightFallback}, nil
}

// parseInsights accepts the requested JSON shape, optionally fenced in a
// markdown code block, and falls back to one insight per line.
func parseInsights(reply string) []string {
	body := strings.TrimSpace(reply)
	body = strings.TrimPrefix(body, "```json")
	body = strings.TrimPrefix(body, "```")
	body = strings.TrimSuffix(body, "```")

	var parsed struct {
		Insights []string `json:"insights"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(body)), &parsed); err == nil {
		out := make([]string, 0, len(parsed.Insights))
		for _, s := range parsed.Insights {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return llm.Lines(reply)
}
