package services

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "cortex/internal/errors"
	"cortex/internal/finance"
	"cortex/internal/logger"
	"cortex/internal/market"
	"cortex/internal/models"
)

type portfolioService struct {
	db       *gorm.DB
	provider market.Provider
}

// NewPortfolioService creates a new PortfolioServicer. provider may be nil, in
// which case every holding is carried at cost.
func NewPortfolioService(db *gorm.DB, provider market.Provider) PortfolioServicer {
	return &portfolioService{db: db, provider: provider}
}

func validHoldingType(t models.HoldingType) bool {
	switch t {
	case models.HoldingTypeStock, models.HoldingTypeFII, models.HoldingTypeCrypto, models.HoldingTypeFixedIncome:
		return true
	}
	return false
}

// GetPortfolio values the user's holdings at the latest stored quotes.
func (s *portfolioService) GetPortfolio(userID string) (*finance.Portfolio, error) {
	var holdings []models.Holding
	if err := s.db.Scopes(models.OwnedBy(userID)).Order("created_at ASC, id ASC").Find(&holdings).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	tickers := make([]string, 0, len(holdings))
	for _, h := range holdings {
		tickers = append(tickers, h.Ticker)
	}
	prices := make(map[string]models.MarketPrice, len(tickers))
	if len(tickers) > 0 {
		var rows []models.MarketPrice
		if err := s.db.Where("ticker IN ?", tickers).Find(&rows).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		for _, p := range rows {
			prices[p.Ticker] = p
		}
	}

	positions := make([]finance.Position, len(holdings))
	for i, h := range holdings {
		positions[i] = finance.Position{
			ID:       h.ID,
			Ticker:   h.Ticker,
			Name:     h.Name,
			Type:     string(h.Type),
			Quantity: h.Quantity,
			AvgPrice: h.AvgPrice,
		}
		if p, ok := prices[h.Ticker]; ok {
			price := p.Price
			positions[i].CurrentPrice = &price
			positions[i].ChangePct = p.ChangePct
		}
	}

	portfolio := finance.ValuePortfolio(positions)
	if portfolio.Holdings == nil {
		portfolio.Holdings = []finance.Valuation{}
	}
	return &portfolio, nil
}

// AddHolding records a position and then tries to quote it. A failed quote
// leaves the holding valued at cost.
func (s *portfolioService) AddHolding(ctx context.Context, userID string, in HoldingInput) (*models.Holding, error) {
	ticker := strings.ToUpper(strings.TrimSpace(in.Ticker))
	if ticker == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "ticker is required")
	}
	if !validHoldingType(in.Type) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "type must be STOCK, FII, CRYPTO or FIXED_INCOME")
	}
	qty, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(in.Quantity), ",", "."))
	if err != nil || !qty.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "quantity must be a positive number")
	}
	if in.AvgPrice < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "avg_price must not be negative")
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = ticker
	}
	holding := &models.Holding{
		UserID:   userID,
		Ticker:   ticker,
		Name:     name,
		Type:     in.Type,
		Quantity: qty,
		AvgPrice: in.AvgPrice,
	}
	if err := s.db.Create(holding).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if s.provider != nil && s.provider.Supports(string(holding.Type)) {
		if _, err := s.refresh(ctx, []market.Asset{{Ticker: holding.Ticker, Type: string(holding.Type)}}); err != nil {
			logger.Get().Warnw("price refresh after add failed", "ticker", holding.Ticker, "error", err)
		}
	}
	return holding, nil
}

// DeleteHolding soft-deletes a holding.
func (s *portfolioService) DeleteHolding(userID, holdingID string) error {
	var holding models.Holding
	if err := s.db.Scopes(models.OwnedRecord(holdingID, userID)).First(&holding).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrHoldingNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Delete(&holding).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// RefreshPrices quotes every distinct ticker held by any user and stores the
// results. Unsupported types such as FIXED_INCOME are skipped.
func (s *portfolioService) RefreshPrices(ctx context.Context) (*RefreshResult, error) {
	result := &RefreshResult{Failed: []string{}}
	if s.provider == nil {
		return result, nil
	}

	var rows []struct {
		Ticker string
		Type   string
	}
	if err := s.db.Model(&models.Holding{}).Distinct("ticker", "type").Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	seen := make(map[string]bool, len(rows))
	assets := make([]market.Asset, 0, len(rows))
	for _, r := range rows {
		if seen[r.Ticker] || !s.provider.Supports(r.Type) {
			continue
		}
		seen[r.Ticker] = true
		assets = append(assets, market.Asset{Ticker: r.Ticker, Type: r.Type})
	}
	if len(assets) == 0 {
		return result, nil
	}
	return s.refresh(ctx, assets)
}

func (s *portfolioService) refresh(ctx context.Context, assets []market.Asset) (*RefreshResult, error) {
	quotes, failures := s.provider.FetchPrices(ctx, assets)

	result := &RefreshResult{Failed: []string{}}
	for _, f := range failures {
		logger.Get().Warnw("quote failed", "provider", s.provider.Name(), "ticker", f.Ticker, "error", f.Err)
		result.Failed = append(result.Failed, f.Ticker)
	}
	sort.Strings(result.Failed)

	for _, q := range quotes {
		price := models.MarketPrice{
			Ticker:     q.Ticker,
			Price:      q.Price,
			ChangePct:  q.ChangePct,
			Source:     q.Source,
			RecordedAt: q.RecordedAt.UTC(),
		}
		err := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "ticker"}},
			DoUpdates: clause.AssignmentColumns([]string{"price", "change_pct", "source", "recorded_at"}),
		}).Create(&price).Error
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		result.Updated++
	}
	return result, nil
}
