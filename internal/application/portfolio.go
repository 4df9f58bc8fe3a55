package application

import (
	"context"
	"fmt"

	"fxfolio-service/internal/domain"

	"github.com/shopspring/decimal"
)

// sellEpsilon: remainders at or below this are treated as a full sell, so
// rounding dust never leaves a phantom lot behind.
var sellEpsilon = decimal.NewFromFloat(0.01)

// PortfolioService manages foreign-currency lots and their sell records.
type PortfolioService struct {
	investments InvestmentRepo
	sells       SellRecordRepo
	uow         UnitOfWork
	clock       Clock
}

func NewPortfolioService(investments InvestmentRepo, sells SellRecordRepo, uow UnitOfWork, opts ...PortfolioOption) *PortfolioService {
	s := &PortfolioService{investments: investments, sells: sells, uow: uow}
	for _, opt := range opts {
		opt(s)
	}
	if s.uow == nil {
		s.uow = NoopUoW{}
	}
	if s.clock == nil {
		s.clock = realClock{}
	}
	return s
}

type PortfolioOption func(*PortfolioService)

func WithPortfolioClock(c Clock) PortfolioOption {
	return func(s *PortfolioService) { s.clock = c }
}

func (s *PortfolioService) CreateInvestment(ctx context.Context, inv *domain.Investment) error {
	if !inv.Currency.Valid() {
		return fmt.Errorf("%w: currency %q", ErrBadRequest, inv.Currency)
	}
	if !inv.Amount.IsPositive() || !inv.Rate.IsPositive() {
		return fmt.Errorf("%w: amount and rate must be positive", ErrBadRequest)
	}
	if inv.PurchaseKRW.IsZero() {
		inv.PurchaseKRW = inv.Amount.Mul(inv.Rate)
	}
	if inv.PurchaseDate.IsZero() {
		inv.PurchaseDate = s.clock.Now()
	}
	return s.investments.Create(ctx, inv)
}

func (s *PortfolioService) ListInvestments(ctx context.Context, currency domain.LotCurrency) ([]domain.Investment, error) {
	return s.investments.List(ctx, currency)
}

func (s *PortfolioService) DeleteInvestment(ctx context.Context, id string) error {
	return s.investments.Delete(ctx, id)
}

func (s *PortfolioService) ListSellRecords(ctx context.Context, currency domain.LotCurrency) ([]domain.SellRecord, error) {
	return s.sells.List(ctx, currency)
}

func (s *PortfolioService) DeleteSellRecord(ctx context.Context, id string) error {
	return s.sells.Delete(ctx, id)
}

// SellOutcome reports what a Sell call did to the lot.
type SellOutcome struct {
	Record    domain.SellRecord
	Remaining decimal.Decimal
	Closed    bool
}

// Sell realizes part or all of a lot at the given rate. The sell record and
// the lot mutation commit atomically: a partial sell reduces the amount and
// the KRW cost basis proportionally, a full sell removes the lot.
func (s *PortfolioService) Sell(ctx context.Context, investmentID string, sellRate, amount decimal.Decimal) (SellOutcome, error) {
	inv, err := s.investments.GetByID(ctx, investmentID)
	if err != nil {
		return SellOutcome{}, err
	}
	if !amount.IsPositive() || !sellRate.IsPositive() {
		return SellOutcome{}, fmt.Errorf("%w: sell amount and rate must be positive", ErrBadRequest)
	}
	if amount.GreaterThan(inv.Amount) {
		return SellOutcome{}, fmt.Errorf("%w: cannot sell %s, holding %s %s", ErrBadRequest, amount, inv.Amount, inv.Currency)
	}

	rec := domain.SellRecord{
		InvestmentID:     inv.ID,
		InvestmentNumber: inv.Number,
		Currency:         inv.Currency,
		SellDate:         s.clock.Now(),
		PurchaseRate:     inv.Rate,
		SellRate:         sellRate,
		Amount:           amount,
		SellKRW:          amount.Mul(sellRate),
		ProfitKRW:        sellRate.Sub(inv.Rate).Mul(amount),
		ExchangeName:     inv.ExchangeName,
	}

	remaining := inv.Amount.Sub(amount)
	closed := remaining.LessThanOrEqual(sellEpsilon)

	err = s.uow.Do(ctx, func(ctx context.Context) error {
		if err := s.sells.Create(ctx, &rec); err != nil {
			return err
		}
		if closed {
			return s.investments.Delete(ctx, inv.ID)
		}
		return s.investments.UpdateAmount(ctx, inv.ID, remaining, remaining.Mul(inv.Rate))
	})
	if err != nil {
		return SellOutcome{}, err
	}
	if closed {
		remaining = decimal.Zero
	}
	return SellOutcome{Record: rec, Remaining: remaining, Closed: closed}, nil
}

// LotValuation is a lot marked to the current rate.
type LotValuation struct {
	Investment    domain.Investment
	CurrentRate   decimal.Decimal
	ValueKRW      decimal.Decimal
	UnrealizedKRW decimal.Decimal
}

// ValueLots marks every lot of a currency to the given live rate.
func (s *PortfolioService) ValueLots(ctx context.Context, currency domain.LotCurrency, rate decimal.Decimal) ([]LotValuation, error) {
	lots, err := s.investments.List(ctx, currency)
	if err != nil {
		return nil, err
	}
	out := make([]LotValuation, 0, len(lots))
	for _, inv := range lots {
		out = append(out, LotValuation{
			Investment:    inv,
			CurrentRate:   rate,
			ValueKRW:      inv.Amount.Mul(rate),
			UnrealizedKRW: rate.Sub(inv.Rate).Mul(inv.Amount),
		})
	}
	return out, nil
}
