package pg_test

import (
	"context"
	"testing"
	"time"

	"fxfolio-service/internal/application"
	"fxfolio-service/internal/domain"
	"fxfolio-service/internal/infrastructure/pg"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func mkInvestment(currency domain.LotCurrency) *domain.Investment {
	return &domain.Investment{
		Currency:     currency,
		PurchaseDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Amount:       decimal.RequireFromString("1000"),
		Rate:         decimal.RequireFromString("1333.5"),
		PurchaseKRW:  decimal.RequireFromString("1333500"),
		ExchangeName: "test-exchange",
	}
}

func TestInvestmentRepo_CreateAssignsPerCurrencyNumbers(t *testing.T) {
	db, teardown := withPostgres(t)
	defer teardown()
	repo := pg.NewInvestmentRepo(db)
	ctx := context.Background()

	first := mkInvestment(domain.LotUSD)
	require.NoError(t, repo.Create(ctx, first))
	require.Equal(t, 1, first.Number)
	require.NotEmpty(t, first.ID)
	require.False(t, first.CreatedAt.IsZero())

	second := mkInvestment(domain.LotUSD)
	require.NoError(t, repo.Create(ctx, second))
	require.Equal(t, 2, second.Number)

	// Numbering restarts per currency.
	jpy := mkInvestment(domain.LotJPY)
	require.NoError(t, repo.Create(ctx, jpy))
	require.Equal(t, 1, jpy.Number)
}

func TestInvestmentRepo_GetUpdateDelete(t *testing.T) {
	db, teardown := withPostgres(t)
	defer teardown()
	repo := pg.NewInvestmentRepo(db)
	ctx := context.Background()

	inv := mkInvestment(domain.LotUSD)
	require.NoError(t, repo.Create(ctx, inv))

	got, err := repo.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	require.True(t, got.Amount.Equal(inv.Amount))
	require.Equal(t, "test-exchange", got.ExchangeName)

	newAmount := decimal.RequireFromString("600")
	newKRW := decimal.RequireFromString("800100")
	require.NoError(t, repo.UpdateAmount(ctx, inv.ID, newAmount, newKRW))

	got, err = repo.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	require.True(t, got.Amount.Equal(newAmount))
	require.True(t, got.PurchaseKRW.Equal(newKRW))

	require.NoError(t, repo.Delete(ctx, inv.ID))
	_, err = repo.GetByID(ctx, inv.ID)
	require.ErrorIs(t, err, application.ErrNotFound)
}

func TestInvestmentRepo_ListFiltersByCurrency(t *testing.T) {
	db, teardown := withPostgres(t)
	defer teardown()
	repo := pg.NewInvestmentRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, mkInvestment(domain.LotUSD)))
	require.NoError(t, repo.Create(ctx, mkInvestment(domain.LotJPY)))

	usd, err := repo.List(ctx, domain.LotUSD)
	require.NoError(t, err)
	require.Len(t, usd, 1)
	require.Equal(t, domain.LotUSD, usd[0].Currency)

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestInvestmentRepo_NotFound(t *testing.T) {
	db, teardown := withPostgres(t)
	defer teardown()
	repo := pg.NewInvestmentRepo(db)
	ctx := context.Background()

	missing := "00000000-0000-0000-0000-000000000000"
	require.ErrorIs(t, repo.Delete(ctx, missing), application.ErrNotFound)
	require.ErrorIs(t, repo.UpdateAmount(ctx, missing, decimal.NewFromInt(1), decimal.NewFromInt(1)), application.ErrNotFound)
}
