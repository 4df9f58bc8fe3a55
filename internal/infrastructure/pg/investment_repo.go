package pg

import (
	"context"
	"errors"

	"fxfolio-service/internal/application"
	"fxfolio-service/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type InvestmentRepo struct{ db *DB }

func NewInvestmentRepo(db *DB) *InvestmentRepo { return &InvestmentRepo{db: db} }

var _ application.InvestmentRepo = (*InvestmentRepo)(nil)

const investmentColumns = `
        id::text, currency, number, purchase_date,
        amount::text, rate::text, purchase_krw::text,
        exchange_name, created_at`

func (r *InvestmentRepo) Create(ctx context.Context, inv *domain.Investment) error {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	// The per-currency lot number is assigned here so concurrent creates
	// cannot hand out duplicates from an application-side counter.
	const ins = `
        INSERT INTO investments(id, currency, number, purchase_date, amount, rate, purchase_krw, exchange_name)
        VALUES ($1, $2,
                (SELECT COALESCE(MAX(number), 0) + 1 FROM investments WHERE currency = $2),
                $3, $4, $5, $6, $7)
        RETURNING number, created_at`
	return r.db.q(ctx).QueryRow(ctx, ins,
		inv.ID, string(inv.Currency), inv.PurchaseDate,
		inv.Amount.String(), inv.Rate.String(), inv.PurchaseKRW.String(),
		inv.ExchangeName,
	).Scan(&inv.Number, &inv.CreatedAt)
}

func (r *InvestmentRepo) List(ctx context.Context, currency domain.LotCurrency) ([]domain.Investment, error) {
	q := `SELECT ` + investmentColumns + ` FROM investments ORDER BY purchase_date DESC`
	args := []any{}
	if currency != "" {
		q = `SELECT ` + investmentColumns + ` FROM investments WHERE currency=$1 ORDER BY purchase_date DESC`
		args = append(args, string(currency))
	}
	rows, err := r.db.q(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Investment
	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *InvestmentRepo) GetByID(ctx context.Context, id string) (domain.Investment, error) {
	q := `SELECT ` + investmentColumns + ` FROM investments WHERE id=$1`
	inv, err := scanInvestment(r.db.q(ctx).QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Investment{}, application.ErrNotFound
	}
	if err != nil {
		return domain.Investment{}, err
	}
	return inv, nil
}

func (r *InvestmentRepo) UpdateAmount(ctx context.Context, id string, amount, purchaseKRW decimal.Decimal) error {
	const up = `UPDATE investments SET amount=$2, purchase_krw=$3 WHERE id=$1`
	tag, err := r.db.q(ctx).Exec(ctx, up, id, amount.String(), purchaseKRW.String())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return application.ErrNotFound
	}
	return nil
}

func (r *InvestmentRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.q(ctx).Exec(ctx, `DELETE FROM investments WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return application.ErrNotFound
	}
	return nil
}

func scanInvestment(row pgx.Row) (domain.Investment, error) {
	var inv domain.Investment
	err := row.Scan(
		&inv.ID, &inv.Currency, &inv.Number, &inv.PurchaseDate,
		&inv.Amount, &inv.Rate, &inv.PurchaseKRW,
		&inv.ExchangeName, &inv.CreatedAt,
	)
	return inv, err
}
