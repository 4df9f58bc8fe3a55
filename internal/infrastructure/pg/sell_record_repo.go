package pg

import (
	"context"

	"fxfolio-service/internal/application"
	"fxfolio-service/internal/domain"

	"github.com/google/uuid"
)

type SellRecordRepo struct{ db *DB }

func NewSellRecordRepo(db *DB) *SellRecordRepo { return &SellRecordRepo{db: db} }

var _ application.SellRecordRepo = (*SellRecordRepo)(nil)

func (r *SellRecordRepo) Create(ctx context.Context, rec *domain.SellRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	const ins = `
        INSERT INTO sell_records(id, investment_id, investment_number, currency, sell_date,
                                 purchase_rate, sell_rate, amount, sell_krw, profit_krw, exchange_name)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING created_at`
	return r.db.q(ctx).QueryRow(ctx, ins,
		rec.ID, rec.InvestmentID, rec.InvestmentNumber, string(rec.Currency), rec.SellDate,
		rec.PurchaseRate.String(), rec.SellRate.String(), rec.Amount.String(),
		rec.SellKRW.String(), rec.ProfitKRW.String(), rec.ExchangeName,
	).Scan(&rec.CreatedAt)
}

func (r *SellRecordRepo) List(ctx context.Context, currency domain.LotCurrency) ([]domain.SellRecord, error) {
	const cols = `
        id::text, investment_id::text, investment_number, currency, sell_date,
        purchase_rate::text, sell_rate::text, amount::text,
        sell_krw::text, profit_krw::text, exchange_name, created_at`
	q := `SELECT ` + cols + ` FROM sell_records ORDER BY sell_date DESC`
	args := []any{}
	if currency != "" {
		q = `SELECT ` + cols + ` FROM sell_records WHERE currency=$1 ORDER BY sell_date DESC`
		args = append(args, string(currency))
	}
	rows, err := r.db.q(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SellRecord
	for rows.Next() {
		var rec domain.SellRecord
		if err := rows.Scan(
			&rec.ID, &rec.InvestmentID, &rec.InvestmentNumber, &rec.Currency, &rec.SellDate,
			&rec.PurchaseRate, &rec.SellRate, &rec.Amount,
			&rec.SellKRW, &rec.ProfitKRW, &rec.ExchangeName, &rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SellRecordRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.q(ctx).Exec(ctx, `DELETE FROM sell_records WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return application.ErrNotFound
	}
	return nil
}
