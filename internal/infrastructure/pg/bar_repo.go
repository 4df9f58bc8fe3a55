package pg

import (
	"context"
	"errors"
	"time"

	"fxfolio-service/internal/application"
	"fxfolio-service/internal/domain"
	"fxfolio-service/internal/infrastructure/logx"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// BarRepo is the history store over exchange_rate_history. Rows are keyed by
// (currency_pair, date); the unique index makes the bulk upsert idempotent.
type BarRepo struct{ db *DB }

func NewBarRepo(db *DB) *BarRepo { return &BarRepo{db: db} }

var _ application.BarStore = (*BarRepo)(nil)

func (r *BarRepo) LatestDate(ctx context.Context, instrument domain.Instrument) (time.Time, error) {
	const q = `
        SELECT date FROM exchange_rate_history
        WHERE currency_pair=$1
        ORDER BY date DESC
        LIMIT 1`
	var d time.Time
	err := r.db.q(ctx).QueryRow(ctx, q, string(instrument)).Scan(&d)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, domain.ErrNoData
	}
	if err != nil {
		return time.Time{}, err
	}
	return domain.Day(d), nil
}

func (r *BarRepo) ReadRange(ctx context.Context, instrument domain.Instrument, from, to time.Time) ([]domain.Bar, error) {
	const q = `
        SELECT date, currency_pair,
               open::text, high::text, low::text, close::text,
               created_at
        FROM exchange_rate_history
        WHERE currency_pair=$1 AND date BETWEEN $2 AND $3
        ORDER BY date`
	rows, err := r.db.q(ctx).Query(ctx, q, string(instrument), from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Bar
	for rows.Next() {
		var b domain.Bar
		if err := rows.Scan(&b.Date, &b.Instrument, &b.Open, &b.High, &b.Low, &b.Close, &b.CreatedAt); err != nil {
			return nil, err
		}
		b.Date = domain.Day(b.Date)
		out = append(out, b)
	}
	return out, rows.Err()
}

// UpsertMany writes the batch in one transaction. Existing (currency_pair,
// date) rows are left untouched, so retries and overlapping calls are safe.
func (r *BarRepo) UpsertMany(ctx context.Context, bars []domain.Bar) (int64, error) {
	if len(bars) == 0 {
		return 0, nil
	}
	const ins = `
        INSERT INTO exchange_rate_history(date, currency_pair, open, high, low, close)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (currency_pair, date) DO NOTHING`
	log := logx.L().With(
		zap.String("repo", "bar"),
		zap.String("operation", "UpsertMany"),
		zap.Int("batch", len(bars)),
	)

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		log.Error("sql.begin_failed", zap.Error(err))
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, b := range bars {
		batch.Queue(ins,
			domain.Day(b.Date), string(b.Instrument),
			b.Open.String(), b.High.String(), b.Low.String(), b.Close.String(),
		)
	}
	br := tx.SendBatch(ctx, batch)
	var written int64
	for range bars {
		tag, err := br.Exec()
		if err != nil {
			_ = br.Close()
			log.Error("sql.exec_failed", zap.Error(err))
			return 0, err
		}
		written += tag.RowsAffected()
	}
	if err := br.Close(); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		log.Error("sql.commit_failed", zap.Error(err))
		return 0, err
	}
	log.Info("sql.exec_success", zap.Int64("rows_written", written))
	return written, nil
}
