package s0_data

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/DongHyun925/RulePilot/internal/contracts"
)

// PriceRepository PostgreSQL 일별 가격 저장소
// ⭐ SSOT: data.daily_prices 접근은 여기서만
// contracts.PriceFeed 를 구현하므로 PRICE_SOURCE=postgres 에서 공급자로 사용
type PriceRepository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewPriceRepository creates a new price repository
func NewPriceRepository(pool *pgxpool.Pool) *PriceRepository {
	return &PriceRepository{pool: pool, now: time.Now}
}

// Fetch implements contracts.PriceFeed over stored daily prices.
func (r *PriceRepository) Fetch(ctx context.Context, ticker, period, interval string) (*contracts.RawSeries, error) {
	if err := ValidateInterval(interval); err != nil {
		return nil, err
	}
	window, err := ParsePeriod(period, r.now())
	if err != nil {
		return nil, err
	}

	query := `
		SELECT trade_date, close_price, adj_close
		FROM data.daily_prices
		WHERE ticker = $1 AND trade_date BETWEEN $2 AND $3
		ORDER BY trade_date ASC
	`

	rows, err := r.pool.Query(ctx, query, ticker, window.From, window.To)
	if err != nil {
		return nil, contracts.NewNoDataError(ticker, period, fmt.Errorf("query prices: %w", err))
	}
	defer rows.Close()

	raw := &contracts.RawSeries{
		Ticker: ticker,
		Columns: []contracts.RawColumn{
			{Levels: []string{"Close", ticker}},
			{Levels: []string{"Adj Close", ticker}},
		},
	}
	for rows.Next() {
		var (
			date     time.Time
			closeP   float64
			adjClose *float64
		)
		if err := rows.Scan(&date, &closeP, &adjClose); err != nil {
			return nil, fmt.Errorf("scan price row: %w", err)
		}
		raw.Dates = append(raw.Dates, date)
		raw.Columns[0].Values = append(raw.Columns[0].Values, contracts.Float(closeP))
		raw.Columns[1].Values = append(raw.Columns[1].Values, adjClose)
	}
	if err := rows.Err(); err != nil {
		return nil, contracts.NewNoDataError(ticker, period, err)
	}

	if len(raw.Dates) == 0 {
		return nil, contracts.NewNoDataError(ticker, period, fmt.Errorf("no rows in %s~%s",
			contracts.FormatDate(window.From), contracts.FormatDate(window.To)))
	}
	return raw, nil
}

// LatestDate returns the most recent stored trade date for ticker (ok=false if none).
func (r *PriceRepository) LatestDate(ctx context.Context, ticker string) (time.Time, bool, error) {
	query := `SELECT MAX(trade_date) FROM data.daily_prices WHERE ticker = $1`

	var latest *time.Time
	if err := r.pool.QueryRow(ctx, query, ticker).Scan(&latest); err != nil {
		return time.Time{}, false, fmt.Errorf("query latest date: %w", err)
	}
	if latest == nil {
		return time.Time{}, false, nil
	}
	return *latest, true, nil
}

// SaveRaw upserts the close / adjusted close rows of raw; rows without a close are skipped.
// Returns the number of rows written.
func (r *PriceRepository) SaveRaw(ctx context.Context, raw *contracts.RawSeries, source string) (int, error) {
	if raw == nil || len(raw.Dates) == 0 {
		return 0, nil
	}

	closeCol, ok := findColumn(raw, closeNames)
	if !ok {
		return 0, fmt.Errorf("%s: no close column to store", raw.Ticker)
	}
	adjCol, hasAdj := findColumn(raw, adjCloseNames)

	query := `
		INSERT INTO data.daily_prices (ticker, trade_date, close_price, adj_close, source, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (ticker, trade_date) DO UPDATE SET
			close_price = EXCLUDED.close_price,
			adj_close = EXCLUDED.adj_close,
			source = EXCLUDED.source,
			updated_at = NOW()
	`

	batch := &pgx.Batch{}
	for i, date := range raw.Dates {
		if i >= len(closeCol.Values) || !usable(closeCol.Values[i]) {
			continue
		}
		var adj *float64
		if hasAdj && i < len(adjCol.Values) && usable(adjCol.Values[i]) {
			adj = adjCol.Values[i]
		}
		batch.Queue(query, raw.Ticker, contracts.TruncateDate(date), *closeCol.Values[i], adj, source)
	}
	if batch.Len() == 0 {
		return 0, nil
	}

	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return 0, fmt.Errorf("save prices for %s: %w", raw.Ticker, err)
	}
	return batch.Len(), nil
}
