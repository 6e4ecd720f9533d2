package s0_data

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DongHyun925/RulePilot/internal/contracts"
	"github.com/DongHyun925/RulePilot/pkg/database"
)

func TestPriceRepository_RoundTrip(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	defer pool.Close()

	require.NoError(t, (&database.DB{Pool: pool}).EnsureSchema(ctx))

	repo := NewPriceRepository(pool)
	repo.now = func() time.Time { return time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC) }

	ticker := "RPTEST"
	_, err = pool.Exec(ctx, `DELETE FROM data.daily_prices WHERE ticker = $1`, ticker)
	require.NoError(t, err)

	raw := rawCloses(ticker, 10, 11, 12)
	raw.Columns = append(raw.Columns, contracts.RawColumn{
		Levels: []string{"Adj Close"},
		Values: []*float64{contracts.Float(9.5), nil, contracts.Float(11.5)},
	})

	n, err := repo.SaveRaw(ctx, raw, "test")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	latest, ok, err := repo.LatestDate(ctx, ticker)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2024-01-04", contracts.FormatDate(latest))

	got, err := repo.Fetch(ctx, ticker, "1mo", contracts.IntervalDaily)
	require.NoError(t, err)
	assert.Len(t, got.Dates, 3)

	_, err = repo.Fetch(ctx, "NOPE-NOT-THERE", "1mo", contracts.IntervalDaily)
	assert.ErrorIs(t, err, contracts.ErrNoData)
}
