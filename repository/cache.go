package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"trend-watch/models"

	"github.com/jackc/pgx/v5"
)

// GetCachedSeries retrieves a cached computed series for a ticker and
// timeframe, or nil when absent or expired.
func (r *Repository) GetCachedSeries(ctx context.Context, ticker string, tf models.Timeframe) (*models.Series, error) {
	var data []byte

	// Let the database handle expiry check to avoid timezone issues
	err := r.db.QueryRow(ctx, `
		SELECT data FROM price_series_cache
		WHERE ticker = $1 AND timeframe = $2 AND expires_at > NOW()
	`, ticker, string(tf)).Scan(&data)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query series cache: %w", err)
	}

	var series models.Series
	if err := json.Unmarshal(data, &series); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached series: %w", err)
	}

	return &series, nil
}

// SetCachedSeries stores a computed series with a TTL, replacing any
// previous entry for the same ticker and timeframe.
func (r *Repository) SetCachedSeries(ctx context.Context, ticker string, tf models.Timeframe, series *models.Series, ttl time.Duration) error {
	data, err := json.Marshal(series)
	if err != nil {
		return fmt.Errorf("failed to marshal series: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO price_series_cache (ticker, timeframe, data, expires_at)
		VALUES ($1, $2, $3, NOW() + $4::interval)
		ON CONFLICT (ticker, timeframe)
		DO UPDATE SET data = EXCLUDED.data, expires_at = NOW() + $4::interval, created_at = NOW()
	`, ticker, string(tf), data, ttl.String())

	if err != nil {
		return fmt.Errorf("failed to set series cache: %w", err)
	}

	return nil
}

// InvalidateSeries removes cached series for a ticker across all timeframes.
func (r *Repository) InvalidateSeries(ctx context.Context, ticker string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM price_series_cache WHERE ticker = $1`, ticker)
	if err != nil {
		return fmt.Errorf("failed to invalidate series cache: %w", err)
	}
	return nil
}

// CleanExpiredCache removes all expired cache entries
func (r *Repository) CleanExpiredCache(ctx context.Context) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM price_series_cache WHERE expires_at < NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to clean expired cache: %w", err)
	}
	return result.RowsAffected(), nil
}
