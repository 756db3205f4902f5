package repository

import (
	"context"
	"fmt"

	"trend-watch/models"
)

// AddToWatchlist adds a ticker to a user's watch-list. The add is
// idempotent: a ticker already on the list leaves the row untouched and
// returns no error.
func (r *Repository) AddToWatchlist(ctx context.Context, userID int64, ticker string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO watchlist (user_id, ticker)
		VALUES ($1, $2)
		ON CONFLICT (user_id, ticker) DO NOTHING
	`, userID, ticker)

	if err != nil {
		return fmt.Errorf("failed to add %s to watchlist: %w", ticker, err)
	}

	return nil
}

// RemoveFromWatchlist removes a ticker from a user's watch-list. Removing
// a ticker that is not on the list is a no-op, not an error.
func (r *Repository) RemoveFromWatchlist(ctx context.Context, userID int64, ticker string) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM watchlist WHERE user_id = $1 AND ticker = $2
	`, userID, ticker)

	if err != nil {
		return fmt.Errorf("failed to remove %s from watchlist: %w", ticker, err)
	}

	return nil
}

// GetWatchlist returns all watch-list entries for a user.
func (r *Repository) GetWatchlist(ctx context.Context, userID int64) ([]models.WatchlistEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, ticker, added_at
		FROM watchlist
		WHERE user_id = $1
		ORDER BY added_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlist: %w", err)
	}
	defer rows.Close()

	var entries []models.WatchlistEntry
	for rows.Next() {
		var e models.WatchlistEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Ticker, &e.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan watchlist entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, nil
}
