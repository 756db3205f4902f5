package repository

import (
	"context"
	"time"

	"trend-watch/models"
)

// RepositoryInterface defines all repository operations
type RepositoryInterface interface {
	// Health and lifecycle
	Close()
	Health(ctx context.Context) error

	// Users
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)

	// Watchlist
	AddToWatchlist(ctx context.Context, userID int64, ticker string) error
	RemoveFromWatchlist(ctx context.Context, userID int64, ticker string) error
	GetWatchlist(ctx context.Context, userID int64) ([]models.WatchlistEntry, error)

	// Series cache
	GetCachedSeries(ctx context.Context, ticker string, tf models.Timeframe) (*models.Series, error)
	SetCachedSeries(ctx context.Context, ticker string, tf models.Timeframe, series *models.Series, ttl time.Duration) error
	InvalidateSeries(ctx context.Context, ticker string) error
	CleanExpiredCache(ctx context.Context) (int64, error)
}

// Compile-time interface verification
var _ RepositoryInterface = (*Repository)(nil)
