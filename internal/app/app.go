package app

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"trend-watch/alerts"
	"trend-watch/analysis"
	"trend-watch/charts"
	"trend-watch/config"
	"trend-watch/models"
	"trend-watch/observability"
	"trend-watch/services"

	"github.com/golang-jwt/jwt/v5"
)

// RepositoryInterface defines the repository operations needed by App
type RepositoryInterface interface {
	Close()
	Health(ctx context.Context) error
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	AddToWatchlist(ctx context.Context, userID int64, ticker string) error
	RemoveFromWatchlist(ctx context.Context, userID int64, ticker string) error
	GetWatchlist(ctx context.Context, userID int64) ([]models.WatchlistEntry, error)
	GetCachedSeries(ctx context.Context, ticker string, tf models.Timeframe) (*models.Series, error)
	SetCachedSeries(ctx context.Context, ticker string, tf models.Timeframe, series *models.Series, ttl time.Duration) error
}

// SessionStore defines the login session operations needed by App
type SessionStore interface {
	Create(ctx context.Context, userID int64) (string, error)
	Validate(ctx context.Context, id string) (int64, error)
	Revoke(ctx context.Context, id string) error
	Health(ctx context.Context) error
}

// Notifier decides whether an analysis outcome warrants an alert
type Notifier interface {
	MaybeNotify(ctx context.Context, userID int64, ticker string, event models.CrossoverEvent)
}

var tickerPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9.\-]{0,9}$`)

// App struct holds application dependencies using interfaces for testability
type App struct {
	cfg        *config.Config
	repo       RepositoryInterface
	provider   services.MarketDataProvider
	analyzer   *analysis.Analyzer
	sessions   SessionStore
	dispatcher Notifier
}

// New creates a new App application struct
func New(cfg *config.Config, repo RepositoryInterface, provider services.MarketDataProvider, sessions SessionStore, dispatcher Notifier) *App {
	return &App{
		cfg:        cfg,
		repo:       repo,
		provider:   provider,
		analyzer:   analysis.New(cfg.Analysis.FastWindow, cfg.Analysis.SlowWindow),
		sessions:   sessions,
		dispatcher: dispatcher,
	}
}

// Shutdown is called when the app is closing
func (a *App) Shutdown(ctx context.Context) {
	if a.repo != nil {
		a.repo.Close()
	}
}

// Health reports whether the app's backing stores are reachable
func (a *App) Health(ctx context.Context) error {
	if err := a.repo.Health(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := a.sessions.Health(ctx); err != nil {
		return fmt.Errorf("session store: %w", err)
	}
	return nil
}

// NormalizeTicker upper-cases a ticker and rejects anything that is not a
// plausible exchange symbol.
func NormalizeTicker(raw string) (string, error) {
	ticker := strings.ToUpper(strings.TrimSpace(raw))
	if !tickerPattern.MatchString(ticker) {
		return "", fmt.Errorf("%w: %q", models.ErrInvalidTicker, raw)
	}
	return ticker, nil
}

// Register creates a new user account. A duplicate username or email
// surfaces as models.ErrConflict.
func (a *App) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	user, err := models.NewUser(username, email, password, a.cfg.Auth.BcryptCost)
	if err != nil {
		return nil, err
	}

	if err := a.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	observability.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login verifies credentials and opens a session. Unknown username and wrong
// password both surface as models.ErrNoMatch.
func (a *App) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	user, err := a.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return "", nil, err
	}
	if user == nil || !user.CheckPassword(password) {
		return "", nil, models.ErrNoMatch
	}

	sessionID, err := a.sessions.Create(ctx, user.ID)
	if err != nil {
		return "", nil, err
	}

	token, err := a.signToken(user.ID, sessionID)
	if err != nil {
		return "", nil, err
	}

	observability.Info("user logged in", "user_id", user.ID)
	return token, user, nil
}

// Logout revokes the session behind a token, invalidating it immediately
// even though its signature stays verifiable until expiry.
func (a *App) Logout(ctx context.Context, sessionID string) error {
	return a.sessions.Revoke(ctx, sessionID)
}

// Sessions exposes the session store for auth middleware
func (a *App) Sessions() SessionStore {
	return a.sessions
}

// JWTSecret exposes the signing key for auth middleware
func (a *App) JWTSecret() []byte {
	return []byte(a.cfg.Auth.JWTSecret)
}

func (a *App) signToken(userID int64, sessionID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"jti":     sessionID,
		"iat":     now.Unix(),
		"exp":     now.Add(time.Duration(a.cfg.Auth.TokenTTLMinutes) * time.Minute).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(a.cfg.Auth.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Analyze fetches enough history for a ticker, computes both moving averages,
// classifies the trend, and reports a crossover if one happened on the most
// recent bar. For logged-in users it also triggers watch-list alerts. userID
// zero means anonymous.
func (a *App) Analyze(ctx context.Context, rawTicker string, tf models.Timeframe, userID int64) (*models.AnalysisResult, error) {
	ticker, err := NormalizeTicker(rawTicker)
	if err != nil {
		return nil, err
	}

	metrics := observability.GetMetrics()
	metrics.RecordAnalysisRequest(ticker, string(tf))
	started := time.Now()

	result, err := a.analyze(ctx, ticker, tf)
	if err != nil {
		status := "error"
		if errors.Is(err, models.ErrInsufficientData) {
			status = "insufficient_data"
			metrics.RecordAnalysisError(ticker, "insufficient_data")
		} else {
			metrics.RecordAnalysisError(ticker, "provider")
		}
		metrics.RecordAnalysisDuration(ticker, status, time.Since(started))
		return nil, err
	}
	metrics.RecordAnalysisDuration(ticker, "success", time.Since(started))

	if result.Crossover != models.CrossoverNone {
		metrics.RecordCrossoverSignal(ticker, string(result.Crossover))
		observability.Info("crossover detected",
			"ticker", ticker, "direction", string(result.Crossover))
	}

	if a.dispatcher != nil {
		a.dispatcher.MaybeNotify(ctx, userID, ticker, result.Crossover)
	}

	return result, nil
}

func (a *App) analyze(ctx context.Context, ticker string, tf models.Timeframe) (*models.AnalysisResult, error) {
	series, err := a.seriesFor(ctx, ticker, tf)
	if err != nil {
		return nil, err
	}

	trend, err := a.analyzer.ClassifyTrend(series)
	if err != nil {
		return nil, err
	}
	crossover := a.analyzer.DetectCrossover(series)

	return &models.AnalysisResult{
		Ticker:    ticker,
		Timeframe: tf,
		Series:    series,
		Trend:     trend,
		Crossover: crossover,
	}, nil
}

// seriesFor returns the display-window series with averages, from cache when
// fresh, otherwise recomputed from provider data.
func (a *App) seriesFor(ctx context.Context, ticker string, tf models.Timeframe) (*models.Series, error) {
	cached, err := a.repo.GetCachedSeries(ctx, ticker, tf)
	if err != nil {
		observability.Warn("series cache read failed",
			"ticker", ticker, "timeframe", string(tf), "error", err)
	} else if cached != nil {
		return cached, nil
	}

	now := time.Now().UTC()
	start := a.analyzer.LookbackStart(tf, now)

	points, err := a.provider.GetDailySeries(ctx, ticker, start, now)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("no data for %s: %w", ticker, models.ErrInsufficientData)
	}

	series := a.analyzer.ComputeMovingAverages(ticker, points)
	series = a.analyzer.TrimToTimeframe(series, tf, now)

	ttl := time.Duration(a.cfg.Analysis.CacheTTLHours) * time.Hour
	if err := a.repo.SetCachedSeries(ctx, ticker, tf, series, ttl); err != nil {
		observability.Warn("series cache write failed",
			"ticker", ticker, "timeframe", string(tf), "error", err)
	}

	return series, nil
}

// RenderChart returns a PNG of the price and moving-average lines for a
// ticker over a timeframe.
func (a *App) RenderChart(ctx context.Context, rawTicker string, tf models.Timeframe) ([]byte, error) {
	ticker, err := NormalizeTicker(rawTicker)
	if err != nil {
		return nil, err
	}

	series, err := a.seriesFor(ctx, ticker, tf)
	if err != nil {
		return nil, err
	}

	return charts.RenderSeriesPNG(series)
}

// Quote returns the latest quote for a ticker
func (a *App) Quote(ctx context.Context, rawTicker string) (*models.Quote, error) {
	ticker, err := NormalizeTicker(rawTicker)
	if err != nil {
		return nil, err
	}
	return a.provider.GetQuote(ctx, ticker)
}

// AddToWatchlist puts a ticker on a user's watch-list. Adding a ticker that
// is already there is a no-op.
func (a *App) AddToWatchlist(ctx context.Context, userID int64, rawTicker string) error {
	ticker, err := NormalizeTicker(rawTicker)
	if err != nil {
		return err
	}
	return a.repo.AddToWatchlist(ctx, userID, ticker)
}

// RemoveFromWatchlist drops a ticker from a user's watch-list
func (a *App) RemoveFromWatchlist(ctx context.Context, userID int64, rawTicker string) error {
	ticker, err := NormalizeTicker(rawTicker)
	if err != nil {
		return err
	}
	return a.repo.RemoveFromWatchlist(ctx, userID, ticker)
}

// GetWatchlist returns a user's watch-list entries in insertion order
func (a *App) GetWatchlist(ctx context.Context, userID int64) ([]models.WatchlistEntry, error) {
	return a.repo.GetWatchlist(ctx, userID)
}

// Compile-time check that the alerts dispatcher satisfies Notifier
var _ Notifier = (*alerts.Dispatcher)(nil)
