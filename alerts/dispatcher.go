package alerts

import (
	"context"
	"time"

	"trend-watch/models"
	"trend-watch/observability"
	"trend-watch/services"
)

// WatchlistReader provides the watch-list entries a dispatch decision needs
type WatchlistReader interface {
	GetWatchlist(ctx context.Context, userID int64) ([]models.WatchlistEntry, error)
}

// UserReader resolves alert recipients
type UserReader interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// Dispatcher sends crossover alerts to users watching a ticker. Delivery is
// best effort: a failed send is logged and counted, never surfaced to the
// request that triggered it.
type Dispatcher struct {
	watchlists WatchlistReader
	users      UserReader
	mailer     services.MailSender

	sendTimeout time.Duration

	// notify fires after an async send attempt completes (for tests)
	notify func()
}

// NewDispatcher creates a dispatcher. A nil mailer disables delivery.
func NewDispatcher(watchlists WatchlistReader, users UserReader, mailer services.MailSender) *Dispatcher {
	return &Dispatcher{
		watchlists:  watchlists,
		users:       users,
		mailer:      mailer,
		sendTimeout: 30 * time.Second,
	}
}

// MaybeNotify emails the user when a crossover fired on a ticker they watch.
// Called after every analysis; does nothing for CrossoverNone, anonymous
// requests, or tickers outside the user's watch-list.
func (d *Dispatcher) MaybeNotify(ctx context.Context, userID int64, ticker string, event models.CrossoverEvent) {
	if event == models.CrossoverNone || userID == 0 || d.mailer == nil {
		return
	}

	watched, err := d.isWatched(ctx, userID, ticker)
	if err != nil {
		observability.Error("failed to read watch-list for alert decision",
			"user_id", userID, "ticker", ticker, "error", err)
		return
	}
	if !watched {
		return
	}

	user, err := d.users.GetUserByID(ctx, userID)
	if err != nil || user == nil {
		observability.Error("failed to resolve alert recipient",
			"user_id", userID, "ticker", ticker, "error", err)
		return
	}

	alert := models.NewCrossoverAlert(ticker, event, user.Email)

	// Deliver off the request path with an independent deadline
	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
		defer cancel()

		if err := d.mailer.Send(sendCtx, alert); err != nil {
			observability.Error("crossover alert delivery failed",
				"user_id", userID, "ticker", ticker, "direction", string(event), "error", err)
		} else {
			observability.Info("crossover alert delivered",
				"user_id", userID, "ticker", ticker, "direction", string(event))
		}

		if d.notify != nil {
			d.notify()
		}
	}()
}

func (d *Dispatcher) isWatched(ctx context.Context, userID int64, ticker string) (bool, error) {
	entries, err := d.watchlists.GetWatchlist(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, entry := range entries {
		if entry.Ticker == ticker {
			return true, nil
		}
	}
	return false, nil
}
