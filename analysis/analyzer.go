// Package analysis computes rolling means, trend classification and
// crossover detection over daily price series. It is pure computation:
// no I/O, no blocking, the caller supplies an already-fetched series.
package analysis

import (
	"trend-watch/models"
)

// Analyzer computes moving averages and signals for one pair of windows.
type Analyzer struct {
	fastWindow int
	slowWindow int
}

// New creates an Analyzer. fastWindow must be smaller than slowWindow;
// the defaults from config are 50 and 200 trading days.
func New(fastWindow, slowWindow int) *Analyzer {
	return &Analyzer{fastWindow: fastWindow, slowWindow: slowWindow}
}

// FastWindow returns the fast rolling window size.
func (a *Analyzer) FastWindow() int { return a.fastWindow }

// SlowWindow returns the slow rolling window size.
func (a *Analyzer) SlowWindow() int { return a.slowWindow }

// ComputeMovingAverages augments each point with rolling means over the
// fast and slow windows. The mean at index i over window W covers
// points[i-W+1..i] and is undefined (nil) for i < W-1. A rolling sum keeps
// the pass O(n) and deterministic.
func (a *Analyzer) ComputeMovingAverages(ticker string, points []models.PricePoint) *models.Series {
	series := &models.Series{
		Ticker: ticker,
		Points: make([]models.SeriesPoint, len(points)),
	}

	var fastSum, slowSum float64
	for i, p := range points {
		fastSum += p.Close
		if i >= a.fastWindow {
			fastSum -= points[i-a.fastWindow].Close
		}
		slowSum += p.Close
		if i >= a.slowWindow {
			slowSum -= points[i-a.slowWindow].Close
		}

		sp := models.SeriesPoint{Date: p.Date, Close: p.Close}
		if i >= a.fastWindow-1 {
			mean := fastSum / float64(a.fastWindow)
			sp.SMA50 = &mean
		}
		if i >= a.slowWindow-1 {
			mean := slowSum / float64(a.slowWindow)
			sp.SMA200 = &mean
		}
		series.Points[i] = sp
	}

	return series
}

// ClassifyTrend returns the trend implied by the last point's averages:
// uptrend when the fast mean sits above the slow one, downtrend otherwise.
// A series with fewer than two points carrying both averages yields
// ErrInsufficientData rather than a misleading signal.
func (a *Analyzer) ClassifyTrend(series *models.Series) (models.TrendSignal, error) {
	last, _, ok := lastTwoValid(series)
	if !ok {
		return "", models.ErrInsufficientData
	}

	if last.Crossed() {
		return models.TrendUp, nil
	}
	return models.TrendDown, nil
}

// DetectCrossover compares the crossover state of the last two points that
// carry both averages. Fewer than two valid points is not an error, just
// no signal.
func (a *Analyzer) DetectCrossover(series *models.Series) models.CrossoverEvent {
	last, prev, ok := lastTwoValid(series)
	if !ok {
		return models.CrossoverNone
	}

	switch {
	case !prev.Crossed() && last.Crossed():
		return models.CrossoverUpward
	case prev.Crossed() && !last.Crossed():
		return models.CrossoverDownward
	default:
		return models.CrossoverNone
	}
}

// lastTwoValid returns the last two points with both averages defined,
// newest first.
func lastTwoValid(series *models.Series) (last, prev models.SeriesPoint, ok bool) {
	if series == nil {
		return last, prev, false
	}

	found := 0
	for i := len(series.Points) - 1; i >= 0 && found < 2; i-- {
		if !series.Points[i].HasBothAverages() {
			continue
		}
		if found == 0 {
			last = series.Points[i]
		} else {
			prev = series.Points[i]
		}
		found++
	}

	return last, prev, found == 2
}
