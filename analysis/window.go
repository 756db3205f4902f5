package analysis

import (
	"time"

	"trend-watch/models"
)

// maxStart is the fixed historical start used for the "max" timeframe.
var maxStart = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// warmupCalendarDays converts the slow window from trading days to
// calendar days (7/5 ratio) with a month of slack for market holidays.
func (a *Analyzer) warmupCalendarDays() int {
	return a.slowWindow*7/5 + 30
}

// LookbackStart maps a timeframe token to the fetch start date. The
// lookback deliberately exceeds the displayed range by at least the slow
// window in trading-day equivalents, so the rolling means are fully warmed
// up before the first displayed point; computing them on the trimmed range
// alone would corrupt the first ~slowWindow displayed points.
func (a *Analyzer) LookbackStart(tf models.Timeframe, now time.Time) time.Time {
	if tf == models.TimeframeMax {
		return maxStart
	}

	start := displayStart(tf, now)
	if tf == models.Timeframe5Yr {
		// A plain warm-up would leave the oldest displayed points backed
		// by stale data after provider gaps; fetch a full extra window.
		return start.AddDate(-5, 0, 0)
	}
	return start.AddDate(0, 0, -a.warmupCalendarDays())
}

// TrimToTimeframe restricts the displayed range to the requested timeframe
// while preserving the rolling means computed over the full fetch range.
func (a *Analyzer) TrimToTimeframe(series *models.Series, tf models.Timeframe, now time.Time) *models.Series {
	if series == nil || tf == models.TimeframeMax {
		return series
	}

	start := displayStart(tf, now)
	i := 0
	for i < len(series.Points) && series.Points[i].Date.Before(start) {
		i++
	}

	return &models.Series{
		Ticker: series.Ticker,
		Points: series.Points[i:],
	}
}

// displayStart returns the first date the user asked to see.
func displayStart(tf models.Timeframe, now time.Time) time.Time {
	switch tf {
	case models.Timeframe1Mo:
		return now.AddDate(0, -1, 0)
	case models.Timeframe3Mo:
		return now.AddDate(0, -3, 0)
	case models.Timeframe6Mo:
		return now.AddDate(0, -6, 0)
	case models.Timeframe1Yr:
		return now.AddDate(-1, 0, 0)
	case models.Timeframe5Yr:
		return now.AddDate(-5, 0, 0)
	default:
		return maxStart
	}
}
