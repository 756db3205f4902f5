package charts

import (
	"bytes"
	"fmt"

	"trend-watch/models"

	"github.com/wcharczuk/go-chart/v2"
)

// RenderSeriesPNG draws closing prices with both moving averages as a PNG.
// Points without a computed average are skipped on that average's line, so
// the warm-up prefix shows price only.
func RenderSeriesPNG(series *models.Series) ([]byte, error) {
	if series == nil || len(series.Points) == 0 {
		return nil, fmt.Errorf("cannot render empty series")
	}

	closeSeries := chart.TimeSeries{
		Name:  "Close",
		Style: chart.Style{StrokeColor: chart.ColorBlue},
	}
	fastSeries := chart.TimeSeries{
		Name:  "50-Day SMA",
		Style: chart.Style{StrokeColor: chart.ColorGreen},
	}
	slowSeries := chart.TimeSeries{
		Name:  "200-Day SMA",
		Style: chart.Style{StrokeColor: chart.ColorOrange},
	}

	for _, p := range series.Points {
		closeSeries.XValues = append(closeSeries.XValues, p.Date)
		closeSeries.YValues = append(closeSeries.YValues, p.Close)

		if p.SMA50 != nil {
			fastSeries.XValues = append(fastSeries.XValues, p.Date)
			fastSeries.YValues = append(fastSeries.YValues, *p.SMA50)
		}
		if p.SMA200 != nil {
			slowSeries.XValues = append(slowSeries.XValues, p.Date)
			slowSeries.YValues = append(slowSeries.YValues, *p.SMA200)
		}
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s with 50-Day and 200-Day Moving Averages", series.Ticker),
		Width:  1200,
		Height: 600,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			Name: "Price",
		},
		Series: []chart.Series{closeSeries},
	}
	if len(fastSeries.XValues) > 1 {
		graph.Series = append(graph.Series, fastSeries)
	}
	if len(slowSeries.XValues) > 1 {
		graph.Series = append(graph.Series, slowSeries)
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}

	return buf.Bytes(), nil
}
