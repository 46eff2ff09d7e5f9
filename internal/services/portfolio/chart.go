package portfolio

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/papertrade/internal/models"
)

// RenderAllocationChart renders a PNG bar chart of market value per holding,
// with cash as the final bar. Returns raw PNG bytes.
func RenderAllocationChart(view *models.PortfolioView) ([]byte, error) {
	if view == nil {
		return nil, fmt.Errorf("no portfolio view to chart")
	}

	bars := make([]chart.Value, 0, len(view.Positions)+1)
	for _, position := range view.Positions {
		bars = append(bars, chart.Value{
			Label: position.Symbol,
			Value: position.MarketValue.InexactFloat64(),
			Style: chart.Style{
				FillColor:   drawing.ColorFromHex("2563eb"), // blue-600
				StrokeColor: drawing.ColorFromHex("2563eb"),
			},
		})
	}
	bars = append(bars, chart.Value{
		Label: "CASH",
		Value: view.Cash.InexactFloat64(),
		Style: chart.Style{
			FillColor:   drawing.ColorFromHex("9ca3af"), // gray-400
			StrokeColor: drawing.ColorFromHex("9ca3af"),
		},
	})

	graph := chart.BarChart{
		Title:  "Portfolio Allocation",
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		BarWidth: 60,
		Bars:     bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render allocation chart: %w", err)
	}
	return buf.Bytes(), nil
}
