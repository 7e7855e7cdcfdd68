package reportservice

import (
	"bytes"
	"fmt"

	rankingservice "github.com/Black-And-White-Club/ttbw-roster/app/modules/ranking/application"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ChartPalette colors the generated charts.
type ChartPalette struct {
	Background drawing.Color
	Bar        drawing.Color
	Text       drawing.Color
}

// DefaultPalette is used by the report service.
var DefaultPalette = ChartPalette{
	Background: drawing.ColorWhite,
	Bar:        drawing.ColorFromHex("1f6f8b"),
	Text:       drawing.ColorFromHex("333333"),
}

// GenerateRegionChart renders a PNG bar chart with the best points total of
// each region.
func GenerateRegionChart(acc *rankingservice.Accumulator, palette ChartPalette) ([]byte, error) {
	var bars []chart.Value
	maxPoints := 0.0
	for _, region := range acc.Regions() {
		top := acc.Top(1, rankingservice.Filter{Region: region})
		if len(top) == 0 {
			continue
		}
		bars = append(bars, chart.Value{
			Label: fmt.Sprintf("Region %d", region),
			Value: top[0].Points,
			Style: chart.Style{FillColor: palette.Bar, StrokeColor: palette.Bar},
		})
		maxPoints = max(maxPoints, top[0].Points)
	}
	title := "Top points per region"
	if len(bars) == 0 {
		// BarChart refuses to render without bars.
		title = "No ranking results"
		bars = []chart.Value{{Label: "-", Value: 0}}
	}

	graph := chart.BarChart{
		Title:    title,
		Width:    800,
		Height:   400,
		BarWidth: 60,
		Background: chart.Style{
			FillColor: palette.Background,
			Padding:   chart.Box{Top: 40},
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		XAxis: chart.Style{
			FontColor: palette.Text,
		},
		YAxis: chart.YAxis{
			Style: chart.Style{
				FontColor: palette.Text,
			},
			Range: &chart.ContinuousRange{Min: 0, Max: max(maxPoints*1.1, 1)},
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render region chart: %w", err)
	}
	return buffer.Bytes(), nil
}
