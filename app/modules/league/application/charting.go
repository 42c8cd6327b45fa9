package leagueservice

import (
	"bytes"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	leaguedomain "github.com/parkside-league/league-hub/app/modules/league/domain"
)

// GenerateStandingsChart produces a PNG bar chart of team scores in ranking
// order, used by the standings page.
func GenerateStandingsChart(standings []leaguedomain.TeamStanding) ([]byte, error) {
	if len(standings) == 0 {
		return renderNoDataPlaceholder()
	}

	bars := make([]chart.Value, len(standings))
	for i, s := range standings {
		bars[i] = chart.Value{
			Label: s.Name,
			Value: float64(s.Score),
			Style: chart.Style{
				FillColor:   drawing.ColorFromHex("2d6a4f"),
				StrokeColor: drawing.ColorFromHex("1b4332"),
				StrokeWidth: 1,
			},
		}
	}

	graph := chart.BarChart{
		Title:    "Season Standings",
		Width:    900,
		Height:   420,
		BarWidth: 40,
		XAxis: chart.Style{
			TextRotationDegrees: 45,
		},
		YAxis: chart.YAxis{
			Name: "Score",
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func renderNoDataPlaceholder() ([]byte, error) {
	graph := chart.Chart{
		Width:  400,
		Height: 200,
		Series: []chart.Series{
			chart.AnnotationSeries{
				Annotations: []chart.Value2{
					{XValue: 1, YValue: 1, Label: "No standings yet"},
				},
			},
		},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
