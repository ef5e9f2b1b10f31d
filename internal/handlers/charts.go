package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/KRaymonne/pro/internal/reports"
	"github.com/KRaymonne/pro/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

type ChartHandler struct {
	log     *zap.Logger
	reports *services.ReportService
}

func NewChartHandler(log *zap.Logger, reports *services.ReportService) *ChartHandler {
	return &ChartHandler{log: log, reports: reports}
}

// ScoreEvolution serves the ready-to-render ECharts option set for the score
// line chart the React dashboard embeds.
func (h *ChartHandler) ScoreEvolution(c *gin.Context) {
	user := currentUser(c)

	spec, err := periodSpec(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	report, err := h.reports.Individual(c.Request.Context(), user.ID, spec)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	chart := generateScoreChart(report.Evolution)
	optionsJSON, err := json.Marshal(chart.JSON())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Data(http.StatusOK, "application/json", optionsJSON)
}

func generateScoreChart(points []reports.ScorePoint) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Évolution des scores",
			Subtitle: "Score moyen par jour",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "time",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:  "value",
			Scale: opts.Bool(true),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)

	items := make([]opts.LineData, 0)
	for _, point := range points {
		items = append(items, opts.LineData{Value: []interface{}{point.Date, point.AverageScore}})
	}

	line.AddSeries("Score moyen", items).SetSeriesOptions(charts.WithLineStyleOpts(opts.LineStyle{Width: 2}))
	return line
}
