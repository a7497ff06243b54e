package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/okian/cpstats/internal/app/pipeline"
	"github.com/okian/cpstats/pkg/logger"
)

// ChartProfiles reads the profiles charts are drawn from.
type ChartProfiles interface {
	Profile(ctx context.Context, handle string) (pipeline.Profile, error)
}

// ChartHandler renders profile charts as HTML pages.
type ChartHandler struct {
	deps   ChartProfiles
	logger logger.Logger
}

// NewChartHandler creates a new chart handler.
func NewChartHandler(deps ChartProfiles, l logger.Logger) *ChartHandler {
	if l == nil {
		l = logger.Nop()
	}
	return &ChartHandler{deps: deps, logger: l}
}

// HandleRating handles GET /charts/rating?handle= requests.
func (h *ChartHandler) HandleRating(w http.ResponseWriter, r *http.Request) {
	prof, ok := h.profile(w, r)
	if !ok {
		return
	}
	h.render(w, r, RatingChart(prof))
}

// HandleBuckets handles GET /charts/buckets?handle= requests.
func (h *ChartHandler) HandleBuckets(w http.ResponseWriter, r *http.Request) {
	prof, ok := h.profile(w, r)
	if !ok {
		return
	}
	h.render(w, r, BucketChart(prof))
}

func (h *ChartHandler) profile(w http.ResponseWriter, r *http.Request) (pipeline.Profile, bool) {
	handle := strings.TrimSpace(r.URL.Query().Get("handle"))
	if handle == "" {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("handle is required"))
		return pipeline.Profile{}, false
	}
	prof, err := h.deps.Profile(r.Context(), handle)
	if err != nil {
		writeFailure(w, err)
		return pipeline.Profile{}, false
	}
	return prof, true
}

type renderer interface {
	Render(w io.Writer) error
}

// render buffers the page so a failed render can still answer 500.
func (h *ChartHandler) render(w http.ResponseWriter, r *http.Request, c renderer) {
	var buf bytes.Buffer
	if err := c.Render(&buf); err != nil {
		h.logger.Error(r.Context(), "chart render failed",
			logger.String("path", r.URL.Path),
			logger.String("request_id", RequestIDFrom(r.Context())),
			logger.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "render_error", errors.New("chart could not be rendered"))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// RatingChart plots the rating after each rated contest.
func RatingChart(prof pipeline.Profile) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: prof.Info.Handle + " rating",
			Width:     "960px",
			Height:    "480px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    prof.Info.Handle,
			Subtitle: fmt.Sprintf("%d rated contests, max %d", prof.ContestCount, prof.Info.MaxRating),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:  "Rating",
			Scale: opts.Bool(true),
		}),
	)

	labels := make([]string, len(prof.RatingHistory))
	points := make([]opts.LineData, len(prof.RatingHistory))
	for i, c := range prof.RatingHistory {
		labels[i] = c.ContestName
		points[i] = opts.LineData{Value: c.NewRating}
	}

	line.SetXAxis(labels).
		AddSeries("Rating", points).
		SetSeriesOptions(
			charts.WithLineChartOpts(opts.LineChart{
				ShowSymbol: opts.Bool(true),
			}),
			charts.WithLabelOpts(opts.Label{
				Show: opts.Bool(false),
			}),
		)
	return line
}

// BucketChart plots solved problems per rating bucket.
func BucketChart(prof pipeline.Profile) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: prof.Info.Handle + " problem ratings",
			Width:     "960px",
			Height:    "480px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    prof.Info.Handle,
			Subtitle: fmt.Sprintf("%d solved, %d rated", prof.TotalSolved, prof.RatedSolved),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
	)

	labels := make([]string, len(prof.RatingBuckets))
	counts := make([]opts.BarData, len(prof.RatingBuckets))
	for i, b := range prof.RatingBuckets {
		labels[i] = b.Label
		counts[i] = opts.BarData{Value: b.Count}
	}

	bar.SetXAxis(labels).
		AddSeries("Solved", counts).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show:     opts.Bool(true),
				Position: "top",
			}),
		)
	return bar
}
