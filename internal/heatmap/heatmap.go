// Package heatmap bins analyzed properties into a latitude/longitude grid and
// averages a chosen metric per cell.
package heatmap

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/iwvelando/deal-finder/internal/analysis"
	"github.com/iwvelando/deal-finder/internal/store"
	"github.com/iwvelando/deal-finder/pkg/constants"
	"github.com/iwvelando/deal-finder/pkg/mathutil"
)

// Metric names an analysis figure a heatmap can display.
type Metric string

const (
	MetricDealScore Metric = "deal-score"
	MetricCapRate   Metric = "cap-rate"
	MetricCashFlow  Metric = "cash-flow"
)

// ErrUnknownMetric is returned by ParseMetric for unsupported names.
var ErrUnknownMetric = errors.New("unknown heatmap metric")

// ErrInvalidBounds is returned when the bounding box has no area.
var ErrInvalidBounds = errors.New("bounding box must have north > south and east > west")

// ParseMetric validates a metric name.
func ParseMetric(name string) (Metric, error) {
	switch m := Metric(name); m {
	case MetricDealScore, MetricCapRate, MetricCashFlow:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMetric, name)
	}
}

// Value extracts the metric from an analysis.
func (m Metric) Value(a analysis.DealAnalysis) float64 {
	switch m {
	case MetricDealScore:
		return float64(a.DealScore)
	case MetricCapRate:
		return a.CapRate
	case MetricCashFlow:
		return a.MonthlyCashFlow
	default:
		return 0
	}
}

// Point is a single located metric value.
type Point struct {
	Latitude  float64
	Longitude float64
	Value     float64
}

// Cell is one non-empty grid cell. Latitude and Longitude are the cell center.
type Cell struct {
	Row       int     `json:"row"`
	Col       int     `json:"col"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
	Value     float64 `json:"value"`
	Count     int     `json:"count"`
}

// Grid is the binned result.
type Grid struct {
	Metric     Metric  `json:"metric"`
	Resolution int     `json:"resolution"`
	North      float64 `json:"north"`
	South      float64 `json:"south"`
	East       float64 `json:"east"`
	West       float64 `json:"west"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	Points     int     `json:"points"`
	Cells      []Cell  `json:"cells"`
}

// ClampResolution maps a requested resolution onto the supported range,
// using the default for non-positive values.
func ClampResolution(resolution int) int {
	switch {
	case resolution <= 0:
		return constants.DefaultHeatmapResolution
	case resolution > constants.MaxHeatmapResolution:
		return constants.MaxHeatmapResolution
	default:
		return resolution
	}
}

// Points analyzes each property and pairs the metric value with its location.
func Points(engine *analysis.Engine, assumptions analysis.Assumptions, properties []store.Property, metric Metric) []Point {
	points := make([]Point, 0, len(properties))
	for _, p := range properties {
		result := engine.Analyze(p.ToAnalysisProperty(), assumptions)
		points = append(points, Point{
			Latitude:  p.Latitude,
			Longitude: p.Longitude,
			Value:     metric.Value(result),
		})
	}
	return points
}

type accumulator struct {
	sum   float64
	count int
}

// Build bins points into a resolution x resolution grid over box. Points
// outside the box or with non-finite values are skipped. Only cells that
// received at least one point are returned, ordered by row then column.
func Build(metric Metric, box store.BoundingBox, resolution int, points []Point) (Grid, error) {
	if !(box.North > box.South) || !(box.East > box.West) {
		return Grid{}, ErrInvalidBounds
	}
	resolution = ClampResolution(resolution)

	latStep := (box.North - box.South) / float64(resolution)
	lngStep := (box.East - box.West) / float64(resolution)

	type key struct{ row, col int }
	bins := make(map[key]*accumulator)
	used := 0
	for _, pt := range points {
		if !mathutil.IsFinite(pt.Value) || !box.Contains(pt.Latitude, pt.Longitude) {
			continue
		}
		k := key{
			row: binIndex(pt.Latitude-box.South, latStep, resolution),
			col: binIndex(pt.Longitude-box.West, lngStep, resolution),
		}
		acc, ok := bins[k]
		if !ok {
			acc = &accumulator{}
			bins[k] = acc
		}
		acc.sum += pt.Value
		acc.count++
		used++
	}

	grid := Grid{
		Metric:     metric,
		Resolution: resolution,
		North:      box.North,
		South:      box.South,
		East:       box.East,
		West:       box.West,
		Points:     used,
		Cells:      make([]Cell, 0, len(bins)),
	}
	for k, acc := range bins {
		grid.Cells = append(grid.Cells, Cell{
			Row:       k.row,
			Col:       k.col,
			Latitude:  box.South + (float64(k.row)+0.5)*latStep,
			Longitude: box.West + (float64(k.col)+0.5)*lngStep,
			Value:     acc.sum / float64(acc.count),
			Count:     acc.count,
		})
	}
	sort.Slice(grid.Cells, func(i, j int) bool {
		if grid.Cells[i].Row != grid.Cells[j].Row {
			return grid.Cells[i].Row < grid.Cells[j].Row
		}
		return grid.Cells[i].Col < grid.Cells[j].Col
	})

	for i, c := range grid.Cells {
		if i == 0 || c.Value < grid.Min {
			grid.Min = c.Value
		}
		if i == 0 || c.Value > grid.Max {
			grid.Max = c.Value
		}
	}
	return grid, nil
}

// binIndex maps an offset from the box origin to a cell index. The far edge
// belongs to the last cell.
func binIndex(offset, step float64, resolution int) int {
	idx := int(math.Floor(offset / step))
	if idx >= resolution {
		idx = resolution - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}
