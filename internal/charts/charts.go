// Package charts renders the report's donut charts to PNG images.
package charts

import (
	"bytes"
	"errors"
	"fmt"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Chart geometry matches the layout the report template embeds.
const (
	chartWidth  = 300
	chartHeight = 250
)

// Palette: positive/real green, negative/fake red, neutral violet.
var (
	colorGreen  = drawing.ColorFromHex("00C49F")
	colorRed    = drawing.ColorFromHex("FF6B6B")
	colorViolet = drawing.ColorFromHex("8884D8")
)

// ErrNoData means every slice of the requested chart is zero.
var ErrNoData = errors.New("no chart data")

type slice struct {
	label string
	value int
	color drawing.Color
}

// SentimentDonut renders the positive/neutral/negative distribution.
func SentimentDonut(positive, neutral, negative int) ([]byte, error) {
	return donut([]slice{
		{"Positive", positive, colorGreen},
		{"Neutral", neutral, colorViolet},
		{"Negative", negative, colorRed},
	})
}

// DeepfakeDonut renders the fake/real frame distribution.
func DeepfakeDonut(fake, real int) ([]byte, error) {
	return donut([]slice{
		{"Fake Frames", fake, colorRed},
		{"Real Frames", real, colorGreen},
	})
}

func donut(slices []slice) ([]byte, error) {
	var values []chart.Value
	for _, s := range slices {
		if s.value <= 0 {
			// go-chart rejects zero-valued slices.
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s (%d)", s.label, s.value),
			Value: float64(s.value),
			Style: chart.Style{FillColor: s.color},
		})
	}
	if len(values) == 0 {
		return nil, ErrNoData
	}

	c := chart.DonutChart{
		Width:  chartWidth,
		Height: chartHeight,
		Values: values,
	}
	var buf bytes.Buffer
	if err := c.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
