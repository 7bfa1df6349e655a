// Package export renders control fields to standalone SVG documents.
package export

import (
	"fmt"
	"math"
	"strings"
)

// Series is one named control field sampled on the shared time grid.
type Series struct {
	Label   string
	Samples []float64
}

var palette = []string{"#00ff00", "#00bfff", "#ffaa00", "#ff44aa", "#bbbbbb"}

// PulsesToSVG plots one or more control fields against time as an SVG
// document. All series share the time axis; series shorter than the grid are
// truncated to their own length.
func PulsesToSVG(times []float64, series []Series, width, height int) string {
	if len(times) < 2 || len(series) == 0 {
		return ""
	}

	minX, maxX := times[0], times[len(times)-1]
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, v := range s.Samples {
			if v < minY {
				minY = v
			}
			if v > maxY {
				maxY = v
			}
		}
	}
	if minY > maxY {
		return ""
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for si, s := range series {
		color := palette[si%len(palette)]

		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, color))
		for i := 0; i < len(times) && i < len(s.Samples); i++ {
			x := (times[i] - minX) / rangeX * float64(width)
			y := float64(height) - (s.Samples[i]-minY)/rangeY*float64(height)

			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")

		if s.Label != "" {
			sb.WriteString(fmt.Sprintf(`<text x="10" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>
`, 16+16*si, color, s.Label))
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}
