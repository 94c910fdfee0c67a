// Package export renders worlds and stored runs as SVG.
package export

import (
	"fmt"
	"io"
	"math"
	"slices"
	"strings"

	"github.com/san-kum/softbody/internal/body"
	"github.com/san-kum/softbody/internal/sim"
	"github.com/san-kum/softbody/internal/telemetry"
	"github.com/san-kum/softbody/internal/viz"
)

const (
	background   = "#0a0a0a"
	defaultInk   = "#00ff00"
	strokeWidth  = 1.0
	minDotRadius = 1.5
)

func header(sb *strings.Builder, width, height int) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}

func ink(c string) string {
	if c == "" {
		return defaultInk
	}
	return c
}

// WorldToSVG draws springs as lines and points as discs, projected
// through cam onto a width x height image.
func WorldToSVG(out io.Writer, w *sim.World, cam *viz.Camera, width, height int) error {
	var sb strings.Builder
	header(&sb, width, height)

	type dot struct {
		x, y, depth float64
		r           float64
		color       string
	}
	pts := w.AllPoints()
	pos := make(map[body.ID][2]int, len(pts))
	dots := make([]dot, len(pts))
	scale := cam.Pixels(width, height)
	for i, p := range pts {
		x, y, d := cam.Project(p.Pos, width, height)
		pos[p.ID] = [2]int{x, y}
		dots[i] = dot{float64(x), float64(y), d, math.Max(p.Radius*scale, minDotRadius), string(p.Color)}
	}

	sb.WriteString(`<g stroke-linecap="round">` + "\n")
	for _, s := range w.AllSprings() {
		a, b := pos[s.A.ID], pos[s.B.ID]
		fmt.Fprintf(&sb, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="%.1f"/>`+"\n",
			a[0], a[1], b[0], b[1], ink(string(s.Color)), strokeWidth)
	}
	sb.WriteString("</g>\n<g>\n")

	if w.Config().SortForRender {
		slices.SortStableFunc(dots, func(a, b dot) int {
			switch {
			case a.depth < b.depth:
				return -1
			case a.depth > b.depth:
				return 1
			}
			return 0
		})
	}
	for _, d := range dots {
		fmt.Fprintf(&sb, `<circle cx="%.0f" cy="%.0f" r="%.1f" fill="%s"/>`+"\n", d.x, d.y, d.r, ink(d.color))
	}
	sb.WriteString("</g>\n</svg>\n")

	_, err := io.WriteString(out, sb.String())
	return err
}

// TrackToSVG draws the ground-plane path of the centroid across samples.
func TrackToSVG(out io.Writer, samples []telemetry.Sample, width, height int, stroke string) error {
	if len(samples) < 2 {
		return fmt.Errorf("export: need at least 2 samples, got %d", len(samples))
	}

	minX, maxX := samples[0].CentroidX, samples[0].CentroidX
	minY, maxY := samples[0].CentroidY, samples[0].CentroidY
	for _, s := range samples {
		minX, maxX = math.Min(minX, s.CentroidX), math.Max(maxX, s.CentroidX)
		minY, maxY = math.Min(minY, s.CentroidY), math.Max(maxY, s.CentroidY)
	}

	// Equal scale on both axes so the path keeps its shape.
	span := math.Max(maxX-minX, maxY-minY)
	if span == 0 {
		span = 1
	}
	span *= 1.2
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	side := float64(min(width, height))

	var sb strings.Builder
	header(&sb, width, height)
	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, ink(stroke))
	for i, s := range samples {
		x := float64(width)/2 + (s.CentroidX-cx)/span*side
		y := float64(height)/2 - (s.CentroidY-cy)/span*side
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString(`"/>` + "\n</svg>\n")

	_, err := io.WriteString(out, sb.String())
	return err
}
