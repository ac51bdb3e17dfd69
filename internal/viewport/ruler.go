package viewport

import (
	"fmt"
	"math"
)

// labelPrecisionZoom is the zoom from which ruler labels show tenths.
const labelPrecisionZoom = 30.0

func TimeToPixel(t, zoom float64) float64 {
	return t * zoom
}

func PixelToTime(px, zoom float64) float64 {
	if zoom <= 0 {
		return 0
	}
	return px / zoom
}

type Marker struct {
	Time  float64
	Major bool
	Label string
}

// MarkerInterval picks the ruler spacing in seconds for a zoom level.
func MarkerInterval(zoom float64) float64 {
	switch {
	case zoom < 20:
		return 5
	case zoom < 40:
		return 1
	default:
		return 0.5
	}
}

// Markers lists ruler marks from 0 to maxDuration inclusive. Every fifth mark
// is major and labelled.
func Markers(zoom, maxDuration float64) []Marker {
	interval := MarkerInterval(zoom)
	n := int(math.Floor(maxDuration/interval + 1e-9))

	out := make([]Marker, 0, n+1)
	for i := 0; i <= n; i++ {
		m := Marker{Time: float64(i) * interval, Major: i%5 == 0}
		if m.Major {
			m.Label = FormatTime(m.Time, zoom)
		}
		out = append(out, m)
	}
	return out
}

// FormatTime renders t as M:SS, or M:SS.s once zoom is high enough for the
// extra digit to fit.
func FormatTime(t, zoom float64) string {
	t = math.Max(0, t)
	if zoom >= labelPrecisionZoom {
		tenths := int(math.Round(t * 10))
		minutes := tenths / 600
		secs := float64(tenths%600) / 10
		return fmt.Sprintf("%d:%04.1f", minutes, secs)
	}
	whole := int(math.Floor(t))
	return fmt.Sprintf("%d:%02d", whole/60, whole%60)
}
