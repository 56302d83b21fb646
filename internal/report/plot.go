package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"fmcw-doppler-radar/internal/radar"
)

// PlotSpectrum draws s as a bar chart of height rows. Bins are shown in
// natural order, bin 0 on the left. When s has more bins than width, each
// column shows the largest bin it covers. Each row stands for scale units of
// magnitude; taller bars are cut at height.
func PlotSpectrum(w io.Writer, s radar.Spectrum, width, height int, scale float64) error {
	if width <= 0 || height <= 0 || scale <= 0 {
		return fmt.Errorf("report: invalid plot geometry %dx%d scale %g", width, height, scale)
	}
	width = min(width, len(s))

	levels := make([]int, width)
	for c := range levels {
		lo := c * len(s) / width
		hi := (c + 1) * len(s) / width
		var peak float64
		for _, m := range s[lo:hi] {
			peak = max(peak, m)
		}
		levels[c] = min(int(peak/scale), height)
	}

	bw := bufio.NewWriter(w)
	row := make([]byte, width)
	for r := height; r >= 1; r-- {
		for c, l := range levels {
			if l >= r {
				row[c] = '#'
			} else {
				row[c] = ' '
			}
		}
		bw.WriteString("|")
		bw.Write(row)
		bw.WriteString("\n")
	}
	bw.WriteString("+" + strings.Repeat("-", width) + "\n")
	return bw.Flush()
}
