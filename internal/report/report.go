// Package report renders pipeline results for a terminal.
package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"fmcw-doppler-radar/internal/radar"
)

// Reporter receives every processed pass together with the spectrum the
// velocity was read from.
type Reporter interface {
	Report(res radar.Result, spectrum radar.Spectrum) error
}

// PlotOptions enables the spectrum chart under each readout line.
type PlotOptions struct {
	Width  int
	Height int
	Scale  float64 // magnitude units per row
}

// TextReporter prints one readout line per pass.
type TextReporter struct {
	w    io.Writer
	plot *PlotOptions

	pass    *color.Color
	motion  *color.Color
	still   *color.Color
	pending *color.Color
}

// NewTextReporter writes to w. Colours are emitted only when useColor is
// set; plot may be nil.
func NewTextReporter(w io.Writer, useColor bool, plot *PlotOptions) *TextReporter {
	r := &TextReporter{
		w:       w,
		plot:    plot,
		pass:    color.New(color.FgHiBlack),
		motion:  color.New(color.FgGreen, color.Bold),
		still:   color.New(color.FgYellow),
		pending: color.New(color.FgCyan),
	}
	for _, c := range []*color.Color{r.pass, r.motion, r.still, r.pending} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

// Report implements Reporter.
func (r *TextReporter) Report(res radar.Result, spectrum radar.Spectrum) error {
	line := r.pass.Sprintf("#%05d", res.Pass) + " " + FormatFrequency(res.SmoothedFrequency) + "  "
	switch {
	case !res.VelocityValid:
		line += r.pending.Sprintf("Vel: calibration %s", res.Calibration)
	case res.Motion:
		line += r.motion.Sprint(FormatVelocity(res.Velocity.Smoothed))
	default:
		line += r.still.Sprint("No motion")
	}
	if _, err := fmt.Fprintln(r.w, line); err != nil {
		return err
	}

	if r.plot != nil && len(spectrum) > 0 {
		return PlotSpectrum(r.w, spectrum, r.plot.Width, r.plot.Height, r.plot.Scale)
	}
	return nil
}

// FormatFrequency renders the frequency readout.
func FormatFrequency(hz float64) string {
	return fmt.Sprintf("Freq: %+6.1f Hz", hz)
}

// FormatVelocity renders the velocity readout.
func FormatVelocity(mps float64) string {
	return fmt.Sprintf("Vel: %6.1f m/s", mps)
}
