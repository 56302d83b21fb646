package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"fmcw-doppler-radar/internal/acquire"
	"fmcw-doppler-radar/internal/config"
	"fmcw-doppler-radar/internal/fft"
	"fmcw-doppler-radar/internal/monitor"
	"fmcw-doppler-radar/internal/radar"
	"fmcw-doppler-radar/internal/report"
	"fmcw-doppler-radar/internal/runner"
)

var (
	inputFormat  string
	calibrate    bool
	calibrateAt  int
	interactive  bool
	maxPasses    int
	withMonitor  bool
	withPlot     bool
	noColor      bool
	synthOptions sceneOptions
)

// sceneOptions describes a single synthetic target.
type sceneOptions struct {
	velocity  float64
	amplitude float64
	noise     float64
	seed      int64
}

func (o sceneOptions) config(cfg *config.Config, passes int) acquire.SynthConfig {
	sc := acquire.SynthConfig{
		SampleRate: cfg.SampleRate,
		CarrierHz:  cfg.CarrierHz,
		Noise:      o.noise,
		Seed:       o.seed,
		Passes:     passes,
	}
	if o.amplitude > 0 {
		sc.Targets = []acquire.Target{{Velocity: o.velocity, Amplitude: o.amplitude}}
	}
	return sc
}

func addSceneFlags(cmd *cobra.Command, o *sceneOptions) {
	cmd.Flags().Float64Var(&o.velocity, "velocity", 2, "synthetic target radial velocity in m/s, positive approaching")
	cmd.Flags().Float64Var(&o.amplitude, "amplitude", 400, "synthetic target amplitude in ADC counts, 0 for an empty scene")
	cmd.Flags().Float64Var(&o.noise, "noise", 4, "synthetic noise standard deviation in ADC counts")
	cmd.Flags().Int64Var(&o.seed, "seed", 1, "synthetic noise seed")
}

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Process a capture, or a synthetic scene when no file is given",
	Long: `Run repeats acquire, process and report until the input ends, --max-passes
is reached or the process is interrupted.

Input formats:
  wav     stereo 16-bit WAV, channel 0 is ADC channel A (Q)
  raw     little-endian 32-bit words as written by the dual ADC DMA
  synth   generated target, see --velocity and --amplitude

The format is taken from the file extension unless --format is set.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if withMonitor {
			cfg.Monitor.Enabled = true
		}
		if withPlot {
			cfg.Plot.Enabled = true
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if calibrate && calibrateAt == 0 {
			calibrateAt = 1
		}

		var path string
		if len(args) == 1 {
			path = args[0]
		}
		src, closeSrc, err := openSource(path, cfg)
		if err != nil {
			return err
		}
		defer closeSrc()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		return run(ctx, cfg, src)
	},
}

func init() {
	runCmd.Flags().StringVarP(&inputFormat, "format", "f", "", "input format: wav, raw or synth")
	runCmd.Flags().BoolVar(&calibrate, "calibrate", false, "learn the background from the first passes")
	runCmd.Flags().IntVar(&calibrateAt, "calibrate-at", 0, "start calibration before pass N")
	runCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "restart calibration whenever Enter is pressed")
	runCmd.Flags().IntVarP(&maxPasses, "max-passes", "n", 0, "stop after N passes, 0 for no limit")
	runCmd.Flags().BoolVar(&withMonitor, "monitor", false, "play the Doppler channel on the audio device")
	runCmd.Flags().BoolVar(&withPlot, "plot", false, "draw the spectrum under each readout")
	runCmd.Flags().BoolVar(&noColor, "no-color", false, "disable coloured output")
	addSceneFlags(runCmd, &synthOptions)
}

func openSource(path string, cfg *config.Config) (acquire.Source, func(), error) {
	format := inputFormat
	if format == "" {
		switch {
		case path == "":
			format = "synth"
		case strings.EqualFold(filepath.Ext(path), ".wav"):
			format = "wav"
		default:
			format = "raw"
		}
	}

	if format == "synth" {
		log.Printf("[INFO] Synthetic scene: %.2f m/s at %.0f counts, noise %.1f", synthOptions.velocity, synthOptions.amplitude, synthOptions.noise)
		return acquire.NewSynthSource(synthOptions.config(cfg, 0)), func() {}, nil
	}
	if path == "" {
		return nil, nil, fmt.Errorf("format %s needs an input file", format)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	closeFile := func() { f.Close() }

	switch format {
	case "wav":
		src, err := acquire.NewWAVSource(f)
		if err != nil {
			f.Close()
			return nil, nil, err
		}
		log.Printf("[INFO] Reading %s, %d Hz stereo", path, src.SampleRate())
		if float64(src.SampleRate()) != cfg.SampleRate {
			log.Printf("[WARN] Recording rate %d Hz differs from the configured %g Hz", src.SampleRate(), cfg.SampleRate)
		}
		return src, closeFile, nil
	case "raw":
		log.Printf("[INFO] Reading %s as raw 32-bit words", path)
		return acquire.NewRawSource(bufio.NewReader(f)), closeFile, nil
	default:
		f.Close()
		return nil, nil, fmt.Errorf("unknown input format %q", format)
	}
}

func run(ctx context.Context, cfg *config.Config, src acquire.Source) error {
	tr, err := fft.New(cfg.FFTBackend, cfg.FFTSize)
	if err != nil {
		return err
	}
	pipeline, err := radar.New(cfg.RadarParams(), tr)
	if err != nil {
		return err
	}

	var plot *report.PlotOptions
	if cfg.Plot.Enabled {
		plot = &report.PlotOptions{Width: cfg.Plot.Width, Height: cfg.Plot.Height, Scale: cfg.Plot.Scale}
	}
	r := &runner.Runner{
		Source:       src,
		Pipeline:     pipeline,
		Reporter:     report.NewTextReporter(os.Stdout, !noColor && !color.NoColor, plot),
		Logger:       log.Default(),
		PassInterval: cfg.PassInterval,
		MaxPasses:    maxPasses,
		CalibrateAt:  calibrateAt,
	}

	if cfg.Monitor.Enabled {
		m, err := monitor.New(monitor.Config{
			InputRate:  cfg.SampleRate,
			OutputRate: cfg.Monitor.SampleRate,
			CutoffHz:   cfg.Monitor.CutoffHz,
			Taps:       cfg.Monitor.Taps,
			Gain:       cfg.Monitor.Gain,
			BufferSize: cfg.Monitor.BufferSize,
		})
		if err != nil {
			return err
		}
		player, err := monitor.Play(m, cfg.Monitor.SampleRate)
		if err != nil {
			return err
		}
		defer func() {
			m.Close()
			player.Close()
			if n := m.Clipped(); n > 0 {
				log.Printf("[STATS] Total clipped audio samples: %d", n)
			}
		}()
		r.Monitor = m
	}

	if interactive {
		log.Printf("[INFO] Press Enter to calibrate")
		go watchStdin(ctx, os.Stdin, r.Calibrate)
	}

	log.Printf("[INFO] %d-point %s FFT at %g Hz, %.1f Hz per bin, pass every %s, threshold %g",
		cfg.FFTSize, cfg.FFTBackend, cfg.SampleRate, pipeline.Params().BinResolution(),
		cfg.AcquisitionTime()+cfg.PassInterval, cfg.DetectionThreshold)

	stats, err := r.Run(ctx)
	log.Printf("[STATS] %d passes, %d with motion", stats.Passes, stats.Detections)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// watchStdin calls calibrate for every line read from in until ctx is done.
// A read already blocked on a terminal only returns with the next line or
// when the process exits.
func watchStdin(ctx context.Context, in io.Reader, calibrate func()) {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if ctx.Err() != nil {
			return
		}
		calibrate()
	}
}
