// Package config holds the tunable parameters of the radar tool and loads
// them from defaults, an optional config file and FMCW_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"fmcw-doppler-radar/internal/fft"
	"fmcw-doppler-radar/internal/radar"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid value")

// EnvPrefix prefixes environment overrides, e.g. FMCW_DETECTION_THRESHOLD.
const EnvPrefix = "FMCW"

// Config holds all the configuration parameters for the application.
type Config struct {
	FFTSize            int           `mapstructure:"fft_size"`
	SampleRate         float64       `mapstructure:"sample_rate"`
	CarrierHz          float64       `mapstructure:"carrier_hz"`
	GuardBins          int           `mapstructure:"guard_bins"`
	DetectionThreshold float64       `mapstructure:"detection_threshold"`
	CalibrationPasses  int           `mapstructure:"calibration_passes"`
	SmoothingWindow    int           `mapstructure:"smoothing_window"`
	RequireCalibration bool          `mapstructure:"require_calibration"`
	FFTBackend         string        `mapstructure:"fft_backend"`
	FrequencyTau       time.Duration `mapstructure:"frequency_tau"`
	PassInterval       time.Duration `mapstructure:"pass_interval"`

	Monitor MonitorConfig `mapstructure:"monitor"`
	Plot    PlotConfig    `mapstructure:"plot"`
}

// MonitorConfig configures the audible Doppler monitor.
type MonitorConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	SampleRate int     `mapstructure:"sample_rate"`
	CutoffHz   float64 `mapstructure:"cutoff_hz"`
	Taps       int     `mapstructure:"taps"`
	Gain       float64 `mapstructure:"gain"`
	BufferSize int     `mapstructure:"buffer_size"`
}

// PlotConfig configures the terminal spectrum chart.
type PlotConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	Width   int     `mapstructure:"width"`
	Height  int     `mapstructure:"height"`
	Scale   float64 `mapstructure:"scale"` // magnitude units per text row
}

// New returns a new Config with default values.
func New() *Config {
	p := radar.DefaultParams()
	return &Config{
		FFTSize:            p.FFTSize,
		SampleRate:         p.SampleRate,
		CarrierHz:          p.CarrierHz,
		GuardBins:          p.GuardBins,
		DetectionThreshold: p.DetectionThreshold,
		CalibrationPasses:  p.CalibrationPasses,
		SmoothingWindow:    p.SmoothingWindow,
		RequireCalibration: p.RequireCalibration,
		FFTBackend:         fft.Gonum,
		FrequencyTau:       0,
		PassInterval:       200 * time.Millisecond, // main loop delay of the board
		Monitor: MonitorConfig{
			SampleRate: 48_000,
			CutoffHz:   1_500,
			Taps:       63,
			Gain:       8,
			BufferSize: 48_000, // 1s of audio
		},
		Plot: PlotConfig{
			Width:  128,
			Height: 16,
			Scale:  20_000,
		},
	}
}

// Load builds a Config from defaults, the file at path (skipped when empty)
// and environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, New())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key so that environment overrides and
// Unmarshal see the full key set.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("fft_size", d.FFTSize)
	v.SetDefault("sample_rate", d.SampleRate)
	v.SetDefault("carrier_hz", d.CarrierHz)
	v.SetDefault("guard_bins", d.GuardBins)
	v.SetDefault("detection_threshold", d.DetectionThreshold)
	v.SetDefault("calibration_passes", d.CalibrationPasses)
	v.SetDefault("smoothing_window", d.SmoothingWindow)
	v.SetDefault("require_calibration", d.RequireCalibration)
	v.SetDefault("fft_backend", d.FFTBackend)
	v.SetDefault("frequency_tau", d.FrequencyTau)
	v.SetDefault("pass_interval", d.PassInterval)

	v.SetDefault("monitor.enabled", d.Monitor.Enabled)
	v.SetDefault("monitor.sample_rate", d.Monitor.SampleRate)
	v.SetDefault("monitor.cutoff_hz", d.Monitor.CutoffHz)
	v.SetDefault("monitor.taps", d.Monitor.Taps)
	v.SetDefault("monitor.gain", d.Monitor.Gain)
	v.SetDefault("monitor.buffer_size", d.Monitor.BufferSize)

	v.SetDefault("plot.enabled", d.Plot.Enabled)
	v.SetDefault("plot.width", d.Plot.Width)
	v.SetDefault("plot.height", d.Plot.Height)
	v.SetDefault("plot.scale", d.Plot.Scale)
}

// Validate checks the radar constants and the optional subsystems.
func (c *Config) Validate() error {
	if err := c.RadarParams().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if !validBackend(c.FFTBackend) {
		return fmt.Errorf("%w: fft_backend %q (want one of %s)", ErrInvalid, c.FFTBackend, strings.Join(fft.Backends(), ", "))
	}
	if c.FrequencyTau < 0 || c.PassInterval < 0 {
		return fmt.Errorf("%w: durations must not be negative", ErrInvalid)
	}
	if c.Monitor.Enabled {
		m := c.Monitor
		if m.SampleRate <= 0 || m.Taps < 1 || m.BufferSize < 1 {
			return fmt.Errorf("%w: monitor needs a positive sample rate, taps and buffer size", ErrInvalid)
		}
		if m.CutoffHz <= 0 || m.CutoffHz >= c.SampleRate/2 {
			return fmt.Errorf("%w: monitor cutoff %g Hz must be below %g Hz", ErrInvalid, m.CutoffHz, c.SampleRate/2)
		}
	}
	if c.Plot.Enabled && (c.Plot.Width < 1 || c.Plot.Height < 1 || c.Plot.Scale <= 0) {
		return fmt.Errorf("%w: plot dimensions and scale must be positive", ErrInvalid)
	}
	return nil
}

func validBackend(name string) bool {
	for _, b := range fft.Backends() {
		if name == b {
			return true
		}
	}
	return false
}

// AcquisitionTime is the duration covered by one buffer of samples.
func (c *Config) AcquisitionTime() time.Duration {
	return time.Duration(float64(time.Second) * float64(c.FFTSize) / c.SampleRate)
}

// RadarParams converts the configuration into pipeline constants. The
// frequency readout coefficient is derived from the pass period (acquisition
// plus loop delay) and FrequencyTau.
func (c *Config) RadarParams() radar.Params {
	alpha := 1.0
	if c.FrequencyTau > 0 {
		dt := (c.AcquisitionTime() + c.PassInterval).Seconds()
		alpha = dt / (c.FrequencyTau.Seconds() + dt)
	}
	return radar.Params{
		FFTSize:            c.FFTSize,
		SampleRate:         c.SampleRate,
		CarrierHz:          c.CarrierHz,
		GuardBins:          c.GuardBins,
		DetectionThreshold: c.DetectionThreshold,
		CalibrationPasses:  c.CalibrationPasses,
		SmoothingWindow:    c.SmoothingWindow,
		RequireCalibration: c.RequireCalibration,
		FrequencyAlpha:     alpha,
	}
}
