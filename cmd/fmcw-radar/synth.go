package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"fmcw-doppler-radar/internal/acquire"
	"fmcw-doppler-radar/internal/config"
)

var (
	synthPasses int
	wavOptions  sceneOptions
)

var synthCmd = &cobra.Command{
	Use:   "synth out.wav",
	Short: "Write a synthetic stereo recording of a single target",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if synthPasses < 1 {
			return fmt.Errorf("--passes must be at least 1")
		}

		src := acquire.NewSynthSource(wavOptions.config(cfg, synthPasses))
		n, err := writeSynth(args[0], src, synthPasses, cfg)
		if err != nil {
			return err
		}
		log.Printf("[INFO] Wrote %d buffers of %d frames to %s (Doppler %.1f Hz)",
			n, cfg.FFTSize, args[0], src.DopplerFrequency(wavOptions.velocity))
		return nil
	},
}

func init() {
	synthCmd.Flags().IntVarP(&synthPasses, "passes", "p", 50, "number of buffers to write")
	addSceneFlags(synthCmd, &wavOptions)
}

// writeSynth records src into a new WAV file at path, reporting a failed
// close as an error.
func writeSynth(path string, src acquire.Source, passes int, cfg *config.Config) (n int, err error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return acquire.WriteWAV(context.Background(), f, src, passes, cfg.FFTSize, int(cfg.SampleRate))
}
