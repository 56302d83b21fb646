package monitor

import (
	"fmt"

	"github.com/ebitengine/oto/v3"
)

// Player plays a Monitor on the default audio device.
type Player struct {
	player *oto.Player
}

// Play opens the audio device at sampleRate and starts streaming m. Only one
// audio context may exist per process.
func Play(m *Monitor, sampleRate int) (*Player, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("monitor: open audio device: %w", err)
	}
	<-ready

	p := ctx.NewPlayer(m)
	p.Play()
	return &Player{player: p}, nil
}

// Close stops playback.
func (p *Player) Close() error {
	return p.player.Close()
}
