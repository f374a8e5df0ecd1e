package oto

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/buzzerlab/tonedelay"
	"github.com/ebitengine/oto/v3"
)

// OtoContext plays rendered melodies on the default audio device. Only one
// can exist per process.
type OtoContext struct {
	context    *oto.Context
	sampleRate int
}

const pollInterval = 10 * time.Millisecond

// NewContext creates the oto context and waits until the device is ready.
func NewContext(sampleRate int) (*OtoContext, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
	}
	c, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	return &OtoContext{context: c, sampleRate: sampleRate}, nil
}

// Play blocks until the buffer has been played or ctx is done.
func (c *OtoContext) Play(ctx context.Context, buffer tonedelay.AudioBuffer) error {
	if buffer.SampleRate != c.sampleRate {
		return fmt.Errorf("buffer sample rate %v does not match context sample rate %v", buffer.SampleRate, c.sampleRate)
	}
	raw, err := buffer.Raw(false)
	if err != nil {
		return fmt.Errorf("cannot convert buffer: %w", err)
	}
	player := c.context.NewPlayer(bytes.NewReader(raw))
	defer player.Close()
	player.Play()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			return ctx.Err()
		case <-ticker.C:
		}
	}
	if err := c.context.Err(); err != nil {
		return fmt.Errorf("oto context failed: %w", err)
	}
	return nil
}

// Close suspends the device; oto contexts cannot be destroyed.
func (c *OtoContext) Close() error {
	if err := c.context.Suspend(); err != nil {
		return fmt.Errorf("cannot suspend oto context: %w", err)
	}
	return nil
}
