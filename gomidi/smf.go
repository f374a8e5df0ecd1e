// Package gomidi exports buzzer melodies as Standard MIDI Files.
package gomidi

import (
	"bytes"
	"fmt"
	"math"

	"github.com/buzzerlab/tonedelay"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	channel  = 0
	velocity = 100
)

// Resolution is the number of ticks per quarter note in exported files.
var Resolution = smf.MetricTicks(960)

// Key returns the MIDI key closest to the frequency, with A4 = 440 Hz = 69.
func Key(frequency float64) uint8 {
	k := math.Round(69 + 12*math.Log2(frequency/440))
	return uint8(math.Min(math.Max(k, 0), 127))
}

// SMF writes the notes as a single track MIDI file at the given tempo (BPM).
// Rests only advance time.
func SMF(name string, notes []tonedelay.Note, tempo float64) ([]byte, error) {
	if tempo <= 0 {
		return nil, fmt.Errorf("tempo must be positive, got %v", tempo)
	}
	ticksPerMs := float64(Resolution.Ticks4th()) * tempo / 60000
	var tr smf.Track
	if name != "" {
		tr.Add(0, smf.MetaTrackSequenceName(name))
	}
	tr.Add(0, smf.MetaTempo(tempo))
	var elapsedMs float64
	var lastTick uint32
	pending := uint32(0) // ticks not yet attached to an event
	for _, n := range notes {
		elapsedMs += n.Duration
		tick := uint32(math.Round(elapsedMs * ticksPerMs))
		delta := tick - lastTick
		lastTick = tick
		if n.Frequency <= 0 {
			pending += delta
			continue
		}
		key := Key(n.Frequency)
		tr.Add(pending, midi.NoteOn(channel, key, velocity))
		tr.Add(delta, midi.NoteOff(channel, key))
		pending = 0
	}
	tr.Close(pending)
	s := smf.New()
	s.TimeFormat = Resolution
	if err := s.Add(tr); err != nil {
		return nil, fmt.Errorf("could not add track: %w", err)
	}
	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("could not write midi file: %w", err)
	}
	return buf.Bytes(), nil
}
