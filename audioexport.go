package tonedelay

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/viterin/vek/vek32"
)

// AudioBuffer is interleaved stereo float32 audio at SampleRate.
type AudioBuffer struct {
	Samples    []float32
	SampleRate int
}

// Render synthesizes the notes as the buzzer would play them: a PWM square
// wave whose duty cycle is the volume. Rests and zero frequencies are silent.
func Render(notes []Note, p Preferences) (AudioBuffer, error) {
	if err := p.Validate(); err != nil {
		return AudioBuffer{}, fmt.Errorf("invalid preferences: %w", err)
	}
	duty := math.Min(math.Max(p.Volume, 0), MaxVolume)
	counts := make([]int, len(notes))
	maxFrames := MaxRenderSeconds * p.SampleRate
	var frames int
	for i, n := range notes {
		count, err := noteFrames(n, p)
		if err != nil {
			return AudioBuffer{}, fmt.Errorf("note %d: %w", i, err)
		}
		if count > maxFrames-frames {
			return AudioBuffer{}, fmt.Errorf("%w: melody is longer than %d seconds", ErrTooLong, MaxRenderSeconds)
		}
		counts[i] = count
		frames += count
	}
	out := make([]float32, 0, 2*frames)
	for i, n := range notes {
		count := counts[i]
		if n.Frequency <= 0 || duty == 0 {
			out = append(out, make([]float32, 2*count)...)
			continue
		}
		period := float64(p.SampleRate) / n.Frequency
		for j := 0; j < count; j++ {
			phase := math.Mod(float64(j), period) / period
			var v float32
			if phase < duty {
				v = 1
			}
			v -= float32(duty) // remove the DC offset of the pulse train
			out = append(out, v, v)
		}
	}
	vek32.MulNumber_Inplace(out, float32(p.Amplitude))
	return AudioBuffer{Samples: out, SampleRate: p.SampleRate}, nil
}

// MaxRenderSeconds is the longest melody Render accepts.
const MaxRenderSeconds = 3600

var ErrTooLong = errors.New("melody too long to render")

func noteFrames(n Note, p Preferences) (int, error) {
	if math.IsNaN(n.Duration) || n.Duration < 0 {
		return 0, fmt.Errorf("invalid duration %v", n.Duration)
	}
	frames := math.Round(n.Duration / p.Speed * float64(p.SampleRate) / 1000)
	// compare as float so that huge or infinite durations cannot overflow int
	if frames > float64(MaxRenderSeconds*p.SampleRate) {
		return 0, fmt.Errorf("%w: note lasts %v ms", ErrTooLong, n.Duration)
	}
	return int(frames), nil
}

func (b AudioBuffer) Wav(pcm16 bool) ([]byte, error) {
	buf := new(bytes.Buffer)
	wavHeader(len(b.Samples), b.SampleRate, pcm16, buf)
	err := rawToBuffer(b.Samples, pcm16, buf)
	if err != nil {
		return nil, fmt.Errorf("Wav failed: %v", err)
	}
	return buf.Bytes(), nil
}

func (b AudioBuffer) Raw(pcm16 bool) ([]byte, error) {
	buf := new(bytes.Buffer)
	err := rawToBuffer(b.Samples, pcm16, buf)
	if err != nil {
		return nil, fmt.Errorf("Raw failed: %v", err)
	}
	return buf.Bytes(), nil
}

func rawToBuffer(data []float32, pcm16 bool, buf *bytes.Buffer) error {
	var err error
	if pcm16 {
		int16data := make([]int16, len(data))
		for i, v := range data {
			int16data[i] = int16(clamp(int(v*math.MaxInt16), math.MinInt16, math.MaxInt16))
		}
		err = binary.Write(buf, binary.LittleEndian, int16data)
	} else {
		err = binary.Write(buf, binary.LittleEndian, data)
	}
	if err != nil {
		return fmt.Errorf("could not binary write data to binary buffer: %v", err)
	}
	return nil
}

// wavHeader writes a wave header for either float32 or int16 stereo audio.
// bufferLength counts individual samples, so there are bufferLength / 2
// frames.
func wavHeader(bufferLength int, sampleRate int, pcm16 bool, buf *bytes.Buffer) {
	// Refer to: http://www-mmsp.ece.mcgill.ca/Documents/AudioFormats/WAVE/WAVE.html
	numChannels := 2
	var bytesPerSample, chunkSize, fmtChunkSize, waveFormat int
	var factChunk bool
	if pcm16 {
		bytesPerSample = 2
		chunkSize = 36 + bytesPerSample*bufferLength
		fmtChunkSize = 16
		waveFormat = 1 // PCM
	} else {
		bytesPerSample = 4
		chunkSize = 50 + bytesPerSample*bufferLength
		fmtChunkSize = 18
		waveFormat = 3 // IEEE float
		factChunk = true
	}
	buf.Write([]byte("RIFF"))
	binary.Write(buf, binary.LittleEndian, uint32(chunkSize))
	buf.Write([]byte("WAVE"))
	buf.Write([]byte("fmt "))
	binary.Write(buf, binary.LittleEndian, uint32(fmtChunkSize))
	binary.Write(buf, binary.LittleEndian, uint16(waveFormat))
	binary.Write(buf, binary.LittleEndian, uint16(numChannels))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate*numChannels*bytesPerSample)) // avgBytesPerSec
	binary.Write(buf, binary.LittleEndian, uint16(numChannels*bytesPerSample))            // blockAlign
	binary.Write(buf, binary.LittleEndian, uint16(8*bytesPerSample))                      // bits per sample
	if fmtChunkSize > 16 {
		binary.Write(buf, binary.LittleEndian, uint16(0)) // size of extension
	}
	if factChunk {
		buf.Write([]byte("fact"))
		binary.Write(buf, binary.LittleEndian, uint32(4))              // fact chunk size
		binary.Write(buf, binary.LittleEndian, uint32(bufferLength/2)) // frames per channel
	}
	buf.Write([]byte("data"))
	binary.Write(buf, binary.LittleEndian, uint32(bytesPerSample*bufferLength))
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
