package tonedelay

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

// Preferences control how a melody is rendered and played back. Speed and
// Volume mirror the buzzer player of the jukebox firmware: durations are
// divided by Speed and Volume is the PWM duty cycle of the square wave.
type Preferences struct {
	SampleRate int
	Speed      float64
	Volume     float64
	Amplitude  float64 // output gain of the rendered square wave
	Tempo      float64 // beats per minute, only used for MIDI export

	// YmlError is set when a user preferences file existed but could not be
	// decoded; the defaults are used in that case.
	YmlError error `yaml:"-"`
}

// MaxVolume is the largest duty cycle the player accepts; a full duty cycle
// would leave the buzzer permanently on.
const MaxVolume = 0.95

const MaxSampleRate = 384000

//go:embed preferences.yml
var defaultPreferencesYaml []byte

func DefaultPreferences() Preferences {
	var p Preferences
	if err := yaml.UnmarshalStrict(defaultPreferencesYaml, &p); err != nil {
		panic(fmt.Errorf("failed to unmarshal preferences: %w", err))
	}
	return p
}

// ReadCustomConfigYml decodes filename from the tonedelay directory under the
// user config directory into target, which must be a pointer.
func ReadCustomConfigYml(filename string, target interface{}) (exists bool, err error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return false, err
	}
	bytes, err := os.ReadFile(filepath.Join(configDir, "tonedelay", filename))
	if err != nil {
		return false, err
	}
	return true, yaml.Unmarshal(bytes, target)
}

// MakePreferences returns the defaults overridden by the user's
// preferences.yml, if there is one.
func MakePreferences() Preferences {
	p := DefaultPreferences()
	custom := p
	exists, err := ReadCustomConfigYml("preferences.yml", &custom)
	if exists {
		if err != nil {
			p.YmlError = err
			return p
		}
		custom.SetVolume(custom.Volume)
		return custom
	}
	return p
}

// SetVolume stores v clamped to [0, MaxVolume].
func (p *Preferences) SetVolume(v float64) {
	if v > MaxVolume {
		v = MaxVolume
	}
	if v < 0 {
		v = 0
	}
	p.Volume = v
}

func (p Preferences) Validate() error {
	var errs []error
	if p.SampleRate <= 0 || p.SampleRate > MaxSampleRate {
		errs = append(errs, fmt.Errorf("sample rate must be between 1 and %v, got %v", MaxSampleRate, p.SampleRate))
	}
	if p.Speed <= 0 {
		errs = append(errs, fmt.Errorf("speed must be positive, got %v", p.Speed))
	}
	if p.Tempo <= 0 {
		errs = append(errs, fmt.Errorf("tempo must be positive, got %v", p.Tempo))
	}
	return errors.Join(errs...)
}
