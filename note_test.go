package tonedelay_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/buzzerlab/tonedelay"
)

func TestNotesPairing(t *testing.T) {
	tests := []struct {
		name   string
		melody tonedelay.Melody
		want   []tonedelay.Note
	}{
		{"empty", tonedelay.Melody{}, []tonedelay.Note{}},
		{"equal", tonedelay.Melody{Tones: []float64{440, 220}, Delays: []float64{100, 200}},
			[]tonedelay.Note{{440, 100}, {220, 200}}},
		{"more delays", tonedelay.Melody{Tones: []float64{440}, Delays: []float64{100, 50}},
			[]tonedelay.Note{{440, 100}, {0, 50}}},
		{"more tones", tonedelay.Melody{Tones: []float64{440, 330}, Delays: []float64{100}},
			[]tonedelay.Note{{440, 100}, {330, 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.melody.Notes()); diff != "" {
				t.Errorf("notes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMelodyDuration(t *testing.T) {
	m := tonedelay.Melody{Tones: []float64{1}, Delays: []float64{100, 250.5}}
	assert.Equal(t, 350.5, m.Duration())
}
