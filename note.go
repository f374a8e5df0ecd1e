package tonedelay

// Note is one step of a buzzer melody. A zero Frequency is a rest: the buzzer
// is silent for Duration milliseconds.
type Note struct {
	Frequency float64 // Hz
	Duration  float64 // ms
}

// Notes pairs the i-th tone with the i-th delay. When one list is longer,
// the missing tones are rests and the missing delays are zero-length.
func (m Melody) Notes() []Note {
	n := len(m.Tones)
	if len(m.Delays) > n {
		n = len(m.Delays)
	}
	notes := make([]Note, n)
	for i := range notes {
		if i < len(m.Tones) {
			notes[i].Frequency = m.Tones[i]
		}
		if i < len(m.Delays) {
			notes[i].Duration = m.Delays[i]
		}
	}
	return notes
}

// Duration returns the total length of the melody in milliseconds.
func (m Melody) Duration() float64 {
	var total float64
	for _, d := range m.Delays {
		total += d
	}
	return total
}
