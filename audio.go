package tonedelay

import "context"

// AudioContext plays rendered audio, blocking until playback ends or ctx is
// cancelled.
type AudioContext interface {
	Play(ctx context.Context, buffer AudioBuffer) error
	Close() error
}
