package media

import "context"

// Kind tells the adapter how to treat incoming media bytes.
type Kind string

const (
	KindAudio Kind = "audio"
	KindVideo Kind = "video"
)

// NoAudioTrackError reports a video container without any audio stream. This
// is a fact about the container, distinct from speech not being recognized.
type NoAudioTrackError struct{}

func (e *NoAudioTrackError) Error() string {
	return "video has no audio track"
}

// Extractor normalizes incoming media to raw audio bytes. Audio passes
// through unchanged; video has its audio track demuxed.
type Extractor interface {
	ExtractAudio(ctx context.Context, media []byte, kind Kind) ([]byte, error)
}
