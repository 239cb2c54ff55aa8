package stt

import (
	"context"
)

// Segment is one recognized speech interval in chronological order.
type Segment struct {
	Start float64
	End   float64
	Text  string
}

// Recognizer abstracts speech-to-text backends. Input is a complete audio
// payload in any container the backend can decode.
type Recognizer interface {
	Transcribe(ctx context.Context, audio []byte) ([]Segment, error)
}
