package stt

import (
	"context"
	"fmt"
	"strings"
)

// Result is the flattened transcription output. An empty Text is a
// distinguished outcome, not a failure: the caller decides how to surface it.
type Result struct {
	Text string
}

// Empty reports whether no speech was recognized.
func (r Result) Empty() bool {
	return r.Text == ""
}

// Stage normalizes recognizer output into a single flat string.
type Stage struct {
	recognizer Recognizer
}

func NewStage(recognizer Recognizer) *Stage {
	return &Stage{recognizer: recognizer}
}

// Transcribe runs the recognizer and joins segment text with single spaces,
// trimming surrounding whitespace. Blocking; duration is proportional to the
// audio length.
func (s *Stage) Transcribe(ctx context.Context, audio []byte) (Result, error) {
	segments, err := s.recognizer.Transcribe(ctx, audio)
	if err != nil {
		return Result{}, fmt.Errorf("transcribe: %w", err)
	}
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		parts = append(parts, seg.Text)
	}
	return Result{Text: strings.TrimSpace(strings.Join(parts, " "))}, nil
}
