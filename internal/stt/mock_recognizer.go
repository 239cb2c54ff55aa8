package stt

import (
	"context"
	"fmt"
)

type mockRecognizer struct{}

func NewMockRecognizer() Recognizer {
	return &mockRecognizer{}
}

func (m *mockRecognizer) Transcribe(_ context.Context, audio []byte) ([]Segment, error) {
	if len(audio) == 0 {
		return nil, nil
	}
	return []Segment{
		{Start: 0, End: 1, Text: fmt.Sprintf("[mock transcript length=%d]", len(audio))},
	}, nil
}
