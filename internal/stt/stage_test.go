package stt

import (
	"context"
	"errors"
	"testing"
)

type fakeRecognizer struct {
	segments []Segment
	err      error
}

func (f *fakeRecognizer) Transcribe(context.Context, []byte) ([]Segment, error) {
	return f.segments, f.err
}

func TestStageJoinsSegments(t *testing.T) {
	stage := NewStage(&fakeRecognizer{segments: []Segment{
		{Start: 0, End: 1.2, Text: " hello"},
		{Start: 1.2, End: 2.5, Text: "how are"},
		{Start: 2.5, End: 3.1, Text: "you "},
	}})
	result, err := stage.Transcribe(context.Background(), []byte("pcm"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Text != "hello how are you" {
		t.Fatalf("unexpected text %q", result.Text)
	}
	if result.Empty() {
		t.Fatal("result should not be empty")
	}
}

func TestStageEmptySpeech(t *testing.T) {
	stage := NewStage(&fakeRecognizer{})
	result, err := stage.Transcribe(context.Background(), []byte("silence"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Empty() {
		t.Fatalf("expected empty result, got %q", result.Text)
	}
}

func TestStageWhitespaceOnlyIsEmpty(t *testing.T) {
	stage := NewStage(&fakeRecognizer{segments: []Segment{
		{Text: "  "},
		{Text: "\t"},
	}})
	result, err := stage.Transcribe(context.Background(), []byte("noise"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Empty() {
		t.Fatalf("expected whitespace-only transcript flagged empty, got %q", result.Text)
	}
}

func TestStagePropagatesRecognizerError(t *testing.T) {
	wantErr := errors.New("decode failure")
	stage := NewStage(&fakeRecognizer{err: wantErr})
	_, err := stage.Transcribe(context.Background(), []byte("pcm"))
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped recognizer error, got %v", err)
	}
}
