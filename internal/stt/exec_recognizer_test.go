package stt

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/vaanilabs/vaani-core/internal/config"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recognizer.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestExecRecognizerParsesSegments(t *testing.T) {
	script := writeScript(t, `echo '{"segments":[{"start":0,"end":1.5,"text":"namaste"},{"start":1.5,"end":2,"text":"duniya"}]}'`)
	rec, err := NewExecRecognizer(config.STTConfig{Mode: "exec", Command: script, BeamSize: 5})
	if err != nil {
		t.Fatalf("build recognizer: %v", err)
	}
	segments, err := rec.Transcribe(context.Background(), []byte("audio-bytes"))
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	if segments[0].Text != "namaste" || segments[1].Text != "duniya" {
		t.Fatalf("unexpected segments %+v", segments)
	}
}

func TestExecRecognizerCommandFailure(t *testing.T) {
	script := writeScript(t, `echo "model exploded" >&2; exit 3`)
	rec, err := NewExecRecognizer(config.STTConfig{Mode: "exec", Command: script})
	if err != nil {
		t.Fatalf("build recognizer: %v", err)
	}
	if _, err := rec.Transcribe(context.Background(), []byte("audio")); err == nil {
		t.Fatal("expected error from failing command")
	}
}

func TestNewExecRecognizerRejectsEmptyCommand(t *testing.T) {
	if _, err := NewExecRecognizer(config.STTConfig{Mode: "exec"}); err == nil {
		t.Fatal("expected error for empty command")
	}
}
