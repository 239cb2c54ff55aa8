package media

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vaanilabs/vaani-core/internal/config"
)

func fakeTool(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func listFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestExtractAudioIdentityForAudioKind(t *testing.T) {
	extractor := NewFFmpegExtractor(config.MediaConfig{
		FFmpegPath: "ffmpeg", FFprobePath: "ffprobe", SampleRate: 16000, Channels: 1,
	})
	in := []byte("opus-bytes")
	out, err := extractor.ExtractAudio(context.Background(), in, KindAudio)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(in, out) {
		t.Fatalf("audio bytes changed: %q", out)
	}
}

func TestExtractAudioFromVideo(t *testing.T) {
	tools := t.TempDir()
	work := t.TempDir()
	ffprobe := fakeTool(t, tools, "ffprobe", `echo audio`)
	// last argument is the output path
	ffmpeg := fakeTool(t, tools, "ffmpeg", `for out; do :; done; printf 'RIFFextracted' > "$out"`)

	extractor := NewFFmpegExtractor(config.MediaConfig{
		FFmpegPath: ffmpeg, FFprobePath: ffprobe,
		SampleRate: 16000, Channels: 1, TempDir: work,
	})
	out, err := extractor.ExtractAudio(context.Background(), []byte("mp4-bytes"), KindVideo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != "RIFFextracted" {
		t.Fatalf("unexpected audio %q", out)
	}
	if files := listFiles(t, work); len(files) != 0 {
		t.Fatalf("temp files left behind: %v", files)
	}
}

func TestExtractAudioNoAudioTrack(t *testing.T) {
	tools := t.TempDir()
	work := t.TempDir()
	ffprobe := fakeTool(t, tools, "ffprobe", `exit 0`)
	ffmpeg := fakeTool(t, tools, "ffmpeg", `echo "should not run" >&2; exit 9`)

	extractor := NewFFmpegExtractor(config.MediaConfig{
		FFmpegPath: ffmpeg, FFprobePath: ffprobe,
		SampleRate: 16000, Channels: 1, TempDir: work,
	})
	_, err := extractor.ExtractAudio(context.Background(), []byte("muted"), KindVideo)
	var noTrack *NoAudioTrackError
	if !errors.As(err, &noTrack) {
		t.Fatalf("expected NoAudioTrackError, got %v", err)
	}
	if files := listFiles(t, work); len(files) != 0 {
		t.Fatalf("temp files left behind: %v", files)
	}
}

func TestExtractAudioCleansUpOnFFmpegFailure(t *testing.T) {
	tools := t.TempDir()
	work := t.TempDir()
	ffprobe := fakeTool(t, tools, "ffprobe", `echo audio`)
	ffmpeg := fakeTool(t, tools, "ffmpeg", `echo "demux failed" >&2; exit 1`)

	extractor := NewFFmpegExtractor(config.MediaConfig{
		FFmpegPath: ffmpeg, FFprobePath: ffprobe,
		SampleRate: 16000, Channels: 1, TempDir: work,
	})
	if _, err := extractor.ExtractAudio(context.Background(), []byte("bad"), KindVideo); err == nil {
		t.Fatal("expected ffmpeg failure")
	}
	if files := listFiles(t, work); len(files) != 0 {
		t.Fatalf("temp files left behind: %v", files)
	}
}

func TestExtractAudioUnknownKind(t *testing.T) {
	extractor := NewFFmpegExtractor(config.MediaConfig{
		FFmpegPath: "ffmpeg", FFprobePath: "ffprobe", SampleRate: 16000, Channels: 1,
	})
	if _, err := extractor.ExtractAudio(context.Background(), nil, Kind("hologram")); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}
