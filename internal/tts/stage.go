package tts

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/vaanilabs/vaani-core/internal/config"
)

// Error wraps any synthesis failure, including a stream that produced no
// audio at all. The orchestrator decides whether that degrades or fails the
// request.
type Error struct {
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("synthesis failed: %v", e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Result is one complete audio payload assembled from the chunk stream.
type Result struct {
	Audio []byte
}

// Stage folds a synthesizer's chunk stream into a single payload: audio-kind
// chunks concatenated in arrival order, everything else discarded.
type Stage struct {
	synth Synthesizer
	cfg   config.TTSConfig
}

func NewStage(synth Synthesizer, cfg config.TTSConfig) *Stage {
	return &Stage{synth: synth, cfg: cfg}
}

func (s *Stage) Synthesize(ctx context.Context, text, voice string) (Result, error) {
	chunks, errs := s.synth.Synthesize(ctx, Request{Text: text, Voice: voice})

	var payload bytes.Buffer
	for chunks != nil || errs != nil {
		select {
		case chunk, ok := <-chunks:
			if !ok {
				chunks = nil
				continue
			}
			if chunk.Kind != ChunkAudio {
				continue
			}
			payload.Write(chunk.Data)
		case err, ok := <-errs:
			if ok && err != nil {
				return Result{}, &Error{Err: err}
			}
			errs = nil
		case <-ctx.Done():
			return Result{}, &Error{Err: ctx.Err()}
		}
	}

	if payload.Len() == 0 {
		return Result{}, &Error{Err: fmt.Errorf("provider returned no audio chunks")}
	}

	if s.synth.Encoding() == EncodingPCM && s.cfg.Container == "wav" {
		wrapped, err := pcmToWav(payload.Bytes(), s.cfg.SampleRate, s.cfg.Channels)
		if err != nil {
			return Result{}, &Error{Err: err}
		}
		return Result{Audio: wrapped}, nil
	}
	return Result{Audio: payload.Bytes()}, nil
}

// pcmToWav wraps raw 16-bit little-endian PCM in a WAV container. The wav
// encoder needs a WriteSeeker to patch up the header, so it goes through a
// temp file that is removed before returning.
func pcmToWav(pcm []byte, sampleRate, channels int) ([]byte, error) {
	if len(pcm)%2 != 0 {
		return nil, fmt.Errorf("pcm payload not aligned")
	}

	file, err := os.CreateTemp("", "vaani_tts_*.wav")
	if err != nil {
		return nil, fmt.Errorf("temp file: %w", err)
	}
	defer os.Remove(file.Name())
	defer file.Close()

	buffer := &audio.IntBuffer{Format: &audio.Format{NumChannels: channels, SampleRate: sampleRate}}
	samples := make([]int, len(pcm)/2)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(pcm[i*2:])))
	}
	buffer.Data = samples

	enc := wav.NewEncoder(file, sampleRate, 16, channels, 1)
	if err := enc.Write(buffer); err != nil {
		return nil, fmt.Errorf("write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("close wav encoder: %w", err)
	}

	return os.ReadFile(file.Name())
}
