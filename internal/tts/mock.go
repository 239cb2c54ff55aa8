package tts

import (
	"context"
)

type mockSynth struct{}

func NewMockSynth() Synthesizer {
	return &mockSynth{}
}

func (m *mockSynth) Encoding() Encoding {
	return EncodingContainer
}

func (m *mockSynth) Synthesize(ctx context.Context, req Request) (<-chan Chunk, <-chan error) {
	chunks := make(chan Chunk, 3)
	errs := make(chan error, 1)
	go func() {
		defer close(chunks)
		defer close(errs)
		if req.Text == "" {
			return
		}
		chunks <- Chunk{Kind: ChunkMetadata, Data: []byte(req.Voice)}
		chunks <- Chunk{Kind: ChunkAudio, Data: []byte("RIFFmock")}
		chunks <- Chunk{Kind: ChunkAudio, Data: []byte(req.Text), Final: true}
	}()
	return chunks, errs
}
