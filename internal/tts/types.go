package tts

import "context"

// Request contains parameters to synthesize speech.
type Request struct {
	Text  string
	Voice string
}

// ChunkKind discriminates streamed payloads. Only audio chunks carry
// playable data; everything else is provider bookkeeping.
type ChunkKind string

const (
	ChunkAudio    ChunkKind = "audio"
	ChunkMetadata ChunkKind = "metadata"
)

// Chunk is one streamed synthesis payload.
type Chunk struct {
	Kind  ChunkKind
	Data  []byte
	Final bool
}

// Encoding describes what the audio chunks of a synthesizer contain.
type Encoding string

const (
	// EncodingPCM is raw 16-bit little-endian PCM that still needs a container.
	EncodingPCM Encoding = "pcm"
	// EncodingContainer is a complete encoded byte stream (mp3, ogg, wav).
	EncodingContainer Encoding = "container"
)

// Synthesizer is the contract for producing an ordered audio chunk stream.
// Both channels are closed when the stream ends.
type Synthesizer interface {
	Synthesize(ctx context.Context, req Request) (<-chan Chunk, <-chan error)
	Encoding() Encoding
}
