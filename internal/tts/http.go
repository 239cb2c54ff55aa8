package tts

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/vaanilabs/vaani-core/internal/config"
)

// httpSynth talks to a networked voice provider that streams line-delimited
// JSON chunks. The payloads are complete encoded audio (typically mp3), so no
// container wrapping is needed downstream. The client is reentrant; no
// per-handle serialization.
type httpSynth struct {
	endpoint string
	client   *http.Client
}

type httpSynthRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

type httpSynthChunk struct {
	Type       string `json:"type"`
	DataBase64 string `json:"data_base64"`
	Final      bool   `json:"final"`
}

func NewHTTPSynth(cfg config.TTSConfig) Synthesizer {
	timeout := time.Duration(cfg.TimeoutMS) * time.Millisecond
	return &httpSynth{
		endpoint: cfg.Endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (h *httpSynth) Encoding() Encoding {
	return EncodingContainer
}

func (h *httpSynth) Synthesize(ctx context.Context, req Request) (<-chan Chunk, <-chan error) {
	chunks := make(chan Chunk)
	errs := make(chan error, 1)
	go func() {
		defer close(chunks)
		defer close(errs)

		body, err := json.Marshal(httpSynthRequest{Text: req.Text, Voice: req.Voice})
		if err != nil {
			errs <- err
			return
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
		if err != nil {
			errs <- err
			return
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := h.client.Do(httpReq)
		if err != nil {
			errs <- err
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 300 {
			errs <- fmt.Errorf("voice provider returned status %s", resp.Status)
			return
		}

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(bytes.TrimSpace(line)) == 0 {
				continue
			}
			var chunk httpSynthChunk
			if err := json.Unmarshal(line, &chunk); err != nil {
				errs <- err
				return
			}
			kind := ChunkMetadata
			if chunk.Type == string(ChunkAudio) {
				kind = ChunkAudio
			}
			data, err := base64.StdEncoding.DecodeString(chunk.DataBase64)
			if err != nil {
				errs <- err
				return
			}
			select {
			case chunks <- Chunk{Kind: kind, Data: data, Final: chunk.Final}:
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			}
		}
		if scanErr := scanner.Err(); scanErr != nil {
			errs <- scanErr
		}
	}()
	return chunks, errs
}
