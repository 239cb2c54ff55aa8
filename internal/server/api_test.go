package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vaanilabs/vaani-core/internal/config"
	"github.com/vaanilabs/vaani-core/internal/languages"
	"github.com/vaanilabs/vaani-core/internal/media"
	"github.com/vaanilabs/vaani-core/internal/pipeline"
	"github.com/vaanilabs/vaani-core/internal/stt"
	"github.com/vaanilabs/vaani-core/internal/translate"
	"github.com/vaanilabs/vaani-core/internal/tts"
)

type stubExtractor struct {
	err error
}

func (s *stubExtractor) ExtractAudio(_ context.Context, mediaBytes []byte, _ media.Kind) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return mediaBytes, nil
}

type stubRecognizer struct {
	segments []stt.Segment
}

func (s *stubRecognizer) Transcribe(context.Context, []byte) ([]stt.Segment, error) {
	return s.segments, nil
}

type stubModel struct {
	err error
}

func (s *stubModel) Encode(_ context.Context, text, _ string) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return strings.Fields(text), nil
}

func (s *stubModel) Generate(_ context.Context, _ []string, targetPrefix string) ([][]string, error) {
	return [][]string{{targetPrefix, "अनुवाद"}}, nil
}

func (s *stubModel) Decode(_ context.Context, tokens []string) (string, error) {
	return strings.Join(tokens, " "), nil
}

type stubSynth struct {
	audio []byte
}

func (s *stubSynth) Encoding() tts.Encoding { return tts.EncodingContainer }

func (s *stubSynth) Synthesize(context.Context, tts.Request) (<-chan tts.Chunk, <-chan error) {
	chunks := make(chan tts.Chunk, 1)
	errs := make(chan error, 1)
	if len(s.audio) > 0 {
		chunks <- tts.Chunk{Kind: tts.ChunkAudio, Data: s.audio, Final: true}
	}
	close(chunks)
	close(errs)
	return chunks, errs
}

type harness struct {
	extractor  *stubExtractor
	recognizer *stubRecognizer
	model      *stubModel
	synth      *stubSynth
	mux        *http.ServeMux
}

func newHarness() *harness {
	h := &harness{
		extractor:  &stubExtractor{},
		recognizer: &stubRecognizer{segments: []stt.Segment{{Text: "hello there"}}},
		model:      &stubModel{},
		synth:      &stubSynth{audio: []byte("speech")},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
	orch := pipeline.New(
		languages.Default(),
		h.extractor,
		stt.NewStage(h.recognizer),
		translate.NewStage(h.model),
		tts.NewStage(h.synth, config.TTSConfig{Container: "raw", SampleRate: 24000, Channels: 1}),
		nil,
		logger,
	)
	api := NewAPI(config.HTTPConfig{
		AllowedOrigins: []string{"http://localhost:3000"},
		MaxUploadMB:    10,
	}, orch, nil, logger)
	h.mux = http.NewServeMux()
	api.Routes(h.mux)
	return h
}

func multipartBody(t *testing.T, field, filename string, payload []byte, form map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range form {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field %s: %v", key, err)
		}
	}
	if field != "" {
		part, err := writer.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(payload); err != nil {
			t.Fatalf("write payload: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func postTranslate(t *testing.T, h *harness, path, field string, payload []byte, form map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, field, "clip.bin", payload, form)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.mux.ServeHTTP(rec, req)
	return rec
}

func langPair() map[string]string {
	return map[string]string{"source_lang": "English", "target_lang": "Hindi"}
}

func TestLanguagesEndpoint(t *testing.T) {
	h := newHarness()
	req := httptest.NewRequest(http.MethodGet, "/v1/languages", nil)
	rec := httptest.NewRecorder()
	h.mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Languages []string `json:"languages"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Languages) != 13 {
		t.Fatalf("expected 13 languages, got %d", len(resp.Languages))
	}
	if resp.Languages[0] != "English" {
		t.Fatalf("expected English first, got %q", resp.Languages[0])
	}
}

func TestTranslateAudioSuccess(t *testing.T) {
	h := newHarness()
	rec := postTranslate(t, h, "/v1/translate-audio", "audio", []byte("clip"), langPair())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		RequestID      string `json:"request_id"`
		OriginalText   string `json:"original_text"`
		TranslatedText string `json:"translated_text"`
		AudioBase64    string `json:"audio_base64"`
		SpeechError    string `json:"speech_error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.RequestID == "" {
		t.Fatal("expected request id")
	}
	if resp.OriginalText != "hello there" {
		t.Fatalf("unexpected original text %q", resp.OriginalText)
	}
	if resp.TranslatedText == "" {
		t.Fatal("expected translated text")
	}
	audio, err := base64.StdEncoding.DecodeString(resp.AudioBase64)
	if err != nil {
		t.Fatalf("audio is not valid base64: %v", err)
	}
	if string(audio) != "speech" {
		t.Fatalf("audio corrupted: %q", audio)
	}
	if resp.SpeechError != "" {
		t.Fatalf("unexpected speech error %q", resp.SpeechError)
	}
}

func TestTranslateAudioInvalidLanguage(t *testing.T) {
	h := newHarness()
	form := map[string]string{"source_lang": "English", "target_lang": "Klingon"}
	rec := postTranslate(t, h, "/v1/translate-audio", "audio", []byte("clip"), form)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp struct {
		ErrorMessage string `json:"error_message"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.Contains(resp.ErrorMessage, "Klingon") {
		t.Fatalf("error should name the language: %q", resp.ErrorMessage)
	}
}

func TestTranslateAudioMissingUpload(t *testing.T) {
	h := newHarness()
	rec := postTranslate(t, h, "/v1/translate-audio", "", nil, langPair())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTranslateAudioMissingLanguages(t *testing.T) {
	h := newHarness()
	rec := postTranslate(t, h, "/v1/translate-audio", "audio", []byte("clip"), map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTranslateVideoNoAudioTrack(t *testing.T) {
	h := newHarness()
	h.extractor.err = &media.NoAudioTrackError{}
	rec := postTranslate(t, h, "/v1/translate-video", "video", []byte("clip"), langPair())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTranslateAudioTranslationFailureIsServerError(t *testing.T) {
	h := newHarness()
	h.model.err = errors.New("model crashed")
	rec := postTranslate(t, h, "/v1/translate-audio", "audio", []byte("clip"), langPair())
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestTranslateAudioDegradedSynthesis(t *testing.T) {
	h := newHarness()
	h.synth.audio = nil
	rec := postTranslate(t, h, "/v1/translate-audio", "audio", []byte("clip"), langPair())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		TranslatedText string `json:"translated_text"`
		AudioBase64    string `json:"audio_base64"`
		SpeechError    string `json:"speech_error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.TranslatedText == "" || resp.SpeechError == "" || resp.AudioBase64 != "" {
		t.Fatalf("degraded response malformed: %+v", resp)
	}
}

func TestTranslateAudioMethodNotAllowed(t *testing.T) {
	h := newHarness()
	req := httptest.NewRequest(http.MethodGet, "/v1/translate-audio", nil)
	rec := httptest.NewRecorder()
	h.mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestHistoryEmptyWithoutJournal(t *testing.T) {
	h := newHarness()
	req := httptest.NewRequest(http.MethodGet, "/v1/history", nil)
	rec := httptest.NewRecorder()
	h.mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Requests []any `json:"requests"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Requests) != 0 {
		t.Fatalf("expected no entries, got %d", len(resp.Requests))
	}
}

func TestHistoryRejectsBadLimit(t *testing.T) {
	h := newHarness()
	req := httptest.NewRequest(http.MethodGet, "/v1/history?limit=nope", nil)
	rec := httptest.NewRecorder()
	h.mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := newHarness()
	req := httptest.NewRequest(http.MethodOptions, "/v1/translate-audio", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	h.mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("unexpected allow-origin %q", got)
	}
}

func TestCORSDisallowedOrigin(t *testing.T) {
	h := newHarness()
	req := httptest.NewRequest(http.MethodGet, "/v1/languages", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec := httptest.NewRecorder()
	h.mux.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("disallowed origin must not be echoed, got %q", got)
	}
}
