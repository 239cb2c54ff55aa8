package server

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/vaanilabs/vaani-core/internal/config"
	"github.com/vaanilabs/vaani-core/internal/journal"
	"github.com/vaanilabs/vaani-core/internal/media"
	"github.com/vaanilabs/vaani-core/internal/pipeline"
)

// API is the HTTP surface over the pipeline. One handler per media kind;
// both accept a multipart form with the clip plus the language pair and
// block until the request reaches a terminal state.
type API struct {
	cfg    config.HTTPConfig
	orch   *pipeline.Orchestrator
	store  *journal.Store
	logger *slog.Logger
}

func NewAPI(cfg config.HTTPConfig, orch *pipeline.Orchestrator, store *journal.Store, logger *slog.Logger) *API {
	return &API{
		cfg:    cfg,
		orch:   orch,
		store:  store,
		logger: logger.With(slog.String("component", "http")),
	}
}

// Routes mounts the API handlers onto mux.
func (a *API) Routes(mux *http.ServeMux) {
	mux.Handle("/v1/languages", a.withCORS(http.HandlerFunc(a.handleLanguages)))
	mux.Handle("/v1/translate-audio", a.withCORS(http.HandlerFunc(a.handleTranslateAudio)))
	mux.Handle("/v1/translate-video", a.withCORS(http.HandlerFunc(a.handleTranslateVideo)))
	mux.Handle("/v1/history", a.withCORS(http.HandlerFunc(a.handleHistory)))
}

type translateResponse struct {
	RequestID      string `json:"request_id"`
	OriginalText   string `json:"original_text"`
	TranslatedText string `json:"translated_text"`
	AudioBase64    string `json:"audio_base64,omitempty"`
	SpeechError    string `json:"speech_error,omitempty"`
}

type errorResponse struct {
	ErrorMessage string `json:"error_message"`
}

type languagesResponse struct {
	Languages []string `json:"languages"`
}

func (a *API) handleLanguages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	a.writeJSON(w, http.StatusOK, languagesResponse{Languages: a.orch.Languages()})
}

func (a *API) handleTranslateAudio(w http.ResponseWriter, r *http.Request) {
	a.handleTranslate(w, r, "audio", media.KindAudio)
}

func (a *API) handleTranslateVideo(w http.ResponseWriter, r *http.Request) {
	a.handleTranslate(w, r, "video", media.KindVideo)
}

func (a *API) handleTranslate(w http.ResponseWriter, r *http.Request, field string, kind media.Kind) {
	if r.Method != http.MethodPost {
		a.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	maxBytes := int64(a.cfg.MaxUploadMB) << 20
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		a.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid multipart form: %v", err))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	sourceLang := r.FormValue("source_lang")
	targetLang := r.FormValue("target_lang")
	if sourceLang == "" || targetLang == "" {
		a.writeError(w, http.StatusBadRequest, "source_lang and target_lang are required")
		return
	}

	file, _, err := r.FormFile(field)
	if err != nil {
		a.writeError(w, http.StatusBadRequest, fmt.Sprintf("missing %s upload", field))
		return
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		a.writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to read %s upload: %v", field, err))
		return
	}
	if len(payload) == 0 {
		a.writeError(w, http.StatusBadRequest, fmt.Sprintf("empty %s upload", field))
		return
	}

	result, err := a.orch.Run(r.Context(), pipeline.Request{
		SourceLang: sourceLang,
		TargetLang: targetLang,
		Kind:       kind,
		Media:      payload,
	}, nil)
	if err != nil {
		status := http.StatusInternalServerError
		if pipeline.Classify(err) == pipeline.ClassClient {
			status = http.StatusBadRequest
		}
		a.writeError(w, status, err.Error())
		return
	}

	resp := translateResponse{
		RequestID:      result.RequestID,
		OriginalText:   result.OriginalText,
		TranslatedText: result.TranslatedText,
		SpeechError:    result.SpeechError,
	}
	if len(result.Audio) > 0 {
		resp.AudioBase64 = base64.StdEncoding.EncodeToString(result.Audio)
	}
	a.writeJSON(w, http.StatusOK, resp)
}

type historyEntry struct {
	RequestID      string    `json:"request_id"`
	SourceLang     string    `json:"source_lang"`
	TargetLang     string    `json:"target_lang"`
	MediaKind      string    `json:"media_kind"`
	Outcome        string    `json:"outcome"`
	OriginalText   string    `json:"original_text,omitempty"`
	TranslatedText string    `json:"translated_text,omitempty"`
	DurationMS     int64     `json:"duration_ms"`
	CreatedAt      time.Time `json:"created_at"`
}

func (a *API) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			a.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	entries, err := a.store.Recent(r.Context(), limit)
	if err != nil {
		a.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out := make([]historyEntry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, historyEntry{
			RequestID:      entry.RequestID,
			SourceLang:     entry.SourceLang,
			TargetLang:     entry.TargetLang,
			MediaKind:      entry.MediaKind,
			Outcome:        entry.Outcome,
			OriginalText:   entry.OriginalText,
			TranslatedText: entry.TranslatedText,
			DurationMS:     entry.DurationMS,
			CreatedAt:      entry.CreatedAt,
		})
	}
	a.writeJSON(w, http.StatusOK, map[string][]historyEntry{"requests": out})
}

func (a *API) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		a.logger.Warn("failed to encode response", slog.String("error", err.Error()))
	}
}

func (a *API) writeError(w http.ResponseWriter, status int, message string) {
	a.writeJSON(w, status, errorResponse{ErrorMessage: message})
}

func (a *API) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && a.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *API) originAllowed(origin string) bool {
	for _, allowed := range a.cfg.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
