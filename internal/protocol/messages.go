package protocol

import "time"

// TranslateRequest asks the gateway to run one media clip through the
// pipeline. Media carries the raw bytes of the upload; MediaKind selects
// the ingest path ("audio" or "video").
type TranslateRequest struct {
	RequestID  string `json:"request_id,omitempty"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
	MediaKind  string `json:"media_kind"`
	Media      []byte `json:"media"`
}

// TranslateResult is the terminal message for a request. Exactly one of
// the success fields or ErrorMessage is populated. AudioBase64 uses
// standard base64 so the payload survives any JSON transport untouched.
type TranslateResult struct {
	RequestID      string `json:"request_id"`
	OriginalText   string `json:"original_text,omitempty"`
	TranslatedText string `json:"translated_text,omitempty"`
	AudioBase64    string `json:"audio_base64,omitempty"`
	SpeechError    string `json:"speech_error,omitempty"`
	ErrorMessage   string `json:"error_message,omitempty"`
}

// StatusUpdate mirrors pipeline progress onto the bus so interactive
// callers can render per-stage feedback while a request runs.
type StatusUpdate struct {
	RequestID string    `json:"request_id"`
	Stage     string    `json:"stage"`
	State     string    `json:"state"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	SubjectTranslateRequest = "vaani.translate.request"
	SubjectTranslateStatus  = "vaani.translate.status"
	SubjectTranslateResult  = "vaani.translate.result"
)

// StatusSubject returns the per-request status subject.
func StatusSubject(requestID string) string {
	return SubjectTranslateStatus + "." + requestID
}

// ResultSubject returns the per-request result subject.
func ResultSubject(requestID string) string {
	return SubjectTranslateResult + "." + requestID
}
