package pipeline

import (
	"errors"
	"fmt"

	"github.com/vaanilabs/vaani-core/internal/languages"
	"github.com/vaanilabs/vaani-core/internal/media"
	"github.com/vaanilabs/vaani-core/internal/translate"
	"github.com/vaanilabs/vaani-core/internal/tts"
)

// EmptySpeechError is the terminal "no speech detected" outcome. It carries
// the media kind so callers can word the message per input type.
type EmptySpeechError struct {
	Kind media.Kind
}

func (e *EmptySpeechError) Error() string {
	if e.Kind == media.KindVideo {
		return "no speech detected in video"
	}
	return "no speech detected"
}

// UnexpectedError is the boundary catch of last resort: anything not covered
// by the specific terminal outcomes.
type UnexpectedError struct {
	Err error
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("unexpected failure: %v", e.Err)
}

func (e *UnexpectedError) Unwrap() error {
	return e.Err
}

// Class separates faults the caller can fix from faults on our side.
type Class int

const (
	ClassClient Class = iota
	ClassServer
)

// Classify maps a pipeline error onto its fault class.
func Classify(err error) Class {
	var unknownLang *languages.UnknownLanguageError
	var noTrack *media.NoAudioTrackError
	var emptySpeech *EmptySpeechError
	if errors.As(err, &unknownLang) || errors.As(err, &noTrack) || errors.As(err, &emptySpeech) {
		return ClassClient
	}
	return ClassServer
}

// Outcome names the terminal state a request reached, used for journaling
// and metrics.
func Outcome(result *Result, err error) string {
	if err == nil {
		if result != nil && result.SpeechError != "" {
			return "synthesis_degraded"
		}
		return "complete"
	}
	var unknownLang *languages.UnknownLanguageError
	var noTrack *media.NoAudioTrackError
	var emptySpeech *EmptySpeechError
	var translateErr *translate.Error
	var synthErr *tts.Error
	switch {
	case errors.As(err, &unknownLang):
		return "invalid_language"
	case errors.As(err, &noTrack):
		return "no_audio_track"
	case errors.As(err, &emptySpeech):
		return "empty_speech"
	case errors.As(err, &translateErr):
		return "translation_failed"
	case errors.As(err, &synthErr):
		return "synthesis_failed"
	default:
		return "unexpected_error"
	}
}
