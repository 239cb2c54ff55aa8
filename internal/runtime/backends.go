package runtime

import (
	"fmt"

	"github.com/vaanilabs/vaani-core/internal/config"
	"github.com/vaanilabs/vaani-core/internal/stt"
	"github.com/vaanilabs/vaani-core/internal/translate"
	"github.com/vaanilabs/vaani-core/internal/tts"
)

// Backend construction is isolated here so the runtime wiring reads as a
// straight list of mode switches. Config validation has already rejected
// unknown modes; the defaults below are unreachable in practice.

func buildRecognizer(cfg config.STTConfig) (stt.Recognizer, error) {
	switch cfg.Mode {
	case "exec":
		return stt.NewExecRecognizer(cfg)
	case "mock":
		return stt.NewMockRecognizer(), nil
	default:
		return nil, fmt.Errorf("unknown stt mode %q", cfg.Mode)
	}
}

func buildTranslationModel(cfg config.TranslateConfig) (translate.Model, error) {
	switch cfg.Mode {
	case "exec":
		return translate.NewExecModel(cfg)
	case "mock":
		return translate.NewMockModel(), nil
	default:
		return nil, fmt.Errorf("unknown translate mode %q", cfg.Mode)
	}
}

func buildSynthesizer(cfg config.TTSConfig) (tts.Synthesizer, error) {
	switch cfg.Mode {
	case "exec":
		return tts.NewExecSynth(cfg)
	case "http":
		return tts.NewHTTPSynth(cfg), nil
	case "mock":
		return tts.NewMockSynth(), nil
	default:
		return nil, fmt.Errorf("unknown tts mode %q", cfg.Mode)
	}
}
