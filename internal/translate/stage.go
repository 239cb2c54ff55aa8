package translate

import (
	"context"
	"fmt"
)

// Error wraps any model-level failure so callers can tell translation faults
// apart from the rest of the pipeline.
type Error struct {
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("translation failed: %v", e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Result is the user-facing translated text. It never contains the target
// language tag; the tag is control metadata of the decoding protocol.
type Result struct {
	Text string
}

// Stage drives the source/target tagging protocol over a Model.
type Stage struct {
	model Model
}

func NewStage(model Model) *Stage {
	return &Stage{model: model}
}

// Translate encodes text under sourceTag, generates with targetTag forced as
// the first output token, strips the tag from the winning hypothesis, and
// decodes the remainder. The text must be non-empty.
func (s *Stage) Translate(ctx context.Context, text, sourceTag, targetTag string) (Result, error) {
	if text == "" {
		return Result{}, &Error{Err: fmt.Errorf("empty input text")}
	}

	tokens, err := s.model.Encode(ctx, text, sourceTag)
	if err != nil {
		return Result{}, &Error{Err: fmt.Errorf("encode: %w", err)}
	}
	if len(tokens) == 0 {
		return Result{}, &Error{Err: fmt.Errorf("encoder produced no tokens")}
	}

	hypotheses, err := s.model.Generate(ctx, tokens, targetTag)
	if err != nil {
		return Result{}, &Error{Err: fmt.Errorf("generate: %w", err)}
	}
	if len(hypotheses) == 0 {
		return Result{}, &Error{Err: fmt.Errorf("model produced no hypotheses")}
	}

	// Best hypothesis only; no n-best re-ranking. Some runtimes echo the
	// forced prefix back, some do not — drop every occurrence either way.
	best := hypotheses[0]
	cleaned := make([]string, 0, len(best))
	for _, token := range best {
		if token == targetTag {
			continue
		}
		cleaned = append(cleaned, token)
	}

	out, err := s.model.Decode(ctx, cleaned)
	if err != nil {
		return Result{}, &Error{Err: fmt.Errorf("decode: %w", err)}
	}
	return Result{Text: out}, nil
}
