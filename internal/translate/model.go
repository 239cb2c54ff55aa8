package translate

import "context"

// Model is a token-level interface over a multilingual translation runtime.
// The source tag influences how text is tokenized; the target language is not
// an input here — it is forced by the stage as a decoding prefix.
type Model interface {
	// Encode tokenizes text under the given source-language tag.
	Encode(ctx context.Context, text, sourceTag string) ([]string, error)
	// Generate translates the token sequence, constraining the first output
	// token to targetPrefix. Hypotheses are ordered best first.
	Generate(ctx context.Context, tokens []string, targetPrefix string) ([][]string, error)
	// Decode converts output tokens back to plain text.
	Decode(ctx context.Context, tokens []string) (string, error)
}
