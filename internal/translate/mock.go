package translate

import (
	"context"
	"strings"
)

// mockModel is a deterministic stand-in: it "translates" by echoing the input
// tokens behind the forced target prefix, the way real runtimes echo the tag.
type mockModel struct{}

func NewMockModel() Model {
	return &mockModel{}
}

func (m *mockModel) Encode(_ context.Context, text, sourceTag string) ([]string, error) {
	return append([]string{sourceTag}, strings.Fields(text)...), nil
}

func (m *mockModel) Generate(_ context.Context, tokens []string, targetPrefix string) ([][]string, error) {
	out := make([]string, 0, len(tokens)+1)
	out = append(out, targetPrefix)
	for _, token := range tokens {
		if strings.Contains(token, "_") && len(token) == 8 {
			// skip language tags carried in from encoding
			continue
		}
		out = append(out, token)
	}
	return [][]string{out}, nil
}

func (m *mockModel) Decode(_ context.Context, tokens []string) (string, error) {
	return strings.Join(tokens, " "), nil
}
