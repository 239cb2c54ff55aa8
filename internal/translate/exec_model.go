package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"sync"

	"github.com/mattn/go-shellwords"

	"github.com/vaanilabs/vaani-core/internal/config"
)

// execModel shells out to a translation bridge process, one invocation per
// operation. The bridge reads a JSON request on stdin and writes a JSON
// response on stdout; it is expected to keep its converted model cached on
// disk between invocations. Access is serialized per handle.
type execModel struct {
	cmd       []string
	modelPath string
	mu        sync.Mutex
}

type execModelRequest struct {
	Op           string   `json:"op"`
	Text         string   `json:"text,omitempty"`
	SourceTag    string   `json:"source_tag,omitempty"`
	Tokens       []string `json:"tokens,omitempty"`
	TargetPrefix string   `json:"target_prefix,omitempty"`
	ModelPath    string   `json:"model_path,omitempty"`
}

type execModelResponse struct {
	Tokens     []string   `json:"tokens,omitempty"`
	Hypotheses [][]string `json:"hypotheses,omitempty"`
	Text       string     `json:"text,omitempty"`
	Error      string     `json:"error,omitempty"`
}

func NewExecModel(cfg config.TranslateConfig) (Model, error) {
	parser := shellwords.NewParser()
	args, err := parser.Parse(cfg.Command)
	if err != nil {
		return nil, fmt.Errorf("parse translate command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("translate command is empty")
	}
	return &execModel{cmd: args, modelPath: cfg.ModelPath}, nil
}

func (m *execModel) Encode(ctx context.Context, text, sourceTag string) ([]string, error) {
	resp, err := m.invoke(ctx, execModelRequest{Op: "encode", Text: text, SourceTag: sourceTag})
	if err != nil {
		return nil, err
	}
	return resp.Tokens, nil
}

func (m *execModel) Generate(ctx context.Context, tokens []string, targetPrefix string) ([][]string, error) {
	resp, err := m.invoke(ctx, execModelRequest{Op: "generate", Tokens: tokens, TargetPrefix: targetPrefix})
	if err != nil {
		return nil, err
	}
	return resp.Hypotheses, nil
}

func (m *execModel) Decode(ctx context.Context, tokens []string) (string, error) {
	resp, err := m.invoke(ctx, execModelRequest{Op: "decode", Tokens: tokens})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

func (m *execModel) invoke(ctx context.Context, req execModelRequest) (execModelResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	req.ModelPath = m.modelPath
	payload, err := json.Marshal(req)
	if err != nil {
		return execModelResponse{}, err
	}

	command := exec.CommandContext(ctx, m.cmd[0], m.cmd[1:]...)
	command.Stdin = bytes.NewReader(payload)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		return execModelResponse{}, fmt.Errorf("translate command failed: %w: %s", err, stderr.String())
	}

	var resp execModelResponse
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return execModelResponse{}, fmt.Errorf("decode translate response: %w", err)
	}
	if resp.Error != "" {
		return execModelResponse{}, fmt.Errorf("translate bridge: %s", resp.Error)
	}
	return resp, nil
}
