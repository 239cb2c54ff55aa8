package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/vaanilabs/vaani-core/internal/bus"
	"github.com/vaanilabs/vaani-core/internal/config"
	"github.com/vaanilabs/vaani-core/internal/media"
	"github.com/vaanilabs/vaani-core/internal/pipeline"
	"github.com/vaanilabs/vaani-core/internal/protocol"
)

// Service is the interactive surface on the bus. It consumes translate
// requests, publishes per-stage status updates while the pipeline runs,
// and publishes a terminal result for every request it accepts.
type Service struct {
	cfg    config.GatewayConfig
	bus    *bus.Client
	orch   *pipeline.Orchestrator
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	sub    *nats.Subscription
	slots  chan struct{}
	wg     sync.WaitGroup
	ready  bool
}

func NewService(parent context.Context, cfg config.GatewayConfig, busClient *bus.Client,
	orch *pipeline.Orchestrator, logger *slog.Logger) *Service {
	ctx, cancel := context.WithCancel(parent)
	max := cfg.MaxConcurrent
	if max <= 0 {
		max = 1
	}
	return &Service{
		cfg:    cfg,
		bus:    busClient,
		orch:   orch,
		logger: logger.With(slog.String("component", "gateway")),
		ctx:    ctx,
		cancel: cancel,
		slots:  make(chan struct{}, max),
	}
}

func (s *Service) Start() error {
	if !s.cfg.Enabled {
		return nil
	}
	sub, err := s.bus.Conn().Subscribe(protocol.SubjectTranslateRequest, s.handleRequest)
	if err != nil {
		return fmt.Errorf("subscribe translate requests: %w", err)
	}
	s.sub = sub
	s.ready = true
	s.logger.Info("gateway listening", slog.String("subject", protocol.SubjectTranslateRequest))
	return nil
}

func (s *Service) Close() {
	s.cancel()
	if s.sub != nil {
		_ = s.sub.Drain()
	}
	s.wg.Wait()
}

func (s *Service) Healthy() bool {
	return !s.cfg.Enabled || s.ready
}

func (s *Service) handleRequest(msg *nats.Msg) {
	var req protocol.TranslateRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		s.logger.Warn("failed to decode translate request", slog.String("error", err.Error()))
		return
	}

	select {
	case s.slots <- struct{}{}:
	case <-s.ctx.Done():
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() { <-s.slots }()
		s.process(req, msg.Reply)
	}()
}

func (s *Service) process(req protocol.TranslateRequest, reply string) {
	// Assign the id here so status and result subjects agree even when
	// the caller left it blank.
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	run := pipeline.Request{
		ID:         req.RequestID,
		SourceLang: req.SourceLang,
		TargetLang: req.TargetLang,
		Kind:       media.Kind(req.MediaKind),
		Media:      req.Media,
	}

	result, err := s.orch.Run(s.ctx, run, func(ev pipeline.StatusEvent) {
		s.publishStatus(ev)
	})

	s.publishResult(terminalResult(run.ID, result, err), reply)
}

// terminalResult flattens a pipeline outcome into the single wire message
// every caller receives last.
func terminalResult(requestID string, result *pipeline.Result, err error) protocol.TranslateResult {
	if err != nil {
		return protocol.TranslateResult{
			RequestID:    requestID,
			ErrorMessage: err.Error(),
		}
	}
	out := protocol.TranslateResult{
		RequestID:      result.RequestID,
		OriginalText:   result.OriginalText,
		TranslatedText: result.TranslatedText,
		SpeechError:    result.SpeechError,
	}
	if len(result.Audio) > 0 {
		out.AudioBase64 = base64.StdEncoding.EncodeToString(result.Audio)
	}
	return out
}

func (s *Service) publishStatus(ev pipeline.StatusEvent) {
	update := protocol.StatusUpdate{
		RequestID: ev.RequestID,
		Stage:     ev.Stage,
		State:     ev.State,
		Detail:    ev.Detail,
		Timestamp: ev.Timestamp,
	}
	payload, err := json.Marshal(update)
	if err != nil {
		return
	}
	if err := s.bus.Conn().Publish(protocol.StatusSubject(ev.RequestID), payload); err != nil {
		s.logger.Warn("failed to publish status",
			slog.String("request_id", ev.RequestID),
			slog.String("error", err.Error()))
	}
}

func (s *Service) publishResult(result protocol.TranslateResult, reply string) {
	payload, err := json.Marshal(result)
	if err != nil {
		s.logger.Error("failed to encode result",
			slog.String("request_id", result.RequestID),
			slog.String("error", err.Error()))
		return
	}
	subject := protocol.ResultSubject(result.RequestID)
	if reply != "" {
		subject = reply
	}
	if err := s.bus.Conn().Publish(subject, payload); err != nil {
		s.logger.Error("failed to publish result",
			slog.String("request_id", result.RequestID),
			slog.String("error", err.Error()))
	}
}
