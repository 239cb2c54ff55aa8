package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/vaanilabs/vaani-core/internal/journal"
	"github.com/vaanilabs/vaani-core/internal/languages"
	"github.com/vaanilabs/vaani-core/internal/media"
	"github.com/vaanilabs/vaani-core/internal/stt"
	"github.com/vaanilabs/vaani-core/internal/translate"
	"github.com/vaanilabs/vaani-core/internal/tts"
)

// Request is one unit of pipeline work.
type Request struct {
	ID         string
	SourceLang string
	TargetLang string
	Kind       media.Kind
	Media      []byte
}

// Result is the unit returned to any caller. Constructed once, never
// mutated afterwards. SpeechError is set when synthesis failed but the text
// results are still usable.
type Result struct {
	RequestID      string
	OriginalText   string
	TranslatedText string
	Audio          []byte
	SpeechError    string
}

// StatusEvent reports stage progress for interactive callers.
type StatusEvent struct {
	RequestID string    `json:"request_id"`
	Stage     string    `json:"stage"`
	State     string    `json:"state"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	StageResolving    = "resolving"
	StageIngesting    = "ingesting"
	StageTranscribing = "transcribing"
	StageTranslating  = "translating"
	StageSynthesizing = "synthesizing"

	StateStarted   = "started"
	StateCompleted = "completed"
	StateFailed    = "failed"
)

// Orchestrator sequences the three stages for a single request. Stages run
// strictly sequentially; each stage's output feeds the next. Model handles
// are shared across requests and guard their own reentrancy.
type Orchestrator struct {
	registry   *languages.Registry
	extractor  media.Extractor
	transcribe *stt.Stage
	translator *translate.Stage
	synth      *tts.Stage
	store      *journal.Store
	logger     *slog.Logger

	requests      metric.Int64Counter
	stageDuration metric.Float64Histogram
}

func New(registry *languages.Registry, extractor media.Extractor, transcribe *stt.Stage,
	translator *translate.Stage, synth *tts.Stage, store *journal.Store, logger *slog.Logger) *Orchestrator {
	o := &Orchestrator{
		registry:   registry,
		extractor:  extractor,
		transcribe: transcribe,
		translator: translator,
		synth:      synth,
		store:      store,
		logger:     logger.With(slog.String("component", "pipeline")),
	}

	meter := otel.Meter("github.com/vaanilabs/vaani-core/pipeline")
	if counter, err := meter.Int64Counter("vaani.pipeline.requests",
		metric.WithDescription("Pipeline requests by terminal outcome")); err == nil {
		o.requests = counter
	}
	if hist, err := meter.Float64Histogram("vaani.pipeline.stage_duration_seconds",
		metric.WithDescription("Per-stage latency")); err == nil {
		o.stageDuration = hist
	}
	return o
}

// Run drives one request to a terminal state. The optional emit callback
// receives stage progress; pass nil when nobody is watching. Panics anywhere
// below are converted into UnexpectedError here and nowhere else.
func (o *Orchestrator) Run(ctx context.Context, req Request, emit func(StatusEvent)) (result *Result, err error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("pipeline panic",
				slog.String("request_id", req.ID),
				slog.Any("panic", r))
			result = nil
			err = &UnexpectedError{Err: fmt.Errorf("%v", r)}
		}
		outcome := Outcome(result, err)
		o.count(ctx, outcome)
		o.journalize(ctx, req, result, outcome, time.Since(start))
	}()

	o.emit(emit, req.ID, StageResolving, StateStarted, "")
	source, rerr := o.registry.Resolve(req.SourceLang)
	if rerr != nil {
		o.emit(emit, req.ID, StageResolving, StateFailed, rerr.Error())
		return nil, rerr
	}
	target, rerr := o.registry.Resolve(req.TargetLang)
	if rerr != nil {
		o.emit(emit, req.ID, StageResolving, StateFailed, rerr.Error())
		return nil, rerr
	}
	o.emit(emit, req.ID, StageResolving, StateCompleted, "")

	o.emit(emit, req.ID, StageIngesting, StateStarted, string(req.Kind))
	audio, xerr := o.extractor.ExtractAudio(ctx, req.Media, req.Kind)
	if xerr != nil {
		o.emit(emit, req.ID, StageIngesting, StateFailed, xerr.Error())
		return nil, xerr
	}
	o.emit(emit, req.ID, StageIngesting, StateCompleted, "")

	o.emit(emit, req.ID, StageTranscribing, StateStarted, req.SourceLang)
	stageStart := time.Now()
	transcript, terr := o.transcribe.Transcribe(ctx, audio)
	o.observe(ctx, StageTranscribing, time.Since(stageStart))
	if terr != nil {
		o.emit(emit, req.ID, StageTranscribing, StateFailed, terr.Error())
		return nil, &UnexpectedError{Err: terr}
	}
	if transcript.Empty() {
		emptyErr := &EmptySpeechError{Kind: req.Kind}
		o.emit(emit, req.ID, StageTranscribing, StateFailed, emptyErr.Error())
		return nil, emptyErr
	}
	o.emit(emit, req.ID, StageTranscribing, StateCompleted, transcript.Text)

	o.emit(emit, req.ID, StageTranslating, StateStarted, req.TargetLang)
	stageStart = time.Now()
	translated, trerr := o.translator.Translate(ctx, transcript.Text, source.TranslationTag, target.TranslationTag)
	o.observe(ctx, StageTranslating, time.Since(stageStart))
	if trerr != nil {
		o.emit(emit, req.ID, StageTranslating, StateFailed, trerr.Error())
		return nil, trerr
	}
	o.emit(emit, req.ID, StageTranslating, StateCompleted, translated.Text)

	o.emit(emit, req.ID, StageSynthesizing, StateStarted, target.VoiceID)
	stageStart = time.Now()
	speech, serr := o.synth.Synthesize(ctx, translated.Text, target.VoiceID)
	o.observe(ctx, StageSynthesizing, time.Since(stageStart))
	if serr != nil {
		// Degraded completion: the texts are already computed and still
		// useful, so a synthesis failure does not void the request.
		o.logger.Warn("speech generation failed",
			slog.String("request_id", req.ID),
			slog.String("error", serr.Error()))
		o.emit(emit, req.ID, StageSynthesizing, StateFailed, serr.Error())
		return &Result{
			RequestID:      req.ID,
			OriginalText:   transcript.Text,
			TranslatedText: translated.Text,
			SpeechError:    serr.Error(),
		}, nil
	}
	o.emit(emit, req.ID, StageSynthesizing, StateCompleted, "")

	o.logger.Info("pipeline complete",
		slog.String("request_id", req.ID),
		slog.String("source", req.SourceLang),
		slog.String("target", req.TargetLang),
		slog.Duration("latency", time.Since(start)))

	return &Result{
		RequestID:      req.ID,
		OriginalText:   transcript.Text,
		TranslatedText: translated.Text,
		Audio:          speech.Audio,
	}, nil
}

// Languages lists the registered display names in order.
func (o *Orchestrator) Languages() []string {
	return o.registry.Names()
}

func (o *Orchestrator) emit(emit func(StatusEvent), requestID, stage, state, detail string) {
	if emit == nil {
		return
	}
	emit(StatusEvent{
		RequestID: requestID,
		Stage:     stage,
		State:     state,
		Detail:    detail,
		Timestamp: time.Now().UTC(),
	})
}

func (o *Orchestrator) observe(ctx context.Context, stage string, elapsed time.Duration) {
	if o.stageDuration == nil {
		return
	}
	o.stageDuration.Record(ctx, elapsed.Seconds(),
		metric.WithAttributes(attribute.String("stage", stage)))
}

func (o *Orchestrator) count(ctx context.Context, outcome string) {
	if o.requests == nil {
		return
	}
	o.requests.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (o *Orchestrator) journalize(ctx context.Context, req Request, result *Result, outcome string, elapsed time.Duration) {
	entry := journal.Entry{
		RequestID:  req.ID,
		SourceLang: req.SourceLang,
		TargetLang: req.TargetLang,
		MediaKind:  string(req.Kind),
		Outcome:    outcome,
		DurationMS: elapsed.Milliseconds(),
	}
	if result != nil {
		entry.OriginalText = result.OriginalText
		entry.TranslatedText = result.TranslatedText
		entry.AudioBytes = len(result.Audio)
	}
	if err := o.store.Record(ctx, entry); err != nil {
		o.logger.Warn("journal write failed",
			slog.String("request_id", req.ID),
			slog.String("error", err.Error()))
	}
}
