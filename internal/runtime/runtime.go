package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vaanilabs/vaani-core/internal/bus"
	"github.com/vaanilabs/vaani-core/internal/config"
	"github.com/vaanilabs/vaani-core/internal/gateway"
	"github.com/vaanilabs/vaani-core/internal/journal"
	"github.com/vaanilabs/vaani-core/internal/languages"
	"github.com/vaanilabs/vaani-core/internal/media"
	"github.com/vaanilabs/vaani-core/internal/natsserver"
	"github.com/vaanilabs/vaani-core/internal/pipeline"
	"github.com/vaanilabs/vaani-core/internal/server"
	"github.com/vaanilabs/vaani-core/internal/stt"
	"github.com/vaanilabs/vaani-core/internal/translate"
	"github.com/vaanilabs/vaani-core/internal/tts"
)

// Runtime owns process lifecycle: telemetry, the optional embedded broker,
// the pipeline, and every serving surface. Start blocks until the context
// is cancelled, then tears everything down in reverse order.
type Runtime struct {
	cfg         config.Config
	logger      *slog.Logger
	httpServer  *http.Server
	metricsSrv  *http.Server
	tracerClose func(context.Context) error
	ready       atomic.Bool
	wg          sync.WaitGroup
}

func New(cfg config.Config, logger *slog.Logger) *Runtime {
	return &Runtime{
		cfg:    cfg,
		logger: logger,
	}
}

func (r *Runtime) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	shutdownTelemetry, metricHandler, err := setupTelemetry(r.cfg, r.logger)
	if err != nil {
		return fmt.Errorf("failed to setup telemetry: %w", err)
	}
	r.tracerClose = shutdownTelemetry

	embedded, err := natsserver.Start(r.cfg.Bus, r.logger)
	if err != nil {
		return fmt.Errorf("failed to start embedded broker: %w", err)
	}
	defer embedded.Shutdown()

	store, err := journal.Open(ctx, r.cfg.Journal, r.logger)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer store.Close()
	if err := store.Prune(ctx); err != nil {
		r.logger.Warn("journal prune failed", slog.String("error", err.Error()))
	}

	orch, err := r.buildPipeline(store)
	if err != nil {
		return err
	}

	var gw *gateway.Service
	var busClient *bus.Client
	if r.cfg.Gateway.Enabled {
		busClient, err = bus.Connect(ctx, r.cfg.Bus, r.logger)
		if err != nil {
			return fmt.Errorf("failed to connect to bus: %w", err)
		}
		defer busClient.Close()

		gw = gateway.NewService(ctx, r.cfg.Gateway, busClient, orch, r.logger)
		if err := gw.Start(); err != nil {
			return fmt.Errorf("failed to start gateway: %w", err)
		}
		defer gw.Close()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", r.handleHealth)
	mux.HandleFunc("/readyz", r.handleReady)
	server.NewAPI(r.cfg.HTTP, orch, store, r.logger).Routes(mux)

	r.startMetricsServer(metricHandler, mux)

	addr := fmt.Sprintf("%s:%d", r.cfg.HTTP.Bind, r.cfg.HTTP.Port)
	r.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := r.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			r.logger.Error("http server failed", slog.String("error", err.Error()))
		}
	}()

	r.ready.Store(true)
	r.logger.Info("runtime started", slog.String("addr", addr))

	<-ctx.Done()
	r.ready.Store(false)
	r.logger.Info("runtime stopping")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := r.httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Error("http shutdown error", slog.String("error", err.Error()))
	}
	if r.metricsSrv != nil {
		if err := r.metricsSrv.Shutdown(shutdownCtx); err != nil {
			r.logger.Error("metrics shutdown error", slog.String("error", err.Error()))
		}
	}
	r.wg.Wait()

	if r.tracerClose != nil {
		if err := r.tracerClose(shutdownCtx); err != nil {
			r.logger.Error("telemetry shutdown error", slog.String("error", err.Error()))
		}
	}

	return nil
}

func (r *Runtime) buildPipeline(store *journal.Store) (*pipeline.Orchestrator, error) {
	recognizer, err := buildRecognizer(r.cfg.STT)
	if err != nil {
		return nil, fmt.Errorf("failed to build recognizer: %w", err)
	}
	model, err := buildTranslationModel(r.cfg.Translate)
	if err != nil {
		return nil, fmt.Errorf("failed to build translation model: %w", err)
	}
	synth, err := buildSynthesizer(r.cfg.TTS)
	if err != nil {
		return nil, fmt.Errorf("failed to build synthesizer: %w", err)
	}

	return pipeline.New(
		languages.Default(),
		media.NewFFmpegExtractor(r.cfg.Media),
		stt.NewStage(recognizer),
		translate.NewStage(model),
		tts.NewStage(synth, r.cfg.TTS),
		store,
		r.logger,
	), nil
}

// startMetricsServer exposes /metrics on its own listener when configured,
// otherwise on the main mux.
func (r *Runtime) startMetricsServer(handler http.Handler, mux *http.ServeMux) {
	if handler == nil {
		return
	}
	bind := r.cfg.Telemetry.PrometheusBind
	if bind == "" {
		mux.Handle("/metrics", handler)
		return
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", handler)
	r.metricsSrv = &http.Server{
		Addr:              bind,
		Handler:           metricsMux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := r.metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			r.logger.Error("metrics server failed", slog.String("error", err.Error()))
		}
	}()
	r.logger.Info("metrics listening", slog.String("addr", bind))
}

func (r *Runtime) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (r *Runtime) handleReady(w http.ResponseWriter, _ *http.Request) {
	if r.ready.Load() {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
		return
	}
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = w.Write([]byte("not ready"))
}
