package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type TelemetryConfig struct {
	LogLevel       string `yaml:"log_level"`
	LogFile        string `yaml:"log_file"`
	LogMaxSizeMB   int    `yaml:"log_max_size_mb"`
	LogMaxBackups  int    `yaml:"log_max_backups"`
	OTLPEndpoint   string `yaml:"otlp_endpoint"`
	OTLPInsecure   bool   `yaml:"otlp_insecure"`
	PrometheusBind string `yaml:"prometheus_bind"`
}

type HTTPConfig struct {
	Bind           string   `yaml:"bind"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxUploadMB    int      `yaml:"max_upload_mb"`
}

type Config struct {
	ServiceName string          `yaml:"service_name"`
	Environment string          `yaml:"environment"`
	HTTP        HTTPConfig      `yaml:"http"`
	Telemetry   TelemetryConfig `yaml:"telemetry"`
	Bus         BusConfig       `yaml:"bus"`
	Gateway     GatewayConfig   `yaml:"gateway"`
	Journal     JournalConfig   `yaml:"journal"`
	STT         STTConfig       `yaml:"stt"`
	Translate   TranslateConfig `yaml:"translate"`
	TTS         TTSConfig       `yaml:"tts"`
	Media       MediaConfig     `yaml:"media"`
}

type BusConfig struct {
	Embedded       bool     `yaml:"embedded"`
	Port           int      `yaml:"port"`
	StoreDir       string   `yaml:"store_dir"`
	Servers        []string `yaml:"servers"`
	Username       string   `yaml:"username"`
	Password       string   `yaml:"password"`
	Token          string   `yaml:"token"`
	TLSInsecure    bool     `yaml:"tls_insecure"`
	ConnectTimeout int      `yaml:"connect_timeout_ms"`
}

type GatewayConfig struct {
	Enabled       bool `yaml:"enabled"`
	MaxConcurrent int  `yaml:"max_concurrent"`
}

type JournalConfig struct {
	Path          string `yaml:"path"`
	RetentionMode string `yaml:"retention_mode"`
	RetentionDays int    `yaml:"retention_days"`
	MaxRequests   int    `yaml:"max_requests"`
	VacuumOnStart bool   `yaml:"vacuum_on_start"`
}

type STTConfig struct {
	Mode      string `yaml:"mode"`
	Command   string `yaml:"command"`
	ModelPath string `yaml:"model_path"`
	BeamSize  int    `yaml:"beam_size"`
}

type TranslateConfig struct {
	Mode      string `yaml:"mode"`
	Command   string `yaml:"command"`
	ModelPath string `yaml:"model_path"`
}

type TTSConfig struct {
	Mode       string `yaml:"mode"`
	Command    string `yaml:"command"`
	Endpoint   string `yaml:"endpoint"`
	Container  string `yaml:"container"`
	SampleRate int    `yaml:"sample_rate"`
	Channels   int    `yaml:"channels"`
	TimeoutMS  int    `yaml:"timeout_ms"`
}

type MediaConfig struct {
	FFmpegPath  string `yaml:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path"`
	SampleRate  int    `yaml:"sample_rate"`
	Channels    int    `yaml:"channels"`
	TempDir     string `yaml:"temp_dir"`
}

func Default() Config {
	return Config{
		ServiceName: "vaani",
		Environment: "development",
		HTTP: HTTPConfig{
			Bind:        "0.0.0.0",
			Port:        8080,
			MaxUploadMB: 64,
		},
		Telemetry: TelemetryConfig{
			LogLevel:       "info",
			LogMaxSizeMB:   100,
			LogMaxBackups:  3,
			OTLPEndpoint:   "",
			OTLPInsecure:   true,
			PrometheusBind: ":9091",
		},
		Bus: BusConfig{
			Embedded:       true,
			Port:           4222,
			StoreDir:       "./data/nats",
			Servers:        []string{"nats://localhost:4222"},
			ConnectTimeout: 2000,
		},
		Gateway: GatewayConfig{
			Enabled:       true,
			MaxConcurrent: 2,
		},
		Journal: JournalConfig{
			Path:          "./data/vaani-requests.db",
			RetentionMode: "ephemeral",
			RetentionDays: 30,
			MaxRequests:   10000,
		},
		STT: STTConfig{
			Mode:     "mock",
			BeamSize: 5,
		},
		Translate: TranslateConfig{
			Mode: "mock",
		},
		TTS: TTSConfig{
			Mode:       "mock",
			Container:  "wav",
			SampleRate: 24000,
			Channels:   1,
			TimeoutMS:  45000,
		},
		Media: MediaConfig{
			FFmpegPath:  "ffmpeg",
			FFprobePath: "ffprobe",
			SampleRate:  16000,
			Channels:    1,
		},
	}
}

func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return cfg, fmt.Errorf("config file not found: %w", err)
			}
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	overrideString(&cfg.ServiceName, "VAANI_SERVICE_NAME")
	overrideString(&cfg.Environment, "VAANI_ENVIRONMENT")
	overrideString(&cfg.HTTP.Bind, "VAANI_HTTP_BIND")
	overrideInt(&cfg.HTTP.Port, "VAANI_HTTP_PORT")
	overrideStringSlice(&cfg.HTTP.AllowedOrigins, "VAANI_HTTP_ALLOWED_ORIGINS")
	overrideInt(&cfg.HTTP.MaxUploadMB, "VAANI_HTTP_MAX_UPLOAD_MB")
	overrideString(&cfg.Telemetry.LogLevel, "VAANI_TELEMETRY_LOG_LEVEL")
	overrideString(&cfg.Telemetry.LogFile, "VAANI_TELEMETRY_LOG_FILE")
	overrideInt(&cfg.Telemetry.LogMaxSizeMB, "VAANI_TELEMETRY_LOG_MAX_SIZE_MB")
	overrideInt(&cfg.Telemetry.LogMaxBackups, "VAANI_TELEMETRY_LOG_MAX_BACKUPS")
	overrideString(&cfg.Telemetry.OTLPEndpoint, "VAANI_TELEMETRY_OTLP_ENDPOINT")
	overrideBool(&cfg.Telemetry.OTLPInsecure, "VAANI_TELEMETRY_OTLP_INSECURE")
	overrideString(&cfg.Telemetry.PrometheusBind, "VAANI_TELEMETRY_PROMETHEUS_BIND")
	overrideBool(&cfg.Bus.Embedded, "VAANI_BUS_EMBEDDED")
	overrideInt(&cfg.Bus.Port, "VAANI_BUS_PORT")
	overrideString(&cfg.Bus.StoreDir, "VAANI_BUS_STORE_DIR")
	overrideStringSlice(&cfg.Bus.Servers, "VAANI_BUS_SERVERS")
	overrideString(&cfg.Bus.Username, "VAANI_BUS_USERNAME")
	overrideString(&cfg.Bus.Password, "VAANI_BUS_PASSWORD")
	overrideString(&cfg.Bus.Token, "VAANI_BUS_TOKEN")
	overrideBool(&cfg.Bus.TLSInsecure, "VAANI_BUS_TLS_INSECURE")
	overrideInt(&cfg.Bus.ConnectTimeout, "VAANI_BUS_CONNECT_TIMEOUT_MS")
	overrideBool(&cfg.Gateway.Enabled, "VAANI_GATEWAY_ENABLED")
	overrideInt(&cfg.Gateway.MaxConcurrent, "VAANI_GATEWAY_MAX_CONCURRENT")
	overrideString(&cfg.Journal.Path, "VAANI_JOURNAL_PATH")
	overrideString(&cfg.Journal.RetentionMode, "VAANI_JOURNAL_RETENTION_MODE")
	overrideInt(&cfg.Journal.RetentionDays, "VAANI_JOURNAL_RETENTION_DAYS")
	overrideInt(&cfg.Journal.MaxRequests, "VAANI_JOURNAL_MAX_REQUESTS")
	overrideBool(&cfg.Journal.VacuumOnStart, "VAANI_JOURNAL_VACUUM_ON_START")
	overrideString(&cfg.STT.Mode, "VAANI_STT_MODE")
	overrideString(&cfg.STT.Command, "VAANI_STT_COMMAND")
	overrideString(&cfg.STT.ModelPath, "VAANI_STT_MODEL_PATH")
	overrideInt(&cfg.STT.BeamSize, "VAANI_STT_BEAM_SIZE")
	overrideString(&cfg.Translate.Mode, "VAANI_TRANSLATE_MODE")
	overrideString(&cfg.Translate.Command, "VAANI_TRANSLATE_COMMAND")
	overrideString(&cfg.Translate.ModelPath, "VAANI_TRANSLATE_MODEL_PATH")
	overrideString(&cfg.TTS.Mode, "VAANI_TTS_MODE")
	overrideString(&cfg.TTS.Command, "VAANI_TTS_COMMAND")
	overrideString(&cfg.TTS.Endpoint, "VAANI_TTS_ENDPOINT")
	overrideString(&cfg.TTS.Container, "VAANI_TTS_CONTAINER")
	overrideInt(&cfg.TTS.SampleRate, "VAANI_TTS_SAMPLE_RATE")
	overrideInt(&cfg.TTS.Channels, "VAANI_TTS_CHANNELS")
	overrideInt(&cfg.TTS.TimeoutMS, "VAANI_TTS_TIMEOUT_MS")
	overrideString(&cfg.Media.FFmpegPath, "VAANI_MEDIA_FFMPEG_PATH")
	overrideString(&cfg.Media.FFprobePath, "VAANI_MEDIA_FFPROBE_PATH")
	overrideInt(&cfg.Media.SampleRate, "VAANI_MEDIA_SAMPLE_RATE")
	overrideInt(&cfg.Media.Channels, "VAANI_MEDIA_CHANNELS")
	overrideString(&cfg.Media.TempDir, "VAANI_MEDIA_TEMP_DIR")
}

func overrideString(target *string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok && strings.TrimSpace(value) != "" {
		*target = value
	}
}

func overrideInt(target *int, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			*target = parsed
		}
	}
}

func overrideBool(target *bool, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			*target = parsed
		}
	}
}

func overrideStringSlice(target *[]string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		parts := strings.Split(value, ",")
		var trimmed []string
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				trimmed = append(trimmed, s)
			}
		}
		if len(trimmed) > 0 {
			*target = trimmed
		}
	}
}

func validate(cfg Config) error {
	if cfg.ServiceName == "" {
		return errors.New("service_name must not be empty")
	}
	if cfg.HTTP.Port <= 0 || cfg.HTTP.Port > 65535 {
		return errors.New("http.port must be between 1 and 65535")
	}
	if cfg.HTTP.MaxUploadMB <= 0 {
		return errors.New("http.max_upload_mb must be positive")
	}
	if cfg.Telemetry.PrometheusBind == "" {
		return errors.New("telemetry.prometheus_bind must not be empty")
	}
	if cfg.Gateway.Enabled {
		if cfg.Bus.Embedded {
			if cfg.Bus.Port <= 0 || cfg.Bus.Port > 65535 {
				return errors.New("bus.port must be between 1 and 65535 when embedded mode is enabled")
			}
		} else if len(cfg.Bus.Servers) == 0 {
			return errors.New("bus.servers must not be empty when embedded mode is disabled")
		}
		if cfg.Gateway.MaxConcurrent <= 0 {
			return errors.New("gateway.max_concurrent must be >= 1")
		}
	}
	switch cfg.Journal.RetentionMode {
	case "ephemeral", "persistent":
		// ok
	default:
		return errors.New("journal.retention_mode must be one of ephemeral|persistent")
	}
	if cfg.Journal.RetentionMode == "persistent" && cfg.Journal.Path == "" {
		return errors.New("journal.path must not be empty when retention is persistent")
	}
	if cfg.Journal.RetentionDays < 0 {
		return errors.New("journal.retention_days must be >= 0")
	}
	switch cfg.STT.Mode {
	case "mock", "exec":
	default:
		return errors.New("stt.mode must be one of mock|exec")
	}
	if cfg.STT.Mode == "exec" && cfg.STT.Command == "" {
		return errors.New("stt.command must be set when mode=exec")
	}
	switch cfg.Translate.Mode {
	case "mock", "exec":
	default:
		return errors.New("translate.mode must be one of mock|exec")
	}
	if cfg.Translate.Mode == "exec" && cfg.Translate.Command == "" {
		return errors.New("translate.command must be set when mode=exec")
	}
	switch cfg.TTS.Mode {
	case "mock", "exec", "http":
	default:
		return errors.New("tts.mode must be one of mock|exec|http")
	}
	if cfg.TTS.Mode == "exec" && cfg.TTS.Command == "" {
		return errors.New("tts.command must be set when mode=exec")
	}
	if cfg.TTS.Mode == "http" && cfg.TTS.Endpoint == "" {
		return errors.New("tts.endpoint must be set when mode=http")
	}
	switch cfg.TTS.Container {
	case "wav", "raw":
	default:
		return errors.New("tts.container must be one of wav|raw")
	}
	if cfg.TTS.SampleRate <= 0 {
		return errors.New("tts.sample_rate must be positive")
	}
	if cfg.TTS.Channels <= 0 {
		return errors.New("tts.channels must be positive")
	}
	if cfg.Media.FFmpegPath == "" || cfg.Media.FFprobePath == "" {
		return errors.New("media.ffmpeg_path and media.ffprobe_path must not be empty")
	}
	if cfg.Media.SampleRate <= 0 {
		return errors.New("media.sample_rate must be positive")
	}
	if cfg.Media.Channels <= 0 {
		return errors.New("media.channels must be positive")
	}
	return nil
}
