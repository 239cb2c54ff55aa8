package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/vaanilabs/vaani-core/internal/config"
)

// FFmpegExtractor demuxes video through ffprobe/ffmpeg. Every temp file it
// creates is removed before returning, on success and failure alike.
type FFmpegExtractor struct {
	cfg config.MediaConfig
}

func NewFFmpegExtractor(cfg config.MediaConfig) *FFmpegExtractor {
	return &FFmpegExtractor{cfg: cfg}
}

func (f *FFmpegExtractor) ExtractAudio(ctx context.Context, media []byte, kind Kind) ([]byte, error) {
	switch kind {
	case KindAudio:
		return media, nil
	case KindVideo:
		return f.demux(ctx, media)
	default:
		return nil, fmt.Errorf("unknown media kind %q", kind)
	}
}

func (f *FFmpegExtractor) demux(ctx context.Context, video []byte) ([]byte, error) {
	tmpDir := f.cfg.TempDir
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}

	videoFile, err := os.CreateTemp(tmpDir, "vaani_video_*.bin")
	if err != nil {
		return nil, fmt.Errorf("temp video file: %w", err)
	}
	defer os.Remove(videoFile.Name())
	defer videoFile.Close()

	if _, err := videoFile.Write(video); err != nil {
		return nil, fmt.Errorf("write video: %w", err)
	}
	if err := videoFile.Close(); err != nil {
		return nil, fmt.Errorf("close video: %w", err)
	}

	hasAudio, err := f.probeAudioStream(ctx, videoFile.Name())
	if err != nil {
		return nil, err
	}
	if !hasAudio {
		return nil, &NoAudioTrackError{}
	}

	audioPath := videoFile.Name() + ".wav"
	defer os.Remove(audioPath)

	// ffmpeg -y -i input -vn -ac 1 -ar 16000 -f wav output
	cmd := exec.CommandContext(ctx, f.cfg.FFmpegPath,
		"-y", "-i", videoFile.Name(),
		"-vn",
		"-ac", strconv.Itoa(f.cfg.Channels),
		"-ar", strconv.Itoa(f.cfg.SampleRate),
		"-f", "wav",
		audioPath,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg: %w: %s", err, stderr.String())
	}

	audio, err := os.ReadFile(audioPath)
	if err != nil {
		return nil, fmt.Errorf("read extracted audio: %w", err)
	}
	return audio, nil
}

func (f *FFmpegExtractor) probeAudioStream(ctx context.Context, path string) (bool, error) {
	cmd := exec.CommandContext(ctx, f.cfg.FFprobePath,
		"-v", "error",
		"-select_streams", "a",
		"-show_entries", "stream=codec_type",
		"-of", "csv=p=0",
		path,
	)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return false, fmt.Errorf("ffprobe: %w: %s", err, stderr.String())
	}
	return strings.TrimSpace(stdout.String()) != "", nil
}
