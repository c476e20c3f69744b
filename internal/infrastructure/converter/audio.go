package converter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
	"github.com/wb-go/wbf/zlog"

	"github.com/yokitheyo/fileconverter/internal/config"
	"github.com/yokitheyo/fileconverter/internal/domain"
)

const stderrTail = 512

// Messages ffmpeg prints when the fault is in the local build or host,
// not in the uploaded file.
var toolFaults = []string{
	"Unknown encoder",
	"Encoder not found",
	"Error while opening encoder",
	"Unrecognized option",
	"Option not found",
	"No such filter",
	"No space left on device",
	"Permission denied",
}

// AudioConverter extracts audio tracks by running an ffmpeg binary.
type AudioConverter struct {
	ffmpegPath string
}

func NewAudioConverter(ffmpegPath string) *AudioConverter {
	return &AudioConverter{ffmpegPath: ffmpegPath}
}

// LookupFFmpeg resolves the ffmpeg binary once at start. An empty path
// means video conversion is unavailable.
func LookupFFmpeg(cfg *config.VideoConfig) (string, bool) {
	if !cfg.Enabled {
		zlog.Logger.Warn().Msg("video conversion disabled by config")
		return "", false
	}
	path, err := exec.LookPath(cfg.FFmpegPath)
	if err != nil {
		zlog.Logger.Warn().
			Err(err).
			Str("ffmpeg_path", cfg.FFmpegPath).
			Msg("ffmpeg not found, video conversion unavailable")
		return "", false
	}
	zlog.Logger.Info().Str("ffmpeg_path", path).Msg("ffmpeg found, video conversion available")
	return path, true
}

// Args builds the ffmpeg command line that encodes the first audio stream
// of videoPath to MP3.
func (c *AudioConverter) Args(videoPath, mp3Path string) []string {
	return ffmpeg.Input(videoPath).
		Output(mp3Path, ffmpeg.KwArgs{
			"map":    "0:a:0",
			"acodec": "libmp3lame",
			"q:a":    "2",
		}).
		OverWriteOutput().
		GetArgs()
}

func (c *AudioConverter) ExtractMP3(ctx context.Context, videoPath, mp3Path string) error {
	args := c.Args(videoPath, mp3Path)
	cmd := exec.CommandContext(ctx, c.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	zlog.Logger.Debug().Str("ffmpeg", c.ffmpegPath).Strs("args", args).Msg("running ffmpeg")

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("ffmpeg interrupted: %w", ctxErr)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			msg := tail(stderr.String(), stderrTail)
			cause := domain.ErrInvalidInput
			if isToolFault(stderr.String()) {
				cause = domain.ErrConversionFailed
			}
			return fmt.Errorf("%w: ffmpeg exited with code %d: %s", cause, exitErr.ExitCode(), msg)
		}
		return fmt.Errorf("%w: run ffmpeg: %v", domain.ErrConversionFailed, err)
	}
	return nil
}

func isToolFault(stderr string) bool {
	for _, m := range toolFaults {
		if strings.Contains(stderr, m) {
			return true
		}
	}
	return false
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
