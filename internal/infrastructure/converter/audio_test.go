package converter

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yokitheyo/fileconverter/internal/config"
	"github.com/yokitheyo/fileconverter/internal/domain"
)

func TestAudioArgs(t *testing.T) {
	args := NewAudioConverter("ffmpeg").Args("/tmp/in.mp4", "/tmp/out.mp3")

	assert.Contains(t, args, "-i")
	assert.Contains(t, args, "/tmp/in.mp4")
	assert.Contains(t, args, "0:a:0")
	assert.Contains(t, args, "libmp3lame")
	assert.Contains(t, args, "-y")
	assert.Contains(t, args, "/tmp/out.mp3")
}

func TestLookupFFmpeg(t *testing.T) {
	_, ok := LookupFFmpeg(&config.VideoConfig{Enabled: false, FFmpegPath: "ffmpeg"})
	assert.False(t, ok)

	_, ok = LookupFFmpeg(&config.VideoConfig{Enabled: true, FFmpegPath: "definitely-not-ffmpeg-binary"})
	assert.False(t, ok)
}

func TestExtractMP3ToolFailureIsInvalidInput(t *testing.T) {
	falseBin, err := exec.LookPath("false")
	if err != nil {
		t.Skip("false binary not available")
	}
	err = NewAudioConverter(falseBin).ExtractMP3(context.Background(), "in.mp4", "out.mp3")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

// fakeFFmpeg writes a script that prints stderr and exits with code 1.
func fakeFFmpeg(t *testing.T, stderr string) string {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	path := filepath.Join(t.TempDir(), "ffmpeg")
	script := "#!/bin/sh\necho \"" + stderr + "\" >&2\nexit 1\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestExtractMP3ClassifiesExitErrors(t *testing.T) {
	tests := []struct {
		name   string
		stderr string
		want   error
	}{
		{"missing encoder", "Unknown encoder 'libmp3lame'", domain.ErrConversionFailed},
		{"disk full", "av_interleaved_write_frame(): No space left on device", domain.ErrConversionFailed},
		{"no audio stream", "Stream map '0:a:0' matches no streams.", domain.ErrInvalidInput},
		{"corrupt input", "moov atom not found", domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bin := fakeFFmpeg(t, tt.stderr)
			err := NewAudioConverter(bin).ExtractMP3(context.Background(), "in.mp4", "out.mp3")
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Contains(t, err.Error(), tt.stderr)
		})
	}
}

func TestExtractMP3Cancelled(t *testing.T) {
	sleepBin, err := exec.LookPath("sleep")
	if err != nil {
		t.Skip("sleep binary not available")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = NewAudioConverter(sleepBin).ExtractMP3(ctx, "in.mp4", "out.mp3")
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestExtractMP3WithFFmpeg(t *testing.T) {
	bin, ok := LookupFFmpeg(&config.VideoConfig{Enabled: true, FFmpegPath: "ffmpeg"})
	if !ok {
		t.Skip("ffmpeg not installed")
	}
	dir := t.TempDir()
	video := filepath.Join(dir, "in.mp4")
	gen := exec.Command(bin, "-f", "lavfi", "-i", "sine=frequency=440:duration=1",
		"-f", "lavfi", "-i", "color=c=black:s=64x64:d=1",
		"-shortest", "-y", video)
	if out, err := gen.CombinedOutput(); err != nil {
		t.Skipf("cannot build sample video: %v: %s", err, out)
	}

	mp3 := filepath.Join(dir, "out.mp3")
	require.NoError(t, NewAudioConverter(bin).ExtractMP3(context.Background(), video, mp3))

	info, err := os.Stat(mp3)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestExtractMP3NoAudioTrack(t *testing.T) {
	bin, ok := LookupFFmpeg(&config.VideoConfig{Enabled: true, FFmpegPath: "ffmpeg"})
	if !ok {
		t.Skip("ffmpeg not installed")
	}
	dir := t.TempDir()
	video := filepath.Join(dir, "silent.mp4")
	gen := exec.Command(bin, "-f", "lavfi", "-i", "color=c=black:s=64x64:d=1", "-y", video)
	if out, err := gen.CombinedOutput(); err != nil {
		t.Skipf("cannot build sample video: %v: %s", err, out)
	}

	err := NewAudioConverter(bin).ExtractMP3(context.Background(), video, filepath.Join(dir, "out.mp3"))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}
