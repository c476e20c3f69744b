package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/wb-go/wbf/zlog"
	"golang.org/x/sync/semaphore"

	"github.com/yokitheyo/fileconverter/internal/config"
	"github.com/yokitheyo/fileconverter/internal/domain"
)

type ConversionUsecase struct {
	images  domain.ImageConverter
	docs    domain.DocumentConverter
	audio   domain.AudioConverter
	scratch domain.ScratchProvider
	caps    domain.Capabilities

	slots   *semaphore.Weighted
	timeout time.Duration
}

func NewConversionUsecase(
	images domain.ImageConverter,
	docs domain.DocumentConverter,
	audio domain.AudioConverter,
	scratch domain.ScratchProvider,
	caps domain.Capabilities,
	cfg *config.ConversionConfig,
) *ConversionUsecase {
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	zlog.Logger.Info().
		Int("max_concurrent", maxConcurrent).
		Int("timeout_sec", cfg.TimeoutSec).
		Bool("video", caps.Video).
		Msg("ConversionUsecase initialized")
	return &ConversionUsecase{
		images:  images,
		docs:    docs,
		audio:   audio,
		scratch: scratch,
		caps:    caps,
		slots:   semaphore.NewWeighted(int64(maxConcurrent)),
		timeout: time.Duration(cfg.TimeoutSec) * time.Second,
	}
}

func (u *ConversionUsecase) Routes() []domain.RouteStatus {
	out := make([]domain.RouteStatus, 0, len(domain.Routes))
	for _, r := range domain.Routes {
		out = append(out, domain.RouteStatus{Route: r, Available: u.caps.Has(r.Requires)})
	}
	return out
}

func (u *ConversionUsecase) Convert(ctx context.Context, in domain.ConvertInput) (*domain.Result, error) {
	route, err := domain.ResolveRoute(in.ConversionType, in.ToExtension)
	if err != nil {
		zlog.Logger.Warn().
			Str("conversion_type", in.ConversionType).
			Str("to_extension", in.ToExtension).
			Msg("unsupported conversion requested")
		return nil, err
	}

	if !u.caps.Has(route.Requires) {
		zlog.Logger.Warn().
			Str("route", route.Name()).
			Str("requires", string(route.Requires)).
			Msg("conversion requires an unavailable capability")
		return nil, fmt.Errorf("%w: %s", domain.ErrFeatureUnavailable, route.Requires)
	}

	if in.Reader == nil {
		return nil, domain.ErrFileMissing
	}

	if u.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.timeout)
		defer cancel()
	}

	if err := u.slots.Acquire(ctx, 1); err != nil {
		zlog.Logger.Warn().Err(err).Str("route", route.Name()).Msg("no conversion slot available")
		return nil, fmt.Errorf("%w: %v", domain.ErrBusy, err)
	}
	defer u.slots.Release(1)

	started := time.Now()
	zlog.Logger.Info().
		Str("route", route.Name()).
		Str("filename", in.Filename).
		Int64("size", in.Size).
		Msg("starting conversion")

	data, err := u.run(ctx, route, in.Reader)
	if err != nil {
		err = classify(ctx, err)
		if errors.Is(err, context.Canceled) {
			zlog.Logger.Warn().
				Err(err).
				Str("route", route.Name()).
				Str("filename", in.Filename).
				Dur("elapsed", time.Since(started)).
				Msg("conversion cancelled by client")
			return nil, err
		}
		zlog.Logger.Error().
			Err(err).
			Str("route", route.Name()).
			Str("filename", in.Filename).
			Dur("elapsed", time.Since(started)).
			Msg("conversion failed")
		return nil, err
	}
	if len(data) == 0 {
		zlog.Logger.Error().Str("route", route.Name()).Msg("conversion produced no output")
		return nil, fmt.Errorf("%w: empty output", domain.ErrConversionFailed)
	}

	zlog.Logger.Info().
		Str("route", route.Name()).
		Str("filename", in.Filename).
		Int("output_size", len(data)).
		Dur("elapsed", time.Since(started)).
		Msg("conversion completed")

	return &domain.Result{
		Data:     data,
		Filename: route.Filename,
		MimeType: route.MimeType,
	}, nil
}

func (u *ConversionUsecase) run(ctx context.Context, route domain.Route, r io.Reader) (data []byte, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			zlog.Logger.Error().
				Interface("panic", rec).
				Str("route", route.Name()).
				Msg("conversion library panicked")
			data, err = nil, fmt.Errorf("%w: converter panic: %v", domain.ErrInvalidInput, rec)
		}
	}()

	var dir domain.ScratchDir
	if route.NeedsScratch {
		dir, err = u.scratch.Open(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: open scratch: %v", domain.ErrConversionFailed, err)
		}
		defer func() {
			if cerr := dir.Close(); cerr != nil {
				zlog.Logger.Warn().Err(cerr).Str("route", route.Name()).Msg("failed to clean scratch dir")
			}
		}()
	}

	var out bytes.Buffer
	switch route.Source {
	case domain.FormatJPG:
		err = u.images.JPGToPNG(r, &out)
	case domain.FormatPNG:
		err = u.images.PNGToJPG(r, &out)
	case domain.FormatDOCX:
		var in []byte
		in, err = readUpload(r)
		if err == nil {
			err = u.docs.DOCXToPDF(in, &out)
		}
	case domain.FormatPDF:
		var path string
		path, err = dir.Save(ctx, "input.pdf", r)
		if err == nil {
			err = u.docs.PDFToDOCX(path, &out)
		}
	case domain.FormatMP4:
		return u.extractAudio(ctx, dir, r)
	default:
		return nil, domain.ErrUnsupportedConversion
	}
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func (u *ConversionUsecase) extractAudio(ctx context.Context, dir domain.ScratchDir, r io.Reader) ([]byte, error) {
	video, err := dir.Save(ctx, "input.mp4", r)
	if err != nil {
		return nil, err
	}
	mp3 := dir.Path("output.mp3")
	if err := u.audio.ExtractMP3(ctx, video, mp3); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(mp3)
	if err != nil {
		return nil, fmt.Errorf("%w: read mp3: %v", domain.ErrConversionFailed, err)
	}
	return data, nil
}

func readUpload(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty upload", domain.ErrInvalidInput)
	}
	return data, nil
}

// classify maps a conversion error onto one of the domain sentinels.
func classify(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrConversionTimeout),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrConversionFailed),
		errors.Is(err, domain.ErrUnsupportedConversion):
		return err
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", domain.ErrConversionTimeout, err)
	case errors.Is(err, context.Canceled):
		return err
	default:
		return fmt.Errorf("%w: %v", domain.ErrConversionFailed, err)
	}
}
