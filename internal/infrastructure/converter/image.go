package converter

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/disintegration/imaging"
	"github.com/wb-go/wbf/zlog"
	"golang.org/x/image/draw"

	"github.com/yokitheyo/fileconverter/internal/config"
	"github.com/yokitheyo/fileconverter/internal/domain"
)

type ImageConverter struct {
	jpegQuality int
}

func NewImageConverter(cfg *config.ConversionConfig) *ImageConverter {
	quality := cfg.JPEGQuality
	if quality <= 0 || quality > 100 {
		zlog.Logger.Warn().
			Int("jpeg_quality", cfg.JPEGQuality).
			Msg("Invalid JPEG quality, using default")
		quality = 95
	}
	zlog.Logger.Info().
		Int("jpeg_quality", quality).
		Msg("ImageConverter initialized")
	return &ImageConverter{jpegQuality: quality}
}

func (c *ImageConverter) JPGToPNG(r io.Reader, w io.Writer) error {
	img, err := decode(r)
	if err != nil {
		return err
	}
	if err := imaging.Encode(w, img, imaging.PNG); err != nil {
		return fmt.Errorf("%w: encode png: %v", domain.ErrConversionFailed, err)
	}
	zlog.Logger.Debug().
		Int("width", img.Bounds().Dx()).
		Int("height", img.Bounds().Dy()).
		Msg("image re-encoded as PNG")
	return nil
}

func (c *ImageConverter) PNGToJPG(r io.Reader, w io.Writer) error {
	img, err := decode(r)
	if err != nil {
		return err
	}
	if err := imaging.Encode(w, flatten(img), imaging.JPEG, imaging.JPEGQuality(c.jpegQuality)); err != nil {
		return fmt.Errorf("%w: encode jpeg: %v", domain.ErrConversionFailed, err)
	}
	zlog.Logger.Debug().
		Int("width", img.Bounds().Dx()).
		Int("height", img.Bounds().Dy()).
		Int("quality", c.jpegQuality).
		Msg("image re-encoded as JPEG")
	return nil
}

func decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: decode image: %v", domain.ErrInvalidInput, err)
	}
	if img.Bounds().Dx() == 0 || img.Bounds().Dy() == 0 {
		return nil, fmt.Errorf("%w: decoded image is empty", domain.ErrInvalidInput)
	}
	return img, nil
}

// flatten composites img over opaque white, dropping the alpha channel.
func flatten(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Over)
	return dst
}
