package domain

import (
	"context"
	"io"
)

type ConvertInput struct {
	ConversionType string
	ToExtension    string
	Filename       string
	Size           int64
	Reader         io.Reader
}

type ConversionService interface {
	Convert(ctx context.Context, in ConvertInput) (*Result, error)
	Routes() []RouteStatus
}

type RouteStatus struct {
	Route     Route
	Available bool
}

// ScratchDir is on-disk space owned by a single conversion.
type ScratchDir interface {
	Path(name string) string
	Save(ctx context.Context, name string, reader io.Reader) (string, error)
	Close() error
}

type ScratchProvider interface {
	Open(ctx context.Context) (ScratchDir, error)
}

type ImageConverter interface {
	JPGToPNG(r io.Reader, w io.Writer) error
	PNGToJPG(r io.Reader, w io.Writer) error
}

type DocumentConverter interface {
	DOCXToPDF(data []byte, w io.Writer) error
	PDFToDOCX(pdfPath string, w io.Writer) error
}

type AudioConverter interface {
	ExtractMP3(ctx context.Context, videoPath, mp3Path string) error
}
