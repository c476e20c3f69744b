package domain

import "errors"

var (
	ErrFileMissing           = errors.New("no file provided")
	ErrFileTooLarge          = errors.New("file size exceeds maximum allowed")
	ErrUnsupportedConversion = errors.New("unsupported conversion")
	ErrFeatureUnavailable    = errors.New("feature unavailable in this environment")
	ErrInvalidInput          = errors.New("invalid input file")
	ErrConversionFailed      = errors.New("conversion failed")
	ErrConversionTimeout     = errors.New("conversion timed out")
	ErrBusy                  = errors.New("no conversion slot available")
)
