package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/yokitheyo/fileconverter/internal/domain"
	"github.com/yokitheyo/fileconverter/internal/dto"
	"github.com/yokitheyo/fileconverter/internal/handler/middleware"
	"github.com/yokitheyo/fileconverter/internal/helpers"
)

const (
	msgFileMissing = "No se encontró el archivo"
	msgUnsupported = "Conversión no soportada aún."

	// room for the non-file multipart fields
	formOverhead = 1 << 20

	statusClientClosedRequest = 499
)

type ConvertHandler struct {
	service       domain.ConversionService
	maxUploadSize int64
}

func NewConvertHandler(service domain.ConversionService, maxUploadSizeMB int) *ConvertHandler {
	return &ConvertHandler{
		service:       service,
		maxUploadSize: int64(maxUploadSizeMB) * 1024 * 1024,
	}
}

func (h *ConvertHandler) RegisterRoutes(engine *ginext.Engine) {
	engine.POST("/convert", h.Convert)
	engine.GET("/conversions", h.ListConversions)
}

// Convert POST /convert
func (h *ConvertHandler) Convert(c *ginext.Context) {
	requestID := c.GetString(middleware.RequestIDKey)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize+formOverhead)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(c, fmt.Errorf("%w: %v", domain.ErrFileTooLarge, err))
			return
		}
		zlog.Logger.Warn().Err(err).Str("request_id", requestID).Msg("failed to get file from request")
		c.String(http.StatusBadRequest, msgFileMissing)
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadSize {
		h.writeError(c, domain.ErrFileTooLarge)
		return
	}

	var req dto.ConvertRequest
	if err := c.ShouldBind(&req); err != nil {
		zlog.Logger.Warn().Err(err).Str("request_id", requestID).Msg("failed to bind conversion form")
		c.String(http.StatusBadRequest, msgUnsupported)
		return
	}

	filename := helpers.SafeFilename(header.Filename)
	result, err := h.service.Convert(c.Request.Context(), domain.ConvertInput{
		ConversionType: req.ConversionType,
		ToExtension:    req.ToExtension,
		Filename:       filename,
		Size:           header.Size,
		Reader:         file,
	})
	if err != nil {
		zlog.Logger.Warn().
			Err(err).
			Str("request_id", requestID).
			Str("filename", filename).
			Str("conversion_type", req.ConversionType).
			Str("to_extension", req.ToExtension).
			Msg("conversion request failed")
		h.writeError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", result.Filename))
	c.Data(http.StatusOK, result.MimeType, result.Data)
}

// ListConversions GET /conversions
func (h *ConvertHandler) ListConversions(c *ginext.Context) {
	c.JSON(http.StatusOK, dto.MapRoutesToResponse(h.service.Routes()))
}

func (h *ConvertHandler) writeTooLarge(c *ginext.Context) {
	c.JSON(http.StatusRequestEntityTooLarge, dto.ErrorResponse{
		Error:   "El archivo excede el tamaño máximo permitido.",
		Detalle: fmt.Sprintf("Máximo %d MB.", h.maxUploadSize/(1024*1024)),
	})
}

func (h *ConvertHandler) writeError(c *ginext.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUnsupportedConversion):
		c.String(http.StatusBadRequest, msgUnsupported)
	case errors.Is(err, domain.ErrFileMissing):
		c.String(http.StatusBadRequest, msgFileMissing)
	case errors.Is(err, domain.ErrFeatureUnavailable):
		c.JSON(http.StatusNotImplemented, dto.ErrorResponse{
			Error:   "Conversión de video no disponible en este entorno.",
			Detalle: "ffmpeg no está instalado en el servidor.",
		})
	case errors.Is(err, domain.ErrFileTooLarge):
		h.writeTooLarge(c)
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{
			Error:   "No se pudo convertir el archivo.",
			Detalle: err.Error(),
		})
	case errors.Is(err, domain.ErrConversionTimeout):
		c.JSON(http.StatusGatewayTimeout, dto.ErrorResponse{
			Error:   "La conversión tardó demasiado.",
			Detalle: "timeout",
		})
	case errors.Is(err, domain.ErrBusy):
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{
			Error:   "Servidor ocupado, intente de nuevo más tarde.",
			Detalle: "busy",
		})
	case errors.Is(err, context.Canceled):
		c.AbortWithStatus(statusClientClosedRequest)
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Error al convertir el archivo.",
			Detalle: "conversion_failed",
		})
	}
}
