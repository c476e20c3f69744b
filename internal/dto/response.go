package dto

import "github.com/yokitheyo/fileconverter/internal/domain"

type ErrorResponse struct {
	Error   string `json:"error"`
	Detalle string `json:"detalle,omitempty"`
}

type ConversionResponse struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Filename  string `json:"filename"`
	MimeType  string `json:"mime_type"`
	Available bool   `json:"available"`
}

type ConversionListResponse struct {
	Conversions []*ConversionResponse `json:"conversions"`
}

func MapRoutesToResponse(routes []domain.RouteStatus) *ConversionListResponse {
	out := make([]*ConversionResponse, 0, len(routes))
	for _, r := range routes {
		out = append(out, &ConversionResponse{
			From:      string(r.Route.Source),
			To:        string(r.Route.Target),
			Filename:  r.Route.Filename,
			MimeType:  r.Route.MimeType,
			Available: r.Available,
		})
	}
	return &ConversionListResponse{Conversions: out}
}
