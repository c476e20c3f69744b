package domain

import (
	"strings"
	"unicode"
)

type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatJPG  Format = "jpg"
	FormatPNG  Format = "png"
	FormatMP4  Format = "mp4"
	FormatMP3  Format = "mp3"
)

// ParseFormat finds the format named in free text such as "pdf", ".JPEG"
// or "PDF a DOCX". The text is split on anything that is not a letter or a
// digit and the first token naming a known format wins. Partial words do
// not match, so "pdfx" yields "".
func ParseFormat(s string) Format {
	tokens := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, tok := range tokens {
		if tok == "jpeg" {
			tok = "jpg"
		}
		switch f := Format(tok); f {
		case FormatPDF, FormatDOCX, FormatJPG, FormatPNG, FormatMP4, FormatMP3:
			return f
		}
	}
	return ""
}

type Capability string

const (
	CapabilityNone  Capability = ""
	CapabilityVideo Capability = "video"
)

// Capabilities holds the optional features resolved once at process start.
type Capabilities struct {
	Video bool
}

func (c Capabilities) Has(want Capability) bool {
	switch want {
	case CapabilityNone:
		return true
	case CapabilityVideo:
		return c.Video
	default:
		return false
	}
}

type Route struct {
	Source   Format
	Target   Format
	Filename string
	MimeType string
	// NeedsScratch routes get a per-request directory on disk.
	NeedsScratch bool
	Requires     Capability
}

func (r Route) Name() string {
	return string(r.Source) + "->" + string(r.Target)
}

// Routes is the allow-list of supported conversions, in match order.
var Routes = []Route{
	{
		Source:       FormatPDF,
		Target:       FormatDOCX,
		Filename:     "convertido.docx",
		MimeType:     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		NeedsScratch: true,
	},
	{
		Source:   FormatDOCX,
		Target:   FormatPDF,
		Filename: "convertido.pdf",
		MimeType: "application/pdf",
	},
	{
		Source:   FormatJPG,
		Target:   FormatPNG,
		Filename: "convertido.png",
		MimeType: "image/png",
	},
	{
		Source:   FormatPNG,
		Target:   FormatJPG,
		Filename: "convertido.jpg",
		MimeType: "image/jpeg",
	},
	{
		Source:       FormatMP4,
		Target:       FormatMP3,
		Filename:     "convertido.mp3",
		MimeType:     "audio/mpeg",
		NeedsScratch: true,
		Requires:     CapabilityVideo,
	},
}

// ResolveRoute returns the route for the given free-text source and target.
func ResolveRoute(source, target string) (Route, error) {
	src, dst := ParseFormat(source), ParseFormat(target)
	if src == "" || dst == "" {
		return Route{}, ErrUnsupportedConversion
	}
	for _, r := range Routes {
		if r.Source == src && r.Target == dst {
			return r, nil
		}
	}
	return Route{}, ErrUnsupportedConversion
}

type Result struct {
	Data     []byte
	Filename string
	MimeType string
}

func (r *Result) Size() int {
	if r == nil {
		return 0
	}
	return len(r.Data)
}
