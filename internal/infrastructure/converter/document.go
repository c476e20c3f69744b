package converter

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/fumiama/go-docx"
	"github.com/go-pdf/fpdf"
	"github.com/ledongthuc/pdf"
	"github.com/wb-go/wbf/zlog"

	"github.com/yokitheyo/fileconverter/internal/domain"
)

// Page layout for DOCX→PDF, in points measured from the bottom of the page.
const (
	pageTopY     = 800.0
	pageBottomY  = 50.0
	lineStep     = 20.0
	leftMargin   = 50.0
	bodyFont     = "Helvetica"
	bodyFontSize = 12.0
)

type DocumentConverter struct {
	creator string
}

func NewDocumentConverter() *DocumentConverter {
	return &DocumentConverter{creator: "fileconverter"}
}

// DOCXToPDF draws the document's paragraphs, one per line, onto A4 pages.
// Styles, images and tables are not carried over.
func (c *DocumentConverter) DOCXToPDF(data []byte, w io.Writer) error {
	paragraphs, err := readParagraphs(data)
	if err != nil {
		return err
	}

	doc := fpdf.New("P", "pt", "A4", "")
	doc.SetCreator(c.creator, true)
	doc.SetAutoPageBreak(false, 0)
	doc.SetFont(bodyFont, "", bodyFontSize)
	toCP1252 := doc.UnicodeTranslatorFromDescriptor("")
	_, pageHeight := doc.GetPageSize()

	doc.AddPage()
	y := pageTopY
	pending := false
	for _, text := range paragraphs {
		if pending {
			doc.AddPage()
			pending = false
		}
		if line := flattenWhitespace(text); line != "" {
			doc.Text(leftMargin, pageHeight-y, toCP1252(line))
		}
		y -= lineStep
		if y < pageBottomY {
			y = pageTopY
			pending = true
		}
	}

	if err := doc.Output(w); err != nil {
		return fmt.Errorf("%w: render pdf: %v", domain.ErrConversionFailed, err)
	}

	zlog.Logger.Debug().
		Int("paragraphs", len(paragraphs)).
		Int("pages", doc.PageCount()).
		Msg("docx rendered to pdf")
	return nil
}

// PDFToDOCX extracts the text of every page and writes one paragraph per
// text line, with a page break between PDF pages.
func (c *DocumentConverter) PDFToDOCX(pdfPath string, w io.Writer) error {
	f, err := os.Open(pdfPath)
	if err != nil {
		return fmt.Errorf("%w: open pdf: %v", domain.ErrConversionFailed, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%w: stat pdf: %v", domain.ErrConversionFailed, err)
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return fmt.Errorf("%w: read pdf: %v", domain.ErrInvalidInput, err)
	}

	pages := reader.NumPage()
	if pages <= 0 {
		return fmt.Errorf("%w: pdf has no pages", domain.ErrInvalidInput)
	}

	out := docx.New().WithDefaultTheme()
	lines := 0
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			zlog.Logger.Warn().Int("page", i).Msg("pdf page missing, skipping")
			continue
		}
		if i > 1 {
			out.AddParagraph().AddPageBreaks()
		}
		for _, line := range textLines(page.Content().Text) {
			out.AddParagraph().AddText(line)
			lines++
		}
	}

	if _, err := out.WriteTo(w); err != nil {
		return fmt.Errorf("%w: write docx: %v", domain.ErrConversionFailed, err)
	}

	zlog.Logger.Debug().
		Int("pages", pages).
		Int("lines", lines).
		Msg("pdf converted to docx")
	return nil
}

func readParagraphs(data []byte) ([]string, error) {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: parse docx: %v", domain.ErrInvalidInput, err)
	}
	var out []string
	for _, item := range doc.Document.Body.Items {
		if p, ok := item.(*docx.Paragraph); ok {
			out = append(out, p.String())
		}
	}
	return out, nil
}

func flattenWhitespace(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ", "\t", "    ").Replace(s)
}

// textLines joins positioned glyphs into lines, in content stream order.
// A baseline shift of more than half the font size starts a new line. Space
// glyphs are kept as they are; a horizontal gap between glyphs of known
// width becomes a single space. Standard fonts without /Widths report W=0,
// so for them only the space glyphs separate words.
func textLines(glyphs []pdf.Text) []string {
	var (
		lines   []string
		sb      strings.Builder
		lastY   float64
		lastEnd float64
		lastW   float64
		started bool
	)
	flush := func() {
		if line := strings.TrimSpace(sb.String()); line != "" {
			lines = append(lines, line)
		}
		sb.Reset()
	}

	for _, g := range glyphs {
		tolerance := g.FontSize / 2
		if tolerance <= 0 {
			tolerance = 1
		}
		if started {
			switch {
			case math.Abs(g.Y-lastY) > tolerance:
				flush()
			case lastW > 0 && g.X-lastEnd > g.FontSize*0.25 && g.S != " " && !strings.HasSuffix(sb.String(), " "):
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(g.S)
		lastY = g.Y
		lastEnd = g.X + g.W
		lastW = g.W
		started = true
	}
	if started {
		flush()
	}
	return lines
}
