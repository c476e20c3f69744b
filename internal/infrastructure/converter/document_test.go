package converter

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yokitheyo/fileconverter/internal/domain"
)

func pdfPages(t *testing.T, data []byte) int {
	t.Helper()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	return r.NumPage()
}

func renderDOCX(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, NewDocumentConverter().DOCXToPDF(docxBytes(t, paragraphs...), &out))
	return out.Bytes()
}

func TestDOCXToPDFProducesPDF(t *testing.T) {
	out := renderDOCX(t, "Hola mundo", "Segunda línea")
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Equal(t, 1, pdfPages(t, out))
}

func TestDOCXToPDFPagination(t *testing.T) {
	tests := []struct {
		name       string
		paragraphs int
		pages      int
	}{
		{"empty document", 0, 1},
		{"one line", 1, 1},
		{"exactly one page", 38, 1},
		{"spills over", 39, 2},
		{"hundred lines", 100, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paragraphs := make([]string, tt.paragraphs)
			for i := range paragraphs {
				paragraphs[i] = "línea de prueba"
			}
			assert.Equal(t, tt.pages, pdfPages(t, renderDOCX(t, paragraphs...)))
		})
	}
}

func TestDOCXToPDFRejectsGarbage(t *testing.T) {
	err := NewDocumentConverter().DOCXToPDF([]byte("PK not really a zip"), &bytes.Buffer{})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestPDFToDOCXRoundTrip(t *testing.T) {
	conv := NewDocumentConverter()
	pdfData := renderDOCX(t, "Hola mundo", "adios")

	path := filepath.Join(t.TempDir(), "input.pdf")
	require.NoError(t, os.WriteFile(path, pdfData, 0o600))

	var out bytes.Buffer
	require.NoError(t, conv.PDFToDOCX(path, &out))
	require.True(t, bytes.HasPrefix(out.Bytes(), []byte("PK")), "docx is a zip container")

	paragraphs, err := readParagraphs(out.Bytes())
	require.NoError(t, err)
	text := strings.Join(paragraphs, "\n")
	assert.Contains(t, text, "Hola mundo")
	assert.Contains(t, text, "adios")
}

func TestPDFToDOCXMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4\nthis is not a pdf body"), 0o600))

	err := NewDocumentConverter().PDFToDOCX(path, &bytes.Buffer{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestPDFToDOCXMissingFile(t *testing.T) {
	err := NewDocumentConverter().PDFToDOCX(filepath.Join(t.TempDir(), "nope.pdf"), &bytes.Buffer{})
	assert.True(t, errors.Is(err, domain.ErrConversionFailed))
}

func TestTextLines(t *testing.T) {
	glyph := func(s string, x, y float64) pdf.Text {
		return pdf.Text{S: s, X: x, Y: y, W: 6, FontSize: 12}
	}
	glyphs := []pdf.Text{
		glyph("H", 50, 700), glyph("i", 56, 700),
		glyph("y", 80, 700), glyph("o", 86, 700),
		glyph("n", 50, 680), glyph("o", 56, 680),
		glyph(" ", 50, 660),
	}
	assert.Equal(t, []string{"Hi yo", "no"}, textLines(glyphs))
	assert.Empty(t, textLines(nil))
}

// Standard-14 fonts written without /Widths: every glyph of a Tj string
// sits at the same X with W=0, words are separated by space glyphs only.
func TestTextLinesZeroWidthFont(t *testing.T) {
	var glyphs []pdf.Text
	for _, line := range []struct {
		s string
		y float64
	}{{"Hola desde PDF", 791.89}, {"Segunda linea", 771.89}} {
		for _, r := range line.s {
			glyphs = append(glyphs, pdf.Text{Font: "Helvetica", FontSize: 12, X: 50, Y: line.y, S: string(r)})
		}
	}
	assert.Equal(t, []string{"Hola desde PDF", "Segunda linea"}, textLines(glyphs))
}

func TestPDFToDOCXKeepsWordSpacing(t *testing.T) {
	doc := fpdf.New("P", "pt", "A4", "")
	doc.SetFont("Helvetica", "", 12)
	doc.AddPage()
	doc.Text(50, 50, "Hola desde PDF")
	doc.Text(50, 70, "con dos espacios")
	doc.AddPage()
	doc.Text(50, 50, "Segunda pagina")
	var pdfData bytes.Buffer
	require.NoError(t, doc.Output(&pdfData))

	path := filepath.Join(t.TempDir(), "words.pdf")
	require.NoError(t, os.WriteFile(path, pdfData.Bytes(), 0o600))

	var out bytes.Buffer
	require.NoError(t, NewDocumentConverter().PDFToDOCX(path, &out))
	paragraphs, err := readParagraphs(out.Bytes())
	require.NoError(t, err)

	var lines []string
	for _, p := range paragraphs {
		if strings.TrimSpace(p) != "" {
			lines = append(lines, p)
		}
	}
	assert.Equal(t, []string{"Hola desde PDF", "con dos espacios", "Segunda pagina"}, lines)
}

func TestFlattenWhitespace(t *testing.T) {
	assert.Equal(t, "a b    c", flattenWhitespace("a\nb\tc"))
	assert.Equal(t, "x  y", flattenWhitespace("x\r\ny"))
}
